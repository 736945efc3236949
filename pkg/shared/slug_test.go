package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Intro to Go":            "intro-to-go",
		"  SQL & You!  ":         "sql-you",
		"already-a-slug":         "already-a-slug",
		"Trailing punctuation..": "trailing-punctuation",
		"":                       "",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}
