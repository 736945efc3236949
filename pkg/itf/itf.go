// Package itf provides in-memory test infrastructure: fake governance
// stores, a wired test application and an HTTP request builder that
// substitutes for the auth and transaction middleware.
package itf

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vicedu/vicedu/modules/core/domain/aggregates/user"
	"github.com/vicedu/vicedu/pkg/application"
	"github.com/vicedu/vicedu/pkg/composables"
	"github.com/vicedu/vicedu/pkg/eventbus"
)

// Application builds an app with a quiet logger and a live event bus but no
// database pool. Services registered on it must run on in-memory stores.
func Application() application.Application {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
}

func Teacher(id uuid.UUID) user.User {
	return user.New("Test", "Teacher", "teacher@example.com", user.RoleTeacher, user.WithID(id))
}

func Admin() user.User {
	return user.New("Test", "Admin", "admin@example.com", user.RoleAdmin, user.WithID(uuid.New()))
}

// RequestBuilder assembles a request the way the router middleware would:
// route vars via mux and the acting user on the context.
type RequestBuilder struct {
	t      *testing.T
	method string
	target string
	body   any
	vars   map[string]string
	user   user.User
}

func NewRequest(t *testing.T, method, target string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{t: t, method: method, target: target}
}

func (b *RequestBuilder) WithBody(body any) *RequestBuilder {
	b.body = body
	return b
}

func (b *RequestBuilder) WithVar(key, value string) *RequestBuilder {
	if b.vars == nil {
		b.vars = map[string]string{}
	}
	b.vars[key] = value
	return b
}

func (b *RequestBuilder) As(u user.User) *RequestBuilder {
	b.user = u
	return b
}

func (b *RequestBuilder) Build() *http.Request {
	b.t.Helper()
	var reader *bytes.Reader
	if b.body != nil {
		payload, err := json.Marshal(b.body)
		require.NoError(b.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(b.method, b.target, reader)
	req.Header.Set("Content-Type", "application/json")
	if b.user != nil {
		req = req.WithContext(composables.WithUser(req.Context(), b.user))
	}
	if len(b.vars) > 0 {
		req = mux.SetURLVars(req, b.vars)
	}
	return req
}

// DecodeBody unmarshals a recorded JSON response into out.
func DecodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
