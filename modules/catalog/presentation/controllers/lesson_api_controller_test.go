package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vicedu/vicedu/modules/catalog/domain/aggregates/lesson"
	"github.com/vicedu/vicedu/modules/catalog/presentation/viewmodels"
	"github.com/vicedu/vicedu/pkg/itf"
)

func TestLessonCreateEndpoint(t *testing.T) {
	h := newCatalogAPIHarness()
	owner := uuid.New()
	parent := h.seedRepoCourse(owner, "Intro to SQL", false)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+parent.ID().String()+"/lessons").
		WithBody(map[string]any{
			"title":    "Joins",
			"position": 1,
		}).
		WithVar("course_id", parent.ID().String()).
		As(itf.Teacher(owner)).
		Build()
	rec := httptest.NewRecorder()
	h.lessonController.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var vm viewmodels.Lesson
	itf.DecodeBody(t, rec, &vm)
	require.Equal(t, "Joins", vm.Title)
	require.Equal(t, "joins", vm.Slug)
	require.Equal(t, parent.ID().String(), vm.CourseID)
	require.Equal(t, 1, vm.Position)
	require.Len(t, h.lessonRepo.items, 1)
}

func TestLessonCreateEndpointUnknownCourse(t *testing.T) {
	h := newCatalogAPIHarness()
	missing := uuid.New()

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+missing.String()+"/lessons").
		WithBody(map[string]any{"title": "Orphan", "position": 1}).
		WithVar("course_id", missing.String()).
		As(itf.Teacher(uuid.New())).
		Build()
	rec := httptest.NewRecorder()
	h.lessonController.Create(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, h.lessonRepo.items)
}

func TestLessonListByCourseOrdersByPosition(t *testing.T) {
	h := newCatalogAPIHarness()
	owner := uuid.New()
	parent := h.seedRepoCourse(owner, "Intro to SQL", false)

	positions := map[string]int{"First": 1, "Second": 2, "Third": 3}
	for title, position := range positions {
		l := lesson.New(parent.ID(), owner, title, position)
		h.lessonRepo.items[l.ID()] = l
	}

	req := itf.NewRequest(t, http.MethodGet, "/catalog/api/courses/"+parent.ID().String()+"/lessons").
		WithVar("course_id", parent.ID().String()).
		As(itf.Teacher(owner)).
		Build()
	rec := httptest.NewRecorder()
	h.lessonController.ListByCourse(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []*viewmodels.Lesson `json:"items"`
		Total int64                `json:"total"`
	}
	itf.DecodeBody(t, rec, &resp)
	require.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.Items, 3)
	require.Equal(t, "First", resp.Items[0].Title)
	require.Equal(t, "Second", resp.Items[1].Title)
	require.Equal(t, "Third", resp.Items[2].Title)
}

func TestLessonGetEndpoint(t *testing.T) {
	h := newCatalogAPIHarness()
	owner := uuid.New()
	parent := h.seedRepoCourse(owner, "Intro to SQL", false)
	l := lesson.New(parent.ID(), owner, "Joins", 1)
	h.lessonRepo.items[l.ID()] = l

	req := itf.NewRequest(t, http.MethodGet, "/catalog/api/lessons/"+l.ID().String()).
		WithVar("id", l.ID().String()).
		As(itf.Teacher(owner)).
		Build()
	rec := httptest.NewRecorder()
	h.lessonController.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var vm viewmodels.Lesson
	itf.DecodeBody(t, rec, &vm)
	require.Equal(t, l.ID().String(), vm.ID)
	require.Equal(t, "Joins", vm.Title)
}
