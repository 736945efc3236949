package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vicedu/vicedu/modules/catalog/domain/aggregates/lesson"
	"github.com/vicedu/vicedu/modules/catalog/presentation/mappers"
	"github.com/vicedu/vicedu/modules/catalog/presentation/viewmodels"
	"github.com/vicedu/vicedu/modules/catalog/services"
	"github.com/vicedu/vicedu/pkg/application"
	"github.com/vicedu/vicedu/pkg/middleware"
)

// LessonAPIController is the lesson CRUD surface. Field edits and delete
// requests live on the governance controller.
type LessonAPIController struct {
	app      application.Application
	lessons  *services.LessonService
	courses  *services.CourseService
	basePath string
}

func NewLessonAPIController(app application.Application) application.Controller {
	return &LessonAPIController{
		app:      app,
		lessons:  app.Service(services.LessonService{}).(*services.LessonService),
		courses:  app.Service(services.CourseService{}).(*services.CourseService),
		basePath: "/catalog/api",
	}
}

func (c *LessonAPIController) Key() string {
	return c.basePath + "/lessons"
}

func (c *LessonAPIController) Register(r *mux.Router) {
	commonMiddleware := []mux.MiddlewareFunc{
		middleware.RequireActor(),
	}

	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(commonMiddleware...)
	router.HandleFunc("/courses/{course_id}/lessons", c.ListByCourse).Methods(http.MethodGet)
	router.HandleFunc("/lessons/{id}", c.Get).Methods(http.MethodGet)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(commonMiddleware...)
	writeRouter.Use(middleware.WithTransaction())
	writeRouter.HandleFunc("/courses/{course_id}/lessons", c.Create).Methods(http.MethodPost)
}

func (c *LessonAPIController) ListByCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathUUID(r, "course_id")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_ID", "invalid course id")
		return
	}

	params := &lesson.FindParams{CourseID: &courseID, Limit: 50}
	query := r.URL.Query()
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			params.Limit = parsed
		}
	}
	if v := strings.TrimSpace(query.Get("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}

	items, err := c.lessons.GetPaginated(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	total, err := c.lessons.Count(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]*viewmodels.Lesson, 0, len(items))
	for _, item := range items {
		out = append(out, mappers.LessonToViewModel(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *LessonAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_ID", "invalid id")
		return
	}
	found, err := c.lessons.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.LessonToViewModel(found))
}

func (c *LessonAPIController) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := useActor(r)
	if err != nil {
		writeAPIError(w, r, http.StatusUnauthorized, "CATALOG_UNAUTHENTICATED", "authentication required")
		return
	}
	courseID, err := pathUUID(r, "course_id")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_ID", "invalid course id")
		return
	}

	var dto lesson.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(r.Context()); !ok {
		message := "validation failed"
		for _, v := range errs {
			message = v
			break
		}
		writeAPIError(w, r, http.StatusUnprocessableEntity, "CATALOG_VALIDATION_FAILED", message)
		return
	}

	entity, err := dto.ToEntity(courseID, actor.ID)
	if err != nil {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "CATALOG_VALIDATION_FAILED", err.Error())
		return
	}
	created, err := c.lessons.Create(r.Context(), entity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mappers.LessonToViewModel(created))
}
