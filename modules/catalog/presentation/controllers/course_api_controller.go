package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vicedu/vicedu/modules/catalog/domain/aggregates/course"
	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/modules/catalog/presentation/mappers"
	"github.com/vicedu/vicedu/modules/catalog/presentation/viewmodels"
	"github.com/vicedu/vicedu/modules/catalog/services"
	"github.com/vicedu/vicedu/pkg/application"
	"github.com/vicedu/vicedu/pkg/middleware"
)

// CourseAPIController is the course CRUD surface plus the publish gate.
// Field edits and teacher delete requests live on the governance controller.
type CourseAPIController struct {
	app        application.Application
	courses    *services.CourseService
	governance *services.GovernanceService
	publish    *services.PublishService
	basePath   string
}

func NewCourseAPIController(app application.Application) application.Controller {
	return &CourseAPIController{
		app:        app,
		courses:    app.Service(services.CourseService{}).(*services.CourseService),
		governance: app.Service(services.GovernanceService{}).(*services.GovernanceService),
		publish:    app.Service(services.PublishService{}).(*services.PublishService),
		basePath:   "/catalog/api/courses",
	}
}

func (c *CourseAPIController) Key() string {
	return c.basePath
}

func (c *CourseAPIController) Register(r *mux.Router) {
	commonMiddleware := []mux.MiddlewareFunc{
		middleware.RequireActor(),
	}

	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(commonMiddleware...)
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(commonMiddleware...)
	writeRouter.Use(middleware.WithTransaction())
	writeRouter.HandleFunc("", c.Create).Methods(http.MethodPost)
	writeRouter.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	writeRouter.HandleFunc("/{id}/publish-requests", c.RequestPublish).Methods(http.MethodPost)
	writeRouter.HandleFunc("/{id}/publish-requests:approve", c.ApprovePublish).Methods(http.MethodPost)
	writeRouter.HandleFunc("/{id}/publish-requests:reject", c.RejectPublish).Methods(http.MethodPost)
}

func (c *CourseAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &course.FindParams{Limit: 20}
	query := r.URL.Query()
	if v := strings.TrimSpace(query.Get("teacher_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_ID", "invalid teacher_id")
			return
		}
		params.TeacherID = &id
	}
	if v := strings.TrimSpace(query.Get("published")); v != "" {
		published := v == "true"
		params.Published = &published
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			params.Limit = parsed
		}
	}
	if v := strings.TrimSpace(query.Get("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}

	items, err := c.courses.GetPaginated(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	total, err := c.courses.Count(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]*viewmodels.Course, 0, len(items))
	for _, item := range items {
		out = append(out, mappers.CourseToViewModel(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *CourseAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_ID", "invalid id")
		return
	}
	found, err := c.courses.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.CourseToViewModel(found))
}

func (c *CourseAPIController) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := useActor(r)
	if err != nil {
		writeAPIError(w, r, http.StatusUnauthorized, "CATALOG_UNAUTHENTICATED", "authentication required")
		return
	}

	var dto course.CreateDTO
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

	entity, err := dto.ToEntity(actor.ID)
	if err != nil {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "CATALOG_VALIDATION_FAILED", err.Error())
		return
	}
	created, err := c.courses.Create(r.Context(), entity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mappers.CourseToViewModel(created))
}

// Delete routes through the governance engine: admins delete directly with
// cascade, the owning teacher's request is queued.
func (c *CourseAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := useActor(r)
	if err != nil {
		writeAPIError(w, r, http.StatusUnauthorized, "CATALOG_UNAUTHENTICATED", "authentication required")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_ID", "invalid id")
		return
	}

	result, err := c.governance.RequestDelete(r.Context(), actor, governance.TargetCourse, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	status := http.StatusOK
	if result.Outcome == services.OutcomeQueued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, editResultToResponse(result))
}

func (c *CourseAPIController) RequestPublish(w http.ResponseWriter, r *http.Request) {
	c.publishAction(w, r, c.publish.RequestPublish)
}

func (c *CourseAPIController) ApprovePublish(w http.ResponseWriter, r *http.Request) {
	c.publishAction(w, r, c.publish.ApprovePublish)
}

func (c *CourseAPIController) RejectPublish(w http.ResponseWriter, r *http.Request) {
	c.publishAction(w, r, c.publish.RejectPublish)
}

func (c *CourseAPIController) publishAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, actor governance.Actor, id uuid.UUID) (*governance.Entity, error),
) {
	actor, err := useActor(r)
	if err != nil {
		writeAPIError(w, r, http.StatusUnauthorized, "CATALOG_UNAUTHENTICATED", "authentication required")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_ID", "invalid id")
		return
	}

	entity, err := action(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.EntityToViewModel(entity))
}
