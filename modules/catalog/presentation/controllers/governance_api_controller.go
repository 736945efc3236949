package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/modules/catalog/presentation/mappers"
	"github.com/vicedu/vicedu/modules/catalog/presentation/viewmodels"
	"github.com/vicedu/vicedu/modules/catalog/services"
	"github.com/vicedu/vicedu/pkg/application"
	"github.com/vicedu/vicedu/pkg/middleware"
)

// GovernanceAPIController exposes the content-edit workflow: submitting
// edits and delete requests, deciding parked drafts, and reading the ledger.
type GovernanceAPIController struct {
	app        application.Application
	governance *services.GovernanceService
	basePath   string
}

func NewGovernanceAPIController(app application.Application) application.Controller {
	return &GovernanceAPIController{
		app:        app,
		governance: app.Service(services.GovernanceService{}).(*services.GovernanceService),
		basePath:   "/catalog/api",
	}
}

func (c *GovernanceAPIController) Key() string {
	return c.basePath + "/governance"
}

func (c *GovernanceAPIController) Register(r *mux.Router) {
	commonMiddleware := []mux.MiddlewareFunc{
		middleware.RequireActor(),
	}

	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(commonMiddleware...)
	router.HandleFunc("/pending", c.ListPending).Methods(http.MethodGet)
	router.HandleFunc("/edits", c.ListRecent).Methods(http.MethodGet)
	router.HandleFunc("/{target:courses|lessons}/{id}/history", c.ListHistory).Methods(http.MethodGet)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(commonMiddleware...)
	writeRouter.Use(middleware.WithTransaction())
	writeRouter.HandleFunc("/{target:courses|lessons}/{id}/edits", c.SubmitEdit).Methods(http.MethodPost)
	writeRouter.HandleFunc("/{target:courses|lessons}/{id}/delete-requests", c.RequestDelete).Methods(http.MethodPost)
	writeRouter.HandleFunc("/{target:courses|lessons}/{id}/changes:approve", c.ApproveChanges).Methods(http.MethodPost)
	writeRouter.HandleFunc("/{target:courses|lessons}/{id}/changes:reject", c.RejectChanges).Methods(http.MethodPost)
}

type submitEditRequest struct {
	Fields map[string]any `json:"fields"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (c *GovernanceAPIController) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	actor, targetType, targetID, ok := c.editContext(w, r)
	if !ok {
		return
	}

	var req submitEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_JSON", "invalid json")
		return
	}
	if len(req.Fields) == 0 {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "CATALOG_EMPTY_PATCH", "fields must not be empty")
		return
	}

	result, err := c.governance.SubmitEdit(r.Context(), actor, targetType, targetID, req.Fields)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editResultToResponse(result))
}

func (c *GovernanceAPIController) RequestDelete(w http.ResponseWriter, r *http.Request) {
	actor, targetType, targetID, ok := c.editContext(w, r)
	if !ok {
		return
	}

	result, err := c.governance.RequestDelete(r.Context(), actor, targetType, targetID)
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

func (c *GovernanceAPIController) ApproveChanges(w http.ResponseWriter, r *http.Request) {
	actor, targetType, targetID, ok := c.editContext(w, r)
	if !ok {
		return
	}

	result, err := c.governance.ApproveChanges(r.Context(), actor, targetType, targetID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": result.Deleted,
		"entity":  mappers.EntityToViewModel(result.Entity),
		"entry":   mappers.EntryToViewModel(result.Entry),
	})
}

func (c *GovernanceAPIController) RejectChanges(w http.ResponseWriter, r *http.Request) {
	actor, targetType, targetID, ok := c.editContext(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if r.Body != nil {
		// Absent or empty body means no reason given.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	var reason *string
	if v := strings.TrimSpace(req.Reason); v != "" {
		reason = &v
	}

	result, err := c.governance.RejectChanges(r.Context(), actor, targetType, targetID, reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entity": mappers.EntityToViewModel(result.Entity),
		"entry":  mappers.EntryToViewModel(result.Entry),
	})
}

func (c *GovernanceAPIController) ListPending(w http.ResponseWriter, r *http.Request) {
	var targetType *governance.TargetType
	switch strings.TrimSpace(r.URL.Query().Get("target_type")) {
	case "":
	case string(governance.TargetCourse):
		t := governance.TargetCourse
		targetType = &t
	case string(governance.TargetLesson):
		t := governance.TargetLesson
		targetType = &t
	default:
		writeAPIError(w, r, http.StatusUnprocessableEntity, "CATALOG_INVALID_TARGET", "unknown target type")
		return
	}

	entities, err := c.governance.ListPending(r.Context(), targetType)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	items := make([]*viewmodels.GovernanceEntity, 0, len(entities))
	for _, e := range entities {
		items = append(items, mappers.EntityToViewModel(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (c *GovernanceAPIController) ListHistory(w http.ResponseWriter, r *http.Request) {
	targetType, ok := targetTypeFromPath(r)
	if !ok {
		writeAPIError(w, r, http.StatusNotFound, "CATALOG_INVALID_TARGET", "unknown target type")
		return
	}
	targetID, err := pathUUID(r, "id")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_ID", "invalid id")
		return
	}

	entries, err := c.governance.ListHistory(r.Context(), targetType, targetID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	items := make([]*viewmodels.AuditEntry, 0, len(entries))
	for _, entry := range entries {
		items = append(items, mappers.EntryToViewModel(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (c *GovernanceAPIController) ListRecent(w http.ResponseWriter, r *http.Request) {
	params := &governance.AuditFindParams{}
	query := r.URL.Query()
	if v := strings.TrimSpace(query.Get("target_type")); v != "" {
		t := governance.TargetType(v)
		if !t.IsValid() {
			writeAPIError(w, r, http.StatusUnprocessableEntity, "CATALOG_INVALID_TARGET", "unknown target type")
			return
		}
		params.TargetType = &t
	}
	if v := strings.TrimSpace(query.Get("status")); v != "" {
		s := governance.EntryStatus(v)
		if !s.IsValid() {
			writeAPIError(w, r, http.StatusUnprocessableEntity, "CATALOG_INVALID_STATUS", "unknown status")
			return
		}
		params.Status = &s
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			params.Limit = parsed
		}
	}

	entries, err := c.governance.ListRecent(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	items := make([]*viewmodels.AuditEntry, 0, len(entries))
	for _, entry := range entries {
		items = append(items, mappers.RecentEntryToViewModel(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (c *GovernanceAPIController) editContext(w http.ResponseWriter, r *http.Request) (governance.Actor, governance.TargetType, uuid.UUID, bool) {
	actor, err := useActor(r)
	if err != nil {
		writeAPIError(w, r, http.StatusUnauthorized, "CATALOG_UNAUTHENTICATED", "authentication required")
		return governance.Actor{}, "", uuid.Nil, false
	}
	targetType, ok := targetTypeFromPath(r)
	if !ok {
		writeAPIError(w, r, http.StatusNotFound, "CATALOG_INVALID_TARGET", "unknown target type")
		return governance.Actor{}, "", uuid.Nil, false
	}
	targetID, err := pathUUID(r, "id")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CATALOG_INVALID_ID", "invalid id")
		return governance.Actor{}, "", uuid.Nil, false
	}
	return actor, targetType, targetID, true
}

func editResultToResponse(result *services.EditResult) map[string]any {
	out := map[string]any{
		"outcome": string(result.Outcome),
		"entity":  mappers.EntityToViewModel(result.Entity),
		"entry":   mappers.EntryToViewModel(result.Entry),
	}
	if len(result.Dropped) > 0 {
		out["dropped"] = result.Dropped
	}
	return out
}
