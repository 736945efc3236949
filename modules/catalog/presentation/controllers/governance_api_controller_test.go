package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/modules/catalog/presentation/viewmodels"
	"github.com/vicedu/vicedu/modules/catalog/services"
	"github.com/vicedu/vicedu/pkg/httpapi"
	"github.com/vicedu/vicedu/pkg/itf"
)

type governanceAPIHarness struct {
	controller *GovernanceAPIController
	courses    *itf.EntityStore
	lessons    *itf.EntityStore
	audit      *itf.AuditLedger
}

func newGovernanceAPIHarness() *governanceAPIHarness {
	app := itf.Application()
	courses := itf.NewEntityStore(governance.TargetCourse)
	lessons := itf.NewEntityStore(governance.TargetLesson)
	audit := itf.NewAuditLedger()
	app.RegisterServices(services.NewGovernanceService(audit, app.EventBus(), courses, lessons))
	return &governanceAPIHarness{
		controller: NewGovernanceAPIController(app).(*GovernanceAPIController),
		courses:    courses,
		lessons:    lessons,
		audit:      audit,
	}
}

func seedCourse(store *itf.EntityStore, owner uuid.UUID, title string, published bool) *governance.Entity {
	e := &governance.Entity{
		Kind:        governance.TargetCourse,
		ID:          uuid.New(),
		OwnerID:     owner,
		Title:       title,
		IsPublished: published,
		Fields: map[string]any{
			"title":        title,
			"description":  "about " + title,
			"price":        "49.90",
			"thumbnail_id": nil,
			"category_id":  nil,
			"teacher_id":   owner.String(),
			"is_published": published,
		},
	}
	store.Put(e)
	return e
}

type editResponse struct {
	Outcome string                       `json:"outcome"`
	Entity  *viewmodels.GovernanceEntity `json:"entity"`
	Entry   *viewmodels.AuditEntry       `json:"entry"`
	Dropped []string                     `json:"dropped"`
}

func TestSubmitEditEndpointApplies(t *testing.T) {
	h := newGovernanceAPIHarness()
	owner := uuid.New()
	e := seedCourse(h.courses, owner, "A", true)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/edits").
		WithBody(map[string]any{"fields": map[string]any{"title": "B"}}).
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Teacher(owner)).
		Build()
	rec := httptest.NewRecorder()
	h.controller.SubmitEdit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp editResponse
	itf.DecodeBody(t, rec, &resp)
	require.Equal(t, "applied", resp.Outcome)
	require.Equal(t, "B", resp.Entity.Title)
	require.Equal(t, "applied", resp.Entry.Status)
	require.Equal(t, viewmodels.FieldChange{From: "A", To: "B"}, resp.Entry.Changes["title"])
}

func TestSubmitEditEndpointReportsDroppedFields(t *testing.T) {
	h := newGovernanceAPIHarness()
	owner := uuid.New()
	e := seedCourse(h.courses, owner, "A", true)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/edits").
		WithBody(map[string]any{"fields": map[string]any{"title": "B", "nonsense": 1}}).
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Teacher(owner)).
		Build()
	rec := httptest.NewRecorder()
	h.controller.SubmitEdit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp editResponse
	itf.DecodeBody(t, rec, &resp)
	require.Equal(t, []string{"nonsense"}, resp.Dropped)
}

func TestSubmitEditEndpointRequiresAuthentication(t *testing.T) {
	h := newGovernanceAPIHarness()
	e := seedCourse(h.courses, uuid.New(), "A", false)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/edits").
		WithBody(map[string]any{"fields": map[string]any{"title": "B"}}).
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		Build()
	rec := httptest.NewRecorder()
	h.controller.SubmitEdit(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var envelope httpapi.ErrorEnvelope
	itf.DecodeBody(t, rec, &envelope)
	require.Equal(t, "CATALOG_UNAUTHENTICATED", envelope.Code)
	require.NotEmpty(t, envelope.Meta["request_id"])
}

func TestSubmitEditEndpointRejectsEmptyPatch(t *testing.T) {
	h := newGovernanceAPIHarness()
	owner := uuid.New()
	e := seedCourse(h.courses, owner, "A", false)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/edits").
		WithBody(map[string]any{"fields": map[string]any{}}).
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Teacher(owner)).
		Build()
	rec := httptest.NewRecorder()
	h.controller.SubmitEdit(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var envelope httpapi.ErrorEnvelope
	itf.DecodeBody(t, rec, &envelope)
	require.Equal(t, "CATALOG_EMPTY_PATCH", envelope.Code)
}

func TestSubmitEditEndpointForbiddenField(t *testing.T) {
	h := newGovernanceAPIHarness()
	owner := uuid.New()
	e := seedCourse(h.courses, owner, "A", false)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/edits").
		WithBody(map[string]any{"fields": map[string]any{"price": "0.00"}}).
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Teacher(owner)).
		Build()
	rec := httptest.NewRecorder()
	h.controller.SubmitEdit(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var envelope httpapi.ErrorEnvelope
	itf.DecodeBody(t, rec, &envelope)
	require.Equal(t, governance.ErrFieldForbidden.Code, envelope.Code)
}

func TestSubmitEditEndpointInvalidID(t *testing.T) {
	h := newGovernanceAPIHarness()

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/nope/edits").
		WithBody(map[string]any{"fields": map[string]any{"title": "B"}}).
		WithVar("target", "courses").
		WithVar("id", "nope").
		As(itf.Admin()).
		Build()
	rec := httptest.NewRecorder()
	h.controller.SubmitEdit(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestDeleteEndpointQueuesForOwner(t *testing.T) {
	h := newGovernanceAPIHarness()
	owner := uuid.New()
	e := seedCourse(h.courses, owner, "Old course", true)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/delete-requests").
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Teacher(owner)).
		Build()
	rec := httptest.NewRecorder()
	h.controller.RequestDelete(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp editResponse
	itf.DecodeBody(t, rec, &resp)
	require.Equal(t, "queued", resp.Outcome)
	require.True(t, resp.Entity.HasPendingChanges)
	require.Equal(t, "delete", resp.Entity.ChangeKind)
}

func TestRequestDeleteEndpointAppliesForAdmin(t *testing.T) {
	h := newGovernanceAPIHarness()
	e := seedCourse(h.courses, uuid.New(), "Old course", true)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/delete-requests").
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Admin()).
		Build()
	rec := httptest.NewRecorder()
	h.controller.RequestDelete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp editResponse
	itf.DecodeBody(t, rec, &resp)
	require.Equal(t, "applied", resp.Outcome)
}

func TestApproveChangesEndpointDeleteIntent(t *testing.T) {
	h := newGovernanceAPIHarness()
	owner := uuid.New()
	e := seedCourse(h.courses, owner, "Old course", true)

	queueReq := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/delete-requests").
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Teacher(owner)).
		Build()
	h.controller.RequestDelete(httptest.NewRecorder(), queueReq)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/changes:approve").
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Admin()).
		Build()
	rec := httptest.NewRecorder()
	h.controller.ApproveChanges(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Deleted bool                         `json:"deleted"`
		Entity  *viewmodels.GovernanceEntity `json:"entity"`
		Entry   *viewmodels.AuditEntry       `json:"entry"`
	}
	itf.DecodeBody(t, rec, &resp)
	require.True(t, resp.Deleted)
	require.Nil(t, resp.Entity)
	require.Equal(t, "approved", resp.Entry.Status)
}

func TestApproveChangesEndpointNonAdmin(t *testing.T) {
	h := newGovernanceAPIHarness()
	owner := uuid.New()
	e := seedCourse(h.courses, owner, "Old course", true)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/changes:approve").
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Teacher(owner)).
		Build()
	rec := httptest.NewRecorder()
	h.controller.ApproveChanges(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApproveChangesEndpointWithoutDraft(t *testing.T) {
	h := newGovernanceAPIHarness()
	e := seedCourse(h.courses, uuid.New(), "Quiet course", true)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/changes:approve").
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Admin()).
		Build()
	rec := httptest.NewRecorder()
	h.controller.ApproveChanges(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRejectChangesEndpointStoresReason(t *testing.T) {
	h := newGovernanceAPIHarness()
	owner := uuid.New()
	e := seedCourse(h.courses, owner, "Old course", true)

	queueReq := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/delete-requests").
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Teacher(owner)).
		Build()
	h.controller.RequestDelete(httptest.NewRecorder(), queueReq)

	req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/changes:reject").
		WithBody(map[string]any{"reason": "still in use"}).
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Admin()).
		Build()
	rec := httptest.NewRecorder()
	h.controller.RejectChanges(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Entity *viewmodels.GovernanceEntity `json:"entity"`
		Entry  *viewmodels.AuditEntry       `json:"entry"`
	}
	itf.DecodeBody(t, rec, &resp)
	require.False(t, resp.Entity.HasPendingChanges)
	require.Equal(t, "rejected", resp.Entry.Status)
	require.Equal(t, "still in use", resp.Entry.Reason)
}

func TestListHistoryEndpoint(t *testing.T) {
	h := newGovernanceAPIHarness()
	owner := uuid.New()
	e := seedCourse(h.courses, owner, "A", false)

	for _, title := range []string{"B", "C"} {
		req := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/edits").
			WithBody(map[string]any{"fields": map[string]any{"title": title}}).
			WithVar("target", "courses").
			WithVar("id", e.ID.String()).
			As(itf.Teacher(owner)).
			Build()
		rec := httptest.NewRecorder()
		h.controller.SubmitEdit(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := itf.NewRequest(t, http.MethodGet, "/catalog/api/courses/"+e.ID.String()+"/history").
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Teacher(owner)).
		Build()
	rec := httptest.NewRecorder()
	h.controller.ListHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []*viewmodels.AuditEntry `json:"items"`
	}
	itf.DecodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 2)
	require.Equal(t, viewmodels.FieldChange{From: "B", To: "C"}, resp.Items[0].Changes["title"])
	require.Equal(t, viewmodels.FieldChange{From: "A", To: "B"}, resp.Items[1].Changes["title"])
}

func TestListPendingEndpointInvalidTargetType(t *testing.T) {
	h := newGovernanceAPIHarness()

	req := itf.NewRequest(t, http.MethodGet, "/catalog/api/pending?target_type=widgets").
		As(itf.Admin()).
		Build()
	rec := httptest.NewRecorder()
	h.controller.ListPending(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListRecentEndpointResolvesTitles(t *testing.T) {
	h := newGovernanceAPIHarness()
	owner := uuid.New()
	e := seedCourse(h.courses, owner, "A", false)

	submit := itf.NewRequest(t, http.MethodPost, "/catalog/api/courses/"+e.ID.String()+"/edits").
		WithBody(map[string]any{"fields": map[string]any{"title": "B"}}).
		WithVar("target", "courses").
		WithVar("id", e.ID.String()).
		As(itf.Teacher(owner)).
		Build()
	h.controller.SubmitEdit(httptest.NewRecorder(), submit)

	req := itf.NewRequest(t, http.MethodGet, "/catalog/api/edits?status=applied").
		As(itf.Admin()).
		Build()
	rec := httptest.NewRecorder()
	h.controller.ListRecent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []*viewmodels.AuditEntry `json:"items"`
	}
	itf.DecodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "B", resp.Items[0].TargetTitle)
}
