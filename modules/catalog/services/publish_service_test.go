package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/pkg/itf"
)

func newPublishHarness() (*PublishService, *itf.PublishStore) {
	store := itf.NewPublishStore(governance.TargetCourse)
	return NewPublishService(store, testBus()), store
}

func TestRequestPublishByOwner(t *testing.T) {
	svc, store := newPublishHarness()
	owner := uuid.New()
	e := courseFixture(store.EntityStore, owner, "Draft course", false)

	updated, err := svc.RequestPublish(context.Background(), teacherActor(owner), e.ID)
	require.NoError(t, err)
	require.Equal(t, governance.ApprovalPending, updated.Status)
	require.Equal(t, &owner, updated.PublishRequestedBy)
	require.NotNil(t, updated.PublishRequestedAt)
	require.False(t, updated.IsPublished)
}

func TestRequestPublishAlreadyPublished(t *testing.T) {
	svc, store := newPublishHarness()
	owner := uuid.New()
	e := courseFixture(store.EntityStore, owner, "Live course", true)

	_, err := svc.RequestPublish(context.Background(), teacherActor(owner), e.ID)
	require.ErrorIs(t, err, governance.ErrInvalidStatus)
}

func TestRequestPublishByStranger(t *testing.T) {
	svc, store := newPublishHarness()
	e := courseFixture(store.EntityStore, uuid.New(), "Draft course", false)

	_, err := svc.RequestPublish(context.Background(), teacherActor(uuid.New()), e.ID)
	require.ErrorIs(t, err, governance.ErrUnauthorized)
}

func TestApprovePublish(t *testing.T) {
	svc, store := newPublishHarness()
	owner := uuid.New()
	e := courseFixture(store.EntityStore, owner, "Draft course", false)

	_, err := svc.RequestPublish(context.Background(), teacherActor(owner), e.ID)
	require.NoError(t, err)

	updated, err := svc.ApprovePublish(context.Background(), adminActor(), e.ID)
	require.NoError(t, err)
	require.True(t, updated.IsPublished)
	require.Equal(t, governance.ApprovalApproved, updated.Status)
	require.Nil(t, updated.PublishRequestedBy)
	require.Nil(t, updated.PublishRequestedAt)
}

func TestRejectPublishKeepsCourseUnpublished(t *testing.T) {
	svc, store := newPublishHarness()
	owner := uuid.New()
	e := courseFixture(store.EntityStore, owner, "Draft course", false)

	_, err := svc.RequestPublish(context.Background(), teacherActor(owner), e.ID)
	require.NoError(t, err)

	updated, err := svc.RejectPublish(context.Background(), adminActor(), e.ID)
	require.NoError(t, err)
	require.False(t, updated.IsPublished)
	require.Equal(t, governance.ApprovalRejected, updated.Status)
	require.Nil(t, updated.PublishRequestedAt, "the request slot is cleared on rejection")

	// Rejection is not final: the owner may resubmit.
	resubmitted, err := svc.RequestPublish(context.Background(), teacherActor(owner), e.ID)
	require.NoError(t, err)
	require.Equal(t, governance.ApprovalPending, resubmitted.Status)
}

func TestPublishDecisionsRequireAdmin(t *testing.T) {
	svc, store := newPublishHarness()
	owner := uuid.New()
	e := courseFixture(store.EntityStore, owner, "Draft course", false)

	_, err := svc.RequestPublish(context.Background(), teacherActor(owner), e.ID)
	require.NoError(t, err)

	_, err = svc.ApprovePublish(context.Background(), teacherActor(owner), e.ID)
	require.ErrorIs(t, err, governance.ErrUnauthorized)
	_, err = svc.RejectPublish(context.Background(), teacherActor(owner), e.ID)
	require.ErrorIs(t, err, governance.ErrUnauthorized)
}

func TestPublishDecisionWithoutRequest(t *testing.T) {
	svc, store := newPublishHarness()
	e := courseFixture(store.EntityStore, uuid.New(), "Draft course", false)

	_, err := svc.ApprovePublish(context.Background(), adminActor(), e.ID)
	require.ErrorIs(t, err, governance.ErrInvalidStatus)
	_, err = svc.RejectPublish(context.Background(), adminActor(), e.ID)
	require.ErrorIs(t, err, governance.ErrInvalidStatus)
}

func TestPublishGateIndependentOfDraftSlot(t *testing.T) {
	store := itf.NewPublishStore(governance.TargetCourse)
	audit := itf.NewAuditLedger()
	gov := NewGovernanceService(audit, testBus(), store.EntityStore)
	pub := NewPublishService(store, testBus())

	owner := uuid.New()
	e := courseFixture(store.EntityStore, owner, "Busy course", false)

	_, err := pub.RequestPublish(context.Background(), teacherActor(owner), e.ID)
	require.NoError(t, err)
	_, err = gov.RequestDelete(context.Background(), teacherActor(owner), governance.TargetCourse, e.ID)
	require.NoError(t, err)

	live, err := store.Get(context.Background(), e.ID)
	require.NoError(t, err)
	require.True(t, live.HasPendingChanges)
	require.Equal(t, governance.ApprovalPending, live.Status)
	require.NotNil(t, live.PublishRequestedAt)
}
