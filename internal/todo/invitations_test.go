package todo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateDirectInvitationStartsPendingApproved(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	invitee := uuid.New()
	list := store.addList(owner, false)
	lifecycle := NewLifecycle(store)

	invitation, err := lifecycle.CreateDirectInvitation(context.Background(), list.ID, owner, invitee)
	require.NoError(t, err)
	require.Equal(t, StatusPending, invitation.Status)
	require.True(t, invitation.Approved)
	require.Equal(t, owner, invitation.InviterID)
	require.Equal(t, invitee, invitation.InviteeID)
}

func TestCreateCodeExpiry(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	list := store.addList(owner, false)
	lifecycle := NewLifecycle(store)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lifecycle.now = func() time.Time { return issuedAt }

	code, err := lifecycle.CreateCode(context.Background(), list.ID, owner, true)
	require.NoError(t, err)
	require.Equal(t, issuedAt.Add(InvitationCodeTTL), code.ExpiresAt)
	require.True(t, code.AutoApprove)
}

func TestJoinByCodeAcceptedImmediately(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	joiner := uuid.New()
	list := store.addList(owner, false)
	lifecycle := NewLifecycle(store)

	code := store.addCode(list.ID, owner, time.Now().Add(time.Hour), false)

	invitation, err := lifecycle.JoinByCode(context.Background(), list.ID, code.ID, joiner)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, invitation.Status)
	require.False(t, invitation.Approved)
	require.Equal(t, owner, invitation.InviterID)
	require.Equal(t, joiner, invitation.InviteeID)
}

func TestJoinByCodeAutoApprove(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	joiner := uuid.New()
	list := store.addList(owner, false)
	lifecycle := NewLifecycle(store)

	code := store.addCode(list.ID, owner, time.Now().Add(time.Hour), true)

	invitation, err := lifecycle.JoinByCode(context.Background(), list.ID, code.ID, joiner)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, invitation.Status)
	require.True(t, invitation.Approved)
}

func TestJoinByCodeExpired(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	joiner := uuid.New()
	list := store.addList(owner, false)
	lifecycle := NewLifecycle(store)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	lifecycle.now = func() time.Time { return now }

	expired := store.addCode(list.ID, owner, now.Add(-time.Minute), true)
	boundary := store.addCode(list.ID, owner, now, true)

	_, err := lifecycle.JoinByCode(context.Background(), list.ID, expired.ID, joiner)
	require.ErrorIs(t, err, ErrInvitationCodeExpired)

	// A code expiring exactly now is already expired.
	_, err = lifecycle.JoinByCode(context.Background(), list.ID, boundary.ID, joiner)
	require.ErrorIs(t, err, ErrInvitationCodeExpired)
}

func TestJoinByCodeUnknownCode(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	joiner := uuid.New()
	list := store.addList(owner, false)
	otherList := store.addList(owner, false)
	lifecycle := NewLifecycle(store)

	code := store.addCode(otherList.ID, owner, time.Now().Add(time.Hour), true)

	_, err := lifecycle.JoinByCode(context.Background(), list.ID, uuid.New(), joiner)
	require.ErrorIs(t, err, ErrInvitationCodeNotFound)

	// A code scoped to another list is indistinguishable from a missing one.
	_, err = lifecycle.JoinByCode(context.Background(), list.ID, code.ID, joiner)
	require.ErrorIs(t, err, ErrInvitationCodeNotFound)
}

func TestAcceptAndRejectTransitions(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	list := store.addList(owner, false)
	lifecycle := NewLifecycle(store)

	pending := store.addInvitation(list.ID, owner, uuid.New(), StatusPending, true)
	accepted, err := lifecycle.Accept(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, accepted.Status)

	// Re-accepting is a no-op success.
	again, err := lifecycle.Accept(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, again.Status)

	// Accepted is terminal: it cannot flip to rejected.
	_, err = lifecycle.Reject(context.Background(), pending.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	other := store.addInvitation(list.ID, owner, uuid.New(), StatusPending, true)
	rejected, err := lifecycle.Reject(context.Background(), other.ID)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, rejected.Status)

	// Rejected is terminal too.
	_, err = lifecycle.Accept(context.Background(), other.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApproveIsIdempotentAndMonotonic(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	list := store.addList(owner, false)
	lifecycle := NewLifecycle(store)

	invitation := store.addInvitation(list.ID, owner, uuid.New(), StatusAccepted, false)

	approved, err := lifecycle.Approve(context.Background(), invitation.ID)
	require.NoError(t, err)
	require.True(t, approved.Approved)

	approved, err = lifecycle.Approve(context.Background(), invitation.ID)
	require.NoError(t, err)
	require.True(t, approved.Approved)

	// Status transitions never touch the approved flag.
	invitation = store.addInvitation(list.ID, owner, uuid.New(), StatusPending, true)
	accepted, err := lifecycle.Accept(context.Background(), invitation.ID)
	require.NoError(t, err)
	require.True(t, accepted.Approved)
}

// Walks a code join from issuance through approval, checking what the joiner
// can reach at each stage.
func TestCodeJoinThenApprovalUnlocksDiscussions(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	joiner := uuid.New()
	list := store.addList(owner, false)
	lifecycle := NewLifecycle(store)
	eval := NewEvaluator(store)
	ctx := context.Background()

	code, err := lifecycle.CreateCode(ctx, list.ID, owner, false)
	require.NoError(t, err)

	invitation, err := lifecycle.JoinByCode(ctx, list.ID, code.ID, joiner)
	require.NoError(t, err)

	// The joiner is a member immediately, but discussions stay hidden.
	_, err = eval.RequireListAccess(ctx, joiner, list.ID, CapabilityMutate)
	require.NoError(t, err)
	_, err = eval.RequireDiscussionAccess(ctx, joiner, list.ID)
	require.ErrorIs(t, err, ErrDiscussionNotFound)

	_, err = lifecycle.Approve(ctx, invitation.ID)
	require.NoError(t, err)

	_, err = eval.RequireDiscussionAccess(ctx, joiner, list.ID)
	require.NoError(t, err)
}
