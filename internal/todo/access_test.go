package todo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRequireListAccessOwner(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	list := store.addList(owner, false)
	eval := NewEvaluator(store)

	for _, capability := range []Capability{CapabilityView, CapabilityMutate, CapabilityOwnerOnly} {
		got, err := eval.RequireListAccess(context.Background(), owner, list.ID, capability)
		require.NoError(t, err)
		require.Equal(t, list.ID, got.ID)
	}
}

func TestRequireListAccessAcceptedMember(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	member := uuid.New()
	list := store.addList(owner, false)
	// Accepted but not approved: approval gates discussions, not list access.
	store.addInvitation(list.ID, owner, member, StatusAccepted, false)
	eval := NewEvaluator(store)

	_, err := eval.RequireListAccess(context.Background(), member, list.ID, CapabilityView)
	require.NoError(t, err)

	_, err = eval.RequireListAccess(context.Background(), member, list.ID, CapabilityMutate)
	require.NoError(t, err)
}

func TestRequireListAccessDenialMatchesMissingList(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	stranger := uuid.New()
	list := store.addList(owner, false)
	eval := NewEvaluator(store)

	_, missingErr := eval.RequireListAccess(context.Background(), stranger, uuid.New(), CapabilityView)
	require.ErrorIs(t, missingErr, ErrListNotFound)

	_, deniedErr := eval.RequireListAccess(context.Background(), stranger, list.ID, CapabilityView)
	require.ErrorIs(t, deniedErr, ErrListNotFound)

	// A non-member probing a real list sees exactly what a missing list
	// produces.
	require.Equal(t, missingErr, deniedErr)
}

func TestRequireListAccessPendingOrRejectedDenied(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	pendingUser := uuid.New()
	rejectedUser := uuid.New()
	list := store.addList(owner, false)
	store.addInvitation(list.ID, owner, pendingUser, StatusPending, true)
	store.addInvitation(list.ID, owner, rejectedUser, StatusRejected, true)
	eval := NewEvaluator(store)

	_, err := eval.RequireListAccess(context.Background(), pendingUser, list.ID, CapabilityView)
	require.ErrorIs(t, err, ErrListNotFound)

	_, err = eval.RequireListAccess(context.Background(), rejectedUser, list.ID, CapabilityView)
	require.ErrorIs(t, err, ErrListNotFound)
}

func TestRequireListAccessOwnerOnlyDeniesMembers(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	member := uuid.New()
	list := store.addList(owner, false)
	store.addInvitation(list.ID, owner, member, StatusAccepted, true)
	eval := NewEvaluator(store)

	// Even an accepted, approved member cannot perform owner-only
	// operations, and learns nothing from trying.
	_, err := eval.RequireListAccess(context.Background(), member, list.ID, CapabilityOwnerOnly)
	require.ErrorIs(t, err, ErrListNotFound)
}

func TestRequireDiscussionAccess(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	approved := uuid.New()
	unapproved := uuid.New()
	stranger := uuid.New()
	list := store.addList(owner, false)
	store.addInvitation(list.ID, owner, approved, StatusAccepted, true)
	store.addInvitation(list.ID, owner, unapproved, StatusAccepted, false)
	eval := NewEvaluator(store)

	_, err := eval.RequireDiscussionAccess(context.Background(), owner, list.ID)
	require.NoError(t, err)

	_, err = eval.RequireDiscussionAccess(context.Background(), approved, list.ID)
	require.NoError(t, err)

	// Accepted membership alone is not enough for discussions.
	_, err = eval.RequireDiscussionAccess(context.Background(), unapproved, list.ID)
	require.ErrorIs(t, err, ErrDiscussionNotFound)

	_, err = eval.RequireDiscussionAccess(context.Background(), stranger, list.ID)
	require.ErrorIs(t, err, ErrDiscussionNotFound)

	_, err = eval.RequireDiscussionAccess(context.Background(), owner, uuid.New())
	require.ErrorIs(t, err, ErrDiscussionNotFound)
}

func TestRequireActiveListAccessArchivedGate(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	member := uuid.New()
	stranger := uuid.New()
	list := store.addList(owner, true)
	store.addInvitation(list.ID, owner, member, StatusAccepted, true)
	eval := NewEvaluator(store)

	// Members hit the archived gate only after passing the access check.
	_, err := eval.RequireActiveListAccess(context.Background(), owner, list.ID, CapabilityMutate)
	require.ErrorIs(t, err, ErrListArchived)

	_, err = eval.RequireActiveListAccess(context.Background(), member, list.ID, CapabilityMutate)
	require.ErrorIs(t, err, ErrListArchived)

	// A stranger must not learn the list is archived, or that it exists.
	_, err = eval.RequireActiveListAccess(context.Background(), stranger, list.ID, CapabilityMutate)
	require.ErrorIs(t, err, ErrListNotFound)
}

func TestRequireInvitationView(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	invitee := uuid.New()
	stranger := uuid.New()
	list := store.addList(owner, false)
	invitation := store.addInvitation(list.ID, owner, invitee, StatusPending, true)
	eval := NewEvaluator(store)

	_, err := eval.RequireInvitationView(context.Background(), owner, invitation.ID)
	require.NoError(t, err)

	_, err = eval.RequireInvitationView(context.Background(), invitee, invitation.ID)
	require.NoError(t, err)

	_, err = eval.RequireInvitationView(context.Background(), stranger, invitation.ID)
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestRequireInviteeTransitionInviteeOnly(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	invitee := uuid.New()
	list := store.addList(owner, false)
	invitation := store.addInvitation(list.ID, owner, invitee, StatusPending, true)
	eval := NewEvaluator(store)

	_, err := eval.RequireInviteeTransition(context.Background(), invitee, invitation.ID)
	require.NoError(t, err)

	// Not even the inviter may accept or reject on the invitee's behalf.
	_, err = eval.RequireInviteeTransition(context.Background(), owner, invitation.ID)
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestRequireApprovalAuthorityOwnerOnly(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	invitee := uuid.New()
	stranger := uuid.New()
	list := store.addList(owner, false)
	invitation := store.addInvitation(list.ID, owner, invitee, StatusAccepted, false)
	eval := NewEvaluator(store)

	_, err := eval.RequireApprovalAuthority(context.Background(), owner, invitation.ID)
	require.NoError(t, err)

	_, err = eval.RequireApprovalAuthority(context.Background(), invitee, invitation.ID)
	require.ErrorIs(t, err, ErrInvitationNotFound)

	_, err = eval.RequireApprovalAuthority(context.Background(), stranger, invitation.ID)
	require.ErrorIs(t, err, ErrInvitationNotFound)
}
