package todo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvitationCodeTTL is how long a join code stays valid. Fixed policy, not
// configurable.
const InvitationCodeTTL = 24 * time.Hour

// LifecycleStore is the write surface the lifecycle manager needs. *Store
// satisfies it; tests substitute in-memory fakes.
type LifecycleStore interface {
	GetInvitationCode(ctx context.Context, listID, codeID uuid.UUID) (*InvitationCode, error)
	CreateInvitation(ctx context.Context, params CreateInvitationParams) (*Invitation, error)
	CreateInvitationCode(ctx context.Context, listID, inviterID uuid.UUID, expiresAt time.Time, autoApprove bool) (*InvitationCode, error)
	SetInvitationStatus(ctx context.Context, invitationID uuid.UUID, status InvitationStatus) (*Invitation, error)
	SetInvitationApproved(ctx context.Context, invitationID uuid.UUID) (*Invitation, error)
}

// Lifecycle performs the state-changing operations on invitations and
// invitation codes. Callers are expected to have passed the evaluator's
// guards already; the lifecycle enforces data-level invariants only.
type Lifecycle struct {
	store LifecycleStore
	now   func() time.Time
}

// NewLifecycle creates an invitation lifecycle manager.
func NewLifecycle(store LifecycleStore) *Lifecycle {
	return &Lifecycle{store: store, now: time.Now}
}

// CreateDirectInvitation invites a user by id. Direct invitations start
// pending (the invitee must accept) but pre-approved, since the owner created
// them knowingly.
func (l *Lifecycle) CreateDirectInvitation(ctx context.Context, listID, inviterID, inviteeID uuid.UUID) (*Invitation, error) {
	return l.store.CreateInvitation(ctx, CreateInvitationParams{
		ListID:    listID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    StatusPending,
		Approved:  true,
	})
}

// CreateCode issues a join code for a list, expiring InvitationCodeTTL from
// now.
func (l *Lifecycle) CreateCode(ctx context.Context, listID, inviterID uuid.UUID, autoApprove bool) (*InvitationCode, error) {
	expiresAt := l.now().UTC().Add(InvitationCodeTTL)
	return l.store.CreateInvitationCode(ctx, listID, inviterID, expiresAt, autoApprove)
}

// JoinByCode consumes a join code. The resulting invitation is accepted
// immediately (the invitee joined by their own action, there is nothing left
// to accept) and approved only when the code was issued with auto-approval.
func (l *Lifecycle) JoinByCode(ctx context.Context, listID, codeID, inviteeID uuid.UUID) (*Invitation, error) {
	code, err := l.store.GetInvitationCode(ctx, listID, codeID)
	if err != nil {
		return nil, err
	}
	if !code.ExpiresAt.After(l.now()) {
		return nil, ErrInvitationCodeExpired
	}

	return l.store.CreateInvitation(ctx, CreateInvitationParams{
		ListID:    listID,
		InviterID: code.InviterID,
		InviteeID: inviteeID,
		Status:    StatusAccepted,
		Approved:  code.AutoApprove,
	})
}

// Accept transitions an invitation to accepted. Accepting an already-accepted
// invitation is a no-op success; a rejected one cannot be revived.
func (l *Lifecycle) Accept(ctx context.Context, invitationID uuid.UUID) (*Invitation, error) {
	return l.store.SetInvitationStatus(ctx, invitationID, StatusAccepted)
}

// Reject transitions an invitation to rejected. Rejecting an
// already-rejected invitation is a no-op success; an accepted one cannot be
// withdrawn.
func (l *Lifecycle) Reject(ctx context.Context, invitationID uuid.UUID) (*Invitation, error) {
	return l.store.SetInvitationStatus(ctx, invitationID, StatusRejected)
}

// Approve sets the approved flag. Idempotent, and never reversed.
func (l *Lifecycle) Approve(ctx context.Context, invitationID uuid.UUID) (*Invitation, error) {
	return l.store.SetInvitationApproved(ctx, invitationID)
}
