package todo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Capability is the kind of access a caller requests on a list.
type Capability int

const (
	// CapabilityView covers reads of a list and its items.
	CapabilityView Capability = iota
	// CapabilityMutate covers writes to a list's items.
	CapabilityMutate
	// CapabilityOwnerOnly covers archiving, invitation management and
	// anything else reserved to the list owner.
	CapabilityOwnerOnly
)

// AccessReader is the read surface the evaluator needs. *Store satisfies it;
// tests substitute in-memory fakes.
type AccessReader interface {
	// GetList returns ErrListNotFound when no such list exists.
	GetList(ctx context.Context, listID uuid.UUID) (*List, error)
	// GetInvitation returns ErrInvitationNotFound when no such invitation
	// exists.
	GetInvitation(ctx context.Context, invitationID uuid.UUID) (*Invitation, error)
	// FindAcceptedMembership returns the earliest accepted invitation for
	// the (list, user) pair, or ErrNotMember when there is none.
	FindAcceptedMembership(ctx context.Context, listID, userID uuid.UUID) (*Invitation, error)
}

// Evaluator decides whether a (user, list) pair may perform an operation.
//
// Every denial is reported as the same not-found error an absent target
// produces, so unauthorized callers cannot probe for existence. The evaluator
// never distinguishes "forbidden" from "does not exist"; only the
// authentication layer above it returns anything else.
type Evaluator struct {
	store AccessReader
}

// NewEvaluator creates an access evaluator over the given reader.
func NewEvaluator(store AccessReader) *Evaluator {
	return &Evaluator{store: store}
}

// RequireListAccess authorizes the requested capability on a list and returns
// the list on success.
//
// View and Mutate pass for the owner or any accepted member, regardless of
// approval. OwnerOnly passes for the owner alone. Every failure is
// ErrListNotFound.
func (e *Evaluator) RequireListAccess(ctx context.Context, userID, listID uuid.UUID, capability Capability) (*List, error) {
	list, err := e.store.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}

	if list.OwnerID == userID {
		return list, nil
	}

	if capability == CapabilityOwnerOnly {
		log.Debug().
			Str("user_id", userID.String()).
			Str("list_id", listID.String()).
			Msg("Access: owner-only operation requested by non-owner")
		return nil, ErrListNotFound
	}

	if _, err := e.store.FindAcceptedMembership(ctx, listID, userID); err != nil {
		if errors.Is(err, ErrNotMember) {
			log.Debug().
				Str("user_id", userID.String()).
				Str("list_id", listID.String()).
				Msg("Access: user is not a member of list")
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to check list membership: %w", err)
	}

	return list, nil
}

// RequireDiscussionAccess authorizes access to discussions and messages under
// a list. Unlike plain list access, membership must also be approved; an
// accepted-but-unapproved member cannot even observe that a discussion
// exists. Every failure is ErrDiscussionNotFound.
func (e *Evaluator) RequireDiscussionAccess(ctx context.Context, userID, listID uuid.UUID) (*List, error) {
	list, err := e.store.GetList(ctx, listID)
	if err != nil {
		if errors.Is(err, ErrListNotFound) {
			return nil, ErrDiscussionNotFound
		}
		return nil, err
	}

	if list.OwnerID == userID {
		return list, nil
	}

	invitation, err := e.store.FindAcceptedMembership(ctx, listID, userID)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			return nil, ErrDiscussionNotFound
		}
		return nil, fmt.Errorf("failed to check list membership: %w", err)
	}

	if !invitation.Approved {
		log.Debug().
			Str("user_id", userID.String()).
			Str("list_id", listID.String()).
			Msg("Access: member not approved for discussions")
		return nil, ErrDiscussionNotFound
	}

	return list, nil
}

// RequireActiveListAccess authorizes the capability and then applies the
// archived-list gate. The gate runs strictly after the access check so it can
// never reveal an archived list to a non-member.
func (e *Evaluator) RequireActiveListAccess(ctx context.Context, userID, listID uuid.UUID, capability Capability) (*List, error) {
	list, err := e.RequireListAccess(ctx, userID, listID, capability)
	if err != nil {
		return nil, err
	}
	if list.IsArchived {
		return nil, ErrListArchived
	}
	return list, nil
}

// RequireInvitationView authorizes reading a single invitation: only its
// inviter and invitee may see it.
func (e *Evaluator) RequireInvitationView(ctx context.Context, userID, invitationID uuid.UUID) (*Invitation, error) {
	invitation, err := e.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if invitation.InviterID != userID && invitation.InviteeID != userID {
		return nil, ErrInvitationNotFound
	}
	return invitation, nil
}

// RequireInviteeTransition authorizes accept/reject: invitee only. Approval
// state is irrelevant here; it gates discussion access, not the transition.
func (e *Evaluator) RequireInviteeTransition(ctx context.Context, userID, invitationID uuid.UUID) (*Invitation, error) {
	invitation, err := e.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if invitation.InviteeID != userID {
		return nil, ErrInvitationNotFound
	}
	return invitation, nil
}

// RequireApprovalAuthority authorizes approving an invitation: only the owner
// of the list the invitation belongs to may approve.
func (e *Evaluator) RequireApprovalAuthority(ctx context.Context, userID, invitationID uuid.UUID) (*Invitation, error) {
	invitation, err := e.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	list, err := e.store.GetList(ctx, invitation.ListID)
	if err != nil {
		if errors.Is(err, ErrListNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	if list.OwnerID != userID {
		return nil, ErrInvitationNotFound
	}

	return invitation, nil
}
