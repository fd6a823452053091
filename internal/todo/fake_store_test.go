package todo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// fakeStore is an in-memory AccessReader + LifecycleStore for unit tests.
type fakeStore struct {
	lists       map[uuid.UUID]*List
	invitations map[uuid.UUID]*Invitation
	codes       map[uuid.UUID]*InvitationCode
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists:       make(map[uuid.UUID]*List),
		invitations: make(map[uuid.UUID]*Invitation),
		codes:       make(map[uuid.UUID]*InvitationCode),
	}
}

func (f *fakeStore) addList(ownerID uuid.UUID, archived bool) *List {
	list := &List{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Name:       "test list",
		IsArchived: archived,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	f.lists[list.ID] = list
	return list
}

func (f *fakeStore) addInvitation(listID, inviterID, inviteeID uuid.UUID, status InvitationStatus, approved bool) *Invitation {
	invitation := &Invitation{
		ID:        uuid.New(),
		ListID:    listID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    status,
		Approved:  approved,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.invitations[invitation.ID] = invitation
	return invitation
}

func (f *fakeStore) addCode(listID, inviterID uuid.UUID, expiresAt time.Time, autoApprove bool) *InvitationCode {
	code := &InvitationCode{
		ID:          uuid.New(),
		ListID:      listID,
		InviterID:   inviterID,
		ExpiresAt:   expiresAt,
		AutoApprove: autoApprove,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.codes[code.ID] = code
	return code
}

func (f *fakeStore) GetList(_ context.Context, listID uuid.UUID) (*List, error) {
	list, ok := f.lists[listID]
	if !ok {
		return nil, ErrListNotFound
	}
	copied := *list
	return &copied, nil
}

func (f *fakeStore) GetInvitation(_ context.Context, invitationID uuid.UUID) (*Invitation, error) {
	invitation, ok := f.invitations[invitationID]
	if !ok {
		return nil, ErrInvitationNotFound
	}
	copied := *invitation
	return &copied, nil
}

func (f *fakeStore) FindAcceptedMembership(_ context.Context, listID, userID uuid.UUID) (*Invitation, error) {
	var earliest *Invitation
	for _, invitation := range f.invitations {
		if invitation.ListID != listID || invitation.InviteeID != userID || invitation.Status != StatusAccepted {
			continue
		}
		if earliest == nil || invitation.CreatedAt.Before(earliest.CreatedAt) {
			earliest = invitation
		}
	}
	if earliest == nil {
		return nil, ErrNotMember
	}
	copied := *earliest
	return &copied, nil
}

func (f *fakeStore) GetInvitationCode(_ context.Context, listID, codeID uuid.UUID) (*InvitationCode, error) {
	code, ok := f.codes[codeID]
	if !ok || code.ListID != listID {
		return nil, ErrInvitationCodeNotFound
	}
	copied := *code
	return &copied, nil
}

func (f *fakeStore) CreateInvitation(_ context.Context, params CreateInvitationParams) (*Invitation, error) {
	invitation := &Invitation{
		ID:        uuid.New(),
		ListID:    params.ListID,
		InviterID: params.InviterID,
		InviteeID: params.InviteeID,
		Status:    params.Status,
		Approved:  params.Approved,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.invitations[invitation.ID] = invitation
	copied := *invitation
	return &copied, nil
}

func (f *fakeStore) CreateInvitationCode(_ context.Context, listID, inviterID uuid.UUID, expiresAt time.Time, autoApprove bool) (*InvitationCode, error) {
	return f.addCode(listID, inviterID, expiresAt, autoApprove), nil
}

func (f *fakeStore) SetInvitationStatus(_ context.Context, invitationID uuid.UUID, status InvitationStatus) (*Invitation, error) {
	invitation, ok := f.invitations[invitationID]
	if !ok {
		return nil, ErrInvalidTransition
	}
	if invitation.Status != StatusPending && invitation.Status != status {
		return nil, ErrInvalidTransition
	}
	invitation.Status = status
	invitation.UpdatedAt = time.Now()
	copied := *invitation
	return &copied, nil
}

func (f *fakeStore) SetInvitationApproved(_ context.Context, invitationID uuid.UUID) (*Invitation, error) {
	invitation, ok := f.invitations[invitationID]
	if !ok {
		return nil, ErrInvitationNotFound
	}
	invitation.Approved = true
	invitation.UpdatedAt = time.Now()
	copied := *invitation
	return &copied, nil
}
