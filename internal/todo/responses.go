package todo

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tandemlist/tandemlist/internal/apperrors"
)

type listResponse struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Name       string    `json:"name"`
	Location   *string   `json:"location,omitempty"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toListResponse(list *List) listResponse {
	return listResponse{
		ID:         list.ID,
		OwnerID:    list.OwnerID,
		Name:       list.Name,
		Location:   list.Location,
		IsArchived: list.IsArchived,
		CreatedAt:  list.CreatedAt,
		UpdatedAt:  list.UpdatedAt,
	}
}

type itemResponse struct {
	ID          uuid.UUID  `json:"id"`
	ListID      uuid.UUID  `json:"list_id"`
	Content     string     `json:"content"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *uuid.UUID `json:"completed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toItemResponse(item *Item) itemResponse {
	resp := itemResponse{
		ID:          item.ID,
		ListID:      item.ListID,
		Content:     item.Content,
		IsCompleted: item.IsCompleted,
		CompletedAt: item.CompletedAt,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.CompletedBy.Valid {
		completedBy := item.CompletedBy.UUID
		resp.CompletedBy = &completedBy
	}
	return resp
}

type invitationResponse struct {
	ID        uuid.UUID        `json:"id"`
	ListID    uuid.UUID        `json:"list_id"`
	InviterID uuid.UUID        `json:"inviter_id"`
	InviteeID uuid.UUID        `json:"invitee_id"`
	Status    InvitationStatus `json:"status"`
	Approved  bool             `json:"approved"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func toInvitationResponse(invitation *Invitation) invitationResponse {
	return invitationResponse{
		ID:        invitation.ID,
		ListID:    invitation.ListID,
		InviterID: invitation.InviterID,
		InviteeID: invitation.InviteeID,
		Status:    invitation.Status,
		Approved:  invitation.Approved,
		CreatedAt: invitation.CreatedAt,
		UpdatedAt: invitation.UpdatedAt,
	}
}

type codeResponse struct {
	ID          uuid.UUID `json:"id"`
	ListID      uuid.UUID `json:"list_id"`
	InviterID   uuid.UUID `json:"inviter_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	AutoApprove bool      `json:"auto_approve"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCodeResponse(code *InvitationCode) codeResponse {
	return codeResponse{
		ID:          code.ID,
		ListID:      code.ListID,
		InviterID:   code.InviterID,
		ExpiresAt:   code.ExpiresAt,
		AutoApprove: code.AutoApprove,
		CreatedAt:   code.CreatedAt,
	}
}

type discussionResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

type messageResponse struct {
	ID           uuid.UUID `json:"id"`
	DiscussionID uuid.UUID `json:"discussion_id"`
	SenderID     uuid.UUID `json:"sender_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

func toMessageResponse(message *Message) messageResponse {
	return messageResponse{
		ID:           message.ID,
		DiscussionID: message.DiscussionID,
		SenderID:     message.SenderID,
		Content:      message.Content,
		CreatedAt:    message.CreatedAt,
	}
}

// writeDomainError maps the package's sentinel errors to HTTP responses.
// Denied access and absent targets share the same 404.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrListNotFound),
		errors.Is(err, ErrListArchived):
		apperrors.WriteNotFound(w, r, "Todo list not found")
	case errors.Is(err, ErrItemNotFound):
		apperrors.WriteNotFound(w, r, "Todo item not found")
	case errors.Is(err, ErrDiscussionNotFound):
		apperrors.WriteNotFound(w, r, "Discussion not found")
	case errors.Is(err, ErrInvitationNotFound):
		apperrors.WriteNotFound(w, r, "Invitation not found")
	case errors.Is(err, ErrInvitationCodeNotFound):
		apperrors.WriteNotFound(w, r, "Invitation code not found")
	case errors.Is(err, ErrInvitationCodeExpired):
		apperrors.WriteBadRequest(w, r, "Invitation code has expired")
	case errors.Is(err, ErrInvalidTransition):
		apperrors.WriteBadRequest(w, r, "Invitation can no longer change status")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Todo operation failed")
		apperrors.WriteInternalError(w, r, "Internal server error")
	}
}
