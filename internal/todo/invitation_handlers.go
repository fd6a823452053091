package todo

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tandemlist/tandemlist/internal/apperrors"
	"github.com/tandemlist/tandemlist/internal/audit"
	"github.com/tandemlist/tandemlist/internal/auth"
)

// CreateInvitationRequest is the payload for a direct invitation.
type CreateInvitationRequest struct {
	InviteeID uuid.UUID `json:"invitee_id"`
}

// CreateCodeRequest is the payload for issuing an invitation code.
type CreateCodeRequest struct {
	AutoApprove bool `json:"auto_approve"`
}

// HandleListMyPendingInvitations handles
// GET /api/v1/todo-lists/invitations/my/pending.
func HandleListMyPendingInvitations(pool *pgxpool.Pool) http.HandlerFunc {
	return handleListMyInvitations(pool, StatusPending)
}

// HandleListMyAcceptedInvitations handles
// GET /api/v1/todo-lists/invitations/my/accepted.
func HandleListMyAcceptedInvitations(pool *pgxpool.Pool) http.HandlerFunc {
	return handleListMyInvitations(pool, StatusAccepted)
}

func handleListMyInvitations(pool *pgxpool.Pool, status InvitationStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		store := NewStore(pool)
		invitations, err := store.ListInvitationsByInvitee(ctx, userID, status)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list invitations")
			apperrors.WriteInternalError(w, r, "Failed to list invitations")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"invitations": toInvitationResponses(invitations),
		})
	}
}

// HandleGetInvitation handles GET /api/v1/todo-lists/invitations/{invitation_id}.
// Visible to the inviter and invitee only.
func HandleGetInvitation(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		invitationID, ok := uuidParam(w, r, "invitation_id", "invitation ID")
		if !ok {
			return
		}

		invitation, err := NewEvaluator(NewStore(pool)).RequireInvitationView(ctx, userID, invitationID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"invitation": toInvitationResponse(invitation),
		})
	}
}

// HandleListListInvitations handles GET /api/v1/todo-lists/{list_id}/invitations.
// Owner only.
func HandleListListInvitations(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		listID, ok := listIDParam(w, r)
		if !ok {
			return
		}

		store := NewStore(pool)
		if _, err := NewEvaluator(store).RequireListAccess(ctx, userID, listID, CapabilityOwnerOnly); err != nil {
			writeDomainError(w, r, err)
			return
		}

		invitations, err := store.ListInvitationsByList(ctx, listID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list invitations")
			apperrors.WriteInternalError(w, r, "Failed to list invitations")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"invitations": toInvitationResponses(invitations),
		})
	}
}

// HandleListInvitationCodes handles GET /api/v1/todo-lists/{list_id}/invitations/codes.
// Owner only.
func HandleListInvitationCodes(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		listID, ok := listIDParam(w, r)
		if !ok {
			return
		}

		store := NewStore(pool)
		if _, err := NewEvaluator(store).RequireListAccess(ctx, userID, listID, CapabilityOwnerOnly); err != nil {
			writeDomainError(w, r, err)
			return
		}

		codes, err := store.ListInvitationCodes(ctx, listID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list invitation codes")
			apperrors.WriteInternalError(w, r, "Failed to list invitation codes")
			return
		}

		resp := make([]codeResponse, len(codes))
		for i := range codes {
			resp[i] = toCodeResponse(&codes[i])
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"codes": resp,
		})
	}
}

// HandleCreateInvitation handles POST /api/v1/todo-lists/{list_id}/invitations.
// Owner only.
func HandleCreateInvitation(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		listID, ok := listIDParam(w, r)
		if !ok {
			return
		}

		var req CreateInvitationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if req.InviteeID == uuid.Nil {
			apperrors.WriteBadRequest(w, r, "Invitee ID is required")
			return
		}

		store := NewStore(pool)
		if _, err := NewEvaluator(store).RequireListAccess(ctx, userID, listID, CapabilityOwnerOnly); err != nil {
			writeDomainError(w, r, err)
			return
		}

		invitation, err := NewLifecycle(store).CreateDirectInvitation(ctx, listID, userID, req.InviteeID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create invitation")
			apperrors.WriteInternalError(w, r, "Failed to create invitation")
			return
		}

		if err := auditor.LogInvitationEvent(ctx, audit.EventInvitationCreated, listID, userID, invitation.ID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"invitation": toInvitationResponse(invitation),
		})
	}
}

// HandleCreateInvitationCode handles POST /api/v1/todo-lists/{list_id}/invitations/codes.
// Owner only.
func HandleCreateInvitationCode(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		listID, ok := listIDParam(w, r)
		if !ok {
			return
		}

		var req CreateCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		store := NewStore(pool)
		if _, err := NewEvaluator(store).RequireListAccess(ctx, userID, listID, CapabilityOwnerOnly); err != nil {
			writeDomainError(w, r, err)
			return
		}

		code, err := NewLifecycle(store).CreateCode(ctx, listID, userID, req.AutoApprove)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create invitation code")
			apperrors.WriteInternalError(w, r, "Failed to create invitation code")
			return
		}

		if err := auditor.LogInvitationCodeCreated(ctx, listID, userID, code.ID, code.AutoApprove); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"code": toCodeResponse(code),
		})
	}
}

// HandleJoinByCode handles POST /api/v1/todo-lists/{list_id}/invitations/codes/{code_id}.
// Any authenticated user with the code may join the list.
func HandleJoinByCode(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		listID, ok := listIDParam(w, r)
		if !ok {
			return
		}
		codeID, ok := uuidParam(w, r, "code_id", "code ID")
		if !ok {
			return
		}

		store := NewStore(pool)
		if _, err := store.GetList(ctx, listID); err != nil {
			writeDomainError(w, r, err)
			return
		}

		invitation, err := NewLifecycle(store).JoinByCode(ctx, listID, codeID, userID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		if err := auditor.LogInvitationEvent(ctx, audit.EventInvitationJoined, listID, userID, invitation.ID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"invitation": toInvitationResponse(invitation),
		})
	}
}

// HandleAcceptInvitation handles PATCH /api/v1/todo-lists/invitations/{invitation_id}/accept.
// Invitee only, regardless of approval state.
func HandleAcceptInvitation(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return handleInviteeTransition(pool, auditor, StatusAccepted)
}

// HandleRejectInvitation handles PATCH /api/v1/todo-lists/invitations/{invitation_id}/reject.
// Invitee only.
func HandleRejectInvitation(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return handleInviteeTransition(pool, auditor, StatusRejected)
}

func handleInviteeTransition(pool *pgxpool.Pool, auditor *audit.Writer, status InvitationStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		invitationID, ok := uuidParam(w, r, "invitation_id", "invitation ID")
		if !ok {
			return
		}

		store := NewStore(pool)
		if _, err := NewEvaluator(store).RequireInviteeTransition(ctx, userID, invitationID); err != nil {
			writeDomainError(w, r, err)
			return
		}

		lifecycle := NewLifecycle(store)
		var (
			invitation *Invitation
			err        error
			event      string
		)
		if status == StatusAccepted {
			invitation, err = lifecycle.Accept(ctx, invitationID)
			event = audit.EventInvitationAccepted
		} else {
			invitation, err = lifecycle.Reject(ctx, invitationID)
			event = audit.EventInvitationRejected
		}
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		if err := auditor.LogInvitationEvent(ctx, event, invitation.ListID, userID, invitation.ID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"invitation": toInvitationResponse(invitation),
		})
	}
}

// HandleApproveInvitation handles PATCH /api/v1/todo-lists/invitations/{invitation_id}/approve.
// Owner of the invitation's list only.
func HandleApproveInvitation(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		invitationID, ok := uuidParam(w, r, "invitation_id", "invitation ID")
		if !ok {
			return
		}

		store := NewStore(pool)
		if _, err := NewEvaluator(store).RequireApprovalAuthority(ctx, userID, invitationID); err != nil {
			writeDomainError(w, r, err)
			return
		}

		invitation, err := NewLifecycle(store).Approve(ctx, invitationID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		if err := auditor.LogInvitationEvent(ctx, audit.EventInvitationApproved, invitation.ListID, userID, invitation.ID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"invitation": toInvitationResponse(invitation),
		})
	}
}

func toInvitationResponses(invitations []Invitation) []invitationResponse {
	resp := make([]invitationResponse, len(invitations))
	for i := range invitations {
		resp[i] = toInvitationResponse(&invitations[i])
	}
	return resp
}
