package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	EventUserSignup            = "user.signup"
	EventLoginFailed           = "auth.login_failed"
	EventListCreated           = "list.created"
	EventListArchived          = "list.archived"
	EventInvitationCreated     = "invitation.created"
	EventInvitationCodeCreated = "invitation_code.created"
	EventInvitationJoined      = "invitation.joined"
	EventInvitationAccepted    = "invitation.accepted"
	EventInvitationRejected    = "invitation.rejected"
	EventInvitationApproved    = "invitation.approved"
)

// Writer provides methods to write audit log entries. Writes are best-effort:
// callers log failures and continue.
type Writer struct {
	pool *pgxpool.Pool
}

func NewWriter(pool *pgxpool.Pool) *Writer {
	return &Writer{pool: pool}
}

// LogParams contains parameters for logging an audit event.
type LogParams struct {
	ListID      *uuid.UUID
	ActorUserID *uuid.UUID
	Action      string
	Meta        map[string]interface{}
}

func (w *Writer) Log(ctx context.Context, params LogParams) error {
	metaJSON := []byte("{}")
	if params.Meta != nil {
		b, err := json.Marshal(params.Meta)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal audit meta")
			return err
		}
		metaJSON = b
	}

	query := `
		INSERT INTO audit_log (list_id, actor_user_id, action, meta)
		VALUES ($1, $2, $3, $4)
	`

	_, err := w.pool.Exec(ctx, query, toNullUUID(params.ListID), toNullUUID(params.ActorUserID), params.Action, metaJSON)
	if err != nil {
		log.Error().Err(err).Str("action", params.Action).Msg("Failed to write audit log")
		return err
	}

	log.Info().
		Str("action", params.Action).
		Interface("list_id", params.ListID).
		Interface("actor_user_id", params.ActorUserID).
		Msg("Audit event logged")

	return nil
}

func (w *Writer) LogUserSignup(ctx context.Context, userID uuid.UUID, email string) error {
	return w.Log(ctx, LogParams{
		ActorUserID: &userID,
		Action:      EventUserSignup,
		Meta:        map[string]interface{}{"email": email},
	})
}

func (w *Writer) LogLoginFailed(ctx context.Context, email string) error {
	return w.Log(ctx, LogParams{
		Action: EventLoginFailed,
		Meta:   map[string]interface{}{"email": email},
	})
}

func (w *Writer) LogListCreated(ctx context.Context, listID, ownerID uuid.UUID, name string) error {
	return w.Log(ctx, LogParams{
		ListID:      &listID,
		ActorUserID: &ownerID,
		Action:      EventListCreated,
		Meta:        map[string]interface{}{"name": name},
	})
}

func (w *Writer) LogListArchived(ctx context.Context, listID, ownerID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		ListID:      &listID,
		ActorUserID: &ownerID,
		Action:      EventListArchived,
	})
}

func (w *Writer) LogInvitationEvent(ctx context.Context, action string, listID, actorID, invitationID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		ListID:      &listID,
		ActorUserID: &actorID,
		Action:      action,
		Meta:        map[string]interface{}{"invitation_id": invitationID.String()},
	})
}

func (w *Writer) LogInvitationCodeCreated(ctx context.Context, listID, actorID, codeID uuid.UUID, autoApprove bool) error {
	return w.Log(ctx, LogParams{
		ListID:      &listID,
		ActorUserID: &actorID,
		Action:      EventInvitationCodeCreated,
		Meta: map[string]interface{}{
			"code_id":      codeID.String(),
			"auto_approve": autoApprove,
		},
	})
}

func toNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
