package todo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tandemlist/tandemlist/internal/apperrors"
	"github.com/tandemlist/tandemlist/internal/auth"
)

// CreateMessageRequest is the payload for posting a discussion message.
type CreateMessageRequest struct {
	Content string `json:"content"`
}

// HandleGetItemDiscussion handles
// GET /api/v1/todo-lists/{list_id}/items/{item_id}/discussion, creating the
// discussion on first access. Requires approved membership: an accepted but
// unapproved member cannot learn that the discussion exists.
func HandleGetItemDiscussion(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		listID, ok := listIDParam(w, r)
		if !ok {
			return
		}
		itemID, ok := uuidParam(w, r, "item_id", "item ID")
		if !ok {
			return
		}

		store := NewStore(pool)
		if _, err := NewEvaluator(store).RequireDiscussionAccess(ctx, userID, listID); err != nil {
			writeDomainError(w, r, err)
			return
		}

		if _, err := store.GetItem(ctx, listID, itemID); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				writeDomainError(w, r, ErrDiscussionNotFound)
				return
			}
			writeDomainError(w, r, err)
			return
		}

		discussion, err := store.GetOrCreateDiscussion(ctx, itemID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to get or create discussion")
			apperrors.WriteInternalError(w, r, "Failed to load discussion")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"discussion": discussionResponse{
				ID:        discussion.ID,
				ItemID:    discussion.ItemID,
				CreatedAt: discussion.CreatedAt,
			},
		})
	}
}

// HandleListDiscussionMessages handles
// GET /api/v1/todo-lists/discussions/{discussion_id}/messages. The owning
// list is resolved through discussion -> item -> list before the access
// check.
func HandleListDiscussionMessages(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		discussionID, ok := uuidParam(w, r, "discussion_id", "discussion ID")
		if !ok {
			return
		}

		store := NewStore(pool)
		discussion, item, err := store.GetDiscussionContext(ctx, discussionID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		if _, err := NewEvaluator(store).RequireDiscussionAccess(ctx, userID, item.ListID); err != nil {
			writeDomainError(w, r, err)
			return
		}

		messages, err := store.ListMessages(ctx, discussion.ID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list messages")
			apperrors.WriteInternalError(w, r, "Failed to list messages")
			return
		}

		resp := make([]messageResponse, len(messages))
		for i := range messages {
			resp[i] = toMessageResponse(&messages[i])
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"messages": resp,
		})
	}
}

// HandleCreateMessage handles
// POST /api/v1/todo-lists/discussions/{discussion_id}/messages.
func HandleCreateMessage(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		discussionID, ok := uuidParam(w, r, "discussion_id", "discussion ID")
		if !ok {
			return
		}

		var req CreateMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		req.Content = strings.TrimSpace(req.Content)
		if req.Content == "" {
			apperrors.WriteBadRequest(w, r, "Message content is required")
			return
		}

		store := NewStore(pool)
		discussion, item, err := store.GetDiscussionContext(ctx, discussionID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		if _, err := NewEvaluator(store).RequireDiscussionAccess(ctx, userID, item.ListID); err != nil {
			writeDomainError(w, r, err)
			return
		}

		message, err := store.CreateMessage(ctx, discussion.ID, userID, req.Content)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create message")
			apperrors.WriteInternalError(w, r, "Failed to create message")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"message": toMessageResponse(message),
		})
	}
}
