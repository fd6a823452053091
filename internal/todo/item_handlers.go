package todo

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tandemlist/tandemlist/internal/apperrors"
	"github.com/tandemlist/tandemlist/internal/auth"
)

// ItemContentRequest is the payload for creating or updating an item.
type ItemContentRequest struct {
	Content string `json:"content"`
}

// HandleListItems handles GET /api/v1/todo-lists/{list_id}/items.
func HandleListItems(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		listID, ok := listIDParam(w, r)
		if !ok {
			return
		}

		store := NewStore(pool)
		if _, err := NewEvaluator(store).RequireListAccess(ctx, userID, listID, CapabilityView); err != nil {
			writeDomainError(w, r, err)
			return
		}

		items, err := store.ListItems(ctx, listID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list items")
			apperrors.WriteInternalError(w, r, "Failed to list items")
			return
		}

		resp := make([]itemResponse, len(items))
		for i := range items {
			resp[i] = toItemResponse(&items[i])
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"items": resp,
		})
	}
}

// HandleGetItem handles GET /api/v1/todo-lists/{list_id}/items/{item_id}.
func HandleGetItem(pool *pgxpool.Pool) http.HandlerFunc {
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
		if _, err := NewEvaluator(store).RequireListAccess(ctx, userID, listID, CapabilityView); err != nil {
			writeDomainError(w, r, err)
			return
		}

		item, err := store.GetItem(ctx, listID, itemID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"item": toItemResponse(item),
		})
	}
}

// HandleCreateItem handles POST /api/v1/todo-lists/{list_id}/items.
// Requires mutate access on an unarchived list.
func HandleCreateItem(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		listID, ok := listIDParam(w, r)
		if !ok {
			return
		}

		var req ItemContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		req.Content = strings.TrimSpace(req.Content)
		if req.Content == "" {
			apperrors.WriteBadRequest(w, r, "Item content is required")
			return
		}

		store := NewStore(pool)
		if _, err := NewEvaluator(store).RequireActiveListAccess(ctx, userID, listID, CapabilityMutate); err != nil {
			writeDomainError(w, r, err)
			return
		}

		item, err := store.CreateItem(ctx, listID, req.Content)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create item")
			apperrors.WriteInternalError(w, r, "Failed to create item")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"item": toItemResponse(item),
		})
	}
}

// HandleUpdateItem handles PATCH /api/v1/todo-lists/{list_id}/items/{item_id}.
func HandleUpdateItem(pool *pgxpool.Pool) http.HandlerFunc {
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

		var req ItemContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		req.Content = strings.TrimSpace(req.Content)
		if req.Content == "" {
			apperrors.WriteBadRequest(w, r, "Item content is required")
			return
		}

		store := NewStore(pool)
		if _, err := NewEvaluator(store).RequireActiveListAccess(ctx, userID, listID, CapabilityMutate); err != nil {
			writeDomainError(w, r, err)
			return
		}

		item, err := store.UpdateItemContent(ctx, listID, itemID, req.Content)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"item": toItemResponse(item),
		})
	}
}

// HandleCompleteItem handles POST .../items/{item_id}/complete.
func HandleCompleteItem(pool *pgxpool.Pool) http.HandlerFunc {
	return handleSetCompletion(pool, true)
}

// HandleUncompleteItem handles POST .../items/{item_id}/uncomplete.
func HandleUncompleteItem(pool *pgxpool.Pool) http.HandlerFunc {
	return handleSetCompletion(pool, false)
}

func handleSetCompletion(pool *pgxpool.Pool, completed bool) http.HandlerFunc {
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
		if _, err := NewEvaluator(store).RequireActiveListAccess(ctx, userID, listID, CapabilityMutate); err != nil {
			writeDomainError(w, r, err)
			return
		}

		completedBy := userID
		if !completed {
			completedBy = uuid.Nil
		}

		item, err := store.SetItemCompletion(ctx, listID, itemID, completedBy)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"item": toItemResponse(item),
		})
	}
}
