package todo

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tandemlist/tandemlist/internal/apperrors"
	"github.com/tandemlist/tandemlist/internal/audit"
	"github.com/tandemlist/tandemlist/internal/auth"
)

// CreateListRequest is the payload for creating a todo list.
type CreateListRequest struct {
	Name     string  `json:"name"`
	Location *string `json:"location"`
}

// HandleCreateList handles POST /api/v1/todo-lists.
func HandleCreateList(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		var req CreateListRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			apperrors.WriteBadRequest(w, r, "List name is required")
			return
		}

		store := NewStore(pool)
		list, err := store.CreateListWithOwner(ctx, userID, req.Name, req.Location)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create list")
			apperrors.WriteInternalError(w, r, "Failed to create list")
			return
		}

		if err := auditor.LogListCreated(ctx, list.ID, userID, list.Name); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"list": toListResponse(list),
		})
	}
}

// HandleListLists handles GET /api/v1/todo-lists (own active lists).
func HandleListLists(pool *pgxpool.Pool) http.HandlerFunc {
	return handleListOwned(pool, false)
}

// HandleListArchivedLists handles GET /api/v1/todo-lists/archived.
func HandleListArchivedLists(pool *pgxpool.Pool) http.HandlerFunc {
	return handleListOwned(pool, true)
}

func handleListOwned(pool *pgxpool.Pool, archived bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		store := NewStore(pool)
		lists, err := store.ListOwnedLists(ctx, userID, archived)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list lists")
			apperrors.WriteInternalError(w, r, "Failed to list lists")
			return
		}

		resp := make([]listResponse, len(lists))
		for i := range lists {
			resp[i] = toListResponse(&lists[i])
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"lists": resp,
		})
	}
}

// HandleGetList handles GET /api/v1/todo-lists/{list_id}.
func HandleGetList(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		listID, ok := listIDParam(w, r)
		if !ok {
			return
		}

		store := NewStore(pool)
		list, err := NewEvaluator(store).RequireListAccess(ctx, userID, listID, CapabilityView)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"list": toListResponse(list),
		})
	}
}

// HandleArchiveList handles POST /api/v1/todo-lists/{list_id}/archive.
// Owner only; archival is one-way.
func HandleArchiveList(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
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

		list, err := store.ArchiveList(ctx, listID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		if err := auditor.LogListArchived(ctx, list.ID, userID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"list": toListResponse(list),
		})
	}
}

func listIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	listID, err := uuid.Parse(chi.URLParam(r, "list_id"))
	if err != nil {
		apperrors.WriteBadRequest(w, r, "Invalid list ID")
		return uuid.Nil, false
	}
	return listID, true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		apperrors.WriteBadRequest(w, r, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}
