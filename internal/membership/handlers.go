package membership

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tandemlist/tandemlist/internal/apperrors"
	"github.com/tandemlist/tandemlist/internal/auth"
	"github.com/tandemlist/tandemlist/internal/validation"
)

type levelResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Rank      int       `json:"rank"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type recordResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	LevelID      uuid.UUID `json:"level_id"`
	StartAtUTC   time.Time `json:"start_at_utc"`
	EndBeforeUTC time.Time `json:"end_before_utc"`
	CreatedAt    time.Time `json:"created_at"`
}

func toLevelResponse(level *Level) levelResponse {
	return levelResponse{
		ID:        level.ID,
		Code:      level.Code,
		Name:      level.Name,
		Rank:      level.Rank,
		IsDefault: level.IsDefault,
		CreatedAt: level.CreatedAt,
	}
}

func toRecordResponse(record *Record) recordResponse {
	return recordResponse{
		ID:           record.ID,
		UserID:       record.UserID,
		LevelID:      record.LevelID,
		StartAtUTC:   record.StartAtUTC,
		EndBeforeUTC: record.EndBeforeUTC,
		CreatedAt:    record.CreatedAt,
	}
}

// LevelRequest is the payload for creating or updating a level.
type LevelRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// RecordRequest is the payload for granting a membership record.
type RecordRequest struct {
	UserID       uuid.UUID `json:"user_id"`
	LevelID      uuid.UUID `json:"level_id"`
	StartAtUTC   time.Time `json:"start_at_utc"`
	EndBeforeUTC time.Time `json:"end_before_utc"`
}

// HandleListLevels handles GET /api/v1/membership/levels.
func HandleListLevels(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		levels, err := NewStore(pool).ListLevels(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to list membership levels")
			apperrors.WriteInternalError(w, r, "Failed to list levels")
			return
		}

		resp := make([]levelResponse, len(levels))
		for i := range levels {
			resp[i] = toLevelResponse(&levels[i])
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"levels": resp,
		})
	}
}

// HandleCreateLevel handles POST /api/v1/membership/levels.
func HandleCreateLevel(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LevelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		req.Code = validation.NormalizeSlug(req.Code)
		if err := validation.ValidateSlug(req.Code); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid level code: "+err.Error())
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			apperrors.WriteBadRequest(w, r, "Level name is required")
			return
		}
		if req.Rank < 0 {
			apperrors.WriteBadRequest(w, r, "Level rank must not be negative")
			return
		}

		level, err := NewStore(pool).CreateLevel(r.Context(), req.Code, req.Name, req.Rank)
		if err != nil {
			if errors.Is(err, ErrLevelCodeTaken) {
				apperrors.WriteConflict(w, r, "A level with this code already exists")
				return
			}
			log.Error().Err(err).Msg("Failed to create membership level")
			apperrors.WriteInternalError(w, r, "Failed to create level")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"level": toLevelResponse(level),
		})
	}
}

// HandleUpdateLevel handles PATCH /api/v1/membership/levels/{level_id}.
func HandleUpdateLevel(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		levelID, ok := pathID(w, r, "level_id", "level ID")
		if !ok {
			return
		}

		var req LevelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			apperrors.WriteBadRequest(w, r, "Level name is required")
			return
		}
		if req.Rank < 0 {
			apperrors.WriteBadRequest(w, r, "Level rank must not be negative")
			return
		}

		level, err := NewStore(pool).UpdateLevel(r.Context(), levelID, req.Name, req.Rank)
		if err != nil {
			if errors.Is(err, ErrLevelNotFound) {
				apperrors.WriteNotFound(w, r, "Level not found")
				return
			}
			log.Error().Err(err).Msg("Failed to update membership level")
			apperrors.WriteInternalError(w, r, "Failed to update level")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"level": toLevelResponse(level),
		})
	}
}

// HandleDeleteLevel handles DELETE /api/v1/membership/levels/{level_id}.
func HandleDeleteLevel(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		levelID, ok := pathID(w, r, "level_id", "level ID")
		if !ok {
			return
		}

		if err := NewStore(pool).DeleteLevel(r.Context(), levelID); err != nil {
			switch {
			case errors.Is(err, ErrLevelNotFound):
				apperrors.WriteNotFound(w, r, "Level not found")
			case errors.Is(err, ErrLevelInUse):
				apperrors.WriteConflict(w, r, "Level is still referenced by membership records")
			default:
				log.Error().Err(err).Msg("Failed to delete membership level")
				apperrors.WriteInternalError(w, r, "Failed to delete level")
			}
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"deleted": true,
		})
	}
}

// HandleListRecords handles GET /api/v1/membership/records?user_id=...
func HandleListRecords(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userID *uuid.UUID
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				apperrors.WriteBadRequest(w, r, "Invalid user ID")
				return
			}
			userID = &parsed
		}

		records, err := NewStore(pool).ListRecords(r.Context(), userID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list membership records")
			apperrors.WriteInternalError(w, r, "Failed to list records")
			return
		}

		resp := make([]recordResponse, len(records))
		for i := range records {
			resp[i] = toRecordResponse(&records[i])
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"records": resp,
		})
	}
}

// HandleCreateRecord handles POST /api/v1/membership/records.
func HandleCreateRecord(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if req.UserID == uuid.Nil || req.LevelID == uuid.Nil {
			apperrors.WriteBadRequest(w, r, "User ID and level ID are required")
			return
		}
		if !req.EndBeforeUTC.After(req.StartAtUTC) {
			apperrors.WriteBadRequest(w, r, "Record window must end after it starts")
			return
		}

		record, err := NewStore(pool).CreateRecord(r.Context(),
			req.UserID, req.LevelID, req.StartAtUTC.UTC(), req.EndBeforeUTC.UTC())
		if err != nil {
			if errors.Is(err, ErrLevelNotFound) {
				apperrors.WriteBadRequest(w, r, "Unknown user or level")
				return
			}
			log.Error().Err(err).Msg("Failed to create membership record")
			apperrors.WriteInternalError(w, r, "Failed to create record")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"record": toRecordResponse(record),
		})
	}
}

// HandleDeleteRecord handles DELETE /api/v1/membership/records/{record_id}.
func HandleDeleteRecord(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, ok := pathID(w, r, "record_id", "record ID")
		if !ok {
			return
		}

		if err := NewStore(pool).DeleteRecord(r.Context(), recordID); err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				apperrors.WriteNotFound(w, r, "Record not found")
				return
			}
			log.Error().Err(err).Msg("Failed to delete membership record")
			apperrors.WriteInternalError(w, r, "Failed to delete record")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"deleted": true,
		})
	}
}

// HandleMyMembership handles GET /api/v1/membership/my: the caller's
// effective level right now.
func HandleMyMembership(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.GetUserID(r.Context())

		level, err := NewResolver(NewStore(pool)).Current(r.Context(), userID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to resolve current membership")
			apperrors.WriteInternalError(w, r, "Failed to resolve membership")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"level": toLevelResponse(level),
		})
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		apperrors.WriteBadRequest(w, r, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}
