package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	levelColumns  = "id, code, name, rank, is_default, created_at, updated_at"
	recordColumns = "id, user_id, membership_level_id, start_at_utc, end_before_utc, created_at, updated_at"
)

// Store provides membership persistence over PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new membership store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLevel(row rowScanner) (*Level, error) {
	var level Level
	err := row.Scan(
		&level.ID,
		&level.Code,
		&level.Name,
		&level.Rank,
		&level.IsDefault,
		&level.CreatedAt,
		&level.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.LevelID,
		&record.StartAtUTC,
		&record.EndBeforeUTC,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListLevels returns all levels ordered by rank.
func (s *Store) ListLevels(ctx context.Context) ([]Level, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+levelColumns+" FROM membership_levels ORDER BY rank ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list membership levels: %w", err)
	}
	defer rows.Close()

	var levels []Level
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership level: %w", err)
		}
		levels = append(levels, *level)
	}
	return levels, rows.Err()
}

// GetLevel returns a level by id.
func (s *Store) GetLevel(ctx context.Context, levelID uuid.UUID) (*Level, error) {
	level, err := scanLevel(s.pool.QueryRow(ctx,
		"SELECT "+levelColumns+" FROM membership_levels WHERE id = $1",
		levelID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLevelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership level: %w", err)
	}
	return level, nil
}

// GetDefaultLevel returns the level flagged as default.
func (s *Store) GetDefaultLevel(ctx context.Context) (*Level, error) {
	level, err := scanLevel(s.pool.QueryRow(ctx,
		"SELECT "+levelColumns+" FROM membership_levels WHERE is_default = TRUE ORDER BY rank ASC LIMIT 1",
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoDefaultLevel
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get default membership level: %w", err)
	}
	return level, nil
}

// CreateLevel inserts a new level.
func (s *Store) CreateLevel(ctx context.Context, code, name string, rank int) (*Level, error) {
	level, err := scanLevel(s.pool.QueryRow(ctx,
		"INSERT INTO membership_levels (code, name, rank) VALUES ($1, $2, $3) RETURNING "+levelColumns,
		code, name, rank,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrLevelCodeTaken
		}
		return nil, fmt.Errorf("failed to create membership level: %w", err)
	}
	return level, nil
}

// UpdateLevel updates a level's name and rank. Code and default flag are
// immutable after creation.
func (s *Store) UpdateLevel(ctx context.Context, levelID uuid.UUID, name string, rank int) (*Level, error) {
	level, err := scanLevel(s.pool.QueryRow(ctx,
		"UPDATE membership_levels SET name = $2, rank = $3, updated_at = NOW() WHERE id = $1 RETURNING "+levelColumns,
		levelID, name, rank,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLevelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update membership level: %w", err)
	}
	return level, nil
}

// DeleteLevel removes a level. The default level and levels referenced by
// records cannot be deleted.
func (s *Store) DeleteLevel(ctx context.Context, levelID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM membership_levels WHERE id = $1 AND is_default = FALSE",
		levelID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrLevelInUse
		}
		return fmt.Errorf("failed to delete membership level: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLevelNotFound
	}
	return nil
}

// FindCoveringLevels returns the levels of all records whose window covers
// the given instant for the user.
func (s *Store) FindCoveringLevels(ctx context.Context, userID uuid.UUID, at time.Time) ([]Level, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT l.id, l.code, l.name, l.rank, l.is_default, l.created_at, l.updated_at
		 FROM membership_records r
		 JOIN membership_levels l ON l.id = r.membership_level_id
		 WHERE r.user_id = $1 AND r.start_at_utc <= $2 AND r.end_before_utc > $2`,
		userID, at,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find covering membership records: %w", err)
	}
	defer rows.Close()

	var levels []Level
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership level: %w", err)
		}
		levels = append(levels, *level)
	}
	return levels, rows.Err()
}

// ListRecords returns records, optionally filtered to one user.
func (s *Store) ListRecords(ctx context.Context, userID *uuid.UUID) ([]Record, error) {
	query := "SELECT " + recordColumns + " FROM membership_records"
	args := []any{}
	if userID != nil {
		query += " WHERE user_id = $1"
		args = append(args, *userID)
	}
	query += " ORDER BY start_at_utc DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list membership records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// CreateRecord grants a level to a user for a time window.
func (s *Store) CreateRecord(ctx context.Context, userID, levelID uuid.UUID, startAt, endBefore time.Time) (*Record, error) {
	record, err := scanRecord(s.pool.QueryRow(ctx,
		`INSERT INTO membership_records (user_id, membership_level_id, start_at_utc, end_before_utc)
		 VALUES ($1, $2, $3, $4) RETURNING `+recordColumns,
		userID, levelID, startAt, endBefore,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrLevelNotFound
		}
		return nil, fmt.Errorf("failed to create membership record: %w", err)
	}
	return record, nil
}

// DeleteRecord removes a membership record.
func (s *Store) DeleteRecord(ctx context.Context, recordID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM membership_records WHERE id = $1",
		recordID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete membership record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}
