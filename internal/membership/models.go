package membership

import (
	"time"

	"github.com/google/uuid"
)

// Level is a membership tier. Higher rank outranks lower; exactly one level
// is the default fallback.
type Level struct {
	ID        uuid.UUID `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	Rank      int       `db:"rank"`
	IsDefault bool      `db:"is_default"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Record grants a user a level for a half-open time window
// [StartAtUTC, EndBeforeUTC).
type Record struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	LevelID      uuid.UUID `db:"membership_level_id"`
	StartAtUTC   time.Time `db:"start_at_utc"`
	EndBeforeUTC time.Time `db:"end_before_utc"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
