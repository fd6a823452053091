package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DeleteExpiredInvitationCodes deletes invitation codes whose expiry lies
// more than the specified days in the past. Codes are useless the moment they
// expire; the grace period only keeps them around for support queries.
// The function is idempotent - safe to run repeatedly.
//
// Returns the number of rows deleted.
func DeleteExpiredInvitationCodes(ctx context.Context, pool *pgxpool.Pool, graceDays int) (int64, error) {
	query := `
		DELETE FROM todo_invitation_codes
		WHERE expires_at < NOW() - INTERVAL '1 day' * $1
	`

	tag, err := pool.Exec(ctx, query, graceDays)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invitation codes: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteOldAuditEntries deletes audit_log rows older than the specified days.
// The function is idempotent - safe to run repeatedly.
//
// Returns the number of rows deleted.
func DeleteOldAuditEntries(ctx context.Context, pool *pgxpool.Pool, retentionDays int) (int64, error) {
	query := `
		DELETE FROM audit_log
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`

	tag, err := pool.Exec(ctx, query, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit entries: %w", err)
	}

	return tag.RowsAffected(), nil
}

// RunRetentionJob executes both retention operations and logs the results.
// This is the main entry point called by the cron scheduler.
func RunRetentionJob(ctx context.Context, pool *pgxpool.Pool, codeGraceDays, auditDays int) error {
	log.Info().
		Int("code_grace_days", codeGraceDays).
		Int("audit_retention_days", auditDays).
		Msg("Starting retention job")

	startTime := time.Now()

	codesDeleted, err := DeleteExpiredInvitationCodes(ctx, pool, codeGraceDays)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete expired invitation codes")
		return fmt.Errorf("invitation code cleanup failed: %w", err)
	}

	auditDeleted, err := DeleteOldAuditEntries(ctx, pool, auditDays)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete old audit entries")
		return fmt.Errorf("audit log cleanup failed: %w", err)
	}

	duration := time.Since(startTime)

	log.Info().
		Int64("invitation_codes_deleted", codesDeleted).
		Int64("audit_entries_deleted", auditDeleted).
		Dur("duration", duration).
		Msg("Retention job completed")

	return nil
}
