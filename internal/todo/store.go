package todo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	listColumns       = "id, owner_id, name, location, is_archived, created_at, updated_at"
	itemColumns       = "id, list_id, content, is_completed, completed_at, completed_by, created_at, updated_at"
	invitationColumns = "id, list_id, inviter_id, invitee_id, status, approved, created_at, updated_at"
	codeColumns       = "id, list_id, inviter_id, expires_at, auto_approve, created_at, updated_at"
	messageColumns    = "id, discussion_id, sender_id, content, created_at, updated_at"
)

// Store provides todo-list persistence over PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new todo store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (*List, error) {
	var list List
	err := row.Scan(
		&list.ID,
		&list.OwnerID,
		&list.Name,
		&list.Location,
		&list.IsArchived,
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	err := row.Scan(
		&item.ID,
		&item.ListID,
		&item.Content,
		&item.IsCompleted,
		&item.CompletedAt,
		&item.CompletedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanInvitation(row rowScanner) (*Invitation, error) {
	var invitation Invitation
	err := row.Scan(
		&invitation.ID,
		&invitation.ListID,
		&invitation.InviterID,
		&invitation.InviteeID,
		&invitation.Status,
		&invitation.Approved,
		&invitation.CreatedAt,
		&invitation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func scanCode(row rowScanner) (*InvitationCode, error) {
	var code InvitationCode
	err := row.Scan(
		&code.ID,
		&code.ListID,
		&code.InviterID,
		&code.ExpiresAt,
		&code.AutoApprove,
		&code.CreatedAt,
		&code.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func scanMessage(row rowScanner) (*Message, error) {
	var message Message
	err := row.Scan(
		&message.ID,
		&message.DiscussionID,
		&message.SenderID,
		&message.Content,
		&message.CreatedAt,
		&message.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// GetList retrieves a list by ID.
func (s *Store) GetList(ctx context.Context, listID uuid.UUID) (*List, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+listColumns+`
		FROM todo_lists
		WHERE id = $1
	`, listID)

	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return list, nil
}

// ListOwnedLists retrieves all lists owned by a user, filtered by archival.
func (s *Store) ListOwnedLists(ctx context.Context, ownerID uuid.UUID, archived bool) ([]List, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+listColumns+`
		FROM todo_lists
		WHERE owner_id = $1 AND is_archived = $2
		ORDER BY created_at DESC
	`, ownerID, archived)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	var lists []List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, *list)
	}
	return lists, rows.Err()
}

// CreateListWithOwner creates a list together with the owner's
// self-invitation (accepted, approved) in a single transaction, so an owner
// can never exist without a membership record.
func (s *Store) CreateListWithOwner(ctx context.Context, ownerID uuid.UUID, name string, location *string) (*List, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, `
		INSERT INTO todo_lists (owner_id, name, location)
		VALUES ($1, $2, $3)
		RETURNING `+listColumns+`
	`, ownerID, name, location)

	list, err := scanList(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO todo_invitations (list_id, inviter_id, invitee_id, status, approved)
		VALUES ($1, $2, $2, $3, TRUE)
	`, list.ID, ownerID, StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner self-invitation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return list, nil
}

// ArchiveList flips the one-way archived flag. The update touches only the
// flag so it cannot race with concurrent field updates elsewhere.
func (s *Store) ArchiveList(ctx context.Context, listID uuid.UUID) (*List, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE todo_lists
		SET is_archived = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+listColumns+`
	`, listID)

	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to archive list: %w", err)
	}
	return list, nil
}

// GetItem retrieves an item scoped to its list; a mismatched list yields
// ErrItemNotFound.
func (s *Store) GetItem(ctx context.Context, listID, itemID uuid.UUID) (*Item, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM todo_items
		WHERE id = $1 AND list_id = $2
	`, itemID, listID)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItems retrieves all items in a list.
func (s *Store) ListItems(ctx context.Context, listID uuid.UUID) ([]Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM todo_items
		WHERE list_id = $1
		ORDER BY created_at ASC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// CreateItem inserts a new incomplete item.
func (s *Store) CreateItem(ctx context.Context, listID uuid.UUID, content string) (*Item, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO todo_items (list_id, content)
		VALUES ($1, $2)
		RETURNING `+itemColumns+`
	`, listID, content)

	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

// UpdateItemContent updates only the content of an item.
func (s *Store) UpdateItemContent(ctx context.Context, listID, itemID uuid.UUID, content string) (*Item, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE todo_items
		SET content = $3, updated_at = NOW()
		WHERE id = $1 AND list_id = $2
		RETURNING `+itemColumns+`
	`, itemID, listID, content)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

// SetItemCompletion marks an item completed by a user, or clears completion
// when completedBy is uuid.Nil. Only the completion fields are touched.
func (s *Store) SetItemCompletion(ctx context.Context, listID, itemID, completedBy uuid.UUID) (*Item, error) {
	var row pgx.Row
	if completedBy == uuid.Nil {
		row = s.pool.QueryRow(ctx, `
			UPDATE todo_items
			SET is_completed = FALSE, completed_at = NULL, completed_by = NULL, updated_at = NOW()
			WHERE id = $1 AND list_id = $2
			RETURNING `+itemColumns+`
		`, itemID, listID)
	} else {
		row = s.pool.QueryRow(ctx, `
			UPDATE todo_items
			SET is_completed = TRUE, completed_at = NOW(), completed_by = $3, updated_at = NOW()
			WHERE id = $1 AND list_id = $2
			RETURNING `+itemColumns+`
		`, itemID, listID, completedBy)
	}

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to set item completion: %w", err)
	}
	return item, nil
}

// GetInvitation retrieves an invitation by ID.
func (s *Store) GetInvitation(ctx context.Context, invitationID uuid.UUID) (*Invitation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+invitationColumns+`
		FROM todo_invitations
		WHERE id = $1
	`, invitationID)

	invitation, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return invitation, nil
}

// FindAcceptedMembership returns the earliest accepted invitation for the
// (list, user) pair. Duplicates are tolerated; the first one wins.
func (s *Store) FindAcceptedMembership(ctx context.Context, listID, userID uuid.UUID) (*Invitation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+invitationColumns+`
		FROM todo_invitations
		WHERE list_id = $1 AND invitee_id = $2 AND status = $3
		ORDER BY created_at ASC
		LIMIT 1
	`, listID, userID, StatusAccepted)

	invitation, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return invitation, nil
}

// CreateInvitationParams are the fields of a new invitation record.
type CreateInvitationParams struct {
	ListID    uuid.UUID
	InviterID uuid.UUID
	InviteeID uuid.UUID
	Status    InvitationStatus
	Approved  bool
}

// CreateInvitation inserts a new invitation.
func (s *Store) CreateInvitation(ctx context.Context, params CreateInvitationParams) (*Invitation, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO todo_invitations (list_id, inviter_id, invitee_id, status, approved)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+invitationColumns+`
	`, params.ListID, params.InviterID, params.InviteeID, params.Status, params.Approved)

	invitation, err := scanInvitation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return invitation, nil
}

// SetInvitationStatus updates only the status column. The WHERE clause
// refuses to leave a terminal state: the update matches when the current
// status is pending or already the target (idempotent re-apply).
func (s *Store) SetInvitationStatus(ctx context.Context, invitationID uuid.UUID, status InvitationStatus) (*Invitation, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE todo_invitations
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND (status = $3 OR status = $2)
		RETURNING `+invitationColumns+`
	`, invitationID, status, StatusPending)

	invitation, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update invitation status: %w", err)
	}
	return invitation, nil
}

// SetInvitationApproved sets approved to true, touching no other field.
// Approving an already-approved invitation is a no-op success; approval
// never transitions back to false.
func (s *Store) SetInvitationApproved(ctx context.Context, invitationID uuid.UUID) (*Invitation, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE todo_invitations
		SET approved = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+invitationColumns+`
	`, invitationID)

	invitation, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to approve invitation: %w", err)
	}
	return invitation, nil
}

// ListInvitationsByList retrieves all invitations of a list.
func (s *Store) ListInvitationsByList(ctx context.Context, listID uuid.UUID) ([]Invitation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+invitationColumns+`
		FROM todo_invitations
		WHERE list_id = $1
		ORDER BY created_at ASC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	return collectInvitations(rows)
}

// ListInvitationsByInvitee retrieves a user's invitations in a given status.
func (s *Store) ListInvitationsByInvitee(ctx context.Context, inviteeID uuid.UUID, status InvitationStatus) ([]Invitation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+invitationColumns+`
		FROM todo_invitations
		WHERE invitee_id = $1 AND status = $2
		ORDER BY created_at DESC
	`, inviteeID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	return collectInvitations(rows)
}

func collectInvitations(rows pgx.Rows) ([]Invitation, error) {
	var invitations []Invitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *invitation)
	}
	return invitations, rows.Err()
}

// GetInvitationCode retrieves a code scoped to its list.
func (s *Store) GetInvitationCode(ctx context.Context, listID, codeID uuid.UUID) (*InvitationCode, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+codeColumns+`
		FROM todo_invitation_codes
		WHERE id = $1 AND list_id = $2
	`, codeID, listID)

	code, err := scanCode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationCodeNotFound
		}
		return nil, fmt.Errorf("failed to get invitation code: %w", err)
	}
	return code, nil
}

// CreateInvitationCode inserts a new join code.
func (s *Store) CreateInvitationCode(ctx context.Context, listID, inviterID uuid.UUID, expiresAt time.Time, autoApprove bool) (*InvitationCode, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO todo_invitation_codes (list_id, inviter_id, expires_at, auto_approve)
		VALUES ($1, $2, $3, $4)
		RETURNING `+codeColumns+`
	`, listID, inviterID, expiresAt, autoApprove)

	code, err := scanCode(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation code: %w", err)
	}
	return code, nil
}

// ListInvitationCodes retrieves all codes of a list, newest first.
func (s *Store) ListInvitationCodes(ctx context.Context, listID uuid.UUID) ([]InvitationCode, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+codeColumns+`
		FROM todo_invitation_codes
		WHERE list_id = $1
		ORDER BY created_at DESC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitation codes: %w", err)
	}
	defer rows.Close()

	var codes []InvitationCode
	for rows.Next() {
		code, err := scanCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation code: %w", err)
		}
		codes = append(codes, *code)
	}
	return codes, rows.Err()
}

// GetOrCreateDiscussion returns the discussion attached to an item, creating
// it on first access. The no-op DO UPDATE makes the upsert return the
// existing row instead of nothing.
func (s *Store) GetOrCreateDiscussion(ctx context.Context, itemID uuid.UUID) (*Discussion, error) {
	var discussion Discussion
	err := s.pool.QueryRow(ctx, `
		INSERT INTO todo_discussions (item_id)
		VALUES ($1)
		ON CONFLICT (item_id) DO UPDATE SET item_id = EXCLUDED.item_id
		RETURNING id, item_id, created_at, updated_at
	`, itemID).Scan(
		&discussion.ID,
		&discussion.ItemID,
		&discussion.CreatedAt,
		&discussion.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create discussion: %w", err)
	}
	return &discussion, nil
}

// GetDiscussionContext resolves a discussion to its item, so callers can walk
// discussion -> item -> list for the access check.
func (s *Store) GetDiscussionContext(ctx context.Context, discussionID uuid.UUID) (*Discussion, *Item, error) {
	var (
		discussion Discussion
		item       Item
	)
	err := s.pool.QueryRow(ctx, `
		SELECT d.id, d.item_id, d.created_at, d.updated_at,
		       i.id, i.list_id, i.content, i.is_completed, i.completed_at, i.completed_by, i.created_at, i.updated_at
		FROM todo_discussions d
		INNER JOIN todo_items i ON i.id = d.item_id
		WHERE d.id = $1
	`, discussionID).Scan(
		&discussion.ID,
		&discussion.ItemID,
		&discussion.CreatedAt,
		&discussion.UpdatedAt,
		&item.ID,
		&item.ListID,
		&item.Content,
		&item.IsCompleted,
		&item.CompletedAt,
		&item.CompletedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrDiscussionNotFound
		}
		return nil, nil, fmt.Errorf("failed to resolve discussion: %w", err)
	}
	return &discussion, &item, nil
}

// ListMessages retrieves all messages of a discussion in posting order.
func (s *Store) ListMessages(ctx context.Context, discussionID uuid.UUID) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM todo_messages
		WHERE discussion_id = $1
		ORDER BY created_at ASC
	`, discussionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *message)
	}
	return messages, rows.Err()
}

// CreateMessage inserts a new message into a discussion.
func (s *Store) CreateMessage(ctx context.Context, discussionID, senderID uuid.UUID, content string) (*Message, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO todo_messages (discussion_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING `+messageColumns+`
	`, discussionID, senderID, content)

	message, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return message, nil
}
