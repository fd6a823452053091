package todo

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the acceptance state of an invitation. Approval is
// tracked separately: it gates discussion access, not membership itself.
type InvitationStatus string

const (
	StatusPending  InvitationStatus = "pending"
	StatusAccepted InvitationStatus = "accepted"
	StatusRejected InvitationStatus = "rejected"
)

// List is a shared todo list with exactly one owner. Archival is one-way.
type List struct {
	ID         uuid.UUID `db:"id"`
	OwnerID    uuid.UUID `db:"owner_id"`
	Name       string    `db:"name"`
	Location   *string   `db:"location"`
	IsArchived bool      `db:"is_archived"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Item is a single entry in a todo list.
type Item struct {
	ID          uuid.UUID     `db:"id"`
	ListID      uuid.UUID     `db:"list_id"`
	Content     string        `db:"content"`
	IsCompleted bool          `db:"is_completed"`
	CompletedAt *time.Time    `db:"completed_at"`
	CompletedBy uuid.NullUUID `db:"completed_by"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// Invitation is a (possibly pending) membership grant into a list's
// collaborator set. Identity fields never change after creation; only status
// and approved do. The owner's membership is materialized as a
// self-invitation created together with the list.
type Invitation struct {
	ID        uuid.UUID        `db:"id"`
	ListID    uuid.UUID        `db:"list_id"`
	InviterID uuid.UUID        `db:"inviter_id"`
	InviteeID uuid.UUID        `db:"invitee_id"`
	Status    InvitationStatus `db:"status"`
	Approved  bool             `db:"approved"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// InvitationCode is a time-limited, list-scoped join token. Consuming it
// creates an accepted invitation whose approval mirrors AutoApprove.
type InvitationCode struct {
	ID          uuid.UUID `db:"id"`
	ListID      uuid.UUID `db:"list_id"`
	InviterID   uuid.UUID `db:"inviter_id"`
	ExpiresAt   time.Time `db:"expires_at"`
	AutoApprove bool      `db:"auto_approve"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Discussion is the single conversation thread attached to an item,
// created lazily on first access.
type Discussion struct {
	ID        uuid.UUID `db:"id"`
	ItemID    uuid.UUID `db:"item_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Message is a single post in a discussion.
type Message struct {
	ID           uuid.UUID `db:"id"`
	DiscussionID uuid.UUID `db:"discussion_id"`
	SenderID     uuid.UUID `db:"sender_id"`
	Content      string    `db:"content"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
