package todo

import "errors"

var (
	// ErrListNotFound covers both a missing list and a caller without
	// access to it; the two are deliberately indistinguishable.
	ErrListNotFound = errors.New("todo list not found")

	// ErrItemNotFound is returned when an item does not exist in the
	// resolved list.
	ErrItemNotFound = errors.New("todo item not found")

	// ErrDiscussionNotFound covers a missing discussion and a caller
	// without discussion access.
	ErrDiscussionNotFound = errors.New("discussion not found")

	// ErrInvitationNotFound covers a missing invitation and a caller who
	// is neither inviter nor invitee, or lacks the authority an
	// invitation operation requires.
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrInvitationCodeNotFound is returned when a code does not exist
	// for the target list.
	ErrInvitationCodeNotFound = errors.New("invitation code not found")

	// ErrInvitationCodeExpired is returned when a join is attempted with
	// a code past its expiry.
	ErrInvitationCodeExpired = errors.New("invitation code expired")

	// ErrListArchived is returned by item mutations on an archived list,
	// strictly after the access check has passed.
	ErrListArchived = errors.New("todo list is archived")

	// ErrNotMember is returned by membership lookups when no accepted
	// invitation exists for the (list, user) pair.
	ErrNotMember = errors.New("user is not a member of this list")

	// ErrInvalidTransition is returned when an invitation status change
	// would leave a terminal state.
	ErrInvalidTransition = errors.New("invalid invitation status transition")
)
