package membership

import "errors"

var (
	// ErrLevelNotFound indicates the membership level does not exist.
	ErrLevelNotFound = errors.New("membership level not found")

	// ErrRecordNotFound indicates the membership record does not exist.
	ErrRecordNotFound = errors.New("membership record not found")

	// ErrNoDefaultLevel indicates the default level is missing, which means
	// the seed data was tampered with.
	ErrNoDefaultLevel = errors.New("no default membership level configured")

	// ErrLevelInUse indicates the level still has records referencing it.
	ErrLevelInUse = errors.New("membership level is referenced by records")

	// ErrLevelCodeTaken indicates another level already uses the code.
	ErrLevelCodeTaken = errors.New("membership level code already exists")
)
