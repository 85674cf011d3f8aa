package repo

import "errors"

var (
	// ErrNotFound unifies "no such row" across repositories. Handlers map it
	// to a 404 that is indistinguishable from cross-org access.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicatePending is surfaced when the store rejects a second
	// concurrent pending insert for the same user.
	ErrDuplicatePending = errors.New("pending admin request already exists")
)
