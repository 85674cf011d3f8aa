package service

import "errors"

// Error taxonomy of the admin request lifecycle. The durable status flip is
// the only operation whose failure aborts a call; dependency failures after
// it are logged and swallowed, so none of them appear here.
var (
	// validation
	ErrInvalidAction = errors.New("action must be approve or deny")
	ErrInvalidTarget = errors.New("target admin is required and must be an admin of the organization")

	// conflict: state already moved
	ErrAlreadyAdmin     = errors.New("user is already an admin")
	ErrPendingExists    = errors.New("a pending admin request already exists")
	ErrRateLimited      = errors.New("an admin request was already submitted within the last 24 hours")
	ErrAlreadyProcessed = errors.New("admin request was already processed")

	// not found; cross-org access is reported identically on purpose
	ErrUserNotFound         = errors.New("user not found")
	ErrOrgNotFound          = errors.New("organization not found")
	ErrRequestNotFound      = errors.New("admin request not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// terminal for the request
	ErrRequestExpired = errors.New("admin request has expired")

	// request approved but the role flip failed; recoverable inconsistency
	// surfaced to the caller, not retried automatically
	ErrRoleUpdateFailed = errors.New("request approved but role update failed")

	ErrIncorrectPassword = errors.New("incorrect email or password")
)
