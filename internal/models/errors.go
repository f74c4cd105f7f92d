package models

import "errors"

// Sentinel errors for the coordination engine. Services wrap these with
// fmt.Errorf("%w: ...") and handlers map them to HTTP status codes with
// errors.Is.
var (
	// ErrValidation means the input was malformed; the caller can correct
	// and resubmit.
	ErrValidation = errors.New("validation error")

	// ErrDeadlineInPast means a supplied voting deadline is not strictly
	// in the future.
	ErrDeadlineInPast = errors.New("voting deadline is in the past")

	// ErrPermission means the requester is not authorized for the
	// transition (e.g. non-proposer cancel).
	ErrPermission = errors.New("permission denied")

	// ErrAlreadyTerminal means the proposal is already scheduled or
	// canceled; the client view is stale and should be refetched.
	ErrAlreadyTerminal = errors.New("proposal already in terminal state")

	// ErrProposalNotActive means a vote targeted a proposal that is no
	// longer accepting ranks (terminal status or past deadline).
	ErrProposalNotActive = errors.New("proposal is not active")

	// ErrConflict means a compare-and-set update lost a race; refetch
	// and retry.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrNotFound means the entity does not exist or was deleted
	// concurrently.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRankValue means the rank value is out of range for the
	// proposal kind.
	ErrInvalidRankValue = errors.New("invalid rank value")

	// ErrMissingRequiredField means a field required for scheduling
	// (e.g. a start time) was never supplied during proposal life.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrItemNoLongerOpen means the RSVP target is canceled or past.
	ErrItemNoLongerOpen = errors.New("item no longer open")

	// ErrNotInvited means no invite exists for this (item, user) pair.
	ErrNotInvited = errors.New("user not invited")
)
