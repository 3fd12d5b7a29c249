package services

import (
	"errors"
)

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP statuses with errors.Is; wrapped messages carry the context.
var (
	// ErrNotFound means a referenced entity could not be resolved.
	ErrNotFound = errors.New("not found")
	// ErrValidation means a required field is missing, an enum value is
	// unknown, or a cross-entity reference does not line up.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden means the access policy denied the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means a concurrent booking consumed the referral first.
	ErrConflict = errors.New("conflict")
	// ErrPartialLinkFailure means the appointment write succeeded but the
	// referral back-link update failed after a retry. The enclosing
	// transaction rolls back, so no orphaned appointment is committed;
	// the distinct error lets callers flag the booking for reconciliation.
	ErrPartialLinkFailure = errors.New("appointment created but referral link update failed")
)
