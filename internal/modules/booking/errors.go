package booking

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("booking not found")
	ErrForbidden = errors.New("forbidden")

	// ErrDatesOverlap: the candidate interval intersects a live approved
	// booking. Surfaced as a conflict, not a validation error, because the
	// remedy is different dates rather than a corrected field.
	ErrDatesOverlap = errors.New("dates overlap with an approved booking that has not finished yet")

	// ErrApproveRace: a conflicting approval won between validation and the
	// status write.
	ErrApproveRace = errors.New("dates overlap with another approved booking")

	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrCancelDeadlinePassed    = errors.New("cancel deadline passed")
	ErrNotCheckedOut           = errors.New("cannot complete before checkout date")
)

// Rejection is a field-scoped validation failure. The validator returns the
// first one it hits.
type Rejection struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Field, r.Message)
}

func reject(field, code, format string, args ...any) *Rejection {
	return &Rejection{Field: field, Code: code, Message: fmt.Sprintf(format, args...)}
}
