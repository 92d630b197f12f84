package review

import "errors"

var (
	ErrNotFound        = errors.New("review not found")
	ErrForbidden       = errors.New("operation not allowed")
	ErrNotCompleted    = errors.New("no completed booking for this listing")
	ErrAlreadyReviewed = errors.New("booking already reviewed")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrAlreadyAnswered = errors.New("owner response already recorded")
)
