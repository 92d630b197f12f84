package listing

import "errors"

var (
	ErrNotFound    = errors.New("listing not found")
	ErrForbidden   = errors.New("operation not allowed")
	ErrInvalidType = errors.New("invalid listing type")
	ErrInvalidSpan = errors.New("minimum stay cannot exceed maximum stay")
)
