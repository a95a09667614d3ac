package domain

import "errors"

// Errors returned by persistence boundaries. Both mean the boundary is
// healthy and refused this one payload.
var (
	ErrPostRejected  = errors.New("post rejected by persistence boundary")
	ErrDuplicatePost = errors.New("post already exists")
)

// IsRejection reports whether err is a per-payload refusal rather than a
// boundary outage.
func IsRejection(err error) bool {
	return errors.Is(err, ErrPostRejected) || errors.Is(err, ErrDuplicatePost)
}
