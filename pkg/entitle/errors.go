package entitle

import "errors"

var (
	// ErrProfileNotFound is returned when an account has no stored profile
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidPlan is returned for a plan outside the closed enumerations
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrStoreUnavailable is returned when the profile store cannot be reached
	ErrStoreUnavailable = errors.New("profile store unavailable")
)
