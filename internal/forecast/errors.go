package forecast

import "errors"

var (
	// ErrInvalidProfile is returned when a profile breaks a pipeline invariant
	ErrInvalidProfile = errors.New("invalid profile")

	// Strict mode validation errors
	ErrInvalidExperience = errors.New("years of experience must be a non-negative number")
	ErrUnknownRole       = errors.New("unknown role")
	ErrAmbiguousRole     = errors.New("ambiguous role")
	ErrUnknownLevel      = errors.New("unknown level")
	ErrUnknownLocation   = errors.New("unknown location")
	ErrUnknownSkill      = errors.New("unknown skill")
)
