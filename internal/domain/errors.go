package domain

import (
	"errors"
	"fmt"
)

// Domain error kinds. This is a closed set: services and filters return
// these sentinels (possibly wrapped), and the HTTP layer translates them
// in exactly one place.
var (
	ErrEntityNotFound      = errors.New("entity not found")
	ErrEntityAlreadyExists = errors.New("entity already exists")
	ErrInvalidArguments    = errors.New("invalid arguments")
	ErrPasswordsDoNotMatch = errors.New("passwords do not match")

	// ErrAuthFailed is returned for every credential failure, whether the
	// email is unknown or the password is wrong, to prevent enumeration.
	ErrAuthFailed = errors.New("invalid email or password")

	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrForbidden    = errors.New("forbidden")
)

// ErrTokenNotYet rejects tokens presented before their issue time (minus
// the configured clock skew). It is a refinement of ErrTokenInvalid.
var ErrTokenNotYet = fmt.Errorf("%w: token used before issued", ErrTokenInvalid)
