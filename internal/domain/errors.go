package domain

import "errors"

var (
	// ErrUserNotFound is returned when a user lookup yields no record.
	ErrUserNotFound = errors.New("user not found")
	// ErrMembershipNotFound is returned when a user has no membership ending on or after now.
	ErrMembershipNotFound = errors.New("no active membership found")
	// ErrFitnessTestNotFound is returned when a fitness test lookup yields no record.
	ErrFitnessTestNotFound = errors.New("fitness test not found")
	// ErrInvalidID is returned for identifiers that are not well-formed UUIDs.
	ErrInvalidID = errors.New("invalid id")
)

// ValidationError reports malformed or missing input. It is always detected before
// the store is touched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
