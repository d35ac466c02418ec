package common

import "fmt"

// ValidationErrorf returns an error that matches ErrorValidation and carries
// a human readable reason, e.g. "validation error: note is required".
func ValidationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorValidation, fmt.Sprintf(format, args...))
}
