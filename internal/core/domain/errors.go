package domain

import "errors"

// ValidationError is client input that was rejected. It is never silently corrected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var (
	ErrInvalidCoordinates = &ValidationError{Message: "Invalid latitude or longitude"}
	ErrInvalidRadius      = &ValidationError{Message: "Invalid radius. Must be between 0 and 50000 meters"}
	ErrInvalidLimit       = &ValidationError{Message: "Invalid limit. Must be between 1 and 50"}
	ErrLocationRequired   = &ValidationError{Message: "Location required: provide lat/lng or allow location access"}
	ErrInvalidDate        = &ValidationError{Message: "Invalid date format. Use YYYY-MM-DD"}
	ErrMissingDateRange   = &ValidationError{Message: "Missing required parameters: from and to"}
	ErrInvalidDateRange   = &ValidationError{Message: "Invalid date range: from must not be after to"}
	ErrInvalidFavorites   = &ValidationError{Message: "Invalid favorites payload"}

	ErrNotFound = errors.New("not found")
	// ErrRejected marks an upstream 4xx other than 404. Like ErrNotFound it is
	// an answer, not an outage, so it is never papered over with cached data.
	ErrRejected = errors.New("rejected by upstream")
)

// IsUpstreamAnswer reports whether err is a definitive upstream 4xx answer
// rather than a transport failure or 5xx.
func IsUpstreamAnswer(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrRejected)
}
