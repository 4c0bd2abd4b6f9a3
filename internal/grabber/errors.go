package grabber

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the subject record does not exist, has no title,
// or that no grabber produced any artwork. Fatal to the run.
var ErrNotFound = errors.New("not found")

// ErrMisconfigured reports that no grabbers are available for the record's
// classified type. Fatal to the run.
var ErrMisconfigured = errors.New("misconfigured")

// GrabberError wraps a single grabber's load, construction, or query
// failure. These are contained inside the lookup loop and never abort a run.
type GrabberError struct {
	Grabber string
	Code    string
	Message string
}

func (e *GrabberError) Error() string {
	return e.Message
}

// Unavailable builds the error used when a grabber cannot be loaded or
// constructed.
func Unavailable(id string, format string, args ...any) *GrabberError {
	return &GrabberError{
		Grabber: id,
		Code:    "UNAVAILABLE",
		Message: fmt.Sprintf(format, args...),
	}
}
