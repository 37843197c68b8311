package datasource

import (
	"errors"
	"fmt"
)

// ErrEmptyCity is returned when a fetch is requested without a city
var ErrEmptyCity = errors.New("city must not be empty")

// ErrorKind classifies a failed download. Callers show the same message for all kinds.
type ErrorKind string

const (
	ErrorNetwork ErrorKind = "network"
	ErrorStatus  ErrorKind = "status"
	ErrorDecode  ErrorKind = "decode"
)

// TransportError describes why a response could not be obtained or parsed
type TransportError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Kind == ErrorStatus {
		return fmt.Sprintf("API returned non-2xx status: %d", e.StatusCode)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
