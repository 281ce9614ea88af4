package api

import (
	"errors"
	"fmt"
)

var (
	// ErrService matches every non-success response from the auth service.
	ErrService = errors.New("auth service rejected request")
	// ErrTransport matches network and timeout failures.
	ErrTransport = errors.New("auth service unreachable")
	// ErrMalformedResponse is returned when a success body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed auth service response")
)

// ServiceError is a non-success HTTP response.
type ServiceError struct {
	Path       string
	StatusCode int
	// Message is the human-readable text from the response body, if any.
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth service %s: status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("auth service %s: status %d", e.Path, e.StatusCode)
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}

// TransportError wraps a failure to reach the service.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("auth service %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
