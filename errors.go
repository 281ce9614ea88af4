package scoreauth

import (
	"errors"
	"fmt"

	"github.com/sportae/scoreauth/api"
)

var (
	// ErrNotAuthenticated is returned by operations that need a signed-in session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidInput is returned when required credentials are empty.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorageFailure matches every [*StorageError].
	ErrStorageFailure = errors.New("credential storage failure")
	// ErrServiceFailure matches non-success responses from the auth service.
	ErrServiceFailure = api.ErrService
	// ErrTransportFailure matches network failures reaching the auth service.
	ErrTransportFailure = api.ErrTransport
	// ErrMalformedLoginResponse is returned when a login succeeds without a token or user id.
	ErrMalformedLoginResponse = errors.New("login response missing token or user id")
	// ErrSignupNotCreated is returned when signup succeeds with a status other than 201.
	ErrSignupNotCreated = errors.New("signup did not create an account")
	// ErrRoleInvalid is returned when a role outside viewer, scorer and admin is decoded.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrManagerNotReady is returned by a zero or nil Manager.
	ErrManagerNotReady = errors.New("session manager not initialized")
)

// StorageError reports a failed credential store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("credential storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}
