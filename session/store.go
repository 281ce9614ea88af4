package session

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is returned when the backing store cannot serve a request.
var ErrStoreUnavailable = errors.New("credential store unavailable")

// ErrEmptyKey is returned when a slot operation is called without a key.
var ErrEmptyKey = errors.New("credential slot key is empty")

// Store is a durable key-value store of string slots.
//
// Get reports found=false with a nil error when the slot does not exist.
// Delete of a missing slot is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
