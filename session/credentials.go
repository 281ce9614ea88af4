package session

import (
	"context"
	"errors"
	"fmt"
)

// CredentialSet reads and writes the three credential slots as a unit.
type CredentialSet struct {
	store Store
	keys  Keys
}

// NewCredentialSet binds a store to a slot layout.
func NewCredentialSet(store Store, keys Keys) *CredentialSet {
	if keys == (Keys{}) {
		keys = DefaultKeys()
	}
	return &CredentialSet{store: store, keys: keys}
}

// Keys returns the slot layout.
func (c *CredentialSet) Keys() Keys {
	return c.keys
}

// Load reads all three slots. Missing slots yield empty fields; the first read
// error aborts the load.
func (c *CredentialSet) Load(ctx context.Context) (Record, error) {
	if c == nil || c.store == nil {
		return Record{}, ErrStoreUnavailable
	}

	var rec Record
	targets := []struct {
		key string
		dst *string
	}{
		{c.keys.User, &rec.UserJSON},
		{c.keys.Token, &rec.AuthToken},
		{c.keys.SocketToken, &rec.SocketToken},
	}
	for _, t := range targets {
		v, found, err := c.store.Get(ctx, t.key)
		if err != nil {
			return Record{}, fmt.Errorf("load %s: %w", t.key, err)
		}
		if found {
			*t.dst = v
		}
	}
	return rec, nil
}

// Save writes all three slots. An empty socket token deletes that slot so a
// stale value from an earlier session cannot survive.
func (c *CredentialSet) Save(ctx context.Context, rec Record) error {
	if c == nil || c.store == nil {
		return ErrStoreUnavailable
	}

	if err := c.store.Set(ctx, c.keys.User, rec.UserJSON); err != nil {
		return fmt.Errorf("save %s: %w", c.keys.User, err)
	}
	if err := c.store.Set(ctx, c.keys.Token, rec.AuthToken); err != nil {
		return fmt.Errorf("save %s: %w", c.keys.Token, err)
	}
	if rec.SocketToken == "" {
		if err := c.store.Delete(ctx, c.keys.SocketToken); err != nil {
			return fmt.Errorf("save %s: %w", c.keys.SocketToken, err)
		}
		return nil
	}
	if err := c.store.Set(ctx, c.keys.SocketToken, rec.SocketToken); err != nil {
		return fmt.Errorf("save %s: %w", c.keys.SocketToken, err)
	}
	return nil
}

// SaveUser rewrites only the user slot.
func (c *CredentialSet) SaveUser(ctx context.Context, userJSON string) error {
	if c == nil || c.store == nil {
		return ErrStoreUnavailable
	}
	if err := c.store.Set(ctx, c.keys.User, userJSON); err != nil {
		return fmt.Errorf("save %s: %w", c.keys.User, err)
	}
	return nil
}

// Clear deletes all three slots. Every slot is attempted; failures are joined.
func (c *CredentialSet) Clear(ctx context.Context) error {
	if c == nil || c.store == nil {
		return ErrStoreUnavailable
	}

	var errs []error
	for _, key := range c.keys.all() {
		if err := c.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
