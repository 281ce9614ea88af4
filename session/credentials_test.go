package session

import (
	"context"
	"errors"
	"testing"
)

type faultyStore struct {
	*MemoryStore
	failSet    map[string]bool
	failGet    map[string]bool
	failDelete map[string]bool
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		MemoryStore: NewMemoryStore(),
		failSet:     map[string]bool{},
		failGet:     map[string]bool{},
		failDelete:  map[string]bool{},
	}
}

func (f *faultyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet[key] {
		return "", false, ErrStoreUnavailable
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *faultyStore) Set(ctx context.Context, key, value string) error {
	if f.failSet[key] {
		return ErrStoreUnavailable
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *faultyStore) Delete(ctx context.Context, key string) error {
	if f.failDelete[key] {
		return ErrStoreUnavailable
	}
	return f.MemoryStore.Delete(ctx, key)
}

func TestDefaultKeys(t *testing.T) {
	keys := DefaultKeys()
	if keys.User != "@sportae:user" || keys.Token != "@sportae:token" || keys.SocketToken != "@sportae:socketToken" {
		t.Fatalf("unexpected default keys: %+v", keys)
	}
	if got := KeysWithPrefix("  "); got != keys {
		t.Fatalf("expected blank prefix to fall back to defaults, got %+v", got)
	}
}

func TestCredentialSetRoundTrip(t *testing.T) {
	set := NewCredentialSet(NewMemoryStore(), DefaultKeys())
	ctx := context.Background()

	want := Record{UserJSON: `{"id":"u1","role":"viewer"}`, AuthToken: "tok", SocketToken: "sock"}
	if err := set.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := set.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if !got.Complete() {
		t.Fatal("expected complete record")
	}
}

func TestCredentialSetEmptySocketTokenDeletesSlot(t *testing.T) {
	store := NewMemoryStore()
	set := NewCredentialSet(store, Keys{})
	ctx := context.Background()

	if err := set.Save(ctx, Record{UserJSON: "{}", AuthToken: "a", SocketToken: "old"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := set.Save(ctx, Record{UserJSON: "{}", AuthToken: "b"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, DefaultKeys().SocketToken); found {
		t.Fatal("expected stale socket token to be removed")
	}
}

func TestCredentialSetLoadFailure(t *testing.T) {
	store := newFaultyStore()
	store.failGet[DefaultKeys().Token] = true
	set := NewCredentialSet(store, DefaultKeys())

	if _, err := set.Load(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestCredentialSetClearAttemptsEverySlot(t *testing.T) {
	store := newFaultyStore()
	keys := DefaultKeys()
	set := NewCredentialSet(store, keys)
	ctx := context.Background()

	if err := set.Save(ctx, Record{UserJSON: "{}", AuthToken: "t", SocketToken: "s"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	store.failDelete[keys.User] = true

	err := set.Clear(ctx)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected joined ErrStoreUnavailable, got %v", err)
	}
	if _, found, _ := store.MemoryStore.Get(ctx, keys.Token); found {
		t.Fatal("expected token slot cleared despite user slot failure")
	}
	if _, found, _ := store.MemoryStore.Get(ctx, keys.SocketToken); found {
		t.Fatal("expected socket slot cleared despite user slot failure")
	}
}

func TestCredentialSetIncompleteRecord(t *testing.T) {
	if (Record{UserJSON: "{}"}).Complete() {
		t.Fatal("record without token must not be complete")
	}
	if (Record{AuthToken: "t"}).Complete() {
		t.Fatal("record without user must not be complete")
	}
}
