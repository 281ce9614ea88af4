package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T, namespace string, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisStore(rdb, namespace, ttl), mr
}

func TestRedisStoreSetGetDelete(t *testing.T) {
	store, mr := newTestRedisStore(t, "device-1", 0)
	ctx := context.Background()

	if err := store.Set(ctx, "@sportae:token", "tok"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, _ := mr.Get("device-1:@sportae:token"); got != "tok" {
		t.Fatalf("expected namespaced key to hold tok, got %q", got)
	}

	v, found, err := store.Get(ctx, "@sportae:token")
	if err != nil || !found || v != "tok" {
		t.Fatalf("Get returned v=%q found=%v err=%v", v, found, err)
	}

	if err := store.Delete(ctx, "@sportae:token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, found, err = store.Get(ctx, "@sportae:token")
	if err != nil || found {
		t.Fatalf("expected slot gone, found=%v err=%v", found, err)
	}
}

func TestRedisStoreMissingSlotIsNotAnError(t *testing.T) {
	store, _ := newTestRedisStore(t, "", 0)

	v, found, err := store.Get(context.Background(), "@sportae:user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || v != "" {
		t.Fatalf("expected missing slot, got %q", v)
	}
	if err := store.Delete(context.Background(), "@sportae:user"); err != nil {
		t.Fatalf("Delete of missing slot failed: %v", err)
	}
}

func TestRedisStoreTTLApplied(t *testing.T) {
	store, mr := newTestRedisStore(t, "", time.Hour)

	if err := store.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newTestRedisStore(t, "", 0)
	mr.Close()

	if err := store.Set(context.Background(), "k", "v"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on Set, got %v", err)
	}
	if _, _, err := store.Get(context.Background(), "k"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on Get, got %v", err)
	}
	if err := store.Delete(context.Background(), "k"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on Delete, got %v", err)
	}
}

func TestRedisStoreRejectsEmptyKey(t *testing.T) {
	store, _ := newTestRedisStore(t, "", 0)

	if err := store.Set(context.Background(), "", "v"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}
