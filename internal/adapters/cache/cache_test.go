package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, ok := store.Get(ctx, "missing"); ok {
		t.Error("missing key should not be found")
	}

	if err := store.Set(ctx, "key", "value", 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, ok := store.Get(ctx, "key")
	if !ok || val != "value" {
		t.Errorf("got (%q, %v), want (value, true)", val, ok)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "key", "value", 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok := store.Get(ctx, "key"); !ok {
		t.Error("key should be readable before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get(ctx, "key"); ok {
		t.Error("key should expire after its TTL")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "a", "1", 0)
	store.Set(ctx, "b", "2", 0)

	if err := store.Delete(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := store.Get(ctx, "a"); ok {
		t.Error("a should be deleted")
	}
	if _, ok := store.Get(ctx, "b"); ok {
		t.Error("b should be deleted")
	}
}
