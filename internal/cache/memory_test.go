package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "access:u1", "token-value", time.Hour); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	value, err := store.Get(ctx, "access:u1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	if value != "token-value" {
		t.Errorf("Get() = %q, want %q", value, "token-value")
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "access:nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	store.SetClock(func() time.Time { return base })

	if err := store.Set(ctx, "otp:u1", "483920", time.Hour); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	// Still live just before the TTL elapses
	store.SetClock(func() time.Time { return base.Add(59 * time.Minute) })
	if _, err := store.Get(ctx, "otp:u1"); err != nil {
		t.Fatalf("Get() before expiry failed: %v", err)
	}

	// Gone once the TTL has elapsed
	store.SetClock(func() time.Time { return base.Add(61 * time.Minute) })
	if _, err := store.Get(ctx, "otp:u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "otp:u1", "111111", time.Hour)
	_ = store.Set(ctx, "otp:u1", "222222", time.Hour)

	value, err := store.Get(ctx, "otp:u1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	if value != "222222" {
		t.Errorf("Get() = %q, want the overwritten value %q", value, "222222")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "refresh:u1", "token", time.Hour)

	if err := store.Delete(ctx, "refresh:u1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := store.Get(ctx, "refresh:u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting a missing key is a no-op
	if err := store.Delete(ctx, "refresh:u1"); err != nil {
		t.Errorf("Delete() on missing key failed: %v", err)
	}
}
