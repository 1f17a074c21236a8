package txpool

import (
	"context"
	"crypto/rand"
	"testing"
	"time"
)

// TestRedisTagStore_Integration requires a running Redis.
// We skip if connection fails.
func TestRedisTagStore_Integration(t *testing.T) {
	store := NewRedisTagStore("localhost:6379", "", 0, 100*time.Millisecond)
	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}

	tag := make([]byte, 32)
	_, _ = rand.Read(tag)

	// 1. Fresh tag is admitted.
	fresh, err := store.Admit(ctx, tag, 10, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !fresh {
		t.Errorf("Expected fresh=true for new tag")
	}

	// 2. Live tag is refused.
	fresh, err = store.Admit(ctx, tag, 10, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fresh {
		t.Errorf("Expected fresh=false for live tag")
	}

	// 3. After the TTL (3 blocks * 100ms) the tag is admitted again.
	time.Sleep(400 * time.Millisecond)
	fresh, err = store.Admit(ctx, tag, 13, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !fresh {
		t.Errorf("Expected fresh=true after expiry")
	}
}

func TestMemoryTagStoreExpiry(t *testing.T) {
	store := NewMemoryTagStore()
	ctx := context.Background()
	tag := []byte("tag-a")

	fresh, err := store.Admit(ctx, tag, 10, 3)
	if err != nil || !fresh {
		t.Fatalf("expected fresh admit, got fresh=%v err=%v", fresh, err)
	}

	fresh, _ = store.Admit(ctx, tag, 12, 3)
	if fresh {
		t.Error("expected refusal inside longevity window")
	}

	fresh, _ = store.Admit(ctx, tag, 13, 3)
	if !fresh {
		t.Error("expected admit at expiry height")
	}
}
