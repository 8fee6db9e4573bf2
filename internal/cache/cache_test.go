package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFetchCachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	loads := 0
	load := func(context.Context) ([]int, error) {
		loads++
		return []int{loads}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, store, zerolog.Nop(), Key("shifts", 4), load)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if got[0] != 1 {
			t.Errorf("got %v, want cached [1]", got)
		}
	}

	if err := store.Invalidate(ctx, Key("shifts", 4)); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	got, _ := Fetch(ctx, store, zerolog.Nop(), Key("shifts", 4), load)
	if got[0] != 2 || loads != 2 {
		t.Errorf("got %v loads=%d after invalidate", got, loads)
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	boom := errors.New("boom")

	if _, err := Fetch(ctx, store, zerolog.Nop(), "machines", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	var v int
	if ok, _ := store.Get(ctx, "machines", &v); ok {
		t.Error("error result was cached")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_ = store.Set(ctx, "inventory", "x")
	now = now.Add(2 * time.Second)

	var v string
	if ok, _ := store.Get(ctx, "inventory", &v); ok {
		t.Error("expired entry returned")
	}
}

func TestInvalidateByPrefixAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	_ = store.Set(ctx, Key("history", 1), 1)
	_ = store.Set(ctx, Key("history", 2), 2)
	_ = store.Set(ctx, "machines", 3)

	_ = store.Invalidate(ctx, "history:")
	var v int
	if ok, _ := store.Get(ctx, Key("history", 1), &v); ok {
		t.Error("history:1 survived prefix invalidation")
	}
	if ok, _ := store.Get(ctx, "machines", &v); !ok {
		t.Error("machines dropped by unrelated invalidation")
	}

	_ = store.Clear(ctx)
	if ok, _ := store.Get(ctx, "machines", &v); ok {
		t.Error("Clear left entries")
	}
}

func TestInvalidateKeepsSiblingIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	_ = store.Set(ctx, Key("shifts", 1), 1)
	_ = store.Set(ctx, Key("shifts", 1, "x"), 2)
	_ = store.Set(ctx, Key("shifts", 10), 3)

	if err := store.Invalidate(ctx, Key("shifts", 1)); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	var v int
	if ok, _ := store.Get(ctx, Key("shifts", 1), &v); ok {
		t.Error("shifts:1 survived")
	}
	if ok, _ := store.Get(ctx, Key("shifts", 1, "x"), &v); ok {
		t.Error("shifts:1:x survived")
	}
	if ok, _ := store.Get(ctx, Key("shifts", 10), &v); !ok || v != 3 {
		t.Error("shifts:10 dropped by shifts:1 invalidation")
	}
}

func TestInvalidateGroupWithAndWithoutSeparator(t *testing.T) {
	ctx := context.Background()
	for _, prefix := range []string{"inventory", "inventory:"} {
		store := NewMemoryStore(0)
		_ = store.Set(ctx, Key("inventory", "items"), 1)
		_ = store.Set(ctx, Key("inventory", "transactions", 3), 2)
		_ = store.Set(ctx, "inventoryx", 3)

		_ = store.Invalidate(ctx, prefix)
		var v int
		if ok, _ := store.Get(ctx, Key("inventory", "items"), &v); ok {
			t.Errorf("%q: inventory:items survived", prefix)
		}
		if ok, _ := store.Get(ctx, Key("inventory", "transactions", 3), &v); ok {
			t.Errorf("%q: inventory:transactions:3 survived", prefix)
		}
		if ok, _ := store.Get(ctx, "inventoryx", &v); !ok {
			t.Errorf("%q: unrelated key dropped", prefix)
		}
	}
}

func TestRedisGroupKeys(t *testing.T) {
	exact, nested := groupKeys("shifts:1")
	if exact != "drillfleet:shifts:1" || nested != "drillfleet:shifts:1:*" {
		t.Errorf("got %q %q", exact, nested)
	}
	exact, nested = groupKeys("inventory:")
	if exact != "drillfleet:inventory" || nested != "drillfleet:inventory:*" {
		t.Errorf("got %q %q", exact, nested)
	}
}
