package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_CoalescesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "leaderboard", nil
	}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "leaderboard:t1:3", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "leaderboard" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ReturnsCachedValue(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_SetTTL_Expires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)
	store.SetTTL(ctx, "k", "v", 10*time.Millisecond)

	if _, ok := store.Get(ctx, "k"); !ok {
		t.Fatalf("expected value before expiry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected value to expire")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(0)
	store.Set(ctx, "leaderboard:t1:1", 1)
	store.Set(ctx, "leaderboard:t1:2", 2)
	store.Set(ctx, "leaderboard:t2:1", 3)

	store.DeletePrefix(ctx, "leaderboard:t1:")

	if _, ok := store.Get(ctx, "leaderboard:t1:1"); ok {
		t.Fatalf("expected t1 keys to be deleted")
	}
	if _, ok := store.Get(ctx, "leaderboard:t2:1"); !ok {
		t.Fatalf("expected t2 keys to survive")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
