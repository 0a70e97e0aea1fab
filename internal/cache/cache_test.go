package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type identity struct {
	Account string
	Arn     string
}

func TestMemoryCache_GetSet(t *testing.T) {
	cache := NewMemoryCache[identity]()
	ctx := context.Background()

	want := identity{Account: "123456789012", Arn: "arn:aws:iam::123456789012:user/alice"}
	if err := cache.Set(ctx, "acb-pao", want, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, "acb-pao")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestMemoryCache_GetMiss(t *testing.T) {
	cache := NewMemoryCache[int64]()

	_, err := cache.Get(context.Background(), "non-existent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache[int64]()
	ctx := context.Background()

	if err := cache.Set(ctx, "expire-key", 100, 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := cache.Get(ctx, "expire-key"); err != nil {
		t.Fatalf("Get failed before expiration: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, err := cache.Get(ctx, "expire-key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after expiration, got %v", err)
	}
}

func TestMemoryCache_DeleteAndClose(t *testing.T) {
	cache := NewMemoryCache[int64]()
	ctx := context.Background()

	_ = cache.Set(ctx, "a", 1, time.Minute)
	_ = cache.Set(ctx, "b", 2, time.Minute)

	if err := cache.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := cache.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after close, got %v", err)
	}

	if err := cache.Health(ctx); err != nil {
		t.Errorf("Health should always succeed, got %v", err)
	}
}

func TestMemoryCache_GetWithFetch_CacheMiss(t *testing.T) {
	cache := NewMemoryCache[int64]()
	ctx := context.Background()

	var calls int
	fetch := func(ctx context.Context, key string) (int64, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		value, err := cache.GetWithFetch(ctx, "k", time.Minute, fetch)
		if err != nil {
			t.Fatalf("GetWithFetch failed: %v", err)
		}
		if value != 42 {
			t.Errorf("Expected 42, got %d", value)
		}
	}

	if calls != 1 {
		t.Errorf("Expected fetch to run once, ran %d times", calls)
	}
}

func TestMemoryCache_GetWithFetch_FetchErrorNotCached(t *testing.T) {
	cache := NewMemoryCache[int64]()
	ctx := context.Background()
	fetchErr := errors.New("sts unavailable")

	var calls int
	fetch := func(ctx context.Context, key string) (int64, error) {
		calls++
		return 0, fetchErr
	}

	for i := 0; i < 2; i++ {
		if _, err := cache.GetWithFetch(ctx, "k", time.Minute, fetch); !errors.Is(err, fetchErr) {
			t.Fatalf("Expected fetch error, got %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("Expected failed fetches to be retried, ran %d times", calls)
	}
}

func TestMemoryCache_GetWithFetch_Concurrent(t *testing.T) {
	cache := NewMemoryCache[int64]()
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context, key string) (int64, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	const workers = 20
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			value, err := cache.GetWithFetch(ctx, "shared", time.Minute, fetch)
			if err != nil || value != 7 {
				t.Errorf("GetWithFetch = %d, %v", value, err)
			}
		}()
	}

	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got < 1 || got > workers {
		t.Errorf("unexpected fetch count %d", got)
	}
	if value, err := cache.Get(ctx, "shared"); err != nil || value != 7 {
		t.Errorf("Expected cached value 7, got %d, %v", value, err)
	}
}
