package replay

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryClaim(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	var mu sync.Mutex
	clock := func() time.Time { mu.Lock(); defer mu.Unlock(); return now }
	m := NewMemory(clock)
	ctx := context.Background()

	if ok, _ := m.Claim(ctx, "a", time.Minute); !ok {
		t.Fatalf("first claim rejected")
	}
	if ok, _ := m.Claim(ctx, "a", time.Minute); ok {
		t.Fatalf("second claim accepted")
	}
	if ok, _ := m.Claim(ctx, "", time.Minute); ok {
		t.Fatalf("empty id accepted")
	}

	mu.Lock()
	now = now.Add(time.Minute)
	mu.Unlock()

	if ok, _ := m.Claim(ctx, "a", time.Minute); !ok {
		t.Fatalf("claim after expiry rejected")
	}
}

func TestMemoryPurge(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	m := NewMemory(func() time.Time { return now })
	for i := 0; i < purgeEvery-1; i++ {
		_, _ = m.Claim(context.Background(), fmt.Sprint(i), time.Second)
	}
	if got := m.Len(); got != purgeEvery-1 {
		t.Fatalf("Len() = %d; want %d", got, purgeEvery-1)
	}
	now = now.Add(2 * time.Second) // все прежние записи просрочены
	_, _ = m.Claim(context.Background(), "fresh", time.Minute)
	if got := m.Len(); got != 1 {
		t.Fatalf("Len() after purge = %d; want 1", got)
	}
}

func TestMemoryClaim_NonPositiveTTLStillBlocksReplay(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	m := NewMemory(func() time.Time { return now })
	ctx := context.Background()

	for _, ttl := range []time.Duration{0, -time.Minute} {
		id := fmt.Sprint("ttl", ttl)
		if ok, _ := m.Claim(ctx, id, ttl); !ok {
			t.Fatalf("ttl=%v: first claim rejected", ttl)
		}
		if ok, _ := m.Claim(ctx, id, ttl); ok {
			t.Fatalf("ttl=%v: replay accepted", ttl)
		}
	}
}

func TestMemoryClaim_ParallelSingleWinner(t *testing.T) {
	t.Parallel()

	m := NewMemory(nil)
	const N = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(N)
	for i := 0; i < N; i++ {
		go func() {
			defer wg.Done()
			if ok, _ := m.Claim(context.Background(), "same", time.Minute); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := wins.Load(); got != 1 {
		t.Fatalf("winners = %d; want 1", got)
	}
}
