package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_WaitPaces(t *testing.T) {
	l := NewLimiter(50, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	// 3 requests at 50/s with burst 1: at least ~40ms.
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Expected pacing, finished in %v", elapsed)
	}
}

func TestLimiter_WaitHonorsCancellation(t *testing.T) {
	l := NewLimiter(0.1, 1)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("draining burst slot: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("Expected context deadline error")
	}
}

func TestLimiter_DefaultBurst(t *testing.T) {
	l := NewLimiter(0.1, 0)

	// Burst defaults to 5: five waits clear immediately even at a
	// negligible refill rate.
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Expected burst slots to clear immediately, took %v", elapsed)
	}
}
