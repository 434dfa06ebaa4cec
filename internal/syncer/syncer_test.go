package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestQueue() *Queue {
	return NewQueue(Params{JobTimeout: time.Second})
}

func TestEnqueueReplacesPendingJobWithSameKey(t *testing.T) {
	t.Parallel()

	queue := newTestQueue()

	var mu sync.Mutex
	var ran []string
	record := func(label string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			ran = append(ran, label)
			mu.Unlock()
			return nil
		}
	}

	queue.Enqueue(Job{Key: "cart.push", Kind: "cart.push", Run: record("stale")})
	queue.Enqueue(Job{Key: "cart.push", Kind: "cart.push", Run: record("latest")})
	queue.Enqueue(Job{Key: "wishlist:p1", Kind: "wishlist.add", Run: record("wishlist")})

	if got := queue.Pending(); got != 2 {
		t.Fatalf("expected 2 pending jobs, got %d", got)
	}

	queue.Drain(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 2 || ran[0] != "latest" || ran[1] != "wishlist" {
		t.Fatalf("unexpected run order %v", ran)
	}
}

func TestCancelDropsPendingJob(t *testing.T) {
	t.Parallel()

	queue := newTestQueue()
	queue.Enqueue(Job{Key: "wishlist:p1", Kind: "wishlist.add", Run: func(context.Context) error {
		t.Fatal("cancelled job must not run")
		return nil
	}})

	if !queue.Cancel("wishlist:p1") {
		t.Fatal("expected pending job to be cancelled")
	}
	if queue.Cancel("wishlist:p1") {
		t.Fatal("second cancel should report nothing pending")
	}
	queue.Drain(context.Background())
}

func TestFailedJobIsDroppedNotRetried(t *testing.T) {
	t.Parallel()

	queue := newTestQueue()
	calls := 0
	queue.Enqueue(Job{Key: "cart.push", Kind: "cart.push", Run: func(context.Context) error {
		calls++
		return errors.New("remote unavailable")
	}})

	queue.Drain(context.Background())
	queue.Drain(context.Background())

	if calls != 1 {
		t.Fatalf("failed job ran %d times, want 1", calls)
	}
	if queue.Pending() != 0 {
		t.Fatalf("failed job left in queue")
	}
}

func TestRunDrainsUntilCancelled(t *testing.T) {
	t.Parallel()

	queue := newTestQueue()
	done := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		queue.Run(ctx)
		close(done)
	}()

	ran := make(chan string, 2)
	queue.Enqueue(Job{Key: "a", Kind: "cart.push", Run: func(context.Context) error {
		ran <- "a"
		return nil
	}})
	queue.Enqueue(Job{Key: "b", Kind: "wishlist.remove", Run: func(context.Context) error {
		ran <- "b"
		return nil
	}})

	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not pick up job")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}

func TestEnqueueIgnoresInvalidJobs(t *testing.T) {
	t.Parallel()

	queue := newTestQueue()
	queue.Enqueue(Job{Key: "", Kind: "cart.push", Run: func(context.Context) error { return nil }})
	queue.Enqueue(Job{Key: "cart.push", Kind: "cart.push"})

	if queue.Pending() != 0 {
		t.Fatalf("invalid jobs should be ignored, %d pending", queue.Pending())
	}
}
