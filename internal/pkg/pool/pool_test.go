package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolBoundsConcurrency(t *testing.T) {
	p := New(3)
	var active, peak int32
	var mu sync.Mutex

	for i := 0; i < 20; i++ {
		err := p.Submit(context.Background(), func() {
			cur := atomic.AddInt32(&active, 1)
			mu.Lock()
			if cur > peak {
				peak = cur
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&active, -1)
		})
		if err != nil {
			t.Fatalf("Submit error: %v", err)
		}
	}
	p.Wait()

	if peak > 3 {
		t.Fatalf("pool exceeded bound: peak %d", peak)
	}
}

func TestPoolSubmitHonorsCancel(t *testing.T) {
	p := New(1)
	release := make(chan struct{})
	if err := p.Submit(context.Background(), func() { <-release }); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Submit(ctx, func() { t.Error("task must not run") }); err == nil {
		t.Fatal("expected context error when pool is full and ctx canceled")
	}

	close(release)
	p.Wait()
}

func TestPoolRunIsSynchronous(t *testing.T) {
	p := New(2)
	ran := false
	if err := p.Run(context.Background(), func() { ran = true }); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !ran {
		t.Fatal("Run returned before task executed")
	}
}
