package registry

import (
	"sync"
	"testing"
)

func TestEnsureReturnsSameTarget(t *testing.T) {
	r := New()
	a := r.Ensure("10.0.0.1")
	b := r.Ensure("10.0.0.1")
	if a != b {
		t.Fatal("Ensure must return the same target for the same address")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 target, got %d", r.Len())
	}
}

func TestAddrsSorted(t *testing.T) {
	r := New()
	r.Ensure("10.0.0.9")
	r.Ensure("10.0.0.1")
	r.Ensure("10.0.0.5")

	addrs := r.Addrs()
	if addrs[0] != "10.0.0.1" || addrs[2] != "10.0.0.9" {
		t.Fatalf("addresses not sorted: %v", addrs)
	}
}

func TestConcurrentEnsure(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Ensure("10.0.0.1").AddPort(22)
		}()
	}
	wg.Wait()

	target, ok := r.Get("10.0.0.1")
	if !ok {
		t.Fatal("target missing")
	}
	if got := len(target.OpenPorts()); got != 1 {
		t.Fatalf("expected 1 port after concurrent inserts, got %d", got)
	}
}
