package shutdown

import (
	"sync"
	"testing"
	"time"
)

func TestLIFOOrder(t *testing.T) {
	c := New()
	var order []int
	var mu sync.Mutex
	for i := 1; i <= 3; i++ {
		i := i
		c.Register(func() error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}
	if err := c.Execute(Immediate, 0); err != nil {
		t.Fatal(err)
	}
	want := []int{3, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestExecuteTwiceFails(t *testing.T) {
	c := New()
	c.Register(func() error { return nil })
	if err := c.Execute(Immediate, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Execute(Immediate, 0); err == nil {
		t.Fatal("expected second Execute to fail")
	}
}

func TestHandlerPanicIsolated(t *testing.T) {
	c := New()
	ran := false
	c.Register(func() error {
		ran = true
		return nil
	})
	c.Register(func() error { panic("boom") })

	if err := c.Execute(Immediate, 0); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("expected handler after the panicking one to still run")
	}
}

func TestFlushPendingJoinsAll(t *testing.T) {
	c := New()
	var count int32
	var mu sync.Mutex
	for i := 0; i < 5; i++ {
		c.Register(func() error {
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			count++
			mu.Unlock()
			return nil
		})
	}
	if err := c.Execute(FlushPending, 0); err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
}

func TestGracefulSkipsPastDeadline(t *testing.T) {
	c := New()
	var ran []string
	var mu sync.Mutex
	// Registered first, runs second under LIFO order.
	c.Register(func() error {
		mu.Lock()
		ran = append(ran, "should-be-skipped")
		mu.Unlock()
		return nil
	})
	// Registered second, runs first under LIFO order, and consumes
	// the whole deadline.
	c.Register(func() error {
		time.Sleep(30 * time.Millisecond)
		mu.Lock()
		ran = append(ran, "slow")
		mu.Unlock()
		return nil
	})

	if err := c.Execute(Graceful, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 1 || ran[0] != "slow" {
		t.Fatalf("ran = %v, want only the LIFO-first (slow) handler to run", ran)
	}
}

func TestReset(t *testing.T) {
	c := New()
	c.Register(func() error { return nil })
	_ = c.Execute(Immediate, 0)
	c.Reset()
	if err := c.Execute(Immediate, 0); err != nil {
		t.Fatalf("expected Execute to succeed after Reset: %v", err)
	}
}
