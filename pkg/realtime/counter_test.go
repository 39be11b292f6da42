package realtime

import "testing"

func TestCounterIncrementDecrement(t *testing.T) {
	c := NewCounter()

	if got := c.Increment(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := c.Increment(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := c.Decrement(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestCounterDecrementFloorsAtZero(t *testing.T) {
	c := NewCounter()

	if got := c.Decrement(); got != 0 {
		t.Fatalf("expected floor at 0, got %d", got)
	}
	if got := c.Decrement(); got != 0 {
		t.Fatalf("expected floor at 0, got %d", got)
	}
}

func TestCounterSyncWins(t *testing.T) {
	c := NewCounter()

	c.Increment()
	c.Increment()
	c.Increment()

	if got := c.Sync(7); got != 7 {
		t.Fatalf("expected snapshot 7, got %d", got)
	}
	if got := c.Increment(); got != 8 {
		t.Fatalf("expected overlay on snapshot, got %d", got)
	}
}

func TestCounterSyncNegativeClamped(t *testing.T) {
	c := NewCounter()

	if got := c.Sync(-3); got != 0 {
		t.Fatalf("expected negative snapshot clamped to 0, got %d", got)
	}
}

func TestCounterReset(t *testing.T) {
	c := NewCounter()

	c.Sync(5)
	if got := c.Reset(); got != 0 {
		t.Fatalf("expected 0 after reset, got %d", got)
	}
	if got := c.Value(); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
