package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestEncodeULID_Bounds(t *testing.T) {
	var zero [16]byte
	if got := encodeULID(zero); got != strings.Repeat("0", 26) {
		t.Errorf("expected all zeros, got %q", got)
	}

	var ones [16]byte
	for i := range ones {
		ones[i] = 0xFF
	}
	if got, want := encodeULID(ones), "7"+strings.Repeat("Z", 25); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestULIDSource_SortsWithinMillisecond(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &ulidSource{now: func() time.Time { return fixed }}

	prev := src.next()
	for range 100 {
		id := src.next()
		if id <= prev {
			t.Fatalf("expected %q > %q", id, prev)
		}
		if id[:10] != prev[:10] {
			t.Fatalf("expected shared timestamp prefix, got %q and %q", id, prev)
		}
		prev = id
	}
}

func TestULIDSource_TimestampPrefixOrders(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &ulidSource{now: func() time.Time { return clock }}

	a := src.next()
	clock = clock.Add(time.Millisecond)
	b := src.next()
	if a[:10] >= b[:10] {
		t.Errorf("expected later timestamp to sort after, got %q and %q", a, b)
	}
}
