package clock

import (
	"testing"
	"time"

	"github.com/joripage/lob-engine/pkg/orderbook"
)

func TestSystemClockAdvances(t *testing.T) {
	c := System{}
	t1 := c.Now()
	time.Sleep(time.Millisecond)
	t2 := c.Now()
	if t2 <= t1 {
		t.Errorf("expected time to advance, got t1=%d t2=%d", t1, t2)
	}
}

func TestFakeClockIsDeterministic(t *testing.T) {
	f := NewFake(1000)
	if f.Now() != 1000 {
		t.Fatalf("expected 1000, got %d", f.Now())
	}
	f.Set(2000)
	if f.Now() != 2000 {
		t.Errorf("expected 2000, got %d", f.Now())
	}
}

func TestFakeClockAdvance(t *testing.T) {
	f := NewFake(0)
	got := f.Advance(time.Second)
	want := orderbook.Timestamp(time.Second.Nanoseconds())
	if got != want {
		t.Errorf("expected %d, got %d", want, got)
	}
}
