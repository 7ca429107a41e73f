package pskreporter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hamview/hamview/internal/mapview"
)

// fakeQuerier hands out canned results and counts calls.
type fakeQuerier struct {
	calls   atomic.Int32
	block   chan struct{} // when set, Query waits until closed
	markers []mapview.Marker
	err     error
}

func (q *fakeQuerier) Query(ctx context.Context, opts QueryOptions, style *Style) ([]mapview.Marker, int, error) {
	q.calls.Add(1)
	if q.block != nil {
		<-q.block
	}
	return q.markers, 0, q.err
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// pollUntilDone polls until the in-flight query has been collected.
func pollUntilDone(t *testing.T, s *Session) (bool, error) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		changed, err := s.Poll(context.Background())
		if changed || err != nil {
			return changed, err
		}
		if !s.Busy() {
			return false, nil
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("query never completed")
	return false, nil
}

func testMarkers(n int) []mapview.Marker {
	style := DefaultStyle()
	out := make([]mapview.Marker, n)
	for i := range out {
		out[i] = &Station{id: uint64(i + 1), style: style}
	}
	return out
}

func TestSessionSubmitAndPoll(t *testing.T) {
	q := &fakeQuerier{markers: testMarkers(2)}
	s := NewSession(q, DefaultStyle())

	if !s.Submit(context.Background(), testOptions("W1AW")) {
		t.Fatal("Submit() should start a query")
	}

	changed, err := pollUntilDone(t, s)
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if !changed {
		t.Fatal("Poll() should report the marker set changed")
	}
	if len(s.Markers()) != 2 {
		t.Errorf("got %d markers, want 2", len(s.Markers()))
	}
	if s.LastAttempt().IsZero() {
		t.Error("LastAttempt() should be set after completion")
	}
}

func TestSessionRejectsOverlappingSubmit(t *testing.T) {
	q := &fakeQuerier{block: make(chan struct{})}
	s := NewSession(q, DefaultStyle())

	if !s.Submit(context.Background(), testOptions("W1AW")) {
		t.Fatal("first Submit() should start")
	}
	if s.Submit(context.Background(), testOptions("W1AW")) {
		t.Fatal("second Submit() should be rejected while in flight")
	}

	close(q.block)
	pollUntilDone(t, s)

	if got := q.calls.Load(); got != 1 {
		t.Errorf("querier calls = %d, want 1", got)
	}
	if !s.Submit(context.Background(), testOptions("W1AW")) {
		t.Error("Submit() should work again after completion")
	}
}

func TestSessionKeepsMarkersOnFailure(t *testing.T) {
	q := &fakeQuerier{markers: testMarkers(3)}
	s := NewSession(q, DefaultStyle())

	s.Submit(context.Background(), testOptions("W1AW"))
	pollUntilDone(t, s)

	q.markers = nil
	q.err = ErrRateLimited
	s.Submit(context.Background(), testOptions("W1AW"))

	changed, err := pollUntilDone(t, s)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Poll() error = %v, want ErrRateLimited", err)
	}
	if changed {
		t.Error("failed query should not change markers")
	}
	if len(s.Markers()) != 3 {
		t.Errorf("got %d markers, want previous 3 kept", len(s.Markers()))
	}
	if s.LastAttempt().IsZero() {
		t.Error("failed attempt should still advance LastAttempt")
	}
}

func TestSessionAutoRefresh(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1756500000, 0)}
	q := &fakeQuerier{markers: testMarkers(1)}
	s := NewSession(q, DefaultStyle(),
		WithAutoRefresh(true),
		WithRefreshRate(2*time.Minute),
		withClock(clock.Now),
	)

	s.Submit(context.Background(), testOptions("W1AW"))
	pollUntilDone(t, s)
	if got := q.calls.Load(); got != 1 {
		t.Fatalf("querier calls = %d, want 1", got)
	}

	// before the interval elapses nothing happens
	clock.Advance(time.Minute)
	s.Poll(context.Background())
	if s.Busy() {
		t.Fatal("auto-refresh fired before the interval elapsed")
	}

	clock.Advance(time.Minute + time.Second)
	s.Poll(context.Background())
	if !s.Busy() {
		t.Fatal("auto-refresh should fire once the interval elapsed")
	}
	pollUntilDone(t, s)
	if got := q.calls.Load(); got != 2 {
		t.Errorf("querier calls = %d, want 2", got)
	}
}

func TestSessionNoAutoRefreshWhenDisabled(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1756500000, 0)}
	q := &fakeQuerier{}
	s := NewSession(q, DefaultStyle(), WithRefreshRate(time.Minute), withClock(clock.Now))

	s.Submit(context.Background(), testOptions("W1AW"))
	pollUntilDone(t, s)

	clock.Advance(time.Hour)
	s.Poll(context.Background())
	if s.Busy() {
		t.Error("auto-refresh should stay off by default")
	}
}

func TestSessionRefreshRateClamped(t *testing.T) {
	s := NewSession(&fakeQuerier{}, DefaultStyle())

	s.SetRefreshRate(time.Second)
	if got := s.RefreshRate(); got != MinRefreshRate {
		t.Errorf("RefreshRate() = %v, want clamped to %v", got, MinRefreshRate)
	}

	s.SetRefreshRate(24 * time.Hour)
	if got := s.RefreshRate(); got != MaxRefreshRate {
		t.Errorf("RefreshRate() = %v, want clamped to %v", got, MaxRefreshRate)
	}
}
