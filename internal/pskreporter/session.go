package pskreporter

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/hamview/hamview/internal/mapview"
)

// Refresh-rate bounds in seconds.
const (
	MinRefreshRate = 60 * time.Second
	MaxRefreshRate = 1800 * time.Second
)

// Querier fetches markers for a set of query options. *Client
// implements it.
type Querier interface {
	Query(ctx context.Context, opts QueryOptions, style *Style) ([]mapview.Marker, int, error)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger. The default discards everything.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRefreshRate sets the auto-refresh interval, clamped to
// [MinRefreshRate, MaxRefreshRate].
func WithRefreshRate(d time.Duration) SessionOption {
	return func(s *Session) { s.refreshRate = clampRefreshRate(d) }
}

// WithAutoRefresh enables or disables periodic re-query.
func WithAutoRefresh(enabled bool) SessionOption {
	return func(s *Session) { s.autoRefresh = enabled }
}

// withClock replaces the time source, for tests.
func withClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

type queryResult struct {
	markers []mapview.Marker
	dropped int
	err     error
}

// Session owns the marker set for one reporting tab and schedules
// queries against the retrieval API. All methods must be called from
// the frame loop goroutine; queries themselves run in the background
// and are collected by Poll without blocking.
type Session struct {
	querier     Querier
	style       *Style
	logger      *slog.Logger
	now         func() time.Time
	refreshRate time.Duration
	autoRefresh bool

	markers     []mapview.Marker
	pending     chan queryResult
	lastOpts    *QueryOptions
	lastAttempt time.Time
}

// NewSession creates a session on top of a querier.
func NewSession(q Querier, style *Style, opts ...SessionOption) *Session {
	s := &Session{
		querier:     q,
		style:       style,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		refreshRate: MinRefreshRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit starts a query in the background. It returns false without
// doing anything while a previous query is still in flight, so a
// slow server never stacks requests.
func (s *Session) Submit(ctx context.Context, opts QueryOptions) bool {
	if s.pending != nil {
		return false
	}

	o := opts
	s.lastOpts = &o
	s.pending = make(chan queryResult, 1)

	go func(ch chan queryResult) {
		markers, dropped, err := s.querier.Query(ctx, opts, s.style)
		ch <- queryResult{markers: markers, dropped: dropped, err: err}
	}(s.pending)

	return true
}

// Poll collects a finished query if one is ready and triggers an
// auto-refresh when the interval has elapsed. It never blocks.
// changed reports whether the marker set was replaced.
//
// The attempt timestamp advances even when the query failed. In
// particular a rate-limited response still resets the countdown, so
// the next automatic attempt waits a full interval instead of
// hammering a server that just asked us to slow down.
func (s *Session) Poll(ctx context.Context) (changed bool, err error) {
	if s.pending != nil {
		select {
		case res := <-s.pending:
			s.pending = nil
			s.lastAttempt = s.now()
			if res.err != nil {
				s.logger.Error("query failed, keeping previous markers", "error", res.err)
				return false, res.err
			}
			if res.dropped > 0 {
				s.logger.Warn("dropped reports with unparseable locators", "count", res.dropped)
			}
			s.markers = res.markers
			return true, nil
		default:
		}
		return false, nil
	}

	if s.autoRefresh && s.lastOpts != nil && !s.lastAttempt.IsZero() &&
		s.now().Sub(s.lastAttempt) >= s.refreshRate {
		s.Submit(ctx, *s.lastOpts)
	}
	return false, nil
}

// Markers returns the current marker set. The slice is replaced, never
// mutated, on refresh.
func (s *Session) Markers() []mapview.Marker { return s.markers }

// Busy reports whether a query is in flight.
func (s *Session) Busy() bool { return s.pending != nil }

// LastAttempt returns when the most recent query finished, successful
// or not. Zero before the first completion.
func (s *Session) LastAttempt() time.Time { return s.lastAttempt }

// RefreshRate returns the auto-refresh interval.
func (s *Session) RefreshRate() time.Duration { return s.refreshRate }

// SetRefreshRate updates the auto-refresh interval, clamped to the
// allowed range.
func (s *Session) SetRefreshRate(d time.Duration) {
	s.refreshRate = clampRefreshRate(d)
}

// SetAutoRefresh enables or disables periodic re-query.
func (s *Session) SetAutoRefresh(enabled bool) { s.autoRefresh = enabled }

func clampRefreshRate(d time.Duration) time.Duration {
	if d < MinRefreshRate {
		return MinRefreshRate
	}
	if d > MaxRefreshRate {
		return MaxRefreshRate
	}
	return d
}
