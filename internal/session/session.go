package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ljwu/holdings-monitor/internal/market"
)

type PassRunner interface {
	Probe(ctx context.Context) error
	RunOnce(ctx context.Context)
}

// Session drives one bounded intraday run: wait for market open, probe the
// quote source once, then poll on the interval grid until market close or
// cancellation. Pass failures never terminate the session; only the initial
// probe failure and reaching the close barrier do.
type Session struct {
	runner          PassRunner
	cal             *market.Calendar
	intervalMinutes int

	out        io.Writer
	now        func() time.Time
	sleepUntil func(ctx context.Context, t time.Time) bool
}

func New(runner PassRunner, cal *market.Calendar, intervalMinutes int) *Session {
	return &Session{
		runner:          runner,
		cal:             cal,
		intervalMinutes: intervalMinutes,
		out:             os.Stdout,
		now:             time.Now,
		sleepUntil:      sleepUntil,
	}
}

func (s *Session) Run(ctx context.Context) {
	op := "Session.Run"
	now := s.now().In(s.cal.Location())

	if !s.cal.IsTradingDay(now) {
		fmt.Fprintf(s.out, "not a trading day, exiting session: %s\n", now.Format("2006-01-02 15:04:05 MST"))
		return
	}

	// started past close: terminate without performing a single pass
	if !now.Before(s.cal.CloseBarrier(now)) {
		fmt.Fprintf(s.out, "past market close, exiting session: %s\n", now.Format("2006-01-02 15:04:05 MST"))
		return
	}

	if openAt := s.cal.OpenAt(now); now.Before(openAt) {
		slog.Info("waiting for market open", slog.String("op", op), slog.Time("openAt", openAt))
		if !s.sleepUntil(ctx, openAt) {
			return
		}
	}

	// probe failure is an expected termination path, not an error: on a
	// holiday the quote source serves only stale data
	if err := s.runner.Probe(ctx); err != nil {
		fmt.Fprintf(s.out, "probe failed, market likely closed, exiting session: %s\n", err)
		return
	}

	s.runner.RunOnce(ctx)

	for {
		now = s.now().In(s.cal.Location())
		if s.closed(now) {
			fmt.Fprintf(s.out, "market close reached, exiting session: %s\n", now.Format("2006-01-02 15:04:05 MST"))
			return
		}

		next := market.NextTick(now, s.intervalMinutes)
		if !s.sleepUntil(ctx, next) {
			slog.Info("session cancelled", slog.String("op", op))
			return
		}

		// a wake at or after the close barrier terminates without a pass
		now = s.now().In(s.cal.Location())
		if s.closed(now) {
			fmt.Fprintf(s.out, "market close reached, exiting session: %s\n", now.Format("2006-01-02 15:04:05 MST"))
			return
		}

		s.runner.RunOnce(ctx)
	}
}

func (s *Session) closed(now time.Time) bool {
	return !s.cal.IsTradingDay(now) || !now.Before(s.cal.CloseBarrier(now))
}

// RunForever is the legacy unbounded polling mode: no market-open wait, no
// close barrier, passes on the interval grid until cancellation.
func (s *Session) RunForever(ctx context.Context) {
	for {
		now := s.now().In(s.cal.Location())
		next := market.NextTick(now, s.intervalMinutes)
		if !s.sleepUntil(ctx, next) {
			return
		}
		s.runner.RunOnce(ctx)
	}
}

// sleepUntil blocks until t or cancellation; returns false when cancelled.
func sleepUntil(ctx context.Context, t time.Time) bool {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
