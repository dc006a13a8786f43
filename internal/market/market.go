package market

import (
	"fmt"
	"time"

	"github.com/ljwu/holdings-monitor/config"
)

// Calendar answers the regular-hours questions the scheduler needs: is the
// market open now, when does it open today, and where is the session
// termination barrier. Exchange holidays are not modeled; the session probe
// handles those.
type Calendar struct {
	loc        *time.Location
	openHour   int
	openMin    int
	closeHour  int
	closeMin   int
	closeGrace time.Duration
}

func NewCalendar(cfg config.Market) (*Calendar, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load market timezone %s: %w", cfg.Timezone, err)
	}

	openHour, openMin, err := parseClock(cfg.Open)
	if err != nil {
		return nil, fmt.Errorf("parse market open: %w", err)
	}

	closeHour, closeMin, err := parseClock(cfg.Close)
	if err != nil {
		return nil, fmt.Errorf("parse market close: %w", err)
	}

	return &Calendar{
		loc:        loc,
		openHour:   openHour,
		openMin:    openMin,
		closeHour:  closeHour,
		closeMin:   closeMin,
		closeGrace: cfg.SessionGrace,
	}, nil
}

func parseClock(s string) (hour, min int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// OpenClock exposes the open time for crontab construction in daemon mode.
func (c *Calendar) OpenClock() (hour, min int) {
	return c.openHour, c.openMin
}

func (c *Calendar) Now() time.Time {
	return time.Now().In(c.loc)
}

// IsTradingDay reports Monday through Friday in the market timezone.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	wd := t.In(c.loc).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsOpen reports whether t falls inside regular hours [open, close).
func (c *Calendar) IsOpen(t time.Time) bool {
	t = t.In(c.loc)
	if !c.IsTradingDay(t) {
		return false
	}
	return !t.Before(c.OpenAt(t)) && t.Before(c.closeAt(t))
}

// OpenAt returns the market open on t's date.
func (c *Calendar) OpenAt(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), c.openHour, c.openMin, 0, 0, c.loc)
}

func (c *Calendar) closeAt(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), c.closeHour, c.closeMin, 0, 0, c.loc)
}

// CloseBarrier is market close on t's date extended by the configured grace
// period; a session terminates once it is reached.
func (c *Calendar) CloseBarrier(t time.Time) time.Time {
	return c.closeAt(t).Add(c.closeGrace)
}

// NextTick rounds t up to the next multiple of interval minutes, discarding
// seconds and sub-second components. Successive ticks are strictly
// increasing and aligned to the interval grid.
func NextTick(t time.Time, intervalMinutes int) time.Time {
	discard := time.Duration(t.Minute()%intervalMinutes)*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())*time.Nanosecond
	return t.Add(time.Duration(intervalMinutes)*time.Minute - discard).Truncate(time.Minute)
}
