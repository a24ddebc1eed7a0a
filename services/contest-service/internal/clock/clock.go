// Package clock maps instants to contest periods. A period is one UTC calendar day.
package clock

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Layout is the textual form of a Period.
const Layout = "2006-01-02"

var ErrInvalidPeriod = errors.New("invalid period")

// Period identifies one contest day, e.g. "2026-10-16".
type Period string

// PeriodOf returns the UTC day containing t.
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format(Layout))
}

// Parse validates s as a period key.
func Parse(s string) (Period, error) {
	t, err := time.Parse(Layout, s)
	if err != nil || t.Format(Layout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Period(s), nil
}

// Start returns midnight UTC of the period.
func (p Period) Start() time.Time {
	t, _ := time.Parse(Layout, string(p))
	return t
}

func (p Period) Prev() Period {
	return PeriodOf(p.Start().AddDate(0, 0, -1))
}

func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 0, 1))
}

// Before reports whether p is an earlier day than other.
func (p Period) Before(other Period) bool {
	return p < other
}

func (p Period) String() string {
	return string(p)
}

// Clock is the source of "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a settable clock for tests and one-shot jobs.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now.UTC()}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	f.now = now.UTC()
	f.mu.Unlock()
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Resolver answers which period is current.
type Resolver struct {
	clock Clock
}

func NewResolver(c Clock) *Resolver {
	if c == nil {
		c = SystemClock{}
	}
	return &Resolver{clock: c}
}

func (r *Resolver) Now() time.Time {
	return r.clock.Now().UTC()
}

func (r *Resolver) PeriodOf(t time.Time) Period {
	return PeriodOf(t)
}

func (r *Resolver) Today() Period {
	return PeriodOf(r.Now())
}

func (r *Resolver) Yesterday() Period {
	return r.Today().Prev()
}
