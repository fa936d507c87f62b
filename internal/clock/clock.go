package clock

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout is the calendar-day key format used everywhere state is dated.
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

// Real reads the wall clock, optionally pinned to a location.
type Real struct {
	Location *time.Location
}

func (c Real) Now() time.Time {
	if c.Location != nil {
		return time.Now().In(c.Location)
	}
	return time.Now()
}

// Fake is deterministic and test-friendly.
type Fake struct {
	mu sync.Mutex
	t  time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{t: start}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// DateKey formats t as a local calendar day.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

func Today(c Clock) string {
	return DateKey(c.Now())
}

func Yesterday(c Clock) string {
	return DateKey(c.Now().AddDate(0, 0, -1))
}

func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", key, err)
	}
	return t, nil
}

// AddDays shifts a date key by n calendar days.
func AddDays(key string, n int) (string, error) {
	t, err := ParseDateKey(key)
	if err != nil {
		return "", err
	}
	return DateKey(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the number of calendar days from one key to another.
// Both keys are interpreted in UTC, so DST transitions never skew the count.
func DaysBetween(from, to string) (int, error) {
	a, err := ParseDateKey(from)
	if err != nil {
		return 0, err
	}
	b, err := ParseDateKey(to)
	if err != nil {
		return 0, err
	}
	return int(b.Sub(a).Hours() / 24), nil
}
