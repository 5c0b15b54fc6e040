// Package expiry computes how far an item is from its expiry date.
//
// All arithmetic is done on calendar dates: the time-of-day of both the
// expiry value and "now" is ignored, so "today" and "tomorrow" do not depend
// on the hour an item was entered or checked.
package expiry

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/erazemk/bestbefore/internal/model"
)

// ErrInvalidDate is returned for expiry strings that are not ISO-8601 dates.
var ErrInvalidDate = errors.New("invalid date")

// Layouts without a zone are read as written.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Date is a calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses an ISO-8601 date or date-time and returns its calendar
// date. A value with a UTC offset names an instant and yields the date of
// that instant in loc, so "2026-03-05T23:00:00Z" is March 6 in UTC+1.
// Values without an offset keep the date as written.
func ParseDate(s string, loc *time.Location) (Date, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		if loc == nil {
			loc = time.Local
		}
		return DateOf(t.In(loc)), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight().AddDate(0, 0, n))
}

// At returns the instant at hour:00 on d in loc.
func (d Date) At(hour int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, 0, 0, 0, loc)
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return d.midnight().Format("2006-01-02")
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b Date) int {
	return int(b.midnight().Sub(a.midnight()).Hours() / 24)
}

// DaysUntil returns the calendar days from now to the expiry date, both read
// in now's location. Negative values mean the item has expired.
func DaysUntil(expiryDate string, now time.Time) (int, error) {
	d, err := ParseDate(expiryDate, now.Location())
	if err != nil {
		return 0, err
	}
	return DaysBetween(DateOf(now), d), nil
}

// Status returns the human readable expiry label for days.
func Status(days int) string {
	switch {
	case days < 0:
		return "Expired"
	case days == 0:
		return "Expires today"
	case days == 1:
		return "Expires tomorrow"
	default:
		return fmt.Sprintf("Expires in %d days", days)
	}
}

// Severity buckets, most urgent first.
type Severity string

const (
	SeverityExpired  Severity = "expired"
	SeverityCritical Severity = "critical"
	SeveritySoon     Severity = "soon"
	SeverityOK       Severity = "ok"
)

// SeverityOf returns the urgency bucket for days.
func SeverityOf(days int) Severity {
	switch {
	case days < 0:
		return SeverityExpired
	case days <= 3:
		return SeverityCritical
	case days <= 7:
		return SeveritySoon
	default:
		return SeverityOK
	}
}

// SortByUrgency sorts items in place by ascending days until expiry. Items
// with unparseable expiry dates go last. The sort is stable.
func SortByUrgency(items []model.Item, now time.Time) {
	type key struct {
		days  int
		valid bool
	}
	keys := make(map[string]key, len(items))
	for _, it := range items {
		days, err := DaysUntil(it.ExpiryDate, now)
		keys[it.ID] = key{days: days, valid: err == nil}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := keys[items[i].ID], keys[items[j].ID]
		if a.valid != b.valid {
			return a.valid
		}
		return a.days < b.days
	})
}
