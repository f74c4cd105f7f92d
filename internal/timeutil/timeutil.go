// Package timeutil normalizes date-time values from heterogeneous
// sources into canonical instants and computes interval overlap for the
// conflict detector.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDuration is the window assumed for items that have a start
// but no end, used for overlap purposes only.
const DefaultDuration = 60 * time.Minute

// clock-only layouts accepted by ParseInstant, tried in order
var clockLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"15:04",
}

// instant layouts accepted by ParseInstant before the clock fallback
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 timestamp or a free-form "h:mm a"
// clock string into a canonical UTC instant. Clock-only strings are
// anchored to the supplied day. Returns an error for anything it
// cannot resolve; callers that must not fail (the conflict detector)
// skip unparseable values.
func ParseInstant(raw string, day time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}

	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	// "h:mm a" and friends carry no date; anchor to the given day.
	upper := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			y, m, d := day.UTC().Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %q", raw)
}

// MinuteOfDay returns the minute offset within t's UTC day.
func MinuteOfDay(t time.Time) int {
	u := t.UTC()
	return u.Hour()*60 + u.Minute()
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// EffectiveWindow resolves an item's [start, end) interval. A missing
// end gets DefaultDuration. Returns ok=false when there is no start,
// in which case the item cannot participate in conflict detection.
func EffectiveWindow(start, end *time.Time) (time.Time, time.Time, bool) {
	if start == nil {
		return time.Time{}, time.Time{}, false
	}
	s := start.UTC()
	if end != nil && end.After(s) {
		return s, end.UTC(), true
	}
	return s, s.Add(DefaultDuration), true
}

// Overlaps reports whether two half-open intervals intersect:
// start1 < end2 && start2 < end1.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
