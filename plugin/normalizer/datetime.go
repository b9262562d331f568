// Package normalizer turns loosely structured event input — AI tool-call
// arguments and free-text booking descriptions in Traditional Chinese — into
// exact calendar fields.
//
// Everything in this package is pure and side-effect free: the same input
// produces the same output no matter where it runs, so the web client path
// and the webhook path can never diverge. "Now" is always an explicit
// parameter, never the ambient clock.
package normalizer

import (
	"regexp"
	"strings"
	"time"
)

// TaipeiZone is the fixed local offset assumed for every input that carries
// no timezone marker of its own. Using a fixed zone instead of the IANA
// database keeps parsing independent of the host's zoneinfo.
var TaipeiZone = time.FixedZone("UTC+8", 8*60*60)

var (
	offsetSuffixPattern  = regexp.MustCompile(`\d{2}:\d{2}(:\d{2})?(\.\d+)?(Z|[+-]\d{2}:?\d{2})$`)
	localDateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(:\d{2})?$`)
	dateOnlyPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// offsetLayouts cover the offset-qualified spellings the AI providers emit.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
}

// looseLayouts are the last-resort spellings, parsed under the local offset.
var looseLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006年01月02日 15:04",
	"2006年1月2日 15:04",
	"2006年1月2日",
}

// EventTime is the canonical (start, end, allDay) triple handed to storage.
// Invariant: End is strictly after Start; for all-day events Start is local
// midnight and End is exactly Start+24h.
type EventTime struct {
	Start  time.Time
	End    time.Time
	AllDay bool
}

// ParseLocal parses a single date/time string into an absolute instant under
// the fixed local offset. It returns nil instead of an error on every failure
// path; recovery belongs to the caller.
//
// Precedence:
//  1. explicit offset marker (Z or ±HH:MM after a time component)
//  2. YYYY-MM-DD[ T]HH:mm — local offset appended
//  3. bare YYYY-MM-DD — local midnight
//  4. loose layouts under the local offset
func ParseLocal(value string) *time.Time {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}

	if offsetSuffixPattern.MatchString(s) {
		for _, layout := range offsetLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				u := t.UTC()
				return &u
			}
		}
		return nil
	}

	if localDateTimePattern.MatchString(s) {
		layout := "2006-01-02T15:04"
		if len(s) > 16 {
			layout = "2006-01-02T15:04:05"
		}
		if s[10] == ' ' {
			layout = "2006-01-02 " + layout[11:]
		}
		if t, err := time.ParseInLocation(layout, s, TaipeiZone); err == nil {
			u := t.UTC()
			return &u
		}
		return nil
	}

	if dateOnlyPattern.MatchString(s) {
		if t, err := time.ParseInLocation("2006-01-02", s, TaipeiZone); err == nil {
			u := t.UTC()
			return &u
		}
		return nil
	}

	for _, layout := range looseLayouts {
		if t, err := time.ParseInLocation(layout, s, TaipeiZone); err == nil {
			u := t.UTC()
			return &u
		}
	}

	return nil
}

// ResolveTriple composes raw start/end strings and an all-day flag into a
// canonical EventTime. It is total — any input yields a valid triple — and
// idempotent: feeding its own output back in is a no-op.
//
// Missing or unparseable start falls back to now; missing end falls back to
// start+1h. All-day snaps start down to local midnight and forces a 24h span.
// An end at or before start is corrected to start+1h.
func ResolveTriple(startRaw, endRaw string, allDay bool, now time.Time) EventTime {
	var start time.Time
	if t := ParseLocal(startRaw); t != nil {
		start = *t
	} else {
		start = now.UTC().Truncate(time.Second)
	}

	var end time.Time
	if t := ParseLocal(endRaw); t != nil {
		end = *t
	} else {
		end = start.Add(time.Hour)
	}

	if allDay {
		start = StartOfLocalDay(start)
		end = start.Add(24 * time.Hour)
	}

	if !end.After(start) {
		end = start.Add(time.Hour)
	}

	return EventTime{Start: start, End: end, AllDay: allDay}
}

// StartOfLocalDay snaps an instant down to midnight of its own calendar date
// under the fixed local offset. The result is reported in UTC.
func StartOfLocalDay(t time.Time) time.Time {
	local := t.In(TaipeiZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, TaipeiZone).UTC()
}

// LocalDate returns the local calendar date of an instant as (year, month, day).
func LocalDate(t time.Time) (int, time.Month, int) {
	local := t.In(TaipeiZone)
	return local.Year(), local.Month(), local.Day()
}

// SameLocalDate reports whether two instants fall on the same local calendar date.
func SameLocalDate(a, b time.Time) bool {
	ay, am, ad := LocalDate(a)
	by, bm, bd := LocalDate(b)
	return ay == by && am == bm && ad == bd
}

// makeLocal builds an instant from local calendar components.
func makeLocal(year, month, day, hour, minute int) time.Time {
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, TaipeiZone).UTC()
}
