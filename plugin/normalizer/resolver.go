package normalizer

import "time"

// EventArgs are the raw tool-call arguments delivered by an AI provider for
// an event create or update. String fields absent from an update payload stay
// empty and must be left untouched by the caller.
type EventArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	AllDay      bool   `json:"allDay"`
}

// Resolve produces the final (start, end, allDay) triple for an event
// mutation. Precedence is two-stage:
//
//  1. A date+time embedded in the description overrides the AI-declared ISO
//     fields. The transport document is the primary source of truth; models
//     sometimes miscompute relative dates.
//  2. An explicit all-day request from the original args wins the final
//     midnight snap regardless of how the override adjusted things. The
//     override itself always implies a timed event.
//
// Both the interactive assistant handler and the webhook handler call this
// same function on the same arguments, which is what keeps the two
// environments bit-for-bit consistent.
func Resolve(args EventArgs, now time.Time) EventTime {
	resolved := ResolveTriple(args.StartTime, args.EndTime, args.AllDay, now)

	if override := ExtractEmbeddedDate(args.Description); override != nil {
		resolved = EventTime{
			Start:  *override,
			End:    override.Add(time.Hour),
			AllDay: false,
		}
	}

	if args.AllDay {
		start := StartOfLocalDay(resolved.Start)
		resolved = EventTime{
			Start:  start,
			End:    start.Add(24 * time.Hour),
			AllDay: true,
		}
	}

	return resolved
}
