package flight

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/stan0424/calendar-app/plugin/normalizer"
)

// searchWindow is the half-width of the provider query window around the
// event's local date.
const searchWindow = 18 * time.Hour

// Endpoint is one side of a status payload.
type Endpoint struct {
	Code     string `json:"code"`
	City     string `json:"city"`
	Terminal string `json:"terminal,omitempty"`
	Gate     string `json:"gate,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// StatusPayload is the provider-agnostic flight status handed to the UI.
// It is created fresh on every query and never cached.
type StatusPayload struct {
	Ident        string `json:"ident"`
	FlightNumber string `json:"flightNumber"`
	Status       string `json:"status"`

	Origin      Endpoint `json:"origin"`
	Destination Endpoint `json:"destination"`

	ScheduledDeparture *time.Time `json:"scheduledDeparture,omitempty"`
	EstimatedDeparture *time.Time `json:"estimatedDeparture,omitempty"`
	ScheduledArrival   *time.Time `json:"scheduledArrival,omitempty"`
	EstimatedArrival   *time.Time `json:"estimatedArrival,omitempty"`
	ActualArrival      *time.Time `json:"actualArrival,omitempty"`

	DurationMinutes     int `json:"durationMinutes,omitempty"`
	ArrivalDelayMinutes int `json:"arrivalDelayMinutes,omitempty"`

	TrackingURL string    `json:"trackingUrl"`
	Provider    string    `json:"provider"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Correlator selects the single provider record matching an event.
type Correlator struct {
	provider Provider
}

// NewCorrelator creates a correlator over the given provider.
func NewCorrelator(provider Provider) *Correlator {
	return &Correlator{provider: provider}
}

// Lookup finds the flight record for ident that arrives in Taiwan on the
// local calendar date of localDate, closest to localDate itself. It returns
// (nil, nil) when no record matches — absence of flight data is an expected
// outcome, distinct from a provider failure.
//
// The match is date-exact rather than time-distance based so that imprecise
// event times (a driver booked hours before wheels-down) still correlate.
func (c *Correlator) Lookup(ctx context.Context, ident string, localDate time.Time) (*StatusPayload, error) {
	records, err := c.provider.SearchFlights(ctx, ident, localDate.Add(-searchWindow), localDate.Add(searchWindow))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search flights for %s", ident)
	}

	var (
		best     *Record
		bestDist time.Duration
	)
	for i := range records {
		rec := &records[i]
		if !IsTaiwanArrival(destinationCode(rec)) {
			continue
		}
		arr := bestArrival(rec)
		if arr == nil || !normalizer.SameLocalDate(*arr, localDate) {
			continue
		}
		dist := absDuration(arr.Sub(localDate))
		// Strict comparison keeps the earlier record on ties (provider order).
		if best == nil || dist < bestDist {
			best, bestDist = rec, dist
		}
	}
	if best == nil {
		return nil, nil
	}

	return c.mapRecord(best), nil
}

// bestArrival resolves a record's best-known arrival instant: actual before
// estimated before scheduled, gate arrival ("in") before wheels down ("on").
func bestArrival(rec *Record) *time.Time {
	for _, t := range []*time.Time{
		rec.ActualIn, rec.ActualOn,
		rec.EstimatedIn, rec.EstimatedOn,
		rec.ScheduledIn, rec.ScheduledOn,
	} {
		if t != nil {
			return t
		}
	}
	return nil
}

// bestDeparture resolves a record's best-known gate departure instant.
func bestDeparture(rec *Record) *time.Time {
	for _, t := range []*time.Time{rec.ActualOut, rec.EstimatedOut, rec.ScheduledOut} {
		if t != nil {
			return t
		}
	}
	return nil
}

func (c *Correlator) mapRecord(rec *Record) *StatusPayload {
	payload := &StatusPayload{
		Ident:        rec.Ident,
		FlightNumber: rec.FlightNumber,
		Status:       rec.Status,
		Origin: Endpoint{
			Code:     airportCode(rec.Origin),
			City:     rec.Origin.City,
			Terminal: rec.TerminalOrigin,
			Gate:     rec.GateOrigin,
			Timezone: rec.Origin.Timezone,
		},
		Destination: Endpoint{
			Code:     airportCode(rec.Destination),
			City:     destinationCity(rec),
			Terminal: rec.TerminalDestination,
			Gate:     rec.GateDestination,
			Timezone: rec.Destination.Timezone,
		},
		ScheduledDeparture:  rec.ScheduledOut,
		EstimatedDeparture:  rec.EstimatedOut,
		ScheduledArrival:    firstOf(rec.ScheduledIn, rec.ScheduledOn),
		EstimatedArrival:    firstOf(rec.EstimatedIn, rec.EstimatedOn),
		ActualArrival:       firstOf(rec.ActualIn, rec.ActualOn),
		ArrivalDelayMinutes: rec.ArrivalDelay / 60,
		TrackingURL:         TrackingURL(rec.Ident),
		Provider:            c.provider.Name(),
		FetchedAt:           time.Now().UTC(),
	}

	if arr, dep := bestArrival(rec), bestDeparture(rec); arr != nil && dep != nil {
		payload.DurationMinutes = int(arr.Sub(*dep) / time.Minute)
	} else {
		payload.DurationMinutes = rec.FiledEte / 60
	}

	return payload
}

// destinationCity prefers the provider's city, falling back to the
// allow-list entry for display enrichment.
func destinationCity(rec *Record) string {
	if rec.Destination.City != "" {
		return rec.Destination.City
	}
	if a, ok := LookupAirport(destinationCode(rec)); ok {
		return a.City
	}
	return ""
}

// airportCode prefers the IATA spelling the UI expects.
func airportCode(a RecordAirport) string {
	if a.CodeIATA != "" {
		return a.CodeIATA
	}
	return a.Code
}

func destinationCode(rec *Record) string {
	if rec.Destination.CodeIATA != "" {
		return rec.Destination.CodeIATA
	}
	return rec.Destination.Code
}

func firstOf(candidates ...*time.Time) *time.Time {
	for _, t := range candidates {
		if t != nil {
			return t
		}
	}
	return nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
