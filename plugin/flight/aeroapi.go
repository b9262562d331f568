// Package flight correlates a flight identifier and an approximate local date
// with the single best-matching record of an external flight-data provider,
// and maps it into a provider-agnostic status payload.
package flight

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Config holds the flight-data provider configuration.
type Config struct {
	// BaseURL is the provider API root.
	BaseURL string
	// APIKey authenticates requests (x-apikey header).
	APIKey string
	// Timeout bounds one lookup; this sits on a human-interactive path.
	Timeout time.Duration
}

// DefaultConfig returns the default provider configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://aeroapi.flightaware.com/aeroapi",
		Timeout: 8 * time.Second,
	}
}

// RecordAirport is one endpoint of a provider record.
type RecordAirport struct {
	Code     string `json:"code"`
	CodeIATA string `json:"code_iata"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Timezone string `json:"timezone"`
}

// Record is one flight instance as returned by the provider. Timestamp
// triplets follow the provider's out/on/in convention: gate departure,
// wheels down, gate arrival.
type Record struct {
	Ident        string `json:"ident"`
	IdentIATA    string `json:"ident_iata"`
	FlightNumber string `json:"flight_number"`
	Status       string `json:"status"`

	Origin      RecordAirport `json:"origin"`
	Destination RecordAirport `json:"destination"`

	ScheduledOut *time.Time `json:"scheduled_out"`
	EstimatedOut *time.Time `json:"estimated_out"`
	ActualOut    *time.Time `json:"actual_out"`

	ScheduledOn *time.Time `json:"scheduled_on"`
	EstimatedOn *time.Time `json:"estimated_on"`
	ActualOn    *time.Time `json:"actual_on"`

	ScheduledIn *time.Time `json:"scheduled_in"`
	EstimatedIn *time.Time `json:"estimated_in"`
	ActualIn    *time.Time `json:"actual_in"`

	FiledEte     int `json:"filed_ete"`     // seconds
	ArrivalDelay int `json:"arrival_delay"` // seconds

	GateOrigin          string `json:"gate_origin"`
	TerminalOrigin      string `json:"terminal_origin"`
	GateDestination     string `json:"gate_destination"`
	TerminalDestination string `json:"terminal_destination"`
}

type flightsResponse struct {
	Flights []Record `json:"flights"`
}

// Provider abstracts the flight-data service for the correlator.
type Provider interface {
	// SearchFlights returns every record for ident within [start, end].
	// An unknown identifier yields an empty slice, not an error.
	SearchFlights(ctx context.Context, ident string, start, end time.Time) ([]Record, error)
	// Name tags payloads with the provider identity.
	Name() string
}

// AeroAPIClient is the production Provider implementation.
type AeroAPIClient struct {
	client *resty.Client
}

// NewAeroAPIClient creates a provider client from config.
func NewAeroAPIClient(cfg *Config) *AeroAPIClient {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("x-apikey", cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &AeroAPIClient{client: c}
}

// Name implements Provider.
func (c *AeroAPIClient) Name() string {
	return "aeroapi"
}

// SearchFlights implements Provider. A 404 from the provider means the
// identifier is unknown — an expected outcome, reported as an empty result.
// Any other non-2xx status is a transport-level failure and propagates.
func (c *AeroAPIClient) SearchFlights(ctx context.Context, ident string, start, end time.Time) ([]Record, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("ident", ident).
		SetQueryParam("start", start.UTC().Format(time.RFC3339)).
		SetQueryParam("end", end.UTC().Format(time.RFC3339)).
		Get("/flights/{ident}")
	if err != nil {
		return nil, errors.Wrap(err, "flight provider request failed")
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode() != http.StatusOK:
		return nil, errors.Errorf("flight provider returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var body flightsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, errors.Wrap(err, "failed to decode flight provider response")
	}

	return body.Flights, nil
}

// TrackingURL builds the public tracking page for a record.
func TrackingURL(ident string) string {
	return fmt.Sprintf("https://www.flightaware.com/live/flight/%s", ident)
}
