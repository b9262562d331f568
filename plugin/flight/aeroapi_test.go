package flight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFlightsParsesRecords(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-apikey")
		assert.NotEmpty(t, r.URL.Query().Get("start"))
		assert.NotEmpty(t, r.URL.Query().Get("end"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"flights": [{
				"ident": "CAL123",
				"ident_iata": "CI123",
				"flight_number": "123",
				"status": "Arrived / Gate Arrival",
				"origin": {"code": "RJTT", "code_iata": "HND", "city": "Tokyo", "timezone": "Asia/Tokyo"},
				"destination": {"code": "RCTP", "code_iata": "TPE", "city": "Taipei", "timezone": "Asia/Taipei"},
				"scheduled_out": "2024-08-15T10:30:00Z",
				"scheduled_in": "2024-08-15T14:00:00Z",
				"actual_in": "2024-08-15T14:05:00Z",
				"filed_ete": 12600,
				"arrival_delay": 300,
				"terminal_destination": "2"
			}]
		}`))
	}))
	defer server.Close()

	client := NewAeroAPIClient(&Config{BaseURL: server.URL, APIKey: "test-key"})
	start := time.Date(2024, 8, 14, 16, 0, 0, 0, time.UTC)

	records, err := client.SearchFlights(context.Background(), "CI123", start, start.Add(36*time.Hour))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "/flights/CI123", gotPath)
	assert.Equal(t, "test-key", gotKey)

	rec := records[0]
	assert.Equal(t, "CAL123", rec.Ident)
	assert.Equal(t, "TPE", rec.Destination.CodeIATA)
	assert.Equal(t, 12600, rec.FiledEte)
	require.NotNil(t, rec.ActualIn)
	assert.Equal(t, "2024-08-15T14:05:00Z", rec.ActualIn.Format(time.RFC3339))
}

func TestSearchFlightsNotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"title":"Unknown ident"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewAeroAPIClient(&Config{BaseURL: server.URL})
	records, err := client.SearchFlights(context.Background(), "ZZ999", time.Now(), time.Now())

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchFlightsServerErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewAeroAPIClient(&Config{BaseURL: server.URL})
	_, err := client.SearchFlights(context.Background(), "CI123", time.Now(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
