package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stan0424/calendar-app/plugin/normalizer"
	apierrors "github.com/stan0424/calendar-app/server/internal/errors"
	"github.com/stan0424/calendar-app/server/internal/observability"
)

// GetFlightStatus handles GET /api/v1/flight/status?flight=CI123&date=2024-08-15.
// The date anchors the lookup to a local calendar day; it defaults to today.
func (s *APIV1Service) GetFlightStatus(c echo.Context) error {
	started := time.Now()
	failed := false
	defer func() {
		observability.GlobalMetrics().RecordRequest("flight_status", time.Since(started), failed)
	}()

	if s.Correlator == nil {
		failed = true
		return writeError(c, apierrors.ProviderUnavailable("flight provider is not configured", nil))
	}

	ident := normalizer.ExtractFlightNumber(c.QueryParam("flight"), "")
	if ident == "" {
		failed = true
		return writeError(c, apierrors.InvalidArgument("unrecognized flight identifier"))
	}

	anchor := s.now()
	if v := c.QueryParam("date"); v != "" {
		t := normalizer.ParseLocal(v)
		if t == nil {
			failed = true
			return writeError(c, apierrors.InvalidArgument("unparseable date"))
		}
		anchor = *t
	}

	payload, err := s.Correlator.Lookup(c.Request().Context(), ident, anchor)
	if err != nil {
		failed = true
		return writeError(c, apierrors.ProviderUnavailable("flight lookup failed", err))
	}
	if payload == nil {
		// No matching arrival on that local date; expected, not an error.
		return writeError(c, apierrors.NotFound("no matching flight found"))
	}

	return c.JSON(http.StatusOK, payload)
}
