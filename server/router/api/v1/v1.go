// Package v1 implements the REST API: event CRUD, flight status lookup, the
// scheduling assistant, and the LINE webhook.
package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/stan0424/calendar-app/internal/profile"
	"github.com/stan0424/calendar-app/plugin/ai"
	"github.com/stan0424/calendar-app/plugin/ai/assistant"
	"github.com/stan0424/calendar-app/plugin/flight"
	"github.com/stan0424/calendar-app/plugin/linebot"
	apierrors "github.com/stan0424/calendar-app/server/internal/errors"
	"github.com/stan0424/calendar-app/server/internal/observability"
	"github.com/stan0424/calendar-app/server/middleware"
	"github.com/stan0424/calendar-app/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	Assistant  *assistant.Assistant
	Correlator *flight.Correlator
	LineClient *linebot.Client

	flightLimiter *middleware.RateLimiter

	// nowFn is swappable so handler tests run against a fixed clock.
	nowFn func() time.Time
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store) (*APIV1Service, error) {
	s := &APIV1Service{
		Profile: profile,
		Store:   store,
		// The flight provider bills per call; one lookup per second with a
		// small burst is plenty for an interactive calendar.
		flightLimiter: middleware.NewRateLimiter(rate.Every(time.Second), 5),
		nowFn:         time.Now,
	}

	if profile.IsAIEnabled() {
		aiConfig := ai.NewConfigFromProfile(profile)
		if err := aiConfig.Validate(); err != nil {
			return nil, err
		}
		llm, err := ai.NewLLMService(&aiConfig.LLM)
		if err != nil {
			return nil, err
		}
		s.Assistant = assistant.New(llm)
	}

	if profile.IsFlightEnabled() {
		client := flight.NewAeroAPIClient(&flight.Config{
			BaseURL: profile.AeroAPIBaseURL,
			APIKey:  profile.AeroAPIKey,
		})
		s.Correlator = flight.NewCorrelator(client)
	}

	if profile.LineChannelAccessToken != "" {
		s.LineClient = linebot.NewClient(&linebot.Config{
			AccessToken: profile.LineChannelAccessToken,
		})
	}

	return s, nil
}

// RegisterRoutes mounts every API route on the echo server.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.POST("/events", s.CreateEvent)
	g.GET("/events", s.ListEvents)
	g.GET("/events/:uid", s.GetEvent)
	g.PATCH("/events/:uid", s.UpdateEvent)
	g.DELETE("/events/:uid", s.DeleteEvent)

	g.GET("/flight/status", s.GetFlightStatus, s.flightLimiter.Middleware())

	g.POST("/assistant/chat", s.AssistantChat)

	g.GET("/system/metrics", s.GetSystemMetrics)

	e.POST("/webhooks/line", s.HandleLineWebhook)
}

// GetSystemMetrics reports the in-process request counters.
func (s *APIV1Service) GetSystemMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, observability.GlobalMetrics().Snapshot())
}

func (s *APIV1Service) now() time.Time {
	return s.nowFn()
}

// writeError maps the error taxonomy to HTTP statuses in one place.
func writeError(c echo.Context, err error) error {
	code := apierrors.GetCodeFromError(err, apierrors.ErrCodeInternal)

	status := http.StatusInternalServerError
	switch code {
	case apierrors.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case apierrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case apierrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apierrors.ErrCodeRateLimitExceeded:
		status = http.StatusTooManyRequests
	case apierrors.ErrCodeProviderUnavailable:
		status = http.StatusBadGateway
	case apierrors.ErrCodeLLMUnavailable:
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]string{
		"code":    string(code),
		"message": err.Error(),
	})
}
