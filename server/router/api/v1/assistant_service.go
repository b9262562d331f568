package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stan0424/calendar-app/plugin/ai/assistant"
	"github.com/stan0424/calendar-app/plugin/normalizer"
	apierrors "github.com/stan0424/calendar-app/server/internal/errors"
	"github.com/stan0424/calendar-app/server/internal/observability"
	"github.com/stan0424/calendar-app/store"
)

// ChatRequest is one assistant turn.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply plus every event the turn touched.
type ChatResponse struct {
	Reply  string          `json:"reply"`
	Events []*EventPayload `json:"events,omitempty"`
}

// AssistantChat handles POST /api/v1/assistant/chat.
func (s *APIV1Service) AssistantChat(c echo.Context) error {
	started := time.Now()
	failed := false
	defer func() {
		observability.GlobalMetrics().RecordRequest("assistant_chat", time.Since(started), failed)
	}()

	if s.Assistant == nil {
		failed = true
		return writeError(c, apierrors.LLMUnavailable("assistant is not configured"))
	}

	req := &ChatRequest{}
	if err := c.Bind(req); err != nil || req.Message == "" {
		failed = true
		return writeError(c, apierrors.InvalidArgument("message is required"))
	}

	ctx := c.Request().Context()
	reqCtx := observability.NewRequestContextWithID(slog.Default(),
		c.Response().Header().Get(echo.HeaderXRequestID), "assistant_chat", 0)

	result, err := s.Assistant.Chat(ctx, req.Message, nil, s.now())
	if err != nil {
		failed = true
		reqCtx.Error("assistant chat failed", err)
		return writeError(c, apierrors.LLMUnavailable("assistant chat failed"))
	}

	events, err := s.applyActions(ctx, result.Actions)
	if err != nil {
		failed = true
		reqCtx.Error("failed to apply assistant actions", err)
		return writeError(c, err)
	}

	reqCtx.Info("assistant turn complete",
		slog.Int("actions", len(result.Actions)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
	)

	resp := &ChatResponse{Reply: result.Reply}
	for _, event := range events {
		resp.Events = append(resp.Events, s.convertEvent(event))
	}
	return c.JSON(http.StatusOK, resp)
}

// applyActions executes the extracted actions against the store and returns
// the affected events, in action order. Deleted events are omitted.
func (s *APIV1Service) applyActions(ctx context.Context, actions []assistant.Action) ([]*store.Event, error) {
	var touched []*store.Event
	for _, action := range actions {
		switch action.Kind {
		case assistant.ActionCreate:
			event, err := s.createEventFromArgs(ctx, *action.Create, "")
			if err != nil {
				return nil, err
			}
			touched = append(touched, event)

		case assistant.ActionUpdate:
			event, err := s.findEventByUID(ctx, action.UID)
			if err != nil {
				return nil, err
			}
			req := &UpdateEventRequest{
				Title:       action.Update.Title,
				Description: action.Update.Description,
				Location:    action.Update.Location,
				StartTime:   action.Update.StartTime,
				EndTime:     action.Update.EndTime,
				AllDay:      action.Update.AllDay,
			}
			if err := s.applyEventUpdate(ctx, event, req); err != nil {
				return nil, err
			}
			event, err = s.findEventByUID(ctx, action.UID)
			if err != nil {
				return nil, err
			}
			touched = append(touched, event)

		case assistant.ActionDelete:
			event, err := s.findEventByUID(ctx, action.UID)
			if err != nil {
				return nil, err
			}
			if err := s.Store.DeleteEvent(ctx, &store.DeleteEvent{ID: event.ID}); err != nil {
				return nil, apierrors.Internal("failed to delete event", err)
			}
		}
	}
	return touched, nil
}

// summarizeEvents renders a short Traditional-Chinese confirmation for bot
// replies when the model returned tool calls without any prose.
func summarizeEvents(events []*store.Event) string {
	if len(events) == 0 {
		return "已收到，行程沒有變動。"
	}
	parts := make([]string, 0, len(events))
	for _, event := range events {
		local := event.ParseStartTime().In(normalizer.TaipeiZone)
		layout := "1/2 15:04"
		if event.AllDay {
			layout = "1/2"
		}
		parts = append(parts, fmt.Sprintf("%s（%s）", event.Title, local.Format(layout)))
	}
	return "已更新行程：" + strings.Join(parts, "、")
}
