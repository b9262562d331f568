package v1

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stan0424/calendar-app/plugin/linebot"
	apierrors "github.com/stan0424/calendar-app/server/internal/errors"
	"github.com/stan0424/calendar-app/server/internal/observability"
)

// HandleLineWebhook handles POST /webhooks/line. LINE retries on non-2xx, so
// per-message processing failures are logged and answered 200; only a bad
// signature or an unconfigured channel is rejected.
func (s *APIV1Service) HandleLineWebhook(c echo.Context) error {
	started := time.Now()
	failed := false
	defer func() {
		observability.GlobalMetrics().RecordRequest("line_webhook", time.Since(started), failed)
	}()

	if s.Profile.LineChannelSecret == "" {
		failed = true
		return writeError(c, apierrors.NotFound("LINE webhook is not configured"))
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		failed = true
		return writeError(c, apierrors.InvalidArgument("unreadable request body"))
	}

	signature := c.Request().Header.Get("X-Line-Signature")
	if !linebot.ValidateSignature(s.Profile.LineChannelSecret, body, signature) {
		failed = true
		return writeError(c, apierrors.Unauthorized("invalid webhook signature"))
	}

	webhook, err := linebot.ParseWebhook(body)
	if err != nil {
		failed = true
		return writeError(c, apierrors.InvalidArgument("malformed webhook body"))
	}

	reqCtx := observability.NewRequestContextWithID(slog.Default(),
		c.Response().Header().Get(echo.HeaderXRequestID), "line_webhook", 0)

	ctx := c.Request().Context()
	for _, event := range webhook.TextEvents() {
		if s.Assistant == nil {
			continue
		}

		result, err := s.Assistant.Chat(ctx, event.Message.Text, nil, s.now())
		if err != nil {
			reqCtx.Error("assistant failed on webhook message", err,
				slog.String("line_user", event.Source.UserID))
			continue
		}

		touched, err := s.applyActions(ctx, result.Actions)
		if err != nil {
			reqCtx.Error("failed to apply webhook actions", err,
				slog.String("line_user", event.Source.UserID))
			continue
		}

		reply := result.Reply
		if reply == "" {
			reply = summarizeEvents(touched)
		}
		if s.LineClient != nil && event.ReplyToken != "" {
			if err := s.LineClient.ReplyText(ctx, event.ReplyToken, reply); err != nil {
				reqCtx.Warn("failed to send LINE reply",
					slog.String("error", err.Error()))
			}
		}
	}

	return c.NoContent(http.StatusOK)
}
