package v1

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stan0424/calendar-app/plugin/ai"
	"github.com/stan0424/calendar-app/plugin/ai/assistant"
	"github.com/stan0424/calendar-app/plugin/linebot"
)

const lineSecret = "channel-secret"

func lineSign(body string) string {
	mac := hmac.New(sha256.New, []byte(lineSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func lineTextBody(text string) string {
	payload := map[string]any{
		"destination": "U000",
		"events": []map[string]any{{
			"type":       "message",
			"replyToken": "rt1",
			"source":     map[string]string{"type": "user", "userId": "U123"},
			"message":    map[string]string{"id": "m1", "type": "text", "text": text},
		}},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func postWebhook(e *echo.Echo, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/line", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("X-Line-Signature", signature)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLineWebhookRejectsBadSignature(t *testing.T) {
	svc, e := newTestService(t)
	svc.Profile.LineChannelSecret = lineSecret

	rec := postWebhook(e, lineTextBody("接機"), "bogus")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLineWebhookNotConfigured(t *testing.T) {
	_, e := newTestService(t)

	rec := postWebhook(e, lineTextBody("接機"), "any")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLineWebhookCreatesEventAndReplies(t *testing.T) {
	svc, e := newTestService(t)
	svc.Profile.LineChannelSecret = lineSecret
	svc.Assistant = assistant.New(&scriptedLLM{resp: &ai.ChatResponse{
		Content: "已建立行程",
		ToolCalls: []ai.ToolCall{createToolCall(
			`{"title":"桃機接機","startTime":"2024-08-15T14:00"}`)},
	}})

	var gotReply struct {
		ReplyToken string `json:"replyToken"`
		Messages   []struct {
			Text string `json:"text"`
		} `json:"messages"`
	}
	replyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReply))
		w.WriteHeader(http.StatusOK)
	}))
	defer replyServer.Close()
	svc.LineClient = linebot.NewClient(&linebot.Config{BaseURL: replyServer.URL, AccessToken: "tok"})

	body := lineTextBody("8/15 下午兩點桃機接機")
	rec := postWebhook(e, body, lineSign(body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rt1", gotReply.ReplyToken)
	require.Len(t, gotReply.Messages, 1)
	assert.Equal(t, "已建立行程", gotReply.Messages[0].Text)

	list := doJSON(e, http.MethodGet, "/api/v1/events", "")
	var stored []*EventPayload
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "桃機接機", stored[0].Title)
}

func TestLineWebhookSummaryReplyWhenNoProse(t *testing.T) {
	svc, e := newTestService(t)
	svc.Profile.LineChannelSecret = lineSecret
	svc.Assistant = assistant.New(&scriptedLLM{resp: &ai.ChatResponse{
		ToolCalls: []ai.ToolCall{createToolCall(
			`{"title":"桃機接機","startTime":"2024-08-15T14:00"}`)},
	}})

	var replyText string
	replyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Text string `json:"text"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if len(req.Messages) > 0 {
			replyText = req.Messages[0].Text
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer replyServer.Close()
	svc.LineClient = linebot.NewClient(&linebot.Config{BaseURL: replyServer.URL, AccessToken: "tok"})

	body := lineTextBody("接機")
	rec := postWebhook(e, body, lineSign(body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, replyText, "桃機接機")
	// Local start time rendered for the rider.
	assert.Contains(t, replyText, "8/15 14:00")
}

func TestLineWebhookAssistantFailureStillAcks(t *testing.T) {
	svc, e := newTestService(t)
	svc.Profile.LineChannelSecret = lineSecret
	svc.Assistant = assistant.New(&scriptedLLM{err: errors.New("llm down")})

	body := lineTextBody("接機")
	rec := postWebhook(e, body, lineSign(body))

	// LINE retries non-2xx; processing failures must not bounce the webhook.
	assert.Equal(t, http.StatusOK, rec.Code)
}
