package linebot

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Event types and message types we act on. Everything else is ignored.
const (
	EventTypeMessage = "message"
	EventTypeFollow  = "follow"

	MessageTypeText = "text"
)

// Source identifies who sent a webhook event.
type Source struct {
	Type    string `json:"type"` // user, group, room
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

// EventMessage is the message attached to a message event.
type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Event is a single webhook event.
type Event struct {
	Type       string        `json:"type"`
	ReplyToken string        `json:"replyToken,omitempty"`
	Timestamp  int64         `json:"timestamp"` // milliseconds since epoch
	Source     Source        `json:"source"`
	Message    *EventMessage `json:"message,omitempty"`
}

// WebhookRequest is the body LINE posts to the webhook endpoint.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// ParseWebhook decodes a webhook request body.
func ParseWebhook(body []byte) (*WebhookRequest, error) {
	req := &WebhookRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, errors.Wrap(err, "malformed webhook body")
	}
	return req, nil
}

// TextEvents filters the request down to text message events.
func (r *WebhookRequest) TextEvents() []Event {
	var out []Event
	for _, ev := range r.Events {
		if ev.Type == EventTypeMessage && ev.Message != nil && ev.Message.Type == MessageTypeText {
			out = append(out, ev)
		}
	}
	return out
}
