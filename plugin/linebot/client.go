package linebot

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Config holds the Messaging API client configuration.
type Config struct {
	// BaseURL is the Messaging API root.
	BaseURL string
	// AccessToken is the channel access token (Bearer auth).
	AccessToken string
	// Timeout bounds one reply call.
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://api.line.me",
		Timeout: 8 * time.Second,
	}
}

// Client sends replies through the Messaging API.
type Client struct {
	client *resty.Client
}

// NewClient creates a Messaging API client from config.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{client: c}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

// ReplyText answers a webhook event with plain text. Reply tokens are
// single-use and expire quickly, so failures here are logged by callers
// rather than retried.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&replyRequest{
			ReplyToken: replyToken,
			Messages:   []textMessage{{Type: "text", Text: text}},
		}).
		Post("/v2/bot/message/reply")
	if err != nil {
		return errors.Wrap(err, "reply request failed")
	}

	if resp.StatusCode() != http.StatusOK {
		return errors.Errorf("reply returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
