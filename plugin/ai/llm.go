package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// ToolDescriptor describes a callable tool offered to the LLM.
// Parameters is a JSON Schema document.
type ToolDescriptor struct {
	Name        string
	Description string
	Parameters  string
}

// FunctionCall is the function invocation inside a tool call.
type FunctionCall struct {
	Name      string
	Arguments string
}

// ToolCall is a single tool invocation requested by the LLM.
type ToolCall struct {
	ID       string
	Function FunctionCall
}

// ChatResponse is the LLM's answer to a tool-enabled chat turn. When
// ToolCalls is empty, Content is the final answer.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// LLMService is the LLM service interface.
type LLMService interface {
	// Chat performs synchronous chat.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatWithTools performs a chat turn with native tool calling.
	ChatWithTools(ctx context.Context, messages []Message, tools []ToolDescriptor) (*ChatResponse, error)
}

type llmService struct {
	client *openai.Client
	cfg    *LLMConfig
}

// NewLLMService creates a new LLMService over an OpenAI-compatible endpoint.
func NewLLMService(cfg *LLMConfig) (LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("LLM API key is required")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &llmService{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

func (s *llmService) Chat(ctx context.Context, messages []Message) (string, error) {
	resp, err := s.complete(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (s *llmService) ChatWithTools(ctx context.Context, messages []Message, tools []ToolDescriptor) (*ChatResponse, error) {
	return s.complete(ctx, messages, tools)
}

func (s *llmService) complete(ctx context.Context, messages []Message, tools []ToolDescriptor) (*ChatResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    convertMessages(messages),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}
	for _, tool := range tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  json.RawMessage(tool.Parameters),
			},
		})
	}

	var result *ChatResponse
	err := s.doWithRetry(ctx, func() error {
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty chat response")
		}

		choice := resp.Choices[0].Message
		result = &ChatResponse{Content: choice.Content}
		for _, tc := range choice.ToolCalls {
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID: tc.ID,
				Function: FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to complete chat")
	}

	return result, nil
}

// doWithRetry executes a function with exponential backoff retry.
func (s *llmService) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < s.cfg.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("LLM request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return out
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}
