// Package assistant turns free-form chat (typically Traditional Chinese
// dispatch messages) into calendar event actions through LLM tool calling.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/stan0424/calendar-app/plugin/ai"
	"github.com/stan0424/calendar-app/plugin/normalizer"
)

// ActionKind enumerates the event mutations the assistant can request.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
	ActionDelete ActionKind = "delete"
)

// UpdateArgs carries a partial event update. Nil fields are left untouched.
type UpdateArgs struct {
	UID         string  `json:"uid"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	AllDay      *bool   `json:"allDay,omitempty"`
}

// Action is a single event mutation extracted from a chat turn.
type Action struct {
	Kind   ActionKind
	UID    string
	Create *normalizer.EventArgs
	Update *UpdateArgs
}

// Result is the outcome of a chat turn: zero or more actions plus the
// assistant's textual reply.
type Result struct {
	Reply   string
	Actions []Action
}

// Assistant extracts event actions from chat messages.
type Assistant struct {
	llm ai.LLMService
}

// New creates an assistant over the given LLM service.
func New(llm ai.LLMService) *Assistant {
	return &Assistant{llm: llm}
}

const systemPromptTemplate = `你是機場接送行程的排程助理。今天的日期是 %s（UTC+8）。
使用者會貼上派車訊息或口語描述，請從中擷取行程並呼叫工具建立、修改或刪除行事曆事件。

規則:
- 時間一律使用 UTC+8 當地時間，格式 YYYY-MM-DDTHH:MM。
- 訊息裡的「行程日期」「行程時間」優先於其他時間描述。
- 地址、航班編號、乘客電話等欄位照原文保留，不要翻譯或改寫。
- 沒有明確時間的整天行程將 allDay 設為 true。
- 只在使用者明確要求異動行程時呼叫工具；單純詢問就直接回答。`

var eventTools = []ai.ToolDescriptor{
	{
		Name:        "create_event",
		Description: "Create a calendar event from the extracted trip details.",
		Parameters: `{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Short event title"},
				"description": {"type": "string", "description": "Full trip details, one labeled field per line"},
				"location": {"type": "string", "description": "Pickup address"},
				"startTime": {"type": "string", "description": "Local start time, YYYY-MM-DDTHH:MM"},
				"endTime": {"type": "string", "description": "Local end time, YYYY-MM-DDTHH:MM"},
				"allDay": {"type": "boolean"}
			},
			"required": ["title"]
		}`,
	},
	{
		Name:        "update_event",
		Description: "Update fields of an existing event. Only include fields that change.",
		Parameters: `{
			"type": "object",
			"properties": {
				"uid": {"type": "string", "description": "Event identifier"},
				"title": {"type": "string"},
				"description": {"type": "string"},
				"location": {"type": "string"},
				"startTime": {"type": "string", "description": "Local start time, YYYY-MM-DDTHH:MM"},
				"endTime": {"type": "string", "description": "Local end time, YYYY-MM-DDTHH:MM"},
				"allDay": {"type": "boolean"}
			},
			"required": ["uid"]
		}`,
	},
	{
		Name:        "delete_event",
		Description: "Delete an existing event.",
		Parameters: `{
			"type": "object",
			"properties": {
				"uid": {"type": "string", "description": "Event identifier"}
			},
			"required": ["uid"]
		}`,
	},
}

// Chat runs one tool-enabled turn. now anchors relative dates like 明天.
func (a *Assistant) Chat(ctx context.Context, input string, history []ai.Message, now time.Time) (*Result, error) {
	year, month, day := normalizer.LocalDate(now)
	messages := []ai.Message{
		ai.SystemPrompt(fmt.Sprintf(systemPromptTemplate, fmt.Sprintf("%04d-%02d-%02d", year, int(month), day))),
	}
	messages = append(messages, history...)
	messages = append(messages, ai.UserMessage(input))

	resp, err := a.llm.ChatWithTools(ctx, messages, eventTools)
	if err != nil {
		return nil, errors.Wrap(err, "assistant chat failed")
	}

	result := &Result{Reply: resp.Content}
	for _, tc := range resp.ToolCalls {
		action, err := parseAction(tc)
		if err != nil {
			return nil, err
		}
		result.Actions = append(result.Actions, *action)
	}
	return result, nil
}

func parseAction(tc ai.ToolCall) (*Action, error) {
	switch tc.Function.Name {
	case "create_event":
		args := &normalizer.EventArgs{}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), args); err != nil {
			return nil, errors.Wrap(err, "malformed create_event arguments")
		}
		if args.Title == "" {
			return nil, errors.New("create_event requires a title")
		}
		return &Action{Kind: ActionCreate, Create: args}, nil

	case "update_event":
		args := &UpdateArgs{}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), args); err != nil {
			return nil, errors.Wrap(err, "malformed update_event arguments")
		}
		if args.UID == "" {
			return nil, errors.New("update_event requires a uid")
		}
		return &Action{Kind: ActionUpdate, UID: args.UID, Update: args}, nil

	case "delete_event":
		var args struct {
			UID string `json:"uid"`
		}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, errors.Wrap(err, "malformed delete_event arguments")
		}
		if args.UID == "" {
			return nil, errors.New("delete_event requires a uid")
		}
		return &Action{Kind: ActionDelete, UID: args.UID}, nil
	}
	return nil, errors.Errorf("unknown tool: %s", tc.Function.Name)
}
