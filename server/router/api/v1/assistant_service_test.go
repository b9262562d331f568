package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stan0424/calendar-app/plugin/ai"
	"github.com/stan0424/calendar-app/plugin/ai/assistant"
)

type scriptedLLM struct {
	resp *ai.ChatResponse
	err  error
}

func (m *scriptedLLM) Chat(_ context.Context, _ []ai.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.resp.Content, nil
}

func (m *scriptedLLM) ChatWithTools(_ context.Context, _ []ai.Message, _ []ai.ToolDescriptor) (*ai.ChatResponse, error) {
	return m.resp, m.err
}

func createToolCall(args string) ai.ToolCall {
	return ai.ToolCall{
		ID:       "call_1",
		Function: ai.FunctionCall{Name: "create_event", Arguments: args},
	}
}

func TestAssistantChatCreatesEvent(t *testing.T) {
	svc, e := newTestService(t)
	svc.Assistant = assistant.New(&scriptedLLM{resp: &ai.ChatResponse{
		Content: "已安排",
		ToolCalls: []ai.ToolCall{createToolCall(
			`{"title":"桃機接機","startTime":"2024-08-15T14:00","description":"上車地址：第二航廈"}`)},
	}})

	rec := doJSON(e, http.MethodPost, "/api/v1/assistant/chat", `{"message":"8/15 下午兩點接機"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "已安排", resp.Reply)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "桃機接機", resp.Events[0].Title)
	assert.Equal(t, "2024-08-15T06:00:00Z", resp.Events[0].StartTime.Format("2006-01-02T15:04:05Z"))

	// The event really landed in the store.
	list := doJSON(e, http.MethodGet, "/api/v1/events", "")
	var stored []*EventPayload
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &stored))
	require.Len(t, stored, 1)
}

func TestAssistantChatUpdateAndDelete(t *testing.T) {
	svc, e := newTestService(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/events",
		`{"title":"接機","startTime":"2024-08-15T14:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeEvent(t, rec)

	svc.Assistant = assistant.New(&scriptedLLM{resp: &ai.ChatResponse{
		ToolCalls: []ai.ToolCall{{
			ID:       "call_1",
			Function: ai.FunctionCall{Name: "update_event", Arguments: `{"uid":"` + created.UID + `","startTime":"2024-08-15T16:00"}`},
		}},
	}})

	rec = doJSON(e, http.MethodPost, "/api/v1/assistant/chat", `{"message":"改到四點"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "2024-08-15T08:00:00Z", resp.Events[0].StartTime.Format("2006-01-02T15:04:05Z"))

	svc.Assistant = assistant.New(&scriptedLLM{resp: &ai.ChatResponse{
		ToolCalls: []ai.ToolCall{{
			ID:       "call_2",
			Function: ai.FunctionCall{Name: "delete_event", Arguments: `{"uid":"` + created.UID + `"}`},
		}},
	}})

	rec = doJSON(e, http.MethodPost, "/api/v1/assistant/chat", `{"message":"取消"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/events/"+created.UID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssistantChatNotConfigured(t *testing.T) {
	_, e := newTestService(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/assistant/chat", `{"message":"hi"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAssistantChatRequiresMessage(t *testing.T) {
	svc, e := newTestService(t)
	svc.Assistant = assistant.New(&scriptedLLM{resp: &ai.ChatResponse{}})

	rec := doJSON(e, http.MethodPost, "/api/v1/assistant/chat", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
