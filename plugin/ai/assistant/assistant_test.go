package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stan0424/calendar-app/plugin/ai"
)

type mockLLM struct {
	resp *ai.ChatResponse
	err  error

	gotMessages []ai.Message
	gotTools    []ai.ToolDescriptor
}

func (m *mockLLM) Chat(_ context.Context, _ []ai.Message) (string, error) {
	return m.resp.Content, m.err
}

func (m *mockLLM) ChatWithTools(_ context.Context, messages []ai.Message, tools []ai.ToolDescriptor) (*ai.ChatResponse, error) {
	m.gotMessages = messages
	m.gotTools = tools
	return m.resp, m.err
}

func toolCall(name, args string) ai.ToolCall {
	return ai.ToolCall{
		ID:       "call_1",
		Function: ai.FunctionCall{Name: name, Arguments: args},
	}
}

var testNow = time.Date(2024, 8, 15, 2, 0, 0, 0, time.UTC)

func TestChatParsesCreateAction(t *testing.T) {
	llm := &mockLLM{resp: &ai.ChatResponse{
		Content: "已建立行程",
		ToolCalls: []ai.ToolCall{toolCall("create_event",
			`{"title":"桃機接機","location":"第二航廈","startTime":"2024-08-15T14:00","endTime":"2024-08-15T15:00"}`)},
	}}

	result, err := New(llm).Chat(context.Background(), "幫我排明天接機", nil, testNow)

	require.NoError(t, err)
	assert.Equal(t, "已建立行程", result.Reply)
	require.Len(t, result.Actions, 1)
	action := result.Actions[0]
	assert.Equal(t, ActionCreate, action.Kind)
	require.NotNil(t, action.Create)
	assert.Equal(t, "桃機接機", action.Create.Title)
	assert.Equal(t, "2024-08-15T14:00", action.Create.StartTime)
}

func TestChatParsesUpdateAndDelete(t *testing.T) {
	llm := &mockLLM{resp: &ai.ChatResponse{
		ToolCalls: []ai.ToolCall{
			toolCall("update_event", `{"uid":"ev1","startTime":"2024-08-15T16:00"}`),
			toolCall("delete_event", `{"uid":"ev2"}`),
		},
	}}

	result, err := New(llm).Chat(context.Background(), "改時間，另一筆取消", nil, testNow)

	require.NoError(t, err)
	require.Len(t, result.Actions, 2)

	update := result.Actions[0]
	assert.Equal(t, ActionUpdate, update.Kind)
	assert.Equal(t, "ev1", update.UID)
	require.NotNil(t, update.Update.StartTime)
	assert.Equal(t, "2024-08-15T16:00", *update.Update.StartTime)
	assert.Nil(t, update.Update.Title)

	del := result.Actions[1]
	assert.Equal(t, ActionDelete, del.Kind)
	assert.Equal(t, "ev2", del.UID)
}

func TestChatSystemPromptCarriesLocalDate(t *testing.T) {
	llm := &mockLLM{resp: &ai.ChatResponse{Content: "好的"}}

	_, err := New(llm).Chat(context.Background(), "今天有什麼行程？", nil, testNow)

	require.NoError(t, err)
	require.NotEmpty(t, llm.gotMessages)
	assert.Equal(t, "system", llm.gotMessages[0].Role)
	// 02:00Z on the 15th is already the local 15th in UTC+8.
	assert.Contains(t, llm.gotMessages[0].Content, "2024-08-15")
	assert.Len(t, llm.gotTools, 3)
}

func TestChatPlainAnswerHasNoActions(t *testing.T) {
	llm := &mockLLM{resp: &ai.ChatResponse{Content: "明天下午兩點在第二航廈"}}

	result, err := New(llm).Chat(context.Background(), "接機幾點？", nil, testNow)

	require.NoError(t, err)
	assert.Empty(t, result.Actions)
	assert.Equal(t, "明天下午兩點在第二航廈", result.Reply)
}

func TestChatRejectsMalformedToolCall(t *testing.T) {
	for _, tc := range []ai.ToolCall{
		toolCall("create_event", `{"description":"no title"}`),
		toolCall("update_event", `{}`),
		toolCall("delete_event", `{"uid":""}`),
		toolCall("drop_table", `{}`),
	} {
		llm := &mockLLM{resp: &ai.ChatResponse{ToolCalls: []ai.ToolCall{tc}}}
		_, err := New(llm).Chat(context.Background(), "x", nil, testNow)
		assert.Error(t, err, tc.Function.Name)
	}
}

func TestChatPropagatesLLMFailure(t *testing.T) {
	llm := &mockLLM{err: errors.New("rate limited")}

	_, err := New(llm).Chat(context.Background(), "x", nil, testNow)

	require.Error(t, err)
}
