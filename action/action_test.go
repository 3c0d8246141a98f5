package action

import (
	"context"
	"testing"
	"time"

	"github.com/dogansystem/agentflow/message"
	"github.com/stretchr/testify/require"
)

func TestRegistryDispatch(t *testing.T) {
	registry := NewRegistry()
	registry.Register(HandlerFunc("echo", func(ctx context.Context, config map[string]any, execContext map[string]any) Result {
		return Ok(map[string]any{"got": config["value"]})
	}))

	result := registry.Execute(context.Background(), "echo", map[string]any{"value": 42}, map[string]any{})
	require.True(t, result.Success)
	require.Equal(t, 42, result.Data["got"])
}

func TestRegistryUnknownActionType(t *testing.T) {
	registry := NewRegistry()
	result := registry.Execute(context.Background(), "no_such_thing", nil, nil)
	require.False(t, result.Success)
	require.Contains(t, result.Error, "unknown action type")
	require.Contains(t, result.Error, "no_such_thing")
}

func TestEvaluateConditionAction(t *testing.T) {
	handler := NewEvaluateConditionAction()
	execContext := map[string]any{"status": "active"}

	result := handler.Execute(context.Background(), map[string]any{
		"condition": map[string]any{"field": "status", "operator": "==", "value": "active"},
		"on_true":   "send_welcome",
		"on_false":  "wait_more",
	}, execContext)
	require.True(t, result.Success)
	require.Equal(t, "true", result.Data["decision"])
	require.Equal(t, "send_welcome", result.Data["next_step"])

	result = handler.Execute(context.Background(), map[string]any{
		"condition": map[string]any{"field": "status", "operator": "==", "value": "churned"},
		"on_true":   "send_welcome",
		"on_false":  "wait_more",
	}, execContext)
	require.True(t, result.Success)
	require.Equal(t, "false", result.Data["decision"])
	require.Equal(t, "wait_more", result.Data["next_step"])

	result = handler.Execute(context.Background(), map[string]any{}, execContext)
	require.False(t, result.Success)
	require.Contains(t, result.Error, "missing condition")
}

func TestScriptAction(t *testing.T) {
	handler := NewScriptAction()
	execContext := map[string]any{"score": 10, "name": "jo"}

	result := handler.Execute(context.Background(), map[string]any{"expression": "$.score * 2"}, execContext)
	require.True(t, result.Success)
	require.EqualValues(t, 20, result.Data["value"])

	result = handler.Execute(context.Background(), map[string]any{"expression": "'hi ' + $.name"}, execContext)
	require.True(t, result.Success)
	require.Equal(t, "hi jo", result.Data["value"])

	result = handler.Execute(context.Background(), map[string]any{"expression": "this is not javascript"}, execContext)
	require.False(t, result.Success)
	require.Contains(t, result.Error, "error executing script")

	result = handler.Execute(context.Background(), map[string]any{}, execContext)
	require.False(t, result.Success)
}

func TestWaitActionHonorsContext(t *testing.T) {
	handler := NewWaitAction()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	result := handler.Execute(ctx, map[string]any{"duration": 30}, map[string]any{})
	require.False(t, result.Success)
	require.Contains(t, result.Error, "wait interrupted")
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestWaitActionShortDuration(t *testing.T) {
	handler := NewWaitAction()
	result := handler.Execute(context.Background(), map[string]any{"duration": 0.01}, map[string]any{})
	require.True(t, result.Success)
	require.Equal(t, 0.01, result.Data["waited"])
}

type stubSender struct {
	sent []message.Message
	err  error
}

func (s *stubSender) Send(ctx context.Context, msg message.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestSendMessageAction(t *testing.T) {
	sender := &stubSender{}
	handler := NewSendMessageAction(sender)

	result := handler.Execute(context.Background(), map[string]any{
		"to":      "jo@example.com",
		"subject": "Welcome",
		"body":    "Hello Jo",
	}, map[string]any{})
	require.True(t, result.Success)
	require.Len(t, sender.sent, 1)
	require.Equal(t, "jo@example.com", sender.sent[0].To)
	require.Equal(t, "Welcome", sender.sent[0].Subject)
	require.False(t, sender.sent[0].Html)

	result = handler.Execute(context.Background(), map[string]any{"subject": "no recipient"}, map[string]any{})
	require.False(t, result.Success)
	require.Contains(t, result.Error, "missing to")
}

type stubReader struct {
	messages []message.Incoming
	err      error
}

func (r stubReader) Fetch(ctx context.Context) ([]message.Incoming, error) {
	return r.messages, r.err
}

func TestProcessIncomingMessagesAction(t *testing.T) {
	registry := NewRegistry()
	RegisterCompositeActions(registry, stubReader{messages: []message.Incoming{
		{From: "jo@example.com", Subject: "hello", Body: "interested in a demo"},
		{From: "sam@example.com", Subject: "pricing", Body: "send me a quote"},
	}})

	execContext := map[string]any{}
	result := registry.Execute(context.Background(), ACTION_PROCESS_INCOMING_MESSAGES, map[string]any{}, execContext)
	require.True(t, result.Success)
	require.Equal(t, 2, result.Data["processed"])

	messages := execContext["incoming_messages"].([]any)
	require.Len(t, messages, 2)
	first := execContext["message_data"].(map[string]any)
	require.Equal(t, "jo@example.com", first["from"])
	require.Equal(t, "hello", first["subject"])
}

func TestCreateRecordFromMessageAction(t *testing.T) {
	registry := NewRegistry()
	RegisterCompositeActions(registry, stubReader{})

	var createConfig map[string]any
	registry.Register(HandlerFunc(ACTION_REMOTE_CREATE, func(ctx context.Context, config map[string]any, execContext map[string]any) Result {
		createConfig = config
		return Ok(map[string]any{"data": map[string]any{"name": "LEAD-0001"}})
	}))

	execContext := map[string]any{
		"message_data": map[string]any{"from": "jo@example.com", "subject": "hello", "body": "hi"},
	}
	result := registry.Execute(context.Background(), ACTION_CREATE_RECORD_FROM_MESSAGE, map[string]any{}, execContext)
	require.True(t, result.Success)
	require.Equal(t, "Lead", result.Data["resource_type"])

	require.Equal(t, "Lead", createConfig["resource_type"])
	data := createConfig["data"].(map[string]any)
	require.Equal(t, "jo", data["lead_name"])
	require.Equal(t, "jo@example.com", data["email_id"])
	require.Equal(t, "Open", data["status"])
}

func TestCreateRecordFromMessageWithoutMessageData(t *testing.T) {
	registry := NewRegistry()
	RegisterCompositeActions(registry, stubReader{})
	result := registry.Execute(context.Background(), ACTION_CREATE_RECORD_FROM_MESSAGE, map[string]any{}, map[string]any{})
	require.False(t, result.Success)
	require.Contains(t, result.Error, "no message_data")
}
