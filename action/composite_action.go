package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/dogansystem/agentflow/message"
)

const ACTION_PROCESS_INCOMING_MESSAGES string = "process_incoming_messages"
const ACTION_CREATE_RECORD_FROM_MESSAGE string = "create_record_from_message"

var _ Handler = new(processIncomingMessagesAction)
var _ Handler = new(createRecordFromMessageAction)

// RegisterCompositeActions wires the two composite actions. They call back
// into the remote-resource actions through the registry rather than talking
// to the remote client directly.
func RegisterCompositeActions(registry *Registry, reader message.Reader) {
	registry.Register(&processIncomingMessagesAction{reader: reader})
	registry.Register(&createRecordFromMessageAction{registry: registry})
}

type processIncomingMessagesAction struct {
	reader message.Reader
}

func (a *processIncomingMessagesAction) Name() string {
	return ACTION_PROCESS_INCOMING_MESSAGES
}

func (a *processIncomingMessagesAction) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	incoming, err := a.reader.Fetch(ctx)
	if err != nil {
		return Fail("%v", err)
	}
	messages := make([]any, 0, len(incoming))
	for _, msg := range incoming {
		messages = append(messages, map[string]any{
			"from":    msg.From,
			"subject": msg.Subject,
			"body":    msg.Body,
		})
	}
	execContext["incoming_messages"] = messages
	if len(messages) > 0 {
		execContext["message_data"] = messages[0]
	}
	return Ok(map[string]any{"processed": len(messages)})
}

type createRecordFromMessageAction struct {
	registry *Registry
}

func (a *createRecordFromMessageAction) Name() string {
	return ACTION_CREATE_RECORD_FROM_MESSAGE
}

func (a *createRecordFromMessageAction) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	messageData, _ := execContext["message_data"].(map[string]any)
	if messageData == nil {
		return Fail("no message_data in execution context")
	}
	resourceType, _ := config["resource_type"].(string)
	if resourceType == "" {
		resourceType = "Lead"
	}
	from, _ := messageData["from"].(string)
	name := from
	if idx := strings.Index(from, "@"); idx > 0 {
		name = from[:idx]
	}
	if name == "" {
		name = "Unknown"
	}
	createConfig := map[string]any{
		"resource_type": resourceType,
		"data": map[string]any{
			"lead_name": name,
			"email_id":  from,
			"source":    "Message",
			"status":    "Open",
		},
	}
	result := a.registry.Execute(ctx, ACTION_REMOTE_CREATE, createConfig, execContext)
	if !result.Success {
		return Fail("creating %s from message: %s", resourceType, result.Error)
	}
	return Ok(map[string]any{"resource_type": resourceType, "created": fmt.Sprintf("%v", result.Data["data"])})
}
