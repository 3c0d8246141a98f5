package action

import (
	"context"

	"github.com/dogansystem/agentflow/message"
)

const ACTION_SEND_MESSAGE string = "send_message"

var _ Handler = new(sendMessageAction)

type sendMessageAction struct {
	sender message.Sender
}

func NewSendMessageAction(sender message.Sender) *sendMessageAction {
	return &sendMessageAction{sender: sender}
}

func (a *sendMessageAction) Name() string {
	return ACTION_SEND_MESSAGE
}

func (a *sendMessageAction) Execute(ctx context.Context, config map[string]any, execContext map[string]any) Result {
	to, err := stringParam(config, "to")
	if err != nil {
		return Fail("%v", err)
	}
	subject, _ := config["subject"].(string)
	body, _ := config["body"].(string)
	html, _ := config["html"].(bool)
	msg := message.Message{
		To:      to,
		Subject: subject,
		Body:    body,
		Html:    html,
	}
	if err := a.sender.Send(ctx, msg); err != nil {
		return Fail("%v", err)
	}
	return Ok(map[string]any{"to": to})
}
