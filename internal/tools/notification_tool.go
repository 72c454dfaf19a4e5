// In file: internal/tools/notification_tool.go
package tools

import (
	"context"

	"github.com/dileep-u-k/jet-concierge/internal/identity"
)

const SendNotification = "sendNotification"

type SendNotificationParams struct {
	Recipient string `json:"recipient"`
	Type      string `json:"type"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	Priority  string `json:"priority,omitempty"`
}

func sendNotificationDefinition() Tool {
	return NewFunctionTool(
		SendNotification,
		"Send a booking, membership, or system notification to a user.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"recipient": {Type: "string", Description: "User ID or email of the recipient.", MinLength: ptr(1)},
				"type":      {Type: "string", Description: "Notification category.", Enum: []string{"booking", "membership", "system"}},
				"subject":   {Type: "string", Description: "Short subject line.", MinLength: ptr(1)},
				"content":   {Type: "string", Description: "Message body.", MinLength: ptr(1)},
				"priority":  {Type: "string", Description: "Delivery priority.", Enum: []string{"low", "medium", "high"}},
			},
			Required: []string{"recipient", "type", "subject", "content"},
		},
	)
}

func newSendNotification(b *Backend) *Descriptor {
	return MustDescriptor(sendNotificationDefinition(), func(ctx context.Context, id identity.Identity, p SendNotificationParams) (Result, error) {
		if p.Priority == "" {
			p.Priority = "medium"
		}
		var out map[string]any
		if err := b.Post(ctx, id, "/notifications/send", nil, p, &out); err != nil {
			return Result{}, err
		}
		return Result{Data: out, Message: "The notification has been sent."}, nil
	})
}
