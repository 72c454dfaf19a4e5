// In file: internal/tools/membership_tool.go
package tools

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dileep-u-k/jet-concierge/internal/identity"
)

const ManageMembership = "manageMembership"

type ManageMembershipParams struct {
	Action       string `json:"action"`
	UserID       string `json:"user_id"`
	MembershipID string `json:"membership_id"`
}

func (p ManageMembershipParams) Validate() error {
	if strings.TrimSpace(p.UserID) == "" || strings.TrimSpace(p.MembershipID) == "" {
		return errors.New("user_id and membership_id are required")
	}
	return nil
}

var membershipMessages = map[string]string{
	"enroll": "The member has been enrolled.",
	"cancel": "The membership has been cancelled.",
	"update": "The membership has been updated.",
}

func manageMembershipDefinition() Tool {
	return NewFunctionTool(
		ManageMembership,
		"Enroll a user in, cancel, or update a membership plan.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"action":        {Type: "string", Description: "What to do with the membership.", Enum: []string{"enroll", "cancel", "update"}},
				"user_id":       {Description: "ID of the user."},
				"membership_id": {Description: "ID of the membership plan."},
			},
			Required: []string{"action", "user_id", "membership_id"},
		},
	)
}

func newManageMembership(b *Backend) *Descriptor {
	return MustDescriptor(manageMembershipDefinition(), func(ctx context.Context, id identity.Identity, p ManageMembershipParams) (Result, error) {
		query := url.Values{
			"userId":       {strings.TrimSpace(p.UserID)},
			"membershipId": {strings.TrimSpace(p.MembershipID)},
		}
		var out map[string]any
		if err := b.Post(ctx, id, fmt.Sprintf("/memberships/%s", p.Action), query, nil, &out); err != nil {
			return Result{}, err
		}
		return Result{Data: out, Message: membershipMessages[p.Action]}, nil
	})
}
