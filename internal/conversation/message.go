// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"strings"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role is the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the wire value of the role.
func (r Role) String() string {
	return string(r)
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one transcript entry. The JSON form is the chat-completions
// wire shape.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsPayload reports whether m is a generated product-summary message.
func (m Message) IsPayload() bool {
	return m.Role == RoleUser && strings.HasPrefix(m.Content, PayloadPrefix)
}

// Gateway sends a transcript to the assistant and returns its reply.
type Gateway interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, messages []Message) (string, error)

// Complete implements Gateway.
func (f GatewayFunc) Complete(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}
