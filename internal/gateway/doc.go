// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway is the client for the assistant proxy.
//
// The proxy speaks the chat-completions shape: POST {model, messages},
// reply {choices: [{message: {content}}]}. Every failure, whatever its
// cause, satisfies errors.Is(err, ErrFailure).
//
// # Usage
//
//	client := gateway.New(cfg.Gateway.URL,
//	    gateway.WithModel(cfg.Gateway.Model),
//	    gateway.WithTimeout(cfg.GatewayTimeout()),
//	)
//	reply, err := client.Complete(ctx, store.Messages())
package gateway
