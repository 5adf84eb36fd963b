// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the assistant transcript and drives its
// request/reply cycle.
//
// A Store begins with a single system message. GenerateRoutine resets the
// transcript and sends a summary of the selected products; SubmitMessage
// appends a free-form question. Both go through the same two-phase API:
//
//	turn, err := store.BeginMessage(text)   // transcript updated, state awaiting
//	reply, err := gateway.Complete(ctx, turn.Messages)
//	store.Complete(turn.ID, reply)          // or store.Fail(turn.ID, err)
//
// so an event loop can run the gateway call off the UI goroutine and apply
// the result later. Only one turn is pending at a time.
//
// The transcript is never persisted.
package conversation
