// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Evn42/routine-builder/internal/catalog"
)

var (
	ErrEmptySelection = errors.New("no products selected")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrAwaitingReply  = errors.New("waiting for the assistant to reply")
	ErrStaleTurn      = errors.New("turn is not pending")
	ErrGatewayFailure = errors.New("assistant request failed")
)

// =============================================================================
// STATE, KIND AND NOTICE
// =============================================================================

// State is the request lifecycle of the store.
type State int

const (
	StateIdle State = iota
	StateAwaitingReply
)

func (s State) String() string {
	if s == StateAwaitingReply {
		return "awaiting-reply"
	}
	return "idle"
}

// Kind distinguishes routine generation from free-form chat.
type Kind int

const (
	KindRoutine Kind = iota
	KindMessage
)

// Notice is a fixed user-facing text shown instead of the transcript.
type Notice string

const (
	NoticeNone            Notice = ""
	NoticeEmptySelection  Notice = "Please select at least one product to generate a routine."
	NoticeCreatingRoutine Notice = "Creating your routine..."
	NoticeRoutineFailed   Notice = "Sorry, there was a problem generating your routine."
	NoticeMessageFailed   Notice = "Sorry, there was a problem connecting to the assistant."
)

// Turn is one pending gateway round-trip.
type Turn struct {
	ID   string
	Kind Kind

	// Messages is a copy of the transcript to send.
	Messages []Message
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the transcript. The first message is always the system
// message.
type Store struct {
	mu       sync.Mutex
	system   Message
	messages []Message
	state    State
	notice   Notice
	pending  *Turn
	log      *zap.Logger
}

// New creates a store whose transcript is [system(systemPrompt)].
func New(systemPrompt string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	system := Message{Role: RoleSystem, Content: systemPrompt}
	return &Store{
		system:   system,
		messages: []Message{system},
		log:      log,
	}
}

// BeginRoutine resets the transcript to the system message and appends the
// product summary for selection.
func (s *Store) BeginRoutine(selection []catalog.Product) (*Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAwaitingReply {
		return nil, ErrAwaitingReply
	}
	if len(selection) == 0 {
		s.notice = NoticeEmptySelection
		return nil, ErrEmptySelection
	}

	s.messages = []Message{s.system, {Role: RoleUser, Content: Payload(selection)}}
	s.notice = NoticeCreatingRoutine
	return s.begin(KindRoutine), nil
}

// BeginMessage appends text, trimmed, as a user message.
func (s *Store) BeginMessage(text string) (*Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if s.state == StateAwaitingReply {
		return nil, ErrAwaitingReply
	}

	s.messages = append(s.messages, Message{Role: RoleUser, Content: text})
	s.notice = NoticeNone
	return s.begin(KindMessage), nil
}

// begin must be called with the lock held.
func (s *Store) begin(kind Kind) *Turn {
	turn := &Turn{
		ID:       uuid.NewString(),
		Kind:     kind,
		Messages: s.copyMessages(),
	}
	s.pending = turn
	s.state = StateAwaitingReply
	s.log.Debug("turn started",
		zap.String("turn", turn.ID),
		zap.Int("kind", int(kind)),
		zap.Int("messages", len(turn.Messages)))
	return turn
}

// Complete appends reply for the pending turn identified by turnID.
func (s *Store) Complete(turnID, reply string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || s.pending.ID != turnID {
		return ErrStaleTurn
	}
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: reply})
	s.notice = NoticeNone
	s.finish()
	return nil
}

// Fail records that the pending turn got no reply. Nothing is appended.
func (s *Store) Fail(turnID string, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || s.pending.ID != turnID {
		return ErrStaleTurn
	}
	if s.pending.Kind == KindRoutine {
		s.notice = NoticeRoutineFailed
	} else {
		s.notice = NoticeMessageFailed
	}
	s.log.Warn("turn failed", zap.String("turn", turnID), zap.Error(cause))
	s.finish()
	return nil
}

func (s *Store) finish() {
	s.pending = nil
	s.state = StateIdle
}

// GenerateRoutine runs a routine turn to completion against gw.
func (s *Store) GenerateRoutine(ctx context.Context, gw Gateway, selection []catalog.Product) error {
	turn, err := s.BeginRoutine(selection)
	if err != nil {
		return err
	}
	return s.run(ctx, gw, turn)
}

// SubmitMessage runs a chat turn to completion against gw.
func (s *Store) SubmitMessage(ctx context.Context, gw Gateway, text string) error {
	turn, err := s.BeginMessage(text)
	if err != nil {
		return err
	}
	return s.run(ctx, gw, turn)
}

func (s *Store) run(ctx context.Context, gw Gateway, turn *Turn) error {
	reply, err := gw.Complete(ctx, turn.Messages)
	if err != nil {
		if ferr := s.Fail(turn.ID, err); ferr != nil {
			s.log.Debug("failure for finished turn dropped", zap.String("turn", turn.ID), zap.Error(ferr))
		}
		return fmt.Errorf("%w: %w", ErrGatewayFailure, err)
	}
	return s.Complete(turn.ID, reply)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a copy of the full transcript.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyMessages()
}

// Visible returns the messages a user should see: no system message and no
// product summaries.
func (s *Store) Visible() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Role == RoleSystem || m.IsPayload() {
			continue
		}
		out = append(out, m)
	}
	return out
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Notice returns the active notice, or NoticeNone.
func (s *Store) Notice() Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// Pending returns the in-flight turn, or nil.
func (s *Store) Pending() *Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	t := *s.pending
	t.Messages = append([]Message(nil), t.Messages...)
	return &t
}

func (s *Store) copyMessages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
