// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Evn42/routine-builder/internal/conversation"
	"github.com/Evn42/routine-builder/internal/ui/styles"
)

// Line is one rendered conversation entry.
type Line struct {
	Label string
	Text  string
	Role  conversation.Role
}

// ConversationLines derives what the conversation region shows. A notice
// replaces the transcript entirely.
func ConversationLines(notice conversation.Notice, visible []conversation.Message, assistantName string) []Line {
	if notice != conversation.NoticeNone {
		return []Line{{Text: string(notice)}}
	}
	lines := make([]Line, 0, len(visible))
	for _, m := range visible {
		switch m.Role {
		case conversation.RoleUser:
			lines = append(lines, Line{Label: "You:", Text: m.Content, Role: m.Role})
		case conversation.RoleAssistant:
			lines = append(lines, Line{Label: assistantName + ":", Text: m.Content, Role: m.Role})
		}
	}
	return lines
}

// ConversationView draws the transcript or the active notice.
type ConversationView struct {
	Theme         *styles.Theme
	AssistantName string

	// Markdown renders assistant replies when set.
	Markdown *glamour.TermRenderer
}

// NewMarkdown builds a glamour renderer for replies wrapped at width.
func NewMarkdown(width int, dark bool) (*glamour.TermRenderer, error) {
	style := "light"
	if dark {
		style = "dark"
	}
	if width < 20 {
		width = 20
	}
	return glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
}

// Render draws the region.
func (v ConversationView) Render(notice conversation.Notice, visible []conversation.Message) string {
	lines := ConversationLines(notice, visible, v.AssistantName)
	if notice != conversation.NoticeNone {
		return v.noticeStyle(notice).Render(lines[0].Text)
	}
	if len(lines) == 0 {
		return v.Theme.Placeholder.Render("Select products and press ctrl+g to build a routine.")
	}

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		if l.Role == conversation.RoleUser {
			b.WriteString(v.Theme.UserLabel.Render(l.Label))
			b.WriteString(" ")
			b.WriteString(v.Theme.MessageText.Render(l.Text))
			b.WriteString("\n")
			continue
		}
		b.WriteString(v.Theme.AssistantLabel.Render(l.Label))
		b.WriteString("\n")
		b.WriteString(v.renderReply(l.Text))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v ConversationView) renderReply(text string) string {
	if v.Markdown != nil {
		if out, err := v.Markdown.Render(text); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return v.Theme.MessageText.Render(text)
}

func (v ConversationView) noticeStyle(n conversation.Notice) lipgloss.Style {
	switch n {
	case conversation.NoticeRoutineFailed, conversation.NoticeMessageFailed:
		return v.Theme.NoticeError
	default:
		return v.Theme.NoticeInfo
	}
}
