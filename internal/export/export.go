// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/conversation"
	"github.com/Evn42/routine-builder/internal/util"
)

// ErrNothingToExport is returned when no assistant reply exists yet.
var ErrNothingToExport = errors.New("no routine to export yet")

// =============================================================================
// ROUTINE
// =============================================================================

// Routine is the exportable view of one session.
type Routine struct {
	Assistant  string                 `json:"assistant"`
	Model      string                 `json:"model,omitempty"`
	ExportedAt time.Time              `json:"exported_at"`
	Products   []catalog.Product      `json:"products"`
	Messages   []conversation.Message `json:"messages"`
}

// New builds a Routine from store snapshots. Messages should come from
// conversation.Store.Visible.
func New(products []catalog.Product, visible []conversation.Message, assistant, model string) *Routine {
	r := &Routine{
		Assistant:  assistant,
		Model:      model,
		ExportedAt: time.Now(),
		Products:   append([]catalog.Product{}, products...),
		Messages:   make([]conversation.Message, 0, len(visible)),
	}
	for _, m := range visible {
		if m.Role == conversation.RoleSystem || m.IsPayload() {
			continue
		}
		r.Messages = append(r.Messages, m)
	}
	return r
}

// HasReply reports whether the routine holds at least one assistant turn.
func (r *Routine) HasReply() bool {
	for _, m := range r.Messages {
		if m.Role == conversation.RoleAssistant {
			return true
		}
	}
	return false
}

// =============================================================================
// EXPORTERS
// =============================================================================

// Exporter renders a Routine in one format.
type Exporter interface {
	Export(r *Routine) ([]byte, error)
	FileExtension() string
}

// ForPath picks the exporter for path's extension.
func ForPath(path string) Exporter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return &JSONExporter{}
	default:
		return &MarkdownExporter{}
	}
}

// WriteFile renders r with the exporter for path and writes it atomically.
// An empty path writes DefaultFilename into the working directory.
func WriteFile(path string, r *Routine) (string, error) {
	if r == nil || !r.HasReply() {
		return "", ErrNothingToExport
	}
	if path == "" {
		path = DefaultFilename(r.Assistant, r.ExportedAt)
	}
	content, err := ForPath(path).Export(r)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	if err := util.AtomicWriteFile(path, content, 0o644, 0o755); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// DefaultFilename names an export after the assistant and time.
func DefaultFilename(assistant string, at time.Time) string {
	return fmt.Sprintf("routine_%s_%s.md", sanitizeFilename(assistant), at.Format("20060102_150405"))
}

// sanitizeFilename maps characters that are unsafe in file names to '-'
// and whitespace to '_'.
func sanitizeFilename(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > 40 {
		runes = runes[:40]
	}
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), r < 32, r == 127:
			out = append(out, '-')
		case r == ' ' || r == '\t':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "assistant"
	}
	return string(out)
}
