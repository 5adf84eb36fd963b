// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Evn42/routine-builder/internal/conversation"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter writes a document with a product list and the
// conversation. Replies are kept verbatim since they are usually Markdown.
type MarkdownExporter struct{}

// Export implements Exporter.
func (e *MarkdownExporter) Export(r *Routine) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("routine is nil")
	}
	var sb strings.Builder

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "assistant: %s\n", escapeYAML(r.Assistant))
	if r.Model != "" {
		fmt.Fprintf(&sb, "model: %s\n", escapeYAML(r.Model))
	}
	fmt.Fprintf(&sb, "exported: %s\n", r.ExportedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "products: %d\n", len(r.Products))
	sb.WriteString("---\n\n")

	sb.WriteString("# My routine\n\n")

	sb.WriteString("## Products\n\n")
	if len(r.Products) == 0 {
		sb.WriteString("_No products selected._\n")
	}
	for _, p := range r.Products {
		fmt.Fprintf(&sb, "- **%s**", escapeMarkdown(p.Name))
		if p.Brand != "" {
			fmt.Fprintf(&sb, " by %s", escapeMarkdown(p.Brand))
		}
		fmt.Fprintf(&sb, " (%s)\n", escapeMarkdown(p.Category))
	}
	sb.WriteString("\n## Conversation\n\n")

	for i, m := range r.Messages {
		label := "You"
		if m.Role == conversation.RoleAssistant {
			label = r.Assistant
		}
		fmt.Fprintf(&sb, "### %s\n\n%s\n\n", escapeMarkdown(label), strings.TrimSpace(m.Content))
		if i < len(r.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}
	return []byte(sb.String()), nil
}

// FileExtension implements Exporter.
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// escapeMarkdown escapes characters that would change inline formatting.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "#", `\#`)
	return r.Replace(s)
}

// escapeYAML quotes a frontmatter value when it holds YAML syntax.
func escapeYAML(s string) string {
	if s == "" || strings.ContainsAny(s, ":#{}[],&*!|>'\"%@`\n") || strings.TrimSpace(s) != s {
		b, _ := json.Marshal(s)
		return string(b)
	}
	return s
}

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes the Routine as indented JSON.
type JSONExporter struct{}

// Export implements Exporter.
func (e *JSONExporter) Export(r *Routine) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("routine is nil")
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension implements Exporter.
func (e *JSONExporter) FileExtension() string { return ".json" }
