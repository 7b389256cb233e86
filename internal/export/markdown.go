// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/buhofis/buho-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports chats to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a chat to Markdown format.
func (e *MarkdownExporter) Export(chat model.Chat) ([]byte, error) {
	if len(chat.Messages) == 0 {
		return nil, ErrEmptyChat
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(chat.Name)))
		sb.WriteString(fmt.Sprintf("chat_id: %d\n", chat.ID))
		sb.WriteString(fmt.Sprintf("created: %s\n", chat.CreatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(chat.Messages)))
		sb.WriteString(fmt.Sprintf("questions: %d\n", chat.UserMessageCount()))
		if last, ok := chat.LastMessage(); ok {
			sb.WriteString(fmt.Sprintf("updated: %s\n", last.Timestamp.Format(time.RFC3339)))
		}
		sb.WriteString(fmt.Sprintf("exported: %s\n", e.options.now().Format(time.RFC3339)))
		sb.WriteString("generator: buho-tui\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(chat.Name)))

	for i, msg := range chat.Messages {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
				roleLabel(msg),
				formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", roleLabel(msg)))
		}

		if msg.Title != "" {
			sb.WriteString(fmt.Sprintf("**%s**\n\n", escapeMarkdown(msg.Title)))
		}
		if content := strings.TrimSpace(msg.Content); content != "" {
			sb.WriteString(content)
			sb.WriteString("\n\n")
		}
		if msg.Detail != "" {
			sb.WriteString("```\n")
			sb.WriteString(msg.Detail)
			sb.WriteString("\n```\n\n")
		}
		if msg.FileName != "" {
			sb.WriteString(fmt.Sprintf("Documento: `%s`\n\n", msg.FileName))
		} else if msg.FileMissing {
			sb.WriteString("_Documento no disponible._\n\n")
		}
		if e.options.IncludeSources && len(msg.Sources) > 0 {
			sb.WriteString(formatSources(msg.Sources))
			sb.WriteString("\n")
		}

		if i < len(chat.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exportado desde buho-tui el %s*\n",
		formatTimestamp(e.options.now())))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// roleLabel returns a formatted label for the message author.
func roleLabel(msg model.Message) string {
	switch msg.Variant {
	case model.VariantError:
		return "[Error]"
	case model.VariantWarning:
		return "[Aviso]"
	case model.VariantInfo:
		return "[Info]"
	}
	return "[" + msg.Role.DisplayName() + "]"
}

func formatSources(sources []model.Source) string {
	var sb strings.Builder
	sb.WriteString("**Fuentes**:\n\n")
	for _, s := range sources {
		label := escapeMarkdown(s.Label())
		if s.URL != "" {
			sb.WriteString(fmt.Sprintf("- [%s](%s)\n", label, s.URL))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n", label))
		}
	}
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in titles/headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
