// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buhofis/buho-tui/internal/model"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func testOptions(dir string) *Options {
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func testChat() model.Chat {
	created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	answer := model.NewBotMessage("Necesitas **240 horas**.")
	answer.Timestamp = created.Add(2 * time.Second)
	answer.Sources = []model.Source{
		{FileName: "reglamento.pdf", URL: "http://api/files/download/reglamento.pdf", Page: model.IntPtr(3)},
		{FileID: "doc-9"},
	}
	question := model.NewUserMessage("¿Cuántas horas de prácticas necesito?")
	question.Timestamp = created.Add(time.Second)
	notice := model.NewErrorMessage("Error del servidor", "El servidor respondió con error.", "HTTP 500")
	notice.Timestamp = created.Add(3 * time.Second)

	return model.Chat{
		ID:        created.UnixMilli(),
		Name:      "¿Cuántas horas: prácticas?",
		CreatedAt: created,
		Active:    true,
		Messages:  []model.Message{question, answer, notice},
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		ext    string
		ok     bool
	}{
		{"", ".md", true},
		{"md", ".md", true},
		{"Markdown", ".md", true},
		{".json", ".json", true},
		{"html", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exp, err := ForFormat(tt.format, nil)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, exp.FileExtension())
		})
	}
}

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions("")).Export(testChat())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\ntitle: \"¿Cuántas horas: prácticas?\"\n"), "colon forces a quoted title")
	assert.Contains(t, md, "### [Tú] <sub>09:00:01</sub>")
	assert.Contains(t, md, "### [BuhoFis] <sub>09:00:02</sub>")
	assert.Contains(t, md, "Necesitas **240 horas**.")
	assert.Contains(t, md, "- [reglamento.pdf (p. 3)](http://api/files/download/reglamento.pdf)")
	assert.Contains(t, md, "- doc-9\n")
	assert.Contains(t, md, "### [Error]")
	assert.Contains(t, md, "```\nHTTP 500\n```")
	assert.Contains(t, md, "messages: 3\nquestions: 1\nupdated: 2025-03-14T09:00:03Z\n")
	assert.Contains(t, md, "exported: 2025-03-14T09:26:53Z")
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := testOptions("")
	opts.IncludeMetadata = false
	opts.IncludeTimestamps = false
	opts.IncludeSources = false

	out, err := NewMarkdownExporter(opts).Export(testChat())
	require.NoError(t, err)
	md := string(out)

	assert.False(t, strings.HasPrefix(md, "---"))
	assert.Contains(t, md, "### [Tú]\n")
	assert.NotContains(t, md, "Fuentes")
}

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter(testOptions("")).Export(testChat())
	require.NoError(t, err)

	var decoded struct {
		Generator string     `json:"generator"`
		Chat      model.Chat `json:"chat"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "buho-tui", decoded.Generator)
	require.Len(t, decoded.Chat.Messages, 3)
	assert.Len(t, decoded.Chat.Messages[1].Sources, 2)
	assert.Contains(t, string(out), `"type": "user"`)
}

func TestJSONExporter_WithoutSourcesKeepsCaller(t *testing.T) {
	opts := testOptions("")
	opts.IncludeSources = false
	chat := testChat()

	out, err := NewJSONExporter(opts).Export(chat)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "reglamento.pdf")
	assert.Len(t, chat.Messages[1].Sources, 2, "caller's chat must not be modified")
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)

	path, err := ExportToFile(testChat(), NewMarkdownExporter(opts), "", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "buho_¿Cuántas_horas-_prácticas-_20250314_092653.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Necesitas")
}

func TestExportToFile_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)

	path, err := ExportToFile(testChat(), NewJSONExporter(opts), filepath.Join(dir, "sub", "chat"), opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sub", "chat.json"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestExportToFile_EmptyChat(t *testing.T) {
	_, err := ExportToFile(model.Chat{Name: "x"}, NewMarkdownExporter(nil), "", testOptions(t.TempDir()))
	assert.True(t, errors.Is(err, ErrEmptyChat))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "conversacion"},
		{"a/b\\c:d", "a-b-c-d"},
		{"hola mundo", "hola_mundo"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}
