// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/config"
	"github.com/buhofis/buho-tui/internal/coordinator"
	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/navigation"
	"github.com/buhofis/buho-tui/internal/server"
	"github.com/buhofis/buho-tui/internal/validate"
)

func init() {
	color.NoColor = true
}

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"serve", "--addr", "127.0.0.1:9000"},
			wantSub: "serve",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "127.0.0.1:9000", p.Flag("addr"))
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"get", "--key=ui.theme"},
			wantSub: "get",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "ui.theme", p.Flag("key"))
			},
		},
		{
			name:    "equals with boolean value",
			args:    []string{"init", "--force=true"},
			wantSub: "init",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("force"))
			},
		},
		{
			name:    "declared bool does not consume the next word",
			args:    []string{"--no-stream", "hola", "mundo"},
			bools:   []string{"no-stream"},
			wantSub: "hola",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("no-stream"))
				assert.Equal(t, 2, p.PositionalCount())
			},
		},
		{
			name:    "undeclared flag consumes the next word",
			args:    []string{"--no-stream", "hola"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "hola", p.Flag("no-stream"))
				assert.Equal(t, 0, p.PositionalCount())
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"set", "--", "--raro", "x"},
			wantSub: "set",
			validate: func(t *testing.T, p *ArgParser) {
				assert.False(t, p.HasFlag("raro"))
				assert.Equal(t, []string{"--raro", "x"}, p.PositionalFrom(1))
			},
		},
		{
			name:    "negative number is positional",
			args:    []string{"set", "ui.sidebar_width", "-1"},
			wantSub: "set",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "-1", p.Positional(2))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args, tt.bools...)
			assert.Equal(t, tt.wantSub, p.Subcommand())
			assert.Equal(t, tt.args, p.Raw())
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"set", []string{"--interval", "50"}, 50},
		{"equals", []string{"--interval=0"}, 0},
		{"missing", []string{}, -1},
		{"malformed", []string{"--interval", "rapido"}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args)
			assert.Equal(t, tt.want, p.FlagIntOrDefault("interval", -1))
		})
	}
}

func TestArgParser_FlagOrDefault(t *testing.T) {
	p := NewArgParser([]string{"--addr", "0.0.0.0:1"})
	assert.Equal(t, "0.0.0.0:1", p.FlagOrDefault("addr", "x"))
	assert.Equal(t, "x", p.FlagOrDefault("files", "x"))
}

func TestArgParser_EmptyArgs(t *testing.T) {
	p := NewArgParser(nil)
	assert.Equal(t, "", p.Subcommand())
	assert.Equal(t, "", p.Positional(0))
	assert.Nil(t, p.PositionalFrom(0))
	assert.False(t, p.HasFlag("force"))
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"sí", true, false},
		{"SI", true, false},
		{" on ", true, false},
		{"no", false, false},
		{"0", false, false},
		{"quizá", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBoolString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIntWithValidation(t *testing.T) {
	n, err := ParseIntWithValidation(" 42 ", "--interval")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = ParseIntWithValidation("x", "--interval")
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
	assert.Contains(t, usageErr.Message, "--interval")
}

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(*testing.T, Args)
	}{
		{
			name:    "no args",
			argv:    nil,
			wantCmd: CmdDefault,
		},
		{
			name:    "tui",
			argv:    []string{"tui"},
			wantCmd: CmdTUI,
		},
		{
			name:    "chat alias",
			argv:    []string{"repl", "-q"},
			wantCmd: CmdChat,
			check: func(t *testing.T, a Args) {
				assert.True(t, a.Quiet)
			},
		},
		{
			name:    "ask joins the question",
			argv:    []string{"ask", "¿cuándo", "es", "la", "matrícula?"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "¿cuándo es la matrícula?", a.Query)
				assert.False(t, a.NoStream)
			},
		},
		{
			name:    "ask no-stream before the question",
			argv:    []string{"a", "--no-stream", "hola"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				assert.True(t, a.NoStream)
				assert.Equal(t, "hola", a.Query)
			},
		},
		{
			name:    "bare question keeps its case",
			argv:    []string{"Hola", "BuhoFis"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "Hola BuhoFis", a.Query)
			},
		},
		{
			name:    "status",
			argv:    []string{"S"},
			wantCmd: CmdStatus,
		},
		{
			name:    "config set with spaces in value",
			argv:    []string{"config", "SET", "backend.base_url", "http://x", "y"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "set", a.Subcommand)
				assert.Equal(t, "backend.base_url", a.ConfigKey)
				assert.Equal(t, "http://x y", a.ConfigVal)
			},
		},
		{
			name:    "config init force",
			argv:    []string{"cfg", "init", "--force"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "init", a.Subcommand)
				assert.True(t, a.Force)
			},
		},
		{
			name:    "mock flags",
			argv:    []string{"mock", "--addr", "127.0.0.1:9001", "--files=docs", "--interval", "10"},
			wantCmd: CmdMock,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "127.0.0.1:9001", a.Addr)
				assert.Equal(t, "docs", a.FilesDir)
				assert.Equal(t, 10, a.IntervalMs)
			},
		},
		{
			name:    "mock without interval keeps config",
			argv:    []string{"mockserver"},
			wantCmd: CmdMock,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, -1, a.IntervalMs)
			},
		},
		{
			name:    "global flags anywhere",
			argv:    []string{"status", "--config", "/tmp/b.toml", "-v", "--no-color"},
			wantCmd: CmdStatus,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "/tmp/b.toml", a.ConfigPath)
				assert.True(t, a.Verbose)
				assert.True(t, a.NoColor)
			},
		},
		{
			name:    "config equals form",
			argv:    []string{"--config=/tmp/c.yaml"},
			wantCmd: CmdDefault,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "/tmp/c.yaml", a.ConfigPath)
			},
		},
		{
			name:    "version flag",
			argv:    []string{"--version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "help in spanish",
			argv:    []string{"ayuda"},
			wantCmd: CmdHelp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			assert.Equal(t, tt.wantCmd, cmd, "got %s", cmd)
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestUsageAndVersion(t *testing.T) {
	var buf bytes.Buffer
	FprintUsage(&buf)
	assert.Contains(t, buf.String(), "buho ask")
	assert.Contains(t, buf.String(), Version)

	buf.Reset()
	FprintVersion(&buf)
	assert.Contains(t, buf.String(), Version)
}

// =============================================================================
// ERROR TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", NewUsageError("mal"), ExitUsageError},
		{"input", validate.ErrTooLong, ExitUsageError},
		{"config", &ConfigError{Action: "set", Err: errors.New("x")}, ExitConfigError},
		{"validation", config.ValidateErrors{{Field: "ui.theme", Message: "x"}}, ExitConfigError},
		{"network", &api.NetworkError{Op: "ping", Err: errors.New("refused")}, ExitNetworkError},
		{"wrapped network", fmt.Errorf("status: %w", &api.NetworkError{Op: "ping", Err: errors.New("x")}), ExitNetworkError},
		{"interrupted", errInterrupted, ExitInterrupted},
		{"abort", &api.AbortError{Err: context.Canceled}, ExitInterrupted},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, ErrMissingArgument("clave", "buho config get <clave>"))
	out := buf.String()
	assert.Contains(t, out, "[ERROR] falta el argumento clave")
	assert.Contains(t, out, "Uso: buho config get <clave>")

	buf.Reset()
	DisplayError(&buf, nil)
	assert.Empty(t, buf.String())
}

// =============================================================================
// TRANSCRIPT TESTS (chat.go)
// =============================================================================

func stateWith(chatID int64, msgs ...model.Message) coordinator.State {
	return coordinator.State{ActiveChatID: chatID, Messages: msgs}
}

func TestTranscript_PrintsEachMessageOnce(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTranscript(&buf, "http://api")

	user := model.NewUserMessage("hola")
	bot := model.NewBotMessage("¿En qué te ayudo?")
	tr.Sync(stateWith(1, user))
	tr.Sync(stateWith(1, user, bot))
	tr.Sync(stateWith(1, user, bot))

	assert.Equal(t, "Tú: hola\nBuhoFis: ¿En qué te ayudo?\n", buf.String())
}

func TestTranscript_SkipsTypedLine(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTranscript(&buf, "")
	tr.SkipUser("hola")
	tr.Sync(stateWith(1, model.NewUserMessage("hola")))
	assert.Empty(t, buf.String())
}

func TestTranscript_StreamsDeltas(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTranscript(&buf, "http://api")

	msg := model.NewStreamingMessage()
	tr.Sync(stateWith(1, msg))
	msg.Content = "Hola"
	tr.Sync(stateWith(1, msg))
	msg.Content = "Hola mundo"
	tr.Sync(stateWith(1, msg))

	msg.IsStreaming = false
	msg.Sources = []model.Source{{FileName: "guia.pdf", URL: "http://api/files/download/guia.pdf"}}
	tr.Sync(stateWith(1, msg))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "BuhoFis: Hola mundo\n"), out)
	assert.Equal(t, 1, strings.Count(out, "Hola"))
	assert.Contains(t, out, "Fuentes:")
	assert.Contains(t, out, "http://api/files/download/guia.pdf")
}

func TestTranscript_StreamEndsWithNotice(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTranscript(&buf, "")

	msg := model.NewStreamingMessage()
	msg.Content = "parcial"
	tr.Sync(stateWith(1, msg))

	failed := model.NewErrorMessage("Error", "No se pudo obtener la respuesta.", "HTTP 500")
	failed.ID = msg.ID
	tr.Sync(stateWith(1, failed))

	out := buf.String()
	assert.Contains(t, out, "BuhoFis: parcial\n")
	assert.Contains(t, out, "[Error] No se pudo obtener la respuesta.")
	assert.Contains(t, out, "  HTTP 500")
}

func TestTranscript_ChatSwitchReprints(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTranscript(&buf, "")

	tr.Sync(stateWith(1, model.NewUserMessage("uno")))
	tr.Sync(stateWith(2, model.NewUserMessage("dos")))
	tr.Sync(stateWith(1, model.NewUserMessage("uno")))

	assert.Equal(t, "Tú: uno\nTú: dos\nTú: uno\n", buf.String())
}

func TestTranscript_ClearedChat(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTranscript(&buf, "")

	tr.Sync(stateWith(1, model.NewUserMessage("a"), model.NewUserMessage("b")))
	tr.Sync(stateWith(1))
	tr.Sync(stateWith(1, model.NewUserMessage("c")))

	assert.Equal(t, "Tú: a\nTú: b\nTú: c\n", buf.String())
}

func TestTranscript_Attachments(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTranscript(&buf, "http://api")

	withFile := model.NewBotMessage("Necesitas 240h")
	withFile.FileName = "PRACTICAS.pdf"
	missing := model.NewBotMessage("Sin archivo")
	missing.FileMissing = true
	tr.Sync(stateWith(1, withFile, missing))

	out := buf.String()
	assert.Contains(t, out, "Documento: PRACTICAS.pdf")
	assert.Contains(t, out, api.DownloadURL("http://api", "PRACTICAS.pdf"))
	assert.Contains(t, out, "Documento no disponible.")
}

func TestTranscript_PrintFlow(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTranscript(&buf, "")

	tr.PrintFlow(coordinator.State{})
	assert.Empty(t, buf.String())

	tr.PrintFlow(coordinator.State{Flow: coordinator.FlowState{
		Active:  true,
		Options: []model.Option{{ID: "a", Label: "Académicas"}, {ID: "b", Label: "Trámites"}},
	}})
	out := buf.String()
	assert.Contains(t, out, model.DefaultFlowTitle)
	assert.Contains(t, out, "1) Académicas")
	assert.Contains(t, out, "2) Trámites")
}

// =============================================================================
// CONFIG COMMAND TESTS (config.go)
// =============================================================================

func TestHandleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()
	base := Args{ConfigPath: path}

	var out bytes.Buffer
	initArgs := base
	initArgs.Subcommand = "init"
	require.NoError(t, HandleConfig(cfg, initArgs, &out))
	assert.FileExists(t, path)

	err := HandleConfig(cfg, initArgs, &out)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	initArgs.Force = true
	require.NoError(t, HandleConfig(cfg, initArgs, &out))

	set := base
	set.Subcommand = "set"
	set.ConfigKey = "ui.theme"
	set.ConfigVal = "dark"
	require.NoError(t, HandleConfig(cfg, set, &out))
	assert.Equal(t, "dark", cfg.UI.Theme)

	reloaded, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", reloaded.UI.Theme)

	set.ConfigVal = "neon"
	err = HandleConfig(cfg, set, &out)
	assert.Equal(t, ExitConfigError, GetExitCode(err))
	assert.Equal(t, "dark", cfg.UI.Theme)

	get := base
	get.Subcommand = "get"
	get.ConfigKey = "ui.theme"
	out.Reset()
	require.NoError(t, HandleConfig(cfg, get, &out))
	assert.Equal(t, "dark\n", out.String())

	get.ConfigKey = "ui.nope"
	assert.Equal(t, ExitConfigError, GetExitCode(HandleConfig(cfg, get, &out)))

	bad := base
	bad.Subcommand = "borrar"
	assert.Equal(t, ExitUsageError, GetExitCode(HandleConfig(cfg, bad, &out)))
}

func TestMockOptions(t *testing.T) {
	cfg := config.Default()
	opts := MockOptions(cfg, Args{IntervalMs: -1})
	assert.Equal(t, cfg.Mock.Addr, opts.Addr)
	assert.Equal(t, cfg.Mock.TokenInterval(), opts.TokenInterval)

	opts = MockOptions(cfg, Args{Addr: "127.0.0.1:1", FilesDir: "docs", IntervalMs: 0})
	assert.Equal(t, "127.0.0.1:1", opts.Addr)
	assert.Equal(t, "docs", opts.FilesDir)
	assert.Equal(t, time.Duration(0), opts.TokenInterval)
}

// =============================================================================
// END-TO-END TESTS AGAINST THE MOCK BACKEND
// =============================================================================

// startMock serves the mock backend on a loopback port and returns its URL.
func startMock(t *testing.T) string {
	t.Helper()
	tree, err := navigation.NewBundledSource()
	require.NoError(t, err)
	srv := server.New(tree, server.Options{TokenInterval: time.Millisecond}, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.App().Listener(ln) }()
	t.Cleanup(func() { _ = srv.App().Shutdown() })
	return "http://" + ln.Addr().String()
}

// closedURL returns a loopback URL nothing listens on.
func closedURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return "http://" + addr
}

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Backend.BaseURL = baseURL
	cfg.Backend.TimeoutSecs = 5
	cfg.Session.Storage = "memory"
	cfg.Offline.TokenIntervalMs = 1
	cfg.UI.Markdown = false
	cfg.UI.ShowSources = true
	return cfg
}

func TestHandleAsk_Stream(t *testing.T) {
	cfg := testConfig(startMock(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	err := HandleAsk(ctx, cfg, nil, Args{Query: "¿horario?"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Respuesta simulada para: "¿horario?"`)
	assert.Contains(t, out.String(), "Fuentes:")
	assert.Contains(t, out.String(), "documento_ejemplo1.pdf")
}

func TestHandleAsk_NoStream(t *testing.T) {
	cfg := testConfig(startMock(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	err := HandleAsk(ctx, cfg, nil, Args{Query: "hola", NoStream: true}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "hola")
	assert.Contains(t, out.String(), "mock_source_1.pdf")
}

func TestHandleAsk_OfflineFallback(t *testing.T) {
	cfg := testConfig(closedURL(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	err := HandleAsk(ctx, cfg, nil, Args{Query: "hola"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), msgOfflineAnswer)
	assert.Contains(t, out.String(), "Este es un ejemplo.")
	assert.Contains(t, out.String(), "mock_doc_practicas.pdf")
}

func TestHandleAsk_Rejected(t *testing.T) {
	cfg := testConfig(closedURL(t))
	var out bytes.Buffer

	err := HandleAsk(context.Background(), cfg, nil, Args{}, &out)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleAsk(context.Background(), cfg, nil, Args{Query: strings.Repeat("a", 1200)}, &out)
	assert.ErrorIs(t, err, validate.ErrTooLong)
}

func TestHandleStatus(t *testing.T) {
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, HandleStatus(ctx, testConfig(startMock(t)), nil, Args{}, &out))
	assert.Contains(t, out.String(), model.ReachOnline.Badge())

	out.Reset()
	err := HandleStatus(ctx, testConfig(closedURL(t)), nil, Args{}, &out)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Contains(t, out.String(), model.ReachOffline.Badge())
}

func newTestREPL(t *testing.T, baseURL string) (*REPL, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	app, err := NewApp(testConfig(baseURL), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	var out, errOut bytes.Buffer
	return NewREPL(app, &out, &errOut), &out, &errOut
}

func TestNewApp_RejectsBadBaseURL(t *testing.T) {
	_, err := NewApp(testConfig("ftp://x"), nil)
	assert.Equal(t, ExitConfigError, GetExitCode(err))
}

func TestREPL_FreeChat(t *testing.T) {
	r, out, errOut := newTestREPL(t, startMock(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	assert.Equal(t, "buho> ", r.Prompt())
	assert.False(t, r.Handle(ctx, "¿Dónde queda secretaría?"))

	assert.Empty(t, errOut.String())
	assert.NotContains(t, out.String(), "Tú: ¿Dónde queda secretaría?")
	assert.Contains(t, out.String(), "BuhoFis: Respuesta simulada para")
	assert.Contains(t, out.String(), "Fuentes:")
	assert.False(t, r.app.Coord.State().Typing)
}

func TestREPL_GuidedFlow(t *testing.T) {
	r, out, errOut := newTestREPL(t, startMock(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	assert.False(t, r.Handle(ctx, "/guia"))
	assert.Equal(t, "buho[flujo]> ", r.Prompt())
	assert.Contains(t, out.String(), "1) Consultas académicas")

	// Free text is refused while options are shown.
	assert.False(t, r.Handle(ctx, "hola"))
	assert.Contains(t, errOut.String(), validate.ErrFlowActive.Message)

	out.Reset()
	assert.False(t, r.Handle(ctx, "1"))
	assert.Contains(t, out.String(), "Tú: Consultas académicas")
	assert.Contains(t, out.String(), "Prácticas y vinculación")

	assert.False(t, r.Handle(ctx, "/atras"))
	assert.Equal(t, model.DefaultFlowTitle, r.app.Coord.State().Flow.Title)

	assert.False(t, r.Handle(ctx, "/libre"))
	assert.Equal(t, "buho> ", r.Prompt())
}

func TestREPL_CommandsAndQuit(t *testing.T) {
	r, out, errOut := newTestREPL(t, closedURL(t))
	ctx := context.Background()

	assert.False(t, r.Handle(ctx, "   "))
	assert.Empty(t, out.String())

	assert.False(t, r.Handle(ctx, "/ayuda"))
	assert.Contains(t, out.String(), "/guia")

	assert.False(t, r.Handle(ctx, "/inexistente"))
	assert.NotEmpty(t, errOut.String())

	assert.False(t, r.Handle(ctx, "/nueva"))
	assert.Len(t, r.app.Coord.State().Chats, 2)

	assert.True(t, r.Handle(ctx, "/salir"))
	assert.True(t, r.Handle(ctx, "EXIT"))
}

func TestREPL_OfflineAnswer(t *testing.T) {
	r, out, _ := newTestREPL(t, closedURL(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	assert.False(t, r.Handle(ctx, "hola"))
	assert.Contains(t, out.String(), "Respuesta simulada para")
	assert.Equal(t, model.ReachOffline, r.app.Coord.State().Backend)
}
