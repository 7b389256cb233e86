// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buhofis/buho-tui/internal/coordinator"
	"github.com/buhofis/buho-tui/internal/export"
	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/session"
)

// =============================================================================
// FAKE SESSION
// =============================================================================

type fakeSession struct {
	state coordinator.State
	calls []string
	pick  bool
}

func newFakeSession() *fakeSession {
	chats := []model.Chat{
		{ID: 100, Name: "Matrícula", Messages: []model.Message{model.NewUserMessage("hola")}},
		{ID: 200, Name: "Prácticas"},
	}
	return &fakeSession{
		pick: true,
		state: coordinator.State{
			ActiveChatID: 100,
			Chats:        chats,
			Messages:     chats[0].Messages,
			Backend:      model.ReachOnline,
		},
	}
}

func (f *fakeSession) State() coordinator.State { return f.state }
func (f *fakeSession) CreateChat() model.Chat {
	f.calls = append(f.calls, "create")
	return model.Chat{}
}
func (f *fakeSession) SwitchChat(id int64) error {
	f.calls = append(f.calls, "switch:"+itoa(id))
	return nil
}
func (f *fakeSession) DeleteChat(id int64) error {
	f.calls = append(f.calls, "delete:"+itoa(id))
	if id == 999 {
		return session.ErrChatNotFound
	}
	return nil
}
func (f *fakeSession) ClearAll() { f.calls = append(f.calls, "clear") }
func (f *fakeSession) StartFlow(ctx context.Context) { f.calls = append(f.calls, "start") }
func (f *fakeSession) RestartFlow(ctx context.Context) { f.calls = append(f.calls, "restart") }
func (f *fakeSession) PickOption(ctx context.Context, id, label string) bool {
	f.calls = append(f.calls, "pick:"+id+":"+label)
	return f.pick
}
func (f *fakeSession) BackFlow(ctx context.Context) { f.calls = append(f.calls, "back") }
func (f *fakeSession) ExitFlow() { f.calls = append(f.calls, "exit") }
func (f *fakeSession) StopStreaming() { f.calls = append(f.calls, "stop") }

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func run(t *testing.T, s *fakeSession, input string) (Result, error) {
	t.Helper()
	reg := NewRegistry()
	return reg.Execute(&Context{Ctx: context.Background(), Session: s, APIBase: "http://api"}, input)
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/switch 2", true},
		{"  /help", true},
		{"hola", false},
		{"hola /help", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		got := IsCommand(tc.input)
		if got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/help", "/help"},
		{"/switch 2", "/switch"},
		{"  /help  ", "/help"},
		{"hola", ""},
		{"/", "/"},
	}

	for _, tc := range tests {
		got := ExtractCommandName(tc.input)
		if got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"md out.md", []string{"md", "out.md"}},
		{`md "mis notas.md"`, []string{"md", "mis notas.md"}},
		{`json 'año académico.json'`, []string{"json", "año académico.json"}},
		{`md "a \"b\""`, []string{"md", `a "b"`}},
		{`x ""`, []string{"x", ""}},
		{"  ", nil},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseArgs(tc.input), tc.input)
	}
}

func TestParser_Parse(t *testing.T) {
	p := NewParser(NewRegistry())

	res := p.Parse("  /SWITCH  2 ")
	assert.True(t, res.IsCommand)
	assert.Equal(t, "/switch", res.CommandName)
	require.NotNil(t, res.Command)
	assert.Equal(t, []string{"2"}, res.Args)
	assert.Equal(t, "2", res.RawArgs)

	res = p.Parse("/ir 1")
	require.NotNil(t, res.Command, "aliases resolve")
	assert.Equal(t, "/switch", res.Command.Name)

	res = p.Parse("¿qué es /help?")
	assert.False(t, res.IsCommand)
}

func TestValidateArgs(t *testing.T) {
	reg := NewRegistry()

	var verr *ValidationError
	require.True(t, errors.As(ValidateArgs(reg.Get("/switch"), nil), &verr))
	assert.Equal(t, "n", verr.Arg)

	require.True(t, errors.As(ValidateArgs(reg.Get("/export"), []string{"pdf"}), &verr))
	assert.Equal(t, "pdf", verr.Got)

	assert.NoError(t, ValidateArgs(reg.Get("/export"), []string{"JSON", "x.json"}))
	assert.Error(t, ValidateArgs(reg.Get("/new"), []string{"extra"}))
}

// =============================================================================
// HANDLER TESTS
// =============================================================================

func TestExecute_Errors(t *testing.T) {
	s := newFakeSession()

	_, err := run(t, s, "hola")
	assert.True(t, errors.Is(err, ErrNotCommand))

	_, err = run(t, s, "/volar")
	var unknown *UnknownCommandError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "/volar", unknown.Name)
}

func TestConversationCommands(t *testing.T) {
	tests := []struct {
		input string
		call  string
		out   string
	}{
		{"/new", "create", "Nueva conversación creada."},
		{"/switch 2", "switch:200", "Conversación activa: Prácticas"},
		{"/delete", "delete:100", "Conversación eliminada: Matrícula"},
		{"/borrar 2", "delete:200", "Conversación eliminada: Prácticas"},
		{"/clear", "clear", "Se borraron todas las conversaciones."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := newFakeSession()
			res, err := run(t, s, tt.input)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.call}, s.calls)
			assert.Equal(t, tt.out, res.Output)
		})
	}
}

func TestSwitch_OutOfRange(t *testing.T) {
	s := newFakeSession()
	for _, in := range []string{"/switch 0", "/switch 3", "/switch dos"} {
		_, err := run(t, s, in)
		var cerr *CommandError
		assert.True(t, errors.As(err, &cerr), in)
	}
	assert.Empty(t, s.calls)
}

func TestDelete_PropagatesStoreError(t *testing.T) {
	s := newFakeSession()
	s.state.ActiveChatID = 999
	_, err := run(t, s, "/delete")
	assert.True(t, errors.Is(err, session.ErrChatNotFound))
}

func TestChats(t *testing.T) {
	res, err := run(t, newFakeSession(), "/chats")
	require.NoError(t, err)
	assert.Equal(t, "Conversaciones:\n  * 1. Matrícula (1 mensajes)\n    2. Prácticas (0 mensajes)", res.Output)
}

func TestStop(t *testing.T) {
	s := newFakeSession()
	res, err := run(t, s, "/stop")
	require.NoError(t, err)
	assert.Empty(t, s.calls)
	assert.NotEmpty(t, res.Output)

	s.state.Streaming = true
	_, err = run(t, s, "/stop")
	require.NoError(t, err)
	assert.Equal(t, []string{"stop"}, s.calls)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	s := newFakeSession()
	reg := NewRegistry()
	opts := export.DefaultOptions()
	opts.OutputDir = dir

	res, err := reg.Execute(&Context{Session: s, Export: opts}, "/export json "+filepath.Join(dir, "chat"))
	require.NoError(t, err)
	assert.Equal(t, "Exportado a "+filepath.Join(dir, "chat.json"), res.Output)
	_, err = os.Stat(filepath.Join(dir, "chat.json"))
	require.NoError(t, err)

	s.state.ActiveChatID = 200
	_, err = reg.Execute(&Context{Session: s, Export: opts}, "/export")
	var cerr *CommandError
	assert.True(t, errors.As(err, &cerr), "empty chat is a user-facing error")
}

func TestFlowCommands(t *testing.T) {
	s := newFakeSession()

	_, err := run(t, s, "/opcion 1")
	assert.True(t, errors.Is(err, ErrNotInFlow))

	_, err = run(t, s, "/guia")
	require.NoError(t, err)

	s.state.Flow = coordinator.FlowState{
		Active:  true,
		Options: []model.Option{{ID: "matricula", Label: "Matrícula"}, {ID: "practicas", Label: "Prácticas"}},
	}
	_, err = run(t, s, "/opcion 2")
	require.NoError(t, err)
	_, err = run(t, s, "/atras")
	require.NoError(t, err)
	_, err = run(t, s, "/reiniciar")
	require.NoError(t, err)
	_, err = run(t, s, "/libre")
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "pick:practicas:Prácticas", "back", "restart", "exit"}, s.calls)

	_, err = run(t, s, "/opcion 3")
	assert.Error(t, err)

	s.pick = false
	_, err = run(t, s, "/opcion 1")
	assert.True(t, errors.Is(err, ErrBusy))
}

func TestFlowCommands_NoOptionsLeft(t *testing.T) {
	s := newFakeSession()
	s.state.Flow = coordinator.FlowState{Active: true, Path: []string{"x"}}

	_, err := run(t, s, "/opcion 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/atras")
}

func TestFlowCommands_BusyGuard(t *testing.T) {
	s := newFakeSession()
	s.state.Typing = true

	for _, in := range []string{"/guia", "/atras", "/reiniciar"} {
		_, err := run(t, s, in)
		assert.True(t, errors.Is(err, ErrBusy), in)
	}
	assert.Empty(t, s.calls)
}

func TestHelp(t *testing.T) {
	res, err := run(t, newFakeSession(), "/help")
	require.NoError(t, err)
	assert.Contains(t, res.Output, "Conversaciones")
	assert.Contains(t, res.Output, "/switch <n>")
	assert.Contains(t, res.Output, "/opcion <n>")

	res, err = run(t, newFakeSession(), "/ayuda export")
	require.NoError(t, err)
	assert.Contains(t, res.Output, "Uso: /export [md|json] [archivo]")
}

func TestStatus(t *testing.T) {
	s := newFakeSession()
	s.state.Flow = coordinator.FlowState{Active: true, Path: []string{"academicas", "titulacion"}}

	res, err := run(t, s, "/status")
	require.NoError(t, err)
	assert.Contains(t, res.Output, "http://api [EN LÍNEA]")
	assert.Contains(t, res.Output, "opciones guiadas (academicas > titulacion)")
}

func TestQuit(t *testing.T) {
	s := newFakeSession()
	res, err := run(t, s, "/salir")
	require.NoError(t, err)
	assert.True(t, res.Quit)
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestCompleter_Commands(t *testing.T) {
	c := NewCompleter(NewRegistry(), nil)

	got := c.Complete("/sw")
	require.NotEmpty(t, got)
	assert.Equal(t, "/switch", got[0].Value)

	assert.Empty(t, c.Complete("hola"))
	assert.Equal(t, []string{"/reiniciar", "/restart"}, values(c.Complete("/re")))
}

func TestCompleter_Args(t *testing.T) {
	s := newFakeSession()
	s.state.Flow.Options = []model.Option{{ID: "a", Label: "Uno"}, {ID: "b", Label: "Dos"}}
	c := NewCompleter(NewRegistry(), s.State)

	assert.Equal(t, []string{"1", "2"}, values(c.Complete("/switch ")))
	assert.Equal(t, "Prácticas", c.Complete("/switch 2")[0].Description)
	assert.Equal(t, []string{"1", "2"}, values(c.Complete("/opcion ")))
	assert.Equal(t, []string{"json"}, values(c.Complete("/export j")))
	assert.Nil(t, c.Complete("/new "))
}

func TestCompleter_Lines(t *testing.T) {
	c := NewCompleter(NewRegistry(), nil)
	assert.Equal(t, []string{"/export json"}, c.Lines("/export js"))
	assert.Contains(t, c.Lines("/ex"), "/export")
}

func TestCompleter_Files(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.md"), nil, 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "salidas"), 0700))

	c := NewCompleter(NewRegistry(), nil)
	got := c.Complete("/export md " + dir + string(os.PathSeparator))
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "notas.md"),
		filepath.Join(dir, "salidas") + string(os.PathSeparator),
	}, values(got))
}

func values(cs []Completion) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Value
	}
	return out
}
