// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/offline"
)

func TestStartFlowOnline(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.coord.StartFlow(ctx)

	st := h.coord.State()
	assert.True(t, st.Flow.Active)
	assert.Empty(t, st.Flow.Path)
	assert.Equal(t, model.DefaultFlowTitle, st.Flow.Title)
	assert.Equal(t, []model.Option{{ID: "matricula", Label: "Matrícula"}, {ID: "becas", Label: "Becas"}}, st.Flow.Options)
	assert.False(t, st.Flow.Loading)
	assert.Equal(t, model.ReachOnline, st.Backend)
	assert.Equal(t, msgSelectOption, h.last().Content)
}

func TestStartFlowOfflineUsesBundledTree(t *testing.T) {
	h := newHarness(t)
	h.primary.setErr(errNetwork)

	h.coord.StartFlow(context.Background())

	st := h.coord.State()
	assert.True(t, st.Flow.Active)
	assert.Equal(t, model.ReachOffline, st.Backend)
	require.Len(t, st.Flow.Options, 3)
	assert.Equal(t, "academicas", st.Flow.Options[0].ID)

	require.Len(t, st.Messages, 2)
	assert.Equal(t, offline.NoticeTitle, st.Messages[0].Title)
	assert.Equal(t, model.VariantInfo, st.Messages[0].Variant)
	assert.Equal(t, msgSelectOption, st.Messages[1].Content)

	// The notice appears once per session.
	h.coord.ExitFlow()
	h.coord.StartFlow(context.Background())
	notices := 0
	for _, m := range h.messages() {
		if m.Title == offline.NoticeTitle {
			notices++
		}
	}
	assert.Equal(t, 1, notices)
}

func TestStartFlowServerError(t *testing.T) {
	h := newHarness(t)
	h.primary.setErr(errServer)

	h.coord.StartFlow(context.Background())

	st := h.coord.State()
	assert.False(t, st.Flow.Active, "server errors do not enter the flow")
	msg := h.last()
	assert.Equal(t, model.VariantError, msg.Variant)
	assert.Equal(t, titleServerError, msg.Title)
	assert.Equal(t, msgRootServerError, msg.Content)
	assert.Equal(t, "HTTP 500: boom", msg.Detail)
	assert.NotEqual(t, model.ReachOffline, st.Backend)
}

func TestPickOptionOptionsNode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.coord.StartFlow(ctx)

	require.True(t, h.coord.PickOption(ctx, "matricula", "Matrícula"))

	st := h.coord.State()
	assert.Equal(t, []string{"matricula"}, st.Flow.Path)
	assert.Equal(t, "Matrícula", st.Flow.Title)
	assert.Equal(t, []model.Option{{ID: "fechas", Label: "Fechas"}}, st.Flow.Options)
	assert.True(t, h.last().IsUser())
	assert.Equal(t, "Matrícula", h.last().Content)
}

func TestPickOptionAnswerNode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.coord.StartFlow(ctx)
	h.coord.PickOption(ctx, "matricula", "Matrícula")

	require.True(t, h.coord.PickOption(ctx, "fechas", "Fechas"))

	st := h.coord.State()
	assert.Equal(t, []string{"matricula", "fechas"}, st.Flow.Path)
	assert.Empty(t, st.Flow.Options)
	msg := h.last()
	assert.Equal(t, "Del 1 al 15.", msg.Content)
	assert.Equal(t, "calendario.pdf", msg.FileName)
	assert.False(t, msg.FileMissing)
}

func TestPickOptionAnswerWithoutTextOrFile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.coord.StartFlow(ctx)

	h.coord.PickOption(ctx, "becas", "Becas")

	msg := h.last()
	assert.Equal(t, msgDone, msg.Content)
	assert.True(t, msg.FileMissing)
	assert.Empty(t, msg.FileName)
}

func TestPickOptionRequiresFlow(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.coord.PickOption(context.Background(), "matricula", "Matrícula"))
	assert.Empty(t, h.messages())
}

func TestPickOptionNetworkFallsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.primary.setErr(errNetwork)
	h.coord.StartFlow(ctx)

	require.True(t, h.coord.PickOption(ctx, "academicas", "Consultas académicas"))
	st := h.coord.State()
	assert.Equal(t, []string{"academicas"}, st.Flow.Path)
	assert.Equal(t, "Consultas académicas", st.Flow.Title)
	assert.Len(t, st.Flow.Options, 3)
}

func TestPickOptionServerErrorKeepsDeeperCursor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.coord.StartFlow(ctx)
	h.primary.setErr(errServer)

	require.True(t, h.coord.PickOption(ctx, "matricula", "Matrícula"))

	st := h.coord.State()
	assert.True(t, st.Flow.Active)
	assert.Equal(t, []string{"matricula"}, st.Flow.Path)
	assert.Empty(t, st.Flow.Options)
	msg := h.last()
	assert.Equal(t, titleServerError, msg.Title)
	assert.Equal(t, msgPickServerError, msg.Content)
}

func TestPickOptionIgnoredWhileLoading(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.coord.StartFlow(ctx)

	h.primary.mu.Lock()
	h.primary.gate = make(chan struct{})
	gate := h.primary.gate
	h.primary.mu.Unlock()

	done := make(chan bool)
	go func() { done <- h.coord.PickOption(ctx, "matricula", "Matrícula") }()
	require.Eventually(t, func() bool { return h.coord.State().Flow.Loading }, time.Second, time.Millisecond)

	assert.True(t, h.coord.State().Typing)
	assert.False(t, h.coord.PickOption(ctx, "becas", "Becas"), "re-entrant pick is rejected")

	close(gate)
	assert.True(t, <-done)
	assert.Equal(t, []string{"matricula"}, h.coord.State().Flow.Path)
}

func TestBackFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.primary.setErr(errNetwork)
	h.coord.StartFlow(ctx)
	h.coord.PickOption(ctx, "academicas", "Consultas académicas")
	h.coord.PickOption(ctx, "titulacion", "Titulación")
	require.Equal(t, []string{"academicas", "titulacion"}, h.coord.State().Flow.Path)

	h.coord.BackFlow(ctx)
	st := h.coord.State()
	assert.Equal(t, []string{"academicas"}, st.Flow.Path)
	assert.Len(t, st.Flow.Options, 3)
	assert.Equal(t, "Consultas académicas", st.Flow.Title)

	h.coord.BackFlow(ctx)
	st = h.coord.State()
	assert.Empty(t, st.Flow.Path)
	assert.Equal(t, model.DefaultFlowTitle, st.Flow.Title)
	assert.Len(t, st.Flow.Options, 3)
}

func TestBackFlowEmptyCursorStartsFlow(t *testing.T) {
	h := newHarness(t)
	h.coord.BackFlow(context.Background())

	st := h.coord.State()
	assert.True(t, st.Flow.Active)
	assert.Equal(t, msgSelectOption, h.last().Content)
}

func TestBackFlowServerErrorKeepsCursor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.coord.StartFlow(ctx)
	h.coord.PickOption(ctx, "matricula", "Matrícula")
	h.primary.setErr(errServer)

	h.coord.BackFlow(ctx)

	st := h.coord.State()
	assert.Equal(t, []string{"matricula"}, st.Flow.Path)
	assert.Equal(t, msgBackServerError, h.last().Content)
}

func TestExitFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.coord.StartFlow(ctx)
	h.coord.PickOption(ctx, "matricula", "Matrícula")

	h.coord.ExitFlow()

	st := h.coord.State()
	assert.False(t, st.Flow.Active)
	assert.Empty(t, st.Flow.Path)
	assert.Empty(t, st.Flow.Options)
	msg := h.last()
	assert.Equal(t, model.VariantInfo, msg.Variant)
	assert.Equal(t, titleFreeText, msg.Title)
	assert.Equal(t, msgFreeText, msg.Content)
}

func TestSwitchChatDiscardsStaleFlowResult(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.coord.State().ActiveChatID

	h.primary.mu.Lock()
	h.primary.gate = make(chan struct{})
	gate := h.primary.gate
	h.primary.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.coord.StartFlow(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return h.coord.State().Flow.Loading }, time.Second, time.Millisecond)

	second := h.coord.CreateChat()
	assert.False(t, h.coord.State().Flow.Loading)
	close(gate)
	<-done

	st := h.coord.State()
	assert.Equal(t, second.ID, st.ActiveChatID)
	assert.False(t, st.Flow.Active, "stale root must not re-enter the flow")
	assert.Empty(t, st.Messages)
	old, _ := h.store.Chat(first)
	assert.Empty(t, old.Messages)
}
