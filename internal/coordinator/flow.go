// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coordinator

import (
	"context"
	"strings"

	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/navigation"
	"github.com/buhofis/buho-tui/internal/offline"
)

// Messages posted by the guided flow.
const (
	msgSelectOption = "Selecciona una opción para continuar."
	msgDone         = "Listo."

	titleServerError  = "Error del servidor"
	titleNetworkError = "Error de conexión"

	msgRootServerError = "El servidor respondió con error al cargar las opciones guiadas."
	msgRootNetError    = "No pude conectarme al servidor para cargar las opciones guiadas.\nRevisa tu conexión o la URL del backend."
	msgPickServerError = "El servidor respondió con error al completar esa consulta."
	msgPickNetError    = "No pude conectarme al servidor para completar esa consulta.\nRevisa tu conexión o la URL del backend."
	msgBackServerError = "El servidor respondió con error al volver atrás en el flujo."
	msgBackNetError    = "No pude conectarme al servidor para volver atrás en el flujo.\nRevisa tu conexión o la URL del backend."

	titleFreeText = "Modo chat libre"
	msgFreeText   = "Has salido de las opciones guiadas. Puedes escribir tu pregunta."
)

// =============================================================================
// RESOLUTION
// =============================================================================

// resolution is the outcome of asking the primary source, and the fallback
// when the primary was unreachable.
type resolution struct {
	node model.FlowNode
	err  error
	// offline is set when the primary failed at the network level.
	offline bool
}

// resolve fetches the node at path: the root for an empty path. Network
// failures fall back to the bundled tree; server errors do not.
func (c *Coordinator) resolve(ctx context.Context, path []string) resolution {
	node, err := fetch(ctx, c.primary, path)
	if err == nil {
		return resolution{node: node}
	}
	if offline.IsAbort(err) || ctx.Err() != nil || !offline.IsNetworkError(err) {
		return resolution{err: err}
	}

	c.log.Debug("coordinator", "navigation falling back to bundled tree", map[string]interface{}{
		"path":  strings.Join(path, "/"),
		"error": err.Error(),
	})
	node, err = fetch(ctx, c.fallback, path)
	return resolution{node: node, err: err, offline: true}
}

func fetch(ctx context.Context, src navigation.Source, path []string) (model.FlowNode, error) {
	if len(path) == 0 {
		return src.Root(ctx)
	}
	return src.Next(ctx, path)
}

// beginFlowLocked marks a flow request in flight and returns its
// generation.
func (c *Coordinator) beginFlowLocked() uint64 {
	c.flowLoading = true
	return c.flowGen
}

// finishFlowLocked applies reachability from res and reports whether the
// result is still current. Stale results only update reachability.
func (c *Coordinator) finishFlowLocked(gen uint64, chatID int64, res resolution) bool {
	if gen != c.flowGen {
		if res.offline {
			c.tracker.Observe(false)
		}
		return false
	}
	c.flowLoading = false
	switch {
	case res.offline:
		c.markOfflineLocked(chatID)
	case res.err == nil:
		c.markOnline()
	}
	return true
}

func isAbort(ctx context.Context, err error) bool {
	return offline.IsAbort(err) || ctx.Err() != nil
}

// flowErrorLocked posts the error for a failed flow step. A network error here
// means even the bundled tree could not answer.
func (c *Coordinator) flowErrorLocked(chatID int64, err error, res resolution, serverMsg, netMsg string) {
	title, content := titleServerError, serverMsg
	if res.offline || offline.IsNetworkError(err) {
		title, content = titleNetworkError, netMsg
	}
	c.log.Warn("coordinator", "guided flow request failed", map[string]interface{}{"error": err.Error()})
	c.appendLocked(chatID, model.NewErrorMessage(title, content, err.Error()))
}

// =============================================================================
// FLOW OPERATIONS
// =============================================================================

// StartFlow enters guided-flow mode at the root. It is ignored while a flow
// request or a stream is in flight.
func (c *Coordinator) StartFlow(ctx context.Context) {
	c.mu.Lock()
	if c.flowLoading || c.stream != nil {
		c.mu.Unlock()
		return
	}
	gen := c.beginFlowLocked()
	chatID := c.store.ActiveID()
	c.mu.Unlock()
	c.notify()

	res := c.resolve(ctx, nil)

	c.mu.Lock()
	defer c.notify()
	defer c.mu.Unlock()
	if !c.finishFlowLocked(gen, chatID, res) {
		return
	}
	if res.err != nil {
		if !isAbort(ctx, res.err) {
			c.flowErrorLocked(chatID, res.err, res, msgRootServerError, msgRootNetError)
		}
		return
	}

	c.inFlow = true
	c.path = []string{}
	c.title = model.DefaultFlowTitle
	c.options = append([]model.Option(nil), res.node.Options...)
	c.appendLocked(chatID, model.NewBotMessage(msgSelectOption))
}

// RestartFlow goes back to the root of the guided flow.
func (c *Coordinator) RestartFlow(ctx context.Context) {
	c.StartFlow(ctx)
}

// PickOption selects an offered option. It reports whether the pick was
// accepted: it requires guided-flow mode and no request in flight.
func (c *Coordinator) PickOption(ctx context.Context, id, label string) bool {
	c.mu.Lock()
	if !c.inFlow || c.flowLoading || c.stream != nil {
		c.mu.Unlock()
		return false
	}
	chatID := c.store.ActiveID()
	c.appendLocked(chatID, model.NewUserMessage(label))
	newPath := append(append([]string(nil), c.path...), id)
	gen := c.beginFlowLocked()
	c.mu.Unlock()
	c.notify()

	res := c.resolve(ctx, newPath)

	c.mu.Lock()
	defer c.notify()
	defer c.mu.Unlock()
	if !c.finishFlowLocked(gen, chatID, res) {
		return true
	}
	if res.err != nil {
		if isAbort(ctx, res.err) {
			return true
		}
		// The cursor is not rolled back; the user backs out or restarts.
		c.path = newPath
		c.options = nil
		c.flowErrorLocked(chatID, res.err, res, msgPickServerError, msgPickNetError)
		return true
	}

	node := res.node
	c.path = newPath
	c.title = node.TitleOrDefault()
	if !node.IsAnswer() {
		c.options = append([]model.Option(nil), node.Options...)
		return true
	}

	c.options = nil
	answer := node.Answer
	if answer == "" {
		answer = msgDone
	}
	msg := model.NewBotMessage(answer)
	msg.FileName = strings.TrimSpace(node.FileName)
	msg.FileMissing = msg.FileName == ""
	c.appendLocked(chatID, msg)
	return true
}

// BackFlow moves the cursor one level up. With an empty cursor, or outside
// guided-flow mode, it behaves like StartFlow.
func (c *Coordinator) BackFlow(ctx context.Context) {
	c.mu.Lock()
	if c.flowLoading || c.stream != nil {
		c.mu.Unlock()
		return
	}
	if !c.inFlow || len(c.path) == 0 {
		c.mu.Unlock()
		c.StartFlow(ctx)
		return
	}
	chatID := c.store.ActiveID()
	newPath := append([]string(nil), c.path[:len(c.path)-1]...)
	gen := c.beginFlowLocked()
	c.mu.Unlock()
	c.notify()

	res := c.resolve(ctx, newPath)

	c.mu.Lock()
	defer c.notify()
	defer c.mu.Unlock()
	if !c.finishFlowLocked(gen, chatID, res) {
		return
	}
	if res.err != nil {
		if !isAbort(ctx, res.err) {
			c.flowErrorLocked(chatID, res.err, res, msgBackServerError, msgBackNetError)
		}
		return
	}

	c.path = newPath
	c.options = append([]model.Option(nil), res.node.Options...)
	if len(newPath) == 0 {
		c.title = model.DefaultFlowTitle
	} else {
		c.title = res.node.TitleOrDefault()
	}
}

// ExitFlow returns to free-text mode and says so in the chat.
func (c *Coordinator) ExitFlow() {
	c.mu.Lock()
	c.inFlow = false
	c.path = nil
	c.options = nil
	c.title = ""
	c.flowLoading = false
	c.flowGen++
	c.appendLocked(c.store.ActiveID(), model.NewNotice(model.VariantInfo, titleFreeText, msgFreeText))
	c.mu.Unlock()

	c.notify()
}
