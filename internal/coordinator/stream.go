// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coordinator

import (
	"context"
	"strings"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/offline"
	"github.com/buhofis/buho-tui/internal/util"
)

const msgStreamServerError = "El servidor respondió con error."

// =============================================================================
// SENDING
// =============================================================================

// SendMessage posts a free-text question and starts streaming the answer
// into a placeholder message. It reports whether the question was sent; it
// is ignored for empty text, in guided-flow mode and while anything is in
// flight.
func (c *Coordinator) SendMessage(text string) bool {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if text == "" || c.inFlow || c.stream != nil || c.flowLoading {
		c.mu.Unlock()
		return false
	}
	chatID := c.store.ActiveID()
	c.appendLocked(chatID, model.NewUserMessage(text))
	placeholder := model.NewStreamingMessage()
	c.appendLocked(chatID, placeholder)
	c.input = ""
	c.inputRev++

	ctx, h := c.registerLocked(chatID, placeholder.ID, false)
	events := c.streamer.StreamRAG(ctx, api.RAGRequest{
		Question:      text,
		OptimizeQuery: c.opts.OptimizeQuery,
	})
	c.mu.Unlock()
	c.notify()

	c.log.Debug("coordinator", "stream started", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": placeholder.ID,
	})
	go c.consume(ctx, h, text, events)
	return true
}

// registerLocked makes a fresh stream handle current. A stale handle is
// cancelled first.
func (c *Coordinator) registerLocked(chatID int64, msgID string, simulated bool) (context.Context, *inflight) {
	c.stopLocked()
	ctx, cancel := context.WithCancel(c.baseCtx)
	h := &inflight{cancel: cancel, chatID: chatID, msgID: msgID, simulated: simulated}
	c.stream = h
	return ctx, h
}

// StopStreaming cancels the stream in flight, if any. The partial answer is
// kept. Calling it again, or with nothing in flight, does nothing.
func (c *Coordinator) StopStreaming() {
	c.mu.Lock()
	stopped := c.stopLocked()
	c.mu.Unlock()
	if stopped {
		c.notify()
	}
}

// stopLocked detaches and cancels the current handle. The consumer still
// applies the final Aborted mutation to its message.
func (c *Coordinator) stopLocked() bool {
	h := c.stream
	if h == nil {
		return false
	}
	c.stream = nil
	h.cancel()
	return true
}

// =============================================================================
// CONSUMING
// =============================================================================

// consume applies stream events to the handle's message in arrival order.
// After cancellation only the terminal mutation is applied.
func (c *Coordinator) consume(ctx context.Context, h *inflight, question string, events <-chan api.StreamEvent) {
	var acc strings.Builder
	for ev := range events {
		switch ev.Kind {
		case api.EventFragment:
			if ctx.Err() != nil {
				continue
			}
			acc.WriteString(ev.Text)
			content := acc.String()
			c.mutate(h, func(m *model.Message) { m.Content = content })

		case api.EventMetadata:
			if ctx.Err() != nil || !c.opts.ShowSources {
				continue
			}
			incoming := api.ExtractSources(ev.Meta, c.opts.APIBase)
			if len(incoming) == 0 {
				continue
			}
			c.mutate(h, func(m *model.Message) { m.Sources = model.MergeSources(m.Sources, incoming) })

		case api.EventDone:
			c.mutate(h, func(m *model.Message) { m.IsStreaming = false })
			c.release(h)
			if !h.simulated {
				c.markOnline()
			}
			return

		case api.EventAborted:
			c.aborted(h)
			return

		case api.EventFailed:
			if ctx.Err() != nil || offline.IsAbort(ev.Err) {
				c.aborted(h)
				return
			}
			if !h.simulated && offline.IsNetworkError(ev.Err) {
				c.simulate(h, question, ev.Err)
				return
			}
			c.failed(h, ev.Err)
			return
		}
	}

	// The producer closed without a terminal event.
	c.mutate(h, func(m *model.Message) { m.IsStreaming = false })
	c.release(h)
}

// mutate changes the handle's message and notifies views. The chat may
// have been deleted meanwhile; that is not an error.
func (c *Coordinator) mutate(h *inflight, fn func(*model.Message)) {
	if err := c.store.MutateMessage(h.chatID, h.msgID, fn); err != nil {
		c.log.Debug("coordinator", "stream target gone", map[string]interface{}{
			"chat_id":    h.chatID,
			"message_id": h.msgID,
		})
		return
	}
	c.notify()
}

// release clears h if it is still the current handle.
func (c *Coordinator) release(h *inflight) {
	c.mu.Lock()
	if c.stream == h {
		c.stream = nil
	}
	c.mu.Unlock()
	h.cancel()
	c.notify()
}

func (c *Coordinator) aborted(h *inflight) {
	c.mutate(h, func(m *model.Message) {
		m.IsStreaming = false
		m.Content = util.TrimRightSpace(m.Content)
	})
	c.release(h)
	c.log.Debug("coordinator", "stream aborted", map[string]interface{}{"message_id": h.msgID})
}

func (c *Coordinator) failed(h *inflight, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	c.mutate(h, func(m *model.Message) {
		m.IsStreaming = false
		m.Variant = model.VariantError
		m.Title = titleServerError
		m.Content = msgStreamServerError
		m.Detail = detail
	})
	c.release(h)
	c.log.Warn("coordinator", "stream failed", map[string]interface{}{"error": detail})
}

// simulate replaces a stream that failed at the network level with the
// offline responder, writing into the same message. The simulated stream
// becomes the current handle so StopStreaming cancels it too.
func (c *Coordinator) simulate(h *inflight, question string, cause error) {
	c.mu.Lock()
	if c.stream != h {
		// Stopped between the failure and now.
		c.mu.Unlock()
		c.aborted(h)
		return
	}
	c.markOfflineLocked(h.chatID)
	ctx, nh := c.registerLocked(h.chatID, h.msgID, true)
	events := c.simulator.Stream(ctx, question)
	c.mu.Unlock()

	c.log.Info("coordinator", "answering with simulated stream", map[string]interface{}{"error": cause.Error()})
	c.mutate(nh, func(m *model.Message) {
		m.Content = ""
		m.IsStreaming = true
	})
	c.consume(ctx, nh, question, events)
}
