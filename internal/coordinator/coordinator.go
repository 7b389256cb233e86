// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/logging"
	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/navigation"
	"github.com/buhofis/buho-tui/internal/offline"
	"github.com/buhofis/buho-tui/internal/session"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Streamer opens an answer stream for a free-text question.
type Streamer interface {
	StreamRAG(ctx context.Context, req api.RAGRequest) <-chan api.StreamEvent
}

// Simulator produces a canned answer stream when the backend is unreachable.
type Simulator interface {
	Stream(ctx context.Context, question string) <-chan api.StreamEvent
}

// Pinger checks backend liveness. It never fails; false means unreachable.
type Pinger interface {
	Ping(ctx context.Context, path string, timeout time.Duration) bool
}

// Deps are the collaborators of a Coordinator. Store, Primary, Fallback,
// Streamer and Simulator are required.
type Deps struct {
	Store     *session.Store
	Primary   navigation.Source
	Fallback  navigation.Source
	Streamer  Streamer
	Simulator Simulator
	Pinger    Pinger
	Tracker   *offline.Tracker
	Log       logging.Logger
}

// Options tune coordinator behaviour.
type Options struct {
	// OptimizeQuery is sent with every RAG request.
	OptimizeQuery bool
	// ShowSources controls whether metadata events attach sources.
	ShowSources bool
	// APIBase resolves relative source download links.
	APIBase string

	PingPath     string
	PingInterval time.Duration
	PingTimeout  time.Duration
}

// Liveness probe defaults.
const (
	DefaultPingPath     = "/health"
	DefaultPingInterval = 25 * time.Second
	DefaultPingTimeout  = 3500 * time.Millisecond
)

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		OptimizeQuery: true,
		ShowSources:   true,
		APIBase:       api.DefaultBaseURL,
		PingPath:      DefaultPingPath,
		PingInterval:  DefaultPingInterval,
		PingTimeout:   DefaultPingTimeout,
	}
}

// =============================================================================
// STATE SNAPSHOT
// =============================================================================

// FlowState describes the guided flow as shown to the user.
type FlowState struct {
	// Active is true in guided-flow mode, false in free-text mode.
	Active  bool
	Path    []string
	Options []model.Option
	Title   string
	Loading bool
}

// State is an immutable snapshot for rendering.
type State struct {
	ActiveChatID int64
	Chats        []model.Chat
	// Messages of the active chat.
	Messages []model.Message

	// Input is the pending text of the input box. InputRev changes whenever
	// the coordinator replaces it, so views know when to overwrite their
	// own buffer.
	Input    string
	InputRev uint64

	// Typing is true while a flow request or a stream is in flight.
	Typing    bool
	Streaming bool

	Flow    FlowState
	Backend model.Reachability
}

// =============================================================================
// COORDINATOR
// =============================================================================

// inflight is the handle of the one active answer stream.
type inflight struct {
	cancel    context.CancelFunc
	chatID    int64
	msgID     string
	simulated bool
}

// Coordinator drives the chat: guided flow navigation, free-text streaming
// and backend reachability. All methods are safe for concurrent use. Flow
// operations block on the network and are meant to run off the UI
// goroutine.
type Coordinator struct {
	mu sync.Mutex

	store     *session.Store
	primary   navigation.Source
	fallback  navigation.Source
	streamer  Streamer
	simulator Simulator
	pinger    Pinger
	tracker   *offline.Tracker
	log       logging.Logger
	opts      Options

	// Flow cursor. path is meaningful only while inFlow is set.
	inFlow      bool
	path        []string
	options     []model.Option
	title       string
	flowLoading bool
	// flowGen changes on every reset; flow results from an older
	// generation are dropped.
	flowGen uint64

	input    string
	inputRev uint64

	stream *inflight

	baseCtx    context.Context
	baseCancel context.CancelFunc
	updates    chan struct{}
}

// ErrMissingDependency is returned by New when a required collaborator is
// nil.
var ErrMissingDependency = errors.New("coordinator: missing required dependency")

// New creates a Coordinator. Zero durations in opts fall back to the
// defaults.
func New(deps Deps, opts Options) (*Coordinator, error) {
	if deps.Store == nil || deps.Primary == nil || deps.Fallback == nil ||
		deps.Streamer == nil || deps.Simulator == nil {
		return nil, ErrMissingDependency
	}
	if deps.Tracker == nil {
		deps.Tracker = offline.NewTracker()
	}
	if deps.Log == nil {
		deps.Log = logging.NewNop()
	}
	if opts.PingPath == "" {
		opts.PingPath = DefaultPingPath
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = DefaultPingTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		store:      deps.Store,
		primary:    deps.Primary,
		fallback:   deps.Fallback,
		streamer:   deps.Streamer,
		simulator:  deps.Simulator,
		pinger:     deps.Pinger,
		tracker:    deps.Tracker,
		log:        deps.Log,
		opts:       opts,
		baseCtx:    ctx,
		baseCancel: cancel,
		updates:    make(chan struct{}, 1),
	}, nil
}

// Close stops any stream and cancels background work.
func (c *Coordinator) Close() {
	c.StopStreaming()
	c.baseCancel()
}

// Updates signals that State changed. Signals coalesce: one pending
// notification stands for any number of changes.
func (c *Coordinator) Updates() <-chan struct{} {
	return c.updates
}

func (c *Coordinator) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// State returns a snapshot of everything a view needs.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	chats := c.store.Chats()
	st := State{
		ActiveChatID: c.store.ActiveID(),
		Chats:        chats,
		Input:        c.input,
		InputRev:     c.inputRev,
		Typing:       c.flowLoading || c.stream != nil,
		Streaming:    c.stream != nil,
		Backend:      c.tracker.State(),
		Flow: FlowState{
			Active:  c.inFlow,
			Path:    append([]string(nil), c.path...),
			Options: append([]model.Option(nil), c.options...),
			Title:   c.title,
			Loading: c.flowLoading,
		},
	}
	for _, ch := range chats {
		if ch.ID == st.ActiveChatID {
			st.Messages = ch.Messages
			break
		}
	}
	return st
}

// Backend returns the current reachability.
func (c *Coordinator) Backend() model.Reachability {
	return c.tracker.State()
}

// =============================================================================
// CHAT MANAGEMENT
// =============================================================================

// resetLocked stops the stream, leaves the guided flow silently and clears
// the pending input. Any flow request still running becomes stale.
func (c *Coordinator) resetLocked() {
	c.stopLocked()
	c.inFlow = false
	c.path = nil
	c.options = nil
	c.title = ""
	c.flowLoading = false
	c.flowGen++
	c.input = ""
	c.inputRev++
}

// CreateChat starts a new chat and makes it active.
func (c *Coordinator) CreateChat() model.Chat {
	c.mu.Lock()
	c.resetLocked()
	chat := c.store.CreateChat()
	c.mu.Unlock()

	c.notify()
	return chat
}

// SwitchChat makes another chat active.
func (c *Coordinator) SwitchChat(id int64) error {
	c.mu.Lock()
	if _, ok := c.store.Chat(id); !ok {
		c.mu.Unlock()
		return session.ErrChatNotFound
	}
	c.resetLocked()
	err := c.store.SwitchActive(id)
	c.mu.Unlock()

	c.notify()
	return err
}

// DeleteChat removes a chat. The store picks the next active chat.
func (c *Coordinator) DeleteChat(id int64) error {
	c.mu.Lock()
	if _, ok := c.store.Chat(id); !ok {
		c.mu.Unlock()
		return session.ErrChatNotFound
	}
	c.resetLocked()
	err := c.store.DeleteChat(id)
	c.mu.Unlock()

	c.notify()
	return err
}

// ClearAll removes every chat.
func (c *Coordinator) ClearAll() {
	c.mu.Lock()
	c.resetLocked()
	c.store.ClearAll()
	c.mu.Unlock()

	c.notify()
}

// =============================================================================
// PENDING INPUT
// =============================================================================

// SetInput records what the user is typing. It does not bump InputRev.
func (c *Coordinator) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// Prefill stops the stream, leaves the guided flow without a message and
// puts text into the input box.
func (c *Coordinator) Prefill(text string) {
	c.mu.Lock()
	c.resetLocked()
	c.input = text
	c.mu.Unlock()

	c.notify()
}

// =============================================================================
// HELPERS
// =============================================================================

// appendLocked adds a message to a chat. A missing chat means it was
// deleted while a request ran; the message is dropped.
func (c *Coordinator) appendLocked(chatID int64, msg model.Message) {
	if err := c.store.AppendMessage(chatID, msg); err != nil {
		c.log.Debug("coordinator", "dropping message for missing chat", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
	}
}

// markOfflineLocked records a network failure and posts the offline notice
// the first time it happens.
func (c *Coordinator) markOfflineLocked(chatID int64) {
	if c.tracker.MarkOffline() {
		c.log.Warn("coordinator", "backend unreachable, switching to offline mode", nil)
		c.appendLocked(chatID, model.NewNotice(model.VariantInfo, offline.NoticeTitle, offline.NoticeContent))
	}
}

func (c *Coordinator) markOnline() {
	if c.tracker.MarkOnline() {
		c.log.Info("coordinator", "backend reachable", nil)
	}
}
