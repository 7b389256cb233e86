// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring shared by the TUI and the chat REPL.

package cli

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/commands"
	"github.com/buhofis/buho-tui/internal/config"
	"github.com/buhofis/buho-tui/internal/coordinator"
	"github.com/buhofis/buho-tui/internal/export"
	"github.com/buhofis/buho-tui/internal/logging"
	"github.com/buhofis/buho-tui/internal/navigation"
	"github.com/buhofis/buho-tui/internal/offline"
	"github.com/buhofis/buho-tui/internal/session"
	"github.com/buhofis/buho-tui/internal/storage"
)

// App holds the collaborators of an interactive session.
type App struct {
	Config   *config.Config
	Log      logging.Logger
	Client   *api.Client
	Tabs     storage.TabStore
	Session  *session.Store
	Tree     *navigation.StaticSource
	Coord    *coordinator.Coordinator
	Registry *commands.Registry
	Export   *export.Options
}

// NewClient builds the backend client described by cfg.
func NewClient(cfg *config.Config, log logging.Logger) *api.Client {
	return api.NewClient(cfg.Backend.BaseURL).
		WithTimeout(cfg.Backend.Timeout()).
		WithLogger(log)
}

// LoadTree returns the bundled flow tree, replaced by navigation.tree_file
// when one is configured and loads cleanly.
func LoadTree(cfg *config.Config, log logging.Logger) (*navigation.StaticSource, error) {
	if log == nil {
		log = logging.NewNop()
	}
	tree, err := navigation.NewBundledSource()
	if err != nil {
		return nil, fmt.Errorf("bundled flow tree: %w", err)
	}
	if cfg.Navigation.TreeFile == "" {
		return tree, nil
	}
	if err := tree.LoadFile(cfg.Navigation.TreeFile); err != nil {
		log.Warn("cli", "flow tree file ignored", map[string]interface{}{
			"path":  cfg.Navigation.TreeFile,
			"error": err.Error(),
		})
	}
	return tree, nil
}

// NewApp wires storage, session, client and coordinator from cfg. The
// caller must Close the App.
func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.NewNop()
	}
	if err := offline.ValidateBaseURL(cfg.Backend.BaseURL); err != nil {
		return nil, &ConfigError{Action: "backend.base_url", Err: err}
	}

	tabs, err := storage.New(storage.Options{
		Kind:     cfg.Session.Storage,
		TabID:    cfg.Session.TabID,
		Dir:      cfg.Session.Dir,
		TTL:      cfg.Session.TTL(),
		RedisURL: cfg.Session.RedisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s session storage: %w", cfg.Session.Storage, err)
	}

	tree, err := LoadTree(cfg, log)
	if err != nil {
		tabs.Close()
		return nil, err
	}

	client := NewClient(cfg, log)
	store := session.Open(tabs, log)

	coord, err := coordinator.New(coordinator.Deps{
		Store:     store,
		Primary:   navigation.NewServerSource(client),
		Fallback:  tree,
		Streamer:  client,
		Simulator: offline.NewResponder(cfg.Offline.TokenInterval()),
		Pinger:    client,
		Tracker:   offline.NewTracker(),
		Log:       log,
	}, coordinator.Options{
		OptimizeQuery: cfg.Backend.OptimizeQuery,
		ShowSources:   cfg.UI.ShowSources,
		APIBase:       cfg.Backend.BaseURL,
		PingPath:      cfg.Backend.PingPath,
		PingInterval:  cfg.Backend.PingInterval(),
		PingTimeout:   cfg.Backend.PingTimeout(),
	})
	if err != nil {
		tabs.Close()
		return nil, err
	}

	log.Info("cli", "session ready", map[string]interface{}{
		"backend": cfg.Backend.BaseURL,
		"storage": cfg.Session.Storage,
		"chats":   store.Len(),
	})

	return &App{
		Config:   cfg,
		Log:      log,
		Client:   client,
		Tabs:     tabs,
		Session:  store,
		Tree:     tree,
		Coord:    coord,
		Registry: commands.NewRegistry(),
		Export:   export.DefaultOptions(),
	}, nil
}

// CommandContext returns the context slash commands run with.
func (a *App) CommandContext(ctx context.Context) *commands.Context {
	return &commands.Context{
		Ctx:      ctx,
		Session:  a.Coord,
		Registry: a.Registry,
		APIBase:  a.Config.Backend.BaseURL,
		Export:   a.Export,
	}
}

// Run supervises the background work until ctx is done: the liveness
// probe and, when enabled, the flow tree watcher.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Coord.Run(gctx)
	})

	if path := a.Config.Navigation.TreeFile; path != "" && a.Config.Navigation.Watch {
		g.Go(func() error {
			return a.Tree.Watch(gctx, path, navigation.DefaultWatchDebounce, a.Log)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Close stops in-flight work and releases the session storage.
func (a *App) Close() error {
	a.Coord.Close()
	return a.Tabs.Close()
}
