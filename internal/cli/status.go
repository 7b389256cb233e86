// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command handler for buho.
//
// Command: status
// Short:   Muestra la configuración activa y prueba el backend
// Aliases: s
//
// Exits with code 5 when the backend does not answer.

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/config"
	"github.com/buhofis/buho-tui/internal/logging"
	"github.com/buhofis/buho-tui/internal/model"
)

// HandleStatus prints where buho reads its settings from and probes the
// backend once.
func HandleStatus(ctx context.Context, cfg *config.Config, log logging.Logger, args Args, out io.Writer) error {
	cfgPath := args.ConfigPath
	if cfgPath == "" {
		if p, err := config.ConfigPathTOML(); err == nil {
			cfgPath = p
		}
	}
	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = config.DefaultLogFile()
	}
	tabID := cfg.Session.TabID
	if tabID == "" {
		tabID = "(automático)"
	}

	fmt.Fprintln(out, titleColor.Sprint("buho "+Version))
	fmt.Fprintln(out, RenderSeparator(40))
	printField(out, "Configuración", cfgPath)
	printField(out, "Backend", cfg.Backend.BaseURL)
	printField(out, "Almacenamiento", cfg.Session.Storage)
	printField(out, "Pestaña", tabID)
	printField(out, "Registro", logFile)

	client := NewClient(cfg, log)
	start := time.Now()
	ok := client.Ping(ctx, cfg.Backend.PingPath, cfg.Backend.PingTimeout())
	latency := time.Since(start).Round(time.Millisecond)

	reach := model.ReachOffline
	if ok {
		reach = model.ReachOnline
	}
	printField(out, "Estado", fmt.Sprintf("%s %s", RenderBadge(reach), dimColor.Sprint(latency)))

	if !ok {
		return &api.NetworkError{
			Op:  "ping",
			URL: cfg.Backend.BaseURL + cfg.Backend.PingPath,
			Err: fmt.Errorf("sin respuesta en %s", cfg.Backend.PingTimeout()),
		}
	}
	return nil
}
