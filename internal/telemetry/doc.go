// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry wires OpenTelemetry tracing for buho.
//
// The API client and the mock backend create spans through the global
// tracer provider; this package installs a real provider exporting over
// OTLP/HTTP when telemetry is enabled.
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, cfg.Telemetry, log)
//	if err != nil {
//	    log.Warn("telemetry", "tracing unavailable", map[string]interface{}{"error": err})
//	}
//	defer shutdown(context.Background())
package telemetry
