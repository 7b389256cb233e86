// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for buho.
//
// Supports TOML, JSON and YAML configuration files, with sensible defaults,
// .env files, environment variable overrides, and struct-tag validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: RAG backend origin, timeouts and liveness probing
//   - SessionConfig: Tab store selection (memory, file, redis)
//   - ValidateErrors: Field-level validation failures
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (BUHO_*)
//   - .env in the working directory, then ~/.buho/.env
//   - ~/.buho/config.toml
//   - ~/.buho/config.json
//   - ~/.buho/config.yaml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	base := cfg.Backend.BaseURL
//	ttl := cfg.Session.TTL()
package config
