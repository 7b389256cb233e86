// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration command handler for buho.
//
// Command: config [subcommand]
// Short:   Consulta y modifica la configuración
// Aliases: cfg
//
// Subcommands:
//   show (default)      Print the effective configuration
//   path                Print the config file path
//   init [--force]      Write a default config.toml
//   keys                List the settable keys
//   get <key>           Print one value
//   set <key> <value>   Change one value and save
//
// Examples:
//   buho config set backend.base_url http://localhost:9000
//   buho config get ui.theme

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/buhofis/buho-tui/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(cfg *config.Config, args Args, out io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		fmt.Fprintln(out, cfg.String())
		return nil
	case "path":
		return configPath(args, out)
	case "init":
		return configInit(args, out)
	case "keys":
		for _, k := range config.Keys() {
			fmt.Fprintln(out, k)
		}
		return nil
	case "get":
		return configGet(cfg, args, out)
	case "set":
		return configSet(cfg, args, out)
	default:
		return &UsageError{
			Message: fmt.Sprintf("subcomando desconocido: %s", args.Subcommand),
			Usage:   "buho config [show|path|init|keys|get|set]",
		}
	}
}

func targetPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return "", &ConfigError{Action: "path", Err: err}
	}
	return path, nil
}

func configPath(args Args, out io.Writer) error {
	path, err := targetPath(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, path)
	return nil
}

func configInit(args Args, out io.Writer) error {
	path, err := targetPath(args)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil && !args.Force {
		return &UsageError{
			Message: fmt.Sprintf("%s ya existe", path),
			Usage:   "buho config init --force",
		}
	}
	if args.ConfigPath == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return &ConfigError{Action: "init", Err: err}
		}
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return &ConfigError{Action: "init", Err: err}
	}
	fmt.Fprintf(out, "%s %s\n", successColor.Sprint("Creado"), path)
	return nil
}

func configGet(cfg *config.Config, args Args, out io.Writer) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("clave", "buho config get <clave>")
	}
	v, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return &ConfigError{Action: "get", Err: err}
	}
	fmt.Fprintln(out, v)
	return nil
}

func configSet(cfg *config.Config, args Args, out io.Writer) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("clave y valor", "buho config set <clave> <valor>")
	}

	// Work on a copy so a rejected value never reaches the file.
	next := cfg.Clone()
	if err := next.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return &ConfigError{Action: "set", Err: err}
	}
	if err := next.Validate(); err != nil {
		var valErrs config.ValidateErrors
		if errors.As(err, &valErrs) {
			return err
		}
		return &ConfigError{Action: "set", Err: err}
	}

	path, err := targetPath(args)
	if err != nil {
		return err
	}
	if args.ConfigPath == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return &ConfigError{Action: "set", Err: err}
		}
	}
	if err := config.SaveTOML(next, path); err != nil {
		return &ConfigError{Action: "set", Err: err}
	}
	*cfg = *next

	fmt.Fprintf(out, "%s = %v\n", keyColor.Sprint(args.ConfigKey), args.ConfigVal)
	return nil
}
