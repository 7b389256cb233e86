// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for the buho commands.
//
// Commands return errors; main decides how to display them and which exit
// code to use.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/config"
	"github.com/buhofis/buho-tui/internal/validate"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitInterrupted is the conventional code after Ctrl+C
	ExitInterrupted = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a malformed command line.
type UsageError struct {
	Message string
	Usage   string // optional usage line shown after the message
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewUsageError creates a UsageError.
func NewUsageError(message string) error {
	return &UsageError{Message: message}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(argName, usage string) error {
	return &UsageError{
		Message: fmt.Sprintf("falta el argumento %s", argName),
		Usage:   usage,
	}
}

// ConfigError wraps a failure to read, validate or write configuration.
type ConfigError struct {
	Action string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Action, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// errInterrupted is returned when the user cancels with Ctrl+C.
var errInterrupted = errors.New("interrumpido")

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	var inputErr *validate.InputError
	if errors.As(err, &inputErr) {
		return ExitUsageError
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	var valErrs config.ValidateErrors
	if errors.As(err, &valErrs) {
		return ExitConfigError
	}

	if api.IsNetwork(err) {
		return ExitNetworkError
	}
	if errors.Is(err, errInterrupted) || api.IsAbort(err) {
		return ExitInterrupted
	}

	return ExitGeneralError
}

// DisplayError writes err in the CLI's error format.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorColor.Sprint("[ERROR]"), err.Error())

	var usageErr *UsageError
	if errors.As(err, &usageErr) && usageErr.Usage != "" {
		fmt.Fprintf(w, "%s %s\n", dimColor.Sprint("Uso:"), usageErr.Usage)
	}
}
