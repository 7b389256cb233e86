// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"errors"
	"net"
	"regexp"

	"github.com/buhofis/buho-tui/internal/api"
)

// networkPattern matches transport failures that reach us only as text,
// for instance through a proxy that rewrites errors.
var networkPattern = regexp.MustCompile(`(?i)failed to fetch|networkerror|err_network|fetch failed|connection refused|no such host|connection reset`)

// IsNetworkError reports whether err means the backend could not be
// reached, as opposed to the backend answering with an error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if api.IsNetwork(err) {
		return true
	}
	if api.IsHTTP(err) || api.IsAbort(err) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return networkPattern.MatchString(err.Error())
}

// IsAbort reports whether err is a user cancellation.
func IsAbort(err error) bool {
	return api.IsAbort(err)
}
