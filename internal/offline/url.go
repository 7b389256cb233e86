// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURLScheme is returned for backend URLs that are not http(s).
var ErrInvalidURLScheme = errors.New("only http and https backend URLs are allowed")

// ErrMissingHost is returned for backend URLs without a host.
var ErrMissingHost = errors.New("backend URL has no host")

// ValidateBaseURL checks that raw is an absolute http or https URL.
// SECURITY: rejects file://, javascript: and other schemes before any
// request is built from user configuration.
func ValidateBaseURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrInvalidURLScheme
	}
	if parsed.Hostname() == "" {
		return ErrMissingHost
	}
	return nil
}
