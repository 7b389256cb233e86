// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validate checks free-text questions before they reach the
// backend.
//
// Input rejects empty or overlong text, markup and a short list of
// blocked words. Rejections are *InputError values whose Message is the
// Spanish text shown under the input box.
//
// # Usage
//
//	text, err := validate.Input(raw, state.Flow.Active)
//	var inErr *validate.InputError
//	if errors.As(err, &inErr) && !inErr.Silent() {
//	    showError(inErr.Message)
//	}
package validate
