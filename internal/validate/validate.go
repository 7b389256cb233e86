// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package validate

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// MaxInputRunes is the longest question the chat accepts.
const MaxInputRunes = 1000

// BlockedWords are matched case-insensitively anywhere in the input.
var BlockedWords = []string{"muerte", "no sirves", "joder", "tonto"}

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
)

// =============================================================================
// ERRORS
// =============================================================================

// InputError is a rejected input. Message is shown to the user as is.
type InputError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return e.Message
}

// Is implements errors.Is support by comparing codes.
func (e *InputError) Is(target error) bool {
	t, ok := target.(*InputError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Silent reports whether the rejection should not be shown to the user.
// Empty input is simply not sent.
func (e *InputError) Silent() bool {
	return e.Code == ErrEmpty.Code
}

var (
	ErrEmpty      = &InputError{Code: "empty", Message: "Escribe una pregunta."}
	ErrTooLong    = &InputError{Code: "too_long", Message: "Tu mensaje supera los 1000 caracteres. Acórtalo, por favor."}
	ErrFlowActive = &InputError{Code: "flow_active", Message: "Estás en opciones guiadas. Usa los botones de arriba o presiona “Chat libre”."}
	ErrDisallowed = &InputError{Code: "disallowed", Message: "El contenido de tu mensaje no está permitido. Reformúlalo."}
	ErrLanguage   = &InputError{Code: "language", Message: "Tu mensaje contiene lenguaje no permitido. Por favor reformúlalo."}
	ErrFormat     = &InputError{Code: "format", Message: "Tu mensaje contiene caracteres o formato no permitido. Por favor reformúlalo."}
)

// =============================================================================
// VALIDATION
// =============================================================================

// Input checks a free-text question before it is sent and returns the text
// to send. flowActive rejects typing while guided options are shown.
func Input(text string, flowActive bool) (string, error) {
	if flowActive {
		return "", ErrFlowActive
	}

	text = norm.NFC.String(text)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmpty
	}
	if len([]rune(text)) > MaxInputRunes {
		return "", ErrTooLong
	}

	sanitized := Sanitize(text)
	if sanitized == "" {
		return "", ErrDisallowed
	}
	if ContainsBlocked(sanitized) {
		return "", ErrLanguage
	}
	if sanitized != trimmed {
		return "", ErrFormat
	}
	return sanitized, nil
}

// Sanitize removes script blocks and markup tags and trims the result.
func Sanitize(text string) string {
	text = scriptBlockRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ContainsBlocked reports whether text contains a blocked word, ignoring
// case.
func ContainsBlocked(text string) bool {
	// cases.Caser is stateful; a fresh one per call keeps this goroutine safe.
	folded := cases.Fold().String(text)
	for _, w := range BlockedWords {
		if strings.Contains(folded, cases.Fold().String(w)) {
			return true
		}
	}
	return false
}
