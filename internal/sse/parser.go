// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// STREAMING: Relaxed SSE parsing over arbitrarily split byte chunks.

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// EventMessage is the name given to frames without an event: line.
	EventMessage = "message"

	// EventDone is the terminal event. A frame named "done" or carrying the
	// [DONE] sentinel is reported under this name.
	EventDone = "done"

	// DoneSentinel is the data payload that ends a stream early.
	DoneSentinel = "[DONE]"

	frameSeparator = "\n\n"
)

// =============================================================================
// EVENT
// =============================================================================

// Event is one parsed frame.
type Event struct {
	Name string
	Data string
}

// IsDone returns true for the terminal event.
func (e Event) IsDone() bool {
	return e.Name == EventDone
}

// =============================================================================
// PARSER
// =============================================================================

// Parser turns a sequence of byte chunks into events. Chunk boundaries may
// fall anywhere, including inside a multi-byte rune or between \r and \n.
// A Parser is not safe for concurrent use.
type Parser struct {
	decoder *encoding.Decoder
	pending []byte // undecoded tail, at most one incomplete rune
	buf     string // decoded text not yet split into frames
	done    bool
}

// NewParser creates a parser with an empty buffer.
func NewParser() *Parser {
	return &Parser{decoder: unicode.UTF8.NewDecoder()}
}

// Done reports whether the terminal event has been emitted.
func (p *Parser) Done() bool {
	return p.done
}

// Feed consumes chunk and returns the events completed by it. After the
// terminal event Feed returns nil.
func (p *Parser) Feed(chunk []byte) []Event {
	if p.done {
		return nil
	}
	p.append(p.decode(chunk, false))
	return p.drain(false)
}

// Flush is called at end of input. It decodes any held-back bytes and
// parses a final frame that was not followed by a blank line.
func (p *Parser) Flush() []Event {
	if p.done {
		return nil
	}
	p.append(p.decode(nil, true))
	return p.drain(true)
}

func (p *Parser) append(text string) {
	if text == "" {
		return
	}
	// A \r held at the end of buf pairs with a \n at the start of text.
	p.buf = strings.ReplaceAll(p.buf+text, "\r\n", "\n")
}

func (p *Parser) drain(atEOF bool) []Event {
	var events []Event
	for !p.done {
		idx := strings.Index(p.buf, frameSeparator)
		var frame string
		if idx >= 0 {
			frame = p.buf[:idx]
			p.buf = p.buf[idx+len(frameSeparator):]
		} else if atEOF && strings.TrimSpace(p.buf) != "" {
			frame = p.buf
			p.buf = ""
		} else {
			break
		}

		ev, ok := parseFrame(frame)
		if !ok {
			continue
		}
		if ev.Name == EventDone || ev.Data == DoneSentinel {
			ev.Name = EventDone
			p.done = true
			p.buf = ""
			p.pending = nil
		}
		events = append(events, ev)
	}
	return events
}

// decode runs the incremental UTF-8 decoder. Bytes of an incomplete rune at
// the end of the input are kept in p.pending unless atEOF is set, in which
// case they are replaced with U+FFFD.
func (p *Parser) decode(chunk []byte, atEOF bool) string {
	src := make([]byte, 0, len(p.pending)+len(chunk))
	src = append(append(src, p.pending...), chunk...)
	p.pending = nil
	if len(src) == 0 {
		return ""
	}

	// Invalid bytes expand to a 3-byte replacement character.
	dst := make([]byte, 3*len(src)+4)
	var out strings.Builder
	for len(src) > 0 {
		nDst, nSrc, err := p.decoder.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]
		if err == nil {
			break
		}
		if errors.Is(err, transform.ErrShortDst) && nSrc > 0 {
			continue
		}
		if errors.Is(err, transform.ErrShortSrc) {
			p.pending = append([]byte(nil), src...)
		}
		break
	}
	return out.String()
}

// parseFrame extracts the event name and joined data lines. Frames with
// neither an event: nor a data: line are rejected.
func parseFrame(frame string) (Event, bool) {
	var (
		name    string
		data    []string
		matched bool
	)
	for _, line := range strings.Split(frame, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(line[len("event:"):])
			matched = true
		case strings.HasPrefix(line, "data:"):
			value := line[len("data:"):]
			value = strings.TrimPrefix(value, " ")
			data = append(data, value)
			matched = true
		}
		// id:, retry: and ":" comments are ignored
	}
	if !matched {
		return Event{}, false
	}
	if name == "" {
		name = EventMessage
	}
	return Event{Name: name, Data: strings.Join(data, "\n")}, true
}
