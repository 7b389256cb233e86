// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import (
	"errors"
	"io"
)

// readChunkSize is the read size used against the response body.
const readChunkSize = 4096

// Reader yields events from an io.Reader such as an HTTP response body.
type Reader struct {
	r      io.Reader
	parser *Parser
	queue  []Event
	buf    []byte
	eof    bool
	err    error // sticky read error, returned once queue drains
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:      r,
		parser: NewParser(),
		buf:    make([]byte, readChunkSize),
	}
}

// Next returns the next event. It returns io.EOF once the terminal event has
// been returned or the input is exhausted. Read errors other than io.EOF are
// returned as-is, after the events already parsed, and on every later call.
func (s *Reader) Next() (Event, error) {
	for {
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			return ev, nil
		}
		if s.parser.Done() {
			return Event{}, io.EOF
		}
		if s.err != nil {
			return Event{}, s.err
		}
		if s.eof {
			return Event{}, io.EOF
		}

		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.queue = append(s.queue, s.parser.Feed(s.buf[:n])...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.eof = true
				s.queue = append(s.queue, s.parser.Flush()...)
				continue
			}
			s.err = err
		}
	}
}
