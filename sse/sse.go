// Package sse decodes text/event-stream framing and adapts it into a
// session.EventSource. Malformed event payloads are skipped with a
// diagnostic instead of aborting the stream.
package sse

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/halcyon-ai/respstream/protocol"
)

// maxLineSize bounds a single frame line. Image generation events carry
// whole base64 frames in one line.
const maxLineSize = 16 * 1024 * 1024

var (
	dataPrefix    = []byte("data:")
	doneSentinel  = []byte("[DONE]")
	commentPrefix = []byte(":")
)

// Decoder reads one event payload per data: line from an event stream.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder wraps r in an SSE frame decoder.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{scanner: sc}
}

// Next returns the next data payload. Blank separator lines and comment
// lines are skipped; the literal [DONE] payload terminates the stream as
// io.EOF rather than parsing as an event.
func (d *Decoder) Next() ([]byte, error) {
	for d.scanner.Scan() {
		line := d.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if bytes.HasPrefix(line, commentPrefix) {
			continue
		}
		if !bytes.HasPrefix(line, dataPrefix) {
			// Field lines other than data (event:, id:, retry:) carry
			// nothing this protocol uses.
			continue
		}
		payload := bytes.TrimSpace(line[len(dataPrefix):])
		if bytes.Equal(payload, doneSentinel) {
			return nil, io.EOF
		}
		// The scanner reuses its buffer; hand out a copy.
		return append([]byte(nil), payload...), nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Source is a session.EventSource reading SSE-framed protocol events.
type Source struct {
	dec    *Decoder
	logger *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger for skip diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// New builds an event source over an SSE-framed reader.
func New(r io.Reader, opts ...Option) *Source {
	s := &Source{dec: NewDecoder(r), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next yields the next parseable event. Payloads that fail to parse are
// logged and skipped; the draining loop never aborts on one bad frame.
func (s *Source) Next(ctx context.Context) (protocol.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return protocol.Event{}, err
		}
		payload, err := s.dec.Next()
		if err != nil {
			return protocol.Event{}, err
		}
		ev, err := protocol.ParseEvent(payload)
		if err != nil {
			s.logger.Warn("skipping malformed event payload", "error", err)
			continue
		}
		return ev, nil
	}
}
