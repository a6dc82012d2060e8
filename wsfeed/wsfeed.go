// Package wsfeed adapts a WebSocket connection carrying JSON protocol events
// into a session.EventSource. Each text message holds one event payload.
package wsfeed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/halcyon-ai/respstream/protocol"
	"github.com/halcyon-ai/respstream/session"
)

var doneSentinel = []byte("[DONE]")

const dialTimeout = 10 * time.Second

// Source is a session.EventSource reading protocol events from a WebSocket.
type Source struct {
	conn   *websocket.Conn
	logger *slog.Logger

	frames  chan frame
	closed  chan struct{}
	readErr error

	closeOnce sync.Once
}

type frame struct {
	data []byte
	err  error
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger for skip diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// Dial connects to a WebSocket endpoint and returns a source over it.
func Dial(ctx context.Context, url string, header http.Header, opts ...Option) (*Source, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}
	return NewSource(conn, opts...), nil
}

// NewSource builds a source over an established connection. The source takes
// ownership of the connection and starts reading immediately.
func NewSource(conn *websocket.Conn, opts ...Option) *Source {
	s := &Source{
		conn:   conn,
		logger: slog.Default(),
		frames: make(chan frame, 16),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.readLoop()
	return s
}

// readLoop pumps messages into the frame channel so Next can honor context
// cancellation while ReadMessage blocks.
func (s *Source) readLoop() {
	defer close(s.frames)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = io.EOF
			}
			s.frames <- frame{err: err}
			return
		}
		s.frames <- frame{data: data}
	}
}

// Next yields the next parseable event from the socket. A literal [DONE]
// message or a normal close terminates the stream as io.EOF; malformed
// payloads are logged and skipped.
func (s *Source) Next(ctx context.Context) (protocol.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return protocol.Event{}, ctx.Err()
		case fr, ok := <-s.frames:
			if !ok {
				if s.readErr != nil {
					return protocol.Event{}, s.readErr
				}
				return protocol.Event{}, io.EOF
			}
			if fr.err != nil {
				// Read errors after a caller-initiated Close are teardown
				// noise, not stream failures.
				select {
				case <-s.closed:
					fr.err = session.ErrSourceClosed
				default:
				}
				s.readErr = fr.err
				return protocol.Event{}, fr.err
			}
			if bytes.Equal(bytes.TrimSpace(fr.data), doneSentinel) {
				return protocol.Event{}, io.EOF
			}
			ev, err := protocol.ParseEvent(fr.data)
			if err != nil {
				s.logger.Warn("skipping malformed event payload", "error", err)
				continue
			}
			return ev, nil
		}
	}
}

// Close sends a close frame and tears the connection down. Safe to call more
// than once.
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = s.conn.Close()
	})
	return err
}
