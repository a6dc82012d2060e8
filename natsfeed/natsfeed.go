// Package natsfeed adapts a NATS subject carrying JSON protocol events into
// a session.EventSource, for deployments that relay the generation stream
// through a message bus instead of a direct SSE connection.
package natsfeed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/halcyon-ai/respstream/protocol"
	"github.com/halcyon-ai/respstream/session"
)

var doneSentinel = []byte("[DONE]")

// Source is a session.EventSource draining one NATS subject.
type Source struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	msgs    chan *nats.Msg
	done    chan struct{}
	logger  *slog.Logger
	ownConn bool
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger for skip diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// Connect dials the NATS server and subscribes to subject. The connection
// retries forever on failure and is owned by the returned source.
func Connect(url, subject string, opts ...Option) (*Source, error) {
	// The connection handlers need the configured logger before the source
	// exists.
	cfg := Source{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(disconnectHandler(cfg.logger)),
		nats.ReconnectHandler(reconnectHandler(cfg.logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	src, err := Subscribe(nc, subject, opts...)
	if err != nil {
		nc.Close()
		return nil, err
	}
	src.ownConn = true
	return src, nil
}

func disconnectHandler(log *slog.Logger) nats.ConnErrHandler {
	return func(_ *nats.Conn, err error) {
		log.Warn("NATS disconnected", "error", err)
	}
}

func reconnectHandler(log *slog.Logger) nats.ConnHandler {
	return func(_ *nats.Conn) {
		log.Info("NATS reconnected")
	}
}

// Subscribe builds a source over an existing connection. The caller keeps
// ownership of the connection.
func Subscribe(nc *nats.Conn, subject string, opts ...Option) (*Source, error) {
	msgs := make(chan *nats.Msg, 256)
	sub, err := nc.ChanSubscribe(subject, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}

	s := &Source{
		nc:     nc,
		sub:    sub,
		msgs:   msgs,
		done:   make(chan struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next yields the next parseable event from the subject. A literal [DONE]
// payload terminates the stream; malformed payloads are logged and skipped.
func (s *Source) Next(ctx context.Context) (protocol.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return protocol.Event{}, ctx.Err()
		case <-s.done:
			return protocol.Event{}, session.ErrSourceClosed
		case msg := <-s.msgs:
			if bytes.Equal(bytes.TrimSpace(msg.Data), doneSentinel) {
				return protocol.Event{}, io.EOF
			}
			ev, err := protocol.ParseEvent(msg.Data)
			if err != nil {
				s.logger.Warn("skipping malformed event payload",
					"subject", msg.Subject,
					"error", err,
				)
				continue
			}
			return ev, nil
		}
	}
}

// Close unsubscribes and, when the source owns the connection, drains it.
// A Next call blocked on the subject returns session.ErrSourceClosed.
func (s *Source) Close() error {
	close(s.done)
	if err := s.sub.Unsubscribe(); err != nil {
		return err
	}
	if s.ownConn {
		return s.nc.Drain()
	}
	return nil
}
