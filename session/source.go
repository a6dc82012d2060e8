package session

import (
	"context"
	"errors"
	"io"

	"github.com/halcyon-ai/respstream/protocol"
)

// EventSource yields protocol events one at a time. Next blocks until an
// event is available, the stream ends (io.EOF), or the context is done.
// Implementations own transport concerns entirely: framing, reconnects, and
// abort signaling never reach the session.
type EventSource interface {
	Next(ctx context.Context) (protocol.Event, error)
}

// Drain ingests every event the source yields until it reports io.EOF,
// returning the final combined snapshot. A context cancellation (or any
// other source error) stops the loop and returns the snapshot in its last
// consistent state: the session stays non-terminal and the end notification
// never fires on an aborted stream.
func (s *Session) Drain(ctx context.Context, src EventSource) (Snapshot, error) {
	for {
		ev, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return s.Snapshot(), nil
			}
			return s.Snapshot(), err
		}
		s.Ingest(ev)
	}
}
