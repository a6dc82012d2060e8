package natsfeed

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestConnectionHandlersUseConfiguredLogger(t *testing.T) {
	var buf strings.Builder
	log := slog.New(slog.NewTextHandler(&buf, nil))

	disconnectHandler(log)(nil, errors.New("broken pipe"))
	if !strings.Contains(buf.String(), "NATS disconnected") || !strings.Contains(buf.String(), "broken pipe") {
		t.Fatalf("disconnect log = %q", buf.String())
	}

	buf.Reset()
	reconnectHandler(log)(nil)
	if !strings.Contains(buf.String(), "NATS reconnected") {
		t.Fatalf("reconnect log = %q", buf.String())
	}
}
