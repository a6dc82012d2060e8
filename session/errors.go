package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrSourceClosed is returned by event sources after Close.
	ErrSourceClosed = errors.New("event source closed")
)

// ProtocolError represents a protocol-level failure reported by the remote
// service through a terminal error event.
type ProtocolError struct {
	Code    string
	Message string
	Param   string
}

func (e *ProtocolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("protocol error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("protocol error: %s", e.Message)
}
