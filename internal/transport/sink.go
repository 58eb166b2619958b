// Package transport implements the host-collaborator boundary described in
// §6: the core never owns the wire protocol to the outer assessment
// application, it only pushes typed envelopes at two sinks (terminal output
// bytes, and the session event stream) over a WebSocket connection the host
// establishes.
package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Envelope mirrors the relay protocol's tagged-union pattern: every message
// carries a Type field so the host can route without a schema registry.
type Envelope struct {
	Type string `json:"type"`
}

const (
	TypeOutput   = "shellcore.output"
	TypeEvent    = "shellcore.event"
	TypeResize   = "shellcore.resize"
	TypeClosed   = "shellcore.closed"
)

// OutputMessage carries raw terminal output bytes, base64-encoded like the
// relay protocol's PTYOutput.
type OutputMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Data      string `json:"data"`
}

// EventMessage carries one recorder.SessionEvent, already JSON-marshalled
// by the caller into Payload so this package stays decoupled from
// internal/recorder's concrete event types.
type EventMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

// Sink is anything the Terminal Engine and Recorder can push bytes/events
// at. *WSSink and NullSink implement it.
type Sink interface {
	WriteOutput(data []byte) error
	WriteEvent(payload json.RawMessage) error
	Close() error
}

// WSSink pushes output and events over a single coder/websocket
// connection, serialising concurrent writers with a mutex the way the
// teacher's relay client guards its own connection.
type WSSink struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	sessionID string
}

// DialWSSink connects to url and returns a ready-to-use sink. The dial
// itself is given a bounded context so a hung handshake cannot block the
// engine forever.
func DialWSSink(ctx context.Context, url, sessionID string) (*WSSink, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", url, err)
	}
	return &WSSink{conn: conn, sessionID: sessionID}, nil
}

func (s *WSSink) WriteOutput(data []byte) error {
	msg := OutputMessage{
		Type:      TypeOutput,
		SessionID: s.sessionID,
		Data:      base64.StdEncoding.EncodeToString(data),
	}
	return s.writeJSON(msg)
}

func (s *WSSink) WriteEvent(payload json.RawMessage) error {
	msg := EventMessage{
		Type:      TypeEvent,
		SessionID: s.sessionID,
		Payload:   payload,
	}
	return s.writeJSON(msg)
}

func (s *WSSink) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("transport: marshal: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.conn.Write(ctx, websocket.MessageText, b)
}

func (s *WSSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close(websocket.StatusNormalClosure, "session ended")
}

// NullSink discards everything; used when the core runs with no attached
// host collaborator (e.g. unit tests, or a purely local CLI replay).
type NullSink struct{}

func (NullSink) WriteOutput(data []byte) error          { return nil }
func (NullSink) WriteEvent(payload json.RawMessage) error { return nil }
func (NullSink) Close() error                           { return nil }
