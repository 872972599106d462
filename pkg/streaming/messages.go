// Package streaming defines the wire protocol spoken with the companion map
// server.
package streaming

import (
	"encoding/json"

	"github.com/OCAP2/objectives/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeSessionSnapshot     = "session_snapshot"
	TypeObjectiveTransition = "objective_transition"
	TypeAck                 = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// SessionSnapshotPayload carries a full save of the objective collection.
type SessionSnapshotPayload struct {
	Session *core.Session `json:"session"`
}

// TransitionPayload carries one lifecycle change.
type TransitionPayload struct {
	Transition *core.Transition `json:"transition"`
}
