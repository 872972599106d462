package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/OCAP2/objectives/internal/storage"
	"github.com/OCAP2/objectives/pkg/core"
	"github.com/OCAP2/objectives/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams snapshots and transitions to the companion map server.
// The server is a mirror: Load only returns what this process saved.
type Backend struct {
	conn *connection
	cfg  Config

	mu    sync.Mutex
	saved map[string]*core.Session
	last  string
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn:  newConnection(logger),
		cfg:   cfg,
		saved: make(map[string]*core.Session),
	}
}

// ToWebSocketURL converts an HTTP(S) URL to a WebSocket URL.
func ToWebSocketURL(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	if b.cfg.URL == "" {
		return fmt.Errorf("websocket url not configured")
	}
	return b.conn.dial(ToWebSocketURL(b.cfg.URL), b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// Save sends the snapshot and waits for the server ack. The snapshot is
// kept for Load and replayed after a reconnect.
func (b *Backend) Save(s *core.Session) error {
	if s == nil {
		return nil
	}
	data, err := marshalEnvelope(streaming.TypeSessionSnapshot, streaming.SessionSnapshotPayload{Session: s})
	if err != nil {
		return err
	}

	b.mu.Lock()
	cp := *s
	cp.Objectives = make([]core.Objective, len(s.Objectives))
	for i := range s.Objectives {
		cp.Objectives[i] = s.Objectives[i].Clone()
	}
	b.saved[s.Map] = &cp
	b.last = s.Map
	b.mu.Unlock()

	b.conn.remember(data)

	return b.conn.sendAndWait(data, streaming.TypeSessionSnapshot, ackTimeout)
}

func (b *Backend) Load(mapName string) (*core.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mapName == "" {
		mapName = b.last
	}
	s, ok := b.saved[mapName]
	if !ok {
		return nil, storage.ErrNoSession
	}
	cp := *s
	return &cp, nil
}

// RecordTransition sends a transition without waiting for an ack.
func (b *Backend) RecordTransition(t *core.Transition) error {
	if t == nil {
		return nil
	}
	data, err := marshalEnvelope(streaming.TypeObjectiveTransition, streaming.TransitionPayload{Transition: t})
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}
