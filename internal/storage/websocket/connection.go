package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/OCAP2/objectives/pkg/streaming"
	ws "github.com/gorilla/websocket"
)

const (
	queueSize    = 256
	ackQueueSize = 8
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
)

// first reconnect delay; replaced in tests
var initialBackoff = time.Second

// connection owns one server link. A single writer goroutine drains the
// outgoing queue; when either loop fails, exactly one reconnect runs and
// replays the latest snapshot before new loops start.
type connection struct {
	mu           sync.Mutex
	conn         *ws.Conn
	closed       bool
	reconnecting bool
	// replay is the latest snapshot frame, resent after every reconnect.
	replay []byte

	out  chan []byte
	acks chan streaming.AckMessage
	done chan struct{}

	target string
	logger *slog.Logger
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		out:    make(chan []byte, queueSize),
		acks:   make(chan streaming.AckMessage, ackQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// dial connects once and starts the loops. rawURL gets the secret as a query
// parameter.
func (c *connection) dial(rawURL, secret string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", secret)
	u.RawQuery = q.Encode()
	c.target = u.String()

	conn, err := c.open()
	if err != nil {
		return err
	}
	c.start(conn)
	return nil
}

func (c *connection) open() (*ws.Conn, error) {
	conn, _, err := ws.DefaultDialer.Dial(c.target, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

func (c *connection) start(conn *ws.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.reconnecting = false
	c.mu.Unlock()

	go c.writeLoop(conn)
	go c.readLoop(conn)
}

func writeFrame(conn *ws.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, data)
}

func (c *connection) writeLoop(conn *ws.Conn) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.out:
			if err := writeFrame(conn, data); err != nil {
				c.logger.Warn("WebSocket write error", "error", err)
				c.lost(conn)
				return
			}
		}
	}
}

// readLoop only expects acks; anything else is logged and skipped.
func (c *connection) readLoop(conn *ws.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn("WebSocket read error", "error", err)
				c.lost(conn)
			}
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != streaming.TypeAck {
			c.logger.Debug("Ignoring server message", "raw", string(message))
			continue
		}
		select {
		case c.acks <- ack:
		default:
			c.logger.Debug("Ack queue full, dropping", "for", ack.For)
		}
	}
}

// lost starts a reconnect unless conn is already stale, the link is closed, or
// another reconnect is running.
func (c *connection) lost(conn *ws.Conn) {
	c.mu.Lock()
	if c.closed || c.reconnecting || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.reconnecting = true
	c.conn = nil
	c.mu.Unlock()

	_ = conn.Close()
	go c.reconnect()
}

func (c *connection) reconnect() {
	backoff := initialBackoff
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		conn, err := c.open()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		c.mu.Lock()
		replay := c.replay
		c.mu.Unlock()

		// the server may have restarted empty
		if replay != nil {
			if err := writeFrame(conn, replay); err != nil {
				c.logger.Warn("Failed to replay snapshot after reconnect", "error", err)
				_ = conn.Close()
				continue
			}
		}

		c.logger.Info("WebSocket reconnected", "attempt", attempt)
		c.start(conn)
		return
	}

	c.mu.Lock()
	c.reconnecting = false
	c.mu.Unlock()
	c.logger.Error("WebSocket reconnect failed after max attempts", "maxAttempts", maxReconnect)
}

// remember stores the frame replayed after a reconnect.
func (c *connection) remember(data []byte) {
	c.mu.Lock()
	c.replay = data
	c.mu.Unlock()
}

// send queues data without blocking; a full queue drops it.
func (c *connection) send(data []byte) {
	select {
	case c.out <- data:
	default:
		c.logger.Warn("WebSocket send queue full, dropping message")
	}
}

// sendAndWait queues data and waits for an ack naming ackFor.
func (c *connection) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	c.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ack := <-c.acks:
			if ack.For == ackFor {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-c.done:
			return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
		}
	}
}

// close sends a normal close frame and stops every goroutine.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
	return conn.Close()
}
