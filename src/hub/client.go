package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatify/backend/src/types"
)

// Client wraps one admitted WebSocket connection. A client belongs to
// exactly one chat room for its whole lifetime; a reconnecting user
// produces a brand-new client.
type Client struct {
	ID     string
	UserID uuid.UUID
	ChatID uuid.UUID

	conn        types.Conn
	connectedAt time.Time

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

// NewClient creates a client wrapper around an accepted connection.
func NewClient(userID, chatID uuid.UUID, conn types.Conn) *Client {
	return &Client{
		ID:          uuid.New().String(),
		UserID:      userID,
		ChatID:      chatID,
		conn:        conn,
		connectedAt: time.Now(),
	}
}

// Info returns metadata about this client.
func (c *Client) Info() types.ClientInfo {
	return types.ClientInfo{
		ID:          c.ID,
		UserID:      c.UserID.String(),
		ChatID:      c.ChatID.String(),
		ConnectedAt: c.connectedAt,
	}
}

// Send writes one event to the connection. Writes are serialized with a
// mutex so sequential broadcasts reach the client in call order while
// concurrent broadcasts stay safe on the shared transport.
func (c *Client) Send(evt types.Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(evt)
}

// ReadPump drains inbound frames until the transport closes or errors,
// then deregisters the client. Inbound payloads are not part of the
// push protocol and are discarded.
func (c *Client) ReadPump(reg *Registry) {
	defer func() {
		reg.Remove(c.ChatID, c)
		c.Close()
	}()

	for {
		var discard json.RawMessage
		if err := c.conn.ReadJSON(&discard); err != nil {
			return
		}
	}
}

// Close releases the underlying transport. Safe to call more than once.
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if !c.closed {
		c.closed = true
		_ = c.conn.Close()
	}
}
