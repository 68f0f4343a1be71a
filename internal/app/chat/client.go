package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/randx"
)

const (
	// timeout for writes to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// frequency of server pings; must be below pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192

	// sendBufferSize is the per-connection outbound queue length.
	sendBufferSize = 256
)

// Client represents one live websocket connection. It owns the read and write
// pumps; all inbound events for a connection are dispatched serially from its
// own ReadPump.
type Client struct {
	// id is the opaque connection id assigned at upgrade time.
	id string

	hub  *Hub
	conn *websocket.Conn

	// send queues outbound frames for the write pump.
	send chan []byte

	logger zerolog.Logger
}

// NewClient wraps an upgraded websocket connection. The returned client is
// not yet attached to the hub; call Hub.Connect with ID and Send first.
func NewClient(hub *Hub, wsConn *websocket.Conn) *Client {
	connID := randx.ConnectionID()

	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Logger()

	return &Client{
		id:     connID,
		hub:    hub,
		conn:   wsConn,
		send:   make(chan []byte, sendBufferSize),
		logger: clientLogger,
	}
}

// ID returns the opaque connection id.
func (c *Client) ID() string {
	return c.id
}

// Send returns the outbound frame queue consumed by WritePump.
func (c *Client) Send() chan []byte {
	return c.send
}

// ReadPump reads frames from the websocket until the connection closes,
// dispatching each inbound event to the hub. It performs disconnect cleanup
// on exit, so transport teardown always drives the disconnect transition.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processInboundEvent(messageBytes)
	}
}

// cleanupOnDisconnect runs the disconnect transition and closes the transport.
func (c *Client) cleanupOnDisconnect() {
	c.hub.HandleDisconnect(context.Background(), c.id)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundEvent parses one inbound frame and dispatches it.
func (c *Client) processInboundEvent(messageBytes []byte) {
	var inbound struct {
		Type    EventType       `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	if err := json.Unmarshal(messageBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case TypeJoin:
		var payload JoinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid join payload")
			return
		}
		c.hub.HandleJoin(context.Background(), c.id, payload.Username)

	case TypeChatMessage:
		var payload ChatMessagePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid chat_message payload")
			return
		}
		c.hub.HandleChatMessage(context.Background(), c.id, payload.Content)

	default:
		c.logger.Warn().Str("event_type", string(inbound.Type)).Msg("Client sent unsupported event type")
	}
}

// WritePump moves frames from the send channel onto the websocket and keeps
// the connection alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one queued frame. Returns false when the pump
// should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		// send channel closed: the hub is shutting this connection down.
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a heartbeat ping. Returns false when the pump should
// terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
