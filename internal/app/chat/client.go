/*
Package chat contains the socket side of the chat.

This file defines the Client struct, representing an active WebSocket connection. It manages the
connection lifecycle, the message communication loops (ReadPump and WritePump), and the
presence entries announced over the connection.
*/
package chat

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatterbox/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 64 << 10

	// number of outbound frames buffered per connection.
	sendBufferSize = 256
)

// Client struct represents an active WebSocket connection.
type Client struct {
	// ID identifies the connection in logs.
	ID string

	// underlying WebSocket connection object.
	conn *websocket.Conn

	registry *Registry
	relay    *Relay

	// a buffered channel used to queue frames waiting to be sent to the client.
	// It is never closed; done signals the end of the connection instead.
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	// ids lists the user ids announced over this connection.
	mu  sync.Mutex
	ids []string

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for conn. It is not tracked until Registry.Attach.
func NewClient(conn *websocket.Conn, registry *Registry, relay *Relay) *Client {
	id := uuid.NewString()

	return &Client{
		ID:       id,
		conn:     conn,
		registry: registry,
		relay:    relay,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logx.Logger().With().Str("conn_id", id).Logger(),
	}
}

// Close signals both pumps to stop. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) remember(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !slices.Contains(c.ids, userID) {
		c.ids = append(c.ids, userID)
	}
}

func (c *Client) announcedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.ids)
}

// deliver queues frame for the WritePump. A closed connection or a full buffer drops it.
func (c *Client) deliver(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return false
	}
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), event dispatch, and performs cleanup upon connection closure.
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
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.handleFrame(frame)
	}
}

// cleanupOnDisconnect removes the presence entries that still point at this connection.
func (c *Client) cleanupOnDisconnect() {
	c.registry.release(c)
	c.Close()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}

	c.logger.Info().Strs("user_ids", c.announcedIDs()).Msg("Client disconnected.")
}

// handleFrame decodes one inbound frame and dispatches it by event type.
func (c *Client) handleFrame(frame []byte) {
	var event Event
	if err := json.Unmarshal(frame, &event); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch event.Type {
	case TypeAddUser:
		var userID string
		if err := json.Unmarshal(event.Payload, &userID); err != nil || userID == "" {
			c.logger.Warn().Err(err).Msg("Client sent invalid add-user payload")
			return
		}
		c.registry.Announce(userID, c)

	case TypeSendMsg:
		var payload SendPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.To == "" {
			c.logger.Warn().Err(err).Msg("Client sent invalid send-msg payload")
			return
		}
		c.relay.Forward(c, payload.To, payload.Message)

	default:
		c.logger.Warn().Str("event_type", string(event.Type)).Msg("Client sent unsupported event type")
	}
}

// WritePump handles writing frames from the Client.send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame := <-c.send:
			if !c.write(websocket.TextMessage, frame) {
				return
			}

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}

		case <-c.done:
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}

// write sends one frame under the write deadline.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) write(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Debug().Err(err).Int("message_type", messageType).Msg("Error writing frame")
		return false
	}
	return true
}
