/*
Package presence contains the real-time presence and message relay layer.

This file defines the Client struct, representing one active WebSocket
connection. It manages the connection lifecycle, the read and write pumps,
and the dispatch of inbound events to the Hub.
*/
package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"educonnect/internal/app/user"
	"educonnect/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// loginTimeout bounds the membership fetch triggered by a login event.
	loginTimeout = 10 * time.Second
)

// Client represents an active WebSocket connection and its authenticated user.
type Client struct {
	// hub coordinates registration, relay, and broadcasts.
	hub *Hub

	// conn is the underlying WebSocket connection.
	conn *websocket.Conn

	// user is the authenticated platform user behind this connection.
	user user.User

	// id is the opaque connection identifier.
	id string

	// send is a buffered channel of outbound frames. It is never closed;
	// WritePump terminates via done so a concurrent Deliver cannot panic.
	send chan []byte

	// done signals WritePump to stop once the read pump has cleaned up.
	done chan struct{}

	// logger carries client and user context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection. The connection
// is not registered with the hub until the client sends a login event.
func NewClient(hub *Hub, wsConn *websocket.Conn, u user.User) *Client {
	connID := uuid.New().String()

	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Str("user_id", u.ID).
		Logger()

	return &Client{
		hub:    hub,
		conn:   wsConn,
		user:   u,
		id:     connID,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		logger: clientLogger,
	}
}

// ID implements Conn.
func (c *Client) ID() string {
	return c.id
}

// Deliver implements Conn. It enqueues the frame without blocking and
// reports false when the send queue is full.
func (c *Client) Deliver(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// ReadPump handles reading frames from the WebSocket connection.
// It enforces read limits and pong deadlines, dispatches inbound events,
// and unregisters the connection when the loop ends.
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
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect unregisters the connection and closes the socket when
// the read pump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Disconnect(c.id)

	close(c.done)

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame parses one raw frame and dispatches it to the hub.
// Malformed frames are logged and dropped; they never terminate the pump.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var frame Frame
	if err := json.Unmarshal(frameBytes, &frame); err != nil {
		c.logger.Warn().Err(err).Bytes("frame_bytes", frameBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch frame.Type {
	case EventLogin:
		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		c.hub.Login(ctx, c, c.user)
		cancel()

	case EventLogout:
		c.hub.Disconnect(c.id)

	case EventJoinCommunity:
		var p CommunityRefPayload
		if !c.bindPayload(frame, &p) || p.CommunityID == "" {
			return
		}
		c.hub.JoinCommunity(c.id, p.CommunityID)

	case EventLeaveCommunity:
		var p CommunityRefPayload
		if !c.bindPayload(frame, &p) || p.CommunityID == "" {
			return
		}
		c.hub.LeaveCommunity(c.id, p.CommunityID)

	case EventSendCommunityMessage:
		var p CommunityMessagePayload
		if !c.bindPayload(frame, &p) || p.CommunityID == "" {
			return
		}
		if len(p.Content) > MaxContentBytes {
			c.logger.Warn().Int("content_bytes", len(p.Content)).Msg("Community message too long; dropped")
			return
		}
		c.hub.RelayCommunityMessage(c.user, p.CommunityID, p.Content)

	case EventSendDirectMessage:
		var p DirectMessagePayload
		if !c.bindPayload(frame, &p) || p.RecipientID == "" {
			return
		}
		if len(p.Content) > MaxContentBytes {
			c.logger.Warn().Int("content_bytes", len(p.Content)).Msg("Direct message too long; dropped")
			return
		}
		c.hub.RelayDirectMessage(c, c.user, p.RecipientID, p.Content)

	case EventTyping:
		var p TypingPayload
		if !c.bindPayload(frame, &p) {
			return
		}
		// The authenticated identity is authoritative regardless of what
		// the client put in the payload.
		p.UserID = c.user.ID
		c.hub.RelayTyping(c, p)

	default:
		c.logger.Warn().Str("event_type", string(frame.Type)).Msg("Client sent unsupported event type")
	}
}

// bindPayload unmarshals the frame payload, logging and rejecting malformed bodies.
func (c *Client) bindPayload(frame Frame, dst any) bool {
	if err := json.Unmarshal(frame.Payload, dst); err != nil {
		c.logger.Warn().Err(err).Str("event_type", string(frame.Type)).
			Msg("Client sent invalid payload")
		return false
	}
	return true
}

// WritePump writes frames from the send channel to the WebSocket connection
// and keeps the heartbeat alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil &&
				err != websocket.ErrCloseSent {
				c.logger.Debug().Err(err).Msg("Error writing close message")
			}
			return

		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Error().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
