/*
Package presence contains the real-time presence and message relay layer.

This file defines the Hub, the coordinator driven by inbound events on the
long-lived websocket connections. It owns the Registry, mirrors presence
transitions to the user record, fans community messages out to channel
subscribers, and routes direct messages to the recipient's connections.
*/
package presence

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"educonnect/internal/app/user"
	"educonnect/internal/pkg/logx"
)

// statusWriteTimeout bounds the presence write-through to the user record.
const statusWriteTimeout = 5 * time.Second

// Store is the persistence surface the hub needs. Writes are best-effort:
// failures are logged and never abort the in-memory mutation or broadcast.
type Store interface {
	// SetUserStatus mirrors a presence transition to the user record,
	// stamping the last-active timestamp.
	SetUserStatus(ctx context.Context, userID, status string) error

	// UserCommunityIDs returns the communities a user belongs to, used to
	// subscribe a fresh connection to its group channels at login.
	UserCommunityIDs(ctx context.Context, userID string) ([]string, error)
}

// Hub coordinates all live presence connections.
type Hub struct {
	registry *Registry
	store    Store
	logger   zerolog.Logger
}

// NewHub constructs a Hub with an empty registry.
func NewHub(store Store) *Hub {
	return &Hub{
		registry: NewRegistry(),
		store:    store,
		logger:   logx.Logger().With().Str("component", "presence").Logger(),
	}
}

// Registry exposes the hub's connection registry, used by HTTP handlers to
// merge live presence into member listings.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Login registers the connection for the given user, marks them online, and
// subscribes the connection to the channels of every community the user
// belongs to. Every login persists and broadcasts the online status, not just
// the user's first connection, so a repeat login refreshes last_active_at and
// clients converge even if they missed an earlier transition. The status
// write and the membership fetch are best-effort; the registry mutation and
// the broadcast proceed even when they fail.
func (h *Hub) Login(ctx context.Context, conn Conn, u user.User) {
	first := h.registry.Register(conn, u.ID)

	h.persistStatus(u.ID, user.StatusOnline)
	h.broadcastStatus(u.ID, user.StatusOnline)

	communityIDs, err := h.store.UserCommunityIDs(ctx, u.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", u.ID).
			Msg("Failed to load community memberships at login; connection joins no channels.")
		return
	}

	for _, communityID := range communityIDs {
		h.registry.Join(conn.ID(), communityID)
	}

	h.logger.Info().Str("user_id", u.ID).Str("conn_id", conn.ID()).
		Bool("first_connection", first).
		Int("channels", len(communityIDs)).Msg("Connection registered.")
}

// Disconnect unregisters the connection. When it was the user's last live
// connection the user is marked offline and the transition broadcast.
// Unknown connections are a no-op.
func (h *Hub) Disconnect(connID string) {
	userID, last, ok := h.registry.Unregister(connID)
	if !ok {
		return
	}

	h.logger.Info().Str("user_id", userID).Str("conn_id", connID).
		Bool("last_connection", last).Msg("Connection unregistered.")

	if !last {
		return
	}

	h.persistStatus(userID, user.StatusOffline)
	h.broadcastStatus(userID, user.StatusOffline)
}

// JoinCommunity subscribes a connection to a community channel. No
// authorization check happens here; membership is enforced by the HTTP
// community endpoints, and login-time auto-join only covers persisted
// memberships.
func (h *Hub) JoinCommunity(connID, communityID string) {
	h.registry.Join(connID, communityID)
}

// LeaveCommunity unsubscribes a connection from a community channel.
func (h *Hub) LeaveCommunity(connID, communityID string) {
	h.registry.Leave(connID, communityID)
}

// SubscribeUser joins every live connection of a user to a community
// channel, used when a user joins a community over HTTP while connected.
func (h *Hub) SubscribeUser(userID, communityID string) {
	for _, conn := range h.registry.UserConns(userID) {
		h.registry.Join(conn.ID(), communityID)
	}
}

// UnsubscribeUser removes every live connection of a user from a community
// channel, the counterpart of SubscribeUser for leaving over HTTP.
func (h *Hub) UnsubscribeUser(userID, communityID string) {
	for _, conn := range h.registry.UserConns(userID) {
		h.registry.Leave(conn.ID(), communityID)
	}
}

// UserStatus returns the live presence state for a user: online when at
// least one registered connection exists, offline otherwise.
func (h *Hub) UserStatus(userID string) user.Status {
	if h.registry.UserOnline(userID) {
		return user.StatusOnline
	}
	return user.StatusOffline
}

// RelayCommunityMessage fans a message out to every connection subscribed to
// the community's channel, the sender's included. Sender membership is not
// enforced on the relay path.
func (h *Hub) RelayCommunityMessage(sender user.User, communityID, content string) {
	msg := newMessage(sender, content)
	msg.CommunityID = communityID

	frame, err := newFrame(EventNewCommunityMessage, msg)
	if err != nil {
		h.logger.Error().Err(err).Str("community_id", communityID).
			Msg("Failed to marshal community message.")
		return
	}

	for _, conn := range h.registry.ChannelConns(communityID) {
		h.deliver(conn, frame)
	}
}

// RelayDirectMessage routes a message to every live connection of the
// recipient and echoes it back to the sender's own connection, so the
// sender's UI reflects the sent message without a separate optimistic
// render path. An offline recipient means the message is dropped silently;
// the echo is still delivered.
func (h *Hub) RelayDirectMessage(senderConn Conn, sender user.User, recipientID, content string) {
	msg := newMessage(sender, content)
	msg.RecipientID = recipientID

	frame, err := newFrame(EventNewDirectMessage, msg)
	if err != nil {
		h.logger.Error().Err(err).Str("recipient_id", recipientID).
			Msg("Failed to marshal direct message.")
		return
	}

	delivered := false
	for _, conn := range h.registry.UserConns(recipientID) {
		if conn.ID() == senderConn.ID() {
			continue
		}
		h.deliver(conn, frame)
		delivered = true
	}

	if !delivered && recipientID != sender.ID {
		h.logger.Debug().Str("recipient_id", recipientID).
			Msg("Direct message recipient offline; message dropped.")
	}

	h.deliver(senderConn, frame)
}

// RelayTyping forwards an ephemeral typing indicator either to a community
// channel (excluding the sender's connection) or to the recipient's
// connections. Nothing is persisted and nothing auto-clears.
func (h *Hub) RelayTyping(senderConn Conn, p TypingPayload) {
	frame, err := newFrame(EventUserTyping, p)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal typing indicator.")
		return
	}

	if p.CommunityID != "" {
		for _, conn := range h.registry.ChannelConns(p.CommunityID) {
			if conn.ID() == senderConn.ID() {
				continue
			}
			h.deliver(conn, frame)
		}
		return
	}

	if p.RecipientID != "" {
		for _, conn := range h.registry.UserConns(p.RecipientID) {
			h.deliver(conn, frame)
		}
	}
}

// broadcastStatus emits a userStatusChange frame to every live connection,
// not just those with a relationship to the user.
func (h *Hub) broadcastStatus(userID string, status user.Status) {
	frame, err := newFrame(EventUserStatusChange, StatusChangePayload{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).
			Msg("Failed to marshal status change.")
		return
	}

	for _, conn := range h.registry.AllConns() {
		h.deliver(conn, frame)
	}
}

// persistStatus writes the presence transition through to the user record.
// Errors are logged and swallowed; there is no retry and no rollback of the
// in-memory state.
func (h *Hub) persistStatus(userID string, status user.Status) {
	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()

	if err := h.store.SetUserStatus(ctx, userID, string(status)); err != nil {
		h.logger.Error().Err(err).
			Str("user_id", userID).
			Str("status", string(status)).
			Msg("Failed to persist presence transition; broadcast proceeds.")
	}
}

// deliver enqueues a frame on one connection, logging slow consumers.
// Frames to a full queue are dropped; there is no backpressure on the relay.
func (h *Hub) deliver(conn Conn, frame []byte) {
	if !conn.Deliver(frame) {
		h.logger.Warn().Str("conn_id", conn.ID()).
			Msg("Connection send queue full; frame dropped.")
	}
}
