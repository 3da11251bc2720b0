package presence

import (
	"encoding/json"
	"time"

	"educonnect/internal/app/user"
	"educonnect/internal/pkg/randx"
)

// EventType identifies a websocket frame on the presence connection.
type EventType string

// Inbound events (client to server).
const (
	EventLogin                EventType = "login"
	EventLogout               EventType = "logout"
	EventJoinCommunity        EventType = "joinCommunity"
	EventLeaveCommunity       EventType = "leaveCommunity"
	EventSendCommunityMessage EventType = "sendCommunityMessage"
	EventSendDirectMessage    EventType = "sendDirectMessage"
	EventTyping               EventType = "typing"
)

// Outbound events (server to client).
const (
	EventUserStatusChange    EventType = "userStatusChange"
	EventNewCommunityMessage EventType = "newCommunityMessage"
	EventNewDirectMessage    EventType = "newDirectMessage"
	EventUserTyping          EventType = "userTyping"
)

// MaxContentBytes is the maximum allowed size of a relayed message's content.
const MaxContentBytes = 5000

// Frame is the JSON envelope every websocket message travels in.
type Frame struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// newFrame marshals a typed payload into a wire-ready frame.
func newFrame(t EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: t, Payload: raw})
}

// CommunityRefPayload carries a community reference for join/leave events.
type CommunityRefPayload struct {
	CommunityID string `json:"communityId"`
}

// CommunityMessagePayload is the inbound body of sendCommunityMessage.
type CommunityMessagePayload struct {
	CommunityID string `json:"communityId"`
	Content     string `json:"content"`
}

// DirectMessagePayload is the inbound body of sendDirectMessage.
type DirectMessagePayload struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

// TypingPayload is the body of typing (inbound) and userTyping (outbound).
// Exactly one of CommunityID and RecipientID is expected to be set.
type TypingPayload struct {
	UserID      string `json:"userId"`
	CommunityID string `json:"communityId,omitempty"`
	RecipientID string `json:"recipientId,omitempty"`
	IsTyping    bool   `json:"isTyping"`
}

// StatusChangePayload is the body of the userStatusChange broadcast.
type StatusChangePayload struct {
	UserID string      `json:"userId"`
	Status user.Status `json:"status"`
}

// Message is a relayed chat message, direct or community-scoped.
// Messages are not persisted; delivery is fire-and-forget to the
// connections live at relay time.
type Message struct {
	ID          string    `json:"id"`
	CommunityID string    `json:"communityId,omitempty"`
	RecipientID string    `json:"recipientId,omitempty"`
	Sender      user.User `json:"sender"`
	Content     string    `json:"content"`
	Timestamp   int64     `json:"timestamp"`
}

// newMessage builds a relayed message with a fresh ID and a server-side
// millisecond timestamp.
func newMessage(sender user.User, content string) Message {
	return Message{
		ID:        randx.MessageID(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}
