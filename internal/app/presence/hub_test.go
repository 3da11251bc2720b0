package presence

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"educonnect/internal/app/user"
)

type statusWrite struct {
	userID string
	status string
}

// stubStore is an in-memory Store recording presence writes.
type stubStore struct {
	mu            sync.Mutex
	writes        []statusWrite
	memberships   map[string][]string
	statusErr     error
	membershipErr error
}

func newStubStore() *stubStore {
	return &stubStore{memberships: make(map[string][]string)}
}

func (s *stubStore) SetUserStatus(_ context.Context, userID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return s.statusErr
	}
	s.writes = append(s.writes, statusWrite{userID: userID, status: status})
	return nil
}

func (s *stubStore) UserCommunityIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.membershipErr != nil {
		return nil, s.membershipErr
	}
	return s.memberships[userID], nil
}

func (s *stubStore) recordedWrites() []statusWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]statusWrite, len(s.writes))
	copy(out, s.writes)
	return out
}

// framesOfType decodes a connection's delivered frames and keeps those
// matching the given event type.
func framesOfType(t *testing.T, conn *fakeConn, eventType EventType) []Frame {
	t.Helper()

	var matched []Frame
	for _, raw := range conn.delivered() {
		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			t.Fatalf("Failed to decode delivered frame: %v", err)
		}
		if frame.Type == eventType {
			matched = append(matched, frame)
		}
	}
	return matched
}

func decodePayload(t *testing.T, frame Frame, dst any) {
	t.Helper()
	if err := json.Unmarshal(frame.Payload, dst); err != nil {
		t.Fatalf("Failed to decode frame payload: %v", err)
	}
}

// TestLoginBroadcastsOnlineAndPersists verifies a login marks the user
// online in the database and notifies every live connection.
func TestLoginBroadcastsOnlineAndPersists(t *testing.T) {
	store := newStubStore()
	hub := NewHub(store)

	aliceConn := newFakeConn("a1")
	hub.Login(context.Background(), aliceConn, user.User{ID: "alice"})

	bobConn := newFakeConn("b1")
	hub.Login(context.Background(), bobConn, user.User{ID: "bob"})

	writes := store.recordedWrites()
	if len(writes) != 2 {
		t.Fatalf("Expected 2 status writes, got %d", len(writes))
	}
	for _, w := range writes {
		if w.status != string(user.StatusOnline) {
			t.Errorf("Expected online status write for %s, got %s", w.userID, w.status)
		}
	}

	// Alice's connection was live when bob logged in, so it must have seen
	// bob's online transition.
	frames := framesOfType(t, aliceConn, EventUserStatusChange)
	found := false
	for _, frame := range frames {
		var p StatusChangePayload
		decodePayload(t, frame, &p)
		if p.UserID == "bob" && p.Status == user.StatusOnline {
			found = true
		}
	}
	if !found {
		t.Error("Expected alice's connection to receive bob's online status change")
	}
}

// TestRepeatLoginStillBroadcastsOnline verifies a user opening a second
// connection re-persists and re-broadcasts the online status; the transition
// is not gated to the first connection.
func TestRepeatLoginStillBroadcastsOnline(t *testing.T) {
	store := newStubStore()
	hub := NewHub(store)

	observer := newFakeConn("observer-1")
	hub.Login(context.Background(), observer, user.User{ID: "observer"})

	firstTab := newFakeConn("alice-1")
	hub.Login(context.Background(), firstTab, user.User{ID: "alice"})
	secondTab := newFakeConn("alice-2")
	hub.Login(context.Background(), secondTab, user.User{ID: "alice"})

	var aliceWrites int
	for _, w := range store.recordedWrites() {
		if w.userID == "alice" && w.status == string(user.StatusOnline) {
			aliceWrites++
		}
	}
	if aliceWrites != 2 {
		t.Errorf("Expected 2 online writes for alice, got %d", aliceWrites)
	}

	var seen int
	for _, frame := range framesOfType(t, observer, EventUserStatusChange) {
		var p StatusChangePayload
		decodePayload(t, frame, &p)
		if p.UserID == "alice" && p.Status == user.StatusOnline {
			seen++
		}
	}
	if seen != 2 {
		t.Errorf("Expected observer to see 2 online broadcasts for alice, got %d", seen)
	}
}

// TestLoginAutoJoinsCommunities verifies a fresh connection subscribes to the
// channels of every community the user belongs to.
func TestLoginAutoJoinsCommunities(t *testing.T) {
	store := newStubStore()
	store.memberships["alice"] = []string{"ch1", "ch2"}
	hub := NewHub(store)

	conn := newFakeConn("a1")
	hub.Login(context.Background(), conn, user.User{ID: "alice"})

	for _, ch := range []string{"ch1", "ch2"} {
		members := hub.Registry().ChannelConns(ch)
		if len(members) != 1 || members[0].ID() != "a1" {
			t.Errorf("Expected a1 subscribed to %s, got %d members", ch, len(members))
		}
	}
}

// TestLoginSurvivesStoreFailures verifies a database outage degrades to
// in-memory presence instead of rejecting the login.
func TestLoginSurvivesStoreFailures(t *testing.T) {
	store := newStubStore()
	store.statusErr = errors.New("db down")
	store.membershipErr = errors.New("db down")
	hub := NewHub(store)

	observer := newFakeConn("o1")
	hub.Login(context.Background(), observer, user.User{ID: "observer"})

	conn := newFakeConn("a1")
	hub.Login(context.Background(), conn, user.User{ID: "alice"})

	if hub.UserStatus("alice") != user.StatusOnline {
		t.Error("Expected alice online despite store failure")
	}
	if frames := framesOfType(t, observer, EventUserStatusChange); len(frames) == 0 {
		t.Error("Expected status broadcast despite store failure")
	}
}

// TestDisconnectLastConnectionGoesOffline verifies offline is only persisted
// and broadcast when the user's final connection drops.
func TestDisconnectLastConnectionGoesOffline(t *testing.T) {
	store := newStubStore()
	hub := NewHub(store)

	c1 := newFakeConn("a1")
	c2 := newFakeConn("a2")
	hub.Login(context.Background(), c1, user.User{ID: "alice"})
	hub.Login(context.Background(), c2, user.User{ID: "alice"})

	observer := newFakeConn("o1")
	hub.Login(context.Background(), observer, user.User{ID: "observer"})
	before := len(framesOfType(t, observer, EventUserStatusChange))

	hub.Disconnect("a1")

	if hub.UserStatus("alice") != user.StatusOnline {
		t.Error("Expected alice still online with one remaining connection")
	}
	if got := len(framesOfType(t, observer, EventUserStatusChange)); got != before {
		t.Errorf("Expected no status broadcast for non-final disconnect, got %d new frames", got-before)
	}

	hub.Disconnect("a2")

	if hub.UserStatus("alice") != user.StatusOffline {
		t.Error("Expected alice offline after last disconnect")
	}

	frames := framesOfType(t, observer, EventUserStatusChange)
	last := frames[len(frames)-1]
	var p StatusChangePayload
	decodePayload(t, last, &p)
	if p.UserID != "alice" || p.Status != user.StatusOffline {
		t.Errorf("Expected offline broadcast for alice, got %+v", p)
	}

	writes := store.recordedWrites()
	offlineWrites := 0
	for _, w := range writes {
		if w.userID == "alice" && w.status == string(user.StatusOffline) {
			offlineWrites++
		}
	}
	if offlineWrites != 1 {
		t.Errorf("Expected exactly 1 offline write for alice, got %d", offlineWrites)
	}
}

// TestRelayCommunityMessageFanOut verifies community messages reach every
// subscriber including the sender, and nobody else.
func TestRelayCommunityMessageFanOut(t *testing.T) {
	store := newStubStore()
	hub := NewHub(store)

	sender := newFakeConn("s1")
	member := newFakeConn("m1")
	outsider := newFakeConn("x1")
	hub.Login(context.Background(), sender, user.User{ID: "alice"})
	hub.Login(context.Background(), member, user.User{ID: "bob"})
	hub.Login(context.Background(), outsider, user.User{ID: "carol"})

	hub.JoinCommunity("s1", "ch1")
	hub.JoinCommunity("m1", "ch1")

	hub.RelayCommunityMessage(user.User{ID: "alice", Name: "Alice"}, "ch1", "hello room")

	for name, conn := range map[string]*fakeConn{"sender": sender, "member": member} {
		frames := framesOfType(t, conn, EventNewCommunityMessage)
		if len(frames) != 1 {
			t.Fatalf("Expected 1 community message on %s, got %d", name, len(frames))
		}
		var msg Message
		decodePayload(t, frames[0], &msg)
		if msg.CommunityID != "ch1" || msg.Content != "hello room" || msg.Sender.ID != "alice" {
			t.Errorf("Unexpected message on %s: %+v", name, msg)
		}
		if msg.ID == "" || msg.Timestamp == 0 {
			t.Errorf("Expected server-assigned id and timestamp on %s, got %+v", name, msg)
		}
	}

	if frames := framesOfType(t, outsider, EventNewCommunityMessage); len(frames) != 0 {
		t.Errorf("Expected no community message for non-subscriber, got %d", len(frames))
	}
}

// TestRelayDirectMessageDeliversAndEchoes verifies a direct message reaches
// all of the recipient's connections and echoes back to the sender.
func TestRelayDirectMessageDeliversAndEchoes(t *testing.T) {
	store := newStubStore()
	hub := NewHub(store)

	sender := newFakeConn("s1")
	recip1 := newFakeConn("r1")
	recip2 := newFakeConn("r2")
	hub.Login(context.Background(), sender, user.User{ID: "alice"})
	hub.Login(context.Background(), recip1, user.User{ID: "bob"})
	hub.Login(context.Background(), recip2, user.User{ID: "bob"})

	hub.RelayDirectMessage(sender, user.User{ID: "alice"}, "bob", "hi bob")

	for name, conn := range map[string]*fakeConn{"recip1": recip1, "recip2": recip2, "sender echo": sender} {
		frames := framesOfType(t, conn, EventNewDirectMessage)
		if len(frames) != 1 {
			t.Fatalf("Expected 1 direct message on %s, got %d", name, len(frames))
		}
		var msg Message
		decodePayload(t, frames[0], &msg)
		if msg.RecipientID != "bob" || msg.Content != "hi bob" {
			t.Errorf("Unexpected direct message on %s: %+v", name, msg)
		}
	}
}

// TestRelayDirectMessageOfflineRecipient verifies a message to an offline
// user is dropped without error while the sender still gets the echo.
func TestRelayDirectMessageOfflineRecipient(t *testing.T) {
	store := newStubStore()
	hub := NewHub(store)

	sender := newFakeConn("s1")
	hub.Login(context.Background(), sender, user.User{ID: "alice"})

	hub.RelayDirectMessage(sender, user.User{ID: "alice"}, "ghost", "anyone there?")

	frames := framesOfType(t, sender, EventNewDirectMessage)
	if len(frames) != 1 {
		t.Errorf("Expected sender echo even when recipient offline, got %d frames", len(frames))
	}
}

// TestRelayTypingCommunityExcludesSender verifies community typing
// indicators skip the sender's own connection.
func TestRelayTypingCommunityExcludesSender(t *testing.T) {
	store := newStubStore()
	hub := NewHub(store)

	sender := newFakeConn("s1")
	member := newFakeConn("m1")
	hub.Login(context.Background(), sender, user.User{ID: "alice"})
	hub.Login(context.Background(), member, user.User{ID: "bob"})
	hub.JoinCommunity("s1", "ch1")
	hub.JoinCommunity("m1", "ch1")

	hub.RelayTyping(sender, TypingPayload{UserID: "alice", CommunityID: "ch1", IsTyping: true})

	if frames := framesOfType(t, sender, EventUserTyping); len(frames) != 0 {
		t.Errorf("Expected no typing echo to sender, got %d frames", len(frames))
	}

	frames := framesOfType(t, member, EventUserTyping)
	if len(frames) != 1 {
		t.Fatalf("Expected 1 typing frame on member, got %d", len(frames))
	}
	var p TypingPayload
	decodePayload(t, frames[0], &p)
	if p.UserID != "alice" || !p.IsTyping {
		t.Errorf("Unexpected typing payload: %+v", p)
	}
}

// TestRelayTypingDirect verifies typing indicators addressed to a user reach
// that user's connections.
func TestRelayTypingDirect(t *testing.T) {
	store := newStubStore()
	hub := NewHub(store)

	sender := newFakeConn("s1")
	recipient := newFakeConn("r1")
	hub.Login(context.Background(), sender, user.User{ID: "alice"})
	hub.Login(context.Background(), recipient, user.User{ID: "bob"})

	hub.RelayTyping(sender, TypingPayload{UserID: "alice", RecipientID: "bob", IsTyping: false})

	frames := framesOfType(t, recipient, EventUserTyping)
	if len(frames) != 1 {
		t.Fatalf("Expected 1 typing frame on recipient, got %d", len(frames))
	}
	var p TypingPayload
	decodePayload(t, frames[0], &p)
	if p.IsTyping {
		t.Error("Expected isTyping=false to pass through unchanged")
	}
}

// TestSubscribeUserCoversAllConnections verifies an HTTP-side community join
// attaches every live connection of the user to the channel, and the
// counterpart detaches them.
func TestSubscribeUserCoversAllConnections(t *testing.T) {
	store := newStubStore()
	hub := NewHub(store)

	c1 := newFakeConn("a1")
	c2 := newFakeConn("a2")
	hub.Login(context.Background(), c1, user.User{ID: "alice"})
	hub.Login(context.Background(), c2, user.User{ID: "alice"})

	hub.SubscribeUser("alice", "ch1")

	if got := len(hub.Registry().ChannelConns("ch1")); got != 2 {
		t.Errorf("Expected both connections subscribed, got %d", got)
	}

	hub.UnsubscribeUser("alice", "ch1")

	if got := len(hub.Registry().ChannelConns("ch1")); got != 0 {
		t.Errorf("Expected no subscriptions after unsubscribe, got %d", got)
	}
}

// TestDeliverToFullQueueDoesNotBlock verifies a slow consumer only loses
// frames instead of stalling the relay.
func TestDeliverToFullQueueDoesNotBlock(t *testing.T) {
	store := newStubStore()
	hub := NewHub(store)

	slow := newFakeConn("s1")
	slow.reject = true
	healthy := newFakeConn("h1")
	hub.Login(context.Background(), slow, user.User{ID: "alice"})
	hub.Login(context.Background(), healthy, user.User{ID: "bob"})
	hub.JoinCommunity("s1", "ch1")
	hub.JoinCommunity("h1", "ch1")

	hub.RelayCommunityMessage(user.User{ID: "bob"}, "ch1", "still flowing")

	if frames := framesOfType(t, healthy, EventNewCommunityMessage); len(frames) != 1 {
		t.Errorf("Expected healthy connection to receive the message, got %d frames", len(frames))
	}
}
