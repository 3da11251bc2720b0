package presence

import (
	"fmt"
	"sync"
	"testing"
)

// fakeConn is an in-memory Conn capturing delivered frames.
type fakeConn struct {
	id     string
	reject bool

	mu     sync.Mutex
	frames [][]byte
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Deliver(frame []byte) bool {
	if c.reject {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frame)
	return true
}

func (c *fakeConn) delivered() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

// TestRegisterReportsFirstConnection verifies the online transition is only
// reported for a user's first live connection.
func TestRegisterReportsFirstConnection(t *testing.T) {
	r := NewRegistry()

	if first := r.Register(newFakeConn("c1"), "alice"); !first {
		t.Error("Expected first connection to report first=true")
	}
	if first := r.Register(newFakeConn("c2"), "alice"); first {
		t.Error("Expected second connection to report first=false")
	}

	if !r.UserOnline("alice") {
		t.Error("Expected alice to be online with two connections")
	}
	if got := len(r.UserConns("alice")); got != 2 {
		t.Errorf("Expected 2 connections for alice, got %d", got)
	}
}

// TestUnregisterReportsLastConnection verifies the offline transition is only
// reported when the user's final connection goes away.
func TestUnregisterReportsLastConnection(t *testing.T) {
	r := NewRegistry()
	r.Register(newFakeConn("c1"), "alice")
	r.Register(newFakeConn("c2"), "alice")

	userID, last, ok := r.Unregister("c1")
	if !ok || userID != "alice" {
		t.Fatalf("Unregister(c1) = (%q, %v, %v), want (alice, false, true)", userID, last, ok)
	}
	if last {
		t.Error("Expected last=false while a second connection remains")
	}

	_, last, ok = r.Unregister("c2")
	if !ok || !last {
		t.Errorf("Unregister(c2) = (last=%v, ok=%v), want last=true ok=true", last, ok)
	}
	if r.UserOnline("alice") {
		t.Error("Expected alice offline after last connection unregistered")
	}
}

// TestUnregisterUnknownConnection verifies an unknown connection is a no-op.
func TestUnregisterUnknownConnection(t *testing.T) {
	r := NewRegistry()

	if _, _, ok := r.Unregister("ghost"); ok {
		t.Error("Expected ok=false for unknown connection")
	}
}

// TestJoinIgnoresUnknownConnection verifies a subscription cannot outlive
// its connection.
func TestJoinIgnoresUnknownConnection(t *testing.T) {
	r := NewRegistry()

	r.Join("ghost", "ch1")

	if got := len(r.ChannelConns("ch1")); got != 0 {
		t.Errorf("Expected empty channel after join from unknown connection, got %d members", got)
	}
}

// TestJoinAndLeaveChannel covers channel membership bookkeeping.
func TestJoinAndLeaveChannel(t *testing.T) {
	r := NewRegistry()
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")
	r.Register(c1, "alice")
	r.Register(c2, "bob")

	r.Join("c1", "ch1")
	r.Join("c2", "ch1")

	if got := len(r.ChannelConns("ch1")); got != 2 {
		t.Fatalf("Expected 2 channel members, got %d", got)
	}

	r.Leave("c1", "ch1")

	members := r.ChannelConns("ch1")
	if len(members) != 1 || members[0].ID() != "c2" {
		t.Errorf("Expected only c2 left in channel, got %d members", len(members))
	}
}

// TestUnregisterDropsChannelSubscriptions verifies a disconnect removes the
// connection from every channel it had joined.
func TestUnregisterDropsChannelSubscriptions(t *testing.T) {
	r := NewRegistry()
	r.Register(newFakeConn("c1"), "alice")
	r.Join("c1", "ch1")
	r.Join("c1", "ch2")

	r.Unregister("c1")

	if got := len(r.ChannelConns("ch1")); got != 0 {
		t.Errorf("Expected ch1 empty after unregister, got %d members", got)
	}
	if got := len(r.ChannelConns("ch2")); got != 0 {
		t.Errorf("Expected ch2 empty after unregister, got %d members", got)
	}
}

// TestRegisterReloginDifferentUser verifies re-registering a connection under
// a new user detaches it from the previous one.
func TestRegisterReloginDifferentUser(t *testing.T) {
	r := NewRegistry()
	c := newFakeConn("c1")
	r.Register(c, "alice")

	if first := r.Register(c, "bob"); !first {
		t.Error("Expected first=true for bob's first connection")
	}

	if r.UserOnline("alice") {
		t.Error("Expected alice offline after her only connection re-registered as bob")
	}
	if userID, _ := r.LookupUser("c1"); userID != "bob" {
		t.Errorf("LookupUser(c1) = %q, want bob", userID)
	}
}

// TestAllConns verifies the broadcast view covers every live connection.
func TestAllConns(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		r.Register(newFakeConn(fmt.Sprintf("c%d", i)), fmt.Sprintf("user%d", i))
	}

	if got := len(r.AllConns()); got != 3 {
		t.Errorf("Expected 3 live connections, got %d", got)
	}
}
