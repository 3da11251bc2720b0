package handler

import (
	"context"
	"testing"

	"educonnect/internal/app/presence"
	"educonnect/internal/app/store"
	"educonnect/internal/app/user"

	"github.com/jackc/pgx/v5/pgtype"
)

// noopHubStore satisfies the hub's persistence surface for view tests.
type noopHubStore struct{}

func (noopHubStore) SetUserStatus(context.Context, string, string) error { return nil }

func (noopHubStore) UserCommunityIDs(context.Context, string) ([]string, error) { return nil, nil }

func testUserRow(t *testing.T, id string) store.User {
	t.Helper()

	var userUUID pgtype.UUID
	if err := userUUID.Scan(id); err != nil {
		t.Fatalf("Failed to build test UUID: %v", err)
	}
	return store.User{
		ID:     userUUID,
		Name:   "Alice",
		Email:  "alice@example.com",
		Status: string(user.StatusOnline),
	}
}

// TestLoggedInUserViewReportsOnline verifies the login response snapshot says
// online even though no presence socket exists yet, matching the status the
// login handler just persisted.
func TestLoggedInUserViewReportsOnline(t *testing.T) {
	deps := &AppDeps{Hub: presence.NewHub(noopHubStore{})}
	row := testUserRow(t, "11111111-2222-3333-4444-555555555555")

	// The hub has no connection for this user, so the plain view is offline.
	if got := deps.toUserView(row).Status; got != user.StatusOffline {
		t.Fatalf("toUserView status = %q, want offline with no live connection", got)
	}

	view := deps.loggedInUserView(row)
	if view.Status != user.StatusOnline {
		t.Errorf("loggedInUserView status = %q, want online", view.Status)
	}
	if view.Email != "alice@example.com" {
		t.Errorf("Expected the self view to keep the email, got %q", view.Email)
	}
}

// TestToUserViewPrefersLivePresence verifies a live connection overrides the
// persisted status so a stale database row cannot report the wrong state.
func TestToUserViewPrefersLivePresence(t *testing.T) {
	hub := presence.NewHub(noopHubStore{})
	deps := &AppDeps{Hub: hub}

	const id = "11111111-2222-3333-4444-555555555555"
	row := testUserRow(t, id)
	row.Status = string(user.StatusOffline)

	hub.Login(context.Background(), discardConn{}, user.User{ID: id})

	if got := deps.toUserView(row).Status; got != user.StatusOnline {
		t.Errorf("toUserView status = %q, want online while a connection is live", got)
	}
}

// discardConn is the minimal Conn for driving hub state in view tests.
type discardConn struct{}

func (discardConn) ID() string          { return "view-test-conn" }
func (discardConn) Deliver([]byte) bool { return true }
