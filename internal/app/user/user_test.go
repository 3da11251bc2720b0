package user

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestStatusIsValid covers the presence state enumeration.
func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusOnline, StatusAway, StatusBusy, StatusOffline} {
		if !s.IsValid() {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	for _, s := range []Status{"", "ONLINE", "idle", "gone"} {
		if s.IsValid() {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

// TestUserSerializationOmitsEmptyPrivateFields verifies a public view with
// the email stripped does not leak an empty email key.
func TestUserSerializationOmitsEmptyPrivateFields(t *testing.T) {
	raw, err := json.Marshal(User{ID: "u1", Name: "Alice", Status: StatusOffline})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if strings.Contains(string(raw), "email") {
		t.Errorf("Expected empty email to be omitted, got %s", raw)
	}
	if strings.Contains(string(raw), "lastLoginAt") {
		t.Errorf("Expected nil lastLoginAt to be omitted, got %s", raw)
	}
}
