package handler

import "testing"

// TestIsOwnedAvatarKey verifies avatar keys must sit under the caller's own
// prefix and cannot escape it.
func TestIsOwnedAvatarKey(t *testing.T) {
	const userID = "11111111-2222-3333-4444-555555555555"

	cases := []struct {
		name string
		key  string
		want bool
	}{
		{"own prefix", "avatars/" + userID + "/abc.png", true},
		{"other user's prefix", "avatars/99999999-8888-7777-6666-555555555555/abc.png", false},
		{"no prefix", "abc.png", false},
		{"materials namespace", "materials/neat.pdf", false},
		{"path traversal", "avatars/" + userID + "/../other/abc.png", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		if got := isOwnedAvatarKey(tc.key, userID); got != tc.want {
			t.Errorf("%s: isOwnedAvatarKey(%q) = %v, want %v", tc.name, tc.key, got, tc.want)
		}
	}
}
