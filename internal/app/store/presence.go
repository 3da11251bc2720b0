package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// The presence hub addresses users by plain string IDs. These wrappers parse
// the ID once and delegate to the typed queries, satisfying the hub's Store
// interface without leaking pgtype into the relay layer.

// SetUserStatus mirrors a presence transition to the user record.
func (s *Store) SetUserStatus(ctx context.Context, userID, status string) error {
	var id pgtype.UUID
	if err := id.Scan(userID); err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	return s.UpdateUserPresence(ctx, UpdateUserPresenceParams{ID: id, Status: status})
}

// UserCommunityIDs returns the community IDs a user belongs to.
func (s *Store) UserCommunityIDs(ctx context.Context, userID string) ([]string, error) {
	var id pgtype.UUID
	if err := id.Scan(userID); err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	return s.ListUserCommunityIDs(ctx, id)
}
