package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Community is a row of the communities table.
type Community struct {
	ID          pgtype.UUID
	Name        string
	Description string
	InviteCode  string
	CreatedBy   pgtype.UUID
	CreatedAt   pgtype.Timestamptz
}

const communityColumns = `id, name, description, invite_code, created_by, created_at`

type CreateCommunityParams struct {
	Name        string
	Description string
	InviteCode  string
	CreatedBy   pgtype.UUID
}

// CreateCommunity inserts a new community row and returns it.
func (s *Store) CreateCommunity(ctx context.Context, arg CreateCommunityParams) (Community, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO communities (name, description, invite_code, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+communityColumns,
		arg.Name, arg.Description, arg.InviteCode, arg.CreatedBy,
	)
	var c Community
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.InviteCode, &c.CreatedBy, &c.CreatedAt)
	return c, err
}

// GetCommunityByID fetches a community by primary key.
func (s *Store) GetCommunityByID(ctx context.Context, id pgtype.UUID) (Community, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+communityColumns+` FROM communities WHERE id = $1`, id)
	var c Community
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.InviteCode, &c.CreatedBy, &c.CreatedAt)
	return c, err
}

// GetCommunityByInviteCode fetches a community by its unique invite code.
func (s *Store) GetCommunityByInviteCode(ctx context.Context, code string) (Community, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+communityColumns+` FROM communities WHERE invite_code = $1`, code)
	var c Community
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.InviteCode, &c.CreatedBy, &c.CreatedAt)
	return c, err
}

// ListCommunitiesRow is a community together with its member count.
type ListCommunitiesRow struct {
	Community
	MemberCount int64
}

// ListCommunities returns all communities with their member counts, newest first.
func (s *Store) ListCommunities(ctx context.Context) ([]ListCommunitiesRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.name, c.description, c.invite_code, c.created_by, c.created_at,
		       count(m.user_id) AS member_count
		FROM communities c
		LEFT JOIN community_members m ON m.community_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListCommunitiesRow
	for rows.Next() {
		var i ListCommunitiesRow
		if err := rows.Scan(
			&i.ID, &i.Name, &i.Description, &i.InviteCode, &i.CreatedBy, &i.CreatedAt,
			&i.MemberCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type CommunityMemberParams struct {
	CommunityID pgtype.UUID
	UserID      pgtype.UUID
}

// AddCommunityMember inserts a membership row. A duplicate membership
// surfaces as a unique violation for the caller to classify.
func (s *Store) AddCommunityMember(ctx context.Context, arg CommunityMemberParams) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO community_members (community_id, user_id) VALUES ($1, $2)`,
		arg.CommunityID, arg.UserID)
	return err
}

// RemoveCommunityMember deletes a membership row and reports whether one existed.
func (s *Store) RemoveCommunityMember(ctx context.Context, arg CommunityMemberParams) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM community_members WHERE community_id = $1 AND user_id = $2`,
		arg.CommunityID, arg.UserID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListCommunityMembers returns the users belonging to a community.
func (s *Store) ListCommunityMembers(ctx context.Context, communityID pgtype.UUID) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+prefixedUserColumns("u")+`
		FROM users u
		JOIN community_members m ON m.user_id = u.id
		WHERE m.community_id = $1
		ORDER BY m.joined_at`, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarUrl, &u.Status,
			&u.CoursesEnrolled, &u.CertificatesEarned, &u.PointsEarned,
			&u.JoinedAt, &u.LastLoginAt, &u.LastActiveAt,
		); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// ListUserCommunityIDs returns the community IDs a user belongs to,
// used by the presence hub to subscribe a fresh connection at login.
func (s *Store) ListUserCommunityIDs(ctx context.Context, userID pgtype.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT community_id FROM community_members WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id.String())
	}
	return ids, rows.Err()
}
