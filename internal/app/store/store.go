/*
Package store is the PostgreSQL query layer for the application.

Each method wraps a single statement against the shared pgx pool; row structs
mirror the table columns using pgtype values so NULLs stay explicit. Handlers
translate these rows into API-facing types and never touch SQL directly.
*/
package store

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store executes queries against the application database.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// User is a row of the users table. PasswordHash is only ever compared
// against, never serialized outward.
type User struct {
	ID                 pgtype.UUID
	Name               string
	Email              string
	PasswordHash       string
	AvatarUrl          string
	Status             string
	CoursesEnrolled    int32
	CertificatesEarned int32
	PointsEarned       int32
	JoinedAt           pgtype.Timestamptz
	LastLoginAt        pgtype.Timestamptz
	LastActiveAt       pgtype.Timestamptz
}

const userColumns = `id, name, email, password_hash, avatar_url, status,
	courses_enrolled, certificates_earned, points_earned,
	joined_at, last_login_at, last_active_at`

// prefixedUserColumns qualifies the user column list with a table alias for joins.
func prefixedUserColumns(alias string) string {
	cols := strings.Split(userColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarUrl, &u.Status,
		&u.CoursesEnrolled, &u.CertificatesEarned, &u.PointsEarned,
		&u.JoinedAt, &u.LastLoginAt, &u.LastActiveAt,
	)
	return u, err
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// CreateUser inserts a new user row and returns it.
func (s *Store) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		arg.Name, arg.Email, arg.PasswordHash,
	)
	return scanUser(row)
}

// GetUserByEmail fetches a user by their unique email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetUserByID fetches a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id pgtype.UUID) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

type UpdateUserProfileParams struct {
	ID        pgtype.UUID
	Name      string
	AvatarUrl string
}

// UpdateUserProfile updates the mutable profile fields and returns the new row.
func (s *Store) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET name = $2, avatar_url = $3
		WHERE id = $1
		RETURNING `+userColumns,
		arg.ID, arg.Name, arg.AvatarUrl,
	)
	return scanUser(row)
}

type UpdateUserPasswordParams struct {
	ID           pgtype.UUID
	PasswordHash string
}

// UpdateUserPassword replaces the stored password hash.
func (s *Store) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`,
		arg.ID, arg.PasswordHash)
	return err
}

// UpdateLastLogin stamps last_login_at with the current time.
func (s *Store) UpdateLastLogin(ctx context.Context, id pgtype.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	return err
}

type UpdateUserPresenceParams struct {
	ID     pgtype.UUID
	Status string
}

// UpdateUserPresence mirrors a presence transition to the user record,
// stamping last_active_at alongside the new status.
func (s *Store) UpdateUserPresence(ctx context.Context, arg UpdateUserPresenceParams) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET status = $2, last_active_at = now() WHERE id = $1`,
		arg.ID, arg.Status)
	return err
}

// IncrementCoursesEnrolled bumps the denormalized enrollment counter.
func (s *Store) IncrementCoursesEnrolled(ctx context.Context, id pgtype.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET courses_enrolled = courses_enrolled + 1 WHERE id = $1`, id)
	return err
}

// AddPoints credits engagement points to a user.
func (s *Store) AddPoints(ctx context.Context, id pgtype.UUID, points int32) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET points_earned = points_earned + $2 WHERE id = $1`, id, points)
	return err
}
