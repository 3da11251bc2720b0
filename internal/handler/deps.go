package handler

import (
	"educonnect/internal/app/assistant"
	"educonnect/internal/app/presence"
	"educonnect/internal/app/storage"
	"educonnect/internal/app/store"
	"educonnect/internal/app/user"
	"educonnect/internal/configs"
	"educonnect/internal/pkg/pow"
)

// AppDeps bundles the shared dependencies the HTTP handlers close over.
type AppDeps struct {
	Hub       *presence.Hub
	Config    *configs.AppConfig
	Storage   storage.Service
	DB        *store.Store
	Pow       *pow.Manager
	Assistant *assistant.Service
}

// toUserView maps a database row to the public user representation.
// The live presence status from the hub overrides the persisted one so a
// crashed process cannot leave a stale "online" in API responses.
func (d *AppDeps) toUserView(u store.User) user.User {
	view := user.User{
		ID:                 u.ID.String(),
		Name:               u.Name,
		Email:              u.Email,
		AvatarURL:          u.AvatarUrl,
		Status:             d.Hub.UserStatus(u.ID.String()),
		CoursesEnrolled:    int(u.CoursesEnrolled),
		CertificatesEarned: int(u.CertificatesEarned),
		PointsEarned:       int(u.PointsEarned),
	}

	if u.JoinedAt.Valid {
		view.JoinedAt = u.JoinedAt.Time
	}
	if u.LastLoginAt.Valid {
		t := u.LastLoginAt.Time
		view.LastLoginAt = &t
	}

	return view
}

// loggedInUserView is the login response snapshot: the account just
// authenticated but has not opened its presence socket yet, so the hub would
// report offline. The user record was stamped online by the login handler and
// the snapshot agrees with it.
func (d *AppDeps) loggedInUserView(u store.User) user.User {
	view := d.toUserView(u)
	view.Status = user.StatusOnline
	return view
}

// toPublicUserView is toUserView with account-private fields removed,
// used when listing other users (community members, public profiles).
func (d *AppDeps) toPublicUserView(u store.User) user.User {
	view := d.toUserView(u)
	view.Email = ""
	view.LastLoginAt = nil
	return view
}
