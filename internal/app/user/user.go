/*
Package user contains core data structures related to platform users.

It defines the presence status enumeration and the public user view
shared between the HTTP API and websocket payloads. The password hash
never appears in any of these types.
*/
package user

import "time"

// Status is a user's presence state, tracked in memory by the presence hub
// and mirrored to the user record on transitions.
type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusBusy    Status = "busy"
	StatusOffline Status = "offline"
)

// IsValid reports whether s is one of the known presence states.
func (s Status) IsValid() bool {
	switch s {
	case StatusOnline, StatusAway, StatusBusy, StatusOffline:
		return true
	}
	return false
}

// User is the public representation of a platform user.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
	Status    Status `json:"status"`

	// Engagement counters shown on the profile page.
	CoursesEnrolled    int `json:"coursesEnrolled"`
	CertificatesEarned int `json:"certificatesEarned"`
	PointsEarned       int `json:"pointsEarned"`

	JoinedAt    time.Time  `json:"joinedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}
