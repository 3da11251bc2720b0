package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for EduConnect.
// It embeds the standard claims required by the JWT specification plus the custom
// claims needed to identify a platform user on both the HTTP API and the
// websocket presence connection.
type Payload struct {
	// StandardClaims embeds the standard JWT fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer), used for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the unique identifier of the registered user.
	UserID string `json:"user_id"`

	// Name is the user's display name at issuance time. It is informational
	// only; the database record is authoritative.
	Name string `json:"name,omitempty"`

	// Email is the account email the token was issued for.
	Email string `json:"email,omitempty"`
}
