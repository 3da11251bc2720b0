/*
Package handler provides HTTP handler functions for user authentication and management.
*/
package handler

import (
	"net/http"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"educonnect/internal/app/db"
	"educonnect/internal/app/store"
	"educonnect/internal/app/user"
	"educonnect/internal/pkg/auth/jwt"
	"educonnect/internal/pkg/errs"
	"educonnect/internal/pkg/logx"
	"educonnect/internal/pkg/req"
	"educonnect/internal/pkg/resp"

	"github.com/jackc/pgx/v5/pgtype"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validatePassword enforces the account password policy. bcrypt truncates
// input past 72 bytes, so that is the hard upper bound.
func validatePassword(password string) *errs.CustomError {
	length := utf8.RuneCountInString(password)
	if length < 8 || len(password) > 72 {
		return errs.NewError(errs.ErrInvalidPassword)
	}
	return nil
}

// HandleAuthChallenge issues a Proof-of-Work nonce for registration.
func HandleAuthChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nonce := deps.Pow.GenerateNonce()

		resp.RespondSuccess(w, r, map[string]any{
			"nonce":      nonce,
			"difficulty": deps.Pow.Difficulty(),
		})
	}
}

type VerifyChallengeInput struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

// HandleVerifyChallenge validates a Proof-of-Work solution and issues a
// short-lived proof token consumed by registration.
func HandleVerifyChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input VerifyChallengeInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, err := deps.Pow.ValidateProof(input.Nonce, input.Counter)
		if err != nil {
			logx.Warn("PoW proof validation failed", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"powToken": token,
		})
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister processes the request to create a new user account.
// Registration is gated behind a valid Proof-of-Work token.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		if !deps.Pow.CheckProofToken(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		nameLen := utf8.RuneCountInString(input.Name)
		if nameLen < 2 || nameLen > 50 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}

		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		if customErr := validatePassword(input.Password); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		created, err := deps.DB.CreateUser(r.Context(), store.CreateUserParams{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: string(hashedPassword),
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("registration conflict: email already exists", "email", input.Email)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.DB.UpdateLastLogin(r.Context(), created.ID); err != nil {
			logx.Error(err, "register: failed to update last_login_at", "user_id", created.ID.String())
		}

		payload := &jwt.Payload{
			UserID: created.ID.String(),
			Name:   created.Name,
			Email:  created.Email,
		}

		tokenString, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "failed to generate token after registration")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": tokenString,
			"user":  deps.toUserView(created),
		})
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies user credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if identity := jwt.GetPayloadFromContext(r); identity != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		dbUser, err := deps.DB.GetUserByEmail(r.Context(), input.Email)
		if err != nil {
			logx.Warn("login: user fetch failed", "email", input.Email, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "email", input.Email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.DB.UpdateLastLogin(r.Context(), dbUser.ID); err != nil {
			logx.Error(err, "login: failed to update last_login_at", "user_id", dbUser.ID.String())
		}

		// Mark the account online at HTTP login time, before any presence
		// socket exists. Best-effort, like the hub's write-through.
		err = deps.DB.UpdateUserPresence(r.Context(), store.UpdateUserPresenceParams{
			ID:     dbUser.ID,
			Status: string(user.StatusOnline),
		})
		if err != nil {
			logx.Error(err, "login: failed to persist online status", "user_id", dbUser.ID.String())
		}

		payload := &jwt.Payload{
			UserID: dbUser.ID.String(),
			Name:   dbUser.Name,
			Email:  dbUser.Email,
		}

		token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  deps.loggedInUserView(dbUser),
		})
	}
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// HandleChangePassword verifies the current password and replaces the stored hash.
func HandleChangePassword(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input ChangePasswordInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := validatePassword(input.NewPassword); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var userUUID pgtype.UUID
		if err := userUUID.Scan(identity.UserID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		dbUser, err := deps.DB.GetUserByID(r.Context(), userUUID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(input.OldPassword)); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrOldPasswordInvalid))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		err = deps.DB.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
			ID:           userUUID,
			PasswordHash: string(hashedPassword),
		})
		if err != nil {
			logx.Error(err, "failed to update user password in database", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		newToken, err := jwt.GenerateToken(identity, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "failed to generate token after password change", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": newToken,
		})
	}
}
