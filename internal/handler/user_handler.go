package handler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"educonnect/internal/app/storage"
	"educonnect/internal/app/store"
	"educonnect/internal/pkg/auth/jwt"
	"educonnect/internal/pkg/errs"
	"educonnect/internal/pkg/logx"
	"educonnect/internal/pkg/req"
	"educonnect/internal/pkg/resp"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// HandleGetProfile returns the authenticated user's own profile.
func HandleGetProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
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

		resp.RespondSuccess(w, r, map[string]any{
			"user": deps.toUserView(dbUser),
		})
	}
}

// HandleGetUser returns the public profile of any user by ID.
func HandleGetUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userUUID pgtype.UUID
		if err := userUUID.Scan(chi.URLParam(r, "userID")); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		dbUser, err := deps.DB.GetUserByID(r.Context(), userUUID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": deps.toPublicUserView(dbUser),
		})
	}
}

type UpdateProfileInput struct {
	Name      string `json:"name"`
	AvatarKey string `json:"avatarKey"`
}

// HandleUpdateProfile updates the authenticated user's display name or avatar.
// When the avatar changes, the previous object is deleted from storage in the
// background; a failed delete only leaks a blob, so it is logged and ignored.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var userUUID pgtype.UUID
		if err := userUUID.Scan(identity.UserID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		current, err := deps.DB.GetUserByID(r.Context(), userUUID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		name := current.Name
		if input.Name != "" {
			nameLen := utf8.RuneCountInString(input.Name)
			if nameLen < 2 || nameLen > 50 {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
				return
			}
			name = input.Name
		}

		avatarKey := current.AvatarUrl
		if input.AvatarKey != "" {
			if !isOwnedAvatarKey(input.AvatarKey, identity.UserID) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileKeyInvalid))
				return
			}
			avatarKey = input.AvatarKey
		}

		updated, err := deps.DB.UpdateUserProfile(r.Context(), store.UpdateUserProfileParams{
			ID:        userUUID,
			Name:      name,
			AvatarUrl: avatarKey,
		})
		if err != nil {
			logx.Error(err, "failed to update user profile", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if input.AvatarKey != "" && current.AvatarUrl != "" && current.AvatarUrl != input.AvatarKey {
			oldKey := current.AvatarUrl
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := deps.Storage.Delete(ctx, oldKey); err != nil {
					logx.Warn("failed to delete replaced avatar object", "key", oldKey, "error", err)
				}
			}()
		}

		payload := &jwt.Payload{
			UserID: updated.ID.String(),
			Name:   updated.Name,
			Email:  updated.Email,
		}
		token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "failed to reissue token after profile update", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  deps.toUserView(updated),
		})
	}
}

type AvatarUploadInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandleAvatarUploadURL issues a presigned PUT URL for an avatar upload.
// The returned key is later submitted through the profile update endpoint.
func HandleAvatarUploadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input AvatarUploadInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateFileSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := storage.ValidateFileType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext := strings.ToLower(filepath.Ext(input.FileName))
		key := fmt.Sprintf("avatars/%s/%s%s", identity.UserID, uuid.New().String(), ext)

		uploadURL, err := deps.Storage.PresignUpload(
			r.Context(), key, input.MimeType, input.FileSize, storage.PresignedURLDuration,
		)
		if err != nil {
			logx.Error(err, "failed to presign avatar upload", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": uploadURL,
			"fileKey":   key,
			"expiresIn": int(storage.PresignedURLDuration.Seconds()),
		})
	}
}

// HandleAvatarDownload redirects to a presigned GET URL for a user's avatar.
func HandleAvatarDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userUUID pgtype.UUID
		if err := userUUID.Scan(chi.URLParam(r, "userID")); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		dbUser, err := deps.DB.GetUserByID(r.Context(), userUUID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		if dbUser.AvatarUrl == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileKeyInvalid))
			return
		}

		downloadURL, err := deps.Storage.PresignDownload(r.Context(), dbUser.AvatarUrl, storage.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "failed to presign avatar download", "key", dbUser.AvatarUrl)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		http.Redirect(w, r, downloadURL, http.StatusTemporaryRedirect)
	}
}

// isOwnedAvatarKey checks that a submitted avatar key sits under the caller's
// own prefix, so one user cannot point their profile at another user's object.
func isOwnedAvatarKey(key, userID string) bool {
	if strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, "avatars/"+userID+"/")
}
