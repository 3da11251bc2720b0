/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting,
authenticating the connecting user, upgrading the HTTP connection to WebSocket, and
initiating the client lifecycle.
*/
package handler

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgtype"

	"educonnect/internal/app/presence"
	"educonnect/internal/pkg/auth/jwt"
	"educonnect/internal/pkg/errs"
	"educonnect/internal/pkg/limiter"
	"educonnect/internal/pkg/logx"
	"educonnect/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// The socket is authenticated up front; the client must still send a login frame to
// enter the presence registry.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		// Browsers cannot set headers on WebSocket requests, so the token is
		// also accepted as a query parameter.
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			authHeader := r.Header.Get("Authorization")
			if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			logx.Warn("WebSocket request rejected: Missing token", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket request rejected: Invalid token", "ip", ip, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var userUUID pgtype.UUID
		if err := userUUID.Scan(payload.UserID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		// Fetch the current row rather than trusting token claims: the name or
		// avatar may have changed since the token was issued.
		dbUser, err := deps.DB.GetUserByID(r.Context(), userUUID)
		if err != nil {
			logx.Warn("WebSocket request rejected: Unknown user", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		logx.Info("Attempting to upgrade connection", "user_id", payload.UserID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := presence.NewClient(deps.Hub, conn, deps.toPublicUserView(dbUser))

		go client.WritePump()

		logx.Info("WebSocket connection established", "user_id", payload.UserID, "conn_id", client.ID())

		client.ReadPump()
	}
}
