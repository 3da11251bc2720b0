/*
Package handler provides the HTTP handlers and routing setup for the EduConnect server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"educonnect/internal/pkg/auth/jwt"
	"educonnect/internal/pkg/limiter"
	"educonnect/internal/pkg/logx"
	"educonnect/internal/pkg/resp"
)

const (
	// Registration and login share one strict per-IP budget.
	AuthRate  = 0.2
	AuthBurst = 5

	// Socket upgrades are cheap to request and expensive to hold.
	ConnectRate  = 0.5
	ConnectBurst = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-PoW-Token"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "EduConnect Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Get("/challenge", HandleAuthChallenge(deps))
			auth.Post("/challenge", HandleVerifyChallenge(deps))

			auth.With(authLimiter.Middleware).Post("/register", HandleRegister(deps))
			auth.With(authLimiter.Middleware).Post("/login", HandleLogin(deps))
			auth.Post("/change-password", HandleChangePassword(deps))
		})

		api.Route("/user", func(user chi.Router) {
			user.Get("/profile", HandleGetProfile(deps))
			user.Post("/profile", HandleUpdateProfile(deps))
			user.Post("/avatar/presign", HandleAvatarUploadURL(deps))
			user.Get("/{userID}", HandleGetUser(deps))
			user.Get("/{userID}/avatar", HandleAvatarDownload(deps))
		})

		api.Route("/communities", func(com chi.Router) {
			com.Get("/", HandleListCommunities(deps))
			com.Post("/", HandleCreateCommunity(deps))
			com.Post("/join", HandleJoinCommunity(deps))
			com.Post("/{communityID}/leave", HandleLeaveCommunity(deps))
			com.Get("/{communityID}/members", HandleListCommunityMembers(deps))
		})

		api.Route("/courses", func(course chi.Router) {
			course.Get("/", HandleListCourses(deps))
			course.Get("/{courseID}", HandleGetCourse(deps))
			course.Post("/{courseID}/enroll", HandleEnrollCourse(deps))
			course.Get("/materials/{materialID}/download", HandleMaterialDownload(deps))
		})

		api.Post("/assistant/chat", HandleAssistantChat(deps))
	})

	r.Get("/ws", HandleWebSocket(deps, wsUpgrader, connectLimiter))

	return r
}
