package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"devconnect_go/internal/config"
	"devconnect_go/internal/domain"
	"devconnect_go/internal/security"
	"devconnect_go/internal/service"
	"devconnect_go/internal/ws"
)

// Repos bundles the store implementations the router wires into services,
// so either database backend can be plugged in.
type Repos struct {
	Users    domain.UserRepository
	Requests domain.RequestRepository
	Messages domain.MessageRepository
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(
	cfg *config.Config,
	repos Repos,
	hub *ws.Hub,
	registry *ws.Registry,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	authSvc := service.NewAuthService(repos.Users, tokenSvc, passwordHasher)
	userSvc := service.NewUserService(repos.Users)
	requestSvc := service.NewRequestService(repos.Requests, repos.Users)
	feedSvc := service.NewFeedService(repos.Users)
	chatSvc := service.NewChatService(repos.Requests, repos.Messages, repos.Users, cfg.MaxMessageLen)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "devconnect API",
			"version": "1.0.0",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes (no auth required, throttled)
		r.Route("/auth", func(r chi.Router) {
			r.Use(RateLimit(cfg.AuthRequestsPerMinute, cfg.AuthBurst))
			r.Post("/register", handleRegister(authSvc))
			r.Post("/login", handleLogin(authSvc))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, repos.Users))

			r.Post("/auth/logout", handleLogout(authSvc))
			r.Get("/auth/me", handleMe())

			r.Get("/users/{userID}", handleGetUser(userSvc))
			r.Get("/users/{userID}/status", handleUserStatus(registry, requestSvc))

			r.Get("/feed", handleFeedNext(feedSvc))

			r.Route("/requests", func(r chi.Router) {
				r.Post("/send/{status}/{userID}", handleSubmitRequest(requestSvc, feedSvc))
				r.Post("/review/{decision}/{requestID}", handleReviewRequest(requestSvc))
				r.Get("/received", handleListReceived(requestSvc))
			})

			r.Get("/connections", handleListConnections(requestSvc))

			r.Get("/chat/{targetUserID}", handleChatHistory(chatSvc))

			r.Mount("/uploads", UploadRoutes(cfg))
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(registry, hub, tokenSvc, repos.Users, repos.Requests, chatSvc, cfg.CORSOrigins))

	return r
}
