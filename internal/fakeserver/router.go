package fakeserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/sovereign-client/internal/fakeserver/auth"
	"github.com/mcoot/sovereign-client/internal/fakeserver/handler"
	"github.com/mcoot/sovereign-client/internal/fakeserver/middleware"
	"github.com/mcoot/sovereign-client/internal/fakeserver/world"
	sharedmw "github.com/mcoot/sovereign-client/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	AuthService  *auth.Service
	World        *world.World
	Recorder     *Recorder
	RegisterMode handler.RegisterMode
	Name         string
	Version      string
}

// NewRouter creates the API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.World, cfg.RegisterMode, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.World, cfg.Name, cfg.Version, cfg.Logger)
	messageHandler := handler.NewMessageHandler(cfg.World, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := sharedmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.Recorder != nil {
		api.Use(cfg.Recorder.Middleware)
	}

	// Public routes
	api.HandleFunc("/healthz", gameHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// Everything else needs a bearer token
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/state", gameHandler.State).Methods(http.MethodGet)
	protected.HandleFunc("/command", gameHandler.Command).Methods(http.MethodPost)
	protected.HandleFunc("/change_password", authHandler.ChangePassword).Methods(http.MethodPost)
	protected.HandleFunc("/admin/ansi_map", gameHandler.AdminMap).Methods(http.MethodGet)

	messages := protected.PathPrefix("/messages").Subrouter()
	messages.HandleFunc("/unread_count", messageHandler.UnreadCount).Methods(http.MethodGet)
	messages.HandleFunc("/inbox", messageHandler.Inbox).Methods(http.MethodGet)
	messages.HandleFunc("/sent", messageHandler.Sent).Methods(http.MethodGet)
	messages.HandleFunc("/send", messageHandler.Send).Methods(http.MethodPost)
	messages.HandleFunc("/mark_read", messageHandler.MarkRead).Methods(http.MethodPost)
	messages.HandleFunc("/delete", messageHandler.Delete).Methods(http.MethodPost)
	messages.HandleFunc("/report", messageHandler.Report).Methods(http.MethodPost)
	messages.HandleFunc("/attachments/{id:[0-9]+}", messageHandler.Attachment).Methods(http.MethodGet)

	return r
}
