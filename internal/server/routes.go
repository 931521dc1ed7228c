package server

import (
	"log/slog"
	"net/http"

	authHandlers "cosmos-server/internal/auth/handlers"
	"cosmos-server/internal/auth/providers"
	"cosmos-server/internal/middleware"
	"cosmos-server/internal/player"
	playerHandlers "cosmos-server/internal/player/handlers"
	serverHandlers "cosmos-server/internal/server/handlers"
	"cosmos-server/internal/shared/config"
	"cosmos-server/internal/shared/database"
	redisclient "cosmos-server/internal/shared/redis"
	"cosmos-server/internal/universe"
	universeHandlers "cosmos-server/internal/universe/handlers"
)

type Routes struct {
	db              *database.DB
	cache           *redisclient.Client
	playerService   *player.Service
	universeService *universe.Service
	logger          *slog.Logger
}

func NewRoutes(db *database.DB, cache *redisclient.Client, playerService *player.Service, universeService *universe.Service, logger *slog.Logger) *Routes {
	return &Routes{
		db:              db,
		cache:           cache,
		playerService:   playerService,
		universeService: universeService,
		logger:          logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db, r.cache)
	playersHandler := playerHandlers.NewPlayersHandler(r.playerService)
	meHandler := playerHandlers.NewMeHandler()
	logoutHandler := authHandlers.NewLogoutHandler()
	universeHandler := universeHandlers.NewUniverseHandler(r.universeService, r.logger)

	googleAuthHandler := authHandlers.NewOAuthHandler(
		providers.NewGoogleProvider(),
		r.playerService,
		config.GlobalConfig.GoogleOAuthConfigured(),
	)

	// Public endpoints
	mux.Handle("GET /api/server/health", healthHandler)
	mux.Handle("GET /api/players", playersHandler)
	mux.HandleFunc("GET /api/universes", universeHandler.GetUniverses)
	mux.HandleFunc("GET /api/universes/{id}", universeHandler.GetUniverse)

	// Protected endpoints (authenticated users)
	mux.Handle("GET /api/players/me", middleware.JWTMiddleware(meHandler))
	mux.Handle("POST /api/universes/{id}/advance",
		middleware.JWTMiddleware(http.HandlerFunc(universeHandler.AdvanceUniverse)))
	mux.Handle("POST /api/universes/{id}/anomalies/{index}/resolve",
		middleware.JWTMiddleware(http.HandlerFunc(universeHandler.ResolveAnomaly)))

	// Admin-only endpoints (authenticated + admin role)
	mux.Handle("POST /api/universes",
		middleware.RequireAdmin(http.HandlerFunc(universeHandler.CreateUniverse)))
	mux.Handle("DELETE /api/universes/{id}",
		middleware.RequireAdmin(http.HandlerFunc(universeHandler.DeleteUniverse)))

	// OAuth endpoints
	mux.HandleFunc("/auth/google", googleAuthHandler.HandleAuth)
	mux.HandleFunc("/auth/google/callback", googleAuthHandler.HandleCallback)
	mux.Handle("/auth/logout", logoutHandler)

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/players", "/api/universes"},
		"protected_endpoints", []string{"/api/players/me", "/api/universes/{id}/advance", "/api/universes/{id}/anomalies/{index}/resolve"},
		"admin_endpoints", []string{"/api/universes", "/api/universes/{id}"},
		"auth_endpoints", []string{"/auth/google", "/auth/logout"},
	)

	return mux
}
