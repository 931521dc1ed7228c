package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cosmos-server/internal/auth"
	"cosmos-server/internal/auth/providers"
	"cosmos-server/internal/player"
	"cosmos-server/internal/shared/config"
	"cosmos-server/internal/shared/cookies"
	"cosmos-server/internal/shared/errors"
	"cosmos-server/internal/shared/response"
)

// OAuthHandler drives the authorization-code flow for a single
// provider and turns the resulting identity into a signed-in player.
type OAuthHandler struct {
	provider      providers.OAuthProvider
	playerService *player.Service
	isConfigured  bool
}

func NewOAuthHandler(provider providers.OAuthProvider, playerService *player.Service, isConfigured bool) *OAuthHandler {
	return &OAuthHandler{
		provider:      provider,
		playerService: playerService,
		isConfigured:  isConfigured,
	}
}

func (h *OAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	logger := slog.With("handler", name+"_oauth_init")

	if !h.isConfigured {
		response.Error(w, r, logger, errors.External(fmt.Sprintf("%s OAuth is not configured", name)))
		return
	}

	state, err := auth.GenerateOAuthState(name, r.UserAgent())
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to initialize OAuth flow", err))
		return
	}

	http.Redirect(w, r, h.provider.GetAuthURL(state), http.StatusTemporaryRedirect)
}

func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errorParam := r.URL.Query().Get("error")

	logger := slog.With(
		"handler", name+"_oauth_callback",
		"ip", r.RemoteAddr,
		"has_code", code != "",
		"has_state", state != "",
	)

	if errorParam != "" {
		logger.Warn("OAuth authorization denied",
			"provider", name,
			"oauth_error", errorParam,
			"error_description", r.URL.Query().Get("error_description"))
		redirectWithError(w, r, "oauth_denied")
		return
	}

	if code == "" {
		logger.Error("OAuth callback missing authorization code", "provider", name)
		redirectWithError(w, r, "oauth_error")
		return
	}

	if err := auth.ValidateOAuthState(state, name, r.UserAgent()); err != nil {
		logger.Error("OAuth state validation failed", "error", err, "provider", name)
		redirectWithError(w, r, "oauth_error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code", "error", err, "provider", name)
		redirectWithError(w, r, "oauth_error")
		return
	}

	userInfo, err := h.provider.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info", "error", err, "provider", name)
		redirectWithError(w, r, "oauth_error")
		return
	}

	userLogger := logger.With(
		"user_email", userInfo.Email,
		"provider_user_id", userInfo.ID)

	if userInfo.Email == "" {
		userLogger.Error("User info missing required email", "provider", name)
		redirectWithError(w, r, "oauth_error")
		return
	}

	p := &player.Player{
		Username:    usernameFromEmail(userInfo.Email),
		Email:       userInfo.Email,
		DisplayName: userInfo.Name,
		Provider:    name,
		ProviderID:  userInfo.ID,
	}
	if userInfo.AvatarURL != "" {
		p.AvatarURL = &userInfo.AvatarURL
	}

	if err := h.playerService.UpsertFromOAuth(p); err != nil {
		userLogger.Error("Failed to upsert player", "error", err)
		redirectWithError(w, r, "database_error")
		return
	}

	jwtToken, err := auth.GenerateJWT(p)
	if err != nil {
		userLogger.Error("Failed to generate JWT token", "error", err, "player_id", p.ID)
		redirectWithError(w, r, "auth_error")
		return
	}

	cookies.SetAuthCookie(w, jwtToken)

	userLogger.Info("OAuth authentication successful",
		"provider", name,
		"player_id", p.ID,
		"player_role", p.Role)

	successURL := fmt.Sprintf("%s/auth/callback?success=true", config.GlobalConfig.Frontend.URL)
	http.Redirect(w, r, successURL, http.StatusTemporaryRedirect)
}

func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func redirectWithError(w http.ResponseWriter, r *http.Request, errorType string) {
	cfg := config.GlobalConfig
	errorURL := fmt.Sprintf("%s/auth/error?error=%s", cfg.Frontend.URL, errorType)
	http.Redirect(w, r, errorURL, http.StatusTemporaryRedirect)
}
