package handlers

import (
	"log/slog"
	"net/http"

	"cosmos-server/internal/player"
	"cosmos-server/internal/shared/errors"
	"cosmos-server/internal/shared/response"
)

type PlayersHandler struct {
	playerService *player.Service
}

func NewPlayersHandler(playerService *player.Service) *PlayersHandler {
	return &PlayersHandler{playerService: playerService}
}

func (h *PlayersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "players")

	count, err := h.playerService.PlayerCount()
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to count players", err))
		return
	}

	response.Success(w, http.StatusOK, map[string]int{"player_count": count})
}
