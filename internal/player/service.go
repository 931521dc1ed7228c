package player

import (
	"log/slog"

	"cosmos-server/internal/shared/config"
)

type Service struct {
	repo   *Repository
	logger *slog.Logger
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetPlayer(id int) (*Player, error) {
	return s.repo.GetPlayerByID(id)
}

func (s *Service) PlayerCount() (int, error) {
	return s.repo.GetPlayerCount()
}

// UpsertFromOAuth stores or refreshes the account behind an OAuth
// identity. The configured admin email gets the admin role.
func (s *Service) UpsertFromOAuth(p *Player) error {
	p.Role = PlayerRoleUser
	if p.Email != "" && p.Email == config.GlobalConfig.Admin.Email {
		p.Role = PlayerRoleAdmin
	}

	if err := s.repo.UpsertOAuthPlayer(p); err != nil {
		return err
	}

	s.logger.Info("Player signed in",
		"player_id", p.ID,
		"provider", p.Provider,
		"role", p.Role,
	)
	return nil
}
