package player

import (
	"database/sql"
	"fmt"
	"log/slog"

	apperrors "cosmos-server/internal/shared/errors"
)

type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetPlayerByID(id int) (*Player, error) {
	query := `
		SELECT id, username, email, display_name, avatar_url, provider, provider_id, role, created_at, updated_at
		FROM players
		WHERE id = $1`

	p := &Player{}
	var role string
	err := r.db.QueryRow(query, id).Scan(
		&p.ID,
		&p.Username,
		&p.Email,
		&p.DisplayName,
		&p.AvatarURL,
		&p.Provider,
		&p.ProviderID,
		&role,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFoundf("player %d not found", id)
		}
		r.logger.Error("Failed to get player", "player_id", id, "error", err)
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	p.Role = ParsePlayerRole(role)
	return p, nil
}

// UpsertOAuthPlayer creates or updates an account from a normalized
// OAuth identity, keyed by (provider, provider_id).
func (r *Repository) UpsertOAuthPlayer(p *Player) error {
	query := `
		INSERT INTO players (username, email, display_name, avatar_url, provider, provider_id, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (provider, provider_id)
		DO UPDATE SET email = $2, display_name = $3, avatar_url = $4, updated_at = NOW()
		RETURNING id, role, created_at, updated_at`

	var role string
	err := r.db.QueryRow(query,
		p.Username,
		p.Email,
		p.DisplayName,
		p.AvatarURL,
		p.Provider,
		p.ProviderID,
		string(p.Role),
	).Scan(&p.ID, &role, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to upsert player", "provider", p.Provider, "error", err)
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	p.Role = ParsePlayerRole(role)
	return nil
}

func (r *Repository) GetPlayerCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM players`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}
