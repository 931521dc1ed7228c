package universe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"cosmos-server/internal/engine"
	apperrors "cosmos-server/internal/shared/errors"

	"github.com/google/uuid"
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

const universeColumns = `id, name, seed, status, end_condition, constants, state,
	anomalies, civilizations, events, metrics, random_state, version, created_at, updated_at`

func (r *Repository) CreateUniverse(ctx context.Context, u *Universe) error {
	constants, state, anomalies, civilizations, events, metrics, err := marshalSnapshot(u)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO universes (id, name, seed, status, end_condition, constants, state,
			anomalies, civilizations, events, metrics, random_state, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)
		RETURNING version, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		u.ID,
		u.Name,
		u.Seed,
		u.Status,
		u.EndCondition,
		constants,
		state,
		anomalies,
		civilizations,
		events,
		metrics,
		int64(u.RandomState),
	).Scan(&u.Version, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to create universe", "universe_id", u.ID, "error", err)
		return fmt.Errorf("failed to create universe: %w", err)
	}

	return nil
}

func (r *Repository) GetUniverse(ctx context.Context, id uuid.UUID) (*Universe, error) {
	query := `SELECT ` + universeColumns + ` FROM universes WHERE id = $1`

	u, err := scanUniverse(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFoundf("universe %s not found", id)
		}
		r.logger.Error("Failed to get universe", "universe_id", id, "error", err)
		return nil, fmt.Errorf("failed to get universe: %w", err)
	}

	return u, nil
}

func (r *Repository) ListUniverses(ctx context.Context) ([]*Universe, error) {
	query := `SELECT ` + universeColumns + ` FROM universes ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list universes", "error", err)
		return nil, fmt.Errorf("failed to list universes: %w", err)
	}
	defer rows.Close()

	var universes []*Universe
	for rows.Next() {
		u, err := scanUniverse(rows)
		if err != nil {
			r.logger.Error("Failed to scan universe", "error", err)
			return nil, fmt.Errorf("failed to scan universe: %w", err)
		}
		universes = append(universes, u)
	}

	return universes, rows.Err()
}

// ListOngoingIDs returns the ids of universes still accepting steps,
// for the background auto-advance loop.
func (r *Repository) ListOngoingIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM universes WHERE status = $1 ORDER BY created_at`, engine.StatusOngoing)
	if err != nil {
		return nil, fmt.Errorf("failed to list ongoing universes: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan universe id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *Repository) DeleteUniverse(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM universes WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete universe", "universe_id", id, "error", err)
		return fmt.Errorf("failed to delete universe: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NotFoundf("universe %s not found", id)
	}

	return nil
}

// SaveSnapshot persists an advanced snapshot with an optimistic version
// check: the update only applies if the stored version still matches the
// one the snapshot was loaded at. A stale version yields a conflict error
// so the caller can reload and retry.
func (r *Repository) SaveSnapshot(ctx context.Context, u *Universe) error {
	_, state, anomalies, civilizations, events, metrics, err := marshalSnapshot(u)
	if err != nil {
		return err
	}

	query := `
		UPDATE universes
		SET status = $2, end_condition = $3, state = $4, anomalies = $5,
			civilizations = $6, events = $7, metrics = $8, random_state = $9,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $10
		RETURNING version, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		u.ID,
		u.Status,
		u.EndCondition,
		state,
		anomalies,
		civilizations,
		events,
		metrics,
		int64(u.RandomState),
		u.Version,
	).Scan(&u.Version, &u.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Conflictf("universe %s was modified concurrently, reload and retry", u.ID)
		}
		r.logger.Error("Failed to save universe snapshot", "universe_id", u.ID, "error", err)
		return fmt.Errorf("failed to save universe snapshot: %w", err)
	}

	return nil
}

func marshalSnapshot(u *Universe) (constants, state, anomalies, civilizations, events, metrics []byte, err error) {
	if constants, err = json.Marshal(u.Constants); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal constants: %w", err)
	}
	if state, err = json.Marshal(u.State); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	if anomalies, err = json.Marshal(u.Anomalies); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal anomalies: %w", err)
	}
	if civilizations, err = json.Marshal(u.Civilizations); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal civilizations: %w", err)
	}
	if events, err = json.Marshal(u.Events); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal events: %w", err)
	}
	if metrics, err = json.Marshal(u.Metrics); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}
	return constants, state, anomalies, civilizations, events, metrics, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUniverse(row rowScanner) (*Universe, error) {
	u := &Universe{}
	var constants, state, anomalies, civilizations, events, metrics []byte
	var randomState int64

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Seed,
		&u.Status,
		&u.EndCondition,
		&constants,
		&state,
		&anomalies,
		&civilizations,
		&events,
		&metrics,
		&randomState,
		&u.Version,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.RandomState = uint32(randomState)

	for _, field := range []struct {
		name string
		data []byte
		dest interface{}
	}{
		{"constants", constants, &u.Constants},
		{"state", state, &u.State},
		{"anomalies", anomalies, &u.Anomalies},
		{"civilizations", civilizations, &u.Civilizations},
		{"events", events, &u.Events},
		{"metrics", metrics, &u.Metrics},
	} {
		if len(field.data) == 0 {
			continue
		}
		if err := json.Unmarshal(field.data, field.dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", field.name, err)
		}
	}

	return u, nil
}
