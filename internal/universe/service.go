package universe

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cosmos-server/internal/engine"
	"cosmos-server/internal/shared/config"
	apperrors "cosmos-server/internal/shared/errors"

	"github.com/google/uuid"
)

// Service owns the caller-side contract of the simulation engine: it
// loads snapshots, serializes step invocations per universe, and persists
// results with an optimistic version check. The engine itself assumes it
// is the sole mutator of a snapshot for the duration of one call; the
// per-universe mutex here is what makes that assumption hold when a
// background tick and a manual advance fire close together.
type Service struct {
	repo   *Repository
	cache  *SnapshotCache
	engine *engine.Engine
	cfg    config.SimulationConfig
	logger *slog.Logger

	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewService(repo *Repository, cache *SnapshotCache, cfg config.SimulationConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		engine: engine.New(cfg.TimeStepYears, logger),
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) lockFor(id uuid.UUID) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// CreateUniverse validates the request, builds the explicit initial
// snapshot, and persists it. Constants are validated here, once, at
// creation time; the engine afterwards assumes they are viable.
func (s *Service) CreateUniverse(ctx context.Context, req CreateUniverseRequest) (*Universe, error) {
	logger := s.logger.With("component", "universe_service", "operation", "create", "name", req.Name)

	if req.Name == "" {
		return nil, apperrors.Validation("universe name is required")
	}

	seed := req.Seed
	if seed == "" {
		seed = uuid.NewString()
	}

	constants := engine.DefaultConstants()
	if req.Constants != nil {
		constants = *req.Constants
	}

	sim, err := engine.NewSimulation(constants, seed)
	if err != nil {
		return nil, apperrors.WrapValidation("invalid universe configuration", err)
	}

	u := &Universe{
		ID:   uuid.New(),
		Name: req.Name,
		Seed: seed,
	}
	u.Constants = constants
	u.ApplySimulation(sim)

	if err := s.repo.CreateUniverse(ctx, u); err != nil {
		return nil, err
	}

	logger.Info("Universe created", "universe_id", u.ID, "seed", seed)
	return u, nil
}

func (s *Service) GetUniverse(ctx context.Context, id uuid.UUID) (*Universe, error) {
	if cached := s.cache.Get(ctx, id); cached != nil {
		return cached, nil
	}

	u, err := s.repo.GetUniverse(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, u)
	return u, nil
}

func (s *Service) ListUniverses(ctx context.Context) ([]*Universe, error) {
	return s.repo.ListUniverses(ctx)
}

func (s *Service) DeleteUniverse(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteUniverse(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, id)
	s.locks.Delete(id)
	s.logger.Info("Universe deleted", "universe_id", id)
	return nil
}

// AdvanceUniverse runs n sequential simulation steps on a universe. Step
// invocations for one universe are serialized: the snapshot is loaded
// fresh under the per-universe lock and saved with a version check, so
// concurrent advance requests can never operate on the same stale state.
func (s *Service) AdvanceUniverse(ctx context.Context, id uuid.UUID, steps int) (*Universe, *engine.StepResult, error) {
	if steps <= 0 {
		steps = 1
	}
	if steps > s.cfg.MaxStepsPerRequest {
		return nil, nil, apperrors.Validationf("step count %d exceeds maximum %d", steps, s.cfg.MaxStepsPerRequest)
	}

	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.repo.GetUniverse(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if u.Status == engine.StatusEnded {
		return nil, nil, apperrors.Conflictf("universe %s has ended (%s) and no longer accepts steps", id, u.EndCondition)
	}

	sim := u.Simulation()
	result, err := s.engine.Steps(sim, steps)
	if err != nil {
		return nil, nil, apperrors.WrapValidation("simulation rejected snapshot", err)
	}
	u.ApplySimulation(sim)

	if err := s.repo.SaveSnapshot(ctx, u); err != nil {
		return nil, nil, err
	}

	s.cache.Set(ctx, u)

	s.logger.Debug("Universe advanced",
		"universe_id", id,
		"steps", steps,
		"age", u.State.Age,
		"stability", u.State.StabilityIndex,
		"new_anomalies", len(result.Anomalies),
		"status", u.Status,
	)

	return u, result, nil
}

// ResolveAnomaly marks one anomaly resolved and updates the intervention
// metrics. Resolutions share the per-universe lock with advances so two
// requests targeting the same index cannot race each other.
func (s *Service) ResolveAnomaly(ctx context.Context, id uuid.UUID, index int) (*Universe, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.repo.GetUniverse(ctx, id)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(u.Anomalies) {
		return nil, apperrors.NotFoundf("universe %s has no anomaly at index %d", id, index)
	}
	if u.Anomalies[index].Resolved {
		return nil, apperrors.Conflictf("anomaly %d is already resolved", index)
	}

	u.Anomalies[index].Resolved = true
	u.Metrics.PlayerInterventions++
	u.Metrics.AnomalyResolutionRate = resolutionRate(u.Anomalies)

	if err := s.repo.SaveSnapshot(ctx, u); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, u)

	s.logger.Info("Anomaly resolved",
		"universe_id", id,
		"anomaly_index", index,
		"anomaly_type", u.Anomalies[index].Type,
		"resolution_rate", u.Metrics.AnomalyResolutionRate,
	)

	return u, nil
}

func resolutionRate(anomalies []engine.Anomaly) float64 {
	if len(anomalies) == 0 {
		return 0
	}
	resolved := 0
	for _, a := range anomalies {
		if a.Resolved {
			resolved++
		}
	}
	return float64(resolved) / float64(len(anomalies))
}

// RunAutoAdvance periodically advances every ongoing universe by one
// step until the context is cancelled. It reuses AdvanceUniverse, so the
// background tick competes for the same per-universe locks as manual
// requests instead of bypassing them.
func (s *Service) RunAutoAdvance(ctx context.Context) error {
	if !s.cfg.AutoAdvanceEnabled {
		s.logger.Info("Auto-advance disabled")
		return nil
	}

	logger := s.logger.With("component", "auto_advance", "interval", s.cfg.AutoAdvanceInterval)
	logger.Info("Auto-advance loop started")

	ticker := time.NewTicker(s.cfg.AutoAdvanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Auto-advance loop stopped")
			return nil
		case <-ticker.C:
			ids, err := s.repo.ListOngoingIDs(ctx)
			if err != nil {
				logger.Error("Failed to list ongoing universes", "error", err)
				continue
			}

			for _, id := range ids {
				if _, _, err := s.AdvanceUniverse(ctx, id, 1); err != nil {
					// Conflicts are expected when a manual advance
					// lands between the listing and the step.
					if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
						logger.Debug("Skipped universe during auto-advance", "universe_id", id, "error", err)
						continue
					}
					logger.Error("Auto-advance step failed", "universe_id", id, "error", err)
				}
			}
		}
	}
}
