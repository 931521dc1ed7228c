package universe

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"cosmos-server/internal/engine"
	"cosmos-server/internal/shared/config"
	apperrors "cosmos-server/internal/shared/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testService() *Service {
	cfg := config.SimulationConfig{
		TimeStepYears:       1e8,
		MaxStepsPerRequest:  1000,
		AutoAdvanceInterval: time.Minute,
	}
	return NewService(nil, NewSnapshotCache(nil, time.Minute, testLogger()), cfg, testLogger())
}

func TestCreateUniverseRequiresName(t *testing.T) {
	svc := testService()

	_, err := svc.CreateUniverse(context.Background(), CreateUniverseRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestCreateUniverseRejectsInvalidConstants(t *testing.T) {
	svc := testService()

	bad := engine.DefaultConstants()
	bad.HubbleConstant = -1

	_, err := svc.CreateUniverse(context.Background(), CreateUniverseRequest{
		Name:      "broken",
		Constants: &bad,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestResolutionRate(t *testing.T) {
	assert.Zero(t, resolutionRate(nil))

	anomalies := []engine.Anomaly{
		{Type: "quantum-fluctuation", Resolved: true},
		{Type: "supernova-chain"},
		{Type: "black-hole-merger", Resolved: true},
		{Type: "dark-energy-surge"},
	}
	assert.InDelta(t, 0.5, resolutionRate(anomalies), 1e-12)

	anomalies[1].Resolved = true
	anomalies[3].Resolved = true
	assert.InDelta(t, 1.0, resolutionRate(anomalies), 1e-12)
}

func TestSnapshotCacheDisabledWithoutClient(t *testing.T) {
	cache := NewSnapshotCache(nil, time.Minute, testLogger())
	ctx := context.Background()
	id := uuid.New()

	assert.Nil(t, cache.Get(ctx, id))

	// Writes and invalidations on a disabled cache are no-ops.
	cache.Set(ctx, &Universe{ID: id})
	cache.Invalidate(ctx, id)
	assert.Nil(t, cache.Get(ctx, id))
}

func TestLockForReturnsSameMutexPerUniverse(t *testing.T) {
	svc := testService()
	a := uuid.New()
	b := uuid.New()

	require.Same(t, svc.lockFor(a), svc.lockFor(a))
	assert.NotSame(t, svc.lockFor(a), svc.lockFor(b))
}
