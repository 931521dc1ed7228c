package engine

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(timeStep float64) *Engine {
	return New(timeStep, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestSimulation(t *testing.T, seed string) *Simulation {
	t.Helper()
	sim, err := NewSimulation(DefaultConstants(), seed)
	require.NoError(t, err)
	return sim
}

func TestNewSimulationRejectsInvalidConstants(t *testing.T) {
	bad := DefaultConstants()
	bad.HubbleConstant = 0

	_, err := NewSimulation(bad, "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hubble constant")
}

func TestStepRejectsInvalidSnapshot(t *testing.T) {
	eng := testEngine(1e8)

	tests := []struct {
		name   string
		mutate func(sim *Simulation)
	}{
		{"negative age", func(sim *Simulation) { sim.State.Age = -1 }},
		{"zero temperature", func(sim *Simulation) { sim.State.Temperature = 0 }},
		{"nan expansion rate", func(sim *Simulation) { sim.State.ExpansionRate = math.NaN() }},
		{"stability above one", func(sim *Simulation) { sim.State.StabilityIndex = 1.5 }},
		{"negative galaxy count", func(sim *Simulation) { sim.State.GalaxyCount = -5 }},
		{"degenerate constants", func(sim *Simulation) { sim.Constants.ObservableGalaxies = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulation(t, "invalid")
			tt.mutate(sim)
			before := *sim

			_, err := eng.Step(sim)
			require.Error(t, err)

			// NaN never compares equal to itself; replace it with a
			// sentinel on both sides so deep equality still proves the
			// snapshot was left untouched.
			if math.IsNaN(before.State.ExpansionRate) && math.IsNaN(sim.State.ExpansionRate) {
				before.State.ExpansionRate = -1
				sim.State.ExpansionRate = -1
			}
			assert.Equal(t, before, *sim, "failed validation must not mutate the snapshot")
		})
	}
}

// A single step from a freshly created universe: age advances by exactly
// the time step, nothing condenses yet, and the stability index stays a
// finite value in [0,1].
func TestFreshUniverseFirstStep(t *testing.T) {
	eng := testEngine(1e8)
	sim := newTestSimulation(t, "test-seed")

	result, err := eng.Step(sim)
	require.NoError(t, err)

	assert.Equal(t, 1e8, sim.State.Age)
	assert.Zero(t, sim.State.GalaxyCount)
	assert.Zero(t, sim.State.StarCount)
	assert.Zero(t, sim.State.BlackHoleCount)
	assert.Zero(t, sim.State.HabitableSystems)
	assert.Zero(t, sim.State.LifeBearingPlanets)
	assert.Zero(t, sim.State.CivilizationCount)

	assert.False(t, math.IsNaN(sim.State.StabilityIndex))
	assert.GreaterOrEqual(t, sim.State.StabilityIndex, 0.0)
	assert.LessOrEqual(t, sim.State.StabilityIndex, 1.0)

	assert.Equal(t, StatusOngoing, result.Status)
	assert.Len(t, sim.Anomalies, len(result.Anomalies))
}

func TestAgeAdvancesByExactTimeStep(t *testing.T) {
	eng := testEngine(1e8)
	sim := newTestSimulation(t, "age-check")

	for i := 1; i <= 50; i++ {
		_, err := eng.Step(sim)
		require.NoError(t, err)
		require.Equal(t, float64(i)*1e8, sim.State.Age)
	}
}

// Two independent 200-step runs from the same seed must reproduce the
// same snapshot, anomaly for anomaly and civilization roll for
// civilization roll.
func TestDeterministicRuns(t *testing.T) {
	run := func() *Simulation {
		eng := testEngine(1e8)
		sim, err := NewSimulation(DefaultConstants(), "test-seed")
		require.NoError(t, err)
		for i := 0; i < 200; i++ {
			_, err := eng.Step(sim)
			require.NoError(t, err)
		}
		return sim
	}

	first := run()
	second := run()

	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.Anomalies, second.Anomalies)
	assert.Equal(t, first.Civilizations, second.Civilizations)
	assert.Equal(t, first.Events, second.Events)
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, first.RandomState, second.RandomState)
}

func TestStepsMatchesRepeatedStep(t *testing.T) {
	manual := newTestSimulation(t, "batched")
	batched := newTestSimulation(t, "batched")
	eng := testEngine(1e8)

	for i := 0; i < 25; i++ {
		_, err := eng.Step(manual)
		require.NoError(t, err)
	}
	result, err := eng.Steps(batched, 25)
	require.NoError(t, err)

	assert.Equal(t, manual.State, batched.State)
	assert.Equal(t, manual.Anomalies, batched.Anomalies)
	assert.Len(t, result.Anomalies, len(batched.Anomalies))
}

func TestStepsRejectsNonPositiveCount(t *testing.T) {
	eng := testEngine(1e8)
	sim := newTestSimulation(t, "count")

	_, err := eng.Steps(sim, 0)
	require.Error(t, err)
	_, err = eng.Steps(sim, -3)
	require.Error(t, err)
}

// Counts may only shrink through explicit anomaly effects; the growth
// models themselves never move them backwards.
func TestMonotonicity(t *testing.T) {
	eng := testEngine(1e8)
	sim := newTestSimulation(t, "monotonic")

	prev := sim.State
	for i := 0; i < 200; i++ {
		result, err := eng.Step(sim)
		require.NoError(t, err)

		require.GreaterOrEqual(t, sim.State.GalaxyCount, prev.GalaxyCount)
		require.GreaterOrEqual(t, sim.State.BlackHoleCount, prev.BlackHoleCount)
		require.GreaterOrEqual(t, sim.State.Entropy, prev.Entropy)
		require.LessOrEqual(t, sim.State.Temperature, prev.Temperature)

		if !hasEffect(result.Anomalies, EffectStarDeath) {
			require.GreaterOrEqual(t, sim.State.StarCount, prev.StarCount)
		}
		prev = sim.State
	}
}

func hasEffect(anomalies []Anomaly, kind EffectKind) bool {
	for _, a := range anomalies {
		for _, e := range a.Effects {
			if e.Kind == kind {
				return true
			}
		}
	}
	return false
}

func TestBoundedness(t *testing.T) {
	eng := testEngine(1e9)
	sim := newTestSimulation(t, "bounded")

	for i := 0; i < 300; i++ {
		_, err := eng.Step(sim)
		require.NoError(t, err)

		for name, v := range map[string]float64{
			"stability":      sim.State.StabilityIndex,
			"complexity":     sim.Metrics.ComplexityIndex,
			"life potential": sim.Metrics.LifePotentialIndex,
		} {
			require.False(t, math.IsNaN(v), "%s is NaN at step %d", name, i)
			require.GreaterOrEqual(t, v, 0.0, "%s below 0 at step %d", name, i)
			require.LessOrEqual(t, v, 1.0, "%s above 1 at step %d", name, i)
		}
	}
}

// Below the recombination floor nothing condenses at all.
func TestNoStructureBeforeRecombinationFloor(t *testing.T) {
	eng := testEngine(1e4)
	sim := newTestSimulation(t, "early")

	for i := 0; i < 30; i++ {
		_, err := eng.Step(sim)
		require.NoError(t, err)
	}

	require.Less(t, sim.State.Age, recombinationFloor)
	assert.Zero(t, sim.State.GalaxyCount)
	assert.Zero(t, sim.State.StarCount)
	assert.Zero(t, sim.State.BlackHoleCount)
}

func TestVacuumDecayEndCondition(t *testing.T) {
	eng := testEngine(1e8)
	sim := newTestSimulation(t, "decay")
	sim.State.StabilityIndex = 0.05

	eng.evaluateEndCondition(sim)

	assert.Equal(t, StatusEnded, sim.Status)
	assert.Equal(t, EndConditionVacuumDecay, sim.EndCondition)
}

func TestHeatDeathEndCondition(t *testing.T) {
	eng := testEngine(1e8)
	sim := newTestSimulation(t, "heat-death")
	sim.State.Age = 2e14
	sim.State.Temperature = cmbTemperature

	result, err := eng.Step(sim)
	require.NoError(t, err)

	assert.Equal(t, StatusEnded, result.Status)
	assert.Equal(t, EndConditionHeatDeath, result.EndCondition)
}

func TestStepsStopsAtEndCondition(t *testing.T) {
	eng := testEngine(1e8)
	sim := newTestSimulation(t, "stop")
	sim.State.Age = 2e14
	sim.State.Temperature = cmbTemperature

	_, err := eng.Steps(sim, 10)
	require.NoError(t, err)

	// One step past the heat-death threshold, then no further advance.
	assert.Equal(t, 2e14+1e8, sim.State.Age)
	assert.Equal(t, StatusEnded, sim.Status)
}

func TestLongRunSurvivesDegenerateNumerics(t *testing.T) {
	eng := testEngine(1e12)
	sim := newTestSimulation(t, "degenerate")

	for i := 0; i < 150 && sim.Status == StatusOngoing; i++ {
		_, err := eng.Step(sim)
		require.NoError(t, err)
		require.False(t, math.IsNaN(sim.State.ExpansionRate))
		require.False(t, math.IsInf(sim.State.ExpansionRate, 0))
		require.Greater(t, sim.State.Temperature, 0.0)
	}
}
