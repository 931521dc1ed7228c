// Package engine is the deterministic cosmological state-evolution core.
// Given a universe snapshot it computes the next state after one fixed
// time step: expansion and cooling, structure formation, life emergence,
// the composite stability index, and seeded anomaly generation. The
// engine performs no I/O and owns no shared mutable resource beyond the
// snapshot it is handed; callers must serialize steps per universe.
package engine

import (
	"fmt"
	"log/slog"
)

// End-of-life thresholds.
const (
	vacuumDecayThreshold = 0.1  // stability index
	heatDeathAge         = 1e14 // years
)

// StepResult reports what one (or several sequential) steps produced on
// top of the mutated snapshot.
type StepResult struct {
	Anomalies    []Anomaly
	Events       []SignificantEvent
	Status       Status
	EndCondition EndCondition
}

// Engine advances simulations one fixed time step at a time. It is
// synchronous and stateless between calls; all per-universe state,
// including the random stream position, lives in the Simulation snapshot.
type Engine struct {
	timeStep float64 // years
	logger   *slog.Logger
}

func New(timeStepYears float64, logger *slog.Logger) *Engine {
	return &Engine{
		timeStep: timeStepYears,
		logger:   logger.With("component", "engine"),
	}
}

// Step advances the simulation by exactly one time step, running the
// models in fixed order: expansion, structure, life, stability, anomaly
// generation, end-condition evaluation. Stability is computed before
// anomalies so the anomaly-load penalty reflects the previous step's
// unresolved count; anomaly effects then adjust it directly.
//
// The snapshot is validated before anything mutates; an invalid snapshot
// returns an error and leaves it untouched.
func (e *Engine) Step(sim *Simulation) (*StepResult, error) {
	if err := sim.validate(); err != nil {
		return nil, fmt.Errorf("cannot step simulation: %w", err)
	}

	rng := RandFromState(sim.RandomState)

	clamps := advanceExpansion(&sim.State, sim.Constants, e.timeStep)
	if clamps > 0 {
		e.logger.Debug("Clamped degenerate expansion values",
			"age", sim.State.Age,
			"clamps", clamps)
	}

	advanceStructure(&sim.State, sim.Constants)
	advanceLife(sim, rng)
	computeStability(sim)
	anomalies := generateAnomalies(sim, rng)

	var events []SignificantEvent
	if n := len(anomalies); n > 0 {
		events = sim.Events[len(sim.Events)-n:]
	}

	sim.RandomState = rng.State()
	e.evaluateEndCondition(sim)

	return &StepResult{
		Anomalies:    anomalies,
		Events:       events,
		Status:       sim.Status,
		EndCondition: sim.EndCondition,
	}, nil
}

// Steps runs n sequential steps. Steps are strictly ordered because each
// depends on the previous state; there is no parallel execution. Stops
// early when the universe reaches a terminal condition.
func (e *Engine) Steps(sim *Simulation, n int) (*StepResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("step count must be positive, got %d", n)
	}

	total := &StepResult{Status: sim.Status, EndCondition: sim.EndCondition}
	for i := 0; i < n; i++ {
		result, err := e.Step(sim)
		if err != nil {
			return nil, err
		}
		total.Anomalies = append(total.Anomalies, result.Anomalies...)
		total.Events = append(total.Events, result.Events...)
		total.Status = result.Status
		total.EndCondition = result.EndCondition
		if result.Status == StatusEnded {
			break
		}
	}
	return total, nil
}

// evaluateEndCondition inspects the post-step state for terminal
// conditions. The check is advisory: the engine never refuses a future
// step on its own, callers must consult the status before invoking again.
func (e *Engine) evaluateEndCondition(sim *Simulation) {
	if sim.Status == StatusEnded {
		return
	}
	switch {
	case sim.State.StabilityIndex < vacuumDecayThreshold:
		sim.Status = StatusEnded
		sim.EndCondition = EndConditionVacuumDecay
		e.logger.Info("Universe ended", "condition", sim.EndCondition, "age", sim.State.Age)
	case sim.State.Age > heatDeathAge:
		sim.Status = StatusEnded
		sim.EndCondition = EndConditionHeatDeath
		e.logger.Info("Universe ended", "condition", sim.EndCondition, "age", sim.State.Age)
	}
}
