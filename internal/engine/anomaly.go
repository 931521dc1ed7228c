package engine

import (
	"fmt"
	"math"
)

// anomalyBaseRate throttles how often any anomaly can occur per step.
// The effective chance scales with the universe's activity level
// (current galaxies vs the observable target).
const anomalyBaseRate = 0.15

const minSeverity, maxSeverity = 1, 10

// catalogEntry describes one anomaly kind: how likely it is once the
// activity gate passes, when it can occur at all, and the deterministic
// effect set it produces for a given severity.
type catalogEntry struct {
	anomalyType AnomalyType
	probability float64
	description string
	condition   func(sim *Simulation) bool
	effects     func(severity int) []Effect
}

// anomalyCatalog is iterated in fixed order so random draws stay
// reproducible for a given seed and state.
var anomalyCatalog = []catalogEntry{
	{
		anomalyType: AnomalyBlackHoleMerger,
		probability: 0.30,
		description: "Two supermassive black holes merged, flooding spacetime with gravitational waves",
		condition: func(sim *Simulation) bool {
			return sim.State.BlackHoleCount >= 2
		},
		effects: func(severity int) []Effect {
			return []Effect{
				{Kind: EffectStabilityDelta, Magnitude: -0.005 * float64(severity), Duration: 1e6},
				{Kind: EffectEntropyDelta, Magnitude: 10 * float64(severity)},
			}
		},
	},
	{
		anomalyType: AnomalyDarkEnergySurge,
		probability: 0.20,
		description: "A localized surge in dark energy accelerated the expansion of space",
		condition: func(sim *Simulation) bool {
			return sim.State.Age >= 1e9
		},
		effects: func(severity int) []Effect {
			return []Effect{
				{Kind: EffectExpansionMultiplier, Magnitude: 1 + 0.02*float64(severity), Duration: 1e7},
				{Kind: EffectStabilityDelta, Magnitude: -0.01 * float64(severity), Duration: 1e7},
			}
		},
	},
	{
		anomalyType: AnomalySupernovaChain,
		probability: 0.25,
		description: "A chain of supernovae tore through a dense stellar cluster",
		condition: func(sim *Simulation) bool {
			return sim.State.StarCount >= 1e6
		},
		effects: func(severity int) []Effect {
			return []Effect{
				{Kind: EffectStarDeath, Magnitude: 25000 * float64(severity)},
				{Kind: EffectEntropyDelta, Magnitude: 5 * float64(severity)},
			}
		},
	},
	{
		anomalyType: AnomalyQuantumFluctuation,
		probability: 0.15,
		description: "A quantum vacuum fluctuation rippled across a cosmological volume",
		condition: func(sim *Simulation) bool {
			return true
		},
		effects: func(severity int) []Effect {
			return []Effect{
				{Kind: EffectEntropyDelta, Magnitude: 2 * float64(severity)},
				{Kind: EffectStabilityDelta, Magnitude: -0.002 * float64(severity), Duration: 1e5},
			}
		},
	},
	{
		anomalyType: AnomalyFalseVacuumDecay,
		probability: 0.01,
		description: "A bubble of true vacuum nucleated and is expanding at light speed",
		condition: func(sim *Simulation) bool {
			return sim.State.Age >= 5e9
		},
		effects: func(severity int) []Effect {
			// Catastrophic: halves stability outright instead of a
			// bounded delta. This can end the universe within one step.
			return []Effect{
				{Kind: EffectCatastrophicOverride, Magnitude: 0.5},
				{Kind: EffectEntropyDelta, Magnitude: 100 * float64(severity)},
			}
		},
	},
	{
		anomalyType: AnomalyCosmicStringCollision,
		probability: 0.10,
		description: "Two cosmic strings collided, whipping spacetime into violent oscillation",
		condition: func(sim *Simulation) bool {
			return sim.State.Age >= 1e8 && sim.State.Age <= 1e10
		},
		effects: func(severity int) []Effect {
			return []Effect{
				{Kind: EffectExpansionMultiplier, Magnitude: 1 + 0.05*float64(severity), Duration: 1e6},
				{Kind: EffectStabilityDelta, Magnitude: -0.015 * float64(severity), Duration: 1e6},
				{Kind: EffectEntropyDelta, Magnitude: 20 * float64(severity)},
			}
		},
	},
}

// generateAnomalies rolls the activity gate, then each catalog entry
// independently. Every generated anomaly has its effects applied to
// state immediately, so later entries in the same step see the already
// perturbed state. Appends both Anomaly and SignificantEvent records and
// returns the new anomalies.
func generateAnomalies(sim *Simulation, rng *Rand) []Anomaly {
	activity := clamp01(sim.State.GalaxyCount / sim.Constants.ObservableGalaxies)
	if rng.Float64() > anomalyBaseRate*activity {
		return nil
	}

	var generated []Anomaly
	for _, entry := range anomalyCatalog {
		if !entry.condition(sim) {
			continue
		}
		if rng.Float64() >= entry.probability {
			continue
		}

		severity := rng.IntBetween(minSeverity, maxSeverity+1)
		anomaly := Anomaly{
			Type:      entry.anomalyType,
			Severity:  severity,
			Location:  randomLocation(rng),
			Radius:    50 * float64(severity),
			Timestamp: sim.State.Age,
			Effects:   entry.effects(severity),
		}

		applyEffects(&sim.State, anomaly.Effects)

		sim.Anomalies = append(sim.Anomalies, anomaly)
		sim.Events = append(sim.Events, SignificantEvent{
			Timestamp:   sim.State.Age,
			Type:        string(entry.anomalyType),
			Description: fmt.Sprintf("%s (severity %d)", entry.description, severity),
			Effects:     anomaly.Effects,
		})
		generated = append(generated, anomaly)
	}
	return generated
}

// applyEffects is the single dispatcher for anomaly effect operations.
// All effects of one anomaly are applied back to back; no partially
// applied state is ever observable between anomalies.
func applyEffects(s *State, effects []Effect) {
	for _, e := range effects {
		switch e.Kind {
		case EffectStabilityDelta:
			s.StabilityIndex = clamp01(s.StabilityIndex + e.Magnitude)
		case EffectExpansionMultiplier:
			s.ExpansionRate *= e.Magnitude
		case EffectEntropyDelta:
			s.Entropy = math.Max(0, s.Entropy+e.Magnitude)
		case EffectStarDeath:
			s.StarCount = math.Max(0, s.StarCount-e.Magnitude)
		case EffectCatastrophicOverride:
			s.StabilityIndex = clamp01(s.StabilityIndex * e.Magnitude)
		}
	}
}
