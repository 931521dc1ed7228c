package engine

import "math"

// Stability index weights. They sum to 1.0.
const (
	weightEntropy       = 0.30
	weightStructure     = 0.25
	weightEnergyBalance = 0.20
	weightTemperature   = 0.15
	weightAnomalyLoad   = 0.10

	entropyDecayScale  = 120.0
	anomalyLoadPenalty = 0.05
)

// Magnitude ceilings normalizing the complexity blend (log10 scale).
const (
	galaxyMagnitudeCeiling       = 12.0
	starMagnitudeCeiling         = 24.0
	civilizationMagnitudeCeiling = 9.0
)

// computeStability combines entropy decay, structure completion, the
// matter/dark-energy balance, temperature suitability, and the load of
// unresolved anomalies into a single [0,1] score, then derives the
// secondary metrics from it.
func computeStability(sim *Simulation) {
	s := &sim.State
	c := sim.Constants

	entropyFactor := math.Exp(-s.Entropy / entropyDecayScale)

	structureFactor := 1.0
	if expected := c.ObservableGalaxies * math.Min((s.Age/referenceAge)*(s.Age/referenceAge), 1); expected > 0 {
		structureFactor = math.Min(s.GalaxyCount/expected, 1)
	}

	// Matter dominance reads as stable; a dark-energy dominated universe
	// is coasting toward heat death.
	a := scaleFactor(c, s.Age)
	matter := (c.DarkMatterDensity + c.BaryonicDensity) / (a * a * a)
	energyBalance := 0.0
	if total := matter + c.DarkEnergyDensity; total > 0 {
		energyBalance = matter / total
	}

	tempFactor := temperatureSuitability(s.Temperature)

	anomalyFactor := math.Max(0, 1-anomalyLoadPenalty*float64(sim.UnresolvedAnomalies()))

	s.StabilityIndex = clamp01(
		weightEntropy*entropyFactor +
			weightStructure*structureFactor +
			weightEnergyBalance*energyBalance +
			weightTemperature*tempFactor +
			weightAnomalyLoad*anomalyFactor,
	)

	sim.Metrics.StabilityScore = s.StabilityIndex
	sim.Metrics.ComplexityIndex = complexityIndex(s)
	sim.Metrics.LifePotentialIndex = lifePotentialIndex(s)
}

// complexityIndex is a log-scaled blend of structure and civilization
// counts, each normalized by its magnitude ceiling.
func complexityIndex(s *State) float64 {
	galaxies := math.Log10(1+s.GalaxyCount) / galaxyMagnitudeCeiling
	stars := math.Log10(1+s.StarCount) / starMagnitudeCeiling
	civs := math.Log10(1+s.CivilizationCount) / civilizationMagnitudeCeiling
	return clamp01(0.4*galaxies + 0.4*stars + 0.2*civs)
}

// lifePotentialIndex blends the habitable fraction, temperature
// suitability, and overall stability.
func lifePotentialIndex(s *State) float64 {
	habitableFraction := 0.0
	if s.StarCount > 0 {
		habitableFraction = clamp01(s.HabitableSystems / s.StarCount)
	}
	return clamp01(0.4*habitableFraction + 0.3*temperatureSuitability(s.Temperature) + 0.3*s.StabilityIndex)
}
