package engine

import "math"

// Structure formation epochs. Growth follows time-windowed Gaussian
// formation-rate curves toward asymptotic targets.
const (
	recombinationFloor = 3.8e5 // years; no structure below this age

	galaxyWindowStart    = 5e8 // years; first galaxies
	galaxyFormationPeak  = 3e9
	galaxyFormationWidth = 2e9
	galaxyGrowthFraction = 0.05

	starWindowStart    = 1e9 // years
	starFormationPeak  = 5e9
	starFormationWidth = 3e9
	starGrowthFraction = 0.05

	blackHoleFraction = 1e-3 // of the star count
)

// formationRate is the time-windowed Gaussian formation-rate curve for a
// given epoch. Zero before the window opens: nothing condenses until the
// first structures of that kind can exist.
func formationRate(age, windowStart, peak, width float64) float64 {
	if age < windowStart {
		return 0
	}
	d := (age - peak) / width
	return math.Exp(-d * d)
}

// advanceStructure grows galaxy, star, and black-hole counts toward
// their asymptotic targets. Counts never shrink here; shrinkage only
// happens through anomaly effects.
func advanceStructure(s *State, c Constants) {
	if s.Age < recombinationFloor {
		return
	}

	completion := math.Min((s.Age/referenceAge)*(s.Age/referenceAge), 1)

	galaxyTarget := c.ObservableGalaxies * completion
	galaxyDelta := (galaxyTarget - s.GalaxyCount) * galaxyGrowthFraction *
		formationRate(s.Age, galaxyWindowStart, galaxyFormationPeak, galaxyFormationWidth)
	if galaxyDelta > 0 {
		s.GalaxyCount += galaxyDelta
	}

	starTarget := s.GalaxyCount * c.AvgStarsPerGalaxy
	starDelta := (starTarget - s.StarCount) * starGrowthFraction *
		formationRate(s.Age, starWindowStart, starFormationPeak, starFormationWidth)
	if starDelta > 0 {
		s.StarCount += starDelta
	}

	// Black holes track the star count rather than growing independently.
	if bh := blackHoleFraction * s.StarCount; bh > s.BlackHoleCount {
		s.BlackHoleCount = bh
	}

	// Total mass is derived: luminous mass scaled up by the matter fraction
	// locked in dark matter.
	stellarMass := s.StarCount * c.SolarMass
	if c.BaryonicDensity > 0 {
		s.TotalMass = stellarMass * (c.DarkMatterDensity + c.BaryonicDensity) / c.BaryonicDensity
	} else {
		s.TotalMass = stellarMass
	}
}
