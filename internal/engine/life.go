package engine

import "math"

// Life and civilization epochs.
const (
	lifeFloor         = 1e9 // years; no life before this age
	metallicitySpan   = 9e9 // years to reach full metallicity
	lifeRampSpan      = 5e9 // years for the life probability to mature
	civilizationFloor = 4e9 // years; no civilizations before this age

	habitableZoneBase      = 0.15 // fraction of stars at full metallicity
	lifeProbabilityScale   = 0.01
	civilizationProbability = 1e-7

	// New civilization records appended per step, so the roster stays a
	// bounded sample while CivilizationCount carries the true magnitude.
	maxNewCivilizationsPerStep = 3
)

// Civilization tier age gates and draw probabilities.
const (
	type1MinAge = 6e9
	type2MinAge = 9e9
	type3MinAge = 1.2e10

	type3Probability = 0.02
	type2Probability = 0.10
	type1Probability = 0.30
)

// temperatureSuitability is the Gaussian habitability factor centered on
// the present-day background temperature. It is shared between the life
// model and the stability calculator and must stay identical in both.
func temperatureSuitability(temperature float64) float64 {
	d := (temperature - cmbTemperature) / 15.0
	return clamp01(math.Exp(-d * d))
}

// advanceLife derives habitable systems, life-bearing planets, and
// civilization counts from the structure counts, and appends new
// civilization records when the count target exceeds the roster.
func advanceLife(sim *Simulation, rng *Rand) {
	s := &sim.State
	if s.Age < lifeFloor {
		return
	}

	metallicity := clamp01((s.Age - lifeFloor) / metallicitySpan)
	s.HabitableSystems = s.StarCount * habitableZoneBase * metallicity

	maturity := clamp01((s.Age - lifeFloor) / lifeRampSpan)
	lifeProbability := temperatureSuitability(s.Temperature) * metallicity * maturity * lifeProbabilityScale
	s.LifeBearingPlanets = s.HabitableSystems * lifeProbability

	if s.Age < civilizationFloor {
		return
	}
	s.CivilizationCount = math.Floor(s.LifeBearingPlanets * civilizationProbability)

	for i := 0; i < maxNewCivilizationsPerStep; i++ {
		if float64(len(sim.Civilizations)) >= s.CivilizationCount {
			break
		}
		sim.Civilizations = append(sim.Civilizations, newCivilization(s.Age, rng))
	}
}

// newCivilization draws a civilization from the age-gated type ladder.
// Younger universes only produce the lowest tier.
func newCivilization(age float64, rng *Rand) Civilization {
	roll := rng.Float64()
	civType := CivilizationType0
	switch {
	case age >= type3MinAge && roll < type3Probability:
		civType = CivilizationType3
	case age >= type2MinAge && roll < type2Probability:
		civType = CivilizationType2
	case age >= type1MinAge && roll < type1Probability:
		civType = CivilizationType1
	}

	return Civilization{
		Type:                  civType,
		Location:              randomLocation(rng),
		DevelopmentLevel:      rng.Float64(),
		TechnologicalProgress: rng.Float64(),
		Survivability:         rng.Float64(),
		EmergedAt:             age,
	}
}

func randomLocation(rng *Rand) Location {
	return Location{
		X: rng.FloatBetween(-500, 500),
		Y: rng.FloatBetween(-500, 500),
		Z: rng.FloatBetween(-500, 500),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
