package engine

import (
	"fmt"
	"math"
)

type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusEnded   Status = "ended"
)

type EndCondition string

const (
	EndConditionNone        EndCondition = ""
	EndConditionVacuumDecay EndCondition = "vacuum-decay"
	EndConditionHeatDeath   EndCondition = "heat-death"
)

// Constants are the per-universe cosmological constants. They are fixed
// at universe creation and never change during a run. The engine assumes
// they were validated by the caller; ValidateConstants is the check the
// caller runs at creation time.
type Constants struct {
	GravitationalConstant float64 `json:"gravitational_constant"` // m³ kg⁻¹ s⁻²
	SpeedOfLight          float64 `json:"speed_of_light"`         // m/s
	HubbleConstant        float64 `json:"hubble_constant"`        // km/s/Mpc
	DarkMatterDensity     float64 `json:"dark_matter_density"`    // Ω fraction
	DarkEnergyDensity     float64 `json:"dark_energy_density"`    // Ω fraction
	BaryonicDensity       float64 `json:"baryonic_density"`       // Ω fraction
	CriticalDensity       float64 `json:"critical_density"`       // kg/m³
	PlanckTemperature     float64 `json:"planck_temperature"`     // K
	ObservableGalaxies    float64 `json:"observable_galaxies"`
	AvgStarsPerGalaxy     float64 `json:"avg_stars_per_galaxy"`
	SolarMass             float64 `json:"solar_mass"` // kg
}

// DefaultConstants returns present-day consensus values.
func DefaultConstants() Constants {
	return Constants{
		GravitationalConstant: 6.674e-11,
		SpeedOfLight:          2.998e8,
		HubbleConstant:        70.0,
		DarkMatterDensity:     0.27,
		DarkEnergyDensity:     0.68,
		BaryonicDensity:       0.05,
		CriticalDensity:       9.47e-27,
		PlanckTemperature:     1.417e32,
		ObservableGalaxies:    2e12,
		AvgStarsPerGalaxy:     1e11,
		SolarMass:             1.989e30,
	}
}

// ValidateConstants checks that constants are within viable ranges.
// Callers run this once at universe creation.
func ValidateConstants(c Constants) error {
	if c.HubbleConstant <= 0 {
		return fmt.Errorf("hubble constant must be positive, got %g", c.HubbleConstant)
	}
	if c.DarkMatterDensity < 0 || c.DarkEnergyDensity < 0 || c.BaryonicDensity < 0 {
		return fmt.Errorf("density fractions must be non-negative")
	}
	if c.DarkMatterDensity+c.DarkEnergyDensity+c.BaryonicDensity <= 0 {
		return fmt.Errorf("density fractions must not all be zero")
	}
	if c.PlanckTemperature <= 0 {
		return fmt.Errorf("planck temperature must be positive, got %g", c.PlanckTemperature)
	}
	if c.ObservableGalaxies <= 0 {
		return fmt.Errorf("observable galaxy count must be positive, got %g", c.ObservableGalaxies)
	}
	if c.AvgStarsPerGalaxy <= 0 {
		return fmt.Errorf("average stars per galaxy must be positive, got %g", c.AvgStarsPerGalaxy)
	}
	if c.SolarMass <= 0 {
		return fmt.Errorf("solar mass must be positive, got %g", c.SolarMass)
	}
	return nil
}

// State is the mutable physical state of a universe. Every field must be
// populated before the first step; the engine rejects a partially filled
// state rather than defaulting fields mid-run.
type State struct {
	Age                float64 `json:"age"`            // years
	Temperature        float64 `json:"temperature"`    // K
	ExpansionRate      float64 `json:"expansion_rate"` // km/s/Mpc
	Entropy            float64 `json:"entropy"`
	StabilityIndex     float64 `json:"stability_index"`
	GalaxyCount        float64 `json:"galaxy_count"`
	StarCount          float64 `json:"star_count"`
	BlackHoleCount     float64 `json:"black_hole_count"`
	HabitableSystems   float64 `json:"habitable_systems"`
	LifeBearingPlanets float64 `json:"life_bearing_planets"`
	CivilizationCount  float64 `json:"civilization_count"`
	TotalMass          float64 `json:"total_mass"` // kg
}

// Location is opaque positional metadata for generated entities. The
// engine never simulates it.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type EffectKind string

const (
	EffectStabilityDelta       EffectKind = "stability-delta"
	EffectExpansionMultiplier  EffectKind = "expansion-multiplier"
	EffectEntropyDelta         EffectKind = "entropy-delta"
	EffectStarDeath            EffectKind = "star-death"
	EffectCatastrophicOverride EffectKind = "catastrophic-override"
)

// Effect is one typed operation an anomaly applies to state. Effects are
// applied by a single dispatcher so new kinds stay additive.
type Effect struct {
	Kind      EffectKind `json:"kind"`
	Magnitude float64    `json:"magnitude"`
	Duration  float64    `json:"duration"` // years; metadata for the caller
}

type AnomalyType string

const (
	AnomalyBlackHoleMerger       AnomalyType = "black-hole-merger"
	AnomalyDarkEnergySurge       AnomalyType = "dark-energy-surge"
	AnomalySupernovaChain        AnomalyType = "supernova-chain"
	AnomalyQuantumFluctuation    AnomalyType = "quantum-vacuum-fluctuation"
	AnomalyFalseVacuumDecay      AnomalyType = "false-vacuum-decay"
	AnomalyCosmicStringCollision AnomalyType = "cosmic-string-collision"
)

// Anomaly is a discrete stochastic event perturbing universe state.
// Resolution is owned by the caller; the engine only generates anomalies
// and applies their effects.
type Anomaly struct {
	Type      AnomalyType `json:"type"`
	Severity  int         `json:"severity"` // 1–10
	Location  Location    `json:"location"`
	Radius    float64     `json:"radius"` // Mpc; metadata
	Timestamp float64     `json:"timestamp"` // universe age in years
	Resolved  bool        `json:"resolved"`
	Effects   []Effect    `json:"effects"`
}

type CivilizationType string

const (
	CivilizationType0 CivilizationType = "type0"
	CivilizationType1 CivilizationType = "type1"
	CivilizationType2 CivilizationType = "type2"
	CivilizationType3 CivilizationType = "type3"
)

// Civilization is appended by the life model and never removed by the engine.
type Civilization struct {
	Type                  CivilizationType `json:"type"`
	Location              Location         `json:"location"`
	DevelopmentLevel      float64          `json:"development_level"`
	TechnologicalProgress float64          `json:"technological_progress"`
	Survivability         float64          `json:"survivability"`
	EmergedAt             float64          `json:"emerged_at"` // universe age in years
}

// SignificantEvent is one entry of the append-only audit trail.
type SignificantEvent struct {
	Timestamp   float64  `json:"timestamp"` // universe age in years
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Effects     []Effect `json:"effects"`
}

// Metrics are derived health indicators. PlayerInterventions and
// AnomalyResolutionRate are owned by the caller's resolution path; the
// engine never writes them.
type Metrics struct {
	StabilityScore        float64 `json:"stability_score"`
	ComplexityIndex       float64 `json:"complexity_index"`
	LifePotentialIndex    float64 `json:"life_potential_index"`
	PlayerInterventions   int     `json:"player_interventions"`
	AnomalyResolutionRate float64 `json:"anomaly_resolution_rate"`
}

// Simulation is the full snapshot the engine advances: physical state plus
// the entity rosters and audit trail that accumulate across steps. The
// random stream state is part of the snapshot so a persisted simulation
// resumes exactly where it left off.
type Simulation struct {
	Constants     Constants          `json:"constants"`
	State         State              `json:"state"`
	Anomalies     []Anomaly          `json:"anomalies"`
	Civilizations []Civilization     `json:"civilizations"`
	Events        []SignificantEvent `json:"events"`
	Metrics       Metrics            `json:"metrics"`
	Status        Status             `json:"status"`
	EndCondition  EndCondition       `json:"end_condition"`
	RandomState   uint32             `json:"random_state"`
}

// NewSimulation builds the explicit initial snapshot for a freshly created
// universe. This is the only place initial state is fabricated; the step
// functions require a fully populated snapshot.
func NewSimulation(constants Constants, seed string) (*Simulation, error) {
	if err := ValidateConstants(constants); err != nil {
		return nil, fmt.Errorf("invalid constants: %w", err)
	}
	return &Simulation{
		Constants: constants,
		State: State{
			Age:            0,
			Temperature:    constants.PlanckTemperature,
			ExpansionRate:  constants.HubbleConstant,
			Entropy:        0,
			StabilityIndex: 1,
		},
		Metrics: Metrics{
			StabilityScore:     1,
			LifePotentialIndex: 0,
		},
		Status:      StatusOngoing,
		RandomState: NewRand(seed).State(),
	}, nil
}

// UnresolvedAnomalies counts anomalies not yet resolved by the caller.
func (s *Simulation) UnresolvedAnomalies() int {
	n := 0
	for _, a := range s.Anomalies {
		if !a.Resolved {
			n++
		}
	}
	return n
}

func (s *Simulation) validate() error {
	if s == nil {
		return fmt.Errorf("simulation is nil")
	}
	if err := ValidateConstants(s.Constants); err != nil {
		return fmt.Errorf("invalid constants: %w", err)
	}
	st := s.State
	if st.Age < 0 {
		return fmt.Errorf("age must be non-negative, got %g", st.Age)
	}
	if st.Temperature <= 0 || math.IsNaN(st.Temperature) || math.IsInf(st.Temperature, 0) {
		return fmt.Errorf("temperature must be positive and finite, got %g", st.Temperature)
	}
	if st.ExpansionRate <= 0 || math.IsNaN(st.ExpansionRate) || math.IsInf(st.ExpansionRate, 0) {
		return fmt.Errorf("expansion rate must be positive and finite, got %g", st.ExpansionRate)
	}
	if st.Entropy < 0 {
		return fmt.Errorf("entropy must be non-negative, got %g", st.Entropy)
	}
	if st.StabilityIndex < 0 || st.StabilityIndex > 1 {
		return fmt.Errorf("stability index must be in [0,1], got %g", st.StabilityIndex)
	}
	counts := []struct {
		name  string
		value float64
	}{
		{"galaxy count", st.GalaxyCount},
		{"star count", st.StarCount},
		{"black hole count", st.BlackHoleCount},
		{"habitable systems", st.HabitableSystems},
		{"life bearing planets", st.LifeBearingPlanets},
		{"civilization count", st.CivilizationCount},
		{"total mass", st.TotalMass},
	}
	for _, c := range counts {
		if c.value < 0 || math.IsNaN(c.value) {
			return fmt.Errorf("%s must be non-negative, got %g", c.name, c.value)
		}
	}
	return nil
}
