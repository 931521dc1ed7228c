package engine

import "math"

// Shared physical anchors. The reference age pins the scale factor and
// CMB temperature to their present-day values.
const (
	secondsPerYear = 3.156e7
	kmPerMpc       = 3.0857e19

	referenceAge   = 1.38e10 // years
	cmbTemperature = 2.725   // K at the reference age

	// exp() arguments above this produce a scale factor whose cube
	// overflows float64; the matter term is effectively zero there anyway.
	maxExpArgument = 230.0

	entropyCoefficient = 1.0
)

// scaleFactor returns a = exp(H0 · t) for an age in years, with the
// exponent capped so a³ stays finite.
func scaleFactor(c Constants, ageYears float64) float64 {
	hubbleSI := c.HubbleConstant / kmPerMpc // s⁻¹
	arg := hubbleSI * ageYears * secondsPerYear
	if arg > maxExpArgument {
		arg = maxExpArgument
	}
	return math.Exp(arg)
}

// advanceExpansion moves age forward one time step and recomputes
// expansion rate, temperature, and entropy from the Friedmann-style
// formula. Degenerate results clamp to the last valid value; the run
// never fails on a bad formula result. Returns the number of clamps
// applied so the orchestrator can record them.
func advanceExpansion(s *State, c Constants, timeStep float64) int {
	clamps := 0

	s.Age += timeStep

	prevA := scaleFactor(c, s.Age-timeStep)
	a := scaleFactor(c, s.Age)

	// H(t) = H0 · sqrt(Ωm/a³ + ΩΛ)
	matter := (c.DarkMatterDensity + c.BaryonicDensity) / (a * a * a)
	rate := c.HubbleConstant * math.Sqrt(matter+c.DarkEnergyDensity)
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = s.ExpansionRate
		clamps++
	}
	s.ExpansionRate = rate

	// Inverse-scale-factor cooling anchored to the present-day CMB
	// temperature at the reference age. Never warms without an anomaly.
	refA := scaleFactor(c, referenceAge)
	temp := cmbTemperature * refA / a
	if temp <= 0 || math.IsNaN(temp) || math.IsInf(temp, 0) || temp > s.Temperature {
		temp = s.Temperature
		clamps++
	}
	s.Temperature = temp

	// Entropy grows with the expanded volume: ΔS ∝ ln(a³/a³prev).
	delta := entropyCoefficient * 3 * (math.Log(a) - math.Log(prevA))
	if delta < 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		delta = 0
		clamps++
	}
	s.Entropy += delta

	return clamps
}
