package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEffects(t *testing.T) {
	tests := []struct {
		name   string
		state  State
		effect Effect
		check  func(t *testing.T, s State)
	}{
		{
			name:   "stability delta",
			state:  State{StabilityIndex: 0.5},
			effect: Effect{Kind: EffectStabilityDelta, Magnitude: -0.2},
			check: func(t *testing.T, s State) {
				assert.InDelta(t, 0.3, s.StabilityIndex, 1e-12)
			},
		},
		{
			name:   "stability delta clamps at zero",
			state:  State{StabilityIndex: 0.1},
			effect: Effect{Kind: EffectStabilityDelta, Magnitude: -0.5},
			check: func(t *testing.T, s State) {
				assert.Zero(t, s.StabilityIndex)
			},
		},
		{
			name:   "expansion multiplier",
			state:  State{ExpansionRate: 70},
			effect: Effect{Kind: EffectExpansionMultiplier, Magnitude: 1.2},
			check: func(t *testing.T, s State) {
				assert.InDelta(t, 84, s.ExpansionRate, 1e-9)
			},
		},
		{
			name:   "entropy delta floors at zero",
			state:  State{Entropy: 10},
			effect: Effect{Kind: EffectEntropyDelta, Magnitude: -50},
			check: func(t *testing.T, s State) {
				assert.Zero(t, s.Entropy)
			},
		},
		{
			name:   "star death floors at zero",
			state:  State{StarCount: 1000},
			effect: Effect{Kind: EffectStarDeath, Magnitude: 25000},
			check: func(t *testing.T, s State) {
				assert.Zero(t, s.StarCount)
			},
		},
		{
			name:   "catastrophic override halves stability",
			state:  State{StabilityIndex: 0.18},
			effect: Effect{Kind: EffectCatastrophicOverride, Magnitude: 0.5},
			check: func(t *testing.T, s State) {
				assert.InDelta(t, 0.09, s.StabilityIndex, 1e-12)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applyEffects(&tt.state, []Effect{tt.effect})
			tt.check(t, tt.state)
		})
	}
}

// Effects of one anomaly land back to back, each seeing the previous
// effect's result.
func TestApplyEffectsSequential(t *testing.T) {
	s := State{StabilityIndex: 0.6, Entropy: 5}

	applyEffects(&s, []Effect{
		{Kind: EffectStabilityDelta, Magnitude: -0.1},
		{Kind: EffectCatastrophicOverride, Magnitude: 0.5},
		{Kind: EffectEntropyDelta, Magnitude: 20},
	})

	assert.InDelta(t, 0.25, s.StabilityIndex, 1e-12)
	assert.InDelta(t, 25, s.Entropy, 1e-12)
}

// A catastrophic override on an already shaky universe can push the
// stability index under the vacuum-decay threshold in a single step.
func TestCatastrophicOverrideEndsShakyUniverse(t *testing.T) {
	eng := testEngine(1e8)
	sim := newTestSimulation(t, "false-vacuum")
	sim.State.StabilityIndex = 0.18

	applyEffects(&sim.State, []Effect{{Kind: EffectCatastrophicOverride, Magnitude: 0.5}})
	require.InDelta(t, 0.09, sim.State.StabilityIndex, 1e-12)

	eng.evaluateEndCondition(sim)
	assert.Equal(t, StatusEnded, sim.Status)
	assert.Equal(t, EndConditionVacuumDecay, sim.EndCondition)
}
