package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandSameSeedSameSequence(t *testing.T) {
	a := NewRand("test-seed")
	b := NewRand("test-seed")

	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "sequences diverged at draw %d", i)
	}
}

func TestRandDifferentSeedsDiverge(t *testing.T) {
	a := NewRand("seed-one")
	b := NewRand("seed-two")

	diverged := false
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			diverged = true
			break
		}
	}
	assert.True(t, diverged, "different seeds should produce different sequences")
}

func TestRandRange(t *testing.T) {
	r := NewRand("range-check")
	for i := 0; i < 10000; i++ {
		v := r.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestRandResumeFromState(t *testing.T) {
	a := NewRand("resume")
	for i := 0; i < 57; i++ {
		a.Float64()
	}

	b := RandFromState(a.State())
	c := RandFromState(a.State())
	for i := 0; i < 100; i++ {
		require.Equal(t, b.Float64(), c.Float64(), "resumed streams diverged at draw %d", i)
	}
}

func TestIntBetween(t *testing.T) {
	r := NewRand("severity")
	for i := 0; i < 1000; i++ {
		v := r.IntBetween(1, 11)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 10)
	}
}
