package t2048

import (
	randv1 "math/rand"
	"math/rand/v2"
)

// spawnTwoProbability is the chance that a spawned tile is a 2 rather than a 4.
const spawnTwoProbability = 0.9

// RandomSource yields a value in [0, 1) on each call.
type RandomSource func() float64

// DefaultSource returns the platform random generator.
func DefaultSource() RandomSource {
	return rand.Float64
}

// SeededSource returns a deterministic generator; equal seeds replay equal games.
func SeededSource(seed int64) RandomSource {
	rng := randv1.New(randv1.NewSource(seed))
	return rng.Float64
}

// SpawnTile places a 2 (90%) or a 4 (10%) in a uniformly chosen empty cell.
// A full grid is returned unchanged.
func SpawnTile(g Grid, rnd RandomSource) Grid {
	if rnd == nil {
		rnd = DefaultSource()
	}

	empty := EmptyCells(g)
	if len(empty) == 0 {
		return g
	}

	idx := int(rnd() * float64(len(empty)))
	if idx >= len(empty) {
		idx = len(empty) - 1
	}
	if idx < 0 {
		idx = 0
	}
	cell := empty[idx]

	value := 4
	if rnd() < spawnTwoProbability {
		value = 2
	}

	g[cell.Row][cell.Col] = value
	return g
}
