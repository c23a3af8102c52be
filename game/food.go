// food.go implements food placement.

package game

import (
	"math/rand"
)

// PlaceFood picks a uniformly random cell of the interior that is not part of
// body. It returns false when every interior cell is occupied.
// If rng is nil, we use deterministic pseudo-random logic.
func PlaceFood(interior Bounds, body []Point, rng *rand.Rand) (Point, bool) {
	occupied := make(map[Point]bool, len(body))
	for _, p := range body {
		occupied[p] = true
	}

	free := make([]Point, 0, max(interior.Area()-len(occupied), 0))
	for y := interior.MinY; y <= interior.MaxY; y++ {
		for x := interior.MinX; x <= interior.MaxX; x++ {
			p := Point{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return Point{}, false
	}

	var idx int
	if rng != nil {
		idx = rng.Intn(len(free))
	} else {
		var salt uint64
		if len(body) > 0 {
			salt = uint64(body[0].X)<<32 | uint64(uint32(body[0].Y))
		}
		idx = int(deterministicU64Fast(uint64(len(body)), salt) % uint64(len(free)))
	}
	return free[idx], true
}

// deterministicU64Fast is a simple deterministic hasher for reproducibility.
func deterministicU64Fast(a, b uint64) uint64 {
	// Variant of splitmix64
	x := a + b
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
