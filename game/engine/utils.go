package engine

import "math/rand/v2"

// newRand returns a deterministic generator for seed
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeed returns a fresh random seed
func NewSeed() uint64 {
	seed := rand.Uint64()
	if seed == 0 {
		seed = 1
	}
	return seed
}

// PlaceNotes picks count distinct random cells, none of which is in exclude
func PlaceNotes(rng *rand.Rand, gridSize, count int, exclude ...Position) []Position {
	occupied := make(map[Position]bool, count+len(exclude))
	for _, p := range exclude {
		occupied[p] = true
	}

	free := gridSize*gridSize - len(occupied)
	if count > free {
		count = free
	}

	positions := make([]Position, 0, count)
	for len(positions) < count {
		pos := Position{X: rng.IntN(gridSize), Y: rng.IntN(gridSize)}
		if occupied[pos] {
			continue
		}
		occupied[pos] = true
		positions = append(positions, pos)
	}
	return positions
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// Route returns the directions leading from one cell to another,
// horizontal steps first
func Route(from, to Position) []string {
	route := make([]string, 0, ManhattanDistance(from, to))
	for x := from.X; x < to.X; x++ {
		route = append(route, Right)
	}
	for x := from.X; x > to.X; x-- {
		route = append(route, Left)
	}
	for y := from.Y; y < to.Y; y++ {
		route = append(route, Down)
	}
	for y := from.Y; y > to.Y; y-- {
		route = append(route, Up)
	}
	return route
}

func inBounds(gridSize, x, y int) bool {
	return x >= 0 && x < gridSize && y >= 0 && y < gridSize
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
