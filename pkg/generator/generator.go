// Package generator produces mine placements for a board, guaranteeing
// first-click safety: the clicked cell and its 8 neighbours are mine-free.
package generator

import (
	"math/rand"
	"sort"

	"github.com/podsweeper/engine/pkg/geometry"
)

// minSafeArea is the number of cells (1 + 8 neighbours) the generator
// guarantees are mine-free around the first click.
const minSafeArea = 9

// GroundKind is the hidden truth of a cell: whether it holds a mine. The
// zero value is Dirt. Defined here (rather than in pkg/board, which depends
// on this package for the Generator interface) so both packages share one
// type without a dependency cycle.
type GroundKind int

const (
	// Dirt is a mine-free cell.
	Dirt GroundKind = iota
	// Mine is a mined cell.
	Mine
)

// IsDirt reports whether k is Dirt.
func (k GroundKind) IsDirt() bool { return k == Dirt }

// IsMine reports whether k is Mine.
func (k GroundKind) IsMine() bool { return k == Mine }

func (k GroundKind) String() string {
	if k == Mine {
		return "Mine"
	}
	return "Dirt"
}

// Parameters describes the board a Generator must place mines on.
type Parameters struct {
	Width     int
	Height    int
	MineCount int
}

// Generator produces a mine placement for params that leaves safe and each
// of its 8 neighbours Dirt. Implementations must be deterministic given a
// seeded RNG and uniform over placements satisfying the safety constraint.
type Generator interface {
	Generate(params Parameters, safe geometry.Location) geometry.Area[GroundKind]
}

// SimpleGenerator places mines by rejection sampling: repeatedly shuffle a
// full placement and retry until the safe area comes up clean. Ported from
// original_source/src/generator.rs's SimpleGenerator; kept as the naive
// baseline the source itself contrasts ImprovedGenerator against.
type SimpleGenerator struct {
	Rand *rand.Rand
}

// NewSimpleGenerator returns a SimpleGenerator seeded from src.
func NewSimpleGenerator(src rand.Source) *SimpleGenerator {
	return &SimpleGenerator{Rand: rand.New(src)}
}

// Generate implements Generator.
func (g *SimpleGenerator) Generate(params Parameters, safe geometry.Location) geometry.Area[GroundKind] {
	rng := g.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	total := params.Width * params.Height
	for {
		area := geometry.NewArea[GroundKind](params.Width, params.Height)
		indices := rng.Perm(total)[:params.MineCount]
		for _, idx := range indices {
			area.Set(geometry.LocationFromIndex(idx, params.Width), Mine)
		}

		if safeAreaIsClean(area, safe) {
			return area
		}
	}
}

func safeAreaIsClean(area geometry.Area[GroundKind], safe geometry.Location) bool {
	if gk, ok := area.Get(safe); ok && gk.IsMine() {
		return false
	}
	for _, n := range safe.Neighbours() {
		if gk, ok := area.Get(n); ok && gk.IsMine() {
			return false
		}
	}
	return true
}

// ImprovedGenerator places mines by sampling distinct indices over the
// reduced universe of width*height minus the in-bounds safe-area cells (9
// for an interior click, fewer at an edge or corner) and mapping each
// through a monotone bijection that skips those safe-area indices. This guarantees
// first-click safety without rejection sampling, and is uniform over all
// placements satisfying the safety constraint. Ported from
// original_source/src/generator.rs's ImprovedGenerator.
type ImprovedGenerator struct {
	Rand *rand.Rand
}

// NewImprovedGenerator returns an ImprovedGenerator seeded from src.
func NewImprovedGenerator(src rand.Source) *ImprovedGenerator {
	return &ImprovedGenerator{Rand: rand.New(src)}
}

// Generate implements Generator.
func (g *ImprovedGenerator) Generate(params Parameters, safe geometry.Location) geometry.Area[GroundKind] {
	rng := g.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	area := geometry.NewArea[GroundKind](params.Width, params.Height)
	total := params.Width * params.Height
	universe := total
	neighbours := safe.Neighbours()
	for _, l := range append([]geometry.Location{safe}, neighbours[:]...) {
		if idx, ok := l.ToIndex(params.Width); ok && idx < total {
			universe--
		}
	}

	indices := sampleDistinct(rng, universe, params.MineCount)
	sort.Ints(indices)

	skip := buildSafeLocationSkipper(safe, params.Width)
	for _, idx := range indices {
		adjusted := skip(idx)
		area.Set(geometry.LocationFromIndex(adjusted, params.Width), Mine)
	}
	return area
}

// sampleDistinct returns k distinct ints drawn uniformly from [0, n) without
// replacement, via a partial Fisher-Yates shuffle.
func sampleDistinct(rng *rand.Rand, n, k int) []int {
	if k <= 0 {
		return nil
	}
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// buildSafeLocationSkipper returns the unique monotone map that sends 0, 1,
// 2, ... to the grid indices in increasing order, skipping the indices of
// safe and its in-bounds neighbours, ported algorithm-for-algorithm from
// original_source/src/generator.rs's build_safe_location_skipper.
func buildSafeLocationSkipper(safe geometry.Location, width int) func(int) int {
	neighbours := safe.Neighbours()
	forbidden := append([]geometry.Location{safe}, neighbours[:]...)

	safeIndices := make([]int, 0, minSafeArea)
	for _, l := range forbidden {
		if idx, ok := l.ToIndex(width); ok {
			safeIndices = append(safeIndices, idx)
		}
	}
	sort.Ints(safeIndices)

	return func(index int) int {
		adjusted := index
		for {
			adjustment := 0
			for _, p := range safeIndices {
				if adjusted < p {
					break
				}
				adjustment++
			}
			if index+adjustment == adjusted {
				return adjusted
			}
			adjusted = index + adjustment
		}
	}
}

// DummyGenerator panics if asked to generate; for boards loaded already
// initialized (e.g. restored from persistence), whose generator contract
// guarantees Generate is never called again.
type DummyGenerator struct{}

// Generate implements Generator. It must never be called.
func (DummyGenerator) Generate(Parameters, geometry.Location) geometry.Area[GroundKind] {
	panic("generator: DummyGenerator.Generate must never be called")
}
