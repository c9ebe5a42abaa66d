package generator

import (
	"math/rand"
	"testing"

	"github.com/podsweeper/engine/pkg/geometry"
)

func assertSafeAreaClean(t *testing.T, area geometry.Area[GroundKind], safe geometry.Location) {
	t.Helper()
	if gk, ok := area.Get(safe); ok && gk.IsMine() {
		t.Fatalf("safe cell %v is a mine", safe)
	}
	for _, n := range safe.Neighbours() {
		if gk, ok := area.Get(n); ok && gk.IsMine() {
			t.Fatalf("safe neighbour %v is a mine", n)
		}
	}
}

func countMines(area geometry.Area[GroundKind], width, height int) int {
	count := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if gk, ok := area.Get(geometry.NewLocation(x, y)); ok && gk.IsMine() {
				count++
			}
		}
	}
	return count
}

func TestSimpleGeneratorRespectsSafeAreaAndCount(t *testing.T) {
	params := Parameters{Width: 10, Height: 10, MineCount: 10}
	safe := geometry.NewLocation(5, 5)

	for seed := int64(0); seed < 20; seed++ {
		g := NewSimpleGenerator(rand.NewSource(seed))
		area := g.Generate(params, safe)
		assertSafeAreaClean(t, area, safe)
		if n := countMines(area, 10, 10); n != 10 {
			t.Fatalf("seed %d: expected 10 mines, got %d", seed, n)
		}
	}
}

func TestImprovedGeneratorRespectsSafeAreaAndCount(t *testing.T) {
	params := Parameters{Width: 10, Height: 10, MineCount: 10}
	safe := geometry.NewLocation(5, 5)

	for seed := int64(0); seed < 1000; seed++ {
		g := NewImprovedGenerator(rand.NewSource(seed))
		area := g.Generate(params, safe)
		assertSafeAreaClean(t, area, safe)
		if n := countMines(area, 10, 10); n != 10 {
			t.Fatalf("seed %d: expected 10 mines, got %d", seed, n)
		}
	}
}

func TestImprovedGeneratorSafeInCorner(t *testing.T) {
	params := Parameters{Width: 8, Height: 8, MineCount: 12}
	safe := geometry.NewLocation(0, 0)

	for seed := int64(0); seed < 200; seed++ {
		g := NewImprovedGenerator(rand.NewSource(seed))
		area := g.Generate(params, safe)
		assertSafeAreaClean(t, area, safe)
		if n := countMines(area, 8, 8); n != 12 {
			t.Fatalf("seed %d: expected 12 mines, got %d", seed, n)
		}
	}
}

func TestDummyGeneratorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected DummyGenerator.Generate to panic")
		}
	}()
	DummyGenerator{}.Generate(Parameters{Width: 1, Height: 1, MineCount: 0}, geometry.NewLocation(0, 0))
}

func TestSampleDistinctNoRepeats(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := make(map[int]bool)
	for _, idx := range sampleDistinct(rng, 100, 30) {
		if seen[idx] {
			t.Fatalf("duplicate index %d", idx)
		}
		seen[idx] = true
		if idx < 0 || idx >= 100 {
			t.Fatalf("index %d out of range", idx)
		}
	}
	if len(seen) != 30 {
		t.Fatalf("expected 30 distinct indices, got %d", len(seen))
	}
}

func TestBuildSafeLocationSkipperIsMonotoneAndSkipsForbidden(t *testing.T) {
	width := 10
	safe := geometry.NewLocation(5, 5)
	skip := buildSafeLocationSkipper(safe, width)

	forbidden := make(map[int]bool)
	forbidden[mustIndex(t, safe, width)] = true
	for _, n := range safe.Neighbours() {
		if idx, ok := n.ToIndex(width); ok {
			forbidden[idx] = true
		}
	}

	prev := -1
	for i := 0; i < width*width-9; i++ {
		out := skip(i)
		if forbidden[out] {
			t.Fatalf("skip(%d) = %d, which is a forbidden index", i, out)
		}
		if out <= prev {
			t.Fatalf("skip is not strictly monotone: skip(%d)=%d <= previous %d", i, out, prev)
		}
		prev = out
	}
}

func mustIndex(t *testing.T, l geometry.Location, width int) int {
	t.Helper()
	idx, ok := l.ToIndex(width)
	if !ok {
		t.Fatalf("location %v has no index for width %d", l, width)
	}
	return idx
}
