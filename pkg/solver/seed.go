package solver

import (
	"github.com/podsweeper/engine/pkg/board"
	"github.com/podsweeper/engine/pkg/geometry"
)

// boardView is the subset of *board.Minefield the solver reads. Solve
// accepts any value with these methods; the interface itself is
// unexported, and callers such as cmd/solve pass a *board.Minefield.
type boardView interface {
	LocIter() []geometry.LocValue[board.FogState]
	Fog(geometry.Location) (board.FogState, bool)
	MineCount() int
	MarkCount() int
}

// hiddenNeighbors returns l's 8 neighbours whose fog is Hidden, excluding
// Marked cells: the "trust marks" variant spec.md §9 calls out, matching
// original_source/src/solver.rs's Repository::seed.
func hiddenNeighbors(b boardView, l geometry.Location) []geometry.Location {
	var out []geometry.Location
	for _, n := range l.Neighbours() {
		fs, ok := b.Fog(n)
		if ok && fs.IsHidden() {
			out = append(out, n)
		}
	}
	return out
}

// seed emits one Exact fact per revealed-with-count cell, plus the
// universal fact binding the board's whole unresolved area to the total
// mine count.
func seed(b boardView) []Fact {
	var facts []Fact
	var unresolved []geometry.Location

	for _, lv := range b.LocIter() {
		if adj, ok := lv.Value.IsRevealed(); ok {
			facts = append(facts, newFact(Exact, adj, hiddenNeighbors(b, lv.Loc)))
		}
		if lv.Value.IsHidden() || lv.Value.IsMarked() {
			unresolved = append(unresolved, lv.Loc)
		}
	}

	facts = append(facts, newFact(Exact, b.MineCount(), unresolved))
	return facts
}

// endgameFact computes the narrowed universal fact: once the number of
// still-Hidden (unmarked) cells no longer exceeds the unmarked mine
// budget, every one of those cells must be a mine. This is a strictly
// tighter fact than the board-wide universal fact seed() emits, and
// becoming available mid-saturation is what lets the combinators finish
// off an endgame that the coarse universal fact alone couldn't.
func endgameFact(b boardView) (Fact, bool) {
	var hidden []geometry.Location
	for _, lv := range b.LocIter() {
		if lv.Value.IsHidden() {
			hidden = append(hidden, lv.Loc)
		}
	}
	budget := b.MineCount() - b.MarkCount()
	if budget < 0 || len(hidden) > budget {
		return Fact{}, false
	}
	return newFact(Exact, budget, hidden), true
}
