// Package board implements the minefield state machine: a two-layer grid
// (hidden mine map + observable fog-of-war) with flood-fill reveal
// semantics, first-click safety, and game-lifecycle tracking.
package board

import (
	"github.com/podsweeper/engine/pkg/generator"
	"github.com/podsweeper/engine/pkg/geometry"
)

// Action is a player command kind.
type Action int

const (
	// Reveal uncovers a cell, flood-filling outward if it has no adjacent
	// mines.
	Reveal Action = iota
	// Mark flags a hidden cell as a suspected mine.
	Mark
	// Unmark clears a mark.
	Unmark
	// ToggleMark marks a hidden cell or unmarks a marked one.
	ToggleMark
)

// Command is a single player input: act on location.
type Command struct {
	Location geometry.Location
	Action   Action
}

// Result is what Execute returns: either Ok is false (Failed, board
// unchanged) or Ok is true with the set of cells whose fog changed and
// whether the game-lifecycle tag changed.
type Result struct {
	Ok           bool
	Updated      []geometry.Location
	StateChanged bool
}

// Minefield owns the hidden ground, the observable fog, the lifecycle
// state, and the generator used to place mines on the first command.
type Minefield struct {
	width, height int
	mineCount     int
	ground        geometry.Area[GroundKind]
	fog           geometry.Area[FogState]
	state         GameState
	generator     generator.Generator
	clock         Clock
	markCount     int
}

// New creates a Minefield of the given dimensions in the Initial state.
// Ground is empty (generated lazily on the first command); fog is all
// Hidden.
func New(width, height, mineCount int, gen generator.Generator) *Minefield {
	return &Minefield{
		width:     width,
		height:    height,
		mineCount: mineCount,
		ground:    geometry.NewArea[GroundKind](width, height),
		fog:       geometry.NewArea[FogState](width, height),
		state:     NewGameState(mineCount),
		generator: gen,
		clock:     SystemClock{},
	}
}

// WithClock overrides the clock used for lifecycle timestamps. For tests.
func (m *Minefield) WithClock(c Clock) *Minefield {
	m.clock = c
	return m
}

// Width returns the board width.
func (m *Minefield) Width() int { return m.width }

// Height returns the board height.
func (m *Minefield) Height() int { return m.height }

// MineCount returns the configured mine budget.
func (m *Minefield) MineCount() int { return m.mineCount }

// MarkCount returns the number of currently Marked cells.
func (m *Minefield) MarkCount() int { return m.markCount }

// State returns the current lifecycle state.
func (m *Minefield) State() GameState { return m.state }

// Fog returns the fog state at l, and whether l is in bounds.
func (m *Minefield) Fog(l geometry.Location) (FogState, bool) {
	return m.fog.Get(l)
}

// Ground returns the ground truth at l, and whether l is in bounds. Exposed
// for solver-soundness verification and persistence; not meant for
// player-facing rendering.
func (m *Minefield) Ground(l geometry.Location) (GroundKind, bool) {
	return m.ground.Get(l)
}

// FogRows returns the fog grid one row at a time, for rendering.
func (m *Minefield) FogRows() [][]FogState {
	return m.fog.Rows()
}

// LocIter returns every (location, fog state) pair in row-major order.
func (m *Minefield) LocIter() []geometry.LocValue[FogState] {
	return m.fog.LocIter()
}

// Execute applies cmd, returning Failed (Ok == false) if the command's
// precondition is violated, or Success with the set of cells whose fog
// changed.
func (m *Minefield) Execute(cmd Command) Result {
	if m.state.Tag == StateInitial {
		allHidden := true
		for _, lv := range m.fog.LocIter() {
			if !lv.Value.IsHidden() {
				allHidden = false
				break
			}
		}
		if allHidden {
			m.ground = m.generator.Generate(generator.Parameters{
				Width:     m.width,
				Height:    m.height,
				MineCount: m.mineCount,
			}, cmd.Location)
		}
	}

	current, inBounds := m.fog.Get(cmd.Location)
	if !inBounds {
		return Result{Ok: false}
	}

	var updated []geometry.Location
	switch {
	case cmd.Action == Reveal && current.IsHidden():
		updated = m.floodReveal(cmd.Location)
	case (cmd.Action == Mark || cmd.Action == ToggleMark) && current.IsHidden():
		m.fog.Set(cmd.Location, Marked())
		m.markCount++
		updated = []geometry.Location{cmd.Location}
	case (cmd.Action == Unmark || cmd.Action == ToggleMark) && current.IsMarked():
		m.fog.Set(cmd.Location, Hidden())
		m.markCount--
		updated = []geometry.Location{cmd.Location}
	default:
		return Result{Ok: false}
	}

	next, changed := m.state.update(m.fog, m.ground, m.clock)
	m.state = next

	return Result{Ok: true, Updated: updated, StateChanged: changed}
}

// floodReveal implements the BFS reveal from spec.md §4.2: pop a cell, skip
// if not Hidden, explode on a mine, otherwise reveal with its adjacent-mine
// count and, if that count is zero, enqueue all 8 neighbours.
func (m *Minefield) floodReveal(seed geometry.Location) []geometry.Location {
	var updated []geometry.Location
	queue := []geometry.Location{seed}

	for len(queue) > 0 {
		loc := queue[0]
		queue = queue[1:]

		fs, ok := m.fog.Get(loc)
		if !ok || !fs.IsHidden() {
			continue
		}

		gk, _ := m.ground.Get(loc)
		if gk.IsMine() {
			m.fog.Set(loc, Exploded())
			updated = append(updated, loc)
			continue
		}

		adj := m.adjacentMines(loc)
		m.fog.Set(loc, Revealed(adj))
		updated = append(updated, loc)

		if adj == 0 {
			for _, n := range loc.Neighbours() {
				if _, ok := m.fog.Get(n); ok {
					queue = append(queue, n)
				}
			}
		}
	}

	return updated
}

func (m *Minefield) adjacentMines(l geometry.Location) int {
	count := 0
	for _, n := range l.Neighbours() {
		gk, ok := m.ground.Get(n)
		if ok && gk.IsMine() {
			count++
		}
	}
	return count
}

// RevealAll forcibly reveals every cell, for display after a loss.
func (m *Minefield) RevealAll() {
	for _, lv := range m.fog.LocIter() {
		if lv.Value.IsExploded() {
			continue
		}
		if _, revealed := lv.Value.IsRevealed(); revealed {
			continue
		}
		gk, _ := m.ground.Get(lv.Loc)
		if gk.IsMine() {
			m.fog.Set(lv.Loc, Exploded())
		} else {
			m.fog.Set(lv.Loc, Revealed(m.adjacentMines(lv.Loc)))
		}
	}
}

// Reset returns the board to Initial with the same dimensions and mine
// budget.
func (m *Minefield) Reset() {
	m.ground = geometry.NewArea[GroundKind](m.width, m.height)
	m.fog = geometry.NewArea[FogState](m.width, m.height)
	m.state = NewGameState(m.mineCount)
	m.markCount = 0
}
