package board

import (
	"time"

	"github.com/podsweeper/engine/pkg/geometry"
)

// StateTag names which variant a GameState currently holds.
type StateTag int

const (
	// StateInitial means no commands have been applied yet; ground hasn't
	// been generated.
	StateInitial StateTag = iota
	// StateInProgress means at least one legal command has been applied;
	// no mine is revealed and not everything safe is revealed.
	StateInProgress
	// StateLoss means a mine was revealed.
	StateLoss
	// StateWin means every dirt cell is revealed and every mine is marked.
	StateWin
)

func (t StateTag) String() string {
	switch t {
	case StateInitial:
		return "Initial"
	case StateInProgress:
		return "InProgress"
	case StateLoss:
		return "Loss"
	case StateWin:
		return "Win"
	default:
		return "?"
	}
}

// GameState is a tagged union over the four lifecycle variants spec.md §3
// describes. Only the fields relevant to Tag are meaningful.
type GameState struct {
	Tag       StateTag
	MineCount int           // valid when Tag == StateInitial
	StartTime time.Time     // valid when Tag == StateInProgress
	Duration  time.Duration // valid when Tag == StateLoss or StateWin
}

// NewGameState returns the Initial variant for a board with the given mine
// budget.
func NewGameState(mineCount int) GameState {
	return GameState{Tag: StateInitial, MineCount: mineCount}
}

// update applies the lifecycle transition table from spec.md §4.2, given
// the current fog and ground grids. It returns the new state and whether
// the tag changed.
func (g GameState) update(fog geometry.Area[FogState], ground geometry.Area[GroundKind], clock Clock) (GameState, bool) {
	lost := false
	won := true
	for _, lv := range fog.LocIter() {
		fs := lv.Value
		if fs.IsExploded() {
			lost = true
		}
		gk, _ := ground.Get(lv.Loc)
		_, revealed := fs.IsRevealed()
		isWin := revealed != (gk.IsMine() && fs.IsMarked())
		if !isWin {
			won = false
		}
	}

	var next GameState
	switch g.Tag {
	case StateInitial:
		allHidden := true
		for _, lv := range fog.LocIter() {
			if !lv.Value.IsHidden() {
				allHidden = false
				break
			}
		}
		switch {
		case allHidden:
			next = g
		case lost:
			next = GameState{Tag: StateLoss, Duration: 0}
		default:
			next = GameState{Tag: StateInProgress, StartTime: clock.Now()}
		}
	case StateInProgress:
		switch {
		case won && lost:
			panic("board: invariant violated, simultaneous win and loss")
		case won:
			next = GameState{Tag: StateWin, Duration: clock.Now().Sub(g.StartTime)}
		case lost:
			next = GameState{Tag: StateLoss, Duration: clock.Now().Sub(g.StartTime)}
		default:
			next = g
		}
	default:
		// Win and Loss are terminal.
		next = g
	}

	return next, next.Tag != g.Tag
}

// IsWin reports whether g is the Win variant.
func (g GameState) IsWin() bool { return g.Tag == StateWin }

// IsLoss reports whether g is the Loss variant.
func (g GameState) IsLoss() bool { return g.Tag == StateLoss }
