package board

import (
	"testing"
	"time"

	"github.com/podsweeper/engine/pkg/geometry"
)

func TestGameStateInitialStaysInitialWhileAllHidden(t *testing.T) {
	fog := geometry.NewArea[FogState](2, 2)
	for _, lv := range fog.LocIter() {
		fog.Set(lv.Loc, Hidden())
	}
	ground := geometry.NewArea[GroundKind](2, 2)

	g := NewGameState(1)
	next, changed := g.update(fog, ground, SystemClock{})
	if changed || next.Tag != StateInitial {
		t.Fatalf("expected to stay Initial, got %v changed=%v", next.Tag, changed)
	}
}

func TestGameStateInitialToInProgress(t *testing.T) {
	m := ParseFixture("eE")
	g := NewGameState(m.mineCount)
	next, changed := g.update(m.fog, m.ground, SystemClock{})
	if !changed || next.Tag != StateInProgress {
		t.Fatalf("expected transition to InProgress, got %v changed=%v", next.Tag, changed)
	}
}

func TestGameStateInProgressToWin(t *testing.T) {
	m := ParseFixture("EF")
	g := GameState{Tag: StateInProgress, StartTime: time.Unix(0, 0)}
	clock := NewFixedClock(time.Unix(10, 0))
	next, changed := g.update(m.fog, m.ground, clock)
	if !changed || next.Tag != StateWin {
		t.Fatalf("expected transition to Win, got %v changed=%v", next.Tag, changed)
	}
	if next.Duration != 10*time.Second {
		t.Errorf("expected duration 10s, got %v", next.Duration)
	}
}

func TestGameStateInProgressToLoss(t *testing.T) {
	m := ParseFixture("Me")
	g := GameState{Tag: StateInProgress, StartTime: time.Unix(0, 0)}
	clock := NewFixedClock(time.Unix(3, 0))
	next, changed := g.update(m.fog, m.ground, clock)
	if !changed || next.Tag != StateLoss {
		t.Fatalf("expected transition to Loss, got %v changed=%v", next.Tag, changed)
	}
}

func TestGameStateTerminalStatesAreSticky(t *testing.T) {
	m := ParseFixture("Ef")
	win := GameState{Tag: StateWin, Duration: 5 * time.Second}
	next, changed := win.update(m.fog, m.ground, SystemClock{})
	if changed || next.Tag != StateWin {
		t.Fatalf("expected Win to remain terminal, got %v changed=%v", next.Tag, changed)
	}
}

func TestGameStateMarkingNonMineDoesNotWin(t *testing.T) {
	// A marked dirt cell never satisfies the per-cell win formula, so a
	// board with any dirt cell wrongly marked must stay InProgress.
	m := ParseFixture("ff")
	g := GameState{Tag: StateInProgress, StartTime: time.Unix(0, 0)}
	next, changed := g.update(m.fog, m.ground, SystemClock{})
	if changed || next.Tag != StateInProgress {
		t.Fatalf("expected to stay InProgress, got %v changed=%v", next.Tag, changed)
	}
}
