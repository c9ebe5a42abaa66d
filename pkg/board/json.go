package board

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/podsweeper/engine/pkg/generator"
	"github.com/podsweeper/engine/pkg/geometry"
)

func unixTime(sec int64) time.Time { return time.Unix(sec, 0) }

func durationFromNanos(n int64) time.Duration { return time.Duration(n) }

// wireFogState is the JSON-friendly shape of a FogState, matching the
// Secret-stored shape the teacher's game.GameState already used for its
// boolean MineMap/Revealed grids, generalized to the richer tagged states
// this module needs.
type wireFogState struct {
	Kind     string `json:"kind"`
	AdjMines int    `json:"adjMines,omitempty"`
}

func (s FogState) toWire() wireFogState {
	switch {
	case s.IsMarked():
		return wireFogState{Kind: "marked"}
	case s.IsExploded():
		return wireFogState{Kind: "exploded"}
	default:
		if adj, ok := s.IsRevealed(); ok {
			return wireFogState{Kind: "revealed", AdjMines: adj}
		}
		return wireFogState{Kind: "hidden"}
	}
}

func (w wireFogState) toFogState() (FogState, error) {
	switch w.Kind {
	case "hidden", "":
		return Hidden(), nil
	case "marked":
		return Marked(), nil
	case "exploded":
		return Exploded(), nil
	case "revealed":
		return Revealed(w.AdjMines), nil
	default:
		return FogState{}, fmt.Errorf("board: unknown fog kind %q", w.Kind)
	}
}

// wireMinefield is the JSON document a Minefield is stored as, e.g. in the
// Kubernetes Secret that SecretStore writes to.
type wireMinefield struct {
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	MineCount int            `json:"mineCount"`
	Ground    []int          `json:"ground"`
	Fog       []wireFogState `json:"fog"`
	StateTag  int            `json:"stateTag"`
	StartUnix int64          `json:"startUnix,omitempty"`
	DurationN int64          `json:"durationNanos,omitempty"`
}

// MarshalJSON serializes the full board (ground, fog, dimensions, lifecycle
// state) to the shape SecretStore persists.
func (m *Minefield) MarshalJSON() ([]byte, error) {
	w := wireMinefield{
		Width:     m.width,
		Height:    m.height,
		MineCount: m.mineCount,
		StateTag:  int(m.state.Tag),
	}
	for _, lv := range m.ground.LocIter() {
		w.Ground = append(w.Ground, int(lv.Value))
	}
	for _, lv := range m.fog.LocIter() {
		w.Fog = append(w.Fog, lv.Value.toWire())
	}
	if m.state.Tag == StateInProgress {
		w.StartUnix = m.state.StartTime.Unix()
	}
	if m.state.Tag == StateLoss || m.state.Tag == StateWin {
		w.DurationN = int64(m.state.Duration)
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores a board previously written by MarshalJSON. The
// restored Minefield carries a DummyGenerator, since its ground is already
// fixed and Execute must never invoke the generator again.
func (m *Minefield) UnmarshalJSON(data []byte) error {
	var w wireMinefield
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("board: unmarshal minefield: %w", err)
	}

	if len(w.Ground) != w.Width*w.Height || len(w.Fog) != w.Width*w.Height {
		return fmt.Errorf("board: unmarshal minefield: cell count does not match dimensions")
	}

	groundCells := make([]GroundKind, len(w.Ground))
	for i, v := range w.Ground {
		groundCells[i] = generator.GroundKind(v)
	}
	fogCells := make([]FogState, len(w.Fog))
	for i, wf := range w.Fog {
		fs, err := wf.toFogState()
		if err != nil {
			return err
		}
		fogCells[i] = fs
	}

	m.width = w.Width
	m.height = w.Height
	m.mineCount = w.MineCount
	m.ground = geometry.WithCells(w.Width, w.Height, groundCells)
	m.fog = geometry.WithCells(w.Width, w.Height, fogCells)
	m.generator = generator.DummyGenerator{}
	m.clock = SystemClock{}

	switch StateTag(w.StateTag) {
	case StateInitial:
		m.state = GameState{Tag: StateInitial, MineCount: w.MineCount}
	case StateInProgress:
		m.state = GameState{Tag: StateInProgress, StartTime: unixTime(w.StartUnix)}
	case StateLoss:
		m.state = GameState{Tag: StateLoss, Duration: durationFromNanos(w.DurationN)}
	case StateWin:
		m.state = GameState{Tag: StateWin, Duration: durationFromNanos(w.DurationN)}
	default:
		return fmt.Errorf("board: unmarshal minefield: unknown state tag %d", w.StateTag)
	}

	markCount := 0
	for _, lv := range m.fog.LocIter() {
		if lv.Value.IsMarked() {
			markCount++
		}
	}
	m.markCount = markCount

	return nil
}
