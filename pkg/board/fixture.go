package board

import (
	"fmt"
	"log"
	"strings"

	"github.com/podsweeper/engine/pkg/generator"
	"github.com/podsweeper/engine/pkg/geometry"
)

// ParseFixture builds a Minefield from the test-board text format described
// in spec.md §6:
//
//	m  Mine, Hidden       M  Mine, Exploded     F  Mine, Marked
//	e  Dirt, Hidden       E  Dirt, Revealed (adj_mines computed)
//	f  Dirt, Marked       0-8  Dirt, Revealed with the stated count
//	                           (advisory; recomputed, mismatch warns)
//
// Rows are newline-separated; ASCII whitespace within a row is ignored; row
// widths must match. A board loaded this way starts InProgress, then the
// lifecycle update runs once, so a fixture that is already won or lost
// parses directly into Win or Loss. Parse errors are fatal: this format is
// for tests and fixtures only.
func ParseFixture(text string) *Minefield {
	var rows [][]byte
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		var row []byte
		for _, r := range line {
			if r == ' ' || r == '\t' || r == '\r' {
				continue
			}
			row = append(row, byte(r))
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		panic("board: ParseFixture: empty board text")
	}

	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			panic(fmt.Sprintf("board: ParseFixture: row %d has width %d, want %d", i, len(row), width))
		}
	}
	height := len(rows)

	ground := geometry.NewArea[GroundKind](width, height)
	type pending struct {
		loc     geometry.Location
		fog     byte
		advised int
	}
	var pendings []pending

	mineCount := 0
	for y, row := range rows {
		for x, c := range row {
			loc := geometry.NewLocation(x, y)
			switch c {
			case 'm':
				ground.Set(loc, Mine)
				mineCount++
				pendings = append(pendings, pending{loc, 'h', 0})
			case 'M':
				ground.Set(loc, Mine)
				mineCount++
				pendings = append(pendings, pending{loc, 'x', 0})
			case 'F':
				ground.Set(loc, Mine)
				mineCount++
				pendings = append(pendings, pending{loc, 'f', 0})
			case 'f':
				pendings = append(pendings, pending{loc, 'f', 0})
			case 'e':
				pendings = append(pendings, pending{loc, 'h', 0})
			case 'E':
				pendings = append(pendings, pending{loc, 'r', -1})
			default:
				if c < '0' || c > '8' {
					panic(fmt.Sprintf("board: ParseFixture: invalid character %q at (%d,%d)", c, x, y))
				}
				pendings = append(pendings, pending{loc, 'r', int(c - '0')})
			}
		}
	}

	fog := geometry.NewArea[FogState](width, height)
	for _, p := range pendings {
		switch p.fog {
		case 'h':
			fog.Set(p.loc, Hidden())
		case 'f':
			fog.Set(p.loc, Marked())
		case 'x':
			fog.Set(p.loc, Exploded())
		case 'r':
			adj := countAdjacentMines(ground, p.loc)
			if p.advised >= 0 && p.advised != adj {
				log.Printf("board: ParseFixture: advisory adj_mines at %s was %d, recomputed %d", p.loc, p.advised, adj)
			}
			fog.Set(p.loc, Revealed(adj))
		}
	}

	markCount := 0
	for _, lv := range fog.LocIter() {
		if lv.Value.IsMarked() {
			markCount++
		}
	}

	m := &Minefield{
		width:     width,
		height:    height,
		mineCount: mineCount,
		ground:    ground,
		fog:       fog,
		generator: generator.DummyGenerator{},
		clock:     SystemClock{},
		markCount: markCount,
	}
	inProgress := GameState{Tag: StateInProgress, StartTime: m.clock.Now()}
	m.state, _ = inProgress.update(fog, ground, m.clock)
	return m
}

func countAdjacentMines(ground geometry.Area[GroundKind], l geometry.Location) int {
	count := 0
	for _, n := range l.Neighbours() {
		gk, ok := ground.Get(n)
		if ok && gk.IsMine() {
			count++
		}
	}
	return count
}
