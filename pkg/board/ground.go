package board

import "github.com/podsweeper/engine/pkg/generator"

// GroundKind is the hidden truth of a cell: whether it holds a mine.
// Re-exported from pkg/generator, which defines it so both packages share
// one type without board (which depends on generator for the Generator
// interface) creating an import cycle.
type GroundKind = generator.GroundKind

const (
	// Dirt is a mine-free cell.
	Dirt = generator.Dirt
	// Mine is a mined cell.
	Mine = generator.Mine
)
