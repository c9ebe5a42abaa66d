// Package main is the entry point for solve, a CLI that loads a
// test-board text fixture and prints the solver's safe and mined location
// sets. It is the one place the solver's output is consumed directly,
// analogous to a human player's "auto-play" button.
//
// Usage:
//
//	solve [-dump] < board.txt
//
// The board uses the text format documented in pkg/board.ParseFixture:
// m/M/F/f/e/E and the digits 0-8.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/podsweeper/engine/pkg/board"
	"github.com/podsweeper/engine/pkg/geometry"
	"github.com/podsweeper/engine/pkg/solver"
)

func main() {
	dump := flag.Bool("dump", false, "write the full fact repository as CSV to stdout instead of the safe/mined summary")
	parallel := flag.Bool("parallel", false, "derive rules in parallel within each saturation step")
	flag.Parse()

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("solve: read board from stdin: %v", err)
	}

	mf := board.ParseFixture(string(text))
	result := solver.Solve(mf, solver.Options{Parallel: *parallel})

	if *dump {
		if err := solver.DumpCSV(os.Stdout, result); err != nil {
			log.Fatalf("solve: %v", err)
		}
		return
	}

	fmt.Println("mined:")
	printLocations(result.Mined)
	fmt.Println("safe:")
	printLocations(result.Safe)
}

func printLocations(locs []geometry.Location) {
	if len(locs) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, l := range locs {
		x, y, _ := l.XY()
		fmt.Printf("  (%d,%d)\n", x, y)
	}
}
