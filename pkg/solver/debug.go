package solver

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DumpCSV writes every fact in result.Facts as semicolon-separated CSV with
// header "base location;produced by;iteration;kind;count;proximity;predecessors",
// per spec.md §6. "base location" is the first location in Proximity (or
// empty for the rare fact with an empty proximity); predecessors lists each
// parent fact's key, comma-separated.
func DumpCSV(w io.Writer, result Result) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := []string{"base location", "produced by", "iteration", "kind", "count", "proximity", "predecessors"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("solver: write csv header: %w", err)
	}

	for _, f := range result.Facts {
		base := ""
		if len(f.Proximity) > 0 {
			x, y, _ := f.Proximity[0].XY()
			base = fmt.Sprintf("(%d,%d)", x, y)
		}
		predecessors := make([]string, len(f.Parents))
		for i, p := range f.Parents {
			predecessors[i] = p.key()
		}
		row := []string{
			base,
			f.Producer,
			strconv.Itoa(f.Iteration),
			f.Kind.String(),
			strconv.Itoa(f.Count),
			proximityString(f.Proximity),
			strings.Join(predecessors, ","),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("solver: write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
