package solver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/podsweeper/engine/pkg/geometry"
)

// Constraint is a Fact's comparison kind.
type Constraint int

const (
	// Min asserts the proximity holds at least Count mines.
	Min Constraint = iota
	// Exact asserts the proximity holds exactly Count mines.
	Exact
	// Max asserts the proximity holds at most Count mines.
	Max
)

func (k Constraint) String() string {
	switch k {
	case Min:
		return "Min"
	case Exact:
		return "Exact"
	case Max:
		return "Max"
	default:
		return "?"
	}
}

// Fact is an immutable constraint: among the cells in Proximity, the number
// of mines is ≥ / = / ≤ Count, depending on Kind. Proximity is always kept
// sorted so two Facts with the same (Kind, Count, set of locations) compare
// equal via key().
//
// Iteration and Producer are provenance metadata: they do not participate
// in identity or deduplication.
type Fact struct {
	Kind       Constraint
	Count      int
	Proximity  []geometry.Location
	Iteration  int
	Producer   string
	Parents    []Fact
}

// newFact builds a Fact with Proximity sorted and deduplicated.
func newFact(kind Constraint, count int, proximity []geometry.Location) Fact {
	sorted := make([]geometry.Location, len(proximity))
	copy(sorted, proximity)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	unique := sorted[:0]
	for _, l := range sorted {
		if len(unique) == 0 || unique[len(unique)-1] != l {
			unique = append(unique, l)
		}
	}
	return Fact{Kind: kind, Count: count, Proximity: unique}
}

// key is the identity used for deduplication: (kind, count, proximity).
func (f Fact) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d:", f.Kind, f.Count)
	for i, l := range f.Proximity {
		if i > 0 {
			b.WriteByte(',')
		}
		x, y, _ := l.XY()
		fmt.Fprintf(&b, "%d-%d", x, y)
	}
	return b.String()
}

// isProperSubset reports whether a is a proper subset of b. Both must be
// sorted (as all Proximity slices are).
func isProperSubset(a, b []geometry.Location) bool {
	if len(a) >= len(b) {
		return false
	}
	set := make(map[geometry.Location]bool, len(b))
	for _, l := range b {
		set[l] = true
	}
	for _, l := range a {
		if !set[l] {
			return false
		}
	}
	return true
}

// setDifference returns a \ b.
func setDifference(a, b []geometry.Location) []geometry.Location {
	exclude := make(map[geometry.Location]bool, len(b))
	for _, l := range b {
		exclude[l] = true
	}
	var out []geometry.Location
	for _, l := range a {
		if !exclude[l] {
			out = append(out, l)
		}
	}
	return out
}

// setIntersection returns a ∩ b.
func setIntersection(a, b []geometry.Location) []geometry.Location {
	in := make(map[geometry.Location]bool, len(b))
	for _, l := range b {
		in[l] = true
	}
	var out []geometry.Location
	for _, l := range a {
		if in[l] {
			out = append(out, l)
		}
	}
	return out
}

// proximityString renders Proximity as a comma-separated "(x,y)" list, for
// the debug CSV dump.
func proximityString(proximity []geometry.Location) string {
	parts := make([]string, len(proximity))
	for i, l := range proximity {
		x, y, _ := l.XY()
		parts[i] = fmt.Sprintf("(%d,%d)", x, y)
	}
	return strings.Join(parts, ",")
}
