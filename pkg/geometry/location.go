// Package geometry provides the saturating coordinate arithmetic and the
// dense grid type the board and solver packages build their models on.
package geometry

import "fmt"

// Bounded is a saturating non-negative integer. Arithmetic that would
// underflow or overflow yields Invalid, and Invalid poisons every further
// operation it participates in.
type Bounded struct {
	value   int
	invalid bool
}

// InvalidBound is the distinguished poisoned value.
var InvalidBound = Bounded{invalid: true}

// Bound wraps a non-negative int as a valid Bounded.
func Bound(v int) Bounded {
	if v < 0 {
		return InvalidBound
	}
	return Bounded{value: v}
}

// Valid reports whether b holds a usable value.
func (b Bounded) Valid() bool {
	return !b.invalid
}

// Int returns the underlying value and whether b is valid.
func (b Bounded) Int() (int, bool) {
	if b.invalid {
		return 0, false
	}
	return b.value, true
}

// Add returns a + b, or Invalid if either operand is invalid.
func (a Bounded) Add(b Bounded) Bounded {
	if a.invalid || b.invalid {
		return InvalidBound
	}
	return Bound(a.value + b.value)
}

// Sub returns a - b, or Invalid if either operand is invalid or the result
// would be negative.
func (a Bounded) Sub(b Bounded) Bounded {
	if a.invalid || b.invalid || a.value < b.value {
		return InvalidBound
	}
	return Bound(a.value - b.value)
}

// Mul returns a * b, or Invalid if either operand is invalid.
func (a Bounded) Mul(b Bounded) Bounded {
	if a.invalid || b.invalid {
		return InvalidBound
	}
	return Bound(a.value * b.value)
}

func (b Bounded) String() string {
	if b.invalid {
		return "invalid"
	}
	return fmt.Sprintf("%d", b.value)
}

var one = Bound(1)

// Location is a pair of saturating coordinates. The zero value is (0, 0),
// a valid location; use InvalidLocation for the poisoned value.
type Location struct {
	X, Y Bounded
}

// InvalidLocation is a location whose coordinates are both Invalid.
var InvalidLocation = Location{X: InvalidBound, Y: InvalidBound}

// NewLocation builds a Location from plain non-negative ints.
func NewLocation(x, y int) Location {
	return Location{X: Bound(x), Y: Bound(y)}
}

// Valid reports whether both coordinates are usable.
func (l Location) Valid() bool {
	return l.X.Valid() && l.Y.Valid()
}

// XY returns the plain int coordinates and whether both are valid.
func (l Location) XY() (int, int, bool) {
	x, okX := l.X.Int()
	y, okY := l.Y.Int()
	return x, y, okX && okY
}

func (l Location) String() string {
	x, y, ok := l.XY()
	if !ok {
		return "(invalid)"
	}
	return fmt.Sprintf("(%d,%d)", x, y)
}

// ToIndex converts l into a flat row-major index for a grid of the given
// width. It succeeds only when both coordinates are valid and X is within
// width.
func (l Location) ToIndex(width int) (int, bool) {
	x, ok := l.X.Int()
	if !ok || x >= width {
		return 0, false
	}
	y, ok := l.Y.Int()
	if !ok {
		return 0, false
	}
	return y*width + x, true
}

// LocationFromIndex is the inverse of ToIndex.
func LocationFromIndex(index, width int) Location {
	return NewLocation(index%width, index/width)
}

func (l Location) left() Location  { return Location{X: l.X.Sub(one), Y: l.Y} }
func (l Location) right() Location { return Location{X: l.X.Add(one), Y: l.Y} }
func (l Location) up() Location    { return Location{X: l.X, Y: l.Y.Sub(one)} }
func (l Location) down() Location  { return Location{X: l.X, Y: l.Y.Add(one)} }

// Neighbours returns the eight Moore neighbours in a fixed order: NW, N, NE,
// W, E, SW, S, SE. Neighbours that would carry a negative coordinate come
// back Invalid; callers filter them out via a failed Area lookup.
func (l Location) Neighbours() [8]Location {
	up, down := l.up(), l.down()
	return [8]Location{
		up.left(), up, up.right(),
		l.left(), l.right(),
		down.left(), down, down.right(),
	}
}

// Less orders locations lexicographically y-then-x, the order the solver
// uses when it serializes a proximity set.
func (l Location) Less(other Location) bool {
	lx, ly, _ := l.XY()
	ox, oy, _ := other.XY()
	if ly != oy {
		return ly < oy
	}
	return lx < ox
}
