package geometry

import "testing"

func TestBoundedArithmetic(t *testing.T) {
	tests := []struct {
		name string
		got  Bounded
		want Bounded
	}{
		{"add", Bound(2).Add(Bound(3)), Bound(5)},
		{"sub within range", Bound(5).Sub(Bound(2)), Bound(3)},
		{"sub underflow", Bound(1).Sub(Bound(2)), InvalidBound},
		{"mul", Bound(3).Mul(Bound(4)), Bound(12)},
		{"add poisons from invalid lhs", InvalidBound.Add(Bound(1)), InvalidBound},
		{"add poisons from invalid rhs", Bound(1).Add(InvalidBound), InvalidBound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLocationToIndex(t *testing.T) {
	tests := []struct {
		name    string
		loc     Location
		width   int
		wantIdx int
		wantOk  bool
	}{
		{"origin", NewLocation(0, 0), 10, 0, true},
		{"middle", NewLocation(3, 2), 10, 23, true},
		{"x out of range", NewLocation(10, 0), 10, 0, false},
		{"invalid poisons lookup", InvalidLocation, 10, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := tt.loc.ToIndex(tt.width)
			if ok != tt.wantOk || (ok && idx != tt.wantIdx) {
				t.Errorf("ToIndex() = (%d, %v), want (%d, %v)", idx, ok, tt.wantIdx, tt.wantOk)
			}
		})
	}
}

func TestLocationFromIndexRoundTrip(t *testing.T) {
	width := 7
	for idx := 0; idx < width*5; idx++ {
		loc := LocationFromIndex(idx, width)
		got, ok := loc.ToIndex(width)
		if !ok || got != idx {
			t.Errorf("round trip failed for index %d: got (%d, %v)", idx, got, ok)
		}
	}
}

func TestNeighboursOrderAndCount(t *testing.T) {
	// A corner cell's neighbours that would go negative come back Invalid;
	// callers filter them out via Area lookup, but Neighbours itself always
	// yields exactly 8 elements.
	corner := NewLocation(0, 0)
	ns := corner.Neighbours()
	if len(ns) != 8 {
		t.Fatalf("expected 8 neighbours, got %d", len(ns))
	}

	validCount := 0
	for _, n := range ns {
		if n.Valid() {
			validCount++
		}
	}
	// From (0,0), every neighbour that steps left or up touches a negative
	// coordinate; only E (1,0), S (0,1) and SE (1,1) stay valid.
	if validCount < 3 {
		t.Errorf("expected at least 3 valid neighbours at origin, got %d", validCount)
	}

	mid := NewLocation(5, 5)
	for _, n := range mid.Neighbours() {
		if !n.Valid() {
			t.Errorf("interior cell neighbour unexpectedly invalid: %v", n)
		}
	}
}

func TestNeighboursFixedOrder(t *testing.T) {
	l := NewLocation(5, 5)
	ns := l.Neighbours()
	want := []Location{
		NewLocation(4, 4), NewLocation(5, 4), NewLocation(6, 4), // NW, N, NE
		NewLocation(4, 5), NewLocation(6, 5), // W, E
		NewLocation(4, 6), NewLocation(5, 6), NewLocation(6, 6), // SW, S, SE
	}
	for i, w := range want {
		if ns[i] != w {
			t.Errorf("neighbour %d = %v, want %v", i, ns[i], w)
		}
	}
}

func TestLocationLess(t *testing.T) {
	a := NewLocation(3, 0)
	b := NewLocation(1, 1)
	if !a.Less(b) {
		t.Error("expected (3,0) < (1,1) under y-then-x order")
	}
	if b.Less(a) {
		t.Error("expected (1,1) not < (3,0)")
	}
}
