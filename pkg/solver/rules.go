package solver

// Rule derives new facts from a Repository's frontier (facts added in the
// previous iteration) and, for the binary rules, the full repository. The
// saturation loop runs every Rule each iteration until none produce
// anything new.
type Rule interface {
	Derive(repo *Repository) []Fact
}

// MinAllToExact ports original_source/src/solver.rs's rule of the same
// name: a Min fact whose count equals its proximity's cardinality pins
// down every cell in it as a mine.
type MinAllToExact struct{}

// Derive implements Rule.
func (MinAllToExact) Derive(repo *Repository) []Fact {
	var out []Fact
	for _, f := range repo.Frontier() {
		if f.Kind == Min && f.Count == len(f.Proximity) {
			next := newFact(Exact, f.Count, f.Proximity)
			next.Producer = "MinAllToExact"
			next.Parents = []Fact{f}
			out = append(out, next)
		}
	}
	return out
}

// MaxZeroToExact ports the Rust rule of the same name: a Max fact with
// count 0 means every cell in the proximity is mine-free.
type MaxZeroToExact struct{}

// Derive implements Rule.
func (MaxZeroToExact) Derive(repo *Repository) []Fact {
	var out []Fact
	for _, f := range repo.Frontier() {
		if f.Kind == Max && f.Count == 0 {
			next := newFact(Exact, 0, f.Proximity)
			next.Producer = "MaxZeroToExact"
			next.Parents = []Fact{f}
			out = append(out, next)
		}
	}
	return out
}

// ExactToMin relaxes an Exact fact into a lower bound, letting it feed the
// binary combinators below.
type ExactToMin struct{}

// Derive implements Rule.
func (ExactToMin) Derive(repo *Repository) []Fact {
	var out []Fact
	for _, f := range repo.Frontier() {
		if f.Kind == Exact {
			next := newFact(Min, f.Count, f.Proximity)
			next.Producer = "ExactToMin"
			next.Parents = []Fact{f}
			out = append(out, next)
		}
	}
	return out
}

// ExactToMax relaxes an Exact fact into an upper bound.
type ExactToMax struct{}

// Derive implements Rule.
func (ExactToMax) Derive(repo *Repository) []Fact {
	var out []Fact
	for _, f := range repo.Frontier() {
		if f.Kind == Exact {
			next := newFact(Max, f.Count, f.Proximity)
			next.Producer = "ExactToMax"
			next.Parents = []Fact{f}
			out = append(out, next)
		}
	}
	return out
}

// MinWithinMaxCombinator is the first of the two combinator rules carrying
// the solver's real deductive power: if A (a Min fact's proximity) is a
// proper subset of B (a Max fact's proximity) and B's mine budget is at
// least A's, then every mine not accounted for by A's guaranteed mines must
// be confined to B∖A, at a tighter budget of b−a.
//
// Each pair is examined with one side drawn from the previous iteration's
// frontier and the other from the full repository, per spec.md's
// one-new-pair-per-combination rule; examining a pair twice when both sides
// happen to be in the frontier is harmless, since Repository.insert
// deduplicates by fact identity rather than by derivation path.
type MinWithinMaxCombinator struct{}

// Derive implements Rule.
func (MinWithinMaxCombinator) Derive(repo *Repository) []Fact {
	var out []Fact
	consider := func(mins, maxes []Fact) {
		for _, a := range mins {
			for _, b := range maxes {
				if isProperSubset(a.Proximity, b.Proximity) && b.Count >= a.Count {
					next := newFact(Max, b.Count-a.Count, setDifference(b.Proximity, a.Proximity))
					next.Producer = "MinWithinMaxCombinator"
					next.Parents = []Fact{a, b}
					out = append(out, next)
				}
			}
		}
	}
	consider(OfKind(repo.Frontier(), Min), OfKind(repo.All(), Max))
	consider(OfKind(repo.All(), Min), OfKind(repo.Frontier(), Max))
	return out
}

// MaxIntersectsMinCombinator is the second combinator: if a Min fact A and
// a Max fact B overlap in I, at most min(b, |I|) of A's guaranteed mines
// can be explained by I; if A's guarantee exceeds that, the remainder must
// lie in A∖B.
type MaxIntersectsMinCombinator struct{}

// Derive implements Rule.
func (MaxIntersectsMinCombinator) Derive(repo *Repository) []Fact {
	var out []Fact
	consider := func(mins, maxes []Fact) {
		for _, a := range mins {
			for _, b := range maxes {
				intersection := setIntersection(a.Proximity, b.Proximity)
				if len(intersection) == 0 {
					continue
				}
				m := b.Count
				if len(intersection) < m {
					m = len(intersection)
				}
				if a.Count > m {
					next := newFact(Min, a.Count-m, setDifference(a.Proximity, b.Proximity))
					next.Producer = "MaxIntersectsMinCombinator"
					next.Parents = []Fact{a, b}
					out = append(out, next)
				}
			}
		}
	}
	consider(OfKind(repo.Frontier(), Min), OfKind(repo.All(), Max))
	consider(OfKind(repo.All(), Min), OfKind(repo.Frontier(), Max))
	return out
}

// DefaultRules is the canonical six-rule set spec.md §4.4 describes.
// MaxRemoveLocations, present in one variant of
// original_source/src/solver.rs, is deliberately excluded: it generates
// O(|P|) weaker facts per Max fact and explodes the fact set (see
// DESIGN.md).
func DefaultRules() []Rule {
	return []Rule{
		MinAllToExact{},
		MaxZeroToExact{},
		ExactToMin{},
		ExactToMax{},
		MinWithinMaxCombinator{},
		MaxIntersectsMinCombinator{},
	}
}
