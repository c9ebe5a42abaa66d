package solver

// Repository is the solver's working set: every Fact derived so far, plus
// enough bookkeeping to know which Facts were added in the most recent
// iteration (the "frontier") so rules only have to examine new information
// once. Created fresh per Solve call; discarded after.
type Repository struct {
	all      []Fact
	seen     map[string]bool
	frontier []Fact
	iteration int
}

// NewRepository returns an empty Repository at iteration 0.
func NewRepository() *Repository {
	return &Repository{seen: make(map[string]bool)}
}

// All returns every Fact currently in the repository.
func (r *Repository) All() []Fact {
	return r.all
}

// Frontier returns the Facts added by the most recent Seed, Advance or
// SeedExtra call (i.e. the previous iteration's new facts).
func (r *Repository) Frontier() []Fact {
	return r.frontier
}

// Iteration returns the current iteration counter.
func (r *Repository) Iteration() int {
	return r.iteration
}

// OfKind filters facts by Constraint kind.
func OfKind(facts []Fact, kind Constraint) []Fact {
	var out []Fact
	for _, f := range facts {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// insert adds f if its (kind, count, proximity) identity hasn't been seen
// before, stamping it with the current iteration. Returns whether it was
// new.
func (r *Repository) insert(f Fact) bool {
	key := f.key()
	if r.seen[key] {
		return false
	}
	r.seen[key] = true
	f.Iteration = r.iteration
	r.all = append(r.all, f)
	return true
}

// Seed inserts the initial facts at iteration 0 and makes them the first
// frontier.
func (r *Repository) Seed(facts ...Fact) {
	r.iteration = 0
	var added []Fact
	for _, f := range facts {
		f.Producer = "seed"
		if r.insert(f) {
			added = append(added, f)
		}
	}
	r.frontier = added
}

// Advance runs one saturation step: every Rule derives candidate facts from
// the current frontier and the full repository, candidates are inserted,
// and the newly-added set becomes the next frontier. Returns whether
// anything new was added (callers loop until false).
func (r *Repository) Advance(rules []Rule) bool {
	r.iteration++
	var derived []Fact
	for _, rule := range rules {
		derived = append(derived, rule.Derive(r)...)
	}

	var added []Fact
	for _, f := range derived {
		if r.insert(f) {
			added = append(added, f)
		}
	}
	r.frontier = added
	return len(added) > 0
}

// SeedExtra inserts additional facts outside the normal rule-derivation
// flow (the endgame bridge's narrowed universal fact), stamping them into
// the next frontier so rules reconsider them. Returns whether anything new
// was added.
func (r *Repository) SeedExtra(facts ...Fact) bool {
	r.iteration++
	var added []Fact
	for _, f := range facts {
		f.Producer = "endgame-bridge"
		if r.insert(f) {
			added = append(added, f)
		}
	}
	r.frontier = added
	return len(added) > 0
}
