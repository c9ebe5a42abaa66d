// Package solver implements the forward-chaining constraint solver:
// revealed cells become mine-count facts over their hidden neighbors, and a
// small rulebase saturates those facts until no new ones appear, yielding
// the sets of provably safe and provably mined locations.
package solver

import (
	"sort"
	"sync"
	"time"

	"github.com/podsweeper/engine/pkg/geometry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	factsDerivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "podsweeper_solver_facts_total",
		Help: "Facts inserted into the solver repository, by producing rule.",
	}, []string{"producer"})

	saturationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "podsweeper_solver_saturation_seconds",
		Help:    "Wall-clock time spent in a single Solve call's saturation loop.",
		Buckets: prometheus.DefBuckets,
	})
)

// Options configures a Solve call.
type Options struct {
	// Parallel runs each iteration's rule derivation across the rule set
	// concurrently; the join point (fact insertion) is always serial.
	Parallel bool
	// Logger receives saturation diagnostics. A no-op logger is used if nil.
	Logger *zap.Logger
	// MaxIterations bounds the saturation loop; 0 means unbounded (the loop
	// is already guaranteed to terminate, see spec.md §4.4, but callers
	// wanting a wall-clock-independent cap may set this).
	MaxIterations int
}

// Result is a Solve call's output: the sets of locations provably free of
// mines and provably holding one, plus the full fact repository for
// diagnostics (e.g. the debug CSV dump).
type Result struct {
	Safe  []geometry.Location
	Mined []geometry.Location
	Facts []Fact
}

// Solve runs the solver to saturation over b and returns the provable safe
// and mined sets. It never fails: an inconsistent board simply yields
// overlapping Safe/Mined sets, which callers must check for if validation
// matters (spec.md §7).
func Solve(b boardView, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	defer func() {
		saturationSeconds.Observe(time.Since(start).Seconds())
	}()

	repo := NewRepository()
	repo.Seed(seed(b)...)
	observeNewFacts(repo.Frontier())

	rules := DefaultRules()
	var advance func([]Rule) bool
	if opts.Parallel {
		advance = parallelAdvance(rules, repo)
	} else {
		advance = func(_ []Rule) bool { return repo.Advance(rules) }
	}

	runToFixpoint(repo, advance, opts.MaxIterations, logger)

	if fact, ok := endgameFact(b); ok {
		logger.Debug("endgame bridge: seeding narrowed universal fact",
			zap.Int("count", fact.Count), zap.Int("proximity_size", len(fact.Proximity)))
		if repo.SeedExtra(fact) {
			observeNewFacts(repo.Frontier())
			runToFixpoint(repo, advance, opts.MaxIterations, logger)
		}
	}

	return extractResult(repo)
}

// runToFixpoint repeatedly advances repo until a step adds nothing new, or
// maxIterations is reached (0 means unbounded).
func runToFixpoint(repo *Repository, advance func([]Rule) bool, maxIterations int, logger *zap.Logger) {
	for {
		if maxIterations > 0 && repo.Iteration() >= maxIterations {
			logger.Warn("solver: stopped at iteration cap", zap.Int("iteration", repo.Iteration()))
			return
		}
		added := advance(nil)
		observeNewFacts(repo.Frontier())
		logger.Debug("saturation step",
			zap.Int("iteration", repo.Iteration()),
			zap.Int("frontier_size", len(repo.Frontier())),
			zap.Int("total_facts", len(repo.All())),
		)
		if !added {
			return
		}
	}
}

// parallelAdvance derives each rule's candidates concurrently, then merges
// and inserts serially — the permissible parallelism spec.md §5 describes.
// The Rule slice passed to the returned closure is ignored in favor of the
// rules captured at construction, matching Repository.Advance's signature.
func parallelAdvance(rules []Rule, repo *Repository) func([]Rule) bool {
	return func(_ []Rule) bool {
		repo.iteration++
		buffers := make([][]Fact, len(rules))
		var wg sync.WaitGroup
		wg.Add(len(rules))
		for i, rule := range rules {
			i, rule := i, rule
			go func() {
				defer wg.Done()
				buffers[i] = rule.Derive(repo)
			}()
		}
		wg.Wait()

		var added []Fact
		for _, buf := range buffers {
			for _, f := range buf {
				if repo.insert(f) {
					added = append(added, f)
				}
			}
		}
		repo.frontier = added
		return len(added) > 0
	}
}

func observeNewFacts(facts []Fact) {
	for _, f := range facts {
		producer := f.Producer
		if producer == "" {
			producer = "unknown"
		}
		factsDerivedTotal.WithLabelValues(producer).Inc()
	}
}

// extractResult computes the disjoint-when-consistent safe/mined sets from
// (Exact, 0, P) and (Exact, |P|, P) facts, per spec.md §4.4's Output
// section.
func extractResult(repo *Repository) Result {
	safeSet := make(map[geometry.Location]bool)
	minedSet := make(map[geometry.Location]bool)

	for _, f := range repo.All() {
		if f.Kind != Exact {
			continue
		}
		switch {
		case f.Count == 0:
			for _, l := range f.Proximity {
				safeSet[l] = true
			}
		case f.Count == len(f.Proximity) && len(f.Proximity) > 0:
			for _, l := range f.Proximity {
				minedSet[l] = true
			}
		}
	}

	return Result{
		Safe:  sortedKeys(safeSet),
		Mined: sortedKeys(minedSet),
		Facts: repo.All(),
	}
}

func sortedKeys(set map[geometry.Location]bool) []geometry.Location {
	out := make([]geometry.Location, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
