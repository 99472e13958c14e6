// Package ranking orders scored subjects and designates the winner.
//
// Ordering: weighted score DESC. Equal weighted scores keep their input
// (insertion) order; ties are never broken by total score or name.
package ranking

import (
	"sort"

	"github.com/okian/ranker/internal/domain/model"
)

// defaultMinSubjects is the smallest field in which a winner is declared.
// A single subject is never a "winner".
const defaultMinSubjects = 2

// Policy controls winner designation.
type Policy struct {
	// MinSubjects is the number of subjects required before the first ranked
	// subject is marked as winner.
	MinSubjects int
}

// DefaultPolicy declares a winner only when at least two subjects compete.
var DefaultPolicy = Policy{MinSubjects: defaultMinSubjects}

// Option applies a configuration option to a Policy.
type Option func(*Policy)

// WithMinSubjects overrides the winner threshold. Values below 1 are ignored.
func WithMinSubjects(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.MinSubjects = n
		}
	}
}

// NewPolicy builds a Policy starting from DefaultPolicy.
func NewPolicy(opts ...Option) Policy {
	p := DefaultPolicy
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// less reports whether a ranks strictly before b.
func less(a, b model.ComparisonResult) bool {
	return a.WeightedScore > b.WeightedScore
}

// Rank sorts results with DefaultPolicy.
func Rank(results []model.ComparisonResult) []model.RankedResult {
	return DefaultPolicy.Rank(results)
}

// Rank returns results ordered for display. The input slice is not modified.
func (p Policy) Rank(results []model.ComparisonResult) []model.RankedResult {
	sorted := make([]model.ComparisonResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	minSubjects := p.MinSubjects
	if minSubjects < 1 {
		minSubjects = defaultMinSubjects
	}

	out := make([]model.RankedResult, len(sorted))
	for i, r := range sorted {
		out[i] = model.RankedResult{
			ComparisonResult: r,
			Rank:             i + 1,
			IsWinner:         i == 0 && len(sorted) >= minSubjects,
		}
	}
	return out
}

// Winner returns the winning row of an already ranked sequence.
func Winner(ranked []model.RankedResult) (model.RankedResult, bool) {
	if len(ranked) == 0 || !ranked[0].IsWinner {
		return model.RankedResult{}, false
	}
	return ranked[0], true
}
