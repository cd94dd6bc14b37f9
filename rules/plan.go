package rules

import (
	"cmp"
	"slices"

	"github.com/nstehr/skirmish/model"
)

// AbilityPlan is a decided ability activation, ready for the turn controller
// to apply.
type AbilityPlan struct {
	Rule    string
	Ability model.AbilityKind
	Target  model.AbilityTarget
	Chance  float64
}

type scored[T any] struct {
	item  T
	score float64
}

// rank scores every item and sorts best first. The sort is stable, so equal
// scores keep their enumeration order.
func rank[T any](items []T, score func(T) float64) []scored[T] {
	out := make([]scored[T], len(items))
	for i, it := range items {
		out[i] = scored[T]{item: it, score: score(it)}
	}
	slices.SortStableFunc(out, func(a, b scored[T]) int {
		return cmp.Compare(b.score, a.score)
	})
	return out
}

// pickWeak applies the easy-mode substitution: with probability 0.3 choose
// uniformly among the top n instead of the best. minLen is the smallest
// candidate count for which substitution is allowed.
func (e *Engine) pickWeak(count, n, minLen int) int {
	if e.doctrine.Difficulty != 1 {
		return 0
	}
	if e.src.Float64() >= 0.3 || count < minLen {
		return 0
	}
	return e.src.Intn(min(n, count))
}
