package rules

import (
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/skirmish/model"
)

// TargetFunc picks the concrete target once a rule has decided to fire.
// Returning false abandons the activation.
type TargetFunc func(env AbilityEnv) (model.AbilityTarget, bool)

// AbilityRule decides whether a unit uses its ability this turn. The
// condition gates the rule; the chance expression yields the probability
// that is rolled against once the condition holds.
type AbilityRule struct {
	Name         string            // human-readable identifier
	Ability      model.AbilityKind // the ability this rule drives
	ConditionSrc string            // expr source, must evaluate to bool
	ChanceSrc    string            // expr source, must evaluate to float64
	condition    *vm.Program
	chance       *vm.Program
	Target       TargetFunc
}
