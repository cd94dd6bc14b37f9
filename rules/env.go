package rules

import (
	"math"

	"github.com/nstehr/skirmish/model"
)

// AbilityEnv wraps one unit's view of the battlefield and exposes helper
// methods callable from expr expressions. Expensive lookups are memoized per
// env so a rule's condition, chance and target all see the same answer.
type AbilityEnv struct {
	Self  *model.Unit
	Field *model.Battlefield
	eng   *Engine
	memo  *envMemo
}

type envMemo struct {
	clusterDone bool
	clusterN    int
	clusterAt   model.Pos

	relocDone bool
	relocOK   bool
	relocTo   model.Pos
	relocGain float64
}

func newAbilityEnv(e *Engine, u *model.Unit, bf *model.Battlefield) AbilityEnv {
	return AbilityEnv{Self: u, Field: bf, eng: e, memo: &envMemo{}}
}

// NearbyThreat sums the threat of enemies that could move into range of the
// unit and hit it next turn.
func (e AbilityEnv) NearbyThreat() float64 {
	total := 0.0
	for _, o := range e.Field.UnitsOf(e.Self.Side.Opponent()) {
		reach := o.EffectiveStat(model.StatAttackRange) + o.EffectiveStat(model.StatMoveRange)
		if model.Manhattan(e.Self.Pos(), o.Pos()) <= reach {
			total += e.eng.Threat(o)
		}
	}
	return total
}

func (e AbilityEnv) attackable() []*model.Unit {
	var out []*model.Unit
	for _, o := range e.Field.UnitsOf(e.Self.Side.Opponent()) {
		if e.Self.CanAttack(o) {
			out = append(out, o)
		}
	}
	return out
}

func (e AbilityEnv) AttackableCount() int { return len(e.attackable()) }

// TargetValue scores the first attackable enemy, or 0 when there is none.
func (e AbilityEnv) TargetValue() float64 {
	targets := e.attackable()
	if len(targets) == 0 {
		return 0
	}
	return e.eng.EvaluateAttackTarget(e.Self, targets[0])
}

// BestCluster is the largest group of enemies an area attack could catch.
func (e AbilityEnv) BestCluster() int {
	n, _ := e.cluster()
	return n
}

// RelocationGain is how much better the best teleport destination scores
// than staying put. Negative infinity when there is nowhere to go.
func (e AbilityEnv) RelocationGain() float64 {
	_, gain, ok := e.relocation()
	if !ok {
		return math.Inf(-1)
	}
	return gain
}

func (e AbilityEnv) cluster() (int, model.Pos) {
	m := e.memo
	if !m.clusterDone {
		reach := model.Ability(e.Self.Ability).Range
		m.clusterN, m.clusterAt = bestCluster(e.Self.Pos(), reach, e.Field.UnitsOf(e.Self.Side.Opponent()))
		m.clusterDone = true
	}
	return m.clusterN, m.clusterAt
}

func (e AbilityEnv) relocation() (model.Pos, float64, bool) {
	m := e.memo
	if !m.relocDone {
		m.relocDone = true
		reach := model.Ability(e.Self.Ability).Range
		best, bestScore, ok := e.eng.bestCell(e.Self, e.Field, reach)
		if ok {
			current := e.eng.EvaluateMove(e.Self, e.Self.Pos(), e.Field)
			m.relocOK = true
			m.relocTo = best
			m.relocGain = bestScore - current
		}
	}
	return m.relocTo, m.relocGain, m.relocOK
}
