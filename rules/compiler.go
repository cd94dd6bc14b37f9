package rules

import (
	"fmt"

	"github.com/nstehr/skirmish/model"
)

// CompileDoctrine generates the ability rules for a doctrine. Conditions and
// chances are built via fmt.Sprintf with the doctrine's use-ability weight
// interpolated, so the compiler never produces invalid expr.
//
// Heal has no rule: the AI never heals.
func CompileDoctrine(d Doctrine) []*AbilityRule {
	d.Validate()
	base := d.Weights.UseAbility

	return []*AbilityRule{
		{
			Name:         "shield-under-threat",
			Ability:      model.ShieldUp,
			ConditionSrc: `true`,
			ChanceSrc:    fmt.Sprintf(`%g * (0.5 + min(1.5, NearbyThreat() / 50))`, base),
			Target:       selfTarget,
		},
		{
			Name:         "double-attack-targets",
			Ability:      model.DoubleAttack,
			ConditionSrc: `AttackableCount() > 0`,
			ChanceSrc:    fmt.Sprintf(`AttackableCount() > 1 ? %g * 1.3 : %g * (0.7 + TargetValue() / 50)`, base, base),
			Target:       selfTarget,
		},
		{
			Name:         "area-attack-cluster",
			Ability:      model.AreaAttack,
			ConditionSrc: `BestCluster() >= 2`,
			ChanceSrc:    fmt.Sprintf(`%g * (0.5 + BestCluster() * 0.25)`, base),
			Target:       clusterTarget,
		},
		{
			Name:         "teleport-reposition",
			Ability:      model.Teleport,
			ConditionSrc: `RelocationGain() > 30`,
			ChanceSrc:    fmt.Sprintf(`%g * 1.5`, base),
			Target:       relocationTarget,
		},
	}
}

func selfTarget(AbilityEnv) (model.AbilityTarget, bool) {
	return model.AbilityTarget{}, true
}

func clusterTarget(env AbilityEnv) (model.AbilityTarget, bool) {
	n, at := env.cluster()
	if n == 0 {
		return model.AbilityTarget{}, false
	}
	return model.At(at), true
}

func relocationTarget(env AbilityEnv) (model.AbilityTarget, bool) {
	p, _, ok := env.relocation()
	if !ok {
		return model.AbilityTarget{}, false
	}
	return model.At(p), true
}
