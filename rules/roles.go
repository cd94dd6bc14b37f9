package rules

import "github.com/nstehr/skirmish/model"

// targetPriority is the flat bonus for attacking a unit of a given type.
// Fragile damage dealers come first; infantry gets nothing.
var targetPriority = map[model.UnitType]float64{
	model.Mage:    20,
	model.Archer:  15,
	model.Cavalry: 10,
}

// abilityThreat scales a unit's threat while its ability is ready.
var abilityThreat = map[model.AbilityKind]float64{
	model.AreaAttack:   1.5,
	model.DoubleAttack: 1.4,
	model.Teleport:     1.3,
}

const defaultAbilityThreat = 1.2

// TargetPriority returns the attack bonus for t.
func TargetPriority(t model.UnitType) float64 { return targetPriority[t] }

func abilityThreatFactor(k model.AbilityKind) float64 {
	if f, ok := abilityThreat[k]; ok {
		return f
	}
	return defaultAbilityThreat
}
