package model

import "fmt"

// HealAmount is what the Heal ability restores.
const HealAmount = 30

// AbilityTarget carries the kind-specific argument for ActivateAbility. Shield
// and DoubleAttack ignore it; Heal falls back to the caster when Cell is nil.
type AbilityTarget struct {
	Cell *Pos
}

// At is shorthand for a positional target.
func At(p Pos) AbilityTarget { return AbilityTarget{Cell: &p} }

// NeedsTarget reports whether k waits for a chosen cell before resolving.
func NeedsTarget(k AbilityKind) bool {
	switch k {
	case DoubleAttack, ShieldUp:
		return false
	}
	return true
}

// AreaDamage is the damage dealt by u's AreaAttack to each unit caught in it.
func AreaDamage(u *Unit) int {
	return max(1, u.Attack/2)
}

// AreaVictims returns the opposing units within distance 1 of impact.
func AreaVictims(u *Unit, impact Pos, units []*Unit) []*Unit {
	var hit []*Unit
	for _, o := range units {
		if o.Side != u.Side && o.Alive() && Manhattan(o.Pos(), impact) <= 1 {
			hit = append(hit, o)
		}
	}
	return hit
}

// ActivateAbility resolves u's ability against target on bf. On success it
// marks the ability used and starts its cooldown. On failure nothing changes.
func (u *Unit) ActivateAbility(target AbilityTarget, bf *Battlefield) (string, error) {
	if u.AbilityUsed {
		return "", fmt.Errorf("%w: ability already used", ErrAlreadyUsed)
	}
	if u.AbilityCooldown > 0 {
		return "", fmt.Errorf("%w: %d turn(s) left", ErrOnCooldown, u.AbilityCooldown)
	}
	data := mustAbility(u.Ability)

	var msg string
	switch u.Ability {
	case Heal:
		recipient := u
		if target.Cell != nil {
			other := bf.UnitAt(*target.Cell)
			if other == nil || other.Side != u.Side {
				return "", fmt.Errorf("%w: no ally at (%d,%d)", ErrInvalidTarget, target.Cell.X, target.Cell.Y)
			}
			if Manhattan(u.Pos(), other.Pos()) > data.Range {
				return "", fmt.Errorf("%w: target out of range", ErrInvalidTarget)
			}
			recipient = other
		}
		recipient.HP = min(recipient.MaxHP, recipient.HP+HealAmount)
		if recipient == u {
			msg = fmt.Sprintf("Healed self for %d HP", HealAmount)
		} else {
			msg = fmt.Sprintf("Healed %s for %d HP", recipient.Type, HealAmount)
		}

	case DoubleAttack:
		u.Effects = append(u.Effects, &DoubleStrike{Turns: 1, Uses: 1})
		msg = "Double Attack activated"

	case ShieldUp:
		u.Effects = append(u.Effects, &Shield{Turns: 1})
		msg = "Shield activated"

	case Teleport:
		if target.Cell == nil {
			return "", fmt.Errorf("%w: no destination", ErrInvalidTarget)
		}
		dest := *target.Cell
		if Manhattan(u.Pos(), dest) > data.Range || !bf.IsFree(dest) {
			return "", fmt.Errorf("%w: cannot teleport to (%d,%d)", ErrInvalidTarget, dest.X, dest.Y)
		}
		u.X, u.Y = dest.X, dest.Y
		msg = "Teleported successfully"

	case AreaAttack:
		if target.Cell == nil {
			return "", fmt.Errorf("%w: no impact cell", ErrInvalidTarget)
		}
		impact := *target.Cell
		if !bf.Terrain.InBounds(impact) || Manhattan(u.Pos(), impact) > data.Range {
			return "", fmt.Errorf("%w: impact cell out of range", ErrInvalidTarget)
		}
		victims := AreaVictims(u, impact, bf.Units)
		if len(victims) == 0 {
			return "", fmt.Errorf("%w: no enemies in area", ErrInvalidTarget)
		}
		dmg := AreaDamage(u)
		for _, v := range victims {
			v.HP -= dmg
		}
		msg = fmt.Sprintf("Area attack hit %d enemies", len(victims))

	default:
		return "", fmt.Errorf("%w: ability %q", ErrNotFound, string(u.Ability))
	}

	u.AbilityUsed = true
	u.AbilityCooldown = data.Cooldown
	return msg, nil
}
