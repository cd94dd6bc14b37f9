package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Side identifies which player controls a unit.
type Side int

const (
	PlayerSide Side = 0
	AISide     Side = 1
)

// Opponent returns the other side.
func (s Side) Opponent() Side { return 1 - s }

// Valid reports whether s is one of the two sides.
func (s Side) Valid() bool { return s == PlayerSide || s == AISide }

func (s Side) String() string {
	if s == PlayerSide {
		return "player"
	}
	return "ai"
}

// MaxInventory is how many items a unit can carry.
const MaxInventory = 2

// Unit is a single piece on the battlefield. HP may go negative after a hit;
// the battlefield removes such units during cleanup.
type Unit struct {
	ID   string
	Type UnitType
	X, Y int
	Side Side

	HP          int
	MaxHP       int
	Attack      int
	Defense     int
	MoveRange   int
	AttackRange int

	Ability         AbilityKind
	AbilityCooldown int

	Moved       bool
	Attacked    bool
	AbilityUsed bool

	Inventory []ItemKind
	Effects   []Effect
}

// NewUnit creates a unit with the catalog stats for t. Player-side units get
// their type's starter item and a health potion.
func NewUnit(t UnitType, x, y int, side Side) (*Unit, error) {
	base, err := LookupUnit(t)
	if err != nil {
		return nil, err
	}
	u := &Unit{
		ID:          uuid.NewString(),
		Type:        t,
		X:           x,
		Y:           y,
		Side:        side,
		HP:          base.MaxHP,
		MaxHP:       base.MaxHP,
		Attack:      base.Attack,
		Defense:     base.Defense,
		MoveRange:   base.MoveRange,
		AttackRange: base.AttackRange,
		Ability:     base.Ability,
	}
	if side == PlayerSide {
		u.AddItem(base.StarterItem)
		u.AddItem(HealthPotion)
	}
	return u, nil
}

func (u *Unit) Pos() Pos { return Pos{u.X, u.Y} }

func (u *Unit) Alive() bool { return u.HP > 0 }

func (u *Unit) String() string {
	return fmt.Sprintf("%s(%s) hp=%d/%d pos=(%d,%d)", u.Type, u.Side, u.HP, u.MaxHP, u.X, u.Y)
}

// AbilityReady reports whether the ability can be activated this turn.
func (u *Unit) AbilityReady() bool {
	return !u.AbilityUsed && u.AbilityCooldown == 0
}

func (u *Unit) baseStat(s Stat) int {
	switch s {
	case StatAttack:
		return u.Attack
	case StatDefense:
		return u.Defense
	case StatMoveRange:
		return u.MoveRange
	case StatAttackRange:
		return u.AttackRange
	}
	return 0
}

// EffectiveStat is the base value of s plus every active boost to s.
func (u *Unit) EffectiveStat(s Stat) int {
	v := u.baseStat(s)
	for _, e := range u.Effects {
		if b, ok := e.(*StatBoost); ok && b.Stat == s {
			v += b.Amount
		}
	}
	return v
}

// HasShield reports whether an unconsumed shield is active.
func (u *Unit) HasShield() bool {
	return u.shieldIndex() >= 0
}

func (u *Unit) shieldIndex() int {
	for i, e := range u.Effects {
		if _, ok := e.(*Shield); ok {
			return i
		}
	}
	return -1
}

func (u *Unit) removeEffect(i int) {
	u.Effects = append(u.Effects[:i], u.Effects[i+1:]...)
}

// CanMoveTo checks range, the moved flag, bounds and occupancy.
func (u *Unit) CanMoveTo(p Pos, bf *Battlefield) bool {
	if u.Moved || Manhattan(u.Pos(), p) > u.EffectiveStat(StatMoveRange) {
		return false
	}
	return bf.IsFree(p)
}

// MoveTo relocates the unit and marks it as moved. Legality is the caller's
// concern; see CanMoveTo.
func (u *Unit) MoveTo(p Pos) {
	u.X, u.Y = p.X, p.Y
	u.Moved = true
}

// CanAttack checks range, the attacked flag and sides.
func (u *Unit) CanAttack(target *Unit) bool {
	if u.Attacked || target.Side == u.Side {
		return false
	}
	return Manhattan(u.Pos(), target.Pos()) <= u.EffectiveStat(StatAttackRange)
}

// EstimateDamage is the damage an attack on target would deal right now,
// including shield halving, without consuming anything.
func (u *Unit) EstimateDamage(target *Unit) int {
	dmg := max(1, u.EffectiveStat(StatAttack)-target.EffectiveStat(StatDefense)/2)
	if target.HasShield() {
		dmg = dmg / 2
	}
	return dmg
}

// ResolveAttack applies one attack on target and returns the damage dealt.
// A shield on the target halves the damage and is consumed. An active
// DoubleStrike keeps the attacker able to attack again.
func (u *Unit) ResolveAttack(target *Unit) int {
	dmg := max(1, u.EffectiveStat(StatAttack)-target.EffectiveStat(StatDefense)/2)
	if i := target.shieldIndex(); i >= 0 {
		dmg = dmg / 2
		target.removeEffect(i)
	}
	target.HP -= dmg

	u.Attacked = true
	for i, e := range u.Effects {
		ds, ok := e.(*DoubleStrike)
		if !ok || ds.Uses <= 0 {
			continue
		}
		u.Attacked = false
		ds.Uses--
		if ds.Uses <= 0 {
			u.removeEffect(i)
		}
		break
	}
	return dmg
}

// AddItem appends to the inventory if there is room.
func (u *Unit) AddItem(k ItemKind) bool {
	if len(u.Inventory) >= MaxInventory {
		return false
	}
	u.Inventory = append(u.Inventory, k)
	return true
}

// ConsumeItem applies the item at index and removes it from the inventory.
func (u *Unit) ConsumeItem(index int) (string, error) {
	if index < 0 || index >= len(u.Inventory) {
		return "", fmt.Errorf("%w: %d", ErrInvalidItemIndex, index)
	}
	data := mustItem(u.Inventory[index])

	var msg string
	if data.Heal > 0 {
		u.HP = min(u.MaxHP, u.HP+data.Heal)
		msg = fmt.Sprintf("Healed for %d HP", data.Heal)
	} else {
		u.Effects = append(u.Effects, &StatBoost{Stat: data.Stat, Amount: data.Amount, Turns: data.Turns})
		msg = fmt.Sprintf("%s increased by %d for %d turn(s)", data.Stat, data.Amount, data.Turns)
	}
	u.Inventory = append(u.Inventory[:index], u.Inventory[index+1:]...)
	return msg, nil
}

// EndUpkeep runs the end-of-turn bookkeeping for this unit: cooldown
// decrement, effect expiry, and clearing the per-turn flags.
func (u *Unit) EndUpkeep() {
	if u.AbilityCooldown > 0 {
		u.AbilityCooldown--
	}
	kept := u.Effects[:0]
	for _, e := range u.Effects {
		if e.tick() {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(u.Effects); i++ {
		u.Effects[i] = nil
	}
	u.Effects = kept
	u.Moved = false
	u.Attacked = false
	u.AbilityUsed = false
}

