package model

import "fmt"

// UnitType determines a unit's base stats and its ability. The string values
// are the names used in level files and save records.
type UnitType string

const (
	Infantry UnitType = "INFANTRY"
	Archer   UnitType = "ARCHER"
	Cavalry  UnitType = "CAVALRY"
	Mage     UnitType = "MAGE"
)

// UnitTypes lists every unit type in catalog order.
var UnitTypes = []UnitType{Infantry, Archer, Cavalry, Mage}

// AbilityKind identifies a unit's special action.
type AbilityKind string

const (
	Heal         AbilityKind = "HEAL"
	DoubleAttack AbilityKind = "DOUBLE_ATTACK"
	ShieldUp     AbilityKind = "SHIELD"
	Teleport     AbilityKind = "TELEPORT"
	AreaAttack   AbilityKind = "AREA_ATTACK"
)

// ItemKind identifies a consumable carried in a unit's inventory.
type ItemKind string

const (
	HealthPotion  ItemKind = "HEALTH_POTION"
	DamageBooster ItemKind = "DAMAGE_BOOSTER"
	DefenseShield ItemKind = "DEFENSE_SHIELD"
	RangeExtender ItemKind = "RANGE_EXTENDER"
	MovementBoost ItemKind = "MOVEMENT_BOOST"
)

// Stat names a boostable unit attribute.
type Stat string

const (
	StatAttack      Stat = "attack"
	StatDefense     Stat = "defense"
	StatMoveRange   Stat = "move_range"
	StatAttackRange Stat = "attack_range"
)

// AbilityData is the static range/cooldown pair for an ability.
type AbilityData struct {
	Name        string
	Description string
	Range       int
	Cooldown    int
}

// ItemData describes what consuming an item does. Heal > 0 means an instant
// heal; otherwise the item attaches a timed boost to Stat.
type ItemData struct {
	Name        string
	Description string
	Heal        int
	Stat        Stat
	Amount      int
	Turns       int
}

// BaseStats are the starting numbers for a freshly created unit.
type BaseStats struct {
	MaxHP       int
	Attack      int
	Defense     int
	MoveRange   int
	AttackRange int
	Ability     AbilityKind
	StarterItem ItemKind // only handed to player-side units
}

var abilities = map[AbilityKind]AbilityData{
	Heal:         {Name: "Heal", Description: "Restore 30 HP to self or adjacent ally", Range: 1, Cooldown: 3},
	DoubleAttack: {Name: "Double Attack", Description: "Attack twice in one turn", Range: 0, Cooldown: 4},
	ShieldUp:     {Name: "Shield", Description: "Reduce damage taken by 50% for one turn", Range: 0, Cooldown: 3},
	Teleport:     {Name: "Teleport", Description: "Move to any empty tile within 5 spaces", Range: 5, Cooldown: 5},
	AreaAttack:   {Name: "Area Attack", Description: "Deal damage to all enemies in a 1-tile radius", Range: 2, Cooldown: 4},
}

var items = map[ItemKind]ItemData{
	HealthPotion:  {Name: "Health Potion", Description: "Restores 50 HP", Heal: 50},
	DamageBooster: {Name: "Damage Booster", Description: "Increases attack by 15 for one turn", Stat: StatAttack, Amount: 15, Turns: 1},
	DefenseShield: {Name: "Defense Shield", Description: "Increases defense by 10 for two turns", Stat: StatDefense, Amount: 10, Turns: 2},
	RangeExtender: {Name: "Range Extender", Description: "Increases attack range by 1 for one turn", Stat: StatAttackRange, Amount: 1, Turns: 1},
	MovementBoost: {Name: "Movement Boost", Description: "Increases movement range by 2 for one turn", Stat: StatMoveRange, Amount: 2, Turns: 1},
}

var unitStats = map[UnitType]BaseStats{
	Infantry: {MaxHP: 100, Attack: 20, Defense: 10, MoveRange: 3, AttackRange: 1, Ability: ShieldUp, StarterItem: DefenseShield},
	Archer:   {MaxHP: 70, Attack: 15, Defense: 5, MoveRange: 2, AttackRange: 3, Ability: DoubleAttack, StarterItem: RangeExtender},
	Cavalry:  {MaxHP: 90, Attack: 25, Defense: 8, MoveRange: 5, AttackRange: 1, Ability: Teleport, StarterItem: MovementBoost},
	Mage:     {MaxHP: 60, Attack: 30, Defense: 3, MoveRange: 2, AttackRange: 2, Ability: AreaAttack, StarterItem: DamageBooster},
}

// LookupAbility returns the range and cooldown for k.
func LookupAbility(k AbilityKind) (AbilityData, error) {
	d, ok := abilities[k]
	if !ok {
		return AbilityData{}, fmt.Errorf("%w: ability %q", ErrNotFound, string(k))
	}
	return d, nil
}

// LookupItem returns the effect payload for k.
func LookupItem(k ItemKind) (ItemData, error) {
	d, ok := items[k]
	if !ok {
		return ItemData{}, fmt.Errorf("%w: item %q", ErrNotFound, string(k))
	}
	return d, nil
}

// LookupUnit returns the base stats for t.
func LookupUnit(t UnitType) (BaseStats, error) {
	s, ok := unitStats[t]
	if !ok {
		return BaseStats{}, fmt.Errorf("%w: unit type %q", ErrNotFound, string(t))
	}
	return s, nil
}

// mustAbility panics on a catalog miss: every AbilityKind a unit can hold
// comes from the closed set above, so a miss means corrupted data.
func mustAbility(k AbilityKind) AbilityData {
	d, err := LookupAbility(k)
	if err != nil {
		panic(err)
	}
	return d
}

func mustItem(k ItemKind) ItemData {
	d, err := LookupItem(k)
	if err != nil {
		panic(err)
	}
	return d
}

// Ability is the panicking variant of LookupAbility for callers holding a
// kind taken from a live unit.
func Ability(k AbilityKind) AbilityData { return mustAbility(k) }
