package model

import (
	"errors"
	"testing"
)

func mustUnit(t *testing.T, typ UnitType, x, y int, side Side) *Unit {
	t.Helper()
	u, err := NewUnit(typ, x, y, side)
	if err != nil {
		t.Fatalf("NewUnit(%s): %v", typ, err)
	}
	return u
}

func field(w, h int, units ...*Unit) *Battlefield {
	bf := NewBattlefield(NewTerrain(w, h, nil), nil, 0)
	bf.Units = append(bf.Units, units...)
	return bf
}

func TestNewUnitStarterItems(t *testing.T) {
	tests := []struct {
		typ  UnitType
		side Side
		want []ItemKind
	}{
		{Infantry, PlayerSide, []ItemKind{DefenseShield, HealthPotion}},
		{Archer, PlayerSide, []ItemKind{RangeExtender, HealthPotion}},
		{Cavalry, PlayerSide, []ItemKind{MovementBoost, HealthPotion}},
		{Mage, PlayerSide, []ItemKind{DamageBooster, HealthPotion}},
		{Mage, AISide, nil},
	}
	for _, tc := range tests {
		u := mustUnit(t, tc.typ, 0, 0, tc.side)
		if len(u.Inventory) != len(tc.want) {
			t.Errorf("%s/%s inventory = %v, want %v", tc.typ, tc.side, u.Inventory, tc.want)
			continue
		}
		for i := range tc.want {
			if u.Inventory[i] != tc.want[i] {
				t.Errorf("%s/%s inventory = %v, want %v", tc.typ, tc.side, u.Inventory, tc.want)
				break
			}
		}
	}
}

func TestNewUnitUnknownType(t *testing.T) {
	if _, err := NewUnit("DRAGON", 0, 0, AISide); !errors.Is(err, ErrNotFound) {
		t.Errorf("NewUnit(DRAGON) error = %v, want ErrNotFound", err)
	}
}

func TestAddItemRespectsCapacity(t *testing.T) {
	u := mustUnit(t, Infantry, 0, 0, PlayerSide)
	if u.AddItem(MovementBoost) {
		t.Error("AddItem succeeded on a full inventory")
	}
	if len(u.Inventory) != MaxInventory {
		t.Errorf("inventory len = %d, want %d", len(u.Inventory), MaxInventory)
	}
}

func TestEffectiveStat(t *testing.T) {
	u := mustUnit(t, Archer, 0, 0, AISide)
	for _, s := range []Stat{StatAttack, StatDefense, StatMoveRange, StatAttackRange} {
		if got, want := u.EffectiveStat(s), u.baseStat(s); got != want {
			t.Errorf("EffectiveStat(%s) with no effects = %d, want %d", s, got, want)
		}
	}

	u.Effects = []Effect{
		&StatBoost{Stat: StatAttack, Amount: 15, Turns: 1},
		&StatBoost{Stat: StatAttack, Amount: 5, Turns: 2},
		&StatBoost{Stat: StatAttackRange, Amount: 1, Turns: 1},
		&Shield{Turns: 1},
	}
	tests := []struct {
		stat Stat
		want int
	}{
		{StatAttack, 35},
		{StatAttackRange, 4},
		{StatDefense, 5},
		{StatMoveRange, 2},
	}
	for _, tc := range tests {
		if got := u.EffectiveStat(tc.stat); got != tc.want {
			t.Errorf("EffectiveStat(%s) = %d, want %d", tc.stat, got, tc.want)
		}
	}
}

func TestCanMoveTo(t *testing.T) {
	u := mustUnit(t, Infantry, 2, 2, PlayerSide)
	blocker := mustUnit(t, Archer, 3, 2, AISide)
	bf := NewBattlefield(NewTerrain(6, 6, []Obstacle{{X: 2, Y: 3, Type: Tree}}), nil, 0)
	bf.Units = []*Unit{u, blocker}

	tests := []struct {
		name string
		p    Pos
		want bool
	}{
		{"in range", Pos{2, 0}, true},
		{"exact range", Pos{4, 3}, true},
		{"too far", Pos{5, 3}, false},
		{"occupied", Pos{3, 2}, false},
		{"obstacle", Pos{2, 3}, false},
		{"off grid", Pos{-1, 2}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := u.CanMoveTo(tc.p, bf); got != tc.want {
				t.Errorf("CanMoveTo(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}

	u.MoveTo(Pos{2, 1})
	if !u.Moved {
		t.Fatal("MoveTo did not set Moved")
	}
	if u.CanMoveTo(Pos{2, 0}, bf) {
		t.Error("CanMoveTo after moving = true, want false")
	}
}

func TestCanMoveToWithBoost(t *testing.T) {
	u := mustUnit(t, Archer, 0, 0, PlayerSide)
	bf := field(8, 8, u)
	if u.CanMoveTo(Pos{4, 0}, bf) {
		t.Fatal("archer reached 4 cells without a boost")
	}
	if _, err := u.ConsumeItem(0); err != nil { // range extender does not affect movement
		t.Fatal(err)
	}
	u.Effects = append(u.Effects, &StatBoost{Stat: StatMoveRange, Amount: 2, Turns: 1})
	if !u.CanMoveTo(Pos{4, 0}, bf) {
		t.Error("archer with movement boost could not reach 4 cells")
	}
}

func TestCanAttack(t *testing.T) {
	archer := mustUnit(t, Archer, 0, 0, PlayerSide)
	ally := mustUnit(t, Infantry, 1, 0, PlayerSide)
	near := mustUnit(t, Infantry, 0, 3, AISide)
	far := mustUnit(t, Infantry, 3, 1, AISide)

	if !archer.CanAttack(near) {
		t.Error("CanAttack(enemy at 3) = false, want true")
	}
	if archer.CanAttack(far) {
		t.Error("CanAttack(enemy at 4) = true, want false")
	}
	if archer.CanAttack(ally) {
		t.Error("CanAttack(ally) = true, want false")
	}
	archer.Effects = append(archer.Effects, &StatBoost{Stat: StatAttackRange, Amount: 1, Turns: 1})
	if !archer.CanAttack(far) {
		t.Error("CanAttack(enemy at 4) with range boost = false, want true")
	}
	archer.Attacked = true
	if archer.CanAttack(near) {
		t.Error("CanAttack after attacking = true, want false")
	}
}

func TestResolveAttackPlain(t *testing.T) {
	inf := mustUnit(t, Infantry, 0, 0, PlayerSide)
	archer := mustUnit(t, Archer, 1, 0, AISide)

	if dmg := inf.ResolveAttack(archer); dmg != 18 {
		t.Errorf("damage = %d, want 18", dmg)
	}
	if archer.HP != 52 {
		t.Errorf("target hp = %d, want 52", archer.HP)
	}
	if !inf.Attacked {
		t.Error("attacker not marked as attacked")
	}
}

func TestResolveAttackShieldConsumedOnce(t *testing.T) {
	inf := mustUnit(t, Infantry, 0, 0, PlayerSide)
	archer := mustUnit(t, Archer, 1, 0, AISide)
	archer.Effects = []Effect{&Shield{Turns: 1}, &Shield{Turns: 1}}

	if dmg := inf.ResolveAttack(archer); dmg != 9 {
		t.Errorf("shielded damage = %d, want 9", dmg)
	}
	if len(archer.Effects) != 1 {
		t.Fatalf("effects after hit = %d, want 1", len(archer.Effects))
	}
	archer.Effects = nil
	inf.Attacked = false
	if dmg := inf.ResolveAttack(archer); dmg != 18 {
		t.Errorf("damage after shield gone = %d, want 18", dmg)
	}
	if archer.HP != 70-9-18 {
		t.Errorf("target hp = %d, want %d", archer.HP, 70-9-18)
	}
}

func TestResolveAttackMinimumDamage(t *testing.T) {
	weak := mustUnit(t, Archer, 0, 0, AISide)
	weak.Attack = 1
	tank := mustUnit(t, Infantry, 1, 0, PlayerSide)
	tank.Defense = 400

	if dmg := weak.ResolveAttack(tank); dmg != 1 {
		t.Errorf("damage = %d, want 1", dmg)
	}
	// Halving the floor truncates to zero.
	tank.Effects = []Effect{&Shield{Turns: 1}}
	weak.Attacked = false
	if dmg := weak.ResolveAttack(tank); dmg != 0 {
		t.Errorf("shielded floor damage = %d, want 0", dmg)
	}
}

func TestResolveAttackDoubleStrike(t *testing.T) {
	archer := mustUnit(t, Archer, 0, 0, AISide)
	target := mustUnit(t, Infantry, 1, 0, PlayerSide)
	bf := field(4, 4, archer, target)

	if _, err := archer.ActivateAbility(AbilityTarget{}, bf); err != nil {
		t.Fatalf("ActivateAbility: %v", err)
	}
	archer.ResolveAttack(target)
	if archer.Attacked {
		t.Fatal("first attack under double strike set Attacked")
	}
	if len(archer.Effects) != 0 {
		t.Errorf("double strike not removed after last use: %v", archer.Effects)
	}
	archer.ResolveAttack(target)
	if !archer.Attacked {
		t.Error("second attack did not set Attacked")
	}
}

func TestConsumeItem(t *testing.T) {
	u := mustUnit(t, Mage, 0, 0, PlayerSide)
	u.HP = 20

	msg, err := u.ConsumeItem(1)
	if err != nil {
		t.Fatalf("ConsumeItem(potion): %v", err)
	}
	if msg == "" {
		t.Error("empty message")
	}
	if u.HP != 60 {
		t.Errorf("hp after potion = %d, want 60 (capped)", u.HP)
	}
	if len(u.Inventory) != 1 || u.Inventory[0] != DamageBooster {
		t.Errorf("inventory = %v, want [DAMAGE_BOOSTER]", u.Inventory)
	}

	if _, err := u.ConsumeItem(0); err != nil {
		t.Fatalf("ConsumeItem(booster): %v", err)
	}
	if got := u.EffectiveStat(StatAttack); got != 45 {
		t.Errorf("attack after booster = %d, want 45", got)
	}

	for _, idx := range []int{-1, 0, 3} {
		if _, err := u.ConsumeItem(idx); !errors.Is(err, ErrInvalidItemIndex) {
			t.Errorf("ConsumeItem(%d) error = %v, want ErrInvalidItemIndex", idx, err)
		}
	}
}

func TestEndUpkeepExpiry(t *testing.T) {
	u := mustUnit(t, Infantry, 0, 0, PlayerSide)
	u.Effects = []Effect{
		&StatBoost{Stat: StatDefense, Amount: 10, Turns: 2},
		&Shield{Turns: 1},
		&DoubleStrike{Turns: 1, Uses: 1},
	}
	u.AbilityCooldown = 2
	u.Moved, u.Attacked, u.AbilityUsed = true, true, true

	u.EndUpkeep()
	if len(u.Effects) != 1 || u.Effects[0].Kind() != EffectDefenseBoost {
		t.Fatalf("effects after one upkeep = %v, want only defense boost", u.Effects)
	}
	if u.AbilityCooldown != 1 {
		t.Errorf("cooldown = %d, want 1", u.AbilityCooldown)
	}
	if u.Moved || u.Attacked || u.AbilityUsed {
		t.Error("per-turn flags not cleared")
	}

	u.EndUpkeep()
	if len(u.Effects) != 0 {
		t.Errorf("effects after two upkeeps = %v, want none", u.Effects)
	}
	u.EndUpkeep()
	if u.AbilityCooldown != 0 {
		t.Errorf("cooldown = %d, want floor 0", u.AbilityCooldown)
	}
}

