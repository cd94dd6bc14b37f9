package model

import (
	"fmt"

	"github.com/nstehr/skirmish/rng"
)

// SpawnWeight pairs a unit type with its share of reinforcement spawns.
type SpawnWeight struct {
	Type   UnitType
	Weight float64
}

// SpawnTable is the reinforcement distribution, walked cumulatively.
var SpawnTable = []SpawnWeight{
	{Infantry, 0.4},
	{Archer, 0.3},
	{Cavalry, 0.2},
	{Mage, 0.1},
}

// Battlefield owns the grid, its obstacles and every live unit for the
// duration of a level.
type Battlefield struct {
	Terrain       *Terrain
	Units         []*Unit
	SpawnPoints   []Pos
	SpawnInterval int
}

func NewBattlefield(terrain *Terrain, spawnPoints []Pos, interval int) *Battlefield {
	return &Battlefield{
		Terrain:       terrain,
		SpawnPoints:   append([]Pos(nil), spawnPoints...),
		SpawnInterval: interval,
	}
}

// Place adds u to the battlefield. Placement onto an occupied, blocked or
// off-grid cell is rejected.
func (bf *Battlefield) Place(u *Unit) error {
	if !bf.IsFree(u.Pos()) {
		return fmt.Errorf("%w: cell (%d,%d) unavailable", ErrInvalidTarget, u.X, u.Y)
	}
	bf.Units = append(bf.Units, u)
	return nil
}

// UnitAt returns the unit standing on p, or nil.
func (bf *Battlefield) UnitAt(p Pos) *Unit {
	for _, u := range bf.Units {
		if u.X == p.X && u.Y == p.Y {
			return u
		}
	}
	return nil
}

// Unit looks a unit up by ID.
func (bf *Battlefield) Unit(id string) *Unit {
	for _, u := range bf.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// IsFree reports whether p is on the grid and holds neither a unit nor an
// obstacle.
func (bf *Battlefield) IsFree(p Pos) bool {
	return bf.Terrain.InBounds(p) && !bf.Terrain.Blocked(p) && bf.UnitAt(p) == nil
}

// UnitsOf returns the units of side s in enumeration order.
func (bf *Battlefield) UnitsOf(s Side) []*Unit {
	var out []*Unit
	for _, u := range bf.Units {
		if u.Side == s {
			out = append(out, u)
		}
	}
	return out
}

// RemoveDead drops every unit with hp <= 0 and returns them.
func (bf *Battlefield) RemoveDead() []*Unit {
	var dead []*Unit
	live := bf.Units[:0]
	for _, u := range bf.Units {
		if u.HP > 0 {
			live = append(live, u)
		} else {
			dead = append(dead, u)
		}
	}
	for i := len(live); i < len(bf.Units); i++ {
		bf.Units[i] = nil
	}
	bf.Units = live
	return dead
}

// Outcome reports whether one side has been wiped out and, if so, which side
// is left standing.
func (bf *Battlefield) Outcome() (winner Side, over bool) {
	var players, ai int
	for _, u := range bf.Units {
		if u.Side == PlayerSide {
			players++
		} else {
			ai++
		}
	}
	switch {
	case players == 0:
		return AISide, true
	case ai == 0:
		return PlayerSide, true
	}
	return 0, false
}

// SpawnEnemy tries to add an AI reinforcement at a random spawn point. An
// occupied point is skipped without retrying.
func (bf *Battlefield) SpawnEnemy(src rng.Source) (*Unit, bool) {
	if len(bf.SpawnPoints) == 0 {
		return nil, false
	}
	p := bf.SpawnPoints[src.Intn(len(bf.SpawnPoints))]
	if bf.UnitAt(p) != nil {
		return nil, false
	}
	u, err := NewUnit(pickSpawnType(src), p.X, p.Y, AISide)
	if err != nil {
		panic(err)
	}
	bf.Units = append(bf.Units, u)
	return u, true
}

func pickSpawnType(src rng.Source) UnitType {
	r := src.Float64()
	acc := 0.0
	for _, w := range SpawnTable {
		acc += w.Weight
		if r < acc {
			return w.Type
		}
	}
	return SpawnTable[len(SpawnTable)-1].Type
}


