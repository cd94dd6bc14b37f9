package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Snapshot is the persisted layout of a game in progress. The grid and spawn
// fields are optional; a loader that knows the level can fill them in.
type Snapshot struct {
	CurrentLevel  int          `json:"current_level"`
	CurrentPlayer Side         `json:"current_player"`
	TurnCount     int          `json:"turn_count"`
	Units         []UnitRecord `json:"units"`
	Obstacles     []Obstacle   `json:"obstacles"`

	GridWidth     int   `json:"grid_width,omitempty"`
	GridHeight    int   `json:"grid_height,omitempty"`
	SpawnPoints   []Pos `json:"spawn_points,omitempty"`
	SpawnInterval int   `json:"spawn_interval,omitempty"`
}

type UnitRecord struct {
	ID              string         `json:"id,omitempty"`
	UnitType        UnitType       `json:"unit_type"`
	X               int            `json:"x"`
	Y               int            `json:"y"`
	Player          Side           `json:"player"`
	HP              int            `json:"hp"`
	MaxHP           int            `json:"max_hp"`
	Attack          int            `json:"attack"`
	Defense         int            `json:"defense"`
	MoveRange       int            `json:"move_range"`
	AttackRange     int            `json:"attack_range"`
	Ability         AbilityKind    `json:"ability"`
	AbilityCooldown int            `json:"ability_cooldown"`
	Moved           bool           `json:"moved,omitempty"`
	Attacked        bool           `json:"attacked,omitempty"`
	AbilityUsed     bool           `json:"ability_used,omitempty"`
	Inventory       []ItemKind     `json:"inventory"`
	ActiveEffects   []EffectRecord `json:"active_effects"`
}

var (
	errNoGrid = errors.New("snapshot has no grid dimensions")

	// ErrBadRecord marks a snapshot that describes an impossible game.
	ErrBadRecord = errors.New("bad record")
)

// Serialize captures bf and the turn counters as a Snapshot.
func Serialize(bf *Battlefield, level int, current Side, turn int) Snapshot {
	s := Snapshot{
		CurrentLevel:  level,
		CurrentPlayer: current,
		TurnCount:     turn,
		Units:         make([]UnitRecord, 0, len(bf.Units)),
		Obstacles:     bf.Terrain.Obstacles(),
		GridWidth:     bf.Terrain.Width,
		GridHeight:    bf.Terrain.Height,
		SpawnPoints:   append([]Pos(nil), bf.SpawnPoints...),
		SpawnInterval: bf.SpawnInterval,
	}
	if s.Obstacles == nil {
		s.Obstacles = []Obstacle{}
	}
	for _, u := range bf.Units {
		s.Units = append(s.Units, u.Record())
	}
	return s
}

// Record is the persisted form of u.
func (u *Unit) Record() UnitRecord {
	r := UnitRecord{
		ID:              u.ID,
		UnitType:        u.Type,
		X:               u.X,
		Y:               u.Y,
		Player:          u.Side,
		HP:              u.HP,
		MaxHP:           u.MaxHP,
		Attack:          u.Attack,
		Defense:         u.Defense,
		MoveRange:       u.MoveRange,
		AttackRange:     u.AttackRange,
		Ability:         u.Ability,
		AbilityCooldown: u.AbilityCooldown,
		Moved:           u.Moved,
		Attacked:        u.Attacked,
		AbilityUsed:     u.AbilityUsed,
		Inventory:       append([]ItemKind{}, u.Inventory...),
		ActiveEffects:   make([]EffectRecord, 0, len(u.Effects)),
	}
	for _, e := range u.Effects {
		r.ActiveEffects = append(r.ActiveEffects, e.Record())
	}
	return r
}

// UnitFromRecord rebuilds a unit. Records saved without an ID get a fresh one.
func UnitFromRecord(r UnitRecord) (*Unit, error) {
	if _, err := LookupUnit(r.UnitType); err != nil {
		return nil, err
	}
	if _, err := LookupAbility(r.Ability); err != nil {
		return nil, err
	}
	u := &Unit{
		ID:              r.ID,
		Type:            r.UnitType,
		X:               r.X,
		Y:               r.Y,
		Side:            r.Player,
		HP:              r.HP,
		MaxHP:           r.MaxHP,
		Attack:          r.Attack,
		Defense:         r.Defense,
		MoveRange:       r.MoveRange,
		AttackRange:     r.AttackRange,
		Ability:         r.Ability,
		AbilityCooldown: r.AbilityCooldown,
		Moved:           r.Moved,
		Attacked:        r.Attacked,
		AbilityUsed:     r.AbilityUsed,
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	for _, k := range r.Inventory {
		if _, err := LookupItem(k); err != nil {
			return nil, err
		}
		u.Inventory = append(u.Inventory, k)
	}
	for _, er := range r.ActiveEffects {
		e, err := EffectFromRecord(er)
		if err != nil {
			return nil, err
		}
		u.Effects = append(u.Effects, e)
	}
	return u, nil
}

// Deserialize rebuilds the battlefield described by s. Units are placed one
// at a time, so a record with stacked, blocked or off-grid units is rejected.
func Deserialize(s Snapshot) (*Battlefield, error) {
	if s.GridWidth <= 0 || s.GridHeight <= 0 {
		return nil, errNoGrid
	}
	if !s.CurrentPlayer.Valid() {
		return nil, fmt.Errorf("%w: current player %d", ErrBadRecord, s.CurrentPlayer)
	}
	bf := NewBattlefield(NewTerrain(s.GridWidth, s.GridHeight, s.Obstacles), s.SpawnPoints, s.SpawnInterval)
	seen := make(map[string]bool, len(s.Units))
	for i, r := range s.Units {
		if !r.Player.Valid() {
			return nil, fmt.Errorf("unit %d: %w: player %d", i, ErrBadRecord, r.Player)
		}
		u, err := UnitFromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", i, err)
		}
		if seen[u.ID] {
			return nil, fmt.Errorf("unit %d: %w: duplicate id %s", i, ErrBadRecord, u.ID)
		}
		seen[u.ID] = true
		if err := bf.Place(u); err != nil {
			return nil, fmt.Errorf("unit %d: %w: %v", i, ErrBadRecord, err)
		}
	}
	return bf, nil
}
