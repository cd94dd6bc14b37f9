package ipc

import "github.com/nstehr/skirmish/model"

// Command types sent by the shell. Each is answered with a Result.
const (
	TypeSelect       = "select"
	TypeMove         = "move"
	TypeAttack       = "attack"
	TypeAbilityMode  = "ability_mode"
	TypeAbility      = "ability"
	TypeItem         = "item"
	TypeEndTurn      = "end_turn"
	TypeSave         = "save"
	TypeLoad         = "load"
	TypeAdvanceLevel = "advance_level"
)

type SelectCommand struct {
	UnitID string `json:"unit_id"`
}

type MoveCommand struct {
	UnitID string `json:"unit_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type AttackCommand struct {
	UnitID   string `json:"unit_id"`
	TargetID string `json:"target_id"`
}

type AbilityModeCommand struct {
	UnitID string `json:"unit_id"`
}

// AbilityCommand resolves an armed ability. Target may be omitted for
// abilities that fall back to the caster.
type AbilityCommand struct {
	UnitID string     `json:"unit_id"`
	Target *model.Pos `json:"target,omitempty"`
}

type ItemCommand struct {
	UnitID string `json:"unit_id"`
	Index  int    `json:"index"`
}

// LoadCommand restores a snapshot previously returned by save.
type LoadCommand struct {
	Snapshot model.Snapshot `json:"snapshot"`
}

// AdvanceLevelCommand starts the given level after a win; 0 means the next.
type AdvanceLevelCommand struct {
	Level int `json:"level,omitempty"`
}
