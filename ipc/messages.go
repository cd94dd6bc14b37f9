package ipc

import "github.com/nstehr/skirmish/model"

// Message types exchanged with the rendering shell.
const (
	TypeHello  = "hello"
	TypeAck    = "ack"
	TypeState  = "state"
	TypeResult = "result"
)

type HelloMessage struct {
	Client string `json:"client"`
	Level  int    `json:"level,omitempty"` // 0 starts the first level
}

type AckMessage struct {
	Status string `json:"status"`
	Level  int    `json:"level"`
	Levels int    `json:"levels"`
}

// TurnInfo mirrors the controller's turn bookkeeping.
type TurnInfo struct {
	Level         int    `json:"level"`
	CurrentPlayer int    `json:"current_player"`
	Turn          int    `json:"turn"`
	Phase         string `json:"phase"`
	Winner        *int   `json:"winner,omitempty"`
	Selected      string `json:"selected,omitempty"`
	PendingUnit   string `json:"pending_ability,omitempty"`
}

// Event tells the shell that something worth animating or sounding happened.
type Event struct {
	Kind   string `json:"kind"`
	Turn   int    `json:"turn"`
	Unit   string `json:"unit,omitempty"`
	Detail string `json:"detail"`
}

// Result answers every command. Message carries the human-readable outcome
// or failure reason.
type Result struct {
	OK       bool            `json:"ok"`
	Message  string          `json:"message,omitempty"`
	Damage   int             `json:"damage,omitempty"`
	Turn     TurnInfo        `json:"turn"`
	Snapshot *model.Snapshot `json:"snapshot,omitempty"`
	Events   []Event         `json:"events,omitempty"`
}
