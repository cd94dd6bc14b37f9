package agent

import (
	"fmt"

	"github.com/nstehr/skirmish/battle"
	"github.com/nstehr/skirmish/model"
)

// EventKind identifies something the shell may want to animate or play a
// sound for.
type EventKind string

const (
	EventUnitDefeated EventKind = "unit_defeated"
	EventUnitSpawned  EventKind = "unit_spawned"
	EventTurnStarted  EventKind = "turn_started"
	EventLevelStarted EventKind = "level_started"
	EventGameOver     EventKind = "game_over"
)

// Event is detected by diffing the game before and after a command, so the
// shell never has to be called back in the middle of a mutation.
type Event struct {
	Kind   EventKind
	Turn   int
	Unit   string
	Detail string
}

// stateSnapshot captures the diffable parts of a game.
type stateSnapshot struct {
	level  int
	turn   int
	phase  battle.Phase
	winner model.Side
	order  []string
	units  map[string]model.UnitRecord
}

func takeSnapshot(st battle.TurnState, s model.Snapshot) stateSnapshot {
	snap := stateSnapshot{
		level:  st.Level,
		turn:   st.Turn,
		phase:  st.Phase,
		winner: st.Winner,
		order:  make([]string, 0, len(s.Units)),
		units:  make(map[string]model.UnitRecord, len(s.Units)),
	}
	for _, u := range s.Units {
		snap.order = append(snap.order, u.ID)
		snap.units[u.ID] = u
	}
	return snap
}

// detectEvents compares cur against prev. A nil prev yields no events.
func detectEvents(cur stateSnapshot, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}
	if cur.level != prev.level {
		return []Event{{
			Kind:   EventLevelStarted,
			Turn:   cur.turn,
			Detail: fmt.Sprintf("Level %d", cur.level),
		}}
	}

	var events []Event
	for _, id := range prev.order {
		if _, ok := cur.units[id]; ok {
			continue
		}
		u := prev.units[id]
		events = append(events, Event{
			Kind:   EventUnitDefeated,
			Turn:   cur.turn,
			Unit:   id,
			Detail: fmt.Sprintf("%s %s defeated", u.Player, u.UnitType),
		})
	}
	for _, id := range cur.order {
		if _, ok := prev.units[id]; ok {
			continue
		}
		u := cur.units[id]
		events = append(events, Event{
			Kind:   EventUnitSpawned,
			Turn:   cur.turn,
			Unit:   id,
			Detail: fmt.Sprintf("%s %s arrived at (%d,%d)", u.Player, u.UnitType, u.X, u.Y),
		})
	}
	if cur.turn > prev.turn {
		events = append(events, Event{
			Kind:   EventTurnStarted,
			Turn:   cur.turn,
			Detail: fmt.Sprintf("Turn %d", cur.turn),
		})
	}
	if cur.phase == battle.GameOver && prev.phase != battle.GameOver {
		events = append(events, Event{
			Kind:   EventGameOver,
			Turn:   cur.turn,
			Detail: fmt.Sprintf("%s wins", cur.winner),
		})
	}
	return events
}
