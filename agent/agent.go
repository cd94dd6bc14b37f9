// Package agent serves one shell session: it decodes commands, applies them
// to the game and reports the outcome with the events they caused.
package agent

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/skirmish/battle"
	"github.com/nstehr/skirmish/ipc"
	"github.com/nstehr/skirmish/model"
)

// Agent owns the game for a single shell session.
type Agent struct {
	Conn   *ipc.Connection
	Client string
	game   *battle.Controller
	prev   *stateSnapshot
}

func New(conn *ipc.Connection, game *battle.Controller) *Agent {
	return &Agent{Conn: conn, game: game}
}

// Register installs every handler on the agent's connection.
func (a *Agent) Register() {
	for msgType, h := range map[string]ipc.Handler{
		ipc.TypeHello:        a.HandleHello,
		ipc.TypeState:        a.HandleState,
		ipc.TypeSelect:       a.HandleSelect,
		ipc.TypeMove:         a.HandleMove,
		ipc.TypeAttack:       a.HandleAttack,
		ipc.TypeAbilityMode:  a.HandleAbilityMode,
		ipc.TypeAbility:      a.HandleAbility,
		ipc.TypeItem:         a.HandleItem,
		ipc.TypeEndTurn:      a.HandleEndTurn,
		ipc.TypeSave:         a.HandleSave,
		ipc.TypeLoad:         a.HandleLoad,
		ipc.TypeAdvanceLevel: a.HandleAdvanceLevel,
	} {
		a.Conn.RegisterHandler(msgType, h)
	}
}

// HandleHello starts the requested level and acknowledges the session.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}
	a.Client = hello.Client
	if a.Conn != nil {
		a.Conn.Client = hello.Client
	}

	n := hello.Level
	if n == 0 {
		n = 1
	}
	if err := a.game.StartLevel(n); err != nil {
		return nil, fmt.Errorf("start level: %w", err)
	}
	a.baseline()
	slog.Info("client identified", "client", a.Client, "level", n)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{
		Status: "ok",
		Level:  n,
		Levels: a.game.Levels().Count(),
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

func (a *Agent) HandleState(env ipc.Envelope) (*ipc.Envelope, error) {
	return a.reply(ipc.Result{}, nil)
}

func (a *Agent) HandleSelect(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.SelectCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	return a.reply(ipc.Result{}, a.game.Select(cmd.UnitID))
}

func (a *Agent) HandleMove(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.MoveCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	err := a.game.IssueMove(cmd.UnitID, model.Pos{X: cmd.X, Y: cmd.Y})
	return a.reply(ipc.Result{Message: "Moved"}, err)
}

func (a *Agent) HandleAttack(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.AttackCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	dmg, err := a.game.IssueAttack(cmd.UnitID, cmd.TargetID)
	return a.reply(ipc.Result{Damage: dmg, Message: fmt.Sprintf("Dealt %d damage", dmg)}, err)
}

func (a *Agent) HandleAbilityMode(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.AbilityModeCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	msg, err := a.game.ToggleAbilityMode(cmd.UnitID)
	return a.reply(ipc.Result{Message: msg}, err)
}

func (a *Agent) HandleAbility(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.AbilityCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	var target model.AbilityTarget
	if cmd.Target != nil {
		target = model.At(*cmd.Target)
	}
	msg, err := a.game.IssueAbility(cmd.UnitID, target)
	return a.reply(ipc.Result{Message: msg}, err)
}

func (a *Agent) HandleItem(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.ItemCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	msg, err := a.game.IssueItem(cmd.UnitID, cmd.Index)
	return a.reply(ipc.Result{Message: msg}, err)
}

func (a *Agent) HandleEndTurn(env ipc.Envelope) (*ipc.Envelope, error) {
	_, err := a.game.EndTurn()
	return a.reply(ipc.Result{}, err)
}

// HandleSave returns the snapshot; the shell decides where to persist it.
func (a *Agent) HandleSave(env ipc.Envelope) (*ipc.Envelope, error) {
	return a.reply(ipc.Result{Message: "Game saved"}, nil)
}

func (a *Agent) HandleLoad(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.LoadCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	if err := a.game.Restore(cmd.Snapshot); err != nil {
		return a.reply(ipc.Result{}, err)
	}
	a.prev = nil
	return a.reply(ipc.Result{Message: "Game loaded"}, nil)
}

func (a *Agent) HandleAdvanceLevel(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.AdvanceLevelCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	n := cmd.Level
	if n == 0 {
		next, ok := a.game.Levels().Next(a.game.Level())
		if !ok {
			return a.reply(ipc.Result{}, fmt.Errorf("%w: after %d", battle.ErrNoLevel, a.game.Level()))
		}
		n = next
	}
	return a.reply(ipc.Result{Message: fmt.Sprintf("Level %d", n)}, a.game.AdvanceLevel(n))
}

// reply fills in the outcome, the current turn, the snapshot and the events
// since the previous reply.
func (a *Agent) reply(res ipc.Result, err error) (*ipc.Envelope, error) {
	if err != nil {
		res = ipc.Result{Message: err.Error()}
		slog.Debug("command rejected", "client", a.Client, "error", err)
	} else {
		res.OK = true
	}
	if a.game.Field() != nil {
		st := a.game.State()
		res.Turn = a.turnInfo(st)
		snap := a.game.Snapshot()
		res.Snapshot = &snap
		cur := takeSnapshot(st, snap)
		for _, e := range detectEvents(cur, a.prev) {
			res.Events = append(res.Events, ipc.Event{Kind: string(e.Kind), Turn: e.Turn, Unit: e.Unit, Detail: e.Detail})
		}
		a.prev = &cur
	}
	env, err := ipc.NewEnvelope(ipc.TypeResult, res)
	if err != nil {
		return nil, err
	}
	return &env, nil
}

func (a *Agent) baseline() {
	cur := takeSnapshot(a.game.State(), a.game.Snapshot())
	a.prev = &cur
}

func (a *Agent) turnInfo(st battle.TurnState) ipc.TurnInfo {
	info := ipc.TurnInfo{
		Level:         st.Level,
		CurrentPlayer: int(st.Current),
		Turn:          st.Turn,
		Phase:         st.Phase.String(),
	}
	if st.Phase == battle.GameOver {
		w := int(st.Winner)
		info.Winner = &w
	}
	if u := a.game.Selected(); u != nil {
		info.Selected = u.ID
	}
	if u := a.game.PendingAbility(); u != nil {
		info.PendingUnit = u.ID
	}
	return info
}
