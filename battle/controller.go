// Package battle runs a level: it owns the battlefield, sequences turns,
// applies player commands and plays the computer side.
package battle

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/skirmish/level"
	"github.com/nstehr/skirmish/model"
	"github.com/nstehr/skirmish/rng"
	"github.com/nstehr/skirmish/rules"
)

type Phase int

const (
	PlayerTurn Phase = iota
	AITurn
	GameOver
)

func (p Phase) String() string {
	switch p {
	case PlayerTurn:
		return "player_turn"
	case AITurn:
		return "ai_turn"
	case GameOver:
		return "game_over"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Transition is consulted when the player clears a level and another one
// follows. Returning ok starts the returned level; otherwise the controller
// stays in GameOver.
type Transition func(completed, next int) (int, bool)

// TurnState is the externally visible turn bookkeeping.
type TurnState struct {
	Level   int        `json:"level"`
	Current model.Side `json:"current_player"`
	Turn    int        `json:"turn"`
	Phase   Phase      `json:"phase"`
	Winner  model.Side `json:"winner"`
}

type Option func(*Controller)

// WithTransition installs the level-transition callback.
func WithTransition(t Transition) Option {
	return func(c *Controller) { c.transition = t }
}

// WithDifficulty pins the opponent's difficulty instead of deriving it from
// the level number.
func WithDifficulty(d int) Option {
	return func(c *Controller) { c.difficulty = d }
}

// Controller is the turn state machine for one game. It is not safe for
// concurrent use; every mutation happens on the caller's goroutine.
type Controller struct {
	levels     *level.Set
	src        rng.Source
	transition Transition
	difficulty int

	field   *model.Battlefield
	ai      *rules.Engine
	level   int
	current model.Side
	turn    int
	over    bool
	winner  model.Side

	selected    string
	abilityUnit string
}

func New(levels *level.Set, src rng.Source, opts ...Option) *Controller {
	c := &Controller{levels: levels, src: src}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartLevel initializes level n: fresh battlefield, a new opponent, turn 1
// with the player to move.
func (c *Controller) StartLevel(n int) error {
	def, err := c.levels.Get(n)
	if err != nil {
		return fmt.Errorf("%w: %d", ErrNoLevel, n)
	}
	bf, err := def.Build()
	if err != nil {
		return fmt.Errorf("build level %d: %w", n, err)
	}
	ai, err := c.newEngine(n)
	if err != nil {
		return err
	}
	c.reset(bf, ai, n, model.PlayerSide, 1)
	slog.Info("level started", "level", n, "name", def.Name, "strategy", ai.Doctrine().Strategy, "difficulty", ai.Doctrine().Difficulty)
	return nil
}

func (c *Controller) newEngine(n int) (*rules.Engine, error) {
	var (
		e   *rules.Engine
		err error
	)
	if c.difficulty > 0 {
		e, err = rules.NewEngine(rules.NewDoctrine(c.difficulty, c.src), c.src)
	} else {
		e, err = rules.ForLevel(n, c.src)
	}
	if err != nil {
		return nil, fmt.Errorf("create opponent: %w", err)
	}
	return e, nil
}

func (c *Controller) reset(bf *model.Battlefield, ai *rules.Engine, n int, current model.Side, turn int) {
	c.field = bf
	c.ai = ai
	c.level = n
	c.current = current
	c.turn = turn
	c.over = false
	c.winner = 0
	c.selected, c.abilityUnit = "", ""
}

func (c *Controller) Levels() *level.Set        { return c.levels }
func (c *Controller) Field() *model.Battlefield { return c.field }
func (c *Controller) Engine() *rules.Engine     { return c.ai }
func (c *Controller) Level() int                { return c.level }
func (c *Controller) Turn() int                 { return c.turn }
func (c *Controller) Current() model.Side       { return c.current }

// Winner reports the winning side once the game is over.
func (c *Controller) Winner() (model.Side, bool) { return c.winner, c.over }

func (c *Controller) Phase() Phase {
	switch {
	case c.over:
		return GameOver
	case c.current == model.AISide:
		return AITurn
	}
	return PlayerTurn
}

func (c *Controller) State() TurnState {
	return TurnState{
		Level:   c.level,
		Current: c.current,
		Turn:    c.turn,
		Phase:   c.Phase(),
		Winner:  c.winner,
	}
}

// Selected returns the selected unit, or nil.
func (c *Controller) Selected() *model.Unit {
	if c.selected == "" {
		return nil
	}
	return c.field.Unit(c.selected)
}

// PendingAbility returns the unit waiting for an ability target, or nil.
func (c *Controller) PendingAbility() *model.Unit {
	if c.abilityUnit == "" {
		return nil
	}
	return c.field.Unit(c.abilityUnit)
}

// EndTurn finishes the current side's turn. Ending the player's turn runs
// the whole computer turn before returning.
func (c *Controller) EndTurn() (TurnState, error) {
	if c.field == nil {
		return TurnState{}, ErrNoLevel
	}
	if c.over {
		return c.State(), ErrGameOver
	}
	c.endTurn()
	return c.State(), nil
}

func (c *Controller) endTurn() {
	ending := c.current
	for _, u := range c.field.UnitsOf(ending) {
		u.EndUpkeep()
	}
	c.selected, c.abilityUnit = "", ""
	c.current = ending.Opponent()

	if c.current == model.PlayerSide {
		c.turn++
		if n := c.field.SpawnInterval; n > 0 && c.turn%n == 0 {
			c.spawn()
		}
	}
	slog.Info("turn passed", "to", c.current, "turn", c.turn)

	if c.current == model.AISide {
		c.ai.BeginTurn()
		c.play(c.ai, model.AISide)
		if !c.over {
			c.endTurn()
		}
	}
}

func (c *Controller) spawn() {
	u, ok := c.field.SpawnEnemy(c.src)
	if !ok {
		slog.Info("spawn skipped", "turn", c.turn)
		return
	}
	slog.Info("enemy spawned", "unit", u.ID, "type", u.Type, "x", u.X, "y", u.Y)
}

// cleanup removes dead units and checks for the end of the level.
func (c *Controller) cleanup() {
	for _, u := range c.field.RemoveDead() {
		slog.Info("unit defeated", "unit", u.ID, "type", u.Type, "side", u.Side)
		if u.ID == c.selected {
			c.selected = ""
		}
		if u.ID == c.abilityUnit {
			c.abilityUnit = ""
		}
	}
	c.checkGameOver()
}

func (c *Controller) checkGameOver() {
	winner, over := c.field.Outcome()
	if !over {
		return
	}
	c.over, c.winner = true, winner
	slog.Info("game over", "level", c.level, "winner", winner, "turn", c.turn)

	if winner != model.PlayerSide || c.transition == nil {
		return
	}
	next, ok := c.levels.Next(c.level)
	if !ok {
		return
	}
	n, ok := c.transition(c.level, next)
	if !ok {
		return
	}
	if err := c.StartLevel(n); err != nil {
		slog.Error("level transition failed", "level", n, "error", err)
	}
}

// AdvanceLevel starts level n after the player has won the current one.
func (c *Controller) AdvanceLevel(n int) error {
	if !c.over || c.winner != model.PlayerSide {
		return fmt.Errorf("%w: level %d", ErrNotWon, c.level)
	}
	return c.StartLevel(n)
}

// Snapshot captures the game for saving.
func (c *Controller) Snapshot() model.Snapshot {
	return model.Serialize(c.field, c.level, c.current, c.turn)
}

// Restore replaces the game with a saved one. Grid and spawn settings missing
// from the snapshot are taken from the level definition.
func (c *Controller) Restore(s model.Snapshot) error {
	if def, err := c.levels.Get(s.CurrentLevel); err == nil {
		if s.GridWidth <= 0 || s.GridHeight <= 0 {
			s.GridWidth, s.GridHeight = def.GridWidth, def.GridHeight
		}
		if s.SpawnPoints == nil {
			s.SpawnPoints = def.SpawnPoints
		}
		if s.SpawnInterval == 0 {
			s.SpawnInterval = def.SpawnInterval
		}
	} else if s.GridWidth <= 0 || s.GridHeight <= 0 {
		return fmt.Errorf("%w: %d", ErrNoLevel, s.CurrentLevel)
	}
	bf, err := model.Deserialize(s)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	ai, err := c.newEngine(s.CurrentLevel)
	if err != nil {
		return err
	}
	turn := max(1, s.TurnCount)
	c.reset(bf, ai, s.CurrentLevel, s.CurrentPlayer, turn)
	if winner, over := bf.Outcome(); over {
		c.over, c.winner = true, winner
	}
	slog.Info("game restored", "level", c.level, "turn", c.turn, "units", len(bf.Units))
	return nil
}
