package battle

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/skirmish/model"
	"github.com/nstehr/skirmish/rules"
)

// play runs side's units through the engine in enumeration order: ability,
// then attacks while the unit can still attack, then a move. It stops as
// soon as the game ends or a level transition replaces the battlefield.
func (c *Controller) play(e *rules.Engine, side model.Side) {
	bf := c.field
	done := func() bool { return c.over || c.field != bf }
	for _, u := range bf.UnitsOf(side) {
		if done() {
			return
		}
		if bf.Unit(u.ID) == nil {
			continue
		}
		if plan, ok := e.PlanAbility(u, c.field); ok {
			if _, err := c.ability(u, plan.Target); err != nil {
				slog.Warn("planned ability failed", "unit", u.ID, "rule", plan.Rule, "error", err)
			}
			if done() {
				return
			}
		}
		for !u.Attacked {
			target, ok := e.PlanAttack(u, c.field)
			if !ok {
				break
			}
			c.attack(u, target)
			if done() {
				return
			}
		}
		if p, ok := e.PlanMove(u, c.field); ok {
			c.move(u, p)
		}
	}
}

// AutoPlay lets engine take the player's turn with the same protocol the
// computer side uses. The caller still ends the turn.
func (c *Controller) AutoPlay(engine *rules.Engine) error {
	if c.field == nil {
		return ErrNoLevel
	}
	if c.over {
		return ErrGameOver
	}
	if c.current != model.PlayerSide {
		return fmt.Errorf("%w: autoplay drives the player side", ErrNotYourTurn)
	}
	engine.BeginTurn()
	c.play(engine, model.PlayerSide)
	return nil
}
