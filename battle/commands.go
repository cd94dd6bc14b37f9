package battle

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/skirmish/model"
)

// The commands below are the player's side of the game. Each validates
// completely before touching state, so a failed command changes nothing.

func (c *Controller) playerUnit(id string) (*model.Unit, error) {
	if c.field == nil {
		return nil, ErrNoLevel
	}
	if c.over {
		return nil, ErrGameOver
	}
	if c.current != model.PlayerSide {
		return nil, ErrNotYourTurn
	}
	u := c.field.Unit(id)
	if u == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, id)
	}
	if u.Side != model.PlayerSide {
		return nil, fmt.Errorf("%w: %s is not yours", model.ErrInvalidTarget, u)
	}
	return u, nil
}

// Select marks a player unit as selected. Selecting a different unit
// cancels a pending ability target.
func (c *Controller) Select(id string) error {
	u, err := c.playerUnit(id)
	if err != nil {
		return err
	}
	if c.abilityUnit != "" && c.abilityUnit != u.ID {
		c.abilityUnit = ""
	}
	c.selected = u.ID
	return nil
}

func (c *Controller) IssueMove(id string, p model.Pos) error {
	u, err := c.playerUnit(id)
	if err != nil {
		return err
	}
	switch {
	case u.Moved:
		return fmt.Errorf("%w: %s already moved", model.ErrAlreadyUsed, u)
	case model.Manhattan(u.Pos(), p) > u.EffectiveStat(model.StatMoveRange):
		return fmt.Errorf("%w: (%d,%d) out of move range", model.ErrInvalidTarget, p.X, p.Y)
	case !c.field.IsFree(p):
		return fmt.Errorf("%w: (%d,%d) is not free", model.ErrInvalidTarget, p.X, p.Y)
	}
	c.move(u, p)
	return nil
}

// IssueAttack has attacker strike target and returns the damage dealt.
func (c *Controller) IssueAttack(attackerID, targetID string) (int, error) {
	u, err := c.playerUnit(attackerID)
	if err != nil {
		return 0, err
	}
	target := c.field.Unit(targetID)
	if target == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownUnit, targetID)
	}
	switch {
	case u.Attacked:
		return 0, fmt.Errorf("%w: %s already attacked", model.ErrAlreadyUsed, u)
	case target.Side == u.Side:
		return 0, fmt.Errorf("%w: cannot attack an ally", model.ErrInvalidTarget)
	case !u.CanAttack(target):
		return 0, fmt.Errorf("%w: %s out of range", model.ErrInvalidTarget, target)
	}
	return c.attack(u, target), nil
}

// ToggleAbilityMode arms u's ability. Self-targeted abilities resolve at
// once; the others wait for IssueAbility. Toggling the armed unit again
// disarms it.
func (c *Controller) ToggleAbilityMode(id string) (string, error) {
	u, err := c.playerUnit(id)
	if err != nil {
		return "", err
	}
	if c.abilityUnit == u.ID {
		c.abilityUnit = ""
		return "Ability cancelled", nil
	}
	if u.AbilityUsed {
		return "", fmt.Errorf("%w: ability already used", model.ErrAlreadyUsed)
	}
	if u.AbilityCooldown > 0 {
		return "", fmt.Errorf("%w: %d turn(s) left", model.ErrOnCooldown, u.AbilityCooldown)
	}
	c.selected = u.ID
	if !model.NeedsTarget(u.Ability) {
		return c.ability(u, model.AbilityTarget{})
	}
	c.abilityUnit = u.ID
	return fmt.Sprintf("Select a target for %s", model.Ability(u.Ability).Name), nil
}

// IssueAbility resolves u's ability against target. Any resolution of an
// armed ability, successful or not, disarms it.
func (c *Controller) IssueAbility(id string, target model.AbilityTarget) (string, error) {
	u, err := c.playerUnit(id)
	if err != nil {
		return "", err
	}
	if c.abilityUnit == u.ID {
		c.abilityUnit = ""
	}
	return c.ability(u, target)
}

// IssueItem consumes the item at index in u's inventory.
func (c *Controller) IssueItem(id string, index int) (string, error) {
	u, err := c.playerUnit(id)
	if err != nil {
		return "", err
	}
	msg, err := u.ConsumeItem(index)
	if err != nil {
		return "", err
	}
	slog.Info("item used", "unit", u.ID, "result", msg)
	return msg, nil
}

func (c *Controller) move(u *model.Unit, p model.Pos) {
	from := u.Pos()
	u.MoveTo(p)
	slog.Info("unit moved", "unit", u.ID, "side", u.Side, "from", from, "to", p)
}

func (c *Controller) attack(u, target *model.Unit) int {
	dmg := u.ResolveAttack(target)
	slog.Info("attack", "unit", u.ID, "target", target.ID, "damage", dmg, "hp", target.HP)
	c.cleanup()
	return dmg
}

func (c *Controller) ability(u *model.Unit, target model.AbilityTarget) (string, error) {
	msg, err := u.ActivateAbility(target, c.field)
	if err != nil {
		return "", err
	}
	slog.Info("ability used", "unit", u.ID, "ability", u.Ability, "result", msg)
	c.cleanup()
	return msg, nil
}
