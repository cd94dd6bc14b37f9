package rules

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/skirmish/model"
	"github.com/nstehr/skirmish/rng"
)

// Engine decides what computer-controlled units do. It only reads the
// battlefield; the turn controller applies the plans it returns.
type Engine struct {
	doctrine Doctrine
	rules    map[model.AbilityKind]*AbilityRule
	cache    *Cache
	src      rng.Source
}

// NewEngine compiles the doctrine's ability rules into expr bytecode.
func NewEngine(d Doctrine, src rng.Source) (*Engine, error) {
	d.Validate()
	compiled, err := compileRules(CompileDoctrine(d))
	if err != nil {
		return nil, err
	}
	slog.Debug("ai engine ready", "strategy", d.Strategy, "difficulty", d.Difficulty, "useAbility", round2(d.Weights.UseAbility))
	return &Engine{
		doctrine: d,
		rules:    compiled,
		cache:    newCache(),
		src:      src,
	}, nil
}

// ForLevel builds the opponent for a level: difficulty is the level number
// capped at 3, and the strategy is drawn from src.
func ForLevel(level int, src rng.Source) (*Engine, error) {
	return NewEngine(NewDoctrine(DifficultyForLevel(level), src), src)
}

func (e *Engine) Doctrine() Doctrine { return e.doctrine }

// Cache exposes the per-turn memo, mainly for diagnostics.
func (e *Engine) Cache() *Cache { return e.cache }

// BeginTurn clears the per-turn cache.
func (e *Engine) BeginTurn() {
	if n := e.cache.Len(); n > 0 {
		slog.Debug("ai cache reset", "entries", n, "hits", e.cache.Hits, "misses", e.cache.Misses)
	}
	e.cache.Reset()
}

// PlanAbility decides whether u uses its ability now and on what.
func (e *Engine) PlanAbility(u *model.Unit, bf *model.Battlefield) (AbilityPlan, bool) {
	if !u.AbilityReady() {
		return AbilityPlan{}, false
	}
	r, ok := e.rules[u.Ability]
	if !ok {
		return AbilityPlan{}, false
	}
	env := newAbilityEnv(e, u, bf)

	out, err := vm.Run(r.condition, env)
	if err != nil {
		slog.Warn("ability condition error", "rule", r.Name, "error", err)
		return AbilityPlan{}, false
	}
	if match, ok := out.(bool); !ok || !match {
		return AbilityPlan{}, false
	}

	out, err = vm.Run(r.chance, env)
	if err != nil {
		slog.Warn("ability chance error", "rule", r.Name, "error", err)
		return AbilityPlan{}, false
	}
	chance, _ := out.(float64)
	if e.src.Float64() >= chance {
		return AbilityPlan{}, false
	}

	target, ok := r.Target(env)
	if !ok {
		return AbilityPlan{}, false
	}
	slog.Debug("ability rule fired", "rule", r.Name, "unit", u.ID, "chance", round2(chance))
	return AbilityPlan{Rule: r.Name, Ability: u.Ability, Target: target, Chance: chance}, true
}

// PlanAttack picks the enemy u should attack, if any is in reach.
func (e *Engine) PlanAttack(u *model.Unit, bf *model.Battlefield) (*model.Unit, bool) {
	var candidates []*model.Unit
	for _, o := range bf.UnitsOf(u.Side.Opponent()) {
		if u.CanAttack(o) {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	ranked := rank(candidates, func(t *model.Unit) float64 {
		return e.EvaluateAttackTarget(u, t)
	})
	pick := ranked[e.pickWeak(len(ranked), 2, 2)]
	slog.Debug("attack target chosen", "unit", u.ID, "target", pick.item.ID, "score", round2(pick.score))
	return pick.item, true
}

// PlanMove picks where u should move. There is no move when no enemies
// remain or no cell is free.
func (e *Engine) PlanMove(u *model.Unit, bf *model.Battlefield) (model.Pos, bool) {
	if u.Moved || len(bf.UnitsOf(u.Side.Opponent())) == 0 {
		return model.Pos{}, false
	}
	cells := reachable(u, bf, u.EffectiveStat(model.StatMoveRange))
	if len(cells) == 0 {
		return model.Pos{}, false
	}
	ranked := rank(cells, func(p model.Pos) float64 {
		return e.EvaluateMove(u, p, bf)
	})
	pick := ranked[e.pickWeak(len(ranked), 3, 1)]
	slog.Debug("move chosen", "unit", u.ID, "to", pick.item, "score", round2(pick.score))
	return pick.item, true
}

func compileRules(rules []*AbilityRule) (map[model.AbilityKind]*AbilityRule, error) {
	out := make(map[model.AbilityKind]*AbilityRule, len(rules))
	for _, r := range rules {
		cond, err := expr.Compile(r.ConditionSrc, expr.Env(AbilityEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q condition: %w", r.Name, err)
		}
		chance, err := expr.Compile(r.ChanceSrc, expr.Env(AbilityEnv{}), expr.AsFloat64())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q chance: %w", r.Name, err)
		}
		if _, dup := out[r.Ability]; dup {
			return nil, fmt.Errorf("compile rule %q: ability %s already has a rule", r.Name, r.Ability)
		}
		r.condition, r.chance = cond, chance
		out[r.Ability] = r
	}
	return out, nil
}
