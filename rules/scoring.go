package rules

import (
	"math"

	"github.com/nstehr/skirmish/model"
	"github.com/nstehr/skirmish/rng"
)

// Threat estimates how dangerous u is from its base stats. Results are cached
// for the current turn.
func (e *Engine) Threat(u *model.Unit) float64 {
	return e.cache.threatOf(u, computeThreat)
}

func computeThreat(u *model.Unit) float64 {
	threat := float64(u.Attack)
	if u.MaxHP > 0 {
		threat *= 0.5 + 0.5*float64(u.HP)/float64(u.MaxHP)
	}
	threat *= 1 + 0.2*float64(u.AttackRange)
	threat *= 1 + 0.1*float64(u.MoveRange)
	if u.AbilityReady() {
		threat *= abilityThreatFactor(u.Ability)
	}
	return threat
}

// EvaluateMove scores standing on p for u. Higher is better.
func (e *Engine) EvaluateMove(u *model.Unit, p model.Pos, bf *model.Battlefield) float64 {
	enemies := bf.UnitsOf(u.Side.Opponent())
	enemyDist, _ := nearest(p, enemies, nil)
	allyDist, hasAlly := nearest(p, bf.UnitsOf(u.Side), u)
	attackRange := u.EffectiveStat(model.StatAttackRange)

	score := 0.0
	switch e.doctrine.Strategy {
	case Aggressive:
		score -= float64(enemyDist) * 10
		if hasAlly && allyDist < 2 {
			score -= 20
		}

	case Defensive:
		if enemyDist < attackRange {
			score += 30
		} else {
			score -= float64(enemyDist-attackRange) * 5
		}
		if hasAlly && allyDist > 0 {
			score += math.Max(0, float64(5-allyDist)*10)
		}

	case Balanced:
		score += holdRange(enemyDist, attackRange)
		if hasAlly && allyDist >= 1 && allyDist <= 3 {
			score += 15
		}

	case AbilityFocused:
		if u.Ability == model.AreaAttack {
			score += areaCoverage(p, model.Ability(u.Ability).Range, enemies) * 25
		} else {
			score += holdRange(enemyDist, attackRange)
		}
	}

	danger := 0.0
	for _, o := range enemies {
		if model.Manhattan(p, o.Pos()) <= o.EffectiveStat(model.StatAttackRange) {
			danger += e.Threat(o)
		}
	}
	score -= danger * e.doctrine.Weights.ThreatAversion

	switch cover := e.cache.coverOf(p, bf.Terrain); {
	case cover >= 3:
		score -= 30
	case cover >= 1:
		score += 10
	}

	return score + e.jitter()
}

// holdRange rewards being within striking distance and penalises each cell
// beyond it.
func holdRange(dist, attackRange int) float64 {
	if dist <= attackRange {
		return 40
	}
	return -float64(dist-attackRange) * 3
}

// areaCoverage counts enemies an area attack from p could reach, with half
// credit for each neighbour clustered around them.
func areaCoverage(p model.Pos, reach int, enemies []*model.Unit) float64 {
	n := 0.0
	for _, a := range enemies {
		if model.Manhattan(p, a.Pos()) > reach {
			continue
		}
		n++
		for _, b := range enemies {
			if a != b && model.Manhattan(a.Pos(), b.Pos()) <= 1 {
				n += 0.5
			}
		}
	}
	return n
}

// EvaluateAttackTarget scores attacking target with attacker. Higher is better.
func (e *Engine) EvaluateAttackTarget(attacker, target *model.Unit) float64 {
	score := 0.0
	if target.HP <= attacker.EstimateDamage(target) {
		score += 100
	} else if target.MaxHP > 0 {
		score += 50 * (1 - float64(target.HP)/float64(target.MaxHP))
	}
	score += e.Threat(target) * e.doctrine.Weights.AttackHighThreat
	score += TargetPriority(target.Type)
	if target.Moved && target.Attacked {
		score -= 10
	}
	return score + e.jitter()
}

// bestCluster finds the enemy within reach of from that has the most enemies
// (itself included) within distance 1. Ties keep the first found.
func bestCluster(from model.Pos, reach int, enemies []*model.Unit) (int, model.Pos) {
	best, at := 0, model.Pos{}
	for _, a := range enemies {
		if model.Manhattan(from, a.Pos()) > reach {
			continue
		}
		n := 0
		for _, b := range enemies {
			if model.Manhattan(a.Pos(), b.Pos()) <= 1 {
				n++
			}
		}
		if n > best {
			best, at = n, a.Pos()
		}
	}
	return best, at
}

// nearest returns the distance from p to the closest unit other than skip.
func nearest(p model.Pos, units []*model.Unit, skip *model.Unit) (int, bool) {
	best, found := 0, false
	for _, u := range units {
		if u == skip {
			continue
		}
		if d := model.Manhattan(p, u.Pos()); !found || d < best {
			best, found = d, true
		}
	}
	return best, found
}

// reachable lists the free cells within r of u, row-major by offset.
func reachable(u *model.Unit, bf *model.Battlefield, r int) []model.Pos {
	var cells []model.Pos
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if abs(dx)+abs(dy) > r {
				continue
			}
			p := model.Pos{X: u.X + dx, Y: u.Y + dy}
			if bf.IsFree(p) {
				cells = append(cells, p)
			}
		}
	}
	return cells
}

// bestCell scores every free cell within r and returns the best.
func (e *Engine) bestCell(u *model.Unit, bf *model.Battlefield, r int) (model.Pos, float64, bool) {
	ranked := rank(reachable(u, bf, r), func(p model.Pos) float64 {
		return e.EvaluateMove(u, p, bf)
	})
	if len(ranked) == 0 {
		return model.Pos{}, 0, false
	}
	return ranked[0].item, ranked[0].score, true
}

func (e *Engine) jitter() float64 {
	return rng.Uniform(e.src, -5, 5)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
