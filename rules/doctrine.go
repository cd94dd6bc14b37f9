package rules

import (
	"math"

	"github.com/nstehr/skirmish/rng"
)

// Strategy is the posture the AI adopts for a whole level. It mostly shapes
// how cells are scored when moving.
type Strategy string

const (
	Aggressive     Strategy = "aggressive"
	Defensive      Strategy = "defensive"
	Balanced       Strategy = "balanced"
	AbilityFocused Strategy = "ability_focused"
)

// Strategies lists every strategy in the order hard difficulty draws from.
var Strategies = []Strategy{Aggressive, Defensive, Balanced, AbilityFocused}

// Weights are the difficulty-scaled decision knobs. Each is base + d*step.
type Weights struct {
	AttackHighThreat float64 `json:"attack_high_threat"`
	UseAbility       float64 `json:"use_ability"`
	ThreatAversion   float64 `json:"threat_aversion"`
}

// NewWeights returns the weight table for difficulty d (1-3).
func NewWeights(d int) Weights {
	f := float64(clampInt(d, MinDifficulty, MaxDifficulty))
	return Weights{
		AttackHighThreat: 0.6 + f*0.15,
		UseAbility:       0.5 + f*0.2,
		ThreatAversion:   0.5 + f*0.25,
	}
}

const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// DifficultyForLevel caps the level number at the hardest difficulty.
func DifficultyForLevel(level int) int {
	return clampInt(level, MinDifficulty, MaxDifficulty)
}

// Doctrine is everything that stays fixed for one AI opponent: its
// difficulty, the strategy drawn for it and the resulting weights.
type Doctrine struct {
	Name       string   `json:"name"`
	Difficulty int      `json:"difficulty"`
	Strategy   Strategy `json:"strategy"`
	Weights    Weights  `json:"weights"`
}

// NewDoctrine draws a strategy for difficulty d. Easy is always balanced,
// medium flips between aggressive and defensive, hard may pick any strategy.
func NewDoctrine(d int, src rng.Source) Doctrine {
	d = clampInt(d, MinDifficulty, MaxDifficulty)
	var s Strategy
	switch d {
	case 1:
		s = Balanced
	case 2:
		pool := []Strategy{Aggressive, Defensive}
		s = pool[src.Intn(len(pool))]
	default:
		s = Strategies[src.Intn(len(Strategies))]
	}
	return Doctrine{
		Name:       strategyNames[s],
		Difficulty: d,
		Strategy:   s,
		Weights:    NewWeights(d),
	}
}

var strategyNames = map[Strategy]string{
	Aggressive:     "Aggressive",
	Defensive:      "Defensive",
	Balanced:       "Balanced",
	AbilityFocused: "Ability Focused",
}

// Validate clamps the difficulty and weights and fills in an unknown strategy.
func (d *Doctrine) Validate() {
	d.Difficulty = clampInt(d.Difficulty, MinDifficulty, MaxDifficulty)
	if _, ok := strategyNames[d.Strategy]; !ok {
		d.Strategy = Balanced
	}
	if d.Name == "" {
		d.Name = strategyNames[d.Strategy]
	}
	w := &d.Weights
	w.AttackHighThreat = clamp(w.AttackHighThreat, 0, 2)
	w.UseAbility = clamp(w.UseAbility, 0, 2)
	w.ThreatAversion = clamp(w.ThreatAversion, 0, 2)
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// round2 trims float noise for log output.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
