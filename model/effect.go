package model

import "fmt"

// EffectKind tags an active effect. The values double as the "type" field of
// the persisted effect record.
type EffectKind string

const (
	EffectAttackBoost  EffectKind = "attack_boost"
	EffectDefenseBoost EffectKind = "defense_boost"
	EffectRangeBoost   EffectKind = "range_boost"
	EffectMoveBoost    EffectKind = "move_boost"
	EffectShield       EffectKind = "shield"
	EffectDoubleAttack EffectKind = "double_attack"
)

var boostKinds = map[Stat]EffectKind{
	StatAttack:      EffectAttackBoost,
	StatDefense:     EffectDefenseBoost,
	StatAttackRange: EffectRangeBoost,
	StatMoveRange:   EffectMoveBoost,
}

// Effect is a temporary modifier attached to a unit. The concrete types are
// *StatBoost, *Shield and *DoubleStrike; each carries only the counters it needs.
type Effect interface {
	Kind() EffectKind
	// Remaining is the number of upkeeps left before expiry.
	Remaining() int
	// tick runs one upkeep and reports whether the effect survives it.
	tick() bool
	Record() EffectRecord
}

// StatBoost adds Amount to Stat while active.
type StatBoost struct {
	Stat   Stat
	Amount int
	Turns  int
}

func (b *StatBoost) Kind() EffectKind { return boostKinds[b.Stat] }
func (b *StatBoost) Remaining() int   { return b.Turns }
func (b *StatBoost) tick() bool {
	b.Turns--
	return b.Turns > 0
}
func (b *StatBoost) Record() EffectRecord {
	return EffectRecord{Type: b.Kind(), Value: b.Amount, Duration: b.Turns}
}

// Shield halves the next hit taken and is consumed by it.
type Shield struct {
	Turns int
}

func (s *Shield) Kind() EffectKind { return EffectShield }
func (s *Shield) Remaining() int   { return s.Turns }
func (s *Shield) tick() bool {
	s.Turns--
	return s.Turns > 0
}
func (s *Shield) Record() EffectRecord {
	return EffectRecord{Type: EffectShield, Duration: s.Turns}
}

// DoubleStrike keeps the attacker's attacked flag clear for Uses more attacks.
type DoubleStrike struct {
	Turns int
	Uses  int
}

func (d *DoubleStrike) Kind() EffectKind { return EffectDoubleAttack }
func (d *DoubleStrike) Remaining() int   { return d.Turns }
func (d *DoubleStrike) tick() bool {
	d.Turns--
	return d.Turns > 0
}
func (d *DoubleStrike) Record() EffectRecord {
	uses := d.Uses
	return EffectRecord{Type: EffectDoubleAttack, Duration: d.Turns, Uses: &uses}
}

// EffectRecord is the persisted form of an effect.
type EffectRecord struct {
	Type     EffectKind `json:"type" yaml:"type"`
	Value    int        `json:"value,omitempty" yaml:"value,omitempty"`
	Duration int        `json:"duration" yaml:"duration"`
	Uses     *int       `json:"uses,omitempty" yaml:"uses,omitempty"`
}

// EffectFromRecord rebuilds the typed effect for a persisted record.
func EffectFromRecord(r EffectRecord) (Effect, error) {
	switch r.Type {
	case EffectShield:
		return &Shield{Turns: r.Duration}, nil
	case EffectDoubleAttack:
		uses := 0
		if r.Uses != nil {
			uses = *r.Uses
		}
		return &DoubleStrike{Turns: r.Duration, Uses: uses}, nil
	}
	for stat, kind := range boostKinds {
		if kind == r.Type {
			return &StatBoost{Stat: stat, Amount: r.Value, Turns: r.Duration}, nil
		}
	}
	return nil, fmt.Errorf("%w: effect type %q", ErrNotFound, string(r.Type))
}
