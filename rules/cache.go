package rules

import "github.com/nstehr/skirmish/model"

// Cache memoizes threat and cover lookups for the duration of one AI turn.
// Threat depends only on the fields in threatKey, so two units that agree on
// them share an entry; cover depends only on terrain.
type Cache struct {
	threat map[threatKey]float64
	cover  map[model.Pos]int
	Hits   int
	Misses int
}

type threatKey struct {
	Type     model.UnitType
	HP       int
	Attack   int
	Cooldown int
}

func newCache() *Cache {
	return &Cache{
		threat: make(map[threatKey]float64),
		cover:  make(map[model.Pos]int),
	}
}

// Reset empties the cache. The engine calls it at the start of every AI turn.
func (c *Cache) Reset() {
	clear(c.threat)
	clear(c.cover)
	c.Hits, c.Misses = 0, 0
}

// Len reports the number of memoized entries.
func (c *Cache) Len() int { return len(c.threat) + len(c.cover) }

func (c *Cache) threatOf(u *model.Unit, compute func(*model.Unit) float64) float64 {
	k := threatKey{u.Type, u.HP, u.Attack, u.AbilityCooldown}
	if v, ok := c.threat[k]; ok {
		c.Hits++
		return v
	}
	c.Misses++
	v := compute(u)
	c.threat[k] = v
	return v
}

func (c *Cache) coverOf(p model.Pos, t *model.Terrain) int {
	if v, ok := c.cover[p]; ok {
		c.Hits++
		return v
	}
	c.Misses++
	v := t.Cover(p)
	c.cover[p] = v
	return v
}
