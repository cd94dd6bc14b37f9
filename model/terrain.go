package model

// TerrainType classifies a grid cell. Anything other than Open blocks
// occupancy; trees and rocks differ only in how the shell draws them.
type TerrainType string

const (
	Open TerrainType = ""
	Tree TerrainType = "tree"
	Rock TerrainType = "rock"
)

// Pos is a grid cell. X grows to the right, Y grows downward.
type Pos struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Manhattan is the grid distance used for every range check in the game.
func Manhattan(a, b Pos) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Neighbors4 are the orthogonal offsets, in the order scoring walks them.
var Neighbors4 = []Pos{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// Obstacle is a blocking cell.
type Obstacle struct {
	X    int         `json:"x" yaml:"x"`
	Y    int         `json:"y" yaml:"y"`
	Type TerrainType `json:"type" yaml:"type"`
}

func (o Obstacle) Pos() Pos { return Pos{o.X, o.Y} }

// Terrain is the static part of a battlefield: its bounds and obstacle layout.
// Obstacles keep their declaration order so snapshots round-trip exactly.
type Terrain struct {
	Width     int
	Height    int
	obstacles []Obstacle
	index     map[Pos]TerrainType
}

func NewTerrain(width, height int, obstacles []Obstacle) *Terrain {
	t := &Terrain{
		Width:     width,
		Height:    height,
		obstacles: append([]Obstacle(nil), obstacles...),
		index:     make(map[Pos]TerrainType, len(obstacles)),
	}
	for _, o := range obstacles {
		kind := o.Type
		if kind == Open {
			kind = Rock
		}
		t.index[o.Pos()] = kind
	}
	return t
}

// InBounds reports whether p lies on the grid.
func (t *Terrain) InBounds(p Pos) bool {
	return p.X >= 0 && p.X < t.Width && p.Y >= 0 && p.Y < t.Height
}

// At returns the terrain at p. Returns Open for out-of-bounds cells; use
// InBounds to tell the two apart.
func (t *Terrain) At(p Pos) TerrainType {
	return t.index[p]
}

// Blocked reports whether an obstacle sits on p.
func (t *Terrain) Blocked(p Pos) bool {
	_, ok := t.index[p]
	return ok
}

// Cover counts orthogonal neighbours of p that are off the grid or blocked by
// an obstacle. Units are not counted.
func (t *Terrain) Cover(p Pos) int {
	n := 0
	for _, d := range Neighbors4 {
		q := Pos{p.X + d.X, p.Y + d.Y}
		if !t.InBounds(q) || t.Blocked(q) {
			n++
		}
	}
	return n
}

// Obstacles returns a copy of the obstacle list in declaration order.
func (t *Terrain) Obstacles() []Obstacle {
	return append([]Obstacle(nil), t.obstacles...)
}
