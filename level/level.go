// Package level holds the static level definitions a battle is initialized
// from: grid size, starting units, obstacles and reinforcement spawns.
package level

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/skirmish/model"
)

//go:embed levels.yaml
var defaultLevels []byte

// ErrUnknownLevel is returned when a level number is not in the set.
var ErrUnknownLevel = errors.New("unknown level")

// UnitPlacement is a starting unit.
type UnitPlacement struct {
	Type model.UnitType `yaml:"type"`
	X    int            `yaml:"x"`
	Y    int            `yaml:"y"`
}

// Definition describes one level.
type Definition struct {
	Number        int              `yaml:"number"`
	Name          string           `yaml:"name"`
	GridWidth     int              `yaml:"grid_width"`
	GridHeight    int              `yaml:"grid_height"`
	PlayerUnits   []UnitPlacement  `yaml:"player_units"`
	EnemyUnits    []UnitPlacement  `yaml:"enemy_units"`
	SpawnPoints   []model.Pos      `yaml:"spawn_points"`
	SpawnInterval int              `yaml:"spawn_interval"`
	Tutorial      bool             `yaml:"tutorial"`
	Obstacles     []model.Obstacle `yaml:"obstacles"`
}

// Set is an ordered collection of levels, numbered from 1.
type Set struct {
	Levels []Definition `yaml:"levels"`
}

// Default returns the built-in campaign.
func Default() *Set {
	s, err := Parse(defaultLevels)
	if err != nil {
		panic(fmt.Sprintf("embedded levels: %v", err))
	}
	return s
}

// Load reads a level set from a YAML file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a level set.
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse levels: %w", err)
	}
	if len(s.Levels) == 0 {
		return nil, errors.New("no levels defined")
	}
	seen := make(map[int]bool, len(s.Levels))
	for i := range s.Levels {
		d := &s.Levels[i]
		if seen[d.Number] {
			return nil, fmt.Errorf("level %d defined twice", d.Number)
		}
		seen[d.Number] = true
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// Get returns the level numbered n.
func (s *Set) Get(n int) (Definition, error) {
	for _, d := range s.Levels {
		if d.Number == n {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %d", ErrUnknownLevel, n)
}

func (s *Set) Count() int { return len(s.Levels) }

// Next returns the number of the level after n, if there is one.
func (s *Set) Next(n int) (int, bool) {
	if _, err := s.Get(n + 1); err != nil {
		return 0, false
	}
	return n + 1, true
}

// Validate checks that every placement lands on a distinct free cell and that
// spawn points lie on the grid.
func (d Definition) Validate() error {
	if d.Number < 1 {
		return fmt.Errorf("level %q: number must be positive", d.Name)
	}
	if d.GridWidth <= 0 || d.GridHeight <= 0 {
		return fmt.Errorf("level %d: grid %dx%d", d.Number, d.GridWidth, d.GridHeight)
	}
	if d.SpawnInterval < 0 {
		return fmt.Errorf("level %d: negative spawn interval", d.Number)
	}
	for _, o := range d.Obstacles {
		if o.Type != model.Tree && o.Type != model.Rock {
			return fmt.Errorf("level %d: obstacle (%d,%d) has type %q", d.Number, o.X, o.Y, o.Type)
		}
	}
	terrain := model.NewTerrain(d.GridWidth, d.GridHeight, d.Obstacles)
	for _, o := range d.Obstacles {
		if !terrain.InBounds(o.Pos()) {
			return fmt.Errorf("level %d: obstacle (%d,%d) off the grid", d.Number, o.X, o.Y)
		}
	}
	for _, p := range d.SpawnPoints {
		if !terrain.InBounds(p) {
			return fmt.Errorf("level %d: spawn point (%d,%d) off the grid", d.Number, p.X, p.Y)
		}
	}
	if _, err := d.Build(); err != nil {
		return err
	}
	return nil
}

// Build creates a fresh battlefield with the level's starting units. Player
// units are side 0 and enemies side 1.
func (d Definition) Build() (*model.Battlefield, error) {
	terrain := model.NewTerrain(d.GridWidth, d.GridHeight, d.Obstacles)
	bf := model.NewBattlefield(terrain, d.SpawnPoints, d.SpawnInterval)
	place := func(ps []UnitPlacement, side model.Side) error {
		for _, p := range ps {
			u, err := model.NewUnit(p.Type, p.X, p.Y, side)
			if err != nil {
				return fmt.Errorf("level %d: %w", d.Number, err)
			}
			if err := bf.Place(u); err != nil {
				return fmt.Errorf("level %d: %s unit: %w", d.Number, side, err)
			}
		}
		return nil
	}
	if err := place(d.PlayerUnits, model.PlayerSide); err != nil {
		return nil, err
	}
	if err := place(d.EnemyUnits, model.AISide); err != nil {
		return nil, err
	}
	return bf, nil
}
