package battle

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/nstehr/skirmish/level"
	"github.com/nstehr/skirmish/model"
	"github.com/nstehr/skirmish/rng"
)

// quiet rolls 0.5 for every float, which zeroes score jitter and fails both
// the easy-mode substitution and the low ability chances, and 0 for every int.
func quiet() rng.Source { return &rng.Scripted{Floats: []float64{0.5}} }

func levels(t *testing.T, src string) *level.Set {
	t.Helper()
	s, err := level.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func started(t *testing.T, s *level.Set, src rng.Source, opts ...Option) *Controller {
	t.Helper()
	c := New(s, src, opts...)
	if err := c.StartLevel(1); err != nil {
		t.Fatalf("StartLevel(1): %v", err)
	}
	return c
}

func unitAt(t *testing.T, c *Controller, x, y int) *model.Unit {
	t.Helper()
	u := c.Field().UnitAt(model.Pos{X: x, Y: y})
	if u == nil {
		t.Fatalf("no unit at (%d,%d)", x, y)
	}
	return u
}

// corridor walls the enemy in behind three rocks so the computer turn does
// nothing at all.
const corridor = `
levels:
  - number: 1
    name: Corridor
    grid_width: 10
    grid_height: 1
    spawn_interval: %d
    player_units: [{type: INFANTRY, x: 0, y: 0}]
    enemy_units: [{type: INFANTRY, x: 9, y: 0}]
    spawn_points: [{x: %d, y: 0}]
    obstacles:
      - {x: 6, y: 0, type: rock}
      - {x: 7, y: 0, type: rock}
      - {x: 8, y: 0, type: rock}
`

func TestEndTurnSpawnsOnInterval(t *testing.T) {
	tests := []struct {
		name      string
		interval  int
		spawnX    int
		wantUnits int
	}{
		{"spawn on multiple", 2, 5, 3},
		{"no spawn off multiple", 3, 5, 2},
		{"occupied spawn point", 2, 9, 2},
		{"spawning disabled", 0, 5, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := started(t, levels(t, fmt.Sprintf(corridor, tc.interval, tc.spawnX)), quiet())
			if c.Turn() != 1 {
				t.Fatalf("Turn() = %d at level start, want 1", c.Turn())
			}
			st, err := c.EndTurn()
			if err != nil {
				t.Fatalf("EndTurn: %v", err)
			}
			if st.Turn != 2 || st.Current != model.PlayerSide || st.Phase != PlayerTurn {
				t.Errorf("EndTurn() = %+v, want turn 2 back with the player", st)
			}
			if got := len(c.Field().Units); got != tc.wantUnits {
				t.Errorf("units = %d, want %d", got, tc.wantUnits)
			}
		})
	}
}

func TestSpawnedUnitType(t *testing.T) {
	c := started(t, levels(t, fmt.Sprintf(corridor, 2, 5)), quiet())
	if _, err := c.EndTurn(); err != nil {
		t.Fatal(err)
	}
	u := unitAt(t, c, 5, 0)
	// 0.5 lands in the archer band of the spawn table.
	if u.Type != model.Archer || u.Side != model.AISide {
		t.Errorf("spawned %v, want an ai archer", u)
	}
}

func TestEndTurnUpkeep(t *testing.T) {
	c := started(t, levels(t, fmt.Sprintf(corridor, 0, 5)), quiet())
	inf := unitAt(t, c, 0, 0)
	if _, err := c.ToggleAbilityMode(inf.ID); err != nil {
		t.Fatalf("shield: %v", err)
	}
	if err := c.IssueMove(inf.ID, model.Pos{X: 2, Y: 0}); err != nil {
		t.Fatalf("IssueMove: %v", err)
	}
	if _, err := c.EndTurn(); err != nil {
		t.Fatal(err)
	}
	if inf.Moved || inf.AbilityUsed {
		t.Error("per-turn flags survived upkeep")
	}
	if inf.AbilityCooldown != 2 {
		t.Errorf("cooldown = %d, want 2", inf.AbilityCooldown)
	}
	if inf.HasShield() {
		t.Error("one-turn shield survived upkeep")
	}
	if c.Selected() != nil {
		t.Error("selection survived end of turn")
	}
}

func TestCommandsRejected(t *testing.T) {
	c := started(t, level.Default(), quiet())
	inf := unitAt(t, c, 1, 3)
	enemy := unitAt(t, c, 14, 3)
	before := c.Snapshot()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown unit", c.IssueMove("nope", model.Pos{X: 2, Y: 3}), ErrUnknownUnit},
		{"enemy unit", c.IssueMove(enemy.ID, model.Pos{X: 13, Y: 3}), model.ErrInvalidTarget},
		{"out of range", c.IssueMove(inf.ID, model.Pos{X: 5, Y: 3}), model.ErrInvalidTarget},
		{"occupied", c.IssueMove(inf.ID, model.Pos{X: 0, Y: 5}), model.ErrInvalidTarget},
		{"off grid", c.IssueMove(inf.ID, model.Pos{X: -1, Y: 3}), model.ErrInvalidTarget},
		{"attack out of range", attackErr(c, inf.ID, enemy.ID), model.ErrInvalidTarget},
		{"attack ally", attackErr(c, inf.ID, unitAt(t, c, 2, 6).ID), model.ErrInvalidTarget},
		{"bad item", itemErr(c, inf.ID, 2), model.ErrInvalidItemIndex},
		{"select enemy", c.Select(enemy.ID), model.ErrInvalidTarget},
	}
	for _, tc := range tests {
		if !errors.Is(tc.err, tc.want) {
			t.Errorf("%s: error = %v, want %v", tc.name, tc.err, tc.want)
		}
	}
	if after := c.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Error("a rejected command changed the game state")
	}
}

func attackErr(c *Controller, a, b string) error {
	_, err := c.IssueAttack(a, b)
	return err
}

func itemErr(c *Controller, id string, i int) error {
	_, err := c.IssueItem(id, i)
	return err
}

func TestIssueMoveOnce(t *testing.T) {
	c := started(t, level.Default(), quiet())
	inf := unitAt(t, c, 1, 3)
	if err := c.IssueMove(inf.ID, model.Pos{X: 3, Y: 3}); err != nil {
		t.Fatalf("IssueMove: %v", err)
	}
	if inf.Pos() != (model.Pos{X: 3, Y: 3}) || !inf.Moved {
		t.Errorf("unit at %v moved=%v after move", inf.Pos(), inf.Moved)
	}
	if err := c.IssueMove(inf.ID, model.Pos{X: 4, Y: 3}); !errors.Is(err, model.ErrAlreadyUsed) {
		t.Errorf("second move error = %v, want ErrAlreadyUsed", err)
	}
}

func TestIssueItem(t *testing.T) {
	c := started(t, level.Default(), quiet())
	inf := unitAt(t, c, 1, 3)
	msg, err := c.IssueItem(inf.ID, 0)
	if err != nil {
		t.Fatalf("IssueItem: %v", err)
	}
	if msg == "" || len(inf.Inventory) != 1 {
		t.Errorf("IssueItem = %q, inventory %v", msg, inf.Inventory)
	}
	if got := inf.EffectiveStat(model.StatDefense); got != 20 {
		t.Errorf("defense after shield item = %d, want 20", got)
	}
}

func TestAbilityMode(t *testing.T) {
	c := started(t, level.Default(), quiet())
	mage := unitAt(t, c, 0, 7)
	inf := unitAt(t, c, 1, 3)

	if _, err := c.ToggleAbilityMode(mage.ID); err != nil {
		t.Fatalf("ToggleAbilityMode: %v", err)
	}
	if c.PendingAbility() != mage || c.Selected() != mage {
		t.Fatal("mage not armed and selected")
	}
	if msg, _ := c.ToggleAbilityMode(mage.ID); msg != "Ability cancelled" || c.PendingAbility() != nil {
		t.Errorf("second toggle = %q, pending %v", msg, c.PendingAbility())
	}

	c.ToggleAbilityMode(mage.ID)
	_, err := c.IssueAbility(mage.ID, model.At(model.Pos{X: 1, Y: 7}))
	if !errors.Is(err, model.ErrInvalidTarget) {
		t.Errorf("empty area attack error = %v, want ErrInvalidTarget", err)
	}
	if c.PendingAbility() != nil {
		t.Error("failed resolution left the ability armed")
	}
	if !mage.AbilityReady() {
		t.Error("failed ability started the cooldown")
	}

	if _, err := c.ToggleAbilityMode(inf.ID); err != nil {
		t.Fatalf("shield: %v", err)
	}
	if !inf.HasShield() || !inf.AbilityUsed || c.PendingAbility() != nil {
		t.Error("shield did not resolve immediately")
	}
	if _, err := c.ToggleAbilityMode(inf.ID); !errors.Is(err, model.ErrAlreadyUsed) {
		t.Errorf("reuse error = %v, want ErrAlreadyUsed", err)
	}
}

// duel is two levels of a single infantry facing an adjacent archer.
const duel = `
levels:
  - number: 1
    name: Duel
    grid_width: 4
    grid_height: 1
    player_units: [{type: INFANTRY, x: 0, y: 0}]
    enemy_units: [{type: ARCHER, x: 1, y: 0}]
  - number: 2
    name: Rematch
    grid_width: 4
    grid_height: 1
    player_units: [{type: INFANTRY, x: 0, y: 0}]
    enemy_units: [{type: ARCHER, x: 3, y: 0}]
`

func TestPlayerWin(t *testing.T) {
	c := started(t, levels(t, duel), quiet())
	inf, archer := unitAt(t, c, 0, 0), unitAt(t, c, 1, 0)
	archer.HP = 10

	dmg, err := c.IssueAttack(inf.ID, archer.ID)
	if err != nil {
		t.Fatalf("IssueAttack: %v", err)
	}
	if dmg != 18 {
		t.Errorf("damage = %d, want 18", dmg)
	}
	if w, over := c.Winner(); !over || w != model.PlayerSide {
		t.Fatalf("Winner() = %v, %v, want player, true", w, over)
	}
	if c.Phase() != GameOver {
		t.Errorf("Phase() = %v, want game_over", c.Phase())
	}
	if len(c.Field().Units) != 1 {
		t.Errorf("dead archer still on the field")
	}
	if _, err := c.EndTurn(); !errors.Is(err, ErrGameOver) {
		t.Errorf("EndTurn after win = %v, want ErrGameOver", err)
	}
	if err := c.IssueMove(inf.ID, model.Pos{X: 1, Y: 0}); !errors.Is(err, ErrGameOver) {
		t.Errorf("IssueMove after win = %v, want ErrGameOver", err)
	}
	if err := c.AdvanceLevel(2); err != nil {
		t.Fatalf("AdvanceLevel: %v", err)
	}
	if c.Level() != 2 || c.Phase() != PlayerTurn || c.Turn() != 1 {
		t.Errorf("after advance: %+v", c.State())
	}
}

func TestPlayerWinTransition(t *testing.T) {
	var got [2]int
	c := started(t, levels(t, duel), quiet(), WithTransition(func(completed, next int) (int, bool) {
		got = [2]int{completed, next}
		return next, true
	}))
	inf, archer := unitAt(t, c, 0, 0), unitAt(t, c, 1, 0)
	archer.HP = 1
	if _, err := c.IssueAttack(inf.ID, archer.ID); err != nil {
		t.Fatal(err)
	}
	if got != [2]int{1, 2} {
		t.Errorf("transition called with %v, want [1 2]", got)
	}
	if c.Level() != 2 || c.Phase() != PlayerTurn || len(c.Field().Units) != 2 {
		t.Errorf("after transition: %+v with %d units", c.State(), len(c.Field().Units))
	}
}

func TestAdvanceLevelRequiresWin(t *testing.T) {
	c := started(t, levels(t, duel), quiet())
	if err := c.AdvanceLevel(2); !errors.Is(err, ErrNotWon) {
		t.Errorf("AdvanceLevel mid-level = %v, want ErrNotWon", err)
	}
	if err := c.StartLevel(7); !errors.Is(err, ErrNoLevel) {
		t.Errorf("StartLevel(7) = %v, want ErrNoLevel", err)
	}
}

func TestAIWinStopsTurn(t *testing.T) {
	s := levels(t, `
levels:
  - number: 1
    name: Last Stand
    grid_width: 4
    grid_height: 1
    player_units: [{type: ARCHER, x: 0, y: 0}]
    enemy_units: [{type: INFANTRY, x: 1, y: 0}, {type: INFANTRY, x: 3, y: 0}]
`)
	c := started(t, s, quiet())
	unitAt(t, c, 0, 0).HP = 1
	last := unitAt(t, c, 3, 0)

	st, err := c.EndTurn()
	if err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if st.Phase != GameOver || st.Winner != model.AISide {
		t.Errorf("EndTurn() = %+v, want an ai win", st)
	}
	if st.Current != model.AISide || st.Turn != 1 {
		t.Errorf("control moved on after the ai won: %+v", st)
	}
	if last.Moved {
		t.Error("a unit acted after the game ended")
	}
}

func TestAIChainsDoubleStrike(t *testing.T) {
	tests := []struct {
		name   string
		uses   int
		wantHP int
	}{
		{"single strike", 0, 90},
		{"one extra strike", 1, 80},
		{"two extra strikes", 2, 70},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := levels(t, `
levels:
  - number: 1
    name: Range
    grid_width: 6
    grid_height: 1
    player_units: [{type: INFANTRY, x: 0, y: 0}]
    enemy_units: [{type: ARCHER, x: 2, y: 0}]
`)
			c := started(t, s, quiet())
			inf := unitAt(t, c, 0, 0)
			archer := unitAt(t, c, 2, 0)
			archer.AbilityCooldown = 3
			if tc.uses > 0 {
				archer.Effects = []model.Effect{&model.DoubleStrike{Turns: 1, Uses: tc.uses}}
			}

			st, err := c.EndTurn()
			if err != nil {
				t.Fatalf("EndTurn: %v", err)
			}
			if inf.HP != tc.wantHP {
				t.Errorf("infantry hp = %d, want %d", inf.HP, tc.wantHP)
			}
			if st.Current != model.PlayerSide || st.Turn != 2 {
				t.Errorf("EndTurn() = %+v, want turn 2 back with the player", st)
			}
		})
	}
}

func TestEndTurnWithoutLevel(t *testing.T) {
	c := New(level.Default(), quiet())
	if _, err := c.EndTurn(); !errors.Is(err, ErrNoLevel) {
		t.Errorf("EndTurn() = %v, want ErrNoLevel", err)
	}
	if err := c.AutoPlay(nil); !errors.Is(err, ErrNoLevel) {
		t.Errorf("AutoPlay() = %v, want ErrNoLevel", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := started(t, level.Default(), quiet())
	inf := unitAt(t, c, 1, 3)
	if err := c.IssueMove(inf.ID, model.Pos{X: 2, Y: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.IssueItem(inf.ID, 0); err != nil {
		t.Fatal(err)
	}
	snap := c.Snapshot()

	r := New(level.Default(), quiet())
	if err := r.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := r.Snapshot(); !reflect.DeepEqual(got, snap) {
		t.Errorf("restored snapshot differs:\n got %+v\nwant %+v", got, snap)
	}

	bare := snap
	bare.GridWidth, bare.GridHeight, bare.SpawnPoints, bare.SpawnInterval = 0, 0, nil, 0
	if err := r.Restore(bare); err != nil {
		t.Fatalf("Restore without grid: %v", err)
	}
	if got := r.Snapshot(); !reflect.DeepEqual(got, snap) {
		t.Error("level defaults not filled in on restore")
	}

	bare.CurrentLevel = 9
	if err := r.Restore(bare); !errors.Is(err, ErrNoLevel) {
		t.Errorf("Restore of unknown level = %v, want ErrNoLevel", err)
	}
}

func TestRestoreRejectsCorruptSave(t *testing.T) {
	c := started(t, level.Default(), quiet())
	good := c.Snapshot()

	tests := []struct {
		name    string
		corrupt func(s *model.Snapshot)
	}{
		{"current player", func(s *model.Snapshot) { s.CurrentPlayer = 7 }},
		{"stacked units", func(s *model.Snapshot) { s.Units[1].X, s.Units[1].Y = s.Units[0].X, s.Units[0].Y }},
		{"off grid", func(s *model.Snapshot) { s.Units[0].X, s.Units[0].Y = 99, 99 }},
		{"duplicate id", func(s *model.Snapshot) { s.Units[1].ID = s.Units[0].ID }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bad := c.Snapshot()
			tc.corrupt(&bad)
			if err := c.Restore(bad); !errors.Is(err, model.ErrBadRecord) {
				t.Fatalf("Restore() = %v, want ErrBadRecord", err)
			}
			if got := c.Snapshot(); !reflect.DeepEqual(got, good) {
				t.Error("rejected restore changed the game")
			}
			if c.Phase() != PlayerTurn || c.Current() != model.PlayerSide {
				t.Errorf("phase/current = %s/%s, want player_turn/player", c.Phase(), c.Current())
			}
		})
	}
	if _, err := c.EndTurn(); err != nil {
		t.Fatal(err)
	}
	if c.Turn() != 2 {
		t.Errorf("turn after EndTurn = %d, want 2", c.Turn())
	}
}

func TestAutoPlayKeepsBoardLegal(t *testing.T) {
	src := rng.New(11)
	c := started(t, level.Default(), src)
	pilot, err := c.newEngine(1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 60 && c.Phase() != GameOver; i++ {
		if err := c.AutoPlay(pilot); err != nil {
			t.Fatalf("AutoPlay: %v", err)
		}
		if c.Phase() == GameOver {
			break
		}
		if _, err := c.EndTurn(); err != nil {
			t.Fatalf("EndTurn: %v", err)
		}
		seen := make(map[model.Pos]bool)
		for _, u := range c.Field().Units {
			if !u.Alive() {
				t.Fatalf("turn %d: dead unit %v left on the field", c.Turn(), u)
			}
			if !c.Field().Terrain.InBounds(u.Pos()) || c.Field().Terrain.Blocked(u.Pos()) {
				t.Fatalf("turn %d: %v on an illegal cell", c.Turn(), u)
			}
			if seen[u.Pos()] {
				t.Fatalf("turn %d: two units share %v", c.Turn(), u.Pos())
			}
			seen[u.Pos()] = true
		}
	}
	if c.Phase() == GameOver {
		if err := c.AutoPlay(pilot); !errors.Is(err, ErrGameOver) {
			t.Errorf("AutoPlay after game over = %v, want ErrGameOver", err)
		}
	}
}
