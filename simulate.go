package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nstehr/skirmish/battle"
	"github.com/nstehr/skirmish/level"
	"github.com/nstehr/skirmish/rng"
	"github.com/nstehr/skirmish/rules"
	"github.com/nstehr/skirmish/store"
)

type simOptions struct {
	runs            int
	level           int
	seed            int64
	difficulty      int
	pilotDifficulty int
	maxTurns        int
	db              string
}

func newSimulateCmd() *cobra.Command {
	var opts simOptions
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play headless AI-vs-AI matches and tabulate the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl := logLevel
			if !cmd.Flags().Changed("log-level") {
				lvl = "warn"
			}
			if err := setupLogging(lvl); err != nil {
				return err
			}
			levels, err := loadLevels()
			if err != nil {
				return err
			}
			return simulate(levels, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.runs, "runs", "r", 10, "Number of matches")
	cmd.Flags().IntVarP(&opts.level, "level", "l", 1, "Level to play")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "Seed of the first match; match i uses seed+i")
	cmd.Flags().IntVarP(&opts.difficulty, "difficulty", "d", 0, "Opponent difficulty 1-3 (0 derives it from the level)")
	cmd.Flags().IntVar(&opts.pilotDifficulty, "pilot-difficulty", rules.MaxDifficulty, "Difficulty of the AI playing the player side")
	cmd.Flags().IntVar(&opts.maxTurns, "max-turns", 100, "Turn cap; matches reaching it are draws")
	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite file to record matches in")
	return cmd
}

// matchResult is the outcome of one headless match.
type matchResult struct {
	record *store.MatchRecord
	pilot  rules.Doctrine
	enemy  rules.Doctrine
}

// runMatch plays one match with an AI on each side. The player side is
// driven through the same per-unit protocol as the opponent.
func runMatch(levels *level.Set, opts simOptions, seed int64) (matchResult, error) {
	src := rng.New(seed)
	var gameOpts []battle.Option
	if opts.difficulty > 0 {
		gameOpts = append(gameOpts, battle.WithDifficulty(opts.difficulty))
	}
	game := battle.New(levels, src, gameOpts...)
	if err := game.StartLevel(opts.level); err != nil {
		return matchResult{}, err
	}
	pilot, err := rules.NewEngine(rules.NewDoctrine(opts.pilotDifficulty, src), src)
	if err != nil {
		return matchResult{}, err
	}

	for game.Phase() != battle.GameOver && game.Turn() <= opts.maxTurns {
		if err := game.AutoPlay(pilot); err != nil {
			return matchResult{}, err
		}
		if game.Phase() == battle.GameOver {
			break
		}
		if _, err := game.EndTurn(); err != nil {
			return matchResult{}, err
		}
	}

	winner := store.Draw
	if w, over := game.Winner(); over {
		winner = int(w)
	}
	enemy := game.Engine().Doctrine()
	rec, err := store.NewMatchRecord(seed, enemy.Difficulty, string(pilot.Doctrine().Strategy), string(enemy.Strategy), winner, game.Snapshot())
	if err != nil {
		return matchResult{}, err
	}
	slog.Info("match finished", "seed", seed, "winner", winner, "turns", rec.Turns)
	return matchResult{record: rec, pilot: pilot.Doctrine(), enemy: enemy}, nil
}

func simulate(levels *level.Set, opts simOptions) error {
	if opts.runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", opts.runs)
	}
	if _, err := levels.Get(opts.level); err != nil {
		return err
	}

	var repo store.Repository
	if opts.db != "" {
		db, err := store.OpenAndMigrate(opts.db)
		if err != nil {
			return err
		}
		repo = store.NewSQLiteRepository(db)
	}

	titleColor := color.New(color.FgCyan, color.Bold)
	titleColor.Printf("\nSimulating %d match(es) on level %d\n\n", opts.runs, opts.level)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Seed", "Pilot", "Opponent", "Difficulty", "Winner", "Turns", "Survivors"}),
	)
	wins := map[int]int{}
	for i := 0; i < opts.runs; i++ {
		seed := opts.seed + int64(i)
		res, err := runMatch(levels, opts, seed)
		if err != nil {
			return fmt.Errorf("match %d: %w", seed, err)
		}
		rec := res.record
		wins[rec.Winner]++
		if repo != nil {
			if err := repo.SaveMatch(rec); err != nil {
				return fmt.Errorf("save match %d: %w", seed, err)
			}
		}
		_ = table.Append([]string{
			fmt.Sprint(seed),
			res.pilot.Name,
			res.enemy.Name,
			fmt.Sprint(res.enemy.Difficulty),
			winnerLabel(rec.Winner),
			fmt.Sprint(rec.Turns),
			fmt.Sprintf("%d / %d", rec.PlayerSurvivors, rec.AISurvivors),
		})
	}
	_ = table.Render()

	fmt.Printf("\nPlayer %s  AI %s  Draw %s\n",
		color.GreenString("%d", wins[0]),
		color.RedString("%d", wins[1]),
		color.YellowString("%d", wins[store.Draw]))

	if repo == nil {
		return nil
	}
	summary, err := repo.Summary()
	if err != nil {
		return err
	}
	titleColor.Printf("\nRecorded matches in %s\n\n", opts.db)
	totals := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Level", "Matches", "Player", "AI", "Draw", "Avg Turns"}),
	)
	for _, s := range summary {
		_ = totals.Append([]string{
			fmt.Sprint(s.Level),
			fmt.Sprint(s.Matches),
			fmt.Sprint(s.PlayerWins),
			fmt.Sprint(s.AIWins),
			fmt.Sprint(s.Draws),
			fmt.Sprintf("%.1f", s.AvgTurns),
		})
	}
	return totals.Render()
}

func winnerLabel(w int) string {
	switch w {
	case 0:
		return color.GreenString("player")
	case 1:
		return color.RedString("ai")
	}
	return color.YellowString("draw")
}
