// Package store keeps the results of headless matches.
package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nstehr/skirmish/model"
)

// Draw is the winner recorded when a match hits its turn cap.
const Draw = -1

// MatchRecord is one simulated match.
type MatchRecord struct {
	gorm.Model
	Seed            int64 `gorm:"index"`
	Level           int   `gorm:"index"`
	Difficulty      int
	PlayerStrategy  string
	AIStrategy      string `gorm:"column:ai_strategy"`
	Winner          int
	Turns           int
	PlayerSurvivors int
	AISurvivors     int `gorm:"column:ai_survivors"`
	FinalSnapshot   string
}

// LevelSummary aggregates the matches played on one level.
type LevelSummary struct {
	Level      int
	Matches    int
	PlayerWins int
	AIWins     int `gorm:"column:ai_wins"`
	Draws      int
	AvgTurns   float64
}

type Repository interface {
	SaveMatch(m *MatchRecord) error
	Matches(level int) ([]MatchRecord, error)
	Summary() ([]LevelSummary, error)
}

// OpenAndMigrate opens the sqlite database at dsn and brings the schema up
// to date. ":memory:" gives a throwaway database.
func OpenAndMigrate(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite has a single writer, and each ":memory:" connection is its own database.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&MatchRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) SaveMatch(m *MatchRecord) error {
	return r.db.Create(m).Error
}

// Matches lists the matches for a level in insertion order; level 0 lists
// every match.
func (r *sqliteRepository) Matches(level int) ([]MatchRecord, error) {
	q := r.db.Order("id")
	if level > 0 {
		q = q.Where("level = ?", level)
	}
	var out []MatchRecord
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sqliteRepository) Summary() ([]LevelSummary, error) {
	var out []LevelSummary
	err := r.db.Model(&MatchRecord{}).
		Select(`level,
			count(*) as matches,
			sum(case when winner = 0 then 1 else 0 end) as player_wins,
			sum(case when winner = 1 then 1 else 0 end) as ai_wins,
			sum(case when winner = -1 then 1 else 0 end) as draws,
			avg(turns) as avg_turns`).
		Group("level").
		Order("level").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NewMatchRecord fills a record from the final state of a match.
func NewMatchRecord(seed int64, difficulty int, playerStrategy, aiStrategy string, winner int, final model.Snapshot) (*MatchRecord, error) {
	raw, err := json.Marshal(final)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	m := &MatchRecord{
		Seed:           seed,
		Level:          final.CurrentLevel,
		Difficulty:     difficulty,
		PlayerStrategy: playerStrategy,
		AIStrategy:     aiStrategy,
		Winner:         winner,
		Turns:          final.TurnCount,
		FinalSnapshot:  string(raw),
	}
	for _, u := range final.Units {
		if u.Player == model.PlayerSide {
			m.PlayerSurvivors++
		} else {
			m.AISurvivors++
		}
	}
	return m, nil
}

// Snapshot decodes the stored final state.
func (m *MatchRecord) Snapshot() (model.Snapshot, error) {
	var s model.Snapshot
	if err := json.Unmarshal([]byte(m.FinalSnapshot), &s); err != nil {
		return model.Snapshot{}, fmt.Errorf("match %d snapshot: %w", m.ID, err)
	}
	return s, nil
}
