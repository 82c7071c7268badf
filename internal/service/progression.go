package service

import (
	"math"

	"github.com/lshigami/Polemos/internal/model"
)

// Level is one row of the ordered threshold table.
type Level struct {
	Ordinal   int
	Name      string
	Threshold int
}

// DefaultLevels is the standard progression table. Thresholds are ascending
// and contiguous; the terminal level has no upper bound.
func DefaultLevels() []Level {
	return []Level{
		{1, "Novice", 0},
		{2, "Apprentice", 50},
		{3, "Debater", 150},
		{4, "Contender", 300},
		{5, "Advocate", 500},
		{6, "Rhetorician", 800},
		{7, "Dialectician", 1200},
		{8, "Strategist", 1800},
		{9, "Master Debater", 2500},
		{10, "Grandmaster", 3500},
		{11, "Legend", 5000},
	}
}

// LevelInfo describes a user's position within the level table.
type LevelInfo struct {
	Ordinal          int     `json:"ordinal"`
	Name             string  `json:"name"`
	CurrentThreshold int     `json:"current_threshold"`
	NextThreshold    *int    `json:"next_threshold,omitempty"`
	XPIntoLevel      int     `json:"xp_into_level"`
	XPForNext        int     `json:"xp_for_next"`
	Percent          float64 `json:"percent"`
}

type ProgressionService interface {
	LevelFor(xp int) Level
	LevelInfo(xp int) LevelInfo
	// RecomputeXP derives the user's XP from their full answer history. It is
	// idempotent and tolerant of retroactive history changes (merges).
	RecomputeXP(answers []model.Answer) int
	// XPForResult converts one qualifying evaluation pass into XP. Returns 0
	// when the relevance gate is not met.
	XPForResult(scores model.RubricScores, totalScore float64) int
}

type progressionService struct {
	levels            []Level
	relevanceMinScore float64
}

// NewProgressionService builds the engine over an ascending level table.
// The table is copied once and never mutated.
func NewProgressionService(levels []Level, relevanceMinScore float64) ProgressionService {
	table := make([]Level, len(levels))
	copy(table, levels)
	return &progressionService{levels: table, relevanceMinScore: relevanceMinScore}
}

func (s *progressionService) LevelFor(xp int) Level {
	current := s.levels[0]
	for _, lvl := range s.levels {
		if lvl.Threshold <= xp {
			current = lvl
		} else {
			break
		}
	}
	return current
}

func (s *progressionService) LevelInfo(xp int) LevelInfo {
	current := s.LevelFor(xp)
	info := LevelInfo{
		Ordinal:          current.Ordinal,
		Name:             current.Name,
		CurrentThreshold: current.Threshold,
		XPIntoLevel:      xp - current.Threshold,
	}

	if current.Ordinal >= len(s.levels) {
		// Terminal level: no upper bound, progress pegged at 100.
		info.Percent = 100
		return info
	}

	next := s.levels[current.Ordinal] // ordinals are 1-based
	info.NextThreshold = &next.Threshold
	info.XPForNext = next.Threshold - xp
	span := next.Threshold - current.Threshold
	if span > 0 {
		info.Percent = math.Round(float64(info.XPIntoLevel)/float64(span)*10000) / 100
	}
	return info
}

func (s *progressionService) RecomputeXP(answers []model.Answer) int {
	total := 0
	for _, a := range answers {
		if a.Scores != nil && a.Scores.Relevance >= s.relevanceMinScore {
			total += a.XPEarned
		}
		if a.ChallengeScores != nil && a.ChallengeScores.Relevance >= s.relevanceMinScore {
			total += a.ChallengeXPEarned
		}
	}
	return total
}

func (s *progressionService) XPForResult(scores model.RubricScores, totalScore float64) int {
	if scores.Relevance < s.relevanceMinScore {
		return 0
	}
	return int(math.Round(totalScore * 10))
}
