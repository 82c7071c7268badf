package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/lshigami/Polemos/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgression() service.ProgressionService {
	return service.NewProgressionService(service.DefaultLevels(), 5.0)
}

func TestLevelForThresholdFixtures(t *testing.T) {
	p := newProgression()

	tests := []struct {
		xp      int
		ordinal int
	}{
		{0, 1},
		{49, 1},
		{50, 2},
		{149, 2},
		{150, 3},
		{4999, 10},
		{5000, 11},
		{999999, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ordinal, p.LevelFor(tt.xp).Ordinal, "xp=%d", tt.xp)
	}
}

func TestLevelForIsMonotonicAndBounded(t *testing.T) {
	p := newProgression()

	prev := 0
	for xp := 0; xp <= 6000; xp += 7 {
		lvl := p.LevelFor(xp)
		assert.GreaterOrEqual(t, lvl.Ordinal, prev, "ordinal must never decrease")
		assert.LessOrEqual(t, lvl.Threshold, xp, "threshold must not exceed xp")
		prev = lvl.Ordinal
	}
}

func TestLevelInfoProgress(t *testing.T) {
	p := newProgression()

	info := p.LevelInfo(100)
	assert.Equal(t, 2, info.Ordinal)
	assert.Equal(t, "Apprentice", info.Name)
	require.NotNil(t, info.NextThreshold)
	assert.Equal(t, 150, *info.NextThreshold)
	assert.Equal(t, 50, info.XPIntoLevel)
	assert.Equal(t, 50, info.XPForNext)
	assert.Equal(t, 50.0, info.Percent)

	maxed := p.LevelInfo(999999)
	assert.Equal(t, 11, maxed.Ordinal)
	assert.Nil(t, maxed.NextThreshold)
	assert.Equal(t, 100.0, maxed.Percent)
}

func TestRecomputeXPGatesOnRelevance(t *testing.T) {
	p := newProgression()
	userID := uuid.New()

	answers := []model.Answer{
		*scoredAnswer(userID, "q1", "technology", 8.0, 80),
		*scoredAnswer(userID, "q2", "technology", 3.0, 30), // below the relevance gate
		*withChallenge(scoredAnswer(userID, "q3", "ethics", 7.0, 70), 6.0, 60, testTime()),
	}

	assert.Equal(t, 80+70+60, p.RecomputeXP(answers))
}

func TestRecomputeXPIsIdempotent(t *testing.T) {
	p := newProgression()
	userID := uuid.New()
	answers := []model.Answer{
		*scoredAnswer(userID, "q1", "technology", 8.0, 80),
		*scoredAnswer(userID, "q2", "ethics", 6.0, 60),
	}

	first := p.RecomputeXP(answers)
	second := p.RecomputeXP(answers)
	assert.Equal(t, first, second)
	assert.Equal(t, 140, first)
}

func TestXPForResult(t *testing.T) {
	p := newProgression()

	qualifying := model.RubricScores{Relevance: 7, LogicalStructure: 7, Clarity: 7, Depth: 7, Objectivity: 7, Creativity: 7}
	assert.Equal(t, 70, p.XPForResult(qualifying, qualifying.Mean()))

	irrelevant := model.RubricScores{Relevance: 2, LogicalStructure: 9, Clarity: 9, Depth: 9, Objectivity: 9, Creativity: 9}
	assert.Equal(t, 0, p.XPForResult(irrelevant, irrelevant.Mean()), "relevance below the gate earns nothing")
}
