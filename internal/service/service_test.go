package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/Polemos/config"
	"github.com/lshigami/Polemos/internal/catalog"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/lshigami/Polemos/internal/repository"
	"github.com/lshigami/Polemos/internal/service"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testCatalogYAML = `
categories:
  - name: technology
    questions:
      - title: Social media does more harm than good
        prompt: Do social media platforms do more harm than good?
      - title: AI should grade exams
        prompt: Should AI systems grade high-stakes exams?
  - name: ethics
    questions:
      - title: Lying is sometimes right
        prompt: Is lying sometimes the morally right thing to do?
`

func testTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Answer{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.Visit{},
	))
	require.NoError(t, repository.NewAchievementRepository(db).UpsertCatalog(service.AchievementCatalog()))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Evaluation: config.Evaluation{
			TimeoutSeconds:      5,
			SimilarityThreshold: 0.85,
			RelevanceMinScore:   5.0,
			MaxClaimLength:      500,
			MaxArgumentLength:   5000,
		},
		Quotas: config.Quotas{
			DailyEvaluations: map[string]int{
				"anonymous": 3,
				"free":      5,
				"plus":      20,
				"pro":       50,
			},
			DailyTranscriptions: map[string]int{
				"anonymous": 0,
				"free":      1,
				"plus":      10,
				"pro":       30,
			},
		},
	}
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalogYAML))
	require.NoError(t, err)
	return cat
}

func createUser(t *testing.T, db *gorm.DB, tier string, anonymous bool) *model.User {
	t.Helper()
	user := &model.User{
		ID:          uuid.New(),
		Tier:        tier,
		Anonymous:   anonymous,
		DisplayName: "Tester",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// scoredAnswer builds a persisted answer with a uniform rubric score and the
// XP that score would have earned.
func scoredAnswer(userID uuid.UUID, slug, category string, score float64, xp int) *model.Answer {
	scores := &model.RubricScores{
		Relevance: score, LogicalStructure: score, Clarity: score,
		Depth: score, Objectivity: score, Creativity: score,
	}
	total := scores.Mean()
	return &model.Answer{
		UserID:       userID,
		QuestionSlug: slug,
		QuestionText: "prompt for " + slug,
		Category:     category,
		Claim:        "claim for " + slug,
		Argument:     "argument for " + slug,
		Scores:       scores,
		TotalScore:   &total,
		XPEarned:     xp,
	}
}

func withChallenge(a *model.Answer, score float64, xp int, at time.Time) *model.Answer {
	response := "challenge response"
	scores := &model.RubricScores{
		Relevance: score, LogicalStructure: score, Clarity: score,
		Depth: score, Objectivity: score, Creativity: score,
	}
	total := scores.Mean()
	a.ChallengeQuestion = "what about the strongest objection?"
	a.ChallengeResponse = &response
	a.ChallengeScores = scores
	a.ChallengeTotalScore = &total
	a.ChallengeXPEarned = xp
	a.ChallengeSubmittedAt = &at
	return a
}
