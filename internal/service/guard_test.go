package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/lshigami/Polemos/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, service.Similarity("same text", "same text"))
	assert.Equal(t, 1.0, service.Similarity("Same  Text", "same text"), "case and spacing are ignored")
	assert.Less(t, service.Similarity("social media is harmful", "universal basic income works"), 0.5)

	near := service.Similarity(
		"social media is harmful to teenagers",
		"social media is harmful to teenagers!",
	)
	assert.Greater(t, near, 0.9)
}

func TestCheckDuplicate(t *testing.T) {
	guard := service.NewGuardService(newTestConfig())
	userID := uuid.New()

	prior := []model.Answer{{
		UserID:   userID,
		Claim:    "Social media platforms cause measurable harm to teenagers.",
		Argument: "Studies link heavy social media use to anxiety and depression among adolescents, and the platforms are engineered for compulsive use.",
	}}

	// Trivial rephrasing of both fields is rejected.
	err := guard.CheckDuplicate(
		"Social media platforms cause measurable harm to teenagers!",
		"Studies link heavy social media use to anxiety and depression among adolescents, and the platforms are engineered for compulsive use!!",
		prior,
	)
	require.ErrorIs(t, err, service.ErrDuplicateSubmission)

	// A substantially different argument passes even with the same claim.
	err = guard.CheckDuplicate(
		"Social media platforms cause measurable harm to teenagers.",
		"The advertising business model rewards outrage, which crowds out civil discourse and distorts democratic deliberation at scale.",
		prior,
	)
	assert.NoError(t, err)

	assert.NoError(t, guard.CheckDuplicate("anything", "anything", nil))
}

func TestCheckDailyLimit(t *testing.T) {
	guard := service.NewGuardService(newTestConfig())
	now := testTime()
	user := &model.User{Tier: model.TierAnonymous} // cap 3

	assert.NoError(t, guard.CheckDailyLimit(user, 2, 0, now))
	assert.ErrorIs(t, guard.CheckDailyLimit(user, 3, 0, now), service.ErrRateLimited)

	// Challenge responses count against the same cap.
	assert.ErrorIs(t, guard.CheckDailyLimit(user, 2, 1, now), service.ErrRateLimited)

	assert.Equal(t, 1, guard.RemainingEvaluations(user, 2, 0, now))
	assert.Equal(t, 0, guard.RemainingEvaluations(user, 5, 2, now))
}

func TestCheckDailyLimitUnknownTierDenied(t *testing.T) {
	guard := service.NewGuardService(newTestConfig())
	user := &model.User{Tier: "smurf"}
	assert.ErrorIs(t, guard.CheckDailyLimit(user, 0, 0, testTime()), service.ErrRateLimited)
}

func TestLapsedSubscriptionFallsBackToFreeCap(t *testing.T) {
	guard := service.NewGuardService(newTestConfig())
	now := testTime()
	expired := now.Add(-24 * time.Hour)
	user := &model.User{Tier: model.TierPro, SubscriptionEnd: &expired}

	// Free cap is 5, pro cap is 50.
	assert.ErrorIs(t, guard.CheckDailyLimit(user, 5, 0, now), service.ErrRateLimited)
}

func TestConsumeTranscriptionQuotaAndRollover(t *testing.T) {
	guard := service.NewGuardService(newTestConfig())
	now := testTime()
	user := &model.User{Tier: model.TierFree} // cap 1

	require.NoError(t, guard.ConsumeTranscription(user, now))
	assert.Equal(t, 1, user.TranscriptionsToday)
	assert.ErrorIs(t, guard.ConsumeTranscription(user, now), service.ErrTranscriptionQuota)

	// A new UTC day resets the counter.
	nextDay := now.Add(24 * time.Hour)
	require.NoError(t, guard.ConsumeTranscription(user, nextDay))
	assert.Equal(t, 1, user.TranscriptionsToday)
}

func TestConsumeTranscriptionAnonymousDenied(t *testing.T) {
	guard := service.NewGuardService(newTestConfig())
	user := &model.User{Tier: model.TierAnonymous} // cap 0
	assert.ErrorIs(t, guard.ConsumeTranscription(user, testTime()), service.ErrTranscriptionQuota)
}

func TestSameUTCDayBoundary(t *testing.T) {
	before := time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)
	after := time.Date(2025, 6, 2, 0, 0, 1, 0, time.UTC)
	assert.False(t, service.SameUTCDay(before, after))
	assert.True(t, service.SameUTCDay(before, before.Add(-23*time.Hour)))
}
