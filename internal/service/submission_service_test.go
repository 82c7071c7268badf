package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lshigami/Polemos/internal/catalog"
	"github.com/lshigami/Polemos/internal/dto"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/lshigami/Polemos/internal/repository"
	"github.com/lshigami/Polemos/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const slugSocialMedia = "technology--social-media-does-more-harm-than-good"
const slugAIGrading = "technology--ai-should-grade-exams"
const slugLying = "ethics--lying-is-sometimes-right"

type failingEvaluator struct{}

func (failingEvaluator) EvaluateAnswer(ctx context.Context, q catalog.Question, sub service.Submission) (*service.EvaluationResult, error) {
	return nil, fmt.Errorf("%w: backend exploded", service.ErrEvaluationFailed)
}

func (failingEvaluator) EvaluateChallenge(ctx context.Context, a *model.Answer, response string) (*service.EvaluationResult, error) {
	return nil, fmt.Errorf("%w: backend exploded", service.ErrEvaluationFailed)
}

func newSubmissionService(t *testing.T, db *gorm.DB, evaluator service.Evaluator) service.SubmissionService {
	t.Helper()
	cfg := newTestConfig()
	cat := newTestCatalog(t)
	achievementRepo := repository.NewAchievementRepository(db)
	return service.NewSubmissionService(
		repository.NewUserRepository(db),
		repository.NewAnswerRepository(db),
		service.NewAchievementService(achievementRepo, cat),
		service.NewGuardService(cfg),
		evaluator,
		service.NewProgressionService(service.DefaultLevels(), cfg.Evaluation.RelevanceMinScore),
		cat,
		cfg,
		db,
	)
}

func submitReq(slug, claim, argument string) dto.SubmitAnswerRequest {
	return dto.SubmitAnswerRequest{
		QuestionSlug: slug,
		Claim:        claim,
		Argument:     argument,
	}
}

func TestSubmitAnswerPersistsAndDerivesXP(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, service.NewDummyEvaluator())
	user := createUser(t, db, model.TierFree, false)

	result, err := svc.SubmitAnswer(context.Background(), user.ID, submitReq(
		slugSocialMedia,
		"Social media does more harm than good.",
		"Engagement-optimized feeds amplify outrage and misinformation, and adolescent mental health has declined in step with adoption.",
	))
	require.NoError(t, err)

	require.NotNil(t, result.Answer.Evaluation.TotalScore)
	assert.NotEmpty(t, result.Answer.ChallengeQuestion)
	assert.Contains(t, result.NewAchievements, service.AchFirstArgument)
	assert.Equal(t, 4, result.RemainingToday, "free cap 5, one evaluation used")

	var stored model.Answer
	require.NoError(t, db.First(&stored, "user_id = ?", user.ID).Error)
	require.NotNil(t, stored.Scores)

	var updated model.User
	require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
	assert.Equal(t, result.XP, updated.XP)
	if stored.Scores.Relevance >= 5.0 {
		assert.Equal(t, stored.XPEarned, updated.XP)
	} else {
		assert.Zero(t, updated.XP)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, service.NewDummyEvaluator())
	user := createUser(t, db, model.TierFree, false)

	_, err := svc.SubmitAnswer(context.Background(), user.ID, submitReq(slugSocialMedia, "  ", "argument"))
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.SubmitAnswer(context.Background(), user.ID, submitReq(slugSocialMedia, "claim", makeText(6000)))
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.SubmitAnswer(context.Background(), user.ID, submitReq("no-such-question", "claim", "argument"))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSubmitAnswerDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, service.NewDummyEvaluator())
	user := createUser(t, db, model.TierFree, false)

	claim := "Social media does more harm than good."
	argument := "Engagement-optimized feeds amplify outrage and misinformation at an unprecedented scale across societies."

	_, err := svc.SubmitAnswer(context.Background(), user.ID, submitReq(slugSocialMedia, claim, argument))
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(context.Background(), user.ID, submitReq(slugSocialMedia, claim, argument+"!"))
	assert.ErrorIs(t, err, service.ErrDuplicateSubmission)

	// Same claim with a genuinely different argument is accepted.
	_, err = svc.SubmitAnswer(context.Background(), user.ID, submitReq(
		slugSocialMedia, claim,
		"Advertising incentives reward attention capture over truth, which corrodes shared epistemic foundations of democracies.",
	))
	assert.NoError(t, err)

	// A near-duplicate on a different question is fine.
	_, err = svc.SubmitAnswer(context.Background(), user.ID, submitReq(slugLying, claim, argument))
	assert.NoError(t, err)
}

func TestSubmitAnswerDailyCap(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, service.NewDummyEvaluator())
	user := createUser(t, db, model.TierAnonymous, true) // cap 3

	submissions := []dto.SubmitAnswerRequest{
		submitReq(slugSocialMedia, "Harmful on balance.", "The mental health evidence is strong and the network effects trap users who would rather leave."),
		submitReq(slugAIGrading, "AI grading is premature.", "Automated graders reward surface features and are gameable, which undermines the validity of high-stakes exams."),
		submitReq(slugLying, "Lying can be right.", "When the only alternative is grave harm to an innocent person, honesty loses its moral priority."),
	}
	for _, req := range submissions {
		_, err := svc.SubmitAnswer(context.Background(), user.ID, req)
		require.NoError(t, err)
	}

	_, err := svc.SubmitAnswer(context.Background(), user.ID, submitReq(
		slugSocialMedia, "A fresh fourth claim.", "A completely different fourth argument that shares nothing with the earlier submissions today."))
	assert.ErrorIs(t, err, service.ErrRateLimited)
}

func TestDailyCapResetsAtUTCMidnight(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, service.NewDummyEvaluator())
	user := createUser(t, db, model.TierAnonymous, true) // cap 3

	// Yesterday the user exhausted the cap: three answers plus a challenge.
	yesterday := time.Now().UTC().Add(-36 * time.Hour)
	for i := 0; i < 3; i++ {
		a := scoredAnswer(user.ID, fmt.Sprintf("old-q%d", i), "technology", 7.0, 70)
		a.CreatedAt = yesterday
		require.NoError(t, db.Create(a).Error)
	}
	stale := withChallenge(scoredAnswer(user.ID, "old-challenge", "ethics", 7.0, 70), 7.0, 70, yesterday)
	stale.CreatedAt = yesterday
	require.NoError(t, db.Create(stale).Error)

	// None of it falls inside today's window.
	answerRepo := repository.NewAnswerRepository(db)
	dayStart := service.StartOfUTCDay(time.Now())
	created, err := answerRepo.CountCreatedSince(user.ID, dayStart)
	require.NoError(t, err)
	assert.Zero(t, created)
	challenges, err := answerRepo.CountChallengesSince(user.ID, dayStart)
	require.NoError(t, err)
	assert.Zero(t, challenges)

	_, err = svc.SubmitAnswer(context.Background(), user.ID, submitReq(
		slugSocialMedia, "A fresh day, a fresh claim.", "Quota windows reset at UTC midnight, so yesterday's submissions must not block this one."))
	assert.NoError(t, err)
}

func TestSubmitAnswerEvaluationFailureLeavesNoState(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, failingEvaluator{})
	user := createUser(t, db, model.TierFree, false)

	_, err := svc.SubmitAnswer(context.Background(), user.ID, submitReq(
		slugSocialMedia, "Some claim.", "Some argument that will never be scored."))
	require.ErrorIs(t, err, service.ErrEvaluationFailed)

	var answerCount int64
	require.NoError(t, db.Model(&model.Answer{}).Where("user_id = ?", user.ID).Count(&answerCount).Error)
	assert.Zero(t, answerCount, "no Answer row on evaluation failure")

	var after model.User
	require.NoError(t, db.First(&after, "id = ?", user.ID).Error)
	assert.Zero(t, after.XP)
}

func TestChallengeRoundExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, service.NewDummyEvaluator())
	user := createUser(t, db, model.TierFree, false)

	result, err := svc.SubmitAnswer(context.Background(), user.ID, submitReq(
		slugSocialMedia,
		"Social media does more harm than good.",
		"Engagement-optimized feeds amplify outrage and misinformation, and the harms fall hardest on adolescents.",
	))
	require.NoError(t, err)
	answerID := result.Answer.ID

	challenged, err := svc.SubmitChallenge(context.Background(), user.ID, answerID, dto.SubmitChallengeRequest{
		Response: "Even granting the connection benefits, the asymmetry of harm justifies my original position.",
	})
	require.NoError(t, err)
	require.NotNil(t, challenged.Answer.ChallengeEvaluation)
	assert.NotNil(t, challenged.Answer.ChallengeResponse)

	_, err = svc.SubmitChallenge(context.Background(), user.ID, answerID, dto.SubmitChallengeRequest{
		Response: "Trying a second bite at the challenge.",
	})
	assert.ErrorIs(t, err, service.ErrChallengeConsumed)
}

func TestChallengeUnavailableWithoutQuestion(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, service.NewDummyEvaluator())
	user := createUser(t, db, model.TierFree, false)

	// An answer whose evaluation produced no challenge question.
	answer := scoredAnswer(user.ID, slugLying, "ethics", 7.0, 70)
	require.NoError(t, db.Create(answer).Error)

	_, err := svc.SubmitChallenge(context.Background(), user.ID, answer.ID, dto.SubmitChallengeRequest{Response: "A response with nothing to respond to."})
	assert.ErrorIs(t, err, service.ErrChallengeUnavailable)
}

func TestChallengeOnForeignAnswerIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, service.NewDummyEvaluator())
	owner := createUser(t, db, model.TierFree, false)
	other := createUser(t, db, model.TierFree, false)

	result, err := svc.SubmitAnswer(context.Background(), owner.ID, submitReq(
		slugSocialMedia, "Harmful on balance.", "The evidence on adolescent wellbeing is consistent across several independent study designs."))
	require.NoError(t, err)

	_, err = svc.SubmitChallenge(context.Background(), other.ID, result.Answer.ID, dto.SubmitChallengeRequest{Response: "Not my answer."})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRandomQuestionSkipsAnswered(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, service.NewDummyEvaluator())
	user := createUser(t, db, model.TierFree, false)

	_, err := svc.SubmitAnswer(context.Background(), user.ID, submitReq(
		slugSocialMedia, "Harmful on balance.", "Engagement optimization has documented costs for civic discourse and personal wellbeing."))
	require.NoError(t, err)

	// The only other technology question must come up now.
	q, err := svc.RandomQuestion(user.ID, "technology", nil)
	require.NoError(t, err)
	assert.Equal(t, slugAIGrading, q.Slug)

	// With both excluded, the picker falls back instead of failing.
	q, err = svc.RandomQuestion(user.ID, "technology", []string{slugAIGrading})
	require.NoError(t, err)
	assert.Equal(t, "technology", q.Category)

	_, err = svc.RandomQuestion(user.ID, "no-such-category", nil)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetHistoryAndGetAnswer(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db, service.NewDummyEvaluator())
	user := createUser(t, db, model.TierFree, false)

	result, err := svc.SubmitAnswer(context.Background(), user.ID, submitReq(
		slugLying, "Lying can be right.", "When honesty would enable grave harm to an innocent person, the duty not to lie is outweighed."))
	require.NoError(t, err)

	history, err := svc.GetHistory(user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, slugLying, history[0].QuestionSlug)

	answer, err := svc.GetAnswer(user.ID, result.Answer.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Answer.ID, answer.ID)

	other := createUser(t, db, model.TierFree, false)
	_, err = svc.GetAnswer(other.ID, result.Answer.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
