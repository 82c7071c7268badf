package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/Polemos/config"
	"github.com/lshigami/Polemos/internal/catalog"
	"github.com/lshigami/Polemos/internal/dto"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/lshigami/Polemos/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SubmissionService orchestrates the evaluation pipeline: validation, the
// anti-abuse guard, the external evaluation call, the transactional write,
// XP recomputation and achievement checks.
type SubmissionService interface {
	SubmitAnswer(ctx context.Context, userID uuid.UUID, req dto.SubmitAnswerRequest) (*dto.SubmissionResultResponse, error)
	SubmitChallenge(ctx context.Context, userID uuid.UUID, answerID uint, req dto.SubmitChallengeRequest) (*dto.SubmissionResultResponse, error)
	GetAnswer(userID uuid.UUID, answerID uint) (*dto.AnswerResponse, error)
	GetHistory(userID uuid.UUID) ([]dto.AnswerResponse, error)
	RandomQuestion(userID uuid.UUID, category string, exclude []string) (*dto.QuestionResponse, error)
}

type submissionService struct {
	userRepo     repository.UserRepository
	answerRepo   repository.AnswerRepository
	achievements AchievementService
	guard        GuardService
	evaluator    Evaluator
	progression  ProgressionService
	catalog      *catalog.Catalog
	cfg          *config.Config
	db           *gorm.DB
}

func NewSubmissionService(
	userRepo repository.UserRepository,
	answerRepo repository.AnswerRepository,
	achievements AchievementService,
	guard GuardService,
	evaluator Evaluator,
	progression ProgressionService,
	cat *catalog.Catalog,
	cfg *config.Config,
	db *gorm.DB,
) SubmissionService {
	return &submissionService{
		userRepo:     userRepo,
		answerRepo:   answerRepo,
		achievements: achievements,
		guard:        guard,
		evaluator:    evaluator,
		progression:  progression,
		catalog:      cat,
		cfg:          cfg,
		db:           db,
	}
}

func (s *submissionService) validateSubmission(claim, argument string) error {
	claim = strings.TrimSpace(claim)
	argument = strings.TrimSpace(argument)
	if claim == "" || argument == "" {
		return fmt.Errorf("%w: claim and argument must not be empty", ErrValidation)
	}
	if len(claim) > s.cfg.Evaluation.MaxClaimLength {
		return fmt.Errorf("%w: claim exceeds %d characters", ErrValidation, s.cfg.Evaluation.MaxClaimLength)
	}
	if len(argument) > s.cfg.Evaluation.MaxArgumentLength {
		return fmt.Errorf("%w: argument exceeds %d characters", ErrValidation, s.cfg.Evaluation.MaxArgumentLength)
	}
	return nil
}

func (s *submissionService) dailyCounts(userID uuid.UUID, now time.Time) (int64, int64, error) {
	dayStart := StartOfUTCDay(now)
	answers, err := s.answerRepo.CountCreatedSince(userID, dayStart)
	if err != nil {
		return 0, 0, err
	}
	challenges, err := s.answerRepo.CountChallengesSince(userID, dayStart)
	if err != nil {
		return 0, 0, err
	}
	return answers, challenges, nil
}

// SubmitAnswer runs the full pipeline for an initial submission. No Answer
// row exists until the evaluation has succeeded; XP and achievements are
// derived only after the row is committed.
func (s *submissionService) SubmitAnswer(ctx context.Context, userID uuid.UUID, req dto.SubmitAnswerRequest) (*dto.SubmissionResultResponse, error) {
	if err := s.validateSubmission(req.Claim, req.Argument); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	question, ok := s.catalog.Question(req.QuestionSlug)
	if !ok {
		return nil, fmt.Errorf("%w: question %q", ErrNotFound, req.QuestionSlug)
	}

	now := time.Now()
	answerCount, challengeCount, err := s.dailyCounts(userID, now)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckDailyLimit(user, answerCount, challengeCount, now); err != nil {
		return nil, err
	}

	prior, err := s.answerRepo.FindByUserAndQuestion(userID, question.Slug)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckDuplicate(req.Claim, req.Argument, prior); err != nil {
		return nil, err
	}

	evalCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Evaluation.TimeoutSeconds)*time.Second)
	defer cancel()
	result, err := s.evaluator.EvaluateAnswer(evalCtx, question, Submission{
		Claim:           req.Claim,
		Argument:        req.Argument,
		CounterArgument: req.CounterArgument,
	})
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Str("question", question.Slug).Msg("Evaluation failed, nothing persisted")
		return nil, err
	}

	answer := model.Answer{
		UserID:            userID,
		QuestionSlug:      question.Slug,
		QuestionText:      question.Prompt,
		Category:          question.Category,
		Claim:             req.Claim,
		Argument:          req.Argument,
		CounterArgument:   req.CounterArgument,
		VoiceInput:        req.VoiceInput,
		Scores:            &result.Scores,
		Explanations:      result.Explanations,
		TotalScore:        &result.TotalScore,
		OverallFeedback:   result.Feedback,
		ChallengeQuestion: result.ChallengeQuestion,
		ArgumentStructure: result.ArgumentStructure,
		XPEarned:          s.progression.XPForResult(result.Scores, result.TotalScore),
	}

	if err := s.commitAndRecompute(user, func(answerRepo repository.AnswerRepository) error {
		return answerRepo.Create(&answer)
	}); err != nil {
		return nil, err
	}

	return s.buildResult(user, &answer, answerCount+1, challengeCount, now)
}

// SubmitChallenge runs the single challenge round of an existing answer.
func (s *submissionService) SubmitChallenge(ctx context.Context, userID uuid.UUID, answerID uint, req dto.SubmitChallengeRequest) (*dto.SubmissionResultResponse, error) {
	response := strings.TrimSpace(req.Response)
	if response == "" {
		return nil, fmt.Errorf("%w: challenge response must not be empty", ErrValidation)
	}
	if len(response) > s.cfg.Evaluation.MaxArgumentLength {
		return nil, fmt.Errorf("%w: response exceeds %d characters", ErrValidation, s.cfg.Evaluation.MaxArgumentLength)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	answer, err := s.answerRepo.FindByID(answerID)
	if err != nil || answer.UserID != userID {
		return nil, fmt.Errorf("%w: answer %d", ErrNotFound, answerID)
	}
	if answer.ChallengeQuestion == "" {
		return nil, ErrChallengeUnavailable
	}
	if answer.HasChallengeResponse() {
		return nil, ErrChallengeConsumed
	}

	now := time.Now()
	answerCount, challengeCount, err := s.dailyCounts(userID, now)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckDailyLimit(user, answerCount, challengeCount, now); err != nil {
		return nil, err
	}

	evalCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Evaluation.TimeoutSeconds)*time.Second)
	defer cancel()
	result, err := s.evaluator.EvaluateChallenge(evalCtx, answer, response)
	if err != nil {
		log.Error().Err(err).Uint("answerID", answerID).Msg("Challenge evaluation failed, nothing persisted")
		return nil, err
	}

	answer.ChallengeResponse = &response
	answer.ChallengeScores = &result.Scores
	answer.ChallengeExplanations = result.Explanations
	answer.ChallengeTotalScore = &result.TotalScore
	answer.ChallengeFeedback = result.Feedback
	answer.ChallengeXPEarned = s.progression.XPForResult(result.Scores, result.TotalScore)
	answer.ChallengeSubmittedAt = &now

	if err := s.commitAndRecompute(user, func(answerRepo repository.AnswerRepository) error {
		return answerRepo.Update(answer)
	}); err != nil {
		return nil, err
	}

	return s.buildResult(user, answer, answerCount, challengeCount+1, now)
}

// commitAndRecompute writes the answer and the re-derived XP in one
// transaction, so a failed write never leaves the two out of sync.
func (s *submissionService) commitAndRecompute(user *model.User, write func(repository.AnswerRepository) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		answerRepo := s.answerRepo.WithTx(tx)
		if err := write(answerRepo); err != nil {
			return fmt.Errorf("failed to persist answer: %w", err)
		}
		history, err := answerRepo.FindAllByUser(user.ID)
		if err != nil {
			return err
		}
		user.XP = s.progression.RecomputeXP(history)
		return s.userRepo.WithTx(tx).Update(user)
	})
}

func (s *submissionService) buildResult(user *model.User, answer *model.Answer, answerCount, challengeCount int64, now time.Time) (*dto.SubmissionResultResponse, error) {
	// Achievements run after the commit; awards are idempotent, so a crash
	// between commit and here only defers badges to the next submission.
	history, err := s.answerRepo.FindAllByUser(user.ID)
	if err != nil {
		return nil, err
	}
	newAchievements, err := s.achievements.CheckAndAward(user, history)
	if err != nil {
		log.Error().Err(err).Str("userID", user.ID.String()).Msg("Achievement check failed after submission")
	}

	answerResp, err := toAnswerResponse(answer)
	if err != nil {
		return nil, err
	}
	resp := dto.SubmissionResultResponse{
		Answer:          answerResp,
		XP:              user.XP,
		NewAchievements: newAchievements,
		RemainingToday:  s.guard.RemainingEvaluations(user, answerCount, challengeCount, now),
	}
	if err := copier.Copy(&resp.Level, s.progression.LevelInfo(user.XP)); err != nil {
		return nil, fmt.Errorf("error preparing response: %w", err)
	}
	return &resp, nil
}

func (s *submissionService) GetAnswer(userID uuid.UUID, answerID uint) (*dto.AnswerResponse, error) {
	answer, err := s.answerRepo.FindByID(answerID)
	if err != nil || answer.UserID != userID {
		return nil, fmt.Errorf("%w: answer %d", ErrNotFound, answerID)
	}
	resp, err := toAnswerResponse(answer)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *submissionService) GetHistory(userID uuid.UUID) ([]dto.AnswerResponse, error) {
	answers, err := s.answerRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AnswerResponse, len(answers))
	for i := range answers {
		resp[i], err = toAnswerResponse(&answers[i])
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// RandomQuestion picks an unseen prompt: seen = every question the user has
// answered, plus the explicit exclude list from the client.
func (s *submissionService) RandomQuestion(userID uuid.UUID, category string, exclude []string) (*dto.QuestionResponse, error) {
	seen := make(map[string]bool, len(exclude))
	for _, slug := range exclude {
		seen[slug] = true
	}
	answers, err := s.answerRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		seen[a.QuestionSlug] = true
	}

	question, err := s.catalog.Random(category, seen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var resp dto.QuestionResponse
	if err := copier.Copy(&resp, &question); err != nil {
		return nil, fmt.Errorf("error preparing response: %w", err)
	}
	return &resp, nil
}

func toAnswerResponse(answer *model.Answer) (dto.AnswerResponse, error) {
	resp := dto.AnswerResponse{}
	if err := copier.Copy(&resp, answer); err != nil {
		return resp, fmt.Errorf("error preparing response: %w", err)
	}
	resp.Evaluation = dto.EvaluationDTO{
		Scores:       answer.Scores,
		Explanations: answer.Explanations,
		TotalScore:   answer.TotalScore,
		Feedback:     answer.OverallFeedback,
		XPEarned:     answer.XPEarned,
	}
	if answer.HasChallengeResponse() {
		resp.ChallengeEvaluation = &dto.EvaluationDTO{
			Scores:       answer.ChallengeScores,
			Explanations: answer.ChallengeExplanations,
			TotalScore:   answer.ChallengeTotalScore,
			Feedback:     answer.ChallengeFeedback,
			XPEarned:     answer.ChallengeXPEarned,
		}
	}
	return resp, nil
}
