package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lshigami/Polemos/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MergeService folds an anonymous session-scoped user into an authenticated
// account on signup or login. The whole merge is one transaction: either the
// history moves, the XP reconciles and the anonymous row disappears, or
// nothing changes.
type MergeService interface {
	Merge(anonID, targetID uuid.UUID) error
}

type mergeService struct {
	userRepo        repository.UserRepository
	answerRepo      repository.AnswerRepository
	achievementRepo repository.AchievementRepository
	visitRepo       repository.VisitRepository
	progression     ProgressionService
	db              *gorm.DB
}

func NewMergeService(
	userRepo repository.UserRepository,
	answerRepo repository.AnswerRepository,
	achievementRepo repository.AchievementRepository,
	visitRepo repository.VisitRepository,
	progression ProgressionService,
	db *gorm.DB,
) MergeService {
	return &mergeService{
		userRepo:        userRepo,
		answerRepo:      answerRepo,
		achievementRepo: achievementRepo,
		visitRepo:       visitRepo,
		progression:     progression,
		db:              db,
	}
}

func (s *mergeService) Merge(anonID, targetID uuid.UUID) error {
	if anonID == targetID {
		// Already-linked account: must no-op, never double-count.
		return nil
	}

	anon, err := s.userRepo.FindByID(anonID)
	if err != nil {
		log.Debug().Str("anonID", anonID.String()).Msg("Merge skipped: pending identity not found")
		return nil
	}
	if !anon.Anonymous {
		log.Warn().Str("anonID", anonID.String()).Msg("Merge skipped: source user is not anonymous")
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		answerRepo := s.answerRepo.WithTx(tx)

		target, err := userRepo.FindByID(targetID)
		if err != nil {
			return fmt.Errorf("merge target %s not found: %w", targetID, err)
		}

		if err := answerRepo.ReassignUser(anon.ID, target.ID); err != nil {
			return fmt.Errorf("failed to reassign answers: %w", err)
		}
		if err := s.visitRepo.WithTx(tx).ReassignUser(anon.ID, target.ID); err != nil {
			return fmt.Errorf("failed to reassign visits: %w", err)
		}

		// Achievements earned while anonymous carry over. Award is a no-op for
		// codes the target already holds; the source rows are removed so the
		// user hard-delete leaves nothing dangling.
		achievementRepo := s.achievementRepo.WithTx(tx)
		awards, err := achievementRepo.FindAllByUser(anon.ID)
		if err != nil {
			return fmt.Errorf("failed to load anonymous achievements: %w", err)
		}
		for _, award := range awards {
			if err := achievementRepo.Award(target.ID, award.AchievementID); err != nil {
				return fmt.Errorf("failed to carry over achievement: %w", err)
			}
		}
		if err := achievementRepo.DeleteByUser(anon.ID); err != nil {
			return fmt.Errorf("failed to remove anonymous achievements: %w", err)
		}

		// XP is derived, so after the history moved a recompute yields the
		// merged value (anon XP + target XP) without double counting.
		answers, err := answerRepo.FindAllByUser(target.ID)
		if err != nil {
			return fmt.Errorf("failed to load merged history: %w", err)
		}
		target.XP = s.progression.RecomputeXP(answers)

		if err := userRepo.Update(target); err != nil {
			return fmt.Errorf("failed to update merge target: %w", err)
		}
		if err := userRepo.HardDelete(anon.ID); err != nil {
			return fmt.Errorf("failed to remove anonymous user: %w", err)
		}

		log.Info().
			Str("anonID", anon.ID.String()).
			Str("targetID", target.ID.String()).
			Int("mergedXP", target.XP).
			Int("answers", len(answers)).
			Msg("Anonymous account merged")
		return nil
	})
}
