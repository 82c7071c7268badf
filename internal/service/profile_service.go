package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/Polemos/config"
	"github.com/lshigami/Polemos/internal/dto"
	"github.com/lshigami/Polemos/internal/repository"
)

// ProfileService assembles the user-facing progression snapshot.
type ProfileService interface {
	GetProfile(userID uuid.UUID) (*dto.ProfileResponse, error)
	ListAchievements() ([]dto.AchievementResponse, error)
}

type profileService struct {
	userRepo        repository.UserRepository
	answerRepo      repository.AnswerRepository
	achievementRepo repository.AchievementRepository
	progression     ProgressionService
	guard           GuardService
	cfg             *config.Config
}

func NewProfileService(
	userRepo repository.UserRepository,
	answerRepo repository.AnswerRepository,
	achievementRepo repository.AchievementRepository,
	progression ProgressionService,
	guard GuardService,
	cfg *config.Config,
) ProfileService {
	return &profileService{
		userRepo:        userRepo,
		answerRepo:      answerRepo,
		achievementRepo: achievementRepo,
		progression:     progression,
		guard:           guard,
		cfg:             cfg,
	}
}

func (s *profileService) GetProfile(userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	answers, err := s.answerRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}
	awards, err := s.achievementRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dayStart := StartOfUTCDay(now)
	answerCount, err := s.answerRepo.CountCreatedSince(userID, dayStart)
	if err != nil {
		return nil, err
	}
	challengeCount, err := s.answerRepo.CountChallengesSince(userID, dayStart)
	if err != nil {
		return nil, err
	}

	resp := dto.ProfileResponse{
		ID:                   user.ID,
		Email:                user.Email,
		DisplayName:          user.DisplayName,
		Anonymous:            user.Anonymous,
		Tier:                 user.EffectiveTier(now),
		XP:                   user.XP,
		AnswerCount:          len(answers),
		RemainingEvaluations: s.guard.RemainingEvaluations(user, answerCount, challengeCount, now),
		Achievements:         make([]dto.AchievementResponse, 0, len(awards)),
	}
	if err := copier.Copy(&resp.Level, s.progression.LevelInfo(user.XP)); err != nil {
		return nil, fmt.Errorf("error preparing response: %w", err)
	}

	transcriptionCap := s.cfg.Quotas.DailyTranscriptions[user.EffectiveTier(now)]
	used := user.TranscriptionsToday
	if user.LastTranscriptionAt == nil || !SameUTCDay(*user.LastTranscriptionAt, now) {
		used = 0
	}
	if remaining := transcriptionCap - used; remaining > 0 {
		resp.RemainingTranscriptions = remaining
	}

	for _, award := range awards {
		earned := award.EarnedAt
		resp.Achievements = append(resp.Achievements, dto.AchievementResponse{
			Code:     award.Achievement.Code,
			NameKey:  award.Achievement.NameKey,
			DescKey:  award.Achievement.DescKey,
			Icon:     award.Achievement.Icon,
			EarnedAt: &earned,
		})
	}
	return &resp, nil
}

func (s *profileService) ListAchievements() ([]dto.AchievementResponse, error) {
	achievements, err := s.achievementRepo.FindAll()
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AchievementResponse, 0, len(achievements))
	for _, a := range achievements {
		resp = append(resp, dto.AchievementResponse{
			Code:    a.Code,
			NameKey: a.NameKey,
			DescKey: a.DescKey,
			Icon:    a.Icon,
		})
	}
	return resp, nil
}
