package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/Polemos/config"
	"github.com/lshigami/Polemos/internal/dto"
	"github.com/lshigami/Polemos/internal/repository"
	"github.com/rs/zerolog/log"
)

// ErrTranscriptionUnavailable is returned when no speech backend is wired.
var ErrTranscriptionUnavailable = errors.New("transcription backend not configured")

// Transcriber is the external speech-to-text collaborator. The protocol
// behind it is out of scope here; the quota accounting around it is not.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL, language string) (string, error)
}

// unavailableTranscriber is the default backend when nothing is configured.
type unavailableTranscriber struct{}

func NewUnavailableTranscriber() Transcriber {
	return unavailableTranscriber{}
}

func (unavailableTranscriber) Transcribe(ctx context.Context, audioURL, language string) (string, error) {
	return "", ErrTranscriptionUnavailable
}

// TranscriptionService enforces the per-tier daily voice quota around the
// blocking external call.
type TranscriptionService interface {
	Transcribe(ctx context.Context, userID uuid.UUID, req dto.TranscriptionRequest) (*dto.TranscriptionResponse, error)
}

type transcriptionService struct {
	userRepo    repository.UserRepository
	guard       GuardService
	transcriber Transcriber
	cfg         *config.Config
}

func NewTranscriptionService(
	userRepo repository.UserRepository,
	guard GuardService,
	transcriber Transcriber,
	cfg *config.Config,
) TranscriptionService {
	return &transcriptionService{
		userRepo:    userRepo,
		guard:       guard,
		transcriber: transcriber,
		cfg:         cfg,
	}
}

func (s *transcriptionService) Transcribe(ctx context.Context, userID uuid.UUID, req dto.TranscriptionRequest) (*dto.TranscriptionResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	now := time.Now()
	if err := s.guard.ConsumeTranscription(user, now); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Evaluation.TimeoutSeconds)*time.Second)
	defer cancel()
	text, err := s.transcriber.Transcribe(callCtx, req.AudioURL, req.Language)
	if err != nil {
		// Quota is only charged for successful transcriptions; the counter
		// mutation above was never persisted.
		log.Warn().Err(err).Str("userID", userID.String()).Msg("Transcription failed")
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to persist transcription counter: %w", err)
	}

	cap := s.cfg.Quotas.DailyTranscriptions[user.EffectiveTier(now)]
	remaining := cap - user.TranscriptionsToday
	if remaining < 0 {
		remaining = 0
	}
	return &dto.TranscriptionResponse{Text: text, RemainingToday: remaining}, nil
}
