package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/lshigami/Polemos/config"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/rs/zerolog/log"
)

// GuardService enforces the anti-gaming rules: per-tier daily evaluation
// caps, near-duplicate rejection and the voice transcription quota.
type GuardService interface {
	// CheckDailyLimit rejects once today's evaluation count (answers plus
	// challenge responses, UTC day boundary) has reached the tier cap.
	CheckDailyLimit(user *model.User, answerCount, challengeCount int64, now time.Time) error
	// RemainingEvaluations reports today's leftover quota, floored at zero.
	RemainingEvaluations(user *model.User, answerCount, challengeCount int64, now time.Time) int
	// CheckDuplicate rejects a submission whose claim AND argument are both
	// too similar to any prior answer on the same question.
	CheckDuplicate(claim, argument string, prior []model.Answer) error
	// ConsumeTranscription charges one voice transcription against the daily
	// quota, resetting the counter on UTC day rollover. Mutates user counters
	// but does not persist them.
	ConsumeTranscription(user *model.User, now time.Time) error
}

type guardService struct {
	quotas              config.Quotas
	similarityThreshold float64
}

func NewGuardService(cfg *config.Config) GuardService {
	return &guardService{
		quotas:              cfg.Quotas,
		similarityThreshold: cfg.Evaluation.SimilarityThreshold,
	}
}

func (g *guardService) dailyCap(user *model.User, now time.Time) int {
	cap, ok := g.quotas.DailyEvaluations[user.EffectiveTier(now)]
	if !ok {
		log.Warn().Str("tier", user.Tier).Msg("No daily evaluation cap configured for tier, denying")
		return 0
	}
	return cap
}

func (g *guardService) CheckDailyLimit(user *model.User, answerCount, challengeCount int64, now time.Time) error {
	cap := g.dailyCap(user, now)
	used := answerCount + challengeCount
	if used >= int64(cap) {
		return fmt.Errorf("%w: %d of %d evaluations used today", ErrRateLimited, used, cap)
	}
	return nil
}

func (g *guardService) RemainingEvaluations(user *model.User, answerCount, challengeCount int64, now time.Time) int {
	remaining := g.dailyCap(user, now) - int(answerCount+challengeCount)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (g *guardService) CheckDuplicate(claim, argument string, prior []model.Answer) error {
	for _, prev := range prior {
		claimSim := Similarity(claim, prev.Claim)
		argSim := Similarity(argument, prev.Argument)
		if claimSim > g.similarityThreshold && argSim > g.similarityThreshold {
			log.Info().
				Uint("priorAnswerID", prev.ID).
				Float64("claimSimilarity", claimSim).
				Float64("argumentSimilarity", argSim).
				Msg("Duplicate submission rejected")
			return fmt.Errorf("%w: %.0f%% similar to answer %d", ErrDuplicateSubmission, argSim*100, prev.ID)
		}
	}
	return nil
}

func (g *guardService) ConsumeTranscription(user *model.User, now time.Time) error {
	cap, ok := g.quotas.DailyTranscriptions[user.EffectiveTier(now)]
	if !ok {
		cap = 0
	}

	// Counter resets when the last transcription fell on an earlier UTC day.
	if user.LastTranscriptionAt == nil || !SameUTCDay(*user.LastTranscriptionAt, now) {
		user.TranscriptionsToday = 0
	}
	if user.TranscriptionsToday >= cap {
		return fmt.Errorf("%w: %d of %d transcriptions used today", ErrTranscriptionQuota, user.TranscriptionsToday, cap)
	}
	user.TranscriptionsToday++
	t := now
	user.LastTranscriptionAt = &t
	return nil
}

// Similarity is the normalized edit similarity of two strings in [0,1]:
// 1 - levenshtein distance / longer length, case- and whitespace-insensitive.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.Join(strings.Fields(a), " "))
	b = strings.ToLower(strings.Join(strings.Fields(b), " "))
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// SameUTCDay reports whether two instants fall on the same UTC calendar day.
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// StartOfUTCDay truncates an instant to the UTC midnight boundary that daily
// quotas reset on.
func StartOfUTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
