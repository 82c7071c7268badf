package service

import (
	"github.com/lshigami/Polemos/internal/catalog"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/lshigami/Polemos/internal/repository"
	"github.com/rs/zerolog/log"
)

// Achievement codes. The catalog rows are seeded at migration time from
// AchievementCatalog.
const (
	AchFirstArgument     = "first_argument"
	AchVoicePioneer      = "voice_pioneer"
	AchExceptionalRating = "exceptional_rating"
	AchMasterOfAll       = "master_of_all"
	AchWordsmith         = "wordsmith"
	AchConciseMaster     = "concise_master"
	AchMilestone10       = "milestone_10"
	AchMilestone25       = "milestone_25"
	AchMilestone50       = "milestone_50"
	AchMilestone100      = "milestone_100"
	AchFirstChallenge    = "first_challenge"
	AchChallenge10       = "challenge_10"
	AchChallenge100      = "challenge_100"
	AchVoice10           = "voice_10"
	AchCategoryExplorer  = "category_explorer"
)

// Rule tuning constants.
const (
	exceptionalScore   = 9.0
	masterDimension    = 9.0
	styleMinScore      = 7.5
	wordsmithMinChars  = 900
	conciseMaxChars    = 200
	qualifyingMinScore = 5.0
)

// AchievementCatalog returns the static badge definitions.
func AchievementCatalog() []model.Achievement {
	return []model.Achievement{
		{Code: AchFirstArgument, NameKey: "achievement.first_argument.name", DescKey: "achievement.first_argument.desc", Icon: "🗣️"},
		{Code: AchVoicePioneer, NameKey: "achievement.voice_pioneer.name", DescKey: "achievement.voice_pioneer.desc", Icon: "🎤"},
		{Code: AchExceptionalRating, NameKey: "achievement.exceptional_rating.name", DescKey: "achievement.exceptional_rating.desc", Icon: "🌟"},
		{Code: AchMasterOfAll, NameKey: "achievement.master_of_all.name", DescKey: "achievement.master_of_all.desc", Icon: "👑"},
		{Code: AchWordsmith, NameKey: "achievement.wordsmith.name", DescKey: "achievement.wordsmith.desc", Icon: "📜"},
		{Code: AchConciseMaster, NameKey: "achievement.concise_master.name", DescKey: "achievement.concise_master.desc", Icon: "🎯"},
		{Code: AchMilestone10, NameKey: "achievement.milestone_10.name", DescKey: "achievement.milestone_10.desc", Icon: "🥉"},
		{Code: AchMilestone25, NameKey: "achievement.milestone_25.name", DescKey: "achievement.milestone_25.desc", Icon: "🥈"},
		{Code: AchMilestone50, NameKey: "achievement.milestone_50.name", DescKey: "achievement.milestone_50.desc", Icon: "🥇"},
		{Code: AchMilestone100, NameKey: "achievement.milestone_100.name", DescKey: "achievement.milestone_100.desc", Icon: "🏆"},
		{Code: AchFirstChallenge, NameKey: "achievement.first_challenge.name", DescKey: "achievement.first_challenge.desc", Icon: "⚔️"},
		{Code: AchChallenge10, NameKey: "achievement.challenge_10.name", DescKey: "achievement.challenge_10.desc", Icon: "🛡️"},
		{Code: AchChallenge100, NameKey: "achievement.challenge_100.name", DescKey: "achievement.challenge_100.desc", Icon: "🐉"},
		{Code: AchVoice10, NameKey: "achievement.voice_10.name", DescKey: "achievement.voice_10.desc", Icon: "📢"},
		{Code: AchCategoryExplorer, NameKey: "achievement.category_explorer.name", DescKey: "achievement.category_explorer.desc", Icon: "🧭"},
	}
}

// AchievementService evaluates the rule set against a user's answer history
// after each scored submission. Every rule is independently idempotent: an
// already-held badge is never re-granted.
type AchievementService interface {
	CheckAndAward(user *model.User, answers []model.Answer) ([]string, error)
}

type achievementService struct {
	repo    repository.AchievementRepository
	catalog *catalog.Catalog
}

func NewAchievementService(repo repository.AchievementRepository, cat *catalog.Catalog) AchievementService {
	return &achievementService{repo: repo, catalog: cat}
}

// historyStats is the snapshot the rules run over.
type historyStats struct {
	total          int
	qualifying     int
	challenges     int
	voice          int
	categories     map[string]bool
	bestTotal      float64
	anyMasterOfAll bool
	anyWordsmith   bool
	anyConcise     bool
	anyVoice       bool
}

func summarize(answers []model.Answer) historyStats {
	stats := historyStats{categories: make(map[string]bool)}
	for _, a := range answers {
		stats.total++
		stats.categories[a.Category] = true
		if a.VoiceInput {
			stats.voice++
			stats.anyVoice = true
		}
		if a.HasChallengeResponse() {
			stats.challenges++
		}
		if a.TotalScore == nil {
			continue
		}
		total := *a.TotalScore
		if total >= qualifyingMinScore {
			stats.qualifying++
		}
		if total > stats.bestTotal {
			stats.bestTotal = total
		}
		if a.Scores != nil && a.Scores.Min() >= masterDimension {
			stats.anyMasterOfAll = true
		}
		if total >= styleMinScore {
			if len(a.Argument) > wordsmithMinChars {
				stats.anyWordsmith = true
			}
			if len(a.Argument) < conciseMaxChars {
				stats.anyConcise = true
			}
		}
	}
	return stats
}

func (s *achievementService) CheckAndAward(user *model.User, answers []model.Answer) ([]string, error) {
	held, err := s.repo.FindCodesByUser(user.ID)
	if err != nil {
		return nil, err
	}
	stats := summarize(answers)

	rules := []struct {
		code string
		met  bool
	}{
		{AchFirstArgument, stats.total >= 1},
		{AchVoicePioneer, stats.anyVoice},
		{AchExceptionalRating, stats.bestTotal >= exceptionalScore},
		{AchMasterOfAll, stats.anyMasterOfAll},
		{AchWordsmith, stats.anyWordsmith},
		{AchConciseMaster, stats.anyConcise},
		{AchMilestone10, stats.qualifying >= 10},
		{AchMilestone25, stats.qualifying >= 25},
		{AchMilestone50, stats.qualifying >= 50},
		{AchMilestone100, stats.qualifying >= 100},
		{AchFirstChallenge, stats.challenges >= 1},
		{AchChallenge10, stats.challenges >= 10},
		{AchChallenge100, stats.challenges >= 100},
		{AchVoice10, stats.voice >= 10},
		{AchCategoryExplorer, s.catalog.CategoryCount() > 0 && len(stats.categories) >= s.catalog.CategoryCount()},
	}

	var awarded []string
	for _, rule := range rules {
		if !rule.met || held[rule.code] {
			continue
		}
		achievement, err := s.repo.FindByCode(rule.code)
		if err != nil {
			log.Error().Err(err).Str("code", rule.code).Msg("Achievement missing from catalog, skipping award")
			continue
		}
		if err := s.repo.Award(user.ID, achievement.ID); err != nil {
			return awarded, err
		}
		awarded = append(awarded, rule.code)
		log.Info().Str("userID", user.ID.String()).Str("code", rule.code).Msg("Achievement awarded")
	}
	return awarded, nil
}
