package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/Polemos/internal/model"
)

type ErrorResponse struct {
	Error string `json:"error"`
	// Remaining is set on rate-limit rejections so clients can show quota.
	Remaining *int `json:"remaining,omitempty"`
}

type QuestionResponse struct {
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Prompt   string `json:"prompt"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// EvaluationDTO is one scored pass (initial answer or challenge round).
type EvaluationDTO struct {
	Scores       *model.RubricScores `json:"scores,omitempty"`
	Explanations map[string]string   `json:"explanations,omitempty"`
	TotalScore   *float64            `json:"total_score,omitempty"`
	Feedback     string              `json:"feedback,omitempty"`
	XPEarned     int                 `json:"xp_earned"`
}

type AnswerResponse struct {
	ID              uint   `json:"id"`
	QuestionSlug    string `json:"question_slug"`
	QuestionText    string `json:"question_text"`
	Category        string `json:"category"`
	Claim           string `json:"claim"`
	Argument        string `json:"argument"`
	CounterArgument string `json:"counter_argument,omitempty"`
	VoiceInput      bool   `json:"voice_input"`

	Evaluation        EvaluationDTO        `json:"evaluation"`
	ChallengeQuestion string               `json:"challenge_question,omitempty"`
	ArgumentStructure *model.ArgumentGraph `json:"argument_structure,omitempty"`

	ChallengeResponse   *string        `json:"challenge_response,omitempty"`
	ChallengeEvaluation *EvaluationDTO `json:"challenge_evaluation,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SubmissionResultResponse is returned from both submission endpoints: the
// scored answer plus the progression effects of this write.
type SubmissionResultResponse struct {
	Answer          AnswerResponse `json:"answer"`
	XP              int            `json:"xp"`
	Level           LevelInfoDTO   `json:"level"`
	NewAchievements []string       `json:"new_achievements,omitempty"`
	RemainingToday  int            `json:"remaining_today"`
}

type LevelInfoDTO struct {
	Ordinal          int     `json:"ordinal"`
	Name             string  `json:"name"`
	CurrentThreshold int     `json:"current_threshold"`
	NextThreshold    *int    `json:"next_threshold,omitempty"`
	XPIntoLevel      int     `json:"xp_into_level"`
	XPForNext        int     `json:"xp_for_next"`
	Percent          float64 `json:"percent"`
}

type AchievementResponse struct {
	Code     string     `json:"code"`
	NameKey  string     `json:"name_key"`
	DescKey  string     `json:"desc_key"`
	Icon     string     `json:"icon"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

type ProfileResponse struct {
	ID                      uuid.UUID             `json:"id"`
	Email                   *string               `json:"email,omitempty"`
	DisplayName             string                `json:"display_name"`
	Anonymous               bool                  `json:"anonymous"`
	Tier                    string                `json:"tier"`
	XP                      int                   `json:"xp"`
	Level                   LevelInfoDTO          `json:"level"`
	AnswerCount             int                   `json:"answer_count"`
	Achievements            []AchievementResponse `json:"achievements"`
	RemainingEvaluations    int                   `json:"remaining_evaluations_today"`
	RemainingTranscriptions int                   `json:"remaining_transcriptions_today"`
}

type AuthResponse struct {
	Token string          `json:"token"`
	User  ProfileResponse `json:"user"`
}

type TranscriptionResponse struct {
	Text           string `json:"text"`
	RemainingToday int    `json:"remaining_today"`
}
