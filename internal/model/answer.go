package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Answer is one evaluation event: the initial submission plus at most one
// challenge round. Immutable once scored except for the challenge fields.
type Answer struct {
	ID     uint      `gorm:"primarykey" json:"id"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	QuestionSlug string `json:"question_slug" gorm:"not null;index"`
	QuestionText string `json:"question_text" gorm:"type:text;not null"`
	Category     string `json:"category" gorm:"not null"`

	Claim           string `json:"claim" gorm:"type:text;not null"`
	Argument        string `json:"argument" gorm:"type:text;not null"`
	CounterArgument string `json:"counter_argument,omitempty" gorm:"type:text"`
	VoiceInput      bool   `json:"voice_input" gorm:"not null;default:false"`

	Scores            *RubricScores     `json:"scores,omitempty" gorm:"serializer:json"`
	Explanations      map[string]string `json:"explanations,omitempty" gorm:"serializer:json"`
	TotalScore        *float64          `json:"total_score,omitempty"`
	OverallFeedback   string            `json:"overall_feedback,omitempty" gorm:"type:text"`
	ChallengeQuestion string            `json:"challenge_question,omitempty" gorm:"type:text"`
	ArgumentStructure *ArgumentGraph    `json:"argument_structure,omitempty" gorm:"serializer:json"`
	XPEarned          int               `json:"xp_earned" gorm:"not null;default:0"`

	ChallengeResponse     *string           `json:"challenge_response,omitempty" gorm:"type:text"`
	ChallengeScores       *RubricScores     `json:"challenge_scores,omitempty" gorm:"serializer:json"`
	ChallengeExplanations map[string]string `json:"challenge_explanations,omitempty" gorm:"serializer:json"`
	ChallengeTotalScore   *float64          `json:"challenge_total_score,omitempty"`
	ChallengeFeedback     string            `json:"challenge_feedback,omitempty" gorm:"type:text"`
	ChallengeXPEarned     int               `json:"challenge_xp_earned" gorm:"not null;default:0"`
	ChallengeSubmittedAt  *time.Time        `json:"challenge_submitted_at,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasChallengeResponse reports whether the single challenge round was used.
func (a *Answer) HasChallengeResponse() bool {
	return a.ChallengeResponse != nil && *a.ChallengeResponse != ""
}
