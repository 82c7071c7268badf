package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription tiers. Daily quotas are keyed by these names in config.
const (
	TierAnonymous = "anonymous"
	TierFree      = "free"
	TierPlus      = "plus"
	TierPro       = "pro"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	Email        *string   `json:"email,omitempty" gorm:"uniqueIndex"`
	PasswordHash *string   `json:"-"`
	GoogleID     *string   `json:"-" gorm:"index"`
	DisplayName  string    `json:"display_name"`
	Anonymous    bool      `json:"anonymous" gorm:"not null;default:false"`
	Tier         string    `json:"tier" gorm:"not null;default:'anonymous'"`

	SubscriptionStart *time.Time `json:"subscription_start,omitempty"`
	SubscriptionEnd   *time.Time `json:"subscription_end,omitempty"`

	// XP is derived from the answer history on every write, never incremented.
	XP int `json:"xp" gorm:"not null;default:0"`

	TranscriptionsToday int        `json:"transcriptions_today" gorm:"not null;default:0"`
	LastTranscriptionAt *time.Time `json:"last_transcription_at,omitempty"`

	Achievements []UserAchievement `json:"achievements,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// EffectiveTier falls back to the free tier when a paid subscription has lapsed.
func (u *User) EffectiveTier(now time.Time) string {
	if u.Tier == TierPlus || u.Tier == TierPro {
		if u.SubscriptionEnd != nil && u.SubscriptionEnd.Before(now) {
			return TierFree
		}
	}
	return u.Tier
}
