package model

import (
	"time"

	"github.com/google/uuid"
)

// Achievement is a static catalog entry seeded at migration time.
type Achievement struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Code      string    `json:"code" gorm:"uniqueIndex;not null"`
	NameKey   string    `json:"name_key" gorm:"not null"`
	DescKey   string    `json:"desc_key" gorm:"not null"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserAchievement joins User x Achievement. The composite unique index makes
// awarding idempotent at the database level as well.
type UserAchievement struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	UserID        uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement"`
	AchievementID uint        `json:"achievement_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	Achievement   Achievement `json:"achievement,omitempty" gorm:"foreignKey:AchievementID"`
	EarnedAt      time.Time   `json:"earned_at" gorm:"autoCreateTime"`
}
