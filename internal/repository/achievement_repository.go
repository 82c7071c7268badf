package repository

import (
	"github.com/google/uuid"
	"github.com/lshigami/Polemos/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	UpsertCatalog(entries []model.Achievement) error
	FindAll() ([]model.Achievement, error)
	FindByCode(code string) (*model.Achievement, error)
	FindCodesByUser(userID uuid.UUID) (map[string]bool, error)
	FindAllByUser(userID uuid.UUID) ([]model.UserAchievement, error)
	// Award inserts the user-achievement join row. The conflict clause makes a
	// second award of the same code a no-op rather than an error.
	Award(userID uuid.UUID, achievementID uint) error
	DeleteByUser(userID uuid.UUID) error
	WithTx(tx *gorm.DB) AchievementRepository
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) WithTx(tx *gorm.DB) AchievementRepository {
	return &achievementRepository{db: tx}
}

func (r *achievementRepository) UpsertCatalog(entries []model.Achievement) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name_key", "desc_key", "icon"}),
	}).Create(&entries).Error
}

func (r *achievementRepository) FindAll() ([]model.Achievement, error) {
	var achievements []model.Achievement
	if err := r.db.Order("id asc").Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *achievementRepository) FindByCode(code string) (*model.Achievement, error) {
	var achievement model.Achievement
	if err := r.db.First(&achievement, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *achievementRepository) FindCodesByUser(userID uuid.UUID) (map[string]bool, error) {
	var codes []string
	err := r.db.Model(&model.UserAchievement{}).
		Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("user_achievements.user_id = ?", userID).
		Pluck("achievements.code", &codes).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set, nil
}

func (r *achievementRepository) FindAllByUser(userID uuid.UUID) ([]model.UserAchievement, error) {
	var awards []model.UserAchievement
	err := r.db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at asc").Find(&awards).Error
	if err != nil {
		return nil, err
	}
	return awards, nil
}

func (r *achievementRepository) Award(userID uuid.UUID, achievementID uint) error {
	award := model.UserAchievement{UserID: userID, AchievementID: achievementID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&award).Error
}

func (r *achievementRepository) DeleteByUser(userID uuid.UUID) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.UserAchievement{}).Error
}
