package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/Polemos/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	Create(answer *model.Answer) error
	Update(answer *model.Answer) error
	FindByID(id uint) (*model.Answer, error)
	FindAllByUser(userID uuid.UUID) ([]model.Answer, error)
	FindByUserAndQuestion(userID uuid.UUID, questionSlug string) ([]model.Answer, error)
	CountCreatedSince(userID uuid.UUID, since time.Time) (int64, error)
	CountChallengesSince(userID uuid.UUID, since time.Time) (int64, error)
	// ReassignUser moves every answer of fromID to toID in one bulk update.
	ReassignUser(fromID, toID uuid.UUID) error
	WithTx(tx *gorm.DB) AnswerRepository
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) WithTx(tx *gorm.DB) AnswerRepository {
	return &answerRepository{db: tx}
}

func (r *answerRepository) Create(answer *model.Answer) error {
	return r.db.Create(answer).Error
}

func (r *answerRepository) Update(answer *model.Answer) error {
	return r.db.Save(answer).Error
}

func (r *answerRepository) FindByID(id uint) (*model.Answer, error) {
	var answer model.Answer
	if err := r.db.First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) FindAllByUser(userID uuid.UUID) ([]model.Answer, error) {
	var answers []model.Answer
	if err := r.db.Where("user_id = ?", userID).Order("created_at asc").Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) FindByUserAndQuestion(userID uuid.UUID, questionSlug string) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.Where("user_id = ? AND question_slug = ?", userID, questionSlug).
		Order("created_at asc").Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) CountCreatedSince(userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Answer{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

func (r *answerRepository) CountChallengesSince(userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Answer{}).
		Where("user_id = ? AND challenge_submitted_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

func (r *answerRepository) ReassignUser(fromID, toID uuid.UUID) error {
	return r.db.Model(&model.Answer{}).
		Where("user_id = ?", fromID).
		Update("user_id", toID).Error
}
