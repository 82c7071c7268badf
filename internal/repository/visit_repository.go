package repository

import (
	"github.com/google/uuid"
	"github.com/lshigami/Polemos/internal/model"
	"gorm.io/gorm"
)

type VisitRepository interface {
	Create(visit *model.Visit) error
	// ReassignUser moves all visits from one user to another, used when an
	// anonymous identity is merged into an account.
	ReassignUser(from, to uuid.UUID) error
	WithTx(tx *gorm.DB) VisitRepository
}

type visitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) WithTx(tx *gorm.DB) VisitRepository {
	return &visitRepository{db: tx}
}

func (r *visitRepository) Create(visit *model.Visit) error {
	return r.db.Create(visit).Error
}

func (r *visitRepository) ReassignUser(from, to uuid.UUID) error {
	return r.db.Model(&model.Visit{}).
		Where("user_id = ?", from).
		Update("user_id", to).Error
}
