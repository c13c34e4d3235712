package repository

import (
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"

	"gorm.io/gorm"
)

// SuspiciousActivityRepository is write-only from the application's point of
// view; entries are read by manual review tooling, not by this service.
type SuspiciousActivityRepository interface {
	Create(activity *model.SuspiciousActivity) error
}

type suspiciousActivityRepository struct {
	db *gorm.DB
}

func NewSuspiciousActivityRepository(db *gorm.DB) SuspiciousActivityRepository {
	return &suspiciousActivityRepository{db: db}
}

func (r *suspiciousActivityRepository) Create(activity *model.SuspiciousActivity) error {
	return r.db.Create(activity).Error
}
