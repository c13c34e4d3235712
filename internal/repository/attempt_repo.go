package repository

import (
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"

	"gorm.io/gorm"
)

// AttemptRepository is the append-only attempt log behind the abuse-control
// layer. Rows are never updated; the window query ignores old rows instead
// of deleting them.
type AttemptRepository interface {
	Insert(identifier, functionName string) error
	CountSince(identifier, functionName string, since time.Time) (int64, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

// Insert appends one attempt row
func (r *attemptRepository) Insert(identifier, functionName string) error {
	attempt := &model.FunctionAttempt{
		Identifier:   identifier,
		FunctionName: functionName,
	}
	return r.db.Create(attempt).Error
}

// CountSince counts attempts for (identifier, function) newer than since
func (r *attemptRepository) CountSince(identifier, functionName string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.FunctionAttempt{}).
		Where("identifier = ? AND function_name = ? AND created_at >= ?", identifier, functionName, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
