package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FunctionAttempt is one row per rate-limited call attempt. Rows are
// insert-only: the sliding window counts rows newer than now-window and
// simply ignores older ones. Stale rows are purged out of band.
type FunctionAttempt struct {
	ID           string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Identifier   string    `gorm:"type:varchar(128);not null;index:idx_attempts_lookup" json:"identifier"`
	FunctionName string    `gorm:"type:varchar(64);not null;index:idx_attempts_lookup" json:"function_name"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_attempts_lookup" json:"created_at"`
}

// BeforeCreate hook to generate UUID
func (a *FunctionAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (FunctionAttempt) TableName() string {
	return "function_attempts"
}
