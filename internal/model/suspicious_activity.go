package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SuspiciousActivity is an advisory, write-only log entry produced when a
// caller trips a secondary threshold (e.g. repeated negative email lookups)
// while still under the hard rate limit. Consumed only by manual review.
type SuspiciousActivity struct {
	ID           string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Identifier   string    `gorm:"type:varchar(128);not null;index" json:"identifier"`
	FunctionName string    `gorm:"type:varchar(64);not null" json:"function_name"`
	Reason       string    `gorm:"type:varchar(255);not null" json:"reason"`
	Metadata     string    `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate hook to generate UUID
func (s *SuspiciousActivity) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (SuspiciousActivity) TableName() string {
	return "suspicious_activities"
}
