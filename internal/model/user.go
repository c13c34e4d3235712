package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string `gorm:"type:varchar(255);not null" json:"full_name"`
	City         *string `gorm:"type:varchar(255)" json:"city,omitempty"`

	// Email copies of in-app notifications are sent only when this is on
	EmailNotifications bool `gorm:"default:true" json:"email_notifications"`

	// Who vouched for this user when they joined the network
	InvitedByID *string `gorm:"type:uuid;index" json:"invited_by_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	InvitedBy *User `gorm:"foreignKey:InvitedByID;references:ID" json:"invited_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
