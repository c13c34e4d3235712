package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation lets an existing member vouch a contact into the network.
// The token is single-use and redeemed at registration.
type Invitation struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InviterID string    `gorm:"type:uuid;not null;index" json:"inviter_id"`
	Email     string    `gorm:"type:varchar(255);not null;index" json:"email"`
	Token     string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"token"`
	Status    string    `gorm:"type:varchar(20);default:'pending';not null" json:"status"` // pending, accepted, expired
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Inviter User `gorm:"foreignKey:InviterID;references:ID" json:"inviter,omitempty"`
}

// BeforeCreate hook to generate UUID and token
func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.Token == "" {
		i.Token = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Invitation) TableName() string {
	return "invitations"
}

// Invitation status constants
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusExpired  = "expired"
)
