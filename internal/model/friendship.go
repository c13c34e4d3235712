package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Friendship is a directed request between two users. Once accepted it is
// treated as undirected: both endpoints see each other as hop-1 peers.
// At most one active edge exists per unordered pair; removal is a hard
// delete with no tombstone.
type Friendship struct {
	ID          string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RequesterID string    `gorm:"type:uuid;not null;index" json:"requester_id"`
	TargetID    string    `gorm:"type:uuid;not null;index" json:"target_id"`
	Status      string    `gorm:"type:varchar(20);default:'pending';not null" json:"status"` // pending, accepted, rejected
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Requester User `gorm:"foreignKey:RequesterID;references:ID" json:"requester,omitempty"`
	Target    User `gorm:"foreignKey:TargetID;references:ID" json:"target,omitempty"`
}

// BeforeCreate hook to generate UUID
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Friendship) TableName() string {
	return "friendships"
}

// OtherUserID returns the endpoint of the edge that is not userID.
func (f *Friendship) OtherUserID(userID string) string {
	if f.RequesterID == userID {
		return f.TargetID
	}
	return f.RequesterID
}

// Friendship status constants
const (
	FriendshipStatusPending  = "pending"
	FriendshipStatusAccepted = "accepted"
	FriendshipStatusRejected = "rejected"
)
