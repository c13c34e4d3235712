package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ticket is a concert ticket offered for sale. Visibility is decided by the
// viewer's trust network, not by anything stored on the row itself.
type Ticket struct {
	ID          string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID     string    `gorm:"type:uuid;not null;index" json:"owner_id"`
	ConcertName string    `gorm:"type:varchar(255);not null" json:"concert_name"`
	Venue       string    `gorm:"type:varchar(255);not null" json:"venue"`
	City        *string   `gorm:"type:varchar(255)" json:"city,omitempty"`
	EventDate   time.Time `gorm:"not null;index" json:"event_date"`
	Price       float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity    int       `gorm:"default:1;not null" json:"quantity"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	ImageURL    *string   `gorm:"type:text" json:"image_url,omitempty"`
	Status      string    `gorm:"type:varchar(20);default:'available';not null" json:"status"` // available, sold, cancelled
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
}

// BeforeCreate hook to generate UUID
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Ticket) TableName() string {
	return "tickets"
}

// Ticket status constants
const (
	TicketStatusAvailable = "available"
	TicketStatusSold      = "sold"
	TicketStatusCancelled = "cancelled"
)
