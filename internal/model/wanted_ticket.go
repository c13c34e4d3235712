package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WantedTicket is a "looking for" listing: the owner wants to buy a ticket
// for a concert. Filtered by the same trust-network rules as Ticket.
type WantedTicket struct {
	ID          string     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID     string     `gorm:"type:uuid;not null;index" json:"owner_id"`
	ConcertName string     `gorm:"type:varchar(255);not null" json:"concert_name"`
	Venue       *string    `gorm:"type:varchar(255)" json:"venue,omitempty"`
	EventDate   *time.Time `gorm:"index" json:"event_date,omitempty"`
	MaxPrice    *float64   `gorm:"type:numeric(10,2)" json:"max_price,omitempty"`
	Quantity    int        `gorm:"default:1;not null" json:"quantity"`
	Notes       *string    `gorm:"type:text" json:"notes,omitempty"`
	Status      string     `gorm:"type:varchar(20);default:'open';not null" json:"status"` // open, fulfilled, closed
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
}

// BeforeCreate hook to generate UUID
func (w *WantedTicket) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (WantedTicket) TableName() string {
	return "wanted_tickets"
}

// WantedTicket status constants
const (
	WantedTicketStatusOpen      = "open"
	WantedTicketStatusFulfilled = "fulfilled"
	WantedTicketStatusClosed    = "closed"
)
