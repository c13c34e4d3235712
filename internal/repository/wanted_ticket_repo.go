package repository

import (
	"errors"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"

	"gorm.io/gorm"
)

type WantedTicketRepository interface {
	Create(wanted *model.WantedTicket) error
	FindByID(id string) (*model.WantedTicket, error)
	FindByOwnerID(ownerID string, limit, offset int) ([]*model.WantedTicket, error)
	FindOpenByOwnerIDs(ownerIDs []string, limit, offset int) ([]*model.WantedTicket, error)
	Update(wanted *model.WantedTicket) error
	Delete(id string) error
}

type wantedTicketRepository struct {
	db *gorm.DB
}

func NewWantedTicketRepository(db *gorm.DB) WantedTicketRepository {
	return &wantedTicketRepository{db: db}
}

// Create creates a new wanted-ticket listing
func (r *wantedTicketRepository) Create(wanted *model.WantedTicket) error {
	return r.db.Create(wanted).Error
}

// FindByID finds a wanted-ticket listing by ID
func (r *wantedTicketRepository) FindByID(id string) (*model.WantedTicket, error) {
	var wanted model.WantedTicket
	err := r.db.Preload("Owner").Where("id = ?", id).First(&wanted).Error
	if err != nil {
		return nil, err
	}
	return &wanted, nil
}

// FindByOwnerID finds all wanted-ticket listings of a user
func (r *wantedTicketRepository) FindByOwnerID(ownerID string, limit, offset int) ([]*model.WantedTicket, error) {
	var wanted []*model.WantedTicket
	err := r.db.Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&wanted).Error
	if err != nil {
		return nil, err
	}
	return wanted, nil
}

// FindOpenByOwnerIDs finds open listings owned by any of the given users.
// Visibility filtering happens in the caller, same as tickets.
func (r *wantedTicketRepository) FindOpenByOwnerIDs(ownerIDs []string, limit, offset int) ([]*model.WantedTicket, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	var wanted []*model.WantedTicket
	err := r.db.Preload("Owner").
		Where("owner_id IN ? AND status = ?", ownerIDs, model.WantedTicketStatusOpen).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&wanted).Error
	if err != nil {
		return nil, err
	}
	return wanted, nil
}

// Update updates a wanted-ticket listing
func (r *wantedTicketRepository) Update(wanted *model.WantedTicket) error {
	return r.db.Save(wanted).Error
}

// Delete deletes a wanted-ticket listing
func (r *wantedTicketRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&model.WantedTicket{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("wanted ticket not found")
	}
	return nil
}
