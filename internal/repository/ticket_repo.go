package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"

	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ticket *model.Ticket) error
	FindByID(id string) (*model.Ticket, error)
	FindByOwnerID(ownerID string, limit, offset int) ([]*model.Ticket, error)
	FindAvailableByOwnerIDs(ownerIDs []string, limit, offset int) ([]*model.Ticket, error)
	CountByOwnerID(ownerID string) (int64, error)
	Update(ticket *model.Ticket) error
	Delete(id string) error
}

type ticketRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	ticketByOwnerCachePrefix = "ticket:owner:"
	ticketCacheExpiration    = 5 * time.Minute
)

func NewTicketRepository(db *gorm.DB, redis *util.RedisClient) TicketRepository {
	return &ticketRepository{
		db:    db,
		redis: redis,
	}
}

// Create creates a new ticket listing
func (r *ticketRepository) Create(ticket *model.Ticket) error {
	if err := r.db.Create(ticket).Error; err != nil {
		return err
	}

	r.invalidateOwnerCache(ticket.OwnerID)
	return nil
}

// FindByID finds a ticket by ID
func (r *ticketRepository) FindByID(id string) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.Preload("Owner").Where("id = ?", id).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// FindByOwnerID finds all tickets listed by a user
func (r *ticketRepository) FindByOwnerID(ownerID string, limit, offset int) ([]*model.Ticket, error) {
	cacheKey := fmt.Sprintf("%s%s:%d:%d", ticketByOwnerCachePrefix, ownerID, limit, offset)
	if cached, err := r.getListFromCache(cacheKey); err == nil && cached != nil {
		return cached, nil
	}

	var tickets []*model.Ticket
	err := r.db.Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("event_date ASC").
		Limit(limit).Offset(offset).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}

	r.cacheList(cacheKey, tickets)
	return tickets, nil
}

// FindAvailableByOwnerIDs finds available tickets owned by any of the given
// users. The caller supplies the visibility set; no network logic lives here.
func (r *ticketRepository) FindAvailableByOwnerIDs(ownerIDs []string, limit, offset int) ([]*model.Ticket, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	var tickets []*model.Ticket
	err := r.db.Preload("Owner").
		Where("owner_id IN ? AND status = ?", ownerIDs, model.TicketStatusAvailable).
		Order("event_date ASC").
		Limit(limit).Offset(offset).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// CountByOwnerID counts tickets listed by a user
func (r *ticketRepository) CountByOwnerID(ownerID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Ticket{}).Where("owner_id = ?", ownerID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Update updates a ticket
func (r *ticketRepository) Update(ticket *model.Ticket) error {
	if err := r.db.Save(ticket).Error; err != nil {
		return err
	}

	r.invalidateOwnerCache(ticket.OwnerID)
	return nil
}

// Delete deletes a ticket
func (r *ticketRepository) Delete(id string) error {
	var ticket model.Ticket
	if err := r.db.Where("id = ?", id).First(&ticket).Error; err != nil {
		return err
	}

	result := r.db.Delete(&ticket)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("ticket not found")
	}

	r.invalidateOwnerCache(ticket.OwnerID)
	return nil
}

// Cache helpers
func (r *ticketRepository) cacheList(key string, tickets []*model.Ticket) {
	if r.redis == nil {
		return
	}

	data, err := json.Marshal(tickets)
	if err != nil {
		return
	}
	r.redis.Set(key, string(data), ticketCacheExpiration)
}

func (r *ticketRepository) getListFromCache(key string) ([]*model.Ticket, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var tickets []*model.Ticket
	if err := json.Unmarshal([]byte(cached), &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) invalidateOwnerCache(ownerID string) {
	if r.redis == nil {
		return
	}
	r.redis.DeletePattern(ticketByOwnerCachePrefix + ownerID + ":*")
}
