package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/repository"
)

type WantedTicketService interface {
	CreateWantedTicket(ownerID string, req CreateWantedTicketRequest) (*model.WantedTicket, error)
	GetWantedTicketsByOwnerID(ownerID string, limit, offset int) ([]*model.WantedTicket, error)
	UpdateWantedTicket(ownerID, wantedID string, req UpdateWantedTicketRequest) (*model.WantedTicket, error)
	DeleteWantedTicket(ownerID, wantedID string) error
}

type CreateWantedTicketRequest struct {
	ConcertName string     `json:"concert_name" binding:"required"`
	Venue       *string    `json:"venue,omitempty"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	MaxPrice    *float64   `json:"max_price,omitempty" binding:"omitempty,gt=0"`
	Quantity    int        `json:"quantity" binding:"omitempty,gte=1"`
	Notes       *string    `json:"notes,omitempty"`
}

type UpdateWantedTicketRequest struct {
	ConcertName *string    `json:"concert_name,omitempty"`
	Venue       *string    `json:"venue,omitempty"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	MaxPrice    *float64   `json:"max_price,omitempty"`
	Quantity    *int       `json:"quantity,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

type wantedTicketService struct {
	wantedRepo repository.WantedTicketRepository
	userRepo   repository.UserRepository
}

func NewWantedTicketService(
	wantedRepo repository.WantedTicketRepository,
	userRepo repository.UserRepository,
) WantedTicketService {
	return &wantedTicketService{
		wantedRepo: wantedRepo,
		userRepo:   userRepo,
	}
}

// CreateWantedTicket creates a "looking for" listing
func (s *wantedTicketService) CreateWantedTicket(ownerID string, req CreateWantedTicketRequest) (*model.WantedTicket, error) {
	if _, err := s.userRepo.FindByID(ownerID); err != nil {
		return nil, errors.New("user not found")
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	wanted := &model.WantedTicket{
		OwnerID:     ownerID,
		ConcertName: req.ConcertName,
		Venue:       req.Venue,
		EventDate:   req.EventDate,
		MaxPrice:    req.MaxPrice,
		Quantity:    quantity,
		Notes:       req.Notes,
		Status:      model.WantedTicketStatusOpen,
	}

	if err := s.wantedRepo.Create(wanted); err != nil {
		return nil, fmt.Errorf("failed to create wanted ticket: %w", err)
	}

	return s.wantedRepo.FindByID(wanted.ID)
}

// GetWantedTicketsByOwnerID returns a user's own wanted listings
func (s *wantedTicketService) GetWantedTicketsByOwnerID(ownerID string, limit, offset int) ([]*model.WantedTicket, error) {
	return s.wantedRepo.FindByOwnerID(ownerID, limit, offset)
}

// UpdateWantedTicket updates a wanted listing owned by the caller
func (s *wantedTicketService) UpdateWantedTicket(ownerID, wantedID string, req UpdateWantedTicketRequest) (*model.WantedTicket, error) {
	wanted, err := s.ownedWanted(ownerID, wantedID)
	if err != nil {
		return nil, err
	}

	if req.ConcertName != nil {
		wanted.ConcertName = *req.ConcertName
	}
	if req.Venue != nil {
		wanted.Venue = req.Venue
	}
	if req.EventDate != nil {
		wanted.EventDate = req.EventDate
	}
	if req.MaxPrice != nil {
		if *req.MaxPrice <= 0 {
			return nil, errors.New("max price must be positive")
		}
		wanted.MaxPrice = req.MaxPrice
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, errors.New("quantity must be at least 1")
		}
		wanted.Quantity = *req.Quantity
	}
	if req.Notes != nil {
		wanted.Notes = req.Notes
	}
	if req.Status != nil {
		switch *req.Status {
		case model.WantedTicketStatusOpen, model.WantedTicketStatusFulfilled, model.WantedTicketStatusClosed:
			wanted.Status = *req.Status
		default:
			return nil, errors.New("invalid wanted ticket status")
		}
	}

	if err := s.wantedRepo.Update(wanted); err != nil {
		return nil, fmt.Errorf("failed to update wanted ticket: %w", err)
	}

	return s.wantedRepo.FindByID(wanted.ID)
}

// DeleteWantedTicket deletes a wanted listing owned by the caller
func (s *wantedTicketService) DeleteWantedTicket(ownerID, wantedID string) error {
	if _, err := s.ownedWanted(ownerID, wantedID); err != nil {
		return err
	}
	return s.wantedRepo.Delete(wantedID)
}

func (s *wantedTicketService) ownedWanted(ownerID, wantedID string) (*model.WantedTicket, error) {
	wanted, err := s.wantedRepo.FindByID(wantedID)
	if err != nil {
		return nil, errors.New("wanted ticket not found")
	}
	if wanted.OwnerID != ownerID {
		return nil, errors.New("unauthorized: you do not own this listing")
	}
	return wanted, nil
}
