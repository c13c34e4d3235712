package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/repository"
)

type TicketService interface {
	CreateTicket(ownerID string, req CreateTicketRequest) (*model.Ticket, error)
	GetTicketByID(ticketID, viewerID string) (*model.Ticket, error)
	GetTicketsByOwnerID(ownerID string, limit, offset int) ([]*model.Ticket, error)
	UpdateTicket(ownerID, ticketID string, req UpdateTicketRequest) (*model.Ticket, error)
	SetTicketImage(ownerID, ticketID, imageURL string) (*model.Ticket, error)
	MarkSold(ownerID, ticketID string) (*model.Ticket, error)
	DeleteTicket(ownerID, ticketID string) error
}

type CreateTicketRequest struct {
	ConcertName string    `json:"concert_name" binding:"required"`
	Venue       string    `json:"venue" binding:"required"`
	City        *string   `json:"city,omitempty"`
	EventDate   time.Time `json:"event_date" binding:"required,futuredate"`
	Price       float64   `json:"price" binding:"required,gt=0"`
	Quantity    int       `json:"quantity" binding:"omitempty,gte=1"`
	Description *string   `json:"description,omitempty"`
}

type UpdateTicketRequest struct {
	ConcertName *string    `json:"concert_name,omitempty"`
	Venue       *string    `json:"venue,omitempty"`
	City        *string    `json:"city,omitempty"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Quantity    *int       `json:"quantity,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

type ticketService struct {
	ticketRepo     repository.TicketRepository
	userRepo       repository.UserRepository
	wantedRepo     repository.WantedTicketRepository
	networkService NetworkService
	notifService   NotificationService
}

func NewTicketService(
	ticketRepo repository.TicketRepository,
	userRepo repository.UserRepository,
	wantedRepo repository.WantedTicketRepository,
	networkService NetworkService,
	notifService NotificationService,
) TicketService {
	return &ticketService{
		ticketRepo:     ticketRepo,
		userRepo:       userRepo,
		wantedRepo:     wantedRepo,
		networkService: networkService,
		notifService:   notifService,
	}
}

// CreateTicket creates a new ticket listing
func (s *ticketService) CreateTicket(ownerID string, req CreateTicketRequest) (*model.Ticket, error) {
	if _, err := s.userRepo.FindByID(ownerID); err != nil {
		return nil, errors.New("user not found")
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	ticket := &model.Ticket{
		OwnerID:     ownerID,
		ConcertName: req.ConcertName,
		Venue:       req.Venue,
		City:        req.City,
		EventDate:   req.EventDate,
		Price:       req.Price,
		Quantity:    quantity,
		Description: req.Description,
		Status:      model.TicketStatusAvailable,
	}

	if err := s.ticketRepo.Create(ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	// Tell reachable users whose open wanted listings match this concert.
	// Best-effort, off the request path.
	go s.notifyWantedMatches(ticket)

	return s.ticketRepo.FindByID(ticket.ID)
}

// notifyWantedMatches finds open wanted listings inside the seller's
// network that name the same concert and notifies their owners. Visibility
// is symmetric at two hops, so everyone notified can actually see the new
// listing.
func (s *ticketService) notifyWantedMatches(ticket *model.Ticket) {
	reachable, err := s.networkService.ResolveReachable(ticket.OwnerID)
	if err != nil || len(reachable) == 0 {
		return
	}

	peerIDs := make([]string, 0, len(reachable))
	for peerID := range reachable {
		peerIDs = append(peerIDs, peerID)
	}

	wanted, err := s.wantedRepo.FindOpenByOwnerIDs(peerIDs, 100, 0)
	if err != nil {
		return
	}

	seller, err := s.userRepo.FindByID(ticket.OwnerID)
	if err != nil {
		return
	}

	target := strings.ToLower(ticket.ConcertName)
	notified := make(map[string]bool)
	for _, item := range wanted {
		if notified[item.OwnerID] {
			continue
		}
		if !strings.Contains(target, strings.ToLower(item.ConcertName)) &&
			!strings.Contains(strings.ToLower(item.ConcertName), target) {
			continue
		}
		notified[item.OwnerID] = true
		s.notifService.SendWantedMatchNotification(item.OwnerID, seller.FullName, ticket.ID, ticket.ConcertName)
	}
}

// GetTicketByID returns a ticket if the viewer is allowed to see it: the
// owner always, anyone else only when the owner is within two hops.
func (s *ticketService) GetTicketByID(ticketID, viewerID string) (*model.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ticketID)
	if err != nil {
		return nil, errors.New("ticket not found")
	}

	if ticket.OwnerID == viewerID {
		return ticket, nil
	}

	reachable, err := s.networkService.ResolveReachable(viewerID)
	if err != nil {
		// Fail closed, same rule as the feed
		return nil, errors.New("ticket not found")
	}
	if _, ok := reachable[ticket.OwnerID]; !ok {
		return nil, errors.New("ticket not found")
	}

	return ticket, nil
}

// GetTicketsByOwnerID returns a user's own listings
func (s *ticketService) GetTicketsByOwnerID(ownerID string, limit, offset int) ([]*model.Ticket, error) {
	return s.ticketRepo.FindByOwnerID(ownerID, limit, offset)
}

// UpdateTicket updates fields of a listing owned by the caller
func (s *ticketService) UpdateTicket(ownerID, ticketID string, req UpdateTicketRequest) (*model.Ticket, error) {
	ticket, err := s.ownedTicket(ownerID, ticketID)
	if err != nil {
		return nil, err
	}

	if req.ConcertName != nil {
		ticket.ConcertName = *req.ConcertName
	}
	if req.Venue != nil {
		ticket.Venue = *req.Venue
	}
	if req.City != nil {
		ticket.City = req.City
	}
	if req.EventDate != nil {
		ticket.EventDate = *req.EventDate
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, errors.New("price must be positive")
		}
		ticket.Price = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, errors.New("quantity must be at least 1")
		}
		ticket.Quantity = *req.Quantity
	}
	if req.Description != nil {
		ticket.Description = req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case model.TicketStatusAvailable, model.TicketStatusSold, model.TicketStatusCancelled:
			ticket.Status = *req.Status
		default:
			return nil, errors.New("invalid ticket status")
		}
	}

	if err := s.ticketRepo.Update(ticket); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	return s.ticketRepo.FindByID(ticket.ID)
}

// SetTicketImage stores the uploaded image URL on the listing
func (s *ticketService) SetTicketImage(ownerID, ticketID, imageURL string) (*model.Ticket, error) {
	ticket, err := s.ownedTicket(ownerID, ticketID)
	if err != nil {
		return nil, err
	}

	ticket.ImageURL = &imageURL
	if err := s.ticketRepo.Update(ticket); err != nil {
		return nil, fmt.Errorf("failed to update ticket image: %w", err)
	}

	return ticket, nil
}

// MarkSold marks a listing sold
func (s *ticketService) MarkSold(ownerID, ticketID string) (*model.Ticket, error) {
	ticket, err := s.ownedTicket(ownerID, ticketID)
	if err != nil {
		return nil, err
	}

	ticket.Status = model.TicketStatusSold
	if err := s.ticketRepo.Update(ticket); err != nil {
		return nil, fmt.Errorf("failed to mark ticket sold: %w", err)
	}

	return ticket, nil
}

// DeleteTicket deletes a listing owned by the caller
func (s *ticketService) DeleteTicket(ownerID, ticketID string) error {
	if _, err := s.ownedTicket(ownerID, ticketID); err != nil {
		return err
	}
	return s.ticketRepo.Delete(ticketID)
}

func (s *ticketService) ownedTicket(ownerID, ticketID string) (*model.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ticketID)
	if err != nil {
		return nil, errors.New("ticket not found")
	}
	if ticket.OwnerID != ownerID {
		return nil, errors.New("unauthorized: you do not own this ticket")
	}
	return ticket, nil
}
