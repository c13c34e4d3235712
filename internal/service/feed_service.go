package service

import (
	"log"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/repository"
)

// TicketFeedItem is a ticket annotated with how the viewer is connected to
// its owner. HopDistance 0 means the viewer owns the listing.
type TicketFeedItem struct {
	Ticket          *model.Ticket `json:"ticket"`
	HopDistance     int           `json:"hop_distance"`
	ConnectionLabel string        `json:"connection_label,omitempty"`
}

// WantedFeedItem mirrors TicketFeedItem for wanted-ticket listings
type WantedFeedItem struct {
	WantedTicket    *model.WantedTicket `json:"wanted_ticket"`
	HopDistance     int                 `json:"hop_distance"`
	ConnectionLabel string              `json:"connection_label,omitempty"`
}

// MarketFeed is everything a user can see on the marketplace page
type MarketFeed struct {
	Tickets       []*TicketFeedItem `json:"tickets"`
	WantedTickets []*WantedFeedItem `json:"wanted_tickets"`
}

// FeedService assembles the visible marketplace for a user. Reachability is
// resolved once per call and reused for both listing kinds; visibility is a
// set-membership filter over owner IDs, applied here rather than pushed
// into the listing queries.
type FeedService interface {
	GetFeed(userID string, limit, offset int) (*MarketFeed, error)
}

type feedService struct {
	networkService NetworkService
	ticketRepo     repository.TicketRepository
	wantedRepo     repository.WantedTicketRepository
}

func NewFeedService(
	networkService NetworkService,
	ticketRepo repository.TicketRepository,
	wantedRepo repository.WantedTicketRepository,
) FeedService {
	return &feedService{
		networkService: networkService,
		ticketRepo:     ticketRepo,
		wantedRepo:     wantedRepo,
	}
}

// GetFeed returns the tickets and wanted tickets visible to a user
func (s *feedService) GetFeed(userID string, limit, offset int) (*MarketFeed, error) {
	reachable, err := s.networkService.ResolveReachable(userID)
	if err != nil {
		// Fail closed: showing extra listings would leak listings outside
		// the owner's chosen circle, so a broken graph means an empty
		// network and the user sees only their own listings.
		log.Printf("Failed to resolve network for %s, falling back to own listings: %v", userID, err)
		reachable = map[string]int{}
	}

	ownerIDs := make([]string, 0, len(reachable)+1)
	ownerIDs = append(ownerIDs, userID)
	for peerID := range reachable {
		ownerIDs = append(ownerIDs, peerID)
	}

	tickets, err := s.ticketRepo.FindAvailableByOwnerIDs(ownerIDs, limit, offset)
	if err != nil {
		return nil, err
	}

	wanted, err := s.wantedRepo.FindOpenByOwnerIDs(ownerIDs, limit, offset)
	if err != nil {
		return nil, err
	}

	feed := &MarketFeed{
		Tickets:       make([]*TicketFeedItem, 0, len(tickets)),
		WantedTickets: make([]*WantedFeedItem, 0, len(wanted)),
	}

	for _, ticket := range tickets {
		hop := reachable[ticket.OwnerID] // 0 for own listings
		feed.Tickets = append(feed.Tickets, &TicketFeedItem{
			Ticket:          ticket,
			HopDistance:     hop,
			ConnectionLabel: s.connectionLabel(userID, ticket.OwnerID, hop),
		})
	}

	for _, item := range wanted {
		hop := reachable[item.OwnerID]
		feed.WantedTickets = append(feed.WantedTickets, &WantedFeedItem{
			WantedTicket:    item,
			HopDistance:     hop,
			ConnectionLabel: s.connectionLabel(userID, item.OwnerID, hop),
		})
	}

	return feed, nil
}

// connectionLabel is only meaningful for hop-2 owners; direct friends and
// the viewer's own listings need no explanation.
func (s *feedService) connectionLabel(viewerID, ownerID string, hop int) string {
	if hop != HopFriendOfFriend {
		return ""
	}

	names, err := s.networkService.MutualFriends(viewerID, ownerID)
	if err != nil {
		// Label is cosmetic; never fail the feed over it
		log.Printf("Failed to load mutual friends of %s and %s: %v", viewerID, ownerID, err)
		names = nil
	}
	return ConnectionLabel(names)
}
