package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"

	"gorm.io/gorm"
)

type memTicketRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]*model.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{rows: make(map[string]*model.Ticket)}
}

func (m *memTicketRepo) Create(ticket *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ticket.ID = fmt.Sprintf("t%d", m.nextID)
	clone := *ticket
	m.rows[ticket.ID] = &clone
	return nil
}

func (m *memTicketRepo) FindByID(id string) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		clone := *row
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memTicketRepo) FindByOwnerID(ownerID string, limit, offset int) ([]*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Ticket
	for _, row := range m.rows {
		if row.OwnerID == ownerID {
			clone := *row
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memTicketRepo) FindAvailableByOwnerIDs(ownerIDs []string, limit, offset int) ([]*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owners := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	var out []*model.Ticket
	for _, row := range m.rows {
		if owners[row.OwnerID] && row.Status == model.TicketStatusAvailable {
			clone := *row
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memTicketRepo) CountByOwnerID(ownerID string) (int64, error) {
	rows, _ := m.FindByOwnerID(ownerID, 0, 0)
	return int64(len(rows)), nil
}

func (m *memTicketRepo) Update(ticket *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *ticket
	m.rows[ticket.ID] = &clone
	return nil
}

func (m *memTicketRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// matchRecorder captures wanted-match notifications
type matchRecorder struct {
	noopNotificationService
	mu       sync.Mutex
	notified []string
}

func (r *matchRecorder) SendWantedMatchNotification(userID, sellerName, ticketID, concertName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, userID)
	return nil
}

func (r *matchRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notified...)
}

func newTicketServiceForTest(edges []*model.Friendship, wanted []*model.WantedTicket) (*ticketService, *memTicketRepo, *matchRecorder) {
	ticketRepo := newMemTicketRepo()
	users := &fakeUserRepo{users: map[string]*model.User{
		"seller": {ID: "seller", FullName: "Sal Seller"},
		"buyer":  {ID: "buyer", FullName: "Ben Buyer"},
		"ana":    {ID: "ana", FullName: "Ana"},
	}}
	networkSvc := NewNetworkService(&fakeFriendshipRepo{edges: edges}, users)
	recorder := &matchRecorder{}
	svc := NewTicketService(ticketRepo, users, &fakeWantedRepo{wanted: wanted}, networkSvc, recorder).(*ticketService)
	return svc, ticketRepo, recorder
}

func TestCreateTicket(t *testing.T) {
	svc, _, _ := newTicketServiceForTest(nil, nil)

	ticket, err := svc.CreateTicket("seller", CreateTicketRequest{
		ConcertName: "Orbit Tour",
		Venue:       "Velodrome",
		EventDate:   time.Now().AddDate(0, 2, 0),
		Price:       80,
	})
	if err != nil {
		t.Fatalf("CreateTicket returned error: %v", err)
	}
	if ticket.Status != model.TicketStatusAvailable {
		t.Errorf("status = %q, want available", ticket.Status)
	}
	if ticket.Quantity != 1 {
		t.Errorf("quantity = %d, want default 1", ticket.Quantity)
	}
}

func TestNotifyWantedMatches(t *testing.T) {
	edges := []*model.Friendship{
		accepted("seller", "ana"),
		accepted("ana", "buyer"),
	}
	wanted := []*model.WantedTicket{
		{ID: "w1", OwnerID: "buyer", ConcertName: "orbit tour", Status: model.WantedTicketStatusOpen},
		{ID: "w2", OwnerID: "buyer", ConcertName: "Orbit", Status: model.WantedTicketStatusOpen},
		{ID: "w3", OwnerID: "ana", ConcertName: "Something Else", Status: model.WantedTicketStatusOpen},
	}
	svc, _, recorder := newTicketServiceForTest(edges, wanted)

	svc.notifyWantedMatches(&model.Ticket{
		ID:          "t1",
		OwnerID:     "seller",
		ConcertName: "Orbit Tour",
	})

	notified := recorder.all()
	// Case-insensitive substring match both ways; one notification per
	// owner even with two matching listings
	if len(notified) != 1 || notified[0] != "buyer" {
		t.Errorf("notified %v, want exactly [buyer]", notified)
	}
}

func TestGetTicketByIDVisibility(t *testing.T) {
	edges := []*model.Friendship{accepted("seller", "ana")}
	svc, _, _ := newTicketServiceForTest(edges, nil)

	ticket, err := svc.CreateTicket("seller", CreateTicketRequest{
		ConcertName: "Orbit Tour",
		Venue:       "Velodrome",
		EventDate:   time.Now().AddDate(0, 2, 0),
		Price:       80,
	})
	if err != nil {
		t.Fatalf("CreateTicket returned error: %v", err)
	}

	if _, err := svc.GetTicketByID(ticket.ID, "seller"); err != nil {
		t.Errorf("owner cannot see their own ticket: %v", err)
	}
	if _, err := svc.GetTicketByID(ticket.ID, "ana"); err != nil {
		t.Errorf("hop-1 peer cannot see the ticket: %v", err)
	}
	if _, err := svc.GetTicketByID(ticket.ID, "buyer"); err == nil {
		t.Error("a user outside the seller's network must not see the ticket")
	}
}

func TestUpdateTicketOwnership(t *testing.T) {
	svc, _, _ := newTicketServiceForTest(nil, nil)

	ticket, err := svc.CreateTicket("seller", CreateTicketRequest{
		ConcertName: "Orbit Tour",
		Venue:       "Velodrome",
		EventDate:   time.Now().AddDate(0, 2, 0),
		Price:       80,
	})
	if err != nil {
		t.Fatalf("CreateTicket returned error: %v", err)
	}

	newPrice := 95.0
	if _, err := svc.UpdateTicket("buyer", ticket.ID, UpdateTicketRequest{Price: &newPrice}); err == nil {
		t.Error("a non-owner must not update the ticket")
	}

	updated, err := svc.UpdateTicket("seller", ticket.ID, UpdateTicketRequest{Price: &newPrice})
	if err != nil {
		t.Fatalf("UpdateTicket returned error: %v", err)
	}
	if updated.Price != 95 {
		t.Errorf("price = %v, want 95", updated.Price)
	}

	badStatus := "gone"
	if _, err := svc.UpdateTicket("seller", ticket.ID, UpdateTicketRequest{Status: &badStatus}); err == nil {
		t.Error("invalid status must be rejected")
	}
}

func TestMarkSold(t *testing.T) {
	svc, repo, _ := newTicketServiceForTest(nil, nil)

	ticket, err := svc.CreateTicket("seller", CreateTicketRequest{
		ConcertName: "Orbit Tour",
		Venue:       "Velodrome",
		EventDate:   time.Now().AddDate(0, 2, 0),
		Price:       80,
	})
	if err != nil {
		t.Fatalf("CreateTicket returned error: %v", err)
	}

	if _, err := svc.MarkSold("seller", ticket.ID); err != nil {
		t.Fatalf("MarkSold returned error: %v", err)
	}

	stored, err := repo.FindByID(ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != model.TicketStatusSold {
		t.Errorf("status = %q, want sold", stored.Status)
	}
}
