package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"

	"gorm.io/gorm"
)

// memFriendshipRepo is a stateful fake for the mutation paths
type memFriendshipRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]*model.Friendship
}

func newMemFriendshipRepo() *memFriendshipRepo {
	return &memFriendshipRepo{rows: make(map[string]*model.Friendship)}
}

func (m *memFriendshipRepo) Create(friendship *model.Friendship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	friendship.ID = fmt.Sprintf("f%d", m.nextID)
	clone := *friendship
	m.rows[friendship.ID] = &clone
	return nil
}

func (m *memFriendshipRepo) FindByID(id string) (*model.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		clone := *row
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memFriendshipRepo) FindBetween(userID1, userID2 string) (*model.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if (row.RequesterID == userID1 && row.TargetID == userID2) ||
			(row.RequesterID == userID2 && row.TargetID == userID1) {
			clone := *row
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memFriendshipRepo) FindPendingByTargetID(targetID string) ([]*model.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Friendship
	for _, row := range m.rows {
		if row.TargetID == targetID && row.Status == model.FriendshipStatusPending {
			clone := *row
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memFriendshipRepo) FindAcceptedByUserID(userID string) ([]*model.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Friendship
	for _, row := range m.rows {
		if row.Status == model.FriendshipStatusAccepted &&
			(row.RequesterID == userID || row.TargetID == userID) {
			clone := *row
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memFriendshipRepo) FindAcceptedByUserIDs(userIDs []string) ([]*model.Friendship, error) {
	var out []*model.Friendship
	seen := make(map[string]bool)
	for _, id := range userIDs {
		rows, _ := m.FindAcceptedByUserID(id)
		for _, row := range rows {
			if !seen[row.ID] {
				seen[row.ID] = true
				out = append(out, row)
			}
		}
	}
	return out, nil
}

func (m *memFriendshipRepo) CountAcceptedByUserID(userID string) (int64, error) {
	rows, _ := m.FindAcceptedByUserID(userID)
	return int64(len(rows)), nil
}

func (m *memFriendshipRepo) Update(friendship *model.Friendship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *friendship
	m.rows[friendship.ID] = &clone
	return nil
}

func (m *memFriendshipRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// noopNotificationService satisfies the interface; delivery is covered in
// the notification service's own tests.
type noopNotificationService struct{}

func (noopNotificationService) SendFriendRequestNotification(targetID, requesterID, requesterName, friendshipID string) error {
	return nil
}
func (noopNotificationService) SendFriendAcceptedNotification(userID, accepterID, accepterName, friendshipID string) error {
	return nil
}
func (noopNotificationService) SendFriendRemovedNotification(userID, removerID, removerName string) error {
	return nil
}
func (noopNotificationService) SendWantedMatchNotification(userID, sellerName, ticketID, concertName string) error {
	return nil
}
func (noopNotificationService) GetNotificationsByUserID(userID string, limit, offset int) ([]*model.Notification, error) {
	return nil, nil
}
func (noopNotificationService) GetUnreadCount(userID string) (int64, error)       { return 0, nil }
func (noopNotificationService) MarkAsRead(notificationID, userID string) error    { return nil }
func (noopNotificationService) MarkAllAsRead(userID string) error                 { return nil }
func (noopNotificationService) DeleteNotification(notificationID, userID string) error {
	return nil
}
func (noopNotificationService) SetWSHub(hub WSHub) {}

func newFriendshipServiceForTest() (FriendshipService, *memFriendshipRepo) {
	repo := newMemFriendshipRepo()
	users := &fakeUserRepo{users: map[string]*model.User{
		"alice": {ID: "alice", FullName: "Alice"},
		"bob":   {ID: "bob", FullName: "Bob"},
	}}
	return NewFriendshipService(repo, users, noopNotificationService{}), repo
}

func TestSendFriendRequest(t *testing.T) {
	svc, _ := newFriendshipServiceForTest()

	friendship, err := svc.SendFriendRequest("alice", "bob")
	if err != nil {
		t.Fatalf("SendFriendRequest returned error: %v", err)
	}
	if friendship.Status != model.FriendshipStatusPending {
		t.Errorf("status = %q, want pending", friendship.Status)
	}
	if friendship.RequesterID != "alice" || friendship.TargetID != "bob" {
		t.Errorf("edge %s->%s, want alice->bob", friendship.RequesterID, friendship.TargetID)
	}
}

func TestSendFriendRequestRejections(t *testing.T) {
	cases := []struct {
		name      string
		requester string
		target    string
	}{
		{"to self", "alice", "alice"},
		{"unknown target", "alice", "ghost"},
		{"unknown requester", "ghost", "bob"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newFriendshipServiceForTest()
			if _, err := svc.SendFriendRequest(tc.requester, tc.target); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSendFriendRequestDuplicate(t *testing.T) {
	svc, _ := newFriendshipServiceForTest()

	if _, err := svc.SendFriendRequest("alice", "bob"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := svc.SendFriendRequest("alice", "bob"); err == nil {
		t.Error("second request on a pending edge must fail")
	}
	// The reverse direction is the same unordered pair
	if _, err := svc.SendFriendRequest("bob", "alice"); err == nil {
		t.Error("reverse request on a pending edge must fail")
	}
}

func TestAcceptFriendRequest(t *testing.T) {
	svc, _ := newFriendshipServiceForTest()

	friendship, err := svc.SendFriendRequest("alice", "bob")
	if err != nil {
		t.Fatalf("SendFriendRequest returned error: %v", err)
	}

	// Only the target may accept
	if _, err := svc.AcceptFriendRequest(friendship.ID, "alice"); err == nil {
		t.Error("requester must not accept their own request")
	}

	accepted, err := svc.AcceptFriendRequest(friendship.ID, "bob")
	if err != nil {
		t.Fatalf("AcceptFriendRequest returned error: %v", err)
	}
	if accepted.Status != model.FriendshipStatusAccepted {
		t.Errorf("status = %q, want accepted", accepted.Status)
	}

	status, err := svc.GetFriendshipStatus("alice", "bob")
	if err != nil {
		t.Fatalf("GetFriendshipStatus returned error: %v", err)
	}
	if status != model.FriendshipStatusAccepted {
		t.Errorf("status = %q, want accepted", status)
	}
}

func TestRejectedRequestCanBeRetried(t *testing.T) {
	svc, _ := newFriendshipServiceForTest()

	friendship, err := svc.SendFriendRequest("alice", "bob")
	if err != nil {
		t.Fatalf("SendFriendRequest returned error: %v", err)
	}
	if err := svc.RejectFriendRequest(friendship.ID, "bob"); err != nil {
		t.Fatalf("RejectFriendRequest returned error: %v", err)
	}

	// A fresh request replaces the rejected edge
	retried, err := svc.SendFriendRequest("alice", "bob")
	if err != nil {
		t.Fatalf("retry after rejection failed: %v", err)
	}
	if retried.Status != model.FriendshipStatusPending {
		t.Errorf("status = %q, want pending", retried.Status)
	}
}

func TestRemoveFriend(t *testing.T) {
	svc, repo := newFriendshipServiceForTest()

	friendship, err := svc.SendFriendRequest("alice", "bob")
	if err != nil {
		t.Fatalf("SendFriendRequest returned error: %v", err)
	}
	if _, err := svc.AcceptFriendRequest(friendship.ID, "bob"); err != nil {
		t.Fatalf("AcceptFriendRequest returned error: %v", err)
	}

	if err := svc.RemoveFriend(friendship.ID, "ghost"); err == nil {
		t.Error("a third party must not remove the edge")
	}

	if err := svc.RemoveFriend(friendship.ID, "alice"); err != nil {
		t.Fatalf("RemoveFriend returned error: %v", err)
	}

	// Hard delete, no tombstone
	if _, err := repo.FindByID(friendship.ID); err == nil {
		t.Error("removed friendship still present in the store")
	}
	status, err := svc.GetFriendshipStatus("alice", "bob")
	if err != nil {
		t.Fatalf("GetFriendshipStatus returned error: %v", err)
	}
	if status != "none" {
		t.Errorf("status = %q, want none after removal", status)
	}
}
