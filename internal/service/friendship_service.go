package service

import (
	"errors"
	"fmt"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/repository"

	"gorm.io/gorm"
)

type FriendshipService interface {
	SendFriendRequest(requesterID, targetID string) (*model.Friendship, error)
	AcceptFriendRequest(friendshipID, userID string) (*model.Friendship, error)
	RejectFriendRequest(friendshipID, userID string) error
	RemoveFriend(friendshipID, userID string) error
	GetFriendshipByID(friendshipID string) (*model.Friendship, error)
	GetPendingRequests(userID string) ([]*model.Friendship, error)
	GetFriends(userID string) ([]*model.Friendship, error)
	GetFriendsCount(userID string) (int64, error)
	GetFriendshipStatus(userID1, userID2 string) (string, error)
}

type friendshipService struct {
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
	notifService   NotificationService
}

func NewFriendshipService(
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	notifService NotificationService,
) FriendshipService {
	return &friendshipService{
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		notifService:   notifService,
	}
}

// SendFriendRequest creates a pending edge toward another user
func (s *friendshipService) SendFriendRequest(requesterID, targetID string) (*model.Friendship, error) {
	if requesterID == targetID {
		return nil, errors.New("cannot send friend request to yourself")
	}

	requester, err := s.userRepo.FindByID(requesterID)
	if err != nil {
		return nil, errors.New("requester not found")
	}

	if _, err := s.userRepo.FindByID(targetID); err != nil {
		return nil, errors.New("target user not found")
	}

	// One active edge per unordered pair. A previously rejected request
	// may be retried: the old edge is replaced.
	existing, err := s.friendshipRepo.FindBetween(requesterID, targetID)
	if err == nil && existing != nil {
		switch existing.Status {
		case model.FriendshipStatusPending:
			return nil, errors.New("friend request already pending")
		case model.FriendshipStatusAccepted:
			return nil, errors.New("already friends")
		case model.FriendshipStatusRejected:
			if err := s.friendshipRepo.Delete(existing.ID); err != nil {
				return nil, fmt.Errorf("failed to replace rejected request: %w", err)
			}
		}
	}

	friendship := &model.Friendship{
		RequesterID: requesterID,
		TargetID:    targetID,
		Status:      model.FriendshipStatusPending,
	}

	if err := s.friendshipRepo.Create(friendship); err != nil {
		return nil, fmt.Errorf("failed to create friendship request: %w", err)
	}

	// Notify asynchronously, the request itself must not wait on it
	go func() {
		s.notifService.SendFriendRequestNotification(targetID, requesterID, requester.FullName, friendship.ID)
	}()

	return s.friendshipRepo.FindByID(friendship.ID)
}

// AcceptFriendRequest promotes a pending edge; it becomes undirected
func (s *friendshipService) AcceptFriendRequest(friendshipID, userID string) (*model.Friendship, error) {
	friendship, err := s.friendshipRepo.FindByID(friendshipID)
	if err != nil {
		return nil, errors.New("friendship not found")
	}

	if friendship.TargetID != userID {
		return nil, errors.New("unauthorized: you can only accept requests sent to you")
	}

	if friendship.Status == model.FriendshipStatusAccepted {
		return friendship, nil
	}
	if friendship.Status != model.FriendshipStatusPending {
		return nil, errors.New("cannot accept a non-pending request")
	}

	friendship.Status = model.FriendshipStatusAccepted
	if err := s.friendshipRepo.Update(friendship); err != nil {
		return nil, fmt.Errorf("failed to accept friendship: %w", err)
	}

	target, err := s.userRepo.FindByID(userID)
	if err == nil {
		go func() {
			s.notifService.SendFriendAcceptedNotification(friendship.RequesterID, userID, target.FullName, friendship.ID)
		}()
	}

	return s.friendshipRepo.FindByID(friendship.ID)
}

// RejectFriendRequest marks a pending edge rejected
func (s *friendshipService) RejectFriendRequest(friendshipID, userID string) error {
	friendship, err := s.friendshipRepo.FindByID(friendshipID)
	if err != nil {
		return errors.New("friendship not found")
	}

	if friendship.TargetID != userID {
		return errors.New("unauthorized: you can only reject requests sent to you")
	}

	if friendship.Status != model.FriendshipStatusPending {
		return errors.New("cannot reject a non-pending request")
	}

	friendship.Status = model.FriendshipStatusRejected
	if err := s.friendshipRepo.Update(friendship); err != nil {
		return fmt.Errorf("failed to reject friendship: %w", err)
	}

	return nil
}

// RemoveFriend severs the relationship. Either endpoint may do it; the edge
// simply ceases to exist.
func (s *friendshipService) RemoveFriend(friendshipID, userID string) error {
	friendship, err := s.friendshipRepo.FindByID(friendshipID)
	if err != nil {
		return errors.New("friendship not found")
	}

	if friendship.RequesterID != userID && friendship.TargetID != userID {
		return errors.New("unauthorized: you are not part of this friendship")
	}

	if err := s.friendshipRepo.Delete(friendshipID); err != nil {
		return fmt.Errorf("failed to remove friendship: %w", err)
	}

	if remover, err := s.userRepo.FindByID(userID); err == nil {
		otherID := friendship.OtherUserID(userID)
		go func() {
			s.notifService.SendFriendRemovedNotification(otherID, userID, remover.FullName)
		}()
	}

	return nil
}

// GetFriendshipByID returns a single friendship
func (s *friendshipService) GetFriendshipByID(friendshipID string) (*model.Friendship, error) {
	return s.friendshipRepo.FindByID(friendshipID)
}

// GetPendingRequests returns pending requests addressed to the user
func (s *friendshipService) GetPendingRequests(userID string) ([]*model.Friendship, error) {
	return s.friendshipRepo.FindPendingByTargetID(userID)
}

// GetFriends returns the user's accepted friendships
func (s *friendshipService) GetFriends(userID string) ([]*model.Friendship, error) {
	return s.friendshipRepo.FindAcceptedByUserID(userID)
}

// GetFriendsCount counts the user's friends
func (s *friendshipService) GetFriendsCount(userID string) (int64, error) {
	return s.friendshipRepo.CountAcceptedByUserID(userID)
}

// GetFriendshipStatus reports the relation between two users: "none",
// "pending", "accepted" or "rejected"
func (s *friendshipService) GetFriendshipStatus(userID1, userID2 string) (string, error) {
	friendship, err := s.friendshipRepo.FindBetween(userID1, userID2)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "none", nil
		}
		return "", err
	}
	return friendship.Status, nil
}
