package service

import (
	"fmt"
	"sort"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/repository"
)

// Hop distances within the trust network
const (
	HopFriend         = 1 // direct friend
	HopFriendOfFriend = 2
)

// NetworkService resolves which peers a user can see. Listings are visible
// to their owner, the owner's friends and friends-of-friends; nothing else.
type NetworkService interface {
	// ResolveReachable returns every peer within two hops of the origin
	// over accepted friendship edges, mapped to its hop distance. A peer
	// reachable both directly and through an intermediate is reported at
	// hop 1. The origin itself is never included. All-or-nothing: on a
	// store failure the whole call fails with ErrQueryFailed.
	ResolveReachable(originUserID string) (map[string]int, error)

	// MutualFriends returns the full names of users befriended by both
	// userA and userB, in a stable order for display. An empty result is
	// valid; the UI then falls back to a generic label.
	MutualFriends(userA, userB string) ([]string, error)
}

type networkService struct {
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
}

func NewNetworkService(friendshipRepo repository.FriendshipRepository, userRepo repository.UserRepository) NetworkService {
	return &networkService{
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
	}
}

// ResolveReachable runs a breadth-first expansion depth-limited to 2
func (s *networkService) ResolveReachable(originUserID string) (map[string]int, error) {
	reachable := make(map[string]int)

	// Hop 1: accepted edges touching the origin, either direction
	directEdges, err := s.friendshipRepo.FindAcceptedByUserID(originUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading friends of %s: %v", ErrQueryFailed, originUserID, err)
	}

	hop1 := make([]string, 0, len(directEdges))
	for _, edge := range directEdges {
		peer := edge.OtherUserID(originUserID)
		if peer == originUserID {
			continue // self-edge, should not exist
		}
		if _, seen := reachable[peer]; !seen {
			reachable[peer] = HopFriend
			hop1 = append(hop1, peer)
		}
	}

	if len(hop1) == 0 {
		return reachable, nil
	}

	// Hop 2: everyone adjacent to a hop-1 peer, minus the origin and the
	// hop-1 peers themselves. Shorter distance wins the dedup.
	secondEdges, err := s.friendshipRepo.FindAcceptedByUserIDs(hop1)
	if err != nil {
		return nil, fmt.Errorf("%w: expanding network of %s: %v", ErrQueryFailed, originUserID, err)
	}

	for _, edge := range secondEdges {
		for _, peer := range []string{edge.RequesterID, edge.TargetID} {
			if peer == originUserID {
				continue
			}
			if _, seen := reachable[peer]; !seen {
				reachable[peer] = HopFriendOfFriend
			}
		}
	}

	return reachable, nil
}

// MutualFriends intersects the friend sets of two users
func (s *networkService) MutualFriends(userA, userB string) ([]string, error) {
	edgesA, err := s.friendshipRepo.FindAcceptedByUserID(userA)
	if err != nil {
		return nil, fmt.Errorf("%w: loading friends of %s: %v", ErrQueryFailed, userA, err)
	}
	edgesB, err := s.friendshipRepo.FindAcceptedByUserID(userB)
	if err != nil {
		return nil, fmt.Errorf("%w: loading friends of %s: %v", ErrQueryFailed, userB, err)
	}

	friendsOfA := make(map[string]bool, len(edgesA))
	for _, edge := range edgesA {
		friendsOfA[edge.OtherUserID(userA)] = true
	}

	var mutualIDs []string
	seen := make(map[string]bool)
	for _, edge := range edgesB {
		peer := edge.OtherUserID(userB)
		if friendsOfA[peer] && !seen[peer] && peer != userA && peer != userB {
			mutualIDs = append(mutualIDs, peer)
			seen[peer] = true
		}
	}

	if len(mutualIDs) == 0 {
		return nil, nil
	}

	users, err := s.userRepo.FindByIDs(mutualIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: loading mutual friends: %v", ErrQueryFailed, err)
	}

	names := make([]string, 0, len(users))
	for _, user := range users {
		names = append(names, user.FullName)
	}
	sort.Strings(names)
	return names, nil
}

// ConnectionLabel builds the human label shown on hop-2 listings, e.g.
// "friend of Ana" or "friend of Ana and 2 more". With no mutual friends
// known it falls back to the generic label.
func ConnectionLabel(mutualNames []string) string {
	switch len(mutualNames) {
	case 0:
		return "friend of a friend"
	case 1:
		return fmt.Sprintf("friend of %s", mutualNames[0])
	default:
		return fmt.Sprintf("friend of %s and %d more", mutualNames[0], len(mutualNames)-1)
	}
}
