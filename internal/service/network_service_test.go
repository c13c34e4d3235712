package service

import (
	"errors"
	"testing"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
)

// fakeFriendshipRepo serves accepted edges from an in-memory list. Only the
// methods the network service touches are backed; the rest are unused here.
type fakeFriendshipRepo struct {
	edges []*model.Friendship
	err   error
}

func accepted(requesterID, targetID string) *model.Friendship {
	return &model.Friendship{
		RequesterID: requesterID,
		TargetID:    targetID,
		Status:      model.FriendshipStatusAccepted,
	}
}

func (f *fakeFriendshipRepo) touching(userID string) []*model.Friendship {
	var out []*model.Friendship
	for _, e := range f.edges {
		if e.Status != model.FriendshipStatusAccepted {
			continue
		}
		if e.RequesterID == userID || e.TargetID == userID {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeFriendshipRepo) Create(friendship *model.Friendship) error { return nil }
func (f *fakeFriendshipRepo) FindByID(id string) (*model.Friendship, error) {
	return nil, errors.New("not found")
}
func (f *fakeFriendshipRepo) FindBetween(a, b string) (*model.Friendship, error) {
	return nil, errors.New("not found")
}
func (f *fakeFriendshipRepo) FindPendingByTargetID(targetID string) ([]*model.Friendship, error) {
	return nil, nil
}

func (f *fakeFriendshipRepo) FindAcceptedByUserID(userID string) ([]*model.Friendship, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.touching(userID), nil
}

func (f *fakeFriendshipRepo) FindAcceptedByUserIDs(userIDs []string) ([]*model.Friendship, error) {
	if f.err != nil {
		return nil, f.err
	}
	seen := make(map[*model.Friendship]bool)
	var out []*model.Friendship
	for _, id := range userIDs {
		for _, e := range f.touching(id) {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeFriendshipRepo) CountAcceptedByUserID(userID string) (int64, error) {
	return int64(len(f.touching(userID))), nil
}
func (f *fakeFriendshipRepo) Update(friendship *model.Friendship) error { return nil }
func (f *fakeFriendshipRepo) Delete(id string) error                   { return nil }

type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) Create(user *model.User) error { return nil }
func (f *fakeUserRepo) FindByID(id string) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}
func (f *fakeUserRepo) FindByIDs(ids []string) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	return nil, errors.New("user not found")
}
func (f *fakeUserRepo) EmailExists(email string) (bool, error) { return false, nil }
func (f *fakeUserRepo) Search(keyword string, limit, offset int) ([]*model.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) Update(user *model.User) error { return nil }
func (f *fakeUserRepo) Delete(id string) error        { return nil }

func newNetworkServiceForTest(edges []*model.Friendship) NetworkService {
	return NewNetworkService(&fakeFriendshipRepo{edges: edges}, &fakeUserRepo{})
}

func TestResolveReachableTwoHops(t *testing.T) {
	// U has friends A and B; A has friend C; D is outside the network
	svc := newNetworkServiceForTest([]*model.Friendship{
		accepted("u", "a"),
		accepted("b", "u"),
		accepted("a", "c"),
		accepted("c", "far"),
		accepted("d", "e"),
	})

	reachable, err := svc.ResolveReachable("u")
	if err != nil {
		t.Fatalf("ResolveReachable returned error: %v", err)
	}

	want := map[string]int{"a": HopFriend, "b": HopFriend, "c": HopFriendOfFriend}
	if len(reachable) != len(want) {
		t.Fatalf("got %d reachable peers %v, want %d", len(reachable), reachable, len(want))
	}
	for id, hop := range want {
		if reachable[id] != hop {
			t.Errorf("peer %s: got hop %d, want %d", id, reachable[id], hop)
		}
	}
	for _, outside := range []string{"far", "d", "e"} {
		if _, ok := reachable[outside]; ok {
			t.Errorf("peer %s is outside two hops and must not be reachable", outside)
		}
	}
}

func TestResolveReachableDirectFriendWins(t *testing.T) {
	// D is both a direct friend of U and a friend of A; hop 1 must win
	svc := newNetworkServiceForTest([]*model.Friendship{
		accepted("u", "a"),
		accepted("u", "d"),
		accepted("a", "d"),
	})

	reachable, err := svc.ResolveReachable("u")
	if err != nil {
		t.Fatalf("ResolveReachable returned error: %v", err)
	}
	if reachable["d"] != HopFriend {
		t.Errorf("peer d: got hop %d, want %d", reachable["d"], HopFriend)
	}
}

func TestResolveReachableExcludesOrigin(t *testing.T) {
	// U - A - U cycle through the hop-2 expansion must not reintroduce U
	svc := newNetworkServiceForTest([]*model.Friendship{
		accepted("u", "a"),
		accepted("a", "b"),
	})

	reachable, err := svc.ResolveReachable("u")
	if err != nil {
		t.Fatalf("ResolveReachable returned error: %v", err)
	}
	if _, ok := reachable["u"]; ok {
		t.Error("origin must never appear in its own network")
	}
}

func TestResolveReachableDirectionIrrelevant(t *testing.T) {
	// Accepted edges are undirected: who sent the request does not matter
	cases := []struct {
		name  string
		edges []*model.Friendship
	}{
		{"origin requested", []*model.Friendship{accepted("u", "a")}},
		{"origin was targeted", []*model.Friendship{accepted("a", "u")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newNetworkServiceForTest(tc.edges)
			reachable, err := svc.ResolveReachable("u")
			if err != nil {
				t.Fatalf("ResolveReachable returned error: %v", err)
			}
			if reachable["a"] != HopFriend {
				t.Errorf("peer a: got hop %d, want %d", reachable["a"], HopFriend)
			}
		})
	}
}

func TestResolveReachableIgnoresPending(t *testing.T) {
	svc := newNetworkServiceForTest([]*model.Friendship{
		{RequesterID: "u", TargetID: "a", Status: model.FriendshipStatusPending},
		{RequesterID: "b", TargetID: "u", Status: model.FriendshipStatusRejected},
	})

	reachable, err := svc.ResolveReachable("u")
	if err != nil {
		t.Fatalf("ResolveReachable returned error: %v", err)
	}
	if len(reachable) != 0 {
		t.Errorf("pending and rejected edges leaked into the network: %v", reachable)
	}
}

func TestResolveReachableNoFriends(t *testing.T) {
	svc := newNetworkServiceForTest(nil)

	reachable, err := svc.ResolveReachable("u")
	if err != nil {
		t.Fatalf("ResolveReachable returned error: %v", err)
	}
	if len(reachable) != 0 {
		t.Errorf("expected empty network, got %v", reachable)
	}
}

func TestResolveReachableStoreError(t *testing.T) {
	repo := &fakeFriendshipRepo{err: errors.New("connection refused")}
	svc := NewNetworkService(repo, &fakeUserRepo{})

	if _, err := svc.ResolveReachable("u"); !errors.Is(err, ErrQueryFailed) {
		t.Errorf("got error %v, want ErrQueryFailed", err)
	}
}

func TestMutualFriends(t *testing.T) {
	friendships := []*model.Friendship{
		accepted("u", "ana"),
		accepted("u", "bo"),
		accepted("ana", "x"),
		accepted("bo", "x"),
		accepted("u", "solo"),
	}
	users := map[string]*model.User{
		"ana": {ID: "ana", FullName: "Ana Torres"},
		"bo":  {ID: "bo", FullName: "Bo Lindqvist"},
	}
	svc := NewNetworkService(&fakeFriendshipRepo{edges: friendships}, &fakeUserRepo{users: users})

	names, err := svc.MutualFriends("u", "x")
	if err != nil {
		t.Fatalf("MutualFriends returned error: %v", err)
	}
	if len(names) != 2 || names[0] != "Ana Torres" || names[1] != "Bo Lindqvist" {
		t.Errorf("got %v, want [Ana Torres Bo Lindqvist]", names)
	}
}

func TestMutualFriendsNone(t *testing.T) {
	svc := newNetworkServiceForTest([]*model.Friendship{
		accepted("u", "a"),
		accepted("x", "b"),
	})

	names, err := svc.MutualFriends("u", "x")
	if err != nil {
		t.Fatalf("MutualFriends returned error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("got %v, want no mutual friends", names)
	}
}

func TestConnectionLabel(t *testing.T) {
	cases := []struct {
		names []string
		want  string
	}{
		{nil, "friend of a friend"},
		{[]string{"Ana"}, "friend of Ana"},
		{[]string{"Ana", "Bo"}, "friend of Ana and 1 more"},
		{[]string{"Ana", "Bo", "Cy"}, "friend of Ana and 2 more"},
	}

	for _, tc := range cases {
		if got := ConnectionLabel(tc.names); got != tc.want {
			t.Errorf("ConnectionLabel(%v) = %q, want %q", tc.names, got, tc.want)
		}
	}
}
