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

type FriendshipRepository interface {
	Create(friendship *model.Friendship) error
	FindByID(id string) (*model.Friendship, error)
	FindBetween(userID1, userID2 string) (*model.Friendship, error)
	FindPendingByTargetID(targetID string) ([]*model.Friendship, error)
	FindAcceptedByUserID(userID string) ([]*model.Friendship, error)
	FindAcceptedByUserIDs(userIDs []string) ([]*model.Friendship, error)
	CountAcceptedByUserID(userID string) (int64, error)
	Update(friendship *model.Friendship) error
	Delete(id string) error
}

type friendshipRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	friendAcceptedCachePrefix = "friendship:accepted:"
	friendPendingCachePrefix  = "friendship:pending:"
	friendshipCacheExpiration = 15 * time.Minute
)

func NewFriendshipRepository(db *gorm.DB, redis *util.RedisClient) FriendshipRepository {
	return &friendshipRepository{
		db:    db,
		redis: redis,
	}
}

// Create creates a new friendship request
func (r *friendshipRepository) Create(friendship *model.Friendship) error {
	if err := r.db.Create(friendship).Error; err != nil {
		return err
	}

	r.invalidateUserCaches(friendship.RequesterID, friendship.TargetID)
	return nil
}

// FindByID finds a friendship by ID
func (r *friendshipRepository) FindByID(id string) (*model.Friendship, error) {
	var friendship model.Friendship
	err := r.db.Preload("Requester").Preload("Target").
		Where("id = ?", id).First(&friendship).Error
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// FindBetween finds the edge between two users regardless of direction.
// There is at most one per unordered pair.
func (r *friendshipRepository) FindBetween(userID1, userID2 string) (*model.Friendship, error) {
	var friendship model.Friendship
	err := r.db.Preload("Requester").Preload("Target").
		Where("(requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?)",
			userID1, userID2, userID2, userID1).
		First(&friendship).Error
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// FindPendingByTargetID finds pending requests addressed to a user
func (r *friendshipRepository) FindPendingByTargetID(targetID string) ([]*model.Friendship, error) {
	if cached, err := r.getListFromCache(friendPendingCachePrefix + targetID); err == nil && cached != nil {
		return cached, nil
	}

	var friendships []*model.Friendship
	err := r.db.Preload("Requester").Preload("Target").
		Where("target_id = ? AND status = ?", targetID, model.FriendshipStatusPending).
		Order("created_at DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	r.cacheList(friendPendingCachePrefix+targetID, friendships)
	return friendships, nil
}

// FindAcceptedByUserID finds accepted edges touching a user, either direction
func (r *friendshipRepository) FindAcceptedByUserID(userID string) ([]*model.Friendship, error) {
	if cached, err := r.getListFromCache(friendAcceptedCachePrefix + userID); err == nil && cached != nil {
		return cached, nil
	}

	var friendships []*model.Friendship
	err := r.db.Preload("Requester").Preload("Target").
		Where("(requester_id = ? OR target_id = ?) AND status = ?", userID, userID, model.FriendshipStatusAccepted).
		Order("created_at DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	r.cacheList(friendAcceptedCachePrefix+userID, friendships)
	return friendships, nil
}

// FindAcceptedByUserIDs finds accepted edges touching any of the given users
// in one query. Used for the hop-2 expansion of the reachability resolver.
func (r *friendshipRepository) FindAcceptedByUserIDs(userIDs []string) ([]*model.Friendship, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var friendships []*model.Friendship
	err := r.db.
		Where("(requester_id IN ? OR target_id IN ?) AND status = ?", userIDs, userIDs, model.FriendshipStatusAccepted).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	return friendships, nil
}

// CountAcceptedByUserID counts a user's friends
func (r *friendshipRepository) CountAcceptedByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Friendship{}).
		Where("(requester_id = ? OR target_id = ?) AND status = ?", userID, userID, model.FriendshipStatusAccepted).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Update updates a friendship
func (r *friendshipRepository) Update(friendship *model.Friendship) error {
	if err := r.db.Save(friendship).Error; err != nil {
		return err
	}

	r.invalidateUserCaches(friendship.RequesterID, friendship.TargetID)
	return nil
}

// Delete hard-deletes a friendship edge
func (r *friendshipRepository) Delete(id string) error {
	var friendship model.Friendship
	if err := r.db.Where("id = ?", id).First(&friendship).Error; err != nil {
		return err
	}

	result := r.db.Delete(&friendship)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("friendship not found")
	}

	r.invalidateUserCaches(friendship.RequesterID, friendship.TargetID)
	return nil
}

// Cache helpers
func (r *friendshipRepository) cacheList(key string, friendships []*model.Friendship) {
	if r.redis == nil {
		return
	}

	data, err := json.Marshal(friendships)
	if err != nil {
		return
	}
	r.redis.Set(key, string(data), friendshipCacheExpiration)
}

func (r *friendshipRepository) getListFromCache(key string) ([]*model.Friendship, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var friendships []*model.Friendship
	if err := json.Unmarshal([]byte(cached), &friendships); err != nil {
		return nil, err
	}
	return friendships, nil
}

func (r *friendshipRepository) invalidateUserCaches(userIDs ...string) {
	if r.redis == nil {
		return
	}
	for _, id := range userIDs {
		r.redis.Delete(friendAcceptedCachePrefix + id)
		r.redis.Delete(friendPendingCachePrefix + id)
	}
}
