package app

import (
	"net/http"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/service"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

type FriendshipHandler struct {
	friendshipService service.FriendshipService
}

func NewFriendshipHandler(friendshipService service.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendshipService: friendshipService}
}

// SendFriendRequest handles sending a friend request
// POST /api/v1/friendships/request
func (h *FriendshipHandler) SendFriendRequest(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		TargetID string `json:"target_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	friendship, err := h.friendshipService.SendFriendRequest(userID.(string), req.TargetID)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Friend request sent successfully", gin.H{"friendship": friendship})
}

// AcceptFriendRequest handles accepting a friend request
// POST /api/v1/friendships/:id/accept
func (h *FriendshipHandler) AcceptFriendRequest(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	friendshipID := c.Param("id")
	if friendshipID == "" {
		util.BadRequest(c, "Friendship ID is required")
		return
	}

	friendship, err := h.friendshipService.AcceptFriendRequest(friendshipID, userID.(string))
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request accepted successfully", gin.H{"friendship": friendship})
}

// RejectFriendRequest handles rejecting a friend request
// POST /api/v1/friendships/:id/reject
func (h *FriendshipHandler) RejectFriendRequest(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	friendshipID := c.Param("id")
	if friendshipID == "" {
		util.BadRequest(c, "Friendship ID is required")
		return
	}

	if err := h.friendshipService.RejectFriendRequest(friendshipID, userID.(string)); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request rejected successfully", nil)
}

// RemoveFriend handles severing a friendship
// DELETE /api/v1/friendships/:id
func (h *FriendshipHandler) RemoveFriend(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	friendshipID := c.Param("id")
	if friendshipID == "" {
		util.BadRequest(c, "Friendship ID is required")
		return
	}

	if err := h.friendshipService.RemoveFriend(friendshipID, userID.(string)); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend removed successfully", nil)
}

// GetPendingRequests returns pending requests addressed to the caller
// GET /api/v1/friendships/pending
func (h *FriendshipHandler) GetPendingRequests(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	friendships, err := h.friendshipService.GetPendingRequests(userID.(string))
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Pending requests retrieved successfully", gin.H{"friendships": friendships})
}

// GetFriends returns the caller's accepted friendships
// GET /api/v1/friendships/friends
func (h *FriendshipHandler) GetFriends(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	friendships, err := h.friendshipService.GetFriends(userID.(string))
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friends retrieved successfully", gin.H{"friendships": friendships})
}

// GetFriendsCount returns a user's friend count
// GET /api/v1/friendships/count/:userID
func (h *FriendshipHandler) GetFriendsCount(c *gin.Context) {
	targetUserID := c.Param("userID")
	if targetUserID == "" {
		util.BadRequest(c, "User ID is required")
		return
	}

	count, err := h.friendshipService.GetFriendsCount(targetUserID)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friends count retrieved successfully", gin.H{"count": count})
}

// GetFriendshipStatus returns the relation between the caller and a user
// GET /api/v1/friendships/status/:userID
func (h *FriendshipHandler) GetFriendshipStatus(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	otherUserID := c.Param("userID")
	if otherUserID == "" {
		util.BadRequest(c, "User ID is required")
		return
	}

	status, err := h.friendshipService.GetFriendshipStatus(userID.(string), otherUserID)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friendship status retrieved successfully", gin.H{"status": status})
}
