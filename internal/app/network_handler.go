package app

import (
	"net/http"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/service"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

type NetworkHandler struct {
	networkService service.NetworkService
}

func NewNetworkHandler(networkService service.NetworkService) *NetworkHandler {
	return &NetworkHandler{networkService: networkService}
}

// GetMyNetwork returns every peer the caller can see, with hop distances
// GET /api/v1/network
func (h *NetworkHandler) GetMyNetwork(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	reachable, err := h.networkService.ResolveReachable(userID.(string))
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to resolve network", nil)
		return
	}

	peers := make([]gin.H, 0, len(reachable))
	for peerID, hop := range reachable {
		peers = append(peers, gin.H{"user_id": peerID, "hop_distance": hop})
	}

	util.SuccessResponse(c, http.StatusOK, "Network resolved successfully", gin.H{
		"peers": peers,
		"total": len(peers),
	})
}

// GetMutualFriends returns the names shared between the caller and a user,
// for the "friend of X and N more" label
// GET /api/v1/network/mutual/:userID
func (h *NetworkHandler) GetMutualFriends(c *gin.Context) {
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

	names, err := h.networkService.MutualFriends(userID.(string), otherUserID)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to load mutual friends", nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Mutual friends retrieved successfully", gin.H{
		"mutual_friends": names,
		"label":          service.ConnectionLabel(names),
	})
}
