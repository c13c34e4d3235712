package app

import (
	"net/http"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/service"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

type WantedTicketHandler struct {
	wantedService service.WantedTicketService
}

func NewWantedTicketHandler(wantedService service.WantedTicketService) *WantedTicketHandler {
	return &WantedTicketHandler{wantedService: wantedService}
}

// CreateWantedTicket handles creating a "looking for" listing
// POST /api/v1/wanted-tickets
func (h *WantedTicketHandler) CreateWantedTicket(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req service.CreateWantedTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	wanted, err := h.wantedService.CreateWantedTicket(userID.(string), req)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Wanted ticket created successfully", gin.H{"wanted_ticket": wanted})
}

// GetMyWantedTickets returns the caller's own wanted listings
// GET /api/v1/wanted-tickets/mine
func (h *WantedTicketHandler) GetMyWantedTickets(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	limit, offset := paginationParams(c, 50, 200)

	wanted, err := h.wantedService.GetWantedTicketsByOwnerID(userID.(string), limit, offset)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Wanted tickets retrieved successfully", gin.H{"wanted_tickets": wanted})
}

// UpdateWantedTicket updates a wanted listing owned by the caller
// PUT /api/v1/wanted-tickets/:id
func (h *WantedTicketHandler) UpdateWantedTicket(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req service.UpdateWantedTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	wanted, err := h.wantedService.UpdateWantedTicket(userID.(string), c.Param("id"), req)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Wanted ticket updated successfully", gin.H{"wanted_ticket": wanted})
}

// DeleteWantedTicket deletes a wanted listing owned by the caller
// DELETE /api/v1/wanted-tickets/:id
func (h *WantedTicketHandler) DeleteWantedTicket(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.wantedService.DeleteWantedTicket(userID.(string), c.Param("id")); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Wanted ticket deleted successfully", nil)
}
