package app

import (
	"io"
	"net/http"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/service"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

const maxTicketImageSize = 5 << 20 // 5 MB

type TicketHandler struct {
	ticketService    service.TicketService
	feedService      service.FeedService
	cloudinaryClient *util.CloudinaryClient
}

func NewTicketHandler(
	ticketService service.TicketService,
	feedService service.FeedService,
	cloudinaryClient *util.CloudinaryClient,
) *TicketHandler {
	return &TicketHandler{
		ticketService:    ticketService,
		feedService:      feedService,
		cloudinaryClient: cloudinaryClient,
	}
}

// GetFeed returns all listings visible to the caller. One reachability
// resolution covers tickets and wanted tickets.
// GET /api/v1/market/feed
func (h *TicketHandler) GetFeed(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	limit, offset := paginationParams(c, 50, 200)

	feed, err := h.feedService.GetFeed(userID.(string), limit, offset)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Feed retrieved successfully", feed)
}

// CreateTicket handles creating a ticket listing
// POST /api/v1/tickets
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req service.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.CreateTicket(userID.(string), req)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Ticket listed successfully", gin.H{"ticket": ticket})
}

// GetTicket returns one ticket, if the caller may see it
// GET /api/v1/tickets/:id
func (h *TicketHandler) GetTicket(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	ticket, err := h.ticketService.GetTicketByID(c.Param("id"), userID.(string))
	if err != nil {
		util.NotFound(c, err.Error())
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Ticket retrieved successfully", gin.H{"ticket": ticket})
}

// GetMyTickets returns the caller's own listings
// GET /api/v1/tickets/mine
func (h *TicketHandler) GetMyTickets(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	limit, offset := paginationParams(c, 50, 200)

	tickets, err := h.ticketService.GetTicketsByOwnerID(userID.(string), limit, offset)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Tickets retrieved successfully", gin.H{"tickets": tickets})
}

// UpdateTicket updates a listing owned by the caller
// PUT /api/v1/tickets/:id
func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req service.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.UpdateTicket(userID.(string), c.Param("id"), req)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Ticket updated successfully", gin.H{"ticket": ticket})
}

// MarkSold marks a listing sold
// POST /api/v1/tickets/:id/sold
func (h *TicketHandler) MarkSold(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	ticket, err := h.ticketService.MarkSold(userID.(string), c.Param("id"))
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Ticket marked as sold", gin.H{"ticket": ticket})
}

// DeleteTicket deletes a listing owned by the caller
// DELETE /api/v1/tickets/:id
func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.ticketService.DeleteTicket(userID.(string), c.Param("id")); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Ticket deleted successfully", nil)
}

// UploadTicketImage uploads a photo of the ticket (seat view, seal) and
// attaches it to the listing
// POST /api/v1/tickets/:id/image
func (h *TicketHandler) UploadTicketImage(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if h.cloudinaryClient == nil {
		util.ErrorResponse(c, http.StatusServiceUnavailable, "Image uploads are disabled", nil)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.BadRequest(c, "Image file is required")
		return
	}
	if fileHeader.Size > maxTicketImageSize {
		util.BadRequest(c, "Image must be smaller than 5 MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to read image", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to read image", nil)
		return
	}

	imageURL, err := h.cloudinaryClient.UploadImageFromMemory(data, fileHeader.Filename)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to upload image", nil)
		return
	}

	ticket, err := h.ticketService.SetTicketImage(userID.(string), c.Param("id"), imageURL)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Image uploaded successfully", gin.H{"ticket": ticket})
}
