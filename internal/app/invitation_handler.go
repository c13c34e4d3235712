package app

import (
	"net/http"
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/config"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/service"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

const fnCreateInvitation = "create_invitation"

type InvitationHandler struct {
	invitationService service.InvitationService
	rateLimitService  service.RateLimitService
	cfg               *config.Config
}

func NewInvitationHandler(
	invitationService service.InvitationService,
	rateLimitService service.RateLimitService,
	cfg *config.Config,
) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		rateLimitService:  rateLimitService,
		cfg:               cfg,
	}
}

// CreateInvitation invites an email address into the network. Membership
// only grows through these, so the endpoint is limited per IP and per
// session fingerprint to keep one member from blasting invitations.
// POST /api/v1/invitations
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	ip := c.ClientIP()
	userAgent := c.GetHeader("User-Agent")
	acceptLanguage := c.GetHeader("Accept-Language")
	window := time.Duration(h.cfg.InviteWindowMinutes) * time.Minute

	result := h.rateLimitService.CheckRequest(ip, userAgent, acceptLanguage, fnCreateInvitation, h.cfg.InviteMaxAttempts, window)
	if !result.Allowed {
		util.TooManyRequests(c, result.Error)
		return
	}
	h.rateLimitService.LogRequest(ip, userAgent, acceptLanguage, fnCreateInvitation)

	invitation, err := h.invitationService.CreateInvitation(userID.(string), req.Email)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Invitation created successfully", gin.H{"invitation": invitation})
}

// GetInvitation resolves an invitation token. Public: the invitee is not
// a member yet when they open the signup link.
// GET /api/v1/invitations/:token
func (h *InvitationHandler) GetInvitation(c *gin.Context) {
	invitation, err := h.invitationService.GetInvitationByToken(c.Param("token"))
	if err != nil {
		util.NotFound(c, "Invitation not found")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Invitation retrieved successfully", gin.H{
		"email":      invitation.Email,
		"status":     invitation.Status,
		"expires_at": invitation.ExpiresAt,
	})
}

// GetMyInvitations lists the invitations the caller has sent
// GET /api/v1/invitations
func (h *InvitationHandler) GetMyInvitations(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	limit, offset := paginationParams(c, 50, 200)

	invitations, err := h.invitationService.GetInvitationsByInviter(userID.(string), limit, offset)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Invitations retrieved successfully", gin.H{"invitations": invitations})
}
