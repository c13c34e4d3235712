package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/config"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/service"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// Function labels for independently throttled operations
const (
	fnCheckEmail         = "check_email"
	fnCheckEmailNegative = "check_email_negative"
)

type UserHandler struct {
	authService      service.AuthService
	rateLimitService service.RateLimitService
	cfg              *config.Config
}

func NewUserHandler(
	authService service.AuthService,
	rateLimitService service.RateLimitService,
	cfg *config.Config,
) *UserHandler {
	return &UserHandler{
		authService:      authService,
		rateLimitService: rateLimitService,
		cfg:              cfg,
	}
}

// SearchUsers handles searching members by keyword
// GET /api/v1/users/search?q=keyword&limit=20&offset=0
func (h *UserHandler) SearchUsers(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		util.BadRequest(c, "Search keyword is required")
		return
	}

	limit, offset := paginationParams(c, 20, 100)

	users, err := h.authService.SearchUsers(keyword, limit, offset)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", gin.H{
		"users":  users,
		"limit":  limit,
		"offset": offset,
		"total":  len(users),
	})
}

// CheckEmailExists reports whether an email already belongs to a member.
// Unauthenticated (the invitation form calls it), so it sits behind the
// abuse-control layer: IP and session-fingerprint limits both apply, and
// repeated misses are flagged for review as probing.
// POST /api/v1/users/check-email
func (h *UserHandler) CheckEmailExists(c *gin.Context) {
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
	window := time.Duration(h.cfg.EmailCheckWindowMinutes) * time.Minute

	result := h.rateLimitService.CheckRequest(ip, userAgent, acceptLanguage, fnCheckEmail, h.cfg.EmailCheckMaxAttempts, window)
	if !result.Allowed {
		util.TooManyRequests(c, result.Error)
		return
	}
	// The attempt counts whether or not the lookup succeeds
	h.rateLimitService.LogRequest(ip, userAgent, acceptLanguage, fnCheckEmail)

	exists, err := h.authService.EmailExists(req.Email)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to check email", nil)
		return
	}

	if !exists {
		// Misses are tracked separately: a caller enumerating addresses
		// produces many of them while staying under the hard limit.
		fingerprint := service.SessionFingerprint(ip, userAgent, acceptLanguage)
		h.rateLimitService.LogAttempt(ip, fnCheckEmailNegative)
		h.rateLimitService.LogAttempt(fingerprint, fnCheckEmailNegative)
		h.rateLimitService.FlagIfSuspicious(
			fingerprint, fnCheckEmailNegative,
			"repeated negative email lookups",
			h.cfg.SuspiciousLookupAttempts, window,
			map[string]interface{}{"ip": ip},
		)
	}

	util.SuccessResponse(c, http.StatusOK, "Email checked", gin.H{"exists": exists})
}

// paginationParams reads limit/offset query params with bounds
func paginationParams(c *gin.Context, defaultLimit, maxLimit int) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}
