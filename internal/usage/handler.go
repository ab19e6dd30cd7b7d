package usage

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvmatch-backend/internal/shared/server/middleware"
	"cvmatch-backend/internal/shared/server/respond"
)

// maxTopupCredits caps a single topup purchase.
const maxTopupCredits = 500

// Handler exposes credit endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches usage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.getUsage)
	rg.POST("/usage/topup", h.topup)
}

// RegisterDevRoutes attaches dev-only usage routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reset", h.resetUsage)
}

func (h *Handler) getUsage(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.EnsurePeriod(c.Request.Context(), userID)
	if err != nil {
		respondUsageError(c, err, "failed to fetch usage")
		return
	}
	respond.JSON(c, http.StatusOK, usageResponse(u))
}

type topupRequest struct {
	Credits int `json:"credits"`
}

func (h *Handler) topup(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req topupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Credits <= 0 || req.Credits > maxTopupCredits {
		respond.Error(c, http.StatusBadRequest, "validation_error", "credits must be between 1 and 500", nil)
		return
	}

	u, err := h.Svc.Topup(c.Request.Context(), userID, req.Credits)
	if err != nil {
		respondUsageError(c, err, "failed to top up credits")
		return
	}
	respond.JSON(c, http.StatusOK, usageResponse(u))
}

func (h *Handler) resetUsage(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.Reset(c.Request.Context(), userID)
	if err != nil {
		respondUsageError(c, err, "failed to reset usage")
		return
	}
	respond.JSON(c, http.StatusOK, usageResponse(u))
}

func usageResponse(u Usage) gin.H {
	return gin.H{
		"plan":     u.Plan,
		"limit":    u.Limit,
		"used":     u.Used,
		"resetsAt": u.ResetsAt,
	}
}

func respondUsageError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
