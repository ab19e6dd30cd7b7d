package account

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cvmatch-backend/internal/shared/server/respond"
)

// AdminHandler exposes token-guarded retention and dashboard endpoints.
type AdminHandler struct {
	Svc *Service
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc *Service) *AdminHandler {
	return &AdminHandler{Svc: svc}
}

// RegisterRoutes attaches admin routes to the router group. The group is
// expected to carry the admin-token middleware.
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/cvs", h.retainedCVs)
	rg.GET("/admin/stats", h.stats)
}

func (h *AdminHandler) retainedCVs(c *gin.Context) {
	limit := 50
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	docs, err := h.Svc.RetainedCVs(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list retained cvs", nil)
		return
	}

	resp := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, gin.H{
			"documentId": doc.ID,
			"userId":     doc.UserID,
			"fileName":   doc.FileName,
			"mimeType":   doc.MimeType,
			"sizeBytes":  doc.SizeBytes,
			"consent":    doc.Consent,
			"uploadedAt": doc.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *AdminHandler) stats(c *gin.Context) {
	stats, err := h.Svc.GlobalStats(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load stats", nil)
		return
	}
	respond.JSON(c, http.StatusOK, stats)
}
