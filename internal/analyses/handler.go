package analyses

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cvmatch-backend/internal/extract"
	"cvmatch-backend/internal/shared/server/middleware"
	"cvmatch-backend/internal/shared/server/respond"
	"cvmatch-backend/internal/usage"
)

const maxUploadSize = 10 << 20 // 10MB

// CVTextProvider resolves a stored document into plain text.
type CVTextProvider interface {
	Text(ctx context.Context, userID, documentID string) (string, error)
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc  *Service
	Docs CVTextProvider
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docs CVTextProvider) *Handler {
	return &Handler{Svc: svc, Docs: docs}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.analyze)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
	rg.POST("/rewrites", h.rewrite)
}

type analyzeRequest struct {
	CVText     string `json:"cvText"`
	JDText     string `json:"jdText"`
	DocumentID string `json:"documentId"`
}

type analyzeResponse struct {
	AnalysisID string `json:"analysisId"`
	Report     Report `json:"report"`
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	cvText, jdText, ok := h.readInputs(c)
	if !ok {
		return
	}

	analysis, report, err := h.Svc.Analyze(c.Request.Context(), userID, cvText, jdText)
	if err != nil {
		respondServiceError(c, err, "failed to run analysis")
		return
	}

	respond.JSON(c, http.StatusCreated, analyzeResponse{
		AnalysisID: analysis.ID,
		Report:     report,
	})
}

// readInputs accepts either a JSON body with cvText/jdText or a multipart
// form where each side may be a text field or an uploaded file.
func (h *Handler) readInputs(c *gin.Context) (string, string, bool) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

		cvText, err := formSide(c, "cvText", "cvFile")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return "", "", false
		}
		jdText, err := formSide(c, "jdText", "jdFile")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return "", "", false
		}
		if cvText == "" {
			if docID := strings.TrimSpace(c.PostForm("documentId")); docID != "" {
				text, ok := h.storedCV(c, docID)
				if !ok {
					return "", "", false
				}
				cvText = text
			}
		}
		return cvText, jdText, true
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return "", "", false
	}
	if strings.TrimSpace(req.CVText) == "" && req.DocumentID != "" {
		text, ok := h.storedCV(c, req.DocumentID)
		if !ok {
			return "", "", false
		}
		req.CVText = text
	}
	return req.CVText, req.JDText, true
}

// storedCV resolves a retained document into CV text.
func (h *Handler) storedCV(c *gin.Context, documentID string) (string, bool) {
	if h.Docs == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "stored documents are not available", nil)
		return "", false
	}
	text, err := h.Docs.Text(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		return "", false
	}
	return text, true
}

// formSide reads one input side from a multipart form: the text field wins,
// otherwise the uploaded file is extracted.
func formSide(c *gin.Context, textField, fileField string) (string, error) {
	if v := strings.TrimSpace(c.PostForm(textField)); v != "" {
		return v, nil
	}

	fileHeader, err := c.FormFile(fileField)
	if err != nil {
		// Absent side; the service validates required inputs.
		return "", nil
	}
	data, err := readUpload(fileHeader)
	if err != nil {
		return "", errors.New("unable to read " + fileField)
	}

	text, err := extract.ExtractTextFromBytes(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if err != nil {
		return "", errors.New("unable to extract text from " + fileHeader.Filename)
	}
	return text, nil
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	analysis, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, analysis)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	respond.JSON(c, http.StatusOK, items)
}

type rewriteRequest struct {
	CVText string `json:"cvText"`
	JDText string `json:"jdText"`
}

func (h *Handler) rewrite(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req rewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	rewrites, meta, err := h.Svc.Rewrite(c.Request.Context(), userID, req.CVText, req.JDText)
	if err != nil {
		respondServiceError(c, err, "failed to rewrite bullets")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"rewrites": rewrites,
		"meta":     meta,
	})
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, usage.ErrLimitReached):
		respond.Error(c, http.StatusTooManyRequests, "limit_reached", "not enough credits", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
