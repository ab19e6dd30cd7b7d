package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cvmatch-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.InfoLevel)
	telemetry.SetLogger(zap.New(core))
	t.Cleanup(func() { telemetry.SetLogger(nil) })

	router := gin.New()
	router.Use(RequestID(), Auth("dev"), Logging())
	router.GET("/test", func(c *gin.Context) {
		c.Set("documentId", "doc-1")
		c.Set("analysisId", "analysis-1")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Guest-Id", "guest1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var entry map[string]any
	for _, logged := range logs.All() {
		if logged.Message == "request.complete" {
			entry = logged.ContextMap()
		}
	}
	if entry == nil {
		t.Fatal("no request.complete log entry")
	}

	required := []string{"request_id", "user_id", "document_id", "analysis_id", "duration_ms", "status"}
	for _, key := range required {
		if _, ok := entry[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if entry["user_id"] != "guest:guest1" {
		t.Fatalf("unexpected user_id: %v", entry["user_id"])
	}
	if entry["document_id"] != "doc-1" {
		t.Fatalf("unexpected document_id: %v", entry["document_id"])
	}
	if entry["analysis_id"] != "analysis-1" {
		t.Fatalf("unexpected analysis_id: %v", entry["analysis_id"])
	}
	if entry["status"] != int64(http.StatusOK) {
		t.Fatalf("unexpected status: %v", entry["status"])
	}
}
