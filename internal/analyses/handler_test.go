package analyses_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"cvmatch-backend/internal/bootstrap"
	"cvmatch-backend/internal/shared/config"
)

const (
	testCV = `Senior Software Engineer with 6 years of experience.
Built services in Python and Go, deployed on AWS with Docker and Kubernetes.
Led a team of four engineers and managed PostgreSQL databases.`
	testJD = `Looking for a backend engineer with 5+ years of experience.
Must know Python, Go, AWS and Docker. Kubernetes and PostgreSQL a plus.`
)

func buildTestApp(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
		AnalyzeCost:     1,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "test-guest")
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAnalyzeEndToEndWithoutAdvisory(t *testing.T) {
	router := buildTestApp(t, nil)

	resp := postJSON(t, router, "/api/v1/analyses", map[string]string{
		"cvText": testCV,
		"jdText": testJD,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		AnalysisID string `json:"analysisId"`
		Report     struct {
			Scores struct {
				ATS int `json:"ats"`
			} `json:"scores"`
			KeyCategories []string `json:"keyCategories"`
			Meta          struct {
				AdvisoryEnabled bool `json:"advisoryEnabled"`
			} `json:"meta"`
		} `json:"report"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.AnalysisID == "" {
		t.Fatalf("expected analysisId, got empty")
	}
	if len(created.Report.KeyCategories) != 6 {
		t.Fatalf("expected 6 key categories, got %d", len(created.Report.KeyCategories))
	}
	if created.Report.Scores.ATS <= 0 {
		t.Fatalf("expected positive ats for matching texts, got %d", created.Report.Scores.ATS)
	}
	if created.Report.Meta.AdvisoryEnabled {
		t.Fatalf("expected advisory disabled without credentials")
	}

	// The stored event is retrievable for the same identity.
	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+created.AnalysisID, nil)
	addGuestHeader(reqGet)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200 on fetch, got %d", respGet.Code)
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	addGuestHeader(reqList)
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)
	if respList.Code != http.StatusOK {
		t.Fatalf("expected status 200 on list, got %d", respList.Code)
	}
	var listed []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(respList.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.AnalysisID {
		t.Fatalf("expected listing to contain the stored analysis, got %+v", listed)
	}
}

func TestAnalyzeRejectsMissingSide(t *testing.T) {
	router := buildTestApp(t, nil)

	resp := postJSON(t, router, "/api/v1/analyses", map[string]string{
		"cvText": testCV,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestAnalyzeMultipartFileUpload(t *testing.T) {
	router := buildTestApp(t, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("cvFile", "cv.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte(testCV)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.WriteField("jdText", testJD); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAnalyzeDebitsCredits(t *testing.T) {
	router := buildTestApp(t, func(cfg *config.Config) {
		cfg.AnalyzeCost = 6
	})

	first := postJSON(t, router, "/api/v1/analyses", map[string]string{
		"cvText": testCV,
		"jdText": testJD,
	})
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first analysis to succeed, got %d", first.Code)
	}

	second := postJSON(t, router, "/api/v1/analyses", map[string]string{
		"cvText": testCV,
		"jdText": testJD,
	})
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 once credits run out, got %d", second.Code)
	}
	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(second.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Error.Code != "limit_reached" {
		t.Fatalf("expected limit_reached, got %q", errResp.Error.Code)
	}
}

func TestRewriteWithoutAdvisoryReturnsEmptyList(t *testing.T) {
	router := buildTestApp(t, nil)

	resp := postJSON(t, router, "/api/v1/rewrites", map[string]string{
		"cvText": testCV,
		"jdText": testJD,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var rewriteResp struct {
		Rewrites []any `json:"rewrites"`
		Meta     struct {
			Enabled bool `json:"enabled"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rewriteResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rewriteResp.Meta.Enabled {
		t.Fatalf("expected advisory disabled")
	}
	if len(rewriteResp.Rewrites) != 0 {
		t.Fatalf("expected no rewrites without a model, got %d", len(rewriteResp.Rewrites))
	}
}
