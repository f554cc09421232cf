package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawassist-backend/extract"
	"lawassist-backend/models"
	"lawassist-backend/service"
	"lawassist-backend/store"
)

type promptFunc func(prompt string) (string, error)

func (f promptFunc) Generate(ctx context.Context, prompt string) (string, error) { return f(prompt) }
func (f promptFunc) Name() string                                               { return "stub" }

func stubScores(merit, damages, complexity float64) promptFunc {
	return func(string) (string, error) {
		return fmt.Sprintf(`{
  "legal_merit": {"score": %g, "reasoning": "r", "key_factors": []},
  "damages_potential": {"score": %g, "reasoning": "r", "key_factors": []},
  "case_complexity": {"score": %g, "reasoning": "r", "key_factors": []}
}`, merit, damages, complexity), nil
	}
}

func newTestRouter(provider service.EvaluatorOption) (*gin.Engine, *store.CaseStore) {
	gin.SetMode(gin.TestMode)
	cs := store.NewCaseStore()
	evaluator := service.NewEvaluatorService(
		provider,
		service.WithTextExtractor(extract.New("")),
		service.WithCaseStore(cs),
	)
	h := NewCaseHandler(evaluator, cs)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/disclaimer", h.Disclaimer)
	api.POST("/evaluate-text", h.EvaluateText)
	api.POST("/evaluate-from-file", h.EvaluateFromFile)
	api.POST("/evaluate-batch", h.EvaluateBatch)
	api.GET("/cases", h.ListCases)
	api.GET("/cases/:id", h.GetCase)
	api.DELETE("/cases/:id", h.DeleteCase)
	api.DELETE("/cases", h.ClearCases)
	return r, cs
}

func TestHealth(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(service.WithProvider(stubScores(5, 5, 5)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, w.Body.String())
}

func TestDisclaimer(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(service.WithProvider(stubScores(5, 5, 5)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/disclaimer", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "does NOT constitute legal advice")
}

func TestEvaluateText(t *testing.T) {
	t.Parallel()

	r, cs := newTestRouter(service.WithProvider(stubScores(8, 6, 4)))

	body := `{
		"title": "Smith v. Acme",
		"jurisdiction": "California",
		"case_type": "Civil",
		"claimed_damages": 250000,
		"case_text": "Plaintiff alleges breach of contract."
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate-text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Evaluation models.CaseEvaluation `json:"evaluation"`
		Disclaimer string                `json:"disclaimer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Smith v. Acme", resp.Evaluation.CaseTitle)
	assert.InDelta(t, 4.8, resp.Evaluation.PriorityScore, 1e-9)
	assert.Equal(t, models.RankMedium, resp.Evaluation.PriorityRank)
	assert.NotEmpty(t, resp.Disclaimer)
	assert.Equal(t, 1, cs.Len())
}

func TestEvaluateTextMissingFields(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(service.WithProvider(stubScores(5, 5, 5)))
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate-text", strings.NewReader(`{"title": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestEvaluateTextInvalidCaseType(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(service.WithProvider(stubScores(5, 5, 5)))
	body := `{"title": "t", "jurisdiction": "CA", "case_type": "Maritime", "case_text": "text"}`
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate-text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

func TestEvaluateTextProviderFailure(t *testing.T) {
	t.Parallel()

	failing := promptFunc(func(string) (string, error) {
		return "", fmt.Errorf("connection refused")
	})
	r, _ := newTestRouter(service.WithProvider(failing))
	body := `{"title": "t", "jurisdiction": "CA", "case_type": "Civil", "case_text": "text"}`
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate-text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "PROVIDER_FAILED")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	for filename, content := range files {
		fw, err := mw.CreateFormFile("files", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestEvaluateFromFile(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(service.WithProvider(stubScores(9, 8, 2)))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Upload case"))
	require.NoError(t, mw.WriteField("jurisdiction", "Texas"))
	require.NoError(t, mw.WriteField("case_type", "Commercial"))
	require.NoError(t, mw.WriteField("claimed_damages", "500000"))
	fw, err := mw.CreateFormFile("file", "case.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("case document text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate-from-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Upload case")
}

func TestEvaluateBatchEndpoint(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(service.WithProvider(stubScores(8, 6, 4)))

	body, contentType := multipartBody(t,
		map[string]string{
			"titles":        `["Case A", "Case B"]`,
			"jurisdictions": "California, Texas",
			"case_types":    "Civil, Commercial",
		},
		map[string]string{
			"a.txt": "first case text",
			"b.txt": "second case text",
		})

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate-batch", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.TotalCases)
	assert.Len(t, result.Cases, 2)
	assert.Empty(t, result.Errors)
}

func TestEvaluateBatchStructuralRejection(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(service.WithProvider(stubScores(8, 6, 4)))

	// Two files, one title.
	body, contentType := multipartBody(t,
		map[string]string{
			"titles":        `["Only one"]`,
			"jurisdictions": "California, Texas",
			"case_types":    "Civil, Civil",
		},
		map[string]string{
			"a.txt": "first",
			"b.txt": "second",
		})

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate-batch", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BATCH_REJECTED")
}

func TestCaseLifecycle(t *testing.T) {
	t.Parallel()

	r, cs := newTestRouter(service.WithProvider(stubScores(8, 6, 4)))

	eval := &models.CaseEvaluation{CaseID: "abc12345", CaseTitle: "stored", PriorityScore: 5}
	cs.Put(eval)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cases", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_cases":1`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cases/abc12345", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stored")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cases/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/cases/abc12345", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, cs.Len())

	cs.Put(eval)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/cases", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":1`)
	assert.Equal(t, 0, cs.Len())
}

func TestParseStringList(t *testing.T) {
	t.Parallel()

	assert.Nil(t, parseStringList(""))
	assert.Equal(t, []string{"a", "b"}, parseStringList(`["a", "b"]`))
	assert.Equal(t, []string{"a", "b"}, parseStringList("a, b"))
	assert.Equal(t, []string{"single"}, parseStringList("single"))
}

func TestParseDamagesList(t *testing.T) {
	t.Parallel()

	list, err := parseDamagesList("")
	require.NoError(t, err)
	assert.Nil(t, list)

	list, err = parseDamagesList(`[100000, null, 5000.5]`)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 100000.0, *list[0])
	assert.Nil(t, list[1])
	assert.Equal(t, 5000.5, *list[2])

	list, err = parseDamagesList("100, , 300")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 100.0, *list[0])
	assert.Nil(t, list[1])

	_, err = parseDamagesList("abc")
	assert.Error(t, err)
}
