package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"lawassist-backend/models"
	"lawassist-backend/service"
	"lawassist-backend/store"
)

// CaseHandler handles HTTP requests for case evaluation
type CaseHandler struct {
	evaluator   *service.EvaluatorService
	cases       *store.CaseStore
	maxFileSize int64
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(evaluator *service.EvaluatorService, cases *store.CaseStore) *CaseHandler {
	return &CaseHandler{
		evaluator:   evaluator,
		cases:       cases,
		maxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// Health handles GET /api/health
func (h *CaseHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Disclaimer handles GET /api/disclaimer
func (h *CaseHandler) Disclaimer(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"disclaimer": service.Disclaimer})
}

// evaluateTextRequest is the body of POST /api/evaluate-text
type evaluateTextRequest struct {
	Title          string   `json:"title" binding:"required"`
	Jurisdiction   string   `json:"jurisdiction" binding:"required"`
	CaseType       string   `json:"case_type" binding:"required"`
	ClaimedDamages *float64 `json:"claimed_damages"`
	CaseText       string   `json:"case_text" binding:"required"`
}

// EvaluateText handles POST /api/evaluate-text
func (h *CaseHandler) EvaluateText(c *gin.Context) {
	var req evaluateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	eval, err := h.evaluator.EvaluateCase(c.Request.Context(), service.CaseSubmission{
		Metadata: models.CaseMetadata{
			Title:          req.Title,
			Jurisdiction:   req.Jurisdiction,
			CaseType:       models.CaseType(req.CaseType),
			ClaimedDamages: req.ClaimedDamages,
		},
		Source: service.CaseSource{Text: req.CaseText},
	})
	if err != nil {
		h.writeEvalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluation": eval, "disclaimer": service.Disclaimer})
}

// EvaluateFromFile handles POST /api/evaluate-from-file
func (h *CaseHandler) EvaluateFromFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "MISSING_FILE", "No file provided")
		return
	}
	data, failed := h.readUpload(c, fileHeader)
	if failed {
		return
	}

	meta, err := metadataFromForm(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_METADATA", err.Error())
		return
	}

	eval, err := h.evaluator.EvaluateCase(c.Request.Context(), service.CaseSubmission{
		Metadata: meta,
		Source:   service.CaseSource{Filename: fileHeader.Filename, Data: data},
	})
	if err != nil {
		h.writeEvalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluation": eval, "disclaimer": service.Disclaimer})
}

// EvaluateBatch handles POST /api/evaluate-batch
func (h *CaseHandler) EvaluateBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		errorResponse(c, http.StatusBadRequest, "MISSING_FILES", "No files provided")
		return
	}

	sources := make([]service.CaseSource, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "UNREADABLE_FILE", fmt.Sprintf("Could not read %s", fh.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "UNREADABLE_FILE", fmt.Sprintf("Could not read %s", fh.Filename))
			return
		}
		sources = append(sources, service.CaseSource{Filename: fh.Filename, Data: data})
	}

	damages, err := parseDamagesList(c.PostForm("claimed_damages"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_METADATA", err.Error())
		return
	}

	result, err := h.evaluator.EvaluateBatch(c.Request.Context(), service.BatchRequest{
		Sources:        sources,
		Titles:         parseStringList(c.PostForm("titles")),
		Jurisdictions:  parseStringList(c.PostForm("jurisdictions")),
		CaseTypes:      parseStringList(c.PostForm("case_types")),
		ClaimedDamages: damages,
	})
	if err != nil {
		if service.IsStructural(err) {
			errorResponse(c, http.StatusBadRequest, "BATCH_REJECTED", err.Error())
			return
		}
		errorResponse(c, http.StatusInternalServerError, "BATCH_FAILED", "Batch evaluation failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListCases handles GET /api/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	ranked := h.cases.Ranked()
	c.JSON(http.StatusOK, gin.H{
		"cases":       ranked,
		"total_cases": len(ranked),
	})
}

// GetCase handles GET /api/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	eval, ok := h.cases.Get(c.Param("id"))
	if !ok {
		errorResponse(c, http.StatusNotFound, "CASE_NOT_FOUND", "Case not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluation": eval, "disclaimer": service.Disclaimer})
}

// DeleteCase handles DELETE /api/cases/:id
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	if !h.cases.Delete(c.Param("id")) {
		errorResponse(c, http.StatusNotFound, "CASE_NOT_FOUND", "Case not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearCases handles DELETE /api/cases
func (h *CaseHandler) ClearCases(c *gin.Context) {
	removed := h.cases.Clear()
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}

func (h *CaseHandler) readUpload(c *gin.Context, fh *multipart.FileHeader) ([]byte, bool) {
	if fh.Size > h.maxFileSize {
		errorResponse(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			fmt.Sprintf("File exceeds maximum size of %dMB", h.maxFileSize/(1024*1024)))
		return nil, true
	}
	f, err := fh.Open()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "UNREADABLE_FILE", "Could not read uploaded file")
		return nil, true
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "UNREADABLE_FILE", "Could not read uploaded file")
		return nil, true
	}
	return data, false
}

func (h *CaseHandler) writeEvalError(c *gin.Context, err error) {
	var evalErr *service.EvalError
	if !errors.As(err, &evalErr) {
		errorResponse(c, http.StatusInternalServerError, "EVALUATION_FAILED", "Evaluation failed")
		return
	}
	status := http.StatusInternalServerError
	if evalErr.Kind == service.FailureInvalid {
		status = http.StatusBadRequest
	}
	errorResponse(c, status, failureCode(evalErr.Kind), evalErr.Reason)
}

func failureCode(kind service.FailureKind) string {
	switch kind {
	case service.FailureInvalid:
		return "INVALID_INPUT"
	case service.FailureExtraction:
		return "EXTRACTION_FAILED"
	case service.FailureProvider:
		return "PROVIDER_FAILED"
	case service.FailureParse:
		return "PARSE_FAILED"
	default:
		return "EVALUATION_FAILED"
	}
}

func metadataFromForm(c *gin.Context) (models.CaseMetadata, error) {
	meta := models.CaseMetadata{
		Title:        c.PostForm("title"),
		Jurisdiction: c.PostForm("jurisdiction"),
		CaseType:     models.CaseType(c.PostForm("case_type")),
	}
	if raw := c.PostForm("claimed_damages"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return meta, fmt.Errorf("claimed_damages must be a number")
		}
		meta.ClaimedDamages = &v
	}
	return meta, nil
}

// parseStringList accepts either a JSON array or a comma-separated list.
func parseStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return list
		}
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseDamagesList accepts a JSON array or comma-separated list of numbers,
// with null/empty entries meaning unspecified. An empty input returns nil,
// which omits damages for the whole batch.
func parseDamagesList(raw string) ([]*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []*float64
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("claimed_damages must be a JSON array of numbers")
		}
		return list, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]*float64, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "null") {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("claimed_damages entry %q is not a number", part)
		}
		out[i] = &v
	}
	return out, nil
}
