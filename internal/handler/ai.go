package handler

import (
	"encoding/json"
	"net/http"

	"goingmarry-api/internal/service"
	"goingmarry-api/pkg/apierror"
	"goingmarry-api/pkg/response"
)

// AIHandler proxies listing analysis requests to the vision model.
type AIHandler struct {
	analyzeService *service.AnalyzeService
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(analyzeService *service.AnalyzeService) *AIHandler {
	return &AIHandler{
		analyzeService: analyzeService,
	}
}

// Analyze handles POST /ai/analyze
func (h *AIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.analyzeService == nil {
		response.Error(w, apierror.Upstream("AI analysis is not configured"))
		return
	}

	var in struct {
		ImageData string `json:"imageData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if in.ImageData == "" {
		response.Error(w, apierror.BadRequest("imageData is required"))
		return
	}

	suggestion, err := h.analyzeService.Analyze(r.Context(), in.ImageData)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, suggestion)
}
