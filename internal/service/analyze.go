package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"goingmarry-api/internal/config"
	"goingmarry-api/pkg/apierror"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// analyzePrompt asks for a pre-fill suggestion for a new listing.
const analyzePrompt = `Analyze this preloved item and suggest a catchy title, a short description, an estimated resale price in Philippine Peso (PHP), and a category (Fashion, Electronics or Home). Return strictly valid JSON with the keys "title", "description", "suggestedPrice" and "category".`

// ListingSuggestion is the AI pre-fill for the listing form. It is advisory
// only; listing creation never depends on it.
type ListingSuggestion struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	SuggestedPrice float64 `json:"suggestedPrice"`
	Category       string  `json:"category"`
}

// AnalyzeService proxies listing photos to the image-analysis model.
type AnalyzeService struct {
	model *genai.GenerativeModel
}

// NewAnalyzeService builds the AI client. Returns an error when no API key
// is configured; callers treat the service as optional.
func NewAnalyzeService(ctx context.Context, cfg *config.AIConfig) (*AnalyzeService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(cfg.Model)
	model.ResponseMIMEType = "application/json"

	return &AnalyzeService{model: model}, nil
}

// Analyze sends the image to the model and parses the suggestion. Any
// upstream failure surfaces as a 502-class error.
func (s *AnalyzeService) Analyze(ctx context.Context, imageData string) (*ListingSuggestion, error) {
	if imageData == "" {
		return nil, apierror.BadRequest("Image data is required")
	}

	// Accept both a bare base64 payload and a full data URI.
	if i := strings.Index(imageData, "base64,"); i >= 0 {
		imageData = imageData[i+len("base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, apierror.BadRequest("Invalid image data")
	}

	resp, err := s.model.GenerateContent(ctx, genai.ImageData("jpeg", raw), genai.Text(analyzePrompt))
	if err != nil {
		log.Printf("[AnalyzeService] generation failed: %v", err)
		return nil, apierror.Upstream("AI analysis failed")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, apierror.Upstream("AI analysis returned no content")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, apierror.Upstream("AI analysis returned unexpected content")
	}

	// Some responses still arrive fenced despite the JSON MIME type.
	clean := strings.TrimSpace(string(text))
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")

	var suggestion ListingSuggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(clean)), &suggestion); err != nil {
		log.Printf("[AnalyzeService] unparseable response: %s", clean)
		return nil, apierror.Upstream("AI analysis returned malformed JSON")
	}
	return &suggestion, nil
}
