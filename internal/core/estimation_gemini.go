package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-1.5-flash"

const estimationPrompt = `You are a nutritionist. Estimate total calories roughly from a single food photo. ` +
	`Include a short list of detected items with optional grams and calories. ` +
	`If unsure, make your best conservative estimate. ` +
	`Return only JSON shaped as {"totalCalories": integer, "items": [{"name": string, "grams"?: number, "calories"?: integer}]}.`

// geminiEstimationService implements EstimationService using Google's Gemini
// multimodal models.
type geminiEstimationService struct {
	apiKey string
	logger *zap.Logger
}

// NewGeminiEstimationService creates a Gemini-backed estimation service. An
// empty API key is allowed; every call then reports ErrEstimationUnavailable.
func NewGeminiEstimationService(apiKey string, logger *zap.Logger) EstimationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &geminiEstimationService{apiKey: apiKey, logger: logger}
}

// EstimateCalories sends the photo to Gemini and parses the JSON estimate.
// All failure modes (missing key, transport, malformed response) wrap
// ErrEstimationUnavailable.
func (s *geminiEstimationService) EstimateCalories(ctx context.Context, image []byte) (*Estimate, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrEstimationUnavailable)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrEstimationUnavailable, err)
	}
	defer client.Close()

	model := client.GenerativeModel(geminiModel)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx,
		genai.Text(estimationPrompt),
		genai.ImageData("jpeg", image),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Gemini request failed: %v", ErrEstimationUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: Gemini returned no content", ErrEstimationUnavailable)
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("%w: Gemini returned a non-text part", ErrEstimationUnavailable)
	}

	estimate, err := decodeEstimateJSON(string(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEstimationUnavailable, err)
	}
	return estimate, nil
}

// decodeEstimateJSON parses an estimation payload, tolerating markdown code
// fences some models wrap JSON in.
func decodeEstimateJSON(raw string) (*Estimate, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var estimate Estimate
	if err := json.Unmarshal([]byte(trimmed), &estimate); err != nil {
		return nil, fmt.Errorf("failed to decode estimation response: %v", err)
	}
	if estimate.TotalCalories < 0 {
		estimate.TotalCalories = 0
	}
	return &estimate, nil
}
