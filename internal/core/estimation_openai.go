package core

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"
	openAIModel    = "gpt-4o-mini"
)

// openAIEstimationService implements EstimationService against OpenAI's
// chat-completions API with a multimodal message (text instruction + inline
// base64 JPEG) and a forced JSON object response.
type openAIEstimationService struct {
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenAIEstimationService creates an OpenAI-backed estimation service. An
// empty API key is allowed; every call then reports ErrEstimationUnavailable.
func NewOpenAIEstimationService(apiKey string, logger *zap.Logger) EstimationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &openAIEstimationService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// EstimateCalories asks the model for a strict JSON estimate of the photo.
// All failure modes (missing key, transport, non-2xx, malformed response)
// wrap ErrEstimationUnavailable.
func (s *openAIEstimationService) EstimateCalories(ctx context.Context, image []byte) (*Estimate, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrEstimationUnavailable)
	}

	b64 := base64.StdEncoding.EncodeToString(image)
	payload := map[string]interface{}{
		"model":           openAIModel,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []interface{}{
			map[string]interface{}{
				"role":    "system",
				"content": estimationPrompt,
			},
			map[string]interface{}{
				"role": "user",
				"content": []interface{}{
					map[string]interface{}{
						"type": "text",
						"text": `Estimate total kilocalories in this photo. Return JSON with {"totalCalories": integer, "items": [{"name": string, "grams"?: number, "calories"?: integer}]}.`,
					},
					map[string]interface{}{
						"type": "image_url",
						"image_url": map[string]string{
							"url": "data:image/jpeg;base64," + b64,
						},
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrEstimationUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEstimationUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: OpenAI request failed: %v", ErrEstimationUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrEstimationUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: OpenAI returned status %d", ErrEstimationUnavailable, resp.StatusCode)
	}

	var chat struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &chat); err != nil || len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: failed to decode chat response", ErrEstimationUnavailable)
	}

	estimate, err := decodeEstimateJSON(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEstimationUnavailable, err)
	}
	return estimate, nil
}
