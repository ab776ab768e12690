package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/edushield/phishing-filter/internal/core"
)

// GeminiClient implements the TextClassifier interface using Google Gemini
type GeminiClient struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	modelName    string
	logger       *zap.Logger
	promptFormat string
}

// phishingResponse represents the structured response from the model
type phishingResponse struct {
	Probability float64 `json:"probability"`
	Reason      string  `json:"reason"`
}

// NewGeminiClient creates a new Gemini classifier client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
		promptFormat: `You are a phishing detection system. Estimate the probability that the following email text is a phishing attempt.
Respond with a JSON object containing:
- probability: number between 0 and 1 (higher means more likely phishing)
- reason: string (brief justification)

Email text:
%s

Respond only with the JSON object and nothing else.`,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Score estimates the phishing probability of the given text
func (c *GeminiClient) Score(ctx context.Context, text string) (*core.ClassifierScore, error) {
	prompt := fmt.Sprintf(c.promptFormat, text)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	// Parse the model's JSON response, tolerating prose around it
	var parsed phishingResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		jsonStart := 0
		jsonEnd := len(responseText)

		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}
		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}

		if jsonStart < jsonEnd {
			jsonStr := responseText[jsonStart:jsonEnd]
			if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
				return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to extract JSON from model response: %w", err)
		}
	}

	prob := parsed.Probability
	if prob < 0 {
		prob = 0
	} else if prob > 1 {
		prob = 1
	}

	c.logger.Debug("Gemini classification",
		zap.Float64("probability", prob),
		zap.String("model", c.modelName))

	return &core.ClassifierScore{
		Probability: prob,
		ModelProbs:  map[string]float64{c.modelName: prob},
		ModelUsed:   c.modelName,
	}, nil
}
