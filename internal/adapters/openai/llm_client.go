package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/edushield/phishing-filter/internal/core"
)

// OpenAIClient implements the TextClassifier interface using OpenAI
type OpenAIClient struct {
	client       *openai.Client
	modelName    string
	maxTokens    int
	temperature  float32
	topP         float32
	logger       *zap.Logger
	promptFormat string
}

// phishingResponse represents the structured response from the model
type phishingResponse struct {
	Probability float64 `json:"probability"`
	Reason      string  `json:"reason"`
}

// NewOpenAIClient creates a new OpenAI classifier client
func NewOpenAIClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *OpenAIClient {
	client := openai.NewClient(apiKey)

	return &OpenAIClient{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
		promptFormat: `You are a phishing detection system. Estimate the probability that the following email text is a phishing attempt.
Respond with a JSON object containing:
- probability: number between 0 and 1 (higher means more likely phishing)
- reason: string (brief justification)

Email text:
%s

Respond only with the JSON object and nothing else.`,
	}
}

// Score estimates the phishing probability of the given text
func (c *OpenAIClient) Score(ctx context.Context, text string) (*core.ClassifierScore, error) {
	prompt := fmt.Sprintf(c.promptFormat, text)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a phishing detection system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	// Add response format if supported by the client version
	responseFormat := openai.ChatCompletionResponseFormat{
		Type: "json",
	}
	req.ResponseFormat = &responseFormat

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := resp.Choices[0].Message.Content

	parsed, err := parsePhishingResponse(responseText)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("OpenAI classification",
		zap.Float64("probability", parsed.Probability),
		zap.String("model", c.modelName))

	return &core.ClassifierScore{
		Probability: clamp01(parsed.Probability),
		ModelProbs:  map[string]float64{c.modelName: clamp01(parsed.Probability)},
		ModelUsed:   c.modelName,
	}, nil
}

// parsePhishingResponse parses the model output, tolerating prose
// around the JSON object.
func parsePhishingResponse(responseText string) (*phishingResponse, error) {
	var parsed phishingResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		// Try to extract JSON from the text response
		jsonStart := 0
		jsonEnd := len(responseText)

		// Find JSON start
		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}

		// Find JSON end
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
	return &parsed, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
