// Package sentiment wraps the external LLM used to score message sentiment.
// Callers must treat every error as "enrichment unavailable"; chat keeps
// working without sentiment.
package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"sns-backend/internal/models"
)

// ErrNotConfigured is returned when no API credential is configured.
var ErrNotConfigured = errors.New("sentiment: api key not configured")

// Analyzer scores the sentiment of a piece of text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (models.Sentiment, error)
}

const prompt = `Analyze the sentiment of the following text. Return a sentiment
score between -1 (very negative) and 1 (very positive), plus positive,
negative and neutral probabilities between 0 and 1.

Return only a JSON object in exactly this shape:
{"sentiment_score": 0.5, "positive_score": 0.6, "negative_score": 0.1, "neutral_score": 0.3}

Text: %s`

// OpenAIAnalyzer calls an OpenAI-compatible chat-completion API.
type OpenAIAnalyzer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// NewOpenAIAnalyzer constructs the analyzer. An empty API key yields an
// analyzer whose Analyze always fails with ErrNotConfigured; the service
// still starts and runs without enrichment.
func NewOpenAIAnalyzer(apiKey, baseURL, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIAnalyzer {
	a := &OpenAIAnalyzer{
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
	if apiKey == "" {
		return a
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	a.client = openai.NewClientWithConfig(cfg)
	return a
}

// Analyze scores one text.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, text string) (models.Sentiment, error) {
	if a.client == nil {
		return models.Sentiment{}, ErrNotConfigured
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(prompt, text)},
		},
		MaxTokens:   a.maxTokens,
		Temperature: float32(a.temperature),
	})
	if err != nil {
		a.logger.Warn("sentiment completion failed", zap.Error(err))
		return models.Sentiment{}, err
	}
	if len(resp.Choices) == 0 {
		return models.Sentiment{}, errors.New("sentiment: empty completion")
	}

	scores, err := parseScores(resp.Choices[0].Message.Content)
	if err != nil {
		a.logger.Warn("sentiment response unparseable",
			zap.Error(err),
			zap.String("response", resp.Choices[0].Message.Content))
		return models.Sentiment{}, err
	}
	return scores, nil
}

// parseScores extracts the score object from a completion, tolerating
// markdown code fences and surrounding prose, and clamps every value into
// its documented range.
func parseScores(response string) (models.Sentiment, error) {
	raw := extractJSON(response)
	if raw == "" {
		return models.Sentiment{}, errors.New("sentiment: no JSON object in response")
	}

	var scores models.Sentiment
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return models.Sentiment{}, err
	}

	scores.Score = clampTo(scores.Score, -1, 1)
	scores.Positive = clampTo(scores.Positive, 0, 1)
	scores.Negative = clampTo(scores.Negative, 0, 1)
	scores.Neutral = clampTo(scores.Neutral, 0, 1)
	return scores, nil
}

func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+len("```"):]
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func clampTo(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
