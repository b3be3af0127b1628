package bouquet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/florelle/fleuriste/internal/infra/llm/chatgpt"
	apperrors "github.com/florelle/fleuriste/pkg/errors"
	"github.com/florelle/fleuriste/pkg/metrics"
)

// analyzer turns a free-text message into an EmotionalAnalysis with exactly
// one structured-output chat call. It never retries and never substitutes a
// default profile: an unusable response is an analysis_failure.
type analyzer struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
}

func (a *analyzer) Analyze(ctx context.Context, message string) (EmotionalAnalysis, metrics.TokenUsage, error) {
	messages := []chatgpt.Message{
		{Role: "system", Content: a.systemPrompt()},
		{Role: "user", Content: message},
	}

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(callCtx, chatgpt.ChatCompletionRequest{
		Model:          a.cfg.Model,
		Messages:       messages,
		Temperature:    a.cfg.Temperature,
		ResponseFormat: chatgpt.SchemaFormat("emotional_analysis", analysisSchema()),
	})
	if err != nil {
		return EmotionalAnalysis{}, metrics.TokenUsage{}, apperrors.Wrap(apperrors.CodeAnalysisFailure, "message analysis request failed", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return EmotionalAnalysis{}, metrics.TokenUsage{}, apperrors.Wrap(apperrors.CodeAnalysisFailure, "message analysis returned no content", nil)
	}

	content := resp.Choices[0].Message.Content
	analysis, err := decodeAnalysis(content)
	if err != nil {
		a.logger.Warn("analysis response rejected", "error", err)
		return EmotionalAnalysis{}, metrics.TokenUsage{}, apperrors.Wrap(apperrors.CodeAnalysisFailure, "message analysis response malformed", err)
	}
	a.logger.Info("message analyzed", "emotions", len(analysis.Emotions), "keywords", len(analysis.Keywords), "sentiment", analysis.Sentiment, "occasion", analysis.Occasion)

	return analysis, callUsage(resp, a.cfg.Model, messages), nil
}

func (a *analyzer) systemPrompt() string {
	return a.cfg.AnalyzerPrompt + " Respond ONLY with a JSON object of this exact shape: " +
		`{"emotions":string[],"keywords":string[],"occasion":string|null,"sentiment":"positive"|"negative"|"neutral"|"mixed","summary":string}. ` +
		"The keywords must be lowercase lemmas usable for catalog matching. Never add other fields or plain text."
}

// analysisSchema is the strict response_format schema for the analysis call:
// emotions, keywords, sentiment and summary are required, occasion is
// nullable, and no extra fields are permitted.
func analysisSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"emotions", "keywords", "occasion", "sentiment", "summary"},
		"properties": map[string]any{
			"emotions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"keywords": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"occasion": map[string]any{"type": []string{"string", "null"}},
			"sentiment": map[string]any{
				"type": "string",
				"enum": []string{"positive", "negative", "neutral", "mixed"},
			},
			"summary": map[string]any{"type": "string"},
		},
	}
}

func decodeAnalysis(raw string) (EmotionalAnalysis, error) {
	var wire struct {
		Emotions  *[]string `json:"emotions"`
		Keywords  *[]string `json:"keywords"`
		Occasion  *string   `json:"occasion"`
		Sentiment *string   `json:"sentiment"`
		Summary   *string   `json:"summary"`
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(stripFences(raw))))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&wire); err != nil {
		return EmotionalAnalysis{}, err
	}

	if wire.Emotions == nil || wire.Keywords == nil || wire.Sentiment == nil || wire.Summary == nil {
		return EmotionalAnalysis{}, errors.New("required analysis field missing")
	}
	sentiment, ok := ParseSentiment(*wire.Sentiment)
	if !ok {
		return EmotionalAnalysis{}, fmt.Errorf("unknown sentiment %q", *wire.Sentiment)
	}
	if strings.TrimSpace(*wire.Summary) == "" {
		return EmotionalAnalysis{}, errors.New("summary is empty")
	}

	occasion := ""
	if wire.Occasion != nil {
		occasion = strings.TrimSpace(*wire.Occasion)
	}

	return EmotionalAnalysis{
		Emotions:  trimAll(*wire.Emotions),
		Keywords:  trimAll(*wire.Keywords),
		Occasion:  occasion,
		Sentiment: sentiment,
		Summary:   strings.TrimSpace(*wire.Summary),
	}, nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if clean := strings.TrimSpace(item); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// stripFences removes a markdown code fence some providers wrap JSON in even
// when a response format is requested.
func stripFences(raw string) string {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	return strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))
}

// callUsage prefers the usage block reported by the provider and falls back
// to a tiktoken estimate of the prompt when it is absent.
func callUsage(resp chatgpt.ChatCompletionResponse, model string, messages []chatgpt.Message) metrics.TokenUsage {
	if resp.Usage.TotalTokens > 0 {
		return metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	prompt := 0
	for _, msg := range messages {
		prompt += metrics.EstimateTokens(model, msg.Content)
	}
	completion := 0
	if len(resp.Choices) > 0 {
		completion = metrics.EstimateTokens(model, resp.Choices[0].Message.Content)
	}
	return metrics.TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}
