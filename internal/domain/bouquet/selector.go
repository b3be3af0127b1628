package bouquet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/florelle/fleuriste/internal/domain/catalog"
	"github.com/florelle/fleuriste/internal/infra/llm/chatgpt"
	apperrors "github.com/florelle/fleuriste/pkg/errors"
	"github.com/florelle/fleuriste/pkg/metrics"
)

// selector narrows the ranked list to a budget-sized working set, delegates
// quantity and narrative assignment to the composition service, and binds
// the response back to catalog identities.
type selector struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
}

func (s *selector) Select(ctx context.Context, ranked []ScoredFlower, budget BudgetTier, colors []string, style, intentSummary string) (Recommendation, metrics.TokenUsage, error) {
	envelope, ok := s.cfg.Tiers[budget]
	if !ok {
		return Recommendation{}, metrics.TokenUsage{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown budget tier %q", budget), nil)
	}

	candidates := narrowByColor(ranked, colors)
	working := candidates
	if len(working) > envelope.MaxFlowerTypes {
		working = working[:envelope.MaxFlowerTypes]
	}

	messages := []chatgpt.Message{
		{Role: "system", Content: s.systemPrompt()},
		{Role: "user", Content: s.compositionPrompt(working, envelope, style, intentSummary)},
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(callCtx, chatgpt.ChatCompletionRequest{
		Model:          s.cfg.Model,
		Messages:       messages,
		Temperature:    s.cfg.Temperature,
		ResponseFormat: chatgpt.SchemaFormat("bouquet_composition", compositionSchema()),
	})
	if err != nil {
		return Recommendation{}, metrics.TokenUsage{}, apperrors.Wrap(apperrors.CodeCompositionFailure, "composition request failed", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Recommendation{}, metrics.TokenUsage{}, apperrors.Wrap(apperrors.CodeCompositionFailure, "composition service returned no content", nil)
	}

	composition, err := decodeComposition(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("composition response rejected", "error", err)
		return Recommendation{}, metrics.TokenUsage{}, apperrors.Wrap(apperrors.CodeCompositionFailure, "composition response malformed", err)
	}

	recommendation, err := bind(composition, working)
	if err != nil {
		return Recommendation{}, metrics.TokenUsage{}, err
	}
	s.logger.Info("bouquet composed", "budget", budget, "flowers", len(recommendation.Flowers), "totalPrice", recommendation.TotalPrice)

	return recommendation, callUsage(resp, s.cfg.Model, messages), nil
}

// narrowByColor keeps flowers whose color field contains one of the
// requested colors. Color is a soft preference: when the filter would empty
// the list it is discarded and the unfiltered ranking wins.
func narrowByColor(ranked []ScoredFlower, colors []string) []ScoredFlower {
	wanted := make([]string, 0, len(colors))
	for _, color := range colors {
		if clean := strings.ToLower(strings.TrimSpace(color)); clean != "" {
			wanted = append(wanted, clean)
		}
	}
	if len(wanted) == 0 {
		return ranked
	}

	filtered := make([]ScoredFlower, 0, len(ranked))
	for _, candidate := range ranked {
		flowerColor := strings.ToLower(candidate.Flower.Color)
		for _, color := range wanted {
			if strings.Contains(flowerColor, color) {
				filtered = append(filtered, candidate)
				break
			}
		}
	}
	if len(filtered) == 0 {
		return ranked
	}
	return filtered
}

func (s *selector) systemPrompt() string {
	return s.cfg.ComposerPrompt + " Respond ONLY with a JSON object of this exact shape: " +
		`{"flowers":[{"id":number,"quantity":number,"reason":string}],"explanation":string}. ` +
		"Only use ids from the proposed list. Never add other fields or plain text."
}

type workingSetFlower struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Symbolism    string `json:"symbolism"`
	PricePerStem int    `json:"pricePerStem"`
	Color        string `json:"color"`
}

func (s *selector) compositionPrompt(working []ScoredFlower, envelope TierEnvelope, style, intentSummary string) string {
	proposed := make([]workingSetFlower, 0, len(working))
	for _, candidate := range working {
		proposed = append(proposed, workingSetFlower{
			ID:           candidate.Flower.ID,
			Name:         candidate.Flower.Name,
			Symbolism:    candidate.Flower.Symbolism,
			PricePerStem: candidate.Flower.PricePerStem,
			Color:        candidate.Flower.Color,
		})
	}
	payload, err := json.Marshal(proposed)
	if err != nil {
		payload = []byte("[]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Customer intent: %s\n", intentSummary)
	if strings.TrimSpace(style) != "" {
		fmt.Fprintf(&b, "Requested style: %s\n", style)
	}
	fmt.Fprintf(&b, "Proposed flowers (prices per stem in cents): %s\n", payload)
	fmt.Fprintf(&b, "Constraints: use between %d and %d flower types, between 1 and %d stems per flower, and keep the total price between %d and %d cents.",
		envelope.MinFlowerTypes, envelope.MaxFlowerTypes, s.cfg.MaxStemsPerFlower, envelope.MinPrice, envelope.MaxPrice)
	return b.String()
}

// compositionSchema is the strict response_format schema for the
// composition call; every entry field and the explanation are required and
// no extra fields are permitted.
func compositionSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"flowers", "explanation"},
		"properties": map[string]any{
			"flowers": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"id", "quantity", "reason"},
					"properties": map[string]any{
						"id":       map[string]any{"type": "number"},
						"quantity": map[string]any{"type": "number"},
						"reason":   map[string]any{"type": "string"},
					},
				},
			},
			"explanation": map[string]any{"type": "string"},
		},
	}
}

type compositionWire struct {
	Flowers []struct {
		ID       *int64  `json:"id"`
		Quantity *int    `json:"quantity"`
		Reason   *string `json:"reason"`
	} `json:"flowers"`
	Explanation *string `json:"explanation"`
}

func decodeComposition(raw string) (compositionWire, error) {
	var wire compositionWire
	decoder := json.NewDecoder(bytes.NewReader([]byte(stripFences(raw))))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&wire); err != nil {
		return compositionWire{}, err
	}
	if wire.Explanation == nil || strings.TrimSpace(*wire.Explanation) == "" {
		return compositionWire{}, errors.New("explanation missing")
	}
	if len(wire.Flowers) == 0 {
		return compositionWire{}, errors.New("composition contains no flowers")
	}
	for i, entry := range wire.Flowers {
		if entry.ID == nil || entry.Quantity == nil || entry.Reason == nil {
			return compositionWire{}, fmt.Errorf("composition entry %d misses a required field", i)
		}
	}
	return wire, nil
}

// bind resolves composed entries against the working set. Entries with an
// unknown id or a quantity below one are silently dropped; an empty result
// after dropping is a composition_failure.
func bind(wire compositionWire, working []ScoredFlower) (Recommendation, error) {
	byID := make(map[int64]catalog.Flower, len(working))
	for _, candidate := range working {
		byID[candidate.Flower.ID] = candidate.Flower
	}

	flowers := make([]RecommendationFlower, 0, len(wire.Flowers))
	total := 0
	for _, entry := range wire.Flowers {
		flower, ok := byID[*entry.ID]
		if !ok || *entry.Quantity < 1 {
			continue
		}
		flowers = append(flowers, RecommendationFlower{
			Flower:   flower,
			Quantity: *entry.Quantity,
			Reason:   strings.TrimSpace(*entry.Reason),
		})
		total += flower.PricePerStem * *entry.Quantity
	}
	if len(flowers) == 0 {
		return Recommendation{}, apperrors.Wrap(apperrors.CodeCompositionFailure, "no composed flower matches the working set", nil)
	}

	return Recommendation{
		Flowers:     flowers,
		TotalPrice:  total,
		Explanation: strings.TrimSpace(*wire.Explanation),
	}, nil
}
