package bouquet

import (
	"time"

	"github.com/florelle/fleuriste/internal/domain/catalog"
	"github.com/florelle/fleuriste/pkg/metrics"
)

// Sentiment is the overall tone extracted from a customer message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentMixed    Sentiment = "mixed"
)

// ParseSentiment validates the enum value returned by the analysis service.
func ParseSentiment(raw string) (Sentiment, bool) {
	switch Sentiment(raw) {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed:
		return Sentiment(raw), true
	default:
		return "", false
	}
}

// EmotionalAnalysis is the structured profile extracted from a message.
// It lives for one request: produced by the analyzer, consumed by the
// matcher and the selector, then discarded.
type EmotionalAnalysis struct {
	Emotions  []string  `json:"emotions"`
	Keywords  []string  `json:"keywords"`
	Occasion  string    `json:"occasion,omitempty"`
	Sentiment Sentiment `json:"sentiment"`
	Summary   string    `json:"summary"`
}

// ScoredFlower pairs a catalog flower with its relevance score.
type ScoredFlower struct {
	Flower catalog.Flower
	Score  int
}

// RecommendationFlower is one line of the recommended composition.
type RecommendationFlower struct {
	Flower   catalog.Flower `json:"flower"`
	Quantity int            `json:"quantity"`
	Reason   string         `json:"reason"`
}

// Recommendation is the final composition returned to the caller.
type Recommendation struct {
	Flowers     []RecommendationFlower `json:"flowers"`
	TotalPrice  int                    `json:"totalPrice"`
	Explanation string                 `json:"explanation"`
}

// Request is the single entry point payload.
type Request struct {
	Message string     `json:"message"`
	Budget  BudgetTier `json:"budget"`
	Colors  []string   `json:"colors,omitempty"`
	Style   string     `json:"style,omitempty"`
}

// Result bundles the recommendation with the analysis that produced it so
// callers can log or persist both.
type Result struct {
	Analysis       EmotionalAnalysis  `json:"analysis"`
	Recommendation Recommendation     `json:"recommendation"`
	TokenUsage     metrics.TokenUsage `json:"tokenUsage"`
}

// Record is the persisted bouquet: the original request, the resulting
// price and explanation, and one join row per recommended flower. Written
// once per successful recommendation by the caller, never mutated after.
type Record struct {
	ID          int64
	Message     string
	Budget      BudgetTier
	Style       string
	Occasion    string
	TotalPrice  int
	Explanation string
	CreatedAt   time.Time
	Flowers     []RecordFlower
}

// RecordFlower is one bouquet_flowers join row.
type RecordFlower struct {
	FlowerID int64
	Quantity int
	Reason   string
}
