package bouquet

import (
	"sort"
	"strings"

	"github.com/florelle/fleuriste/internal/domain/catalog"
)

// Relevance weights. A single input keyword can hit all three buckets for
// the same flower; the contributions are additive, not exclusive.
const (
	keywordMatchScore   = 3
	emotionMatchScore   = 2
	symbolismMatchScore = 1
)

// Score ranks the catalog against the extracted keywords. Matching is
// case-insensitive; for the keyword and emotion buckets a hit is a substring
// match in either direction. Only flowers scoring above zero are returned,
// ordered by descending score with ties kept in catalog iteration order.
// Pure function: same inputs, same output.
func Score(keywords []string, flowers []catalog.Flower) []ScoredFlower {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if clean := strings.ToLower(strings.TrimSpace(kw)); clean != "" {
			lowered = append(lowered, clean)
		}
	}

	scored := make([]ScoredFlower, 0, len(flowers))
	for _, flower := range flowers {
		score := scoreFlower(lowered, flower)
		if score > 0 {
			scored = append(scored, ScoredFlower{Flower: flower, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func scoreFlower(keywords []string, flower catalog.Flower) int {
	flowerKeywords := lowerAll(flower.Keywords)
	flowerEmotions := lowerAll(flower.Emotions)
	symbolism := strings.ToLower(flower.Symbolism)

	score := 0
	for _, kw := range keywords {
		if matchesAny(kw, flowerKeywords) {
			score += keywordMatchScore
		}
		if matchesAny(kw, flowerEmotions) {
			score += emotionMatchScore
		}
		if strings.Contains(symbolism, kw) {
			score += symbolismMatchScore
		}
	}
	return score
}

func matchesAny(keyword string, tags []string) bool {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if strings.Contains(tag, keyword) || strings.Contains(keyword, tag) {
			return true
		}
	}
	return false
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.ToLower(item)
	}
	return out
}
