package catalogrepo

import (
	"context"
	"sync"

	"github.com/florelle/fleuriste/internal/domain/catalog"
)

// MemoryRepository is an in-memory catalog for tests and development.
type MemoryRepository struct {
	mu      sync.RWMutex
	flowers []catalog.Flower
}

// NewMemoryRepository constructs a repository over a fixed flower set.
func NewMemoryRepository(flowers []catalog.Flower) *MemoryRepository {
	return &MemoryRepository{flowers: append([]catalog.Flower(nil), flowers...)}
}

// ListFlowers returns a copy of the catalog snapshot.
func (r *MemoryRepository) ListFlowers(_ context.Context) ([]catalog.Flower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]catalog.Flower(nil), r.flowers...), nil
}

// DefaultSeed is the development catalog used when no database is wired.
func DefaultSeed() []catalog.Flower {
	return []catalog.Flower{
		{
			ID:           1,
			Name:         "Rose rouge",
			Symbolism:    "La rose rouge exprime l'amour passionne et le desir.",
			Emotions:     []string{"amour", "passion"},
			Keywords:     []string{"aimer", "romance", "saint-valentin"},
			Color:        "rouge",
			PricePerStem: 450,
			Stock:        120,
		},
		{
			ID:           2,
			Name:         "Pivoine",
			Symbolism:    "La pivoine evoque la tendresse, la prosperite et une affection sincere.",
			Emotions:     []string{"tendresse", "bonheur"},
			Keywords:     []string{"douceur", "mariage", "felicitations"},
			Color:        "rose, blanc",
			PricePerStem: 600,
			Stock:        80,
		},
		{
			ID:           3,
			Name:         "Lys blanc",
			Symbolism:    "Le lys blanc represente la purete et la dignite du souvenir.",
			Emotions:     []string{"respect", "deuil"},
			Keywords:     []string{"condoleances", "hommage", "purete"},
			Color:        "blanc",
			PricePerStem: 550,
			Stock:        60,
		},
		{
			ID:           4,
			Name:         "Tournesol",
			Symbolism:    "Le tournesol rayonne de joie, d'admiration et de vitalite.",
			Emotions:     []string{"joie", "admiration"},
			Keywords:     []string{"soleil", "anniversaire", "energie"},
			Color:        "jaune",
			PricePerStem: 400,
			Stock:        90,
		},
		{
			ID:           5,
			Name:         "Lavande",
			Symbolism:    "La lavande apaise et porte la serenite des souvenirs doux.",
			Emotions:     []string{"serenite", "nostalgie"},
			Keywords:     []string{"calme", "provence", "merci"},
			Color:        "violet",
			PricePerStem: 300,
			Stock:        150,
		},
		{
			ID:           6,
			Name:         "Orchidee",
			Symbolism:    "L'orchidee incarne l'elegance rare et la beaute delicate.",
			Emotions:     []string{"admiration", "elegance"},
			Keywords:     []string{"raffinement", "luxe", "exotique"},
			Color:        "blanc, violet",
			PricePerStem: 900,
			Stock:        40,
		},
	}
}
