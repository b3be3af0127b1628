package bouquet

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/florelle/fleuriste/internal/domain/catalog"
	apperrors "github.com/florelle/fleuriste/pkg/errors"
)

func rankedFixture() []ScoredFlower {
	return []ScoredFlower{
		{Flower: catalog.Flower{ID: 1, Name: "Rose rouge", Color: "rouge", PricePerStem: 450}, Score: 9},
		{Flower: catalog.Flower{ID: 2, Name: "Pivoine", Color: "rose, blanc", PricePerStem: 600}, Score: 7},
		{Flower: catalog.Flower{ID: 3, Name: "Lys blanc", Color: "blanc", PricePerStem: 550}, Score: 5},
		{Flower: catalog.Flower{ID: 4, Name: "Tournesol", Color: "jaune", PricePerStem: 400}, Score: 3},
		{Flower: catalog.Flower{ID: 5, Name: "Lavande", Color: "violet", PricePerStem: 300}, Score: 1},
	}
}

func newTestSelector(stub *stubChatClient) *selector {
	return &selector{
		cfg:    testConfig(),
		client: stub,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSelectBindsAndTotals(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[{"id":1,"quantity":5,"reason":"coeur du bouquet"},{"id":2,"quantity":4,"reason":"douceur"},{"id":3,"quantity":3,"reason":"purete"}],"explanation":"Un bouquet d'amour."}`)

	rec, usage, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierStandard, nil, "", "declaration d'amour")
	require.NoError(t, err)
	require.Len(t, rec.Flowers, 3)
	require.Equal(t, 5*450+4*600+3*550, rec.TotalPrice)
	require.Equal(t, "Un bouquet d'amour.", rec.Explanation)
	require.False(t, usage.IsZero())
}

func TestSelectWorkingSetRespectsTier(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[{"id":1,"quantity":2,"reason":"r"},{"id":2,"quantity":2,"reason":"r"}],"explanation":"ok"}`)

	_, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierEconomique, nil, "", "intent")
	require.NoError(t, err)

	// economique allows at most 3 flower types, so the prompt must only
	// propose the top 3 ranked flowers.
	prompt := stub.requests[0].Messages[1].Content
	require.Contains(t, prompt, "Rose rouge")
	require.Contains(t, prompt, "Lys blanc")
	require.NotContains(t, prompt, "Tournesol")
	require.NotContains(t, prompt, "Lavande")
}

func TestSelectColorNarrowing(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[{"id":2,"quantity":3,"reason":"r"},{"id":3,"quantity":3,"reason":"r"}],"explanation":"ok"}`)

	_, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierStandard, []string{"Blanc"}, "", "intent")
	require.NoError(t, err)

	prompt := stub.requests[0].Messages[1].Content
	require.Contains(t, prompt, "Pivoine")
	require.Contains(t, prompt, "Lys blanc")
	require.NotContains(t, prompt, "Rose rouge")
}

func TestSelectColorFallbackWhenNothingMatches(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[{"id":1,"quantity":3,"reason":"r"}],"explanation":"ok"}`)

	rec, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierStandard, []string{"noir"}, "", "intent")
	require.NoError(t, err)
	require.Len(t, rec.Flowers, 1)

	// The color filter emptied the list, so the unfiltered ranking is used.
	prompt := stub.requests[0].Messages[1].Content
	require.Contains(t, prompt, "Rose rouge")
}

func TestSelectDropsUnknownIDs(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[{"id":1,"quantity":3,"reason":"r"},{"id":99,"quantity":4,"reason":"fantome"}],"explanation":"ok"}`)

	rec, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierStandard, nil, "", "intent")
	require.NoError(t, err)
	require.Len(t, rec.Flowers, 1)
	require.Equal(t, int64(1), rec.Flowers[0].Flower.ID)
	require.Equal(t, 3*450, rec.TotalPrice)
}

func TestSelectAllEntriesDroppedFails(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[{"id":98,"quantity":3,"reason":"r"},{"id":99,"quantity":4,"reason":"r"}],"explanation":"ok"}`)

	_, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierStandard, nil, "", "intent")
	require.True(t, apperrors.IsCode(err, apperrors.CodeCompositionFailure))
}

func TestSelectInvalidQuantityDropped(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[{"id":1,"quantity":0,"reason":"r"},{"id":2,"quantity":2,"reason":"r"}],"explanation":"ok"}`)

	rec, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierStandard, nil, "", "intent")
	require.NoError(t, err)
	require.Len(t, rec.Flowers, 1)
	require.Equal(t, int64(2), rec.Flowers[0].Flower.ID)
}

func TestSelectMalformedResponseFails(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[{"id":1,"reason":"quantity missing"}],"explanation":"ok"}`)

	_, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierStandard, nil, "", "intent")
	require.True(t, apperrors.IsCode(err, apperrors.CodeCompositionFailure))
}

func TestSelectEmptyFlowerListFails(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[],"explanation":"rien"}`)

	_, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierStandard, nil, "", "intent")
	require.True(t, apperrors.IsCode(err, apperrors.CodeCompositionFailure))
}

func TestSelectPromptCarriesConstraints(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[{"id":1,"quantity":3,"reason":"r"}],"explanation":"ok"}`)

	_, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierPremium, nil, "champetre", "un anniversaire joyeux")
	require.NoError(t, err)

	prompt := stub.requests[0].Messages[1].Content
	require.Contains(t, prompt, "between 4 and 6 flower types")
	require.Contains(t, prompt, "between 8000 and 15000 cents")
	require.Contains(t, prompt, "champetre")
	require.Contains(t, prompt, "un anniversaire joyeux")
}

func TestSelectBudgetContainmentWithObedientStub(t *testing.T) {
	// A composition service that obeys the prompt keeps the total inside
	// the envelope; the exact-sum invariant holds regardless.
	cases := map[BudgetTier]string{
		TierEconomique: `{"flowers":[{"id":1,"quantity":5,"reason":"r"},{"id":2,"quantity":3,"reason":"r"}],"explanation":"ok"}`,
		TierStandard:   `{"flowers":[{"id":1,"quantity":6,"reason":"r"},{"id":2,"quantity":4,"reason":"r"},{"id":3,"quantity":2,"reason":"r"}],"explanation":"ok"}`,
		TierPremium:    `{"flowers":[{"id":1,"quantity":8,"reason":"r"},{"id":2,"quantity":5,"reason":"r"},{"id":3,"quantity":4,"reason":"r"},{"id":4,"quantity":2,"reason":"r"}],"explanation":"ok"}`,
	}

	tiers := DefaultTiers()
	for tier, payload := range cases {
		stub := newStubChatClient(payload)
		rec, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), tier, nil, "", "intent")
		require.NoError(t, err, tier)

		envelope := tiers[tier]
		require.GreaterOrEqual(t, rec.TotalPrice, envelope.MinPrice, tier)
		require.LessOrEqual(t, rec.TotalPrice, envelope.MaxPrice, tier)

		sum := 0
		for _, flower := range rec.Flowers {
			sum += flower.Flower.PricePerStem * flower.Quantity
		}
		require.Equal(t, sum, rec.TotalPrice, tier)
	}
}

func TestNarrowByColorIgnoresBlankColors(t *testing.T) {
	ranked := rankedFixture()
	require.Equal(t, ranked, narrowByColor(ranked, []string{" ", ""}))
}

func TestSelectUnknownTierFails(t *testing.T) {
	stub := newStubChatClient()
	_, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), BudgetTier("luxe"), nil, "", "intent")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Equal(t, 0, stub.calls)
}

func TestSelectSystemPromptForbidsExtraFields(t *testing.T) {
	stub := newStubChatClient(`{"flowers":[{"id":1,"quantity":3,"reason":"r"}],"explanation":"ok"}`)

	_, _, err := newTestSelector(stub).Select(context.Background(), rankedFixture(), TierStandard, nil, "", "intent")
	require.NoError(t, err)
	require.True(t, strings.Contains(stub.requests[0].Messages[0].Content, "Respond ONLY with a JSON object"))
}
