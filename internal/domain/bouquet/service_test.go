package bouquet

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/florelle/fleuriste/internal/domain/catalog"
	"github.com/florelle/fleuriste/internal/infra/llm/chatgpt"
	apperrors "github.com/florelle/fleuriste/pkg/errors"
)

type stubCatalog struct {
	flowers []catalog.Flower
	err     error
}

func (s *stubCatalog) ListFlowers(context.Context) ([]catalog.Flower, error) {
	return s.flowers, s.err
}

func newTestService(catalogRepo catalog.Repository, stub *stubChatClient) Service {
	return NewService(testConfig(), catalogRepo, stub, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func loveCatalog() []catalog.Flower {
	return []catalog.Flower{
		{
			ID:           1,
			Name:         "Rose rouge",
			Symbolism:    "La rose rouge exprime l'amour passionne.",
			Emotions:     []string{"amour"},
			Keywords:     []string{"aimer", "romance"},
			Color:        "rouge",
			PricePerStem: 450,
		},
		{
			ID:           2,
			Name:         "Pivoine",
			Symbolism:    "La pivoine evoque la tendresse.",
			Emotions:     []string{"tendresse"},
			Keywords:     []string{"douceur", "mariage"},
			Color:        "rose",
			PricePerStem: 600,
		},
		{
			ID:           3,
			Name:         "Myosotis",
			Symbolism:    "Le myosotis murmure ne m'oublie pas.",
			Emotions:     []string{"fidelite", "amour"},
			Keywords:     []string{"souvenir", "toujours"},
			Color:        "bleu",
			PricePerStem: 250,
		},
	}
}

const loveAnalysis = `{"emotions":["amour"],"keywords":["aimer","toujours"],"occasion":"saint-valentin","sentiment":"positive","summary":"Declaration d'amour durable."}`

func TestRecommendScenarioLoveMessage(t *testing.T) {
	stub := newStubChatClient(
		loveAnalysis,
		`{"flowers":[{"id":1,"quantity":7,"reason":"l'amour passionne"},{"id":3,"quantity":8,"reason":"la fidelite"},{"id":2,"quantity":2,"reason":"la tendresse"}],"explanation":"Une declaration fidele et passionnee."}`,
	)

	result, err := newTestService(&stubCatalog{flowers: loveCatalog()}, stub).Recommend(context.Background(), Request{
		Message: "Je t'aime depuis toujours",
		Budget:  TierStandard,
	})
	require.NoError(t, err)
	require.Equal(t, 2, stub.calls)

	ids := make([]int64, 0, len(result.Recommendation.Flowers))
	for _, flower := range result.Recommendation.Flowers {
		ids = append(ids, flower.Flower.ID)
	}
	require.Contains(t, ids, int64(1))
	require.Equal(t, 7*450+8*250+2*600, result.Recommendation.TotalPrice)
	require.Equal(t, "saint-valentin", result.Analysis.Occasion)
	require.Equal(t, "Une declaration fidele et passionnee.", result.Recommendation.Explanation)
	require.False(t, result.TokenUsage.IsZero())
}

func TestRecommendScenarioNoMatch(t *testing.T) {
	stub := newStubChatClient(`{"emotions":["confusion"],"keywords":["xyz123"],"occasion":null,"sentiment":"neutral","summary":"Message sans correspondance."}`)

	_, err := newTestService(&stubCatalog{flowers: loveCatalog()}, stub).Recommend(context.Background(), Request{
		Message: "test sans aucune correspondance xyz123",
		Budget:  TierStandard,
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNoMatch))

	// The composition service is never consulted once matching fails.
	require.Equal(t, 1, stub.calls)
}

func TestRecommendScenarioUnknownCompositionIDs(t *testing.T) {
	stub := newStubChatClient(
		loveAnalysis,
		`{"flowers":[{"id":77,"quantity":3,"reason":"r"},{"id":1,"quantity":5,"reason":"l'amour"}],"explanation":"ok"}`,
	)

	result, err := newTestService(&stubCatalog{flowers: loveCatalog()}, stub).Recommend(context.Background(), Request{
		Message: "Je t'aime depuis toujours",
		Budget:  TierStandard,
	})
	require.NoError(t, err)
	require.Len(t, result.Recommendation.Flowers, 1)
	require.Equal(t, int64(1), result.Recommendation.Flowers[0].Flower.ID)
	require.Equal(t, 5*450, result.Recommendation.TotalPrice)
}

func TestRecommendScenarioAllCompositionIDsUnknown(t *testing.T) {
	stub := newStubChatClient(
		loveAnalysis,
		`{"flowers":[{"id":77,"quantity":3,"reason":"r"},{"id":88,"quantity":5,"reason":"r"}],"explanation":"ok"}`,
	)

	_, err := newTestService(&stubCatalog{flowers: loveCatalog()}, stub).Recommend(context.Background(), Request{
		Message: "Je t'aime depuis toujours",
		Budget:  TierStandard,
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeCompositionFailure))
}

func TestRecommendEmptyMessage(t *testing.T) {
	stub := newStubChatClient()

	_, err := newTestService(&stubCatalog{flowers: loveCatalog()}, stub).Recommend(context.Background(), Request{
		Message: "   ",
		Budget:  TierStandard,
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Equal(t, 0, stub.calls)
}

func TestRecommendInvalidBudget(t *testing.T) {
	stub := newStubChatClient()

	_, err := newTestService(&stubCatalog{flowers: loveCatalog()}, stub).Recommend(context.Background(), Request{
		Message: "bonjour",
		Budget:  BudgetTier("luxe"),
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Equal(t, 0, stub.calls)
}

func TestRecommendCatalogFailure(t *testing.T) {
	stub := newStubChatClient()

	_, err := newTestService(&stubCatalog{err: context.DeadlineExceeded}, stub).Recommend(context.Background(), Request{
		Message: "bonjour",
		Budget:  TierStandard,
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeCatalogError))
	require.Equal(t, 0, stub.calls)
}

func TestRecommendAnalysisFailurePropagates(t *testing.T) {
	stub := newStubChatClient("not json at all")

	_, err := newTestService(&stubCatalog{flowers: loveCatalog()}, stub).Recommend(context.Background(), Request{
		Message: "bonjour",
		Budget:  TierStandard,
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeAnalysisFailure))
}

// stubChatClient replays canned completions and records every request.
type stubChatClient struct {
	responses []chatgpt.ChatCompletionResponse
	requests  []chatgpt.ChatCompletionRequest
	err       error
	calls     int
}

func newStubChatClient(contents ...string) *stubChatClient {
	responses := make([]chatgpt.ChatCompletionResponse, 0, len(contents))
	for _, content := range contents {
		responses = append(responses, completion(content))
	}
	return &stubChatClient{responses: responses}
}

// completion builds a single-choice response the way the API returns it,
// with a usage block so tests never fall back to token estimation.
func completion(content string) chatgpt.ChatCompletionResponse {
	resp := chatgpt.ChatCompletionResponse{
		Usage: chatgpt.Usage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200},
	}
	if content == "" {
		return resp
	}
	resp.Choices = []struct {
		Message chatgpt.Message "json:\"message\""
	}{
		{Message: chatgpt.Message{Role: "assistant", Content: content}},
	}
	return resp
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	s.requests = append(s.requests, req)
	if s.calls >= len(s.responses) {
		return chatgpt.ChatCompletionResponse{}, nil
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}
