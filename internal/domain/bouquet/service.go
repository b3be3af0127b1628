package bouquet

import (
	"context"
	"log/slog"
	"strings"

	"github.com/florelle/fleuriste/internal/domain/catalog"
	"github.com/florelle/fleuriste/internal/infra/llm/chatgpt"
	apperrors "github.com/florelle/fleuriste/pkg/errors"
)

// Service is the only entry point collaborators call. The pipeline is pure
// and all-or-nothing: analyze, score, select, in that order, with every
// stage failure terminal for the request. Persisting the result (and
// decrementing stock) stays with the caller.
type Service interface {
	Recommend(ctx context.Context, req Request) (Result, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type service struct {
	catalog  catalog.Repository
	analyzer *analyzer
	selector *selector
	logger   *slog.Logger
}

// NewService wires up the recommendation domain.
func NewService(cfg Config, repo catalog.Repository, client ChatClient, logger *slog.Logger) Service {
	if cfg.Tiers == nil {
		cfg.Tiers = DefaultTiers()
	}
	return &service{
		catalog:  repo,
		analyzer: &analyzer{cfg: cfg, client: client, logger: logger.With("component", "bouquet.analyzer")},
		selector: &selector{cfg: cfg, client: client, logger: logger.With("component", "bouquet.selector")},
		logger:   logger.With("component", "bouquet.service"),
	}
}

func (s *service) Recommend(ctx context.Context, req Request) (Result, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "message cannot be empty", nil)
	}
	if _, ok := ParseBudgetTier(string(req.Budget)); !ok {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "budget must be economique, standard or premium", nil)
	}

	flowers, err := s.catalog.ListFlowers(ctx)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeCatalogError, "failed to load the flower catalog", err)
	}

	analysis, analysisUsage, err := s.analyzer.Analyze(ctx, message)
	if err != nil {
		return Result{}, err
	}

	// Emotions and keywords are matched together; duplicates between the
	// two lists compound relevance on purpose.
	keywords := append(append([]string{}, analysis.Emotions...), analysis.Keywords...)
	scored := Score(keywords, flowers)
	if len(scored) == 0 {
		return Result{}, apperrors.Wrap(apperrors.CodeNoMatch, "no flower in the catalog corresponds to this message", nil)
	}

	recommendation, selectUsage, err := s.selector.Select(ctx, scored, req.Budget, req.Colors, req.Style, analysis.Summary)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Analysis:       analysis,
		Recommendation: recommendation,
		TokenUsage:     analysisUsage.Add(selectUsage),
	}, nil
}
