package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/florelle/fleuriste/internal/domain/bouquet"
	"github.com/florelle/fleuriste/internal/domain/catalog"
	apperrors "github.com/florelle/fleuriste/pkg/errors"
	"github.com/florelle/fleuriste/pkg/metrics"
	"github.com/florelle/fleuriste/pkg/util"
)

// Handler wires the HTTP transport to the recommendation domain. It is the
// "caller" of the pipeline contract: it persists accepted recommendations
// and bumps the occasion counters, neither of which the pipeline does.
type Handler struct {
	recommender  bouquet.Service
	bouquets     bouquet.Repository
	trending     bouquet.TrendingStore
	catalog      catalog.Repository
	topOccasions int
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(recommender bouquet.Service, bouquets bouquet.Repository, trending bouquet.TrendingStore, catalogRepo catalog.Repository, topOccasions int, logger *slog.Logger) *Handler {
	return &Handler{
		recommender:  recommender,
		bouquets:     bouquets,
		trending:     trending,
		catalog:      catalogRepo,
		topOccasions: topOccasions,
		logger:       logger.With("component", "http.handler"),
	}
}

type recommendRequest struct {
	Message string   `json:"message" binding:"required"`
	Budget  string   `json:"budget" binding:"required"`
	Colors  []string `json:"colors"`
	Style   string   `json:"style"`
}

type recommendResponse struct {
	BouquetID   int64                          `json:"bouquetId"`
	Flowers     []bouquet.RecommendationFlower `json:"flowers"`
	TotalPrice  int                            `json:"totalPrice"`
	Explanation string                         `json:"explanation"`
	Analysis    analysisView                   `json:"analysis"`
	TokenUsage  *metrics.TokenUsage            `json:"tokenUsage,omitempty"`
}

type analysisView struct {
	Occasion  string            `json:"occasion,omitempty"`
	Sentiment bouquet.Sentiment `json:"sentiment"`
	Summary   string            `json:"summary"`
}

// Recommend runs the recommendation pipeline and persists the result.
func (h *Handler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	budget, ok := bouquet.ParseBudgetTier(req.Budget)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "budget must be economique, standard or premium", nil))
		return
	}

	result, err := h.recommender.Recommend(c.Request.Context(), bouquet.Request{
		Message: req.Message,
		Budget:  budget,
		Colors:  req.Colors,
		Style:   req.Style,
	})
	if err != nil {
		abortWithError(c, recommendationError(err))
		return
	}

	record := bouquet.Record{
		Message:     req.Message,
		Budget:      budget,
		Style:       req.Style,
		Occasion:    result.Analysis.Occasion,
		TotalPrice:  result.Recommendation.TotalPrice,
		Explanation: result.Recommendation.Explanation,
		CreatedAt:   util.NowUTC(),
	}
	for _, flower := range result.Recommendation.Flowers {
		record.Flowers = append(record.Flowers, bouquet.RecordFlower{
			FlowerID: flower.Flower.ID,
			Quantity: flower.Quantity,
			Reason:   flower.Reason,
		})
	}
	bouquetID, err := h.bouquets.SaveRecommendation(c.Request.Context(), record)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, apperrors.CodeStorageError, "failed to save the bouquet", err))
		return
	}

	if result.Analysis.Occasion != "" {
		if err := h.trending.IncrementOccasion(c.Request.Context(), result.Analysis.Occasion); err != nil {
			h.logger.Warn("occasion counter update failed", "occasion", result.Analysis.Occasion, "error", err)
		}
	}

	resp := recommendResponse{
		BouquetID:   bouquetID,
		Flowers:     result.Recommendation.Flowers,
		TotalPrice:  result.Recommendation.TotalPrice,
		Explanation: result.Recommendation.Explanation,
		Analysis: analysisView{
			Occasion:  result.Analysis.Occasion,
			Sentiment: result.Analysis.Sentiment,
			Summary:   result.Analysis.Summary,
		},
	}
	if !result.TokenUsage.IsZero() {
		usage := result.TokenUsage
		resp.TokenUsage = &usage
	}
	c.JSON(http.StatusOK, resp)
}

// ListFlowers exposes the catalog snapshot the pipeline matches against.
func (h *Handler) ListFlowers(c *gin.Context) {
	flowers, err := h.catalog.ListFlowers(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, apperrors.CodeCatalogError, "failed to load the flower catalog", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"flowers": flowers})
}

// TrendingOccasions returns the most requested occasions.
func (h *Handler) TrendingOccasions(c *gin.Context) {
	occasions, err := h.trending.TopOccasions(c.Request.Context(), h.topOccasions)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, apperrors.CodeStorageError, "failed to load trending occasions", err))
		return
	}
	if occasions == nil {
		occasions = []bouquet.OccasionCount{}
	}
	c.JSON(http.StatusOK, gin.H{"occasions": occasions})
}

func recommendationError(err error) *HTTPError {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.CodeNoMatch:
		return NewHTTPError(http.StatusUnprocessableEntity, apperrors.CodeNoMatch, "no flowers correspond to this message", err)
	case apperrors.CodeAnalysisFailure:
		return NewHTTPError(http.StatusBadGateway, apperrors.CodeAnalysisFailure, "could not process your message", err)
	case apperrors.CodeCompositionFailure:
		return NewHTTPError(http.StatusBadGateway, apperrors.CodeCompositionFailure, "could not build a bouquet for this request", err)
	case apperrors.CodeCatalogError:
		return NewHTTPError(http.StatusInternalServerError, apperrors.CodeCatalogError, "failed to load the flower catalog", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "recommendation_failed", errMessage(err), err)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
