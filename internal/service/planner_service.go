package service

import (
	"context"
	"fmt"

	"mba-counselor/internal/models"
	"mba-counselor/pkg/config"

	"go.uber.org/zap"
)

// PlannerService turns a message plus the merged preferences into one
// retrieval request. The semantic query always runs on the raw message;
// structured preferences only refine it. Given identical inputs the
// request is identical: there is no randomness here, and the embedding
// model is deterministic for a pinned version.
type PlannerService struct {
	embedder Embedder
	config   *config.RecommendConfig
	logger   *zap.Logger
}

func NewPlannerService(embedder Embedder, cfg *config.RecommendConfig, logger *zap.Logger) *PlannerService {
	return &PlannerService{
		embedder: embedder,
		config:   cfg,
		logger:   logger,
	}
}

// Plan embeds the raw message and builds the similarity request.
// Top-K over-fetches relative to the display cap because several chunks
// can map to the same university. A fee ceiling becomes a hard store-side
// predicate only when the user's wording is explicitly exclusionary;
// otherwise budget stays a ranking signal.
func (s *PlannerService) Plan(ctx context.Context, message string, prefs models.PreferenceSet) (*models.SimilarityRequest, error) {
	vector, err := s.embedder.Embed(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	req := &models.SimilarityRequest{
		Vector: vector,
		TopK:   s.config.DisplayCap * s.config.OverfetchFactor,
	}

	if ceiling, strict, ok := prefs.BudgetCeiling(); ok && strict {
		req.MaxFees = ceiling
		req.StrictMaxFees = true
	}

	s.logger.Debug("Planned similarity request",
		zap.Int("top_k", req.TopK),
		zap.Bool("strict_fee_ceiling", req.StrictMaxFees),
	)

	return req, nil
}
