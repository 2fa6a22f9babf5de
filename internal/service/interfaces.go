package service

import (
	"context"

	"mba-counselor/internal/models"

	"github.com/google/uuid"
)

// Embedder maps text to a fixed-dimension vector. Deterministic for a
// pinned model version.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Ping(ctx context.Context) error
}

// Generator runs a completion against the counselor model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SimilarityStore answers top-K nearest-neighbour queries.
type SimilarityStore interface {
	SearchSimilar(ctx context.Context, req *models.SimilarityRequest) ([]models.SearchHit, error)
	Ping(ctx context.Context) error
}

// TurnStore persists conversation turns for context and audit.
type TurnStore interface {
	SaveTurn(ctx context.Context, turn *models.ConversationTurn, prefs models.PreferenceSet) error
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
}
