package service

import (
	"context"
	"errors"
	"testing"

	"mba-counselor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector  []float32
	err     error
	pingErr error
	inputs  []string
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.inputs = append(e.inputs, text)
	return e.vector, e.err
}

func (e *fakeEmbedder) Ping(context.Context) error { return e.pingErr }

func TestPlanEmbedsRawMessage(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	planner := NewPlannerService(embedder, testRecommendConfig(), testLogger())

	req, err := planner.Plan(context.Background(), "affordable finance mba", models.PreferenceSet{Specialization: "finance"})
	require.NoError(t, err)

	assert.Equal(t, []string{"affordable finance mba"}, embedder.inputs, "the semantic query is the raw message, not a rewrite")
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, req.Vector)
	assert.Equal(t, 15, req.TopK, "top-K over-fetches display cap times overfetch factor")
}

func TestPlanStrictBudgetBecomesPredicate(t *testing.T) {
	planner := NewPlannerService(&fakeEmbedder{vector: []float32{1}}, testRecommendConfig(), testLogger())

	req, err := planner.Plan(context.Background(), "msg", models.PreferenceSet{Budget: "under 40000"})
	require.NoError(t, err)

	assert.True(t, req.StrictMaxFees)
	assert.Equal(t, 40000.0, req.MaxFees)
}

func TestPlanSoftBudgetStaysOutOfQuery(t *testing.T) {
	planner := NewPlannerService(&fakeEmbedder{vector: []float32{1}}, testRecommendConfig(), testLogger())

	for _, budget := range []string{"low", "around ₹40,000", ""} {
		req, err := planner.Plan(context.Background(), "msg", models.PreferenceSet{Budget: budget})
		require.NoError(t, err)
		assert.False(t, req.StrictMaxFees, "budget %q must not become a store predicate", budget)
	}
}

func TestPlanPropagatesEmbedderError(t *testing.T) {
	planner := NewPlannerService(&fakeEmbedder{err: errors.New("boom")}, testRecommendConfig(), testLogger())

	_, err := planner.Plan(context.Background(), "msg", models.PreferenceSet{})
	assert.Error(t, err)
}
