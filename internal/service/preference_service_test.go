package service

import (
	"context"
	"errors"
	"testing"

	"mba-counselor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

func TestExtractParsesLLMResponse(t *testing.T) {
	gen := &fakeGenerator{response: `{"specialization": "finance", "budget": "under 40000", "priorities": ["fees", "placements"]}`}
	svc := NewPreferenceService(gen, testLogger())

	prefs := svc.Extract(context.Background(), "I want a finance MBA under 40000", nil)

	assert.Equal(t, "finance", prefs.Specialization)
	assert.Equal(t, "under 40000", prefs.Budget)
	assert.Equal(t, []string{"fees", "placements"}, prefs.Priorities)
}

func TestExtractStripsMarkdownFences(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n{\"specialization\": \"marketing\"}\n```"}
	svc := NewPreferenceService(gen, testLogger())

	prefs := svc.Extract(context.Background(), "marketing please", nil)

	assert.Equal(t, "marketing", prefs.Specialization)
}

func TestExtractToleratesPrioritiesAsString(t *testing.T) {
	gen := &fakeGenerator{response: `{"priorities": "placements"}`}
	svc := NewPreferenceService(gen, testLogger())

	prefs := svc.Extract(context.Background(), "placements matter", nil)

	assert.Equal(t, []string{"placements"}, prefs.Priorities)
}

func TestExtractFallsBackOnLLMError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream down")}
	svc := NewPreferenceService(gen, testLogger())

	prefs := svc.Extract(context.Background(), "I want an affordable finance MBA, fees matter", nil)

	assert.Equal(t, "finance", prefs.Specialization)
	assert.Equal(t, "low", prefs.Budget)
	assert.Contains(t, prefs.Priorities, "fees")
}

func TestExtractFallsBackOnGarbage(t *testing.T) {
	gen := &fakeGenerator{response: "Sure! Here are some great options for you."}
	svc := NewPreferenceService(gen, testLogger())

	prefs := svc.Extract(context.Background(), "cheap hr program for a fresher", nil)

	assert.Equal(t, "hr", prefs.Specialization)
	assert.Equal(t, "low", prefs.Budget)
	assert.Equal(t, "fresher", prefs.ExperienceLevel)
}

func TestExtractIncludesRecentHistory(t *testing.T) {
	gen := &fakeGenerator{response: `{}`}
	svc := NewPreferenceService(gen, testLogger())
	history := []models.ConversationTurn{
		{UserMessage: "I like finance", BotResponse: "Noted."},
		{UserMessage: "broken turn", BotResponse: "apology", Failed: true},
	}

	svc.Extract(context.Background(), "what about fees?", history)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "I like finance")
	assert.NotContains(t, gen.prompts[0], "broken turn", "failed turns stay out of the context window")
}

func TestKeywordFallbackBudgetPhrase(t *testing.T) {
	prefs := extractKeywordFallback("show me programs under ₹45,000")
	assert.Equal(t, "under ₹45,000", prefs.Budget)

	amount, strict, ok := prefs.BudgetCeiling()
	require.True(t, ok)
	assert.True(t, strict)
	assert.Equal(t, 45000.0, amount)
}

func TestKeywordFallbackEmptyMessage(t *testing.T) {
	prefs := extractKeywordFallback("tell me something interesting")
	assert.True(t, prefs.IsEmpty())
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a": 1}`, `{"a": 1}`, true},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`, true},
		{`Here you go: {"a": 1} hope it helps`, `{"a": 1}`, true},
		{"no json here", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := extractJSONObject(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
