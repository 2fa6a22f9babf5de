package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"mba-counselor/internal/models"

	"go.uber.org/zap"
)

// PreferenceService extracts structured preferences from user messages.
// Extraction never fails hard: on any parse uncertainty a key is omitted,
// and the worst case is an empty set.
type PreferenceService struct {
	generator Generator
	logger    *zap.Logger
}

func NewPreferenceService(generator Generator, logger *zap.Logger) *PreferenceService {
	return &PreferenceService{
		generator: generator,
		logger:    logger,
	}
}

const extractionPromptTemplate = `Analyze this user message and extract their MBA preferences in JSON format.

%sUser message: "%s"

Extract and categorize these preferences:
- specialization: (finance, marketing, analytics, hr, operations, general, etc.)
- budget: (low/affordable, medium, high/premium, or the stated amount such as "under 40000")
- career_goal: (their career aspirations)
- priorities: (list of: fees, placements, accreditation, ranking, etc.)
- location_preference: (if mentioned)
- experience_level: (fresher, experienced, years of experience)

IMPORTANT: Return ONLY a valid JSON object with no additional text, explanations, or markdown formatting.
Example: {"specialization": "finance", "budget": "low"}
If nothing is mentioned, return: {}`

// Extract returns the preferences stated in the latest message, using the
// prior history for context carry-over. Caller merges the result.
func (s *PreferenceService) Extract(ctx context.Context, message string, history []models.ConversationTurn) models.PreferenceSet {
	prompt := fmt.Sprintf(extractionPromptTemplate, historySnippet(history), message)

	content, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("LLM preference extraction failed, using keyword fallback", zap.Error(err))
		return extractKeywordFallback(message)
	}

	jsonStr, ok := extractJSONObject(content)
	if !ok {
		s.logger.Warn("No JSON object in extraction response, using keyword fallback")
		return extractKeywordFallback(message)
	}

	prefs, err := decodePreferences(jsonStr)
	if err != nil {
		s.logger.Warn("Failed to parse extracted preferences, using keyword fallback",
			zap.Error(err), zap.String("raw", truncate(jsonStr, 200)))
		return extractKeywordFallback(message)
	}

	if !prefs.IsEmpty() {
		s.logger.Info("Extracted preferences", zap.Strings("keys", prefs.PopulatedKeys()))
	}
	return prefs
}

// historySnippet renders the last few turns so references like "cheaper
// than that" resolve against earlier statements.
func historySnippet(history []models.ConversationTurn) string {
	if len(history) == 0 {
		return ""
	}

	start := len(history)
	if start > 3 {
		start = 3
	}
	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, turn := range history[len(history)-start:] {
		if turn.Failed {
			continue
		}
		b.WriteString("User: " + turn.UserMessage + "\n")
		b.WriteString("Counselor: " + truncate(turn.BotResponse, 200) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// decodePreferences tolerates the shapes LLMs actually return: scalar
// strings, numbers, and priorities as either a string or a list.
func decodePreferences(jsonStr string) (models.PreferenceSet, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return models.PreferenceSet{}, err
	}

	var prefs models.PreferenceSet
	prefs.Specialization = stringValue(raw["specialization"])
	prefs.Budget = stringValue(raw["budget"])
	prefs.CareerGoal = stringValue(raw["career_goal"])
	prefs.LocationPreference = stringValue(raw["location_preference"])
	prefs.ExperienceLevel = stringValue(raw["experience_level"])

	switch v := raw["priorities"].(type) {
	case string:
		if v != "" {
			prefs.Priorities = []string{strings.ToLower(v)}
		}
	case []any:
		for _, item := range v {
			if s := stringValue(item); s != "" {
				prefs.Priorities = append(prefs.Priorities, s)
			}
		}
	}

	return prefs, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(s))
	case float64:
		return fmt.Sprintf("%.0f", s)
	}
	return ""
}

var specializationKeywords = []string{
	"finance", "marketing", "analytics", "hr", "human resource", "operations", "general", "management",
}

var budgetPhraseRe = regexp.MustCompile(`(?i)(under|below|less than|within|up to)\s*(?:₹|\$|rs\.?\s*|inr\s*)?[\d,]+`)

// extractKeywordFallback is the deterministic extraction path used when
// the LLM output is unusable.
func extractKeywordFallback(message string) models.PreferenceSet {
	var prefs models.PreferenceSet
	messageLower := strings.ToLower(message)

	for _, spec := range specializationKeywords {
		if strings.Contains(messageLower, spec) {
			prefs.Specialization = spec
			break
		}
	}

	if m := budgetPhraseRe.FindString(messageLower); m != "" {
		prefs.Budget = m
	} else if containsAny(messageLower, "low", "cheap", "affordable", "budget-friendly") {
		prefs.Budget = "low"
	} else if containsAny(messageLower, "premium", "expensive", "high budget", "high-end") {
		prefs.Budget = "high"
	}

	var priorities []string
	if containsAny(messageLower, "fees", "cost", "price", "affordable") {
		priorities = append(priorities, "fees")
	}
	if containsAny(messageLower, "placement", "job", "career") {
		priorities = append(priorities, "placements")
	}
	if containsAny(messageLower, "accreditation", "accredited", "approved") {
		priorities = append(priorities, "accreditation")
	}
	prefs.Priorities = priorities

	if containsAny(messageLower, "fresher", "just graduated", "no experience") {
		prefs.ExperienceLevel = "fresher"
	}

	return prefs
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
