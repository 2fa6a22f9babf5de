package service

import (
	"fmt"
	"strings"

	"mba-counselor/internal/dto"
	"mba-counselor/internal/models"
)

// ComposerService turns ranked matches and preferences into the reply
// text plus the card payload. Pure transformation: no upstream calls, no
// session mutation, deterministic for identical inputs.
type ComposerService struct{}

func NewComposerService() *ComposerService {
	return &ComposerService{}
}

// Compose builds the conversational reply and projects the matches into
// the external card schema one-to-one, order-preserving.
func (s *ComposerService) Compose(matches []models.RankedMatch, prefs models.PreferenceSet, history []models.ConversationTurn) (string, []dto.UniversityCard) {
	cards := make([]dto.UniversityCard, 0, len(matches))
	for _, m := range matches {
		cards = append(cards, projectCard(m))
	}

	return s.composeText(matches, prefs, history), cards
}

func (s *ComposerService) composeText(matches []models.RankedMatch, prefs models.PreferenceSet, history []models.ConversationTurn) string {
	if len(matches) == 0 {
		if prefs.IsEmpty() {
			// nothing understood yet: ask instead of guessing
			return "I'd love to help you find the right MBA program! Could you tell me a bit more about what you're looking for - for example a specialization like Finance or Marketing, a rough budget, or what matters most to you in a program?"
		}
		return fmt.Sprintf("I understand you're looking for %s, but I couldn't find programs that fit just yet. Would you like to relax one of your criteria, or tell me more about your goals?", describePreferences(prefs))
	}

	var b strings.Builder
	if !prefs.IsEmpty() {
		b.WriteString(fmt.Sprintf("Based on what you've told me - %s - ", describePreferences(prefs)))
	} else {
		b.WriteString("From what you've described, ")
	}

	if len(matches) == 1 {
		b.WriteString(fmt.Sprintf("I found one program that stands out: %s.", matches[0].University.Name))
	} else {
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.University.Name)
		}
		b.WriteString(fmt.Sprintf("I found %d programs worth a close look: %s.", len(matches), joinNames(names)))
	}

	b.WriteString(" I've put together cards with the details below. Would you like to narrow these down further, or learn more about any of them?")
	return b.String()
}

// describePreferences renders the populated keys in a fixed order.
func describePreferences(prefs models.PreferenceSet) string {
	var parts []string
	if prefs.Specialization != "" {
		parts = append(parts, fmt.Sprintf("a %s specialization", prefs.Specialization))
	}
	if prefs.Budget != "" {
		parts = append(parts, fmt.Sprintf("a %s budget", prefs.Budget))
	}
	if prefs.CareerGoal != "" {
		parts = append(parts, fmt.Sprintf("aiming for %s", prefs.CareerGoal))
	}
	if len(prefs.Priorities) > 0 {
		parts = append(parts, fmt.Sprintf("prioritizing %s", strings.Join(prefs.Priorities, " and ")))
	}
	if prefs.LocationPreference != "" {
		parts = append(parts, fmt.Sprintf("around %s", prefs.LocationPreference))
	}
	if prefs.ExperienceLevel != "" {
		parts = append(parts, fmt.Sprintf("as a %s", prefs.ExperienceLevel))
	}
	return strings.Join(parts, ", ")
}

func joinNames(names []string) string {
	if len(names) <= 1 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func projectCard(m models.RankedMatch) dto.UniversityCard {
	u := m.University
	return dto.UniversityCard{
		Name:            u.Name,
		Specialization:  u.Specialization,
		Fees:            fmt.Sprintf("%s per semester", formatINR(u.FeesPerSemester)),
		AlumniStatus:    u.AlumniStatus,
		ReviewRating:    u.ReviewRating,
		ReviewCount:     u.ReviewCount,
		ReviewSentiment: emptyIfNil(u.ReviewSentiment),
		ReviewSource:    reviewSourceOrDefault(u.ReviewSource),
		Accreditations:  accreditationsOrDefault(u.Accreditations),
		Pros:            emptyIfNil(m.Pros),
		Reasons:         emptyIfNil(m.Reasons),
		Website:         u.WebsiteOrLanding(),
		Brochure:        u.BrochureLink(),
	}
}

func reviewSourceOrDefault(source string) string {
	if source == "" {
		return "Not Available"
	}
	return source
}

func accreditationsOrDefault(accr string) string {
	if accr == "" {
		return "To be verified"
	}
	return accr
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
