package service

import (
	"strings"
	"testing"

	"mba-counselor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeAsksWhenNothingKnown(t *testing.T) {
	composer := NewComposerService()

	text, cards := composer.Compose(nil, models.PreferenceSet{}, nil)

	assert.NotEmpty(t, text)
	assert.Contains(t, text, "?")
	assert.Empty(t, cards)
}

func TestComposeNoMatchWithPreferences(t *testing.T) {
	composer := NewComposerService()
	prefs := models.PreferenceSet{Specialization: "finance", Budget: "low"}

	text, cards := composer.Compose(nil, prefs, nil)

	assert.Contains(t, text, "finance")
	assert.Contains(t, text, "couldn't find")
	assert.Empty(t, cards)
}

func TestComposeListsEveryMatchByName(t *testing.T) {
	composer := NewComposerService()
	matches := []models.RankedMatch{
		{University: models.University{Name: "Amity University"}},
		{University: models.University{Name: "Manipal University"}},
		{University: models.University{Name: "Jain University"}},
	}

	text, cards := composer.Compose(matches, models.PreferenceSet{}, nil)

	require.Len(t, cards, 3)
	for _, m := range matches {
		assert.Contains(t, text, m.University.Name)
	}
	assert.Equal(t, "Amity University", cards[0].Name, "card order must follow match order")
}

func TestComposeIsDeterministic(t *testing.T) {
	composer := NewComposerService()
	matches := []models.RankedMatch{
		{University: models.University{Name: "Amity University", FeesPerSemester: 42000}},
	}
	prefs := models.PreferenceSet{Specialization: "marketing", Priorities: []string{"placements", "fees"}}

	first, _ := composer.Compose(matches, prefs, nil)
	for i := 0; i < 5; i++ {
		again, _ := composer.Compose(matches, prefs, nil)
		assert.Equal(t, first, again)
	}
}

func TestProjectCardDefaults(t *testing.T) {
	card := projectCard(models.RankedMatch{
		University: models.University{
			Name:            "Sparse University",
			FeesPerSemester: 38500,
		},
	})

	assert.Equal(t, "₹38,500 per semester", card.Fees)
	assert.Equal(t, "Not Available", card.ReviewSource)
	assert.Equal(t, "To be verified", card.Accreditations)
	assert.Equal(t, "#", card.Website)
	assert.Equal(t, "#", card.Brochure)
	assert.NotNil(t, card.Pros)
	assert.NotNil(t, card.Reasons)
	assert.NotNil(t, card.ReviewSentiment)
}

func TestProjectCardLinkFallbacks(t *testing.T) {
	card := projectCard(models.RankedMatch{
		University: models.University{
			Name:           "Linked University",
			LandingPageURL: "https://example.com/mba",
			BrochureURL:    "https://example.com/brochure.pdf",
		},
	})

	assert.Equal(t, "https://example.com/mba", card.Website, "landing page fills in for a missing website")
	assert.Equal(t, "https://example.com/brochure.pdf", card.Brochure)
}

func TestDescribePreferencesFixedOrder(t *testing.T) {
	prefs := models.PreferenceSet{
		ExperienceLevel: "fresher",
		Specialization:  "finance",
		Budget:          "low",
	}

	desc := describePreferences(prefs)

	specIdx := strings.Index(desc, "finance")
	budgetIdx := strings.Index(desc, "budget")
	expIdx := strings.Index(desc, "fresher")
	assert.True(t, specIdx < budgetIdx && budgetIdx < expIdx, "description order must not depend on input order: %s", desc)
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "A", joinNames([]string{"A"}))
	assert.Equal(t, "A and B", joinNames([]string{"A", "B"}))
	assert.Equal(t, "A, B and C", joinNames([]string{"A", "B", "C"}))
}
