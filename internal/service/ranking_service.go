package service

import (
	"fmt"
	"sort"
	"strings"

	"mba-counselor/internal/models"
	"mba-counselor/pkg/config"

	"go.uber.org/zap"
)

// Fee bands used for budget reasoning, in the store's fee currency.
const (
	lowFeeCeiling      = 35000
	moderateFeeCeiling = 45000
	premiumFeeFloor    = 50000
)

// Per-signal boost weights. The applied total is clamped to the
// configured boost margin so a boost can never outrank a semantic match
// that is more than the margin better.
const (
	specializationBoost = 0.08
	budgetBoost         = 0.05
	accreditationBoost  = 0.03
	cashbackBoost       = 0.02
)

// RankingService merges raw similarity hits into one ranked, deduplicated
// list of universities.
type RankingService struct {
	config *config.RecommendConfig
	logger *zap.Logger
}

func NewRankingService(cfg *config.RecommendConfig, logger *zap.Logger) *RankingService {
	return &RankingService{
		config: cfg,
		logger: logger,
	}
}

// Rank deduplicates hits by university, boosts preference matches within
// the configured margin, orders the result and caps it at the display cap.
// The ordering is fully deterministic: score desc, then review rating
// desc, review count desc, name asc.
func (s *RankingService) Rank(hits []models.SearchHit, prefs models.PreferenceSet) []models.RankedMatch {
	merged := s.mergeByUniversity(hits)

	matches := make([]models.RankedMatch, 0, len(merged))
	for _, m := range merged {
		if m.Similarity < s.config.MinSimilarity {
			continue
		}

		boost, reasons := s.preferenceBoost(&m.University, prefs)
		if boost > s.config.BoostMargin {
			boost = s.config.BoostMargin
		} else if boost < -s.config.BoostMargin {
			boost = -s.config.BoostMargin
		}

		m.Score = m.Similarity + boost
		m.Reasons = capStrings(reasons, s.config.MaxReasons)
		m.Pros = capStrings(s.derivePros(&m.University), s.config.MaxPros)
		matches = append(matches, *m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.University.ReviewRating != b.University.ReviewRating {
			return a.University.ReviewRating > b.University.ReviewRating
		}
		if a.University.ReviewCount != b.University.ReviewCount {
			return a.University.ReviewCount > b.University.ReviewCount
		}
		return a.University.Name < b.University.Name
	})

	if len(matches) > s.config.DisplayCap {
		matches = matches[:s.config.DisplayCap]
	}

	return matches
}

// mergeByUniversity combines multiple hits for the same university into
// one candidate: best similarity wins, matched content types collect in
// first-seen order.
func (s *RankingService) mergeByUniversity(hits []models.SearchHit) []*models.RankedMatch {
	byID := make(map[int64]*models.RankedMatch)
	var order []int64

	for _, hit := range hits {
		m, seen := byID[hit.University.ID]
		if !seen {
			m = &models.RankedMatch{
				University: hit.University,
				Similarity: hit.Similarity,
			}
			byID[hit.University.ID] = m
			order = append(order, hit.University.ID)
		}
		if hit.Similarity > m.Similarity {
			m.Similarity = hit.Similarity
		}
		if !containsContentType(m.MatchedContentTypes, hit.ContentType) {
			m.MatchedContentTypes = append(m.MatchedContentTypes, hit.ContentType)
		}
	}

	merged := make([]*models.RankedMatch, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return merged
}

// preferenceBoost scores how well a university matches the structured
// preferences and explains each contribution. Soft budget misses are
// down-ranked, never excluded.
func (s *RankingService) preferenceBoost(u *models.University, prefs models.PreferenceSet) (float64, []string) {
	var boost float64
	var reasons []string

	if prefs.Specialization != "" {
		uniSpec := strings.ToLower(u.Specialization)
		if strings.Contains(uniSpec, strings.ToLower(prefs.Specialization)) {
			boost += specializationBoost
			reasons = append(reasons, fmt.Sprintf("Matches your interest in %s", u.Specialization))
		}
	}

	if ceiling, _, ok := prefs.BudgetCeiling(); ok {
		if u.FeesPerSemester <= ceiling {
			boost += budgetBoost
			reasons = append(reasons, fmt.Sprintf("Within your stated budget (%s/semester)", formatINR(u.FeesPerSemester)))
		} else {
			boost -= budgetBoost
		}
	} else {
		switch prefs.BudgetLeaning() {
		case "low":
			switch {
			case u.FeesPerSemester > 0 && u.FeesPerSemester < lowFeeCeiling:
				boost += budgetBoost
				reasons = append(reasons, fmt.Sprintf("Low fees (%s/semester)", formatINR(u.FeesPerSemester)))
			case u.FeesPerSemester < moderateFeeCeiling:
				reasons = append(reasons, fmt.Sprintf("Moderate fees (%s/semester)", formatINR(u.FeesPerSemester)))
			default:
				boost -= budgetBoost
			}
		case "high":
			if u.FeesPerSemester > premiumFeeFloor {
				boost += budgetBoost
				reasons = append(reasons, fmt.Sprintf("Premium program (%s/semester)", formatINR(u.FeesPerSemester)))
			}
		}
	}

	if hasPriority(prefs.Priorities, "accreditation") {
		accr := strings.ToLower(u.Accreditations)
		if strings.Contains(accr, "aicte") {
			boost += accreditationBoost
			reasons = append(reasons, "AICTE accredited")
		}
		if strings.Contains(accr, "ugc") {
			boost += accreditationBoost
			reasons = append(reasons, "UGC recognized")
		}
		if strings.Contains(accr, "naac a") {
			boost += accreditationBoost
			reasons = append(reasons, "NAAC A+ rated")
		}
	}

	if hasPriority(prefs.Priorities, "fees") && u.SubsidyCashback != "" {
		boost += cashbackBoost
		reasons = append(reasons, fmt.Sprintf("Offers cashback: %s", u.SubsidyCashback))
	}

	return boost, reasons
}

// derivePros lists static positive attributes for display.
func (s *RankingService) derivePros(u *models.University) []string {
	var pros []string

	if u.ReviewRating >= 4.0 && u.ReviewCount > 0 {
		pros = append(pros, fmt.Sprintf("Rated %.1f/5 across %d reviews (%s)", u.ReviewRating, u.ReviewCount, u.ReviewSource))
	}
	if u.Accreditations != "" {
		pros = append(pros, fmt.Sprintf("Accredited: %s", u.Accreditations))
	}
	if u.AlumniStatus {
		pros = append(pros, "Active alumni network")
	}
	if u.SubsidyCashback != "" {
		pros = append(pros, fmt.Sprintf("Cashback on full payment: %s", u.SubsidyCashback))
	}
	for _, sentiment := range u.ReviewSentiment {
		pros = append(pros, sentiment)
	}

	return pros
}

func hasPriority(priorities []string, want string) bool {
	for _, p := range priorities {
		if strings.EqualFold(p, want) {
			return true
		}
	}
	return false
}

func containsContentType(types []models.ContentType, ct models.ContentType) bool {
	for _, t := range types {
		if t == ct {
			return true
		}
	}
	return false
}

func capStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// formatINR renders a fee amount as "₹35,000".
func formatINR(amount float64) string {
	whole := fmt.Sprintf("%.0f", amount)
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}

	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}

	if neg {
		return "-₹" + whole
	}
	return "₹" + whole
}
