package models

import (
	"encoding/json"
	"time"
)

// University rows are owned by the ingestion pipeline and are read-only
// from the chat pipeline's point of view. Review and alumni fields are
// opaque attributes supplied by ingestion.
type University struct {
	ID               int64           `db:"id"`
	Name             string          `db:"name"`
	Specialization   string          `db:"specialization"`
	FeesPerSemester  float64         `db:"fees_per_semester"`
	SubsidyCashback  string          `db:"subsidy_cashback"`
	Accreditations   string          `db:"accreditations"`
	Website          string          `db:"website"`
	LandingPageURL   string          `db:"landing_page_url"`
	BrochureURL      string          `db:"brochure_url"`
	BrochureFilePath string          `db:"brochure_file_path"`
	RawData          json.RawMessage `db:"raw_data"`
	AlumniStatus     bool            `db:"alumni_status"`
	ReviewRating     float64         `db:"review_rating"`
	ReviewCount      int             `db:"review_count"`
	ReviewSentiment  []string        `db:"review_sentiment"`
	ReviewSource     string          `db:"review_source"`
	CreatedAt        time.Time       `db:"created_at"`
}

// WebsiteOrLanding returns the best available link for a card.
func (u *University) WebsiteOrLanding() string {
	if u.Website != "" {
		return u.Website
	}
	if u.LandingPageURL != "" {
		return u.LandingPageURL
	}
	return "#"
}

// BrochureLink returns the brochure URL, falling back to the local file path.
func (u *University) BrochureLink() string {
	if u.BrochureURL != "" {
		return u.BrochureURL
	}
	if u.BrochureFilePath != "" {
		return u.BrochureFilePath
	}
	return "#"
}
