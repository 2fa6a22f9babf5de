package dto

import "mba-counselor/internal/models"

type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message" validate:"required"`
}

// UniversityCard is the external card schema consumed by the chat front-end.
type UniversityCard struct {
	Name            string   `json:"name"`
	Specialization  string   `json:"specialization"`
	Fees            string   `json:"fees"`
	AlumniStatus    bool     `json:"alumni_status"`
	ReviewRating    float64  `json:"review_rating"`
	ReviewCount     int      `json:"review_count"`
	ReviewSentiment []string `json:"review_sentiment"`
	ReviewSource    string   `json:"review_source"`
	Accreditations  string   `json:"accreditations"`
	Pros            []string `json:"pros"`
	Reasons         []string `json:"reasons"`
	Website         string   `json:"website"`
	Brochure        string   `json:"brochure"`
}

type ChatResponse struct {
	SessionID          string                `json:"session_id"`
	Response           string                `json:"response"`
	Timestamp          string                `json:"timestamp"`
	Preferences        *models.PreferenceSet `json:"preferences,omitempty"`
	UniversityCards    []UniversityCard      `json:"university_cards"`
	HasRecommendations bool                  `json:"has_recommendations"`
}

type ResetRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type ResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	Embeddings string `json:"embeddings"`
	Timestamp  string `json:"timestamp"`
}

// ErrorResponse carries the session id when one was resolved or created
// for the failed request, so the client can retry on the same session.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}
