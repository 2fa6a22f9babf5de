package models

import (
	"regexp"
	"strconv"
	"strings"
)

// PreferenceSet is the structured, partial record of user-stated criteria.
// All keys are optional; the zero value means "not stated".
type PreferenceSet struct {
	Specialization     string   `json:"specialization,omitempty"`
	Budget             string   `json:"budget,omitempty"`
	CareerGoal         string   `json:"career_goal,omitempty"`
	Priorities         []string `json:"priorities,omitempty"`
	LocationPreference string   `json:"location_preference,omitempty"`
	ExperienceLevel    string   `json:"experience_level,omitempty"`
}

func (p PreferenceSet) IsEmpty() bool {
	return p.Specialization == "" &&
		p.Budget == "" &&
		p.CareerGoal == "" &&
		len(p.Priorities) == 0 &&
		p.LocationPreference == "" &&
		p.ExperienceLevel == ""
}

// Merge applies replace-if-non-empty semantics: a key in p survives unless
// in supplies a non-empty value for that same key.
func (p *PreferenceSet) Merge(in PreferenceSet) {
	if in.Specialization != "" {
		p.Specialization = in.Specialization
	}
	if in.Budget != "" {
		p.Budget = in.Budget
	}
	if in.CareerGoal != "" {
		p.CareerGoal = in.CareerGoal
	}
	if len(in.Priorities) > 0 {
		p.Priorities = in.Priorities
	}
	if in.LocationPreference != "" {
		p.LocationPreference = in.LocationPreference
	}
	if in.ExperienceLevel != "" {
		p.ExperienceLevel = in.ExperienceLevel
	}
}

var budgetCeilingRe = regexp.MustCompile(`(?i)(under|below|less than|within|max(?:imum)?|up to)\s*(?:₹|\$|rs\.?\s*|inr\s*)?([\d,]+)`)
var budgetAmountRe = regexp.MustCompile(`(?:₹|\$|rs\.?\s*|inr\s*)([\d,]+)`)

// BudgetCeiling parses a numeric fee ceiling out of the budget value.
// strict reports whether the user's intent is explicitly exclusionary
// ("under ₹40000") rather than a soft leaning ("low", "affordable").
func (p PreferenceSet) BudgetCeiling() (amount float64, strict bool, ok bool) {
	b := strings.TrimSpace(p.Budget)
	if b == "" {
		return 0, false, false
	}
	if m := budgetCeilingRe.FindStringSubmatch(b); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64); err == nil && v > 0 {
			return v, true, true
		}
	}
	if m := budgetAmountRe.FindStringSubmatch(b); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil && v > 0 {
			return v, false, true
		}
	}
	return 0, false, false
}

// BudgetLeaning classifies a non-numeric budget value as "low", "high"
// or "" (no leaning).
func (p PreferenceSet) BudgetLeaning() string {
	b := strings.ToLower(p.Budget)
	switch {
	case strings.Contains(b, "low") || strings.Contains(b, "cheap") || strings.Contains(b, "affordable") || strings.Contains(b, "budget"):
		return "low"
	case strings.Contains(b, "high") || strings.Contains(b, "premium") || strings.Contains(b, "expensive"):
		return "high"
	}
	return ""
}

// PopulatedKeys lists the keys currently set, in a fixed order.
func (p PreferenceSet) PopulatedKeys() []string {
	var keys []string
	if p.Specialization != "" {
		keys = append(keys, "specialization")
	}
	if p.Budget != "" {
		keys = append(keys, "budget")
	}
	if p.CareerGoal != "" {
		keys = append(keys, "career_goal")
	}
	if len(p.Priorities) > 0 {
		keys = append(keys, "priorities")
	}
	if p.LocationPreference != "" {
		keys = append(keys, "location_preference")
	}
	if p.ExperienceLevel != "" {
		keys = append(keys, "experience_level")
	}
	return keys
}
