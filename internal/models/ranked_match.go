package models

// RankedMatch is one university's consolidated, scored result for a single
// query. Ephemeral: constructed fresh per query, never persisted.
type RankedMatch struct {
	University          University
	Score               float64
	Similarity          float64 // best raw similarity before boosting
	MatchedContentTypes []ContentType
	Reasons             []string
	Pros                []string
}
