package model

// AttributeScore is one cell of a subject's score breakdown.
type AttributeScore struct {
	AttributeID   string `json:"attribute_id"`
	AttributeName string `json:"attribute_name"`
	Importance    int    `json:"importance"`
	Score         int    `json:"score"`
	WeightedScore int    `json:"weighted_score"`
}

// ComparisonResult is derived from a subject and the current attributes.
// It is computed on every read and never stored.
type ComparisonResult struct {
	Subject       Subject          `json:"subject"`
	TotalScore    int              `json:"total_score"`
	WeightedScore int              `json:"weighted_score"`
	Breakdown     []AttributeScore `json:"breakdown"`
}

// RankedResult is a ComparisonResult placed in the ranking.
type RankedResult struct {
	ComparisonResult
	Rank     int  `json:"rank"`
	IsWinner bool `json:"is_winner"`
}
