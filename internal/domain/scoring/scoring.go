// Package scoring computes total and weighted scores for subjects against a
// set of attributes. Every function here is pure; results are recomputed on
// each call and never cached.
package scoring

import "github.com/okian/ranker/internal/domain/model"

// defaultWeight applies to an attribute whose importance is not positive.
const defaultWeight = 1

// Weight returns the multiplier used for attr. Any positive importance is
// accepted as-is, including values above model.MaxImportance.
func Weight(attr model.Attribute) int {
	if attr.Importance <= 0 {
		return defaultWeight
	}
	return int(attr.Importance)
}

// ScoreFor returns the subject's score for attrID, or 0 when it has none.
func ScoreFor(s model.Subject, attrID string) int {
	score, ok := s.Scores[attrID]
	if !ok {
		return 0
	}
	return int(score)
}

// TotalScore sums the subject's unweighted scores over attrs. Missing scores
// count as 0 and keys that match no attribute are ignored.
func TotalScore(s model.Subject, attrs []model.Attribute) int {
	total := 0
	for _, a := range attrs {
		total += ScoreFor(s, a.ID)
	}
	return total
}

// WeightedScore sums score*weight over attrs.
func WeightedScore(s model.Subject, attrs []model.Attribute) int {
	total := 0
	for _, a := range attrs {
		total += ScoreFor(s, a.ID) * Weight(a)
	}
	return total
}

// Compute builds the comparison result for one subject, including the
// per-attribute breakdown in attribute order.
func Compute(s model.Subject, attrs []model.Attribute) model.ComparisonResult {
	res := model.ComparisonResult{
		Subject:   s.Clone(),
		Breakdown: make([]model.AttributeScore, 0, len(attrs)),
	}
	for _, a := range attrs {
		score := ScoreFor(s, a.ID)
		weight := Weight(a)
		res.TotalScore += score
		res.WeightedScore += score * weight
		res.Breakdown = append(res.Breakdown, model.AttributeScore{
			AttributeID:   a.ID,
			AttributeName: a.Name,
			Importance:    weight,
			Score:         score,
			WeightedScore: score * weight,
		})
	}
	return res
}

// ComputeResults scores every subject. The output keeps the input order so
// that ranking can break ties by insertion order.
func ComputeResults(subjects []model.Subject, attrs []model.Attribute) []model.ComparisonResult {
	out := make([]model.ComparisonResult, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, Compute(s, attrs))
	}
	return out
}
