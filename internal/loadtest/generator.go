package loadtest

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/okian/ranker/internal/domain/model"
)

// randomInt returns a uniformly distributed integer in [lo, hi].
func randomInt(lo, hi int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	if err != nil {
		return lo
	}
	return lo + int(n.Int64())
}

// generateDecision builds one random topic with complete score sets.
func generateDecision(index int, cfg Config) decision {
	d := decision{
		Name:       "topic-" + strconv.Itoa(index),
		Attributes: make([]model.AttributeInput, cfg.AttributesPerTopic),
		Subjects:   make([]generatedSubject, cfg.SubjectsPerTopic),
	}
	for i := range d.Attributes {
		d.Attributes[i] = model.AttributeInput{
			Name:       "attr-" + strconv.Itoa(i),
			Importance: model.Importance(randomInt(int(model.MinImportance), int(model.MaxImportance))),
		}
	}
	for i := range d.Subjects {
		scores := make([]model.Score, cfg.AttributesPerTopic)
		for j := range scores {
			scores[j] = model.Score(randomInt(int(model.MinScore), int(model.MaxScore)))
		}
		d.Subjects[i] = generatedSubject{Name: "subject-" + strconv.Itoa(i), Scores: scores}
	}
	return d
}

// scoresByID keys generated scores by the created topic's attribute ids.
func scoresByID(s generatedSubject, attrs []model.Attribute) map[string]model.Score {
	out := make(map[string]model.Score, len(attrs))
	for i, a := range attrs {
		if i < len(s.Scores) {
			out[a.ID] = s.Scores[i]
		}
	}
	return out
}
