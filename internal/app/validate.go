package service

import (
	"strings"

	"github.com/okian/ranker/internal/domain/model"
)

func validateTopicName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid(FieldTopicName, "must not be empty")
	}
	return nil
}

func validateAttributes(attrs []model.AttributeInput) error {
	if len(attrs) == 0 {
		return invalid(FieldAttributes, "at least one attribute is required")
	}
	for i, a := range attrs {
		if strings.TrimSpace(a.Name) == "" {
			return invalid(FieldAttributeName, "attribute %d: name must not be empty", i+1)
		}
		if !a.Importance.Valid() {
			return invalid(FieldImportance, "attribute %q: importance %d outside %d..%d",
				a.Name, a.Importance, model.MinImportance, model.MaxImportance)
		}
	}
	return nil
}

// validateSubject requires a name and a score in range for every attribute
// currently defined on the topic. Extra keys (for example scores kept from a
// replaced attribute set) are accepted but must still be in range.
func validateSubject(in model.SubjectInput, attrs []model.Attribute) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid(FieldSubjectName, "must not be empty")
	}
	for _, a := range attrs {
		if _, ok := in.Scores[a.ID]; !ok {
			return invalid(FieldScores, "missing score for attribute %q", a.Name)
		}
	}
	for id, score := range in.Scores {
		if !score.Valid() {
			return invalid(FieldScores, "score %d for attribute %s outside %d..%d",
				score, id, model.MinScore, model.MaxScore)
		}
	}
	return nil
}
