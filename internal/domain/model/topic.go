// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Bounds for user supplied values.
const (
	MinImportance Importance = 1
	MaxImportance Importance = 5
	// DefaultImportance is what the attribute wizard preselects.
	DefaultImportance Importance = 3

	MinScore Score = 1
	MaxScore Score = 10
)

// Importance is an attribute's weight multiplier.
type Importance int

// Valid reports whether i is within MinImportance..MaxImportance.
func (i Importance) Valid() bool { return i >= MinImportance && i <= MaxImportance }

// Score is a subject's rating against a single attribute.
type Score int

// Valid reports whether s is within MinScore..MaxScore.
func (s Score) Valid() bool { return s >= MinScore && s <= MaxScore }

// NewID returns a fresh identifier for a topic, attribute or subject.
func NewID() string {
	return uuid.NewString()
}

// Attribute is a weighted criterion subjects are scored against.
type Attribute struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Importance Importance `json:"importance" yaml:"importance"`
}

// AttributeInput is an attribute as entered by the user, before it has an id.
type AttributeInput struct {
	Name       string     `json:"name" yaml:"name"`
	Importance Importance `json:"importance" yaml:"importance"`
}

// Subject is a candidate being compared. Scores are keyed by Attribute.ID;
// keys may be absent (no score yet) or orphaned (attribute replaced).
type Subject struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Scores map[string]Score `json:"scores"`
}

// SubjectInput is a subject as submitted by the form layer.
type SubjectInput struct {
	Name   string           `json:"name"`
	Scores map[string]Score `json:"scores"`
}

// Complete reports whether s has a score for every attribute in attrs.
func (s Subject) Complete(attrs []Attribute) bool {
	for _, a := range attrs {
		if _, ok := s.Scores[a.ID]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of s.
func (s Subject) Clone() Subject {
	s.Scores = cloneScores(s.Scores)
	return s
}

// Topic is one decision. It owns its attributes and subjects; both are kept
// in insertion order.
type Topic struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
	Subjects   []Subject   `json:"subjects"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Clone returns a deep copy of t.
func (t Topic) Clone() Topic {
	out := t
	out.Attributes = make([]Attribute, len(t.Attributes))
	copy(out.Attributes, t.Attributes)
	out.Subjects = make([]Subject, len(t.Subjects))
	for i, s := range t.Subjects {
		out.Subjects[i] = s.Clone()
	}
	return out
}

// SubjectIndex returns the position of the subject with id, or -1.
func (t Topic) SubjectIndex(id string) int {
	for i, s := range t.Subjects {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Attribute returns the attribute with id.
func (t Topic) Attribute(id string) (Attribute, bool) {
	for _, a := range t.Attributes {
		if a.ID == id {
			return a, true
		}
	}
	return Attribute{}, false
}

func cloneScores(in map[string]Score) map[string]Score {
	out := make(map[string]Score, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
