// Package repository defines the decision store interface and errors.
package repository

import (
	"context"

	"github.com/okian/ranker/internal/domain/model"
)

// Store holds the canonical collection of topics. It performs no input
// validation; that belongs to the mutation layer. Returned values are deep
// copies and never alias store state.
type Store interface {
	// CreateTopic stores a new topic, assigning fresh ids to the topic and to
	// every attribute.
	CreateTopic(ctx context.Context, name string, attrs []model.AttributeInput) (model.Topic, error)
	// Topic returns the topic with id, or ErrTopicNotFound.
	Topic(ctx context.Context, id string) (model.Topic, error)
	// Topics returns all topics in creation order.
	Topics(ctx context.Context) []model.Topic
	// DeleteTopic removes a topic. Unknown ids are a no-op.
	DeleteTopic(ctx context.Context, id string)
	// RenameTopic changes a topic's name.
	RenameTopic(ctx context.Context, id, name string) (model.Topic, error)

	// ReplaceAttributes swaps the full attribute list, assigning fresh ids to
	// every attribute. Subject scores keyed by the old ids are left orphaned.
	ReplaceAttributes(ctx context.Context, topicID string, attrs []model.AttributeInput) (model.Topic, error)

	// AddOrUpdateSubject appends a subject with a fresh id, or, when editingID
	// is set, replaces that subject's name and scores in place keeping its id.
	AddOrUpdateSubject(ctx context.Context, topicID string, in model.SubjectInput, editingID string) (model.Subject, error)
	// Subject returns one subject of a topic.
	Subject(ctx context.Context, topicID, subjectID string) (model.Subject, error)
	// RemoveSubject deletes a subject. Unknown topic or subject ids are a no-op.
	RemoveSubject(ctx context.Context, topicID, subjectID string)

	// Count returns the number of topics.
	Count(ctx context.Context) int
}
