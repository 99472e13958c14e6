package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/ranker/internal/domain/model"
)

// MemoryStore is the in-memory Store. Topics live in a map for lookup plus a
// slice that records creation order. Each method holds the lock for its whole
// duration, so every operation is atomic with read-after-write consistency.
type MemoryStore struct {
	mu     sync.RWMutex
	topics map[string]*model.Topic
	order  []string

	now       func() time.Time
	newID     func() string
	statsHook func(topics, attributes, subjects int)
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		topics: make(map[string]*model.Topic),
		now:    time.Now,
		newID:  model.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) CreateTopic(_ context.Context, name string, attrs []model.AttributeInput) (model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t := &model.Topic{
		ID:         s.newID(),
		Name:       name,
		Attributes: s.mintAttributes(attrs),
		Subjects:   []model.Subject{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.topics[t.ID] = t
	s.order = append(s.order, t.ID)
	s.publishStats()
	return t.Clone(), nil
}

func (s *MemoryStore) Topic(_ context.Context, id string) (model.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.topics[id]
	if !ok {
		return model.Topic{}, fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}
	return t.Clone(), nil
}

func (s *MemoryStore) Topics(_ context.Context) []model.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Topic, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.topics[id].Clone())
	}
	return out
}

func (s *MemoryStore) DeleteTopic(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.topics[id]; !ok {
		return
	}
	delete(s.topics, id)
	for i, tid := range s.order {
		if tid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.publishStats()
}

func (s *MemoryStore) RenameTopic(_ context.Context, id, name string) (model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.topics[id]
	if !ok {
		return model.Topic{}, fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}
	t.Name = name
	t.UpdatedAt = s.now()
	return t.Clone(), nil
}

func (s *MemoryStore) ReplaceAttributes(_ context.Context, topicID string, attrs []model.AttributeInput) (model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.topics[topicID]
	if !ok {
		return model.Topic{}, fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
	}
	t.Attributes = s.mintAttributes(attrs)
	t.UpdatedAt = s.now()
	s.publishStats()
	return t.Clone(), nil
}

func (s *MemoryStore) AddOrUpdateSubject(_ context.Context, topicID string, in model.SubjectInput, editingID string) (model.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.topics[topicID]
	if !ok {
		return model.Subject{}, fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
	}

	subj := model.Subject{Name: in.Name, Scores: in.Scores}.Clone()
	if editingID != "" {
		idx := t.SubjectIndex(editingID)
		if idx < 0 {
			return model.Subject{}, fmt.Errorf("%w: %s", ErrSubjectNotFound, editingID)
		}
		subj.ID = editingID
		t.Subjects[idx] = subj
	} else {
		subj.ID = s.newID()
		t.Subjects = append(t.Subjects, subj)
		s.publishStats()
	}
	t.UpdatedAt = s.now()
	return subj.Clone(), nil
}

func (s *MemoryStore) Subject(_ context.Context, topicID, subjectID string) (model.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.topics[topicID]
	if !ok {
		return model.Subject{}, fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
	}
	idx := t.SubjectIndex(subjectID)
	if idx < 0 {
		return model.Subject{}, fmt.Errorf("%w: %s", ErrSubjectNotFound, subjectID)
	}
	return t.Subjects[idx].Clone(), nil
}

func (s *MemoryStore) RemoveSubject(_ context.Context, topicID, subjectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.topics[topicID]
	if !ok {
		return
	}
	idx := t.SubjectIndex(subjectID)
	if idx < 0 {
		return
	}
	t.Subjects = append(t.Subjects[:idx], t.Subjects[idx+1:]...)
	t.UpdatedAt = s.now()
	s.publishStats()
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topics)
}

// mintAttributes assigns a fresh id to every input. Caller holds s.mu.
func (s *MemoryStore) mintAttributes(in []model.AttributeInput) []model.Attribute {
	out := make([]model.Attribute, len(in))
	for i, a := range in {
		out[i] = model.Attribute{ID: s.newID(), Name: a.Name, Importance: a.Importance}
	}
	return out
}

// publishStats reports totals to the stats hook. Caller holds s.mu.
func (s *MemoryStore) publishStats() {
	if s.statsHook == nil {
		return
	}
	attrs, subjects := 0, 0
	for _, t := range s.topics {
		attrs += len(t.Attributes)
		subjects += len(t.Subjects)
	}
	s.statsHook(len(s.topics), attrs, subjects)
}
