// Package service is the mutation layer of the decision ranker. It validates
// input, applies it to the store, keeps per-topic view state consistent, and
// serves freshly computed rankings.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	repository "github.com/okian/ranker/internal/adapters/repository"
	"github.com/okian/ranker/internal/domain/dedupe"
	"github.com/okian/ranker/internal/domain/model"
	"github.com/okian/ranker/internal/domain/ranking"
	"github.com/okian/ranker/internal/domain/scoring"
	"github.com/okian/ranker/pkg/logger"
	"github.com/okian/ranker/pkg/metrics"
)

const (
	defaultDedupeSize = 10_000

	nanosecondsPerMillisecond = 1e6
)

// Mutation operation names, used as metric labels.
const (
	opCreateTopic       = "create_topic"
	opDeleteTopic       = "delete_topic"
	opReplaceAttributes = "replace_attributes"
	opAddSubject        = "add_subject"
	opUpdateSubject     = "update_subject"
	opRemoveSubject     = "remove_subject"
)

// Service implements the decision operations used by the HTTP API and CLI.
// Mutations and view changes are serialized by mu; reads go straight to the
// store.
type Service struct {
	mu sync.Mutex

	store    repository.Store
	deduper  dedupe.Deduper
	policy   ranking.Policy
	sessions map[string]*Session

	dedupeSize int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects the entity store. By default a fresh MemoryStore that
// publishes its totals to metrics is used.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDedupeSize sets the size of the idempotency-key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithWinnerMinSubjects sets how many subjects must be compared before a
// winner is declared.
func WithWinnerMinSubjects(n int) Option {
	return func(s *Service) {
		s.policy = ranking.NewPolicy(ranking.WithMinSubjects(n))
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	s := &Service{
		policy:     ranking.DefaultPolicy,
		sessions:   make(map[string]*Session),
		dedupeSize: defaultDedupeSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithStatsHook(metrics.UpdateStoreTotals))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	return s
}

// CompleteWizard commits the initial two-step wizard: it creates the topic
// and moves its view to the comparison.
func (s *Service) CompleteWizard(ctx context.Context, name string, attrs []model.AttributeInput) (model.Topic, error) {
	if err := s.check(ctx, opCreateTopic, validateTopicName(name), validateAttributes(attrs)); err != nil {
		return model.Topic{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{State: StateStepper}
	if !CanTransition(sess.State, StateComparison) {
		return model.Topic{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sess.State, StateComparison)
	}
	topic, err := s.store.CreateTopic(ctx, name, attrs)
	if err != nil {
		return model.Topic{}, fmt.Errorf("create topic: %w", err)
	}
	sess.TopicID = topic.ID
	sess.State = StateComparison
	s.sessions[topic.ID] = sess

	metrics.RecordMutation(opCreateTopic)
	s.logger.Info(ctx, "topic created",
		logger.String("topic_id", topic.ID),
		logger.Int("attributes", len(topic.Attributes)),
	)
	return topic, nil
}

// EditAttributeWeights commits the attribute wizard opened from the
// comparison view. Every attribute is regenerated with a new id, so scores
// recorded against the previous set no longer count until subjects are
// re-scored. A non-empty name that differs from the current one renames the
// topic.
func (s *Service) EditAttributeWeights(ctx context.Context, topicID, name string, attrs []model.AttributeInput) (model.Topic, error) {
	if err := s.check(ctx, opReplaceAttributes, validateAttributes(attrs)); err != nil {
		return model.Topic{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Topic(ctx, topicID)
	if err != nil {
		return model.Topic{}, err
	}
	if name != "" && name != current.Name {
		if err := s.check(ctx, opReplaceAttributes, validateTopicName(name)); err != nil {
			return model.Topic{}, err
		}
		if _, err := s.store.RenameTopic(ctx, topicID, name); err != nil {
			return model.Topic{}, err
		}
	}

	topic, err := s.store.ReplaceAttributes(ctx, topicID, attrs)
	if err != nil {
		return model.Topic{}, err
	}
	if len(topic.Subjects) > 0 {
		s.logger.Warn(ctx, "attribute ids regenerated; existing subject scores no longer match",
			logger.String("topic_id", topicID),
			logger.Int("subjects", len(topic.Subjects)),
		)
	}

	s.session(topicID).State = StateComparison

	metrics.RecordMutation(opReplaceAttributes)
	s.logger.Debug(ctx, "attributes replaced",
		logger.String("topic_id", topicID),
		logger.Int("attributes", len(topic.Attributes)),
	)
	return topic, nil
}

// SubmitSubject commits the subject form. When an edit is in progress the
// edited subject is updated in place and the edit pointer cleared; otherwise
// a new subject is appended.
func (s *Service) SubmitSubject(ctx context.Context, topicID string, in model.SubjectInput) (model.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	editingID := ""
	if sess, ok := s.sessions[topicID]; ok {
		editingID = sess.EditingSubjectID
	}

	subj, err := s.putSubject(ctx, topicID, in, editingID)
	if editingID != "" && (err == nil || errors.Is(err, repository.ErrSubjectNotFound)) {
		s.clearEditing(topicID, editingID)
	}
	return subj, err
}

// UpdateSubject replaces a subject's name and scores, keeping its id.
func (s *Service) UpdateSubject(ctx context.Context, topicID, subjectID string, in model.SubjectInput) (model.Subject, error) {
	if subjectID == "" {
		return model.Subject{}, fmt.Errorf("%w: empty id", repository.ErrSubjectNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subj, err := s.putSubject(ctx, topicID, in, subjectID)
	if err == nil {
		s.clearEditing(topicID, subjectID)
	}
	return subj, err
}

// putSubject validates against the topic's current attributes and stores the
// subject. Callers must hold s.mu.
func (s *Service) putSubject(ctx context.Context, topicID string, in model.SubjectInput, editingID string) (model.Subject, error) {
	op := opAddSubject
	if editingID != "" {
		op = opUpdateSubject
	}

	topic, err := s.store.Topic(ctx, topicID)
	if err != nil {
		return model.Subject{}, err
	}
	if err := s.check(ctx, op, validateSubject(in, topic.Attributes)); err != nil {
		return model.Subject{}, err
	}

	subj, err := s.store.AddOrUpdateSubject(ctx, topicID, in, editingID)
	if err != nil {
		return model.Subject{}, err
	}

	metrics.RecordMutation(op)
	s.logger.Debug(ctx, "subject saved",
		logger.String("topic_id", topicID),
		logger.String("subject_id", subj.ID),
		logger.String("operation", op),
	)
	return subj, nil
}

// RemoveSubject deletes a subject and clears the edit pointer if it referenced
// it. Removing an unknown subject is a no-op.
func (s *Service) RemoveSubject(ctx context.Context, topicID, subjectID string) {
	s.mu.Lock()
	s.store.RemoveSubject(ctx, topicID, subjectID)
	s.clearEditing(topicID, subjectID)
	s.mu.Unlock()

	metrics.RecordMutation(opRemoveSubject)
	s.logger.Debug(ctx, "subject removed",
		logger.String("topic_id", topicID),
		logger.String("subject_id", subjectID),
	)
}

// DeleteTopic removes a topic and its view state. Unknown ids are a no-op.
func (s *Service) DeleteTopic(ctx context.Context, topicID string) {
	s.mu.Lock()
	s.store.DeleteTopic(ctx, topicID)
	delete(s.sessions, topicID)
	s.mu.Unlock()

	metrics.RecordMutation(opDeleteTopic)
	s.logger.Debug(ctx, "topic deleted", logger.String("topic_id", topicID))
}

// Topic returns one topic.
func (s *Service) Topic(ctx context.Context, topicID string) (model.Topic, error) {
	return s.store.Topic(ctx, topicID)
}

// Topics returns all topics in creation order.
func (s *Service) Topics(ctx context.Context) []model.Topic {
	return s.store.Topics(ctx)
}

// Subject returns one subject of a topic.
func (s *Service) Subject(ctx context.Context, topicID, subjectID string) (model.Subject, error) {
	return s.store.Subject(ctx, topicID, subjectID)
}

// Results scores and ranks the topic's subjects. Nothing is cached; every
// call reflects the current attributes and scores.
func (s *Service) Results(ctx context.Context, topicID string) ([]model.RankedResult, error) {
	topic, err := s.store.Topic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ranked := s.policy.Rank(scoring.ComputeResults(topic.Subjects, topic.Attributes))
	_, winner := ranking.Winner(ranked)
	metrics.RecordRanking(float64(time.Since(start).Nanoseconds())/nanosecondsPerMillisecond, winner)

	return ranked, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	topics := s.store.Topics(ctx)
	attrs, subjects := 0, 0
	for _, t := range topics {
		attrs += len(t.Attributes)
		subjects += len(t.Subjects)
	}

	s.mu.Lock()
	editing := 0
	for _, sess := range s.sessions {
		if sess.EditingSubjectID != "" {
			editing++
		}
	}
	s.mu.Unlock()

	return map[string]interface{}{
		"topics":            len(topics),
		"attributes":        attrs,
		"subjects":          subjects,
		"editingSessions":   editing,
		"dedupeSize":        s.dedupeSize,
		"dedupeEntries":     s.Size(),
		"winnerMinSubjects": s.policy.MinSubjects,
	}
}

// SeenAndRecord atomically checks whether an idempotency key was seen and
// records it if not. Returns true for a repeated key.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordDuplicate()
		s.logger.Debug(ctx, "duplicate request skipped", logger.String("idempotency_key", key))
	}
	return seen
}

// Unrecord forgets an idempotency key whose mutation failed.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// Size returns the number of tracked idempotency keys.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// check returns the first non-nil validation error and records it.
func (s *Service) check(ctx context.Context, op string, errs ...error) error {
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			metrics.RecordValidationError(verr.Field)
		}
		s.logger.Debug(ctx, "mutation rejected",
			logger.String("operation", op),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// Session returns a copy of the topic's view state.
func (s *Service) Session(ctx context.Context, topicID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.store.Topic(ctx, topicID); err != nil {
		return Session{}, err
	}
	return *s.session(topicID), nil
}

// OpenAttributeWizard moves the comparison view to the attribute wizard.
func (s *Service) OpenAttributeWizard(ctx context.Context, topicID string) (Session, error) {
	return s.transition(ctx, topicID, StateAttributeWizard)
}

// CloseAttributeWizard abandons the attribute wizard without changing any
// stored data.
func (s *Service) CloseAttributeWizard(ctx context.Context, topicID string) (Session, error) {
	return s.transition(ctx, topicID, StateComparison)
}

// BeginEditSubject points the subject form at an existing subject. The next
// SubmitSubject updates it in place.
func (s *Service) BeginEditSubject(ctx context.Context, topicID, subjectID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.store.Subject(ctx, topicID, subjectID); err != nil {
		return Session{}, err
	}
	sess := s.session(topicID)
	sess.EditingSubjectID = subjectID
	return *sess, nil
}

// CancelEditSubject clears the edit pointer; the form goes back to adding.
func (s *Service) CancelEditSubject(ctx context.Context, topicID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.store.Topic(ctx, topicID); err != nil {
		return Session{}, err
	}
	sess := s.session(topicID)
	sess.EditingSubjectID = ""
	return *sess, nil
}

func (s *Service) transition(ctx context.Context, topicID string, to ViewState) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.store.Topic(ctx, topicID); err != nil {
		return Session{}, err
	}
	sess := s.session(topicID)
	if !CanTransition(sess.State, to) {
		return *sess, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sess.State, to)
	}
	sess.State = to
	s.logger.Debug(ctx, "view changed",
		logger.String("topic_id", topicID),
		logger.String("state", string(to)),
	)
	return *sess, nil
}

// session returns the topic's view state, creating it in the comparison
// state for topics that were stored without going through the wizard.
// Callers must hold s.mu.
func (s *Service) session(topicID string) *Session {
	sess, ok := s.sessions[topicID]
	if !ok {
		sess = &Session{TopicID: topicID, State: StateComparison}
		s.sessions[topicID] = sess
	}
	return sess
}

// clearEditing drops the edit pointer if it references subjectID. Callers
// must hold s.mu.
func (s *Service) clearEditing(topicID, subjectID string) {
	if sess, ok := s.sessions[topicID]; ok && sess.EditingSubjectID == subjectID {
		sess.EditingSubjectID = ""
	}
}
