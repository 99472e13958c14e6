package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how topic, attribute and subject ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *MemoryStore) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithStatsHook registers a callback invoked after every mutation with the
// current topic, attribute and subject totals.
func WithStatsHook(hook func(topics, attributes, subjects int)) Option {
	return func(s *MemoryStore) {
		s.statsHook = hook
	}
}
