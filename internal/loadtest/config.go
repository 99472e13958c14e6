// Package loadtest drives a running ranker over HTTP: it builds random
// decisions concurrently and checks every served ranking against the local
// scoring and ranking engines.
package loadtest

import (
	"errors"
	"time"

	"github.com/okian/ranker/internal/domain/model"
)

// ErrMismatch is returned when at least one served ranking disagrees with the
// locally computed one.
var ErrMismatch = errors.New("ranking mismatch")

// Config holds configuration for a load test run.
type Config struct {
	BaseURL            string        // Base URL of the service
	Topics             int           // Number of topics to build
	AttributesPerTopic int           // Attributes per topic
	SubjectsPerTopic   int           // Subjects per topic
	Workers            int           // Number of concurrent workers
	Timeout            time.Duration // HTTP request timeout
	WinnerMinSubjects  int           // Winner threshold the server is configured with
	Replay             bool          // Resend every POST with the same Idempotency-Key
	Cleanup            bool          // Delete topics after verification
	Verbose            bool          // Log every topic
}

// DefaultConfig returns a Config for a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:            "http://localhost:9080",
		Topics:             100,
		AttributesPerTopic: 4,
		SubjectsPerTopic:   8,
		Workers:            8,
		Timeout:            10 * time.Second,
		WinnerMinSubjects:  2,
		Replay:             true,
		Cleanup:            true,
	}
}

// Stats holds run statistics.
type Stats struct {
	TopicsCreated     int64
	SubjectsSubmitted int64
	Duplicates        int64
	Failed            int64
	Verified          int64
	Mismatches        int64
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// decision is one generated topic before it is sent.
type decision struct {
	Name       string
	Attributes []model.AttributeInput
	// Subjects hold scores by attribute position; ids are known only after
	// the topic is created.
	Subjects []generatedSubject
}

type generatedSubject struct {
	Name   string
	Scores []model.Score
}

// topicRequest and subjectRequest mirror the API request bodies.
type topicRequest struct {
	Name       string                 `json:"name"`
	Attributes []model.AttributeInput `json:"attributes"`
}

type subjectRequest struct {
	Name   string                 `json:"name"`
	Scores map[string]model.Score `json:"scores"`
}

// ackResponse is returned for a replayed Idempotency-Key.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// resultRow mirrors one row of GET /topics/{topicID}/results.
type resultRow struct {
	Rank          int    `json:"rank"`
	SubjectID     string `json:"subject_id"`
	SubjectName   string `json:"subject_name"`
	TotalScore    int    `json:"total_score"`
	WeightedScore int    `json:"weighted_score"`
	IsWinner      bool   `json:"is_winner"`
}

type resultsResponse struct {
	TopicID  string      `json:"topic_id"`
	WinnerID string      `json:"winner_id"`
	Results  []resultRow `json:"results"`
}
