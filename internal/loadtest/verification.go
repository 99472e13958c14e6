package loadtest

import (
	"fmt"

	"github.com/okian/ranker/internal/domain/model"
	"github.com/okian/ranker/internal/domain/ranking"
	"github.com/okian/ranker/internal/domain/scoring"
)

// verifyRanking recomputes the ranking of topic locally and compares it row
// by row with the served one.
func verifyRanking(topic model.Topic, served resultsResponse, winnerMinSubjects int) error {
	policy := ranking.NewPolicy(ranking.WithMinSubjects(winnerMinSubjects))
	expected := policy.Rank(scoring.ComputeResults(topic.Subjects, topic.Attributes))

	if len(served.Results) != len(expected) {
		return fmt.Errorf("%w: topic %s: %d rows served, %d expected",
			ErrMismatch, topic.ID, len(served.Results), len(expected))
	}
	for i, want := range expected {
		got := served.Results[i]
		switch {
		case got.SubjectID != want.Subject.ID:
			return fmt.Errorf("%w: topic %s row %d: subject %s, expected %s",
				ErrMismatch, topic.ID, i+1, got.SubjectID, want.Subject.ID)
		case got.WeightedScore != want.WeightedScore || got.TotalScore != want.TotalScore:
			return fmt.Errorf("%w: topic %s subject %s: scores %d/%d, expected %d/%d",
				ErrMismatch, topic.ID, got.SubjectID, got.TotalScore, got.WeightedScore,
				want.TotalScore, want.WeightedScore)
		case got.Rank != want.Rank || got.IsWinner != want.IsWinner:
			return fmt.Errorf("%w: topic %s subject %s: rank %d winner %t, expected %d %t",
				ErrMismatch, topic.ID, got.SubjectID, got.Rank, got.IsWinner, want.Rank, want.IsWinner)
		}
	}

	if w, ok := ranking.Winner(expected); ok && served.WinnerID != w.Subject.ID {
		return fmt.Errorf("%w: topic %s: winner %q, expected %q", ErrMismatch, topic.ID, served.WinnerID, w.Subject.ID)
	}
	return nil
}
