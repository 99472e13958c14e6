package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/ranker/internal/domain/model"
)

// ResultsDependencies defines the ranking read used by ResultsHandler.
type ResultsDependencies interface {
	Results(ctx context.Context, topicID string) ([]model.RankedResult, error)
}

// ResultRow is one rendered ranking row.
type ResultRow struct {
	Rank          int                    `json:"rank"`
	SubjectID     string                 `json:"subject_id"`
	SubjectName   string                 `json:"subject_name"`
	TotalScore    int                    `json:"total_score"`
	WeightedScore int                    `json:"weighted_score"`
	IsWinner      bool                   `json:"is_winner"`
	Breakdown     []model.AttributeScore `json:"breakdown"`
}

// ResultsResponse is the body of GET /topics/{topicID}/results.
type ResultsResponse struct {
	TopicID  string      `json:"topic_id"`
	WinnerID string      `json:"winner_id,omitempty"`
	Results  []ResultRow `json:"results"`
}

// ResultsHandler handles ranking requests.
type ResultsHandler struct {
	deps ResultsDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultsDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleResults handles GET /topics/{topicID}/results.
func (h *ResultsHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topicID")
	ranked, err := h.deps.Results(r.Context(), topicID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := ResultsResponse{TopicID: topicID, Results: make([]ResultRow, 0, len(ranked))}
	for _, res := range ranked {
		if res.IsWinner {
			resp.WinnerID = res.Subject.ID
		}
		resp.Results = append(resp.Results, ResultRow{
			Rank:          res.Rank,
			SubjectID:     res.Subject.ID,
			SubjectName:   res.Subject.Name,
			TotalScore:    res.TotalScore,
			WeightedScore: res.WeightedScore,
			IsWinner:      res.IsWinner,
			Breakdown:     res.Breakdown,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
