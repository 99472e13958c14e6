// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	service "github.com/okian/ranker/internal/app"
	"github.com/okian/ranker/internal/domain/dedupe"
	"github.com/okian/ranker/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	dedupe.Deduper

	CompleteWizard(ctx context.Context, name string, attrs []model.AttributeInput) (model.Topic, error)
	EditAttributeWeights(ctx context.Context, topicID, name string, attrs []model.AttributeInput) (model.Topic, error)
	DeleteTopic(ctx context.Context, topicID string)
	Topic(ctx context.Context, topicID string) (model.Topic, error)
	Topics(ctx context.Context) []model.Topic

	SubmitSubject(ctx context.Context, topicID string, in model.SubjectInput) (model.Subject, error)
	UpdateSubject(ctx context.Context, topicID, subjectID string, in model.SubjectInput) (model.Subject, error)
	RemoveSubject(ctx context.Context, topicID, subjectID string)

	Results(ctx context.Context, topicID string) ([]model.RankedResult, error)

	Session(ctx context.Context, topicID string) (service.Session, error)
	OpenAttributeWizard(ctx context.Context, topicID string) (service.Session, error)
	CloseAttributeWizard(ctx context.Context, topicID string) (service.Session, error)
	BeginEditSubject(ctx context.Context, topicID, subjectID string) (service.Session, error)
	CancelEditSubject(ctx context.Context, topicID string) (service.Session, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps Dependencies

	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	topicsHandler   *TopicsHandler
	subjectsHandler *SubjectsHandler
	resultsHandler  *ResultsHandler
	sessionHandler  *SessionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		deps:            deps,
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		topicsHandler:   NewTopicsHandler(deps),
		subjectsHandler: NewSubjectsHandler(deps),
		resultsHandler:  NewResultsHandler(deps),
		sessionHandler:  NewSessionHandler(deps),
	}
}

// NewRouter returns a chi router with the common middleware stack and all
// API routes attached.
func (s *Server) NewRouter(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(MetricsMiddleware)
	s.Register(ctx, r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Route("/topics", func(r chi.Router) {
		r.With(IdempotencyMiddleware(s.deps)).Post("/", s.topicsHandler.HandleCreate)
		r.Get("/", s.topicsHandler.HandleList)

		r.Route("/{topicID}", func(r chi.Router) {
			r.Get("/", s.topicsHandler.HandleGet)
			r.Delete("/", s.topicsHandler.HandleDelete)
			r.Put("/attributes", s.topicsHandler.HandleReplaceAttributes)

			r.With(IdempotencyMiddleware(s.deps)).Post("/subjects", s.subjectsHandler.HandleSubmit)
			r.Put("/subjects/{subjectID}", s.subjectsHandler.HandleUpdate)
			r.Delete("/subjects/{subjectID}", s.subjectsHandler.HandleRemove)

			r.Get("/results", s.resultsHandler.HandleResults)

			r.Get("/session", s.sessionHandler.HandleGet)
			r.Post("/session/wizard", s.sessionHandler.HandleOpenWizard)
			r.Delete("/session/wizard", s.sessionHandler.HandleCloseWizard)
			r.Put("/session/editing/{subjectID}", s.sessionHandler.HandleBeginEdit)
			r.Delete("/session/editing", s.sessionHandler.HandleCancelEdit)
		})
	})
}

// topicRequest mirrors the OpenAPI schema for POST /topics and
// PUT /topics/{topicID}/attributes.
type topicRequest struct {
	Name       string                 `json:"name"`
	Attributes []model.AttributeInput `json:"attributes"`
}

// subjectRequest mirrors the OpenAPI schema for subject submissions.
type subjectRequest struct {
	Name   string                 `json:"name"`
	Scores map[string]model.Score `json:"scores"`
}

func (s subjectRequest) input() model.SubjectInput {
	return model.SubjectInput{Name: s.Name, Scores: s.Scores}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return wrapBadRequest(err)
	}
	return nil
}
