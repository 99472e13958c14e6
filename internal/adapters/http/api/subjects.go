package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/ranker/internal/app"
	"github.com/okian/ranker/internal/domain/model"
)

// SubjectDependencies defines the subject operations used by SubjectsHandler.
type SubjectDependencies interface {
	Session(ctx context.Context, topicID string) (service.Session, error)
	SubmitSubject(ctx context.Context, topicID string, in model.SubjectInput) (model.Subject, error)
	UpdateSubject(ctx context.Context, topicID, subjectID string, in model.SubjectInput) (model.Subject, error)
	RemoveSubject(ctx context.Context, topicID, subjectID string)
}

// SubjectsHandler handles subject requests.
type SubjectsHandler struct {
	deps SubjectDependencies
}

// NewSubjectsHandler creates a new subjects handler.
func NewSubjectsHandler(deps SubjectDependencies) *SubjectsHandler {
	return &SubjectsHandler{deps: deps}
}

// HandleSubmit handles POST /topics/{topicID}/subjects. It appends a subject,
// or completes the edit in progress on the topic's session.
func (h *SubjectsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topicID")
	var req subjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if sess, err := h.deps.Session(r.Context(), topicID); err == nil && sess.EditingSubjectID != "" {
		status = http.StatusOK
	}

	subj, err := h.deps.SubmitSubject(r.Context(), topicID, req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, status, subj)
}

// HandleUpdate handles PUT /topics/{topicID}/subjects/{subjectID}.
func (h *SubjectsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	subj, err := h.deps.UpdateSubject(r.Context(), chi.URLParam(r, "topicID"), chi.URLParam(r, "subjectID"), req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subj)
}

// HandleRemove handles DELETE /topics/{topicID}/subjects/{subjectID}.
func (h *SubjectsHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.deps.RemoveSubject(r.Context(), chi.URLParam(r, "topicID"), chi.URLParam(r, "subjectID"))
	w.WriteHeader(http.StatusNoContent)
}
