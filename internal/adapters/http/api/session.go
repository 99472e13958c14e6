package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/ranker/internal/app"
)

// SessionDependencies defines the view-state operations used by SessionHandler.
type SessionDependencies interface {
	Session(ctx context.Context, topicID string) (service.Session, error)
	OpenAttributeWizard(ctx context.Context, topicID string) (service.Session, error)
	CloseAttributeWizard(ctx context.Context, topicID string) (service.Session, error)
	BeginEditSubject(ctx context.Context, topicID, subjectID string) (service.Session, error)
	CancelEditSubject(ctx context.Context, topicID string) (service.Session, error)
}

// SessionHandler handles view-state requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandleGet handles GET /topics/{topicID}/session.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	respond(w)(h.deps.Session(r.Context(), chi.URLParam(r, "topicID")))
}

// HandleOpenWizard handles POST /topics/{topicID}/session/wizard.
func (h *SessionHandler) HandleOpenWizard(w http.ResponseWriter, r *http.Request) {
	respond(w)(h.deps.OpenAttributeWizard(r.Context(), chi.URLParam(r, "topicID")))
}

// HandleCloseWizard handles DELETE /topics/{topicID}/session/wizard.
func (h *SessionHandler) HandleCloseWizard(w http.ResponseWriter, r *http.Request) {
	respond(w)(h.deps.CloseAttributeWizard(r.Context(), chi.URLParam(r, "topicID")))
}

// HandleBeginEdit handles PUT /topics/{topicID}/session/editing/{subjectID}.
func (h *SessionHandler) HandleBeginEdit(w http.ResponseWriter, r *http.Request) {
	respond(w)(h.deps.BeginEditSubject(r.Context(), chi.URLParam(r, "topicID"), chi.URLParam(r, "subjectID")))
}

// HandleCancelEdit handles DELETE /topics/{topicID}/session/editing.
func (h *SessionHandler) HandleCancelEdit(w http.ResponseWriter, r *http.Request) {
	respond(w)(h.deps.CancelEditSubject(r.Context(), chi.URLParam(r, "topicID")))
}

func respond(w http.ResponseWriter) func(service.Session, error) {
	return func(sess service.Session, err error) {
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}
