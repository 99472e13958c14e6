package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/ranker/internal/domain/model"
)

// TopicDependencies defines the topic operations used by TopicsHandler.
type TopicDependencies interface {
	CompleteWizard(ctx context.Context, name string, attrs []model.AttributeInput) (model.Topic, error)
	EditAttributeWeights(ctx context.Context, topicID, name string, attrs []model.AttributeInput) (model.Topic, error)
	DeleteTopic(ctx context.Context, topicID string)
	Topic(ctx context.Context, topicID string) (model.Topic, error)
	Topics(ctx context.Context) []model.Topic
}

// TopicsHandler handles topic requests.
type TopicsHandler struct {
	deps TopicDependencies
}

// NewTopicsHandler creates a new topics handler.
func NewTopicsHandler(deps TopicDependencies) *TopicsHandler {
	return &TopicsHandler{deps: deps}
}

// HandleCreate handles POST /topics, the completion of the creation wizard.
func (h *TopicsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	topic, err := h.deps.CompleteWizard(r.Context(), req.Name, req.Attributes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

// HandleList handles GET /topics.
func (h *TopicsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	topics := h.deps.Topics(r.Context())
	if topics == nil {
		topics = []model.Topic{}
	}
	writeJSON(w, http.StatusOK, topics)
}

// HandleGet handles GET /topics/{topicID}.
func (h *TopicsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	topic, err := h.deps.Topic(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

// HandleDelete handles DELETE /topics/{topicID}. Unknown ids still get 204.
func (h *TopicsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.deps.DeleteTopic(r.Context(), chi.URLParam(r, "topicID"))
	w.WriteHeader(http.StatusNoContent)
}

// HandleReplaceAttributes handles PUT /topics/{topicID}/attributes.
func (h *TopicsHandler) HandleReplaceAttributes(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	topic, err := h.deps.EditAttributeWeights(r.Context(), chi.URLParam(r, "topicID"), req.Name, req.Attributes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}
