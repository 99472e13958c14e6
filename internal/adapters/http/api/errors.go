package api

import (
	"errors"
	"fmt"
	"net/http"

	repository "github.com/okian/ranker/internal/adapters/repository"
	service "github.com/okian/ranker/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest        = errors.New("bad request")
	ErrRequestInProgress = errors.New("a request with this idempotency key is still in progress")
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest        = "bad_request"
	codeValidation        = "validation_error"
	codeNotFound          = "not_found"
	codeInvalidTransition = "invalid_transition"
	codeInProgress        = "request_in_progress"
	codeInternal          = "internal_error"
)

func wrapBadRequest(err error) error {
	return fmt.Errorf("%w: %w", ErrBadRequest, err)
}

// writeServiceError maps a service error onto its HTTP status and code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidation, err)
	case errors.Is(err, repository.ErrTopicNotFound), errors.Is(err, repository.ErrSubjectNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err)
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, codeInvalidTransition, err)
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, err)
	}
}
