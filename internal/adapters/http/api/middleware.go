package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/ranker/internal/domain/dedupe"
	"github.com/okian/ranker/pkg/metrics"
)

// IdempotencyKeyHeader carries the client-chosen key that makes a POST safe
// to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// HTTP status code constants.
const (
	statusBadRequest    = 400
	statusNotFound      = 404
	statusConflict      = 409
	statusInternalError = 500
)

const unmatchedEndpoint = "unmatched"

// MetricsMiddleware records Prometheus metrics for every request, labelled
// by the chi route pattern so ids do not explode label cardinality.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		endpoint := unmatchedEndpoint
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		statusCodeStr := strconv.Itoa(wrapped.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= statusBadRequest {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, getErrorType(wrapped.statusCode))
		}
	})
}

// IdempotencyMiddleware short-circuits a request whose Idempotency-Key was
// already accepted for the same method and path. Keys of requests that fail
// are forgotten so the client can retry with the same key. A retry that
// arrives while the first request is still running gets 409 and must retry
// later. Requests without the header pass through.
func IdempotencyMiddleware(deduper dedupe.Deduper) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		inFlight = make(map[string]struct{})
	)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			key = r.Method + " " + r.URL.Path + " " + key

			mu.Lock()
			if _, busy := inFlight[key]; busy {
				mu.Unlock()
				writeError(w, http.StatusConflict, codeInProgress, ErrRequestInProgress)
				return
			}
			if deduper.SeenAndRecord(r.Context(), key) {
				mu.Unlock()
				writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
				return
			}
			inFlight[key] = struct{}{}
			mu.Unlock()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			defer func() {
				p := recover()
				mu.Lock()
				if p != nil || wrapped.statusCode >= statusBadRequest {
					deduper.Unrecord(context.WithoutCancel(r.Context()), key)
				}
				delete(inFlight, key)
				mu.Unlock()
				if p != nil {
					panic(p)
				}
			}()
			next.ServeHTTP(wrapped, r)
		})
	}
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusConflict:
		return "conflict"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
