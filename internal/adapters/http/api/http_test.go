package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/okian/ranker/internal/adapters/http/api"
	service "github.com/okian/ranker/internal/app"
	"github.com/okian/ranker/internal/domain/dedupe"
	"github.com/okian/ranker/internal/domain/model"
	"github.com/okian/ranker/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newRouter() chi.Router {
	svc := service.New()
	return api.NewServer(svc, svc).NewRouter(context.Background())
}

func do(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func errorCode(w *httptest.ResponseRecorder) string {
	return decode[map[string]string](w)["code"]
}

const laptopTopic = `{"name":"Laptop","attributes":[{"name":"Price","importance":5},{"name":"Size","importance":1}]}`

// subjectBody builds a subject request body for a topic with Price and Size.
func subjectBody(topic model.Topic, name string, price, size int) string {
	return fmt.Sprintf(`{"name":%q,"scores":{%q:%d,%q:%d}}`,
		name, topic.Attributes[0].ID, price, topic.Attributes[1].ID, size)
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API router", t, func() {
		router := newRouter()

		Convey("Then health endpoint should serve metrics", func() {
			w := do(router, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And stats endpoint should be accessible", func() {
			w := do(router, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			stats := decode[map[string]any](w)
			So(stats, ShouldContainKey, "topics")
		})

		Convey("And unknown routes should be 404", func() {
			w := do(router, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And the topic list should start empty", func() {
			w := do(router, http.MethodGet, "/topics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
		})
	})

	Convey("Given a nil router", t, func() {
		svc := service.New()
		server := api.NewServer(svc, svc)

		Convey("Then registering should panic", func() {
			So(func() { server.Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestTopics(t *testing.T) {
	Convey("Given a router", t, func() {
		router := newRouter()

		Convey("When creating a topic", func() {
			w := do(router, http.MethodPost, "/topics", laptopTopic)

			Convey("Then it should be created", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				topic := decode[model.Topic](w)
				So(topic.ID, ShouldNotBeEmpty)
				So(topic.Attributes, ShouldHaveLength, 2)

				got := do(router, http.MethodGet, "/topics/"+topic.ID, "")
				So(got.Code, ShouldEqual, http.StatusOK)
				So(decode[model.Topic](got).Name, ShouldEqual, "Laptop")
			})
		})

		Convey("When the topic name is empty", func() {
			w := do(router, http.MethodPost, "/topics", `{"name":"","attributes":[{"name":"Price","importance":3}]}`)

			Convey("Then it should be a validation error", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "validation_error")
			})
		})

		Convey("When the body is malformed", func() {
			w := do(router, http.MethodPost, "/topics", `{"name":`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		})

		Convey("When reading an unknown topic", func() {
			w := do(router, http.MethodGet, "/topics/missing", "")

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(errorCode(w), ShouldEqual, "not_found")
			})
		})

		Convey("When deleting an unknown topic", func() {
			w := do(router, http.MethodDelete, "/topics/missing", "")

			Convey("Then it should be a no-op", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
			})
		})

		Convey("When creating with an idempotency key twice", func() {
			first := do(router, http.MethodPost, "/topics", laptopTopic, api.IdempotencyKeyHeader, "k1")
			second := do(router, http.MethodPost, "/topics", laptopTopic, api.IdempotencyKeyHeader, "k1")

			Convey("Then only one topic should exist", func() {
				So(first.Code, ShouldEqual, http.StatusCreated)
				So(second.Code, ShouldEqual, http.StatusOK)
				So(decode[map[string]any](second)["status"], ShouldEqual, "duplicate")

				list := do(router, http.MethodGet, "/topics", "")
				So(decode[[]model.Topic](list), ShouldHaveLength, 1)
			})
		})

		Convey("When a keyed request fails validation", func() {
			bad := do(router, http.MethodPost, "/topics", `{"name":"","attributes":[]}`, api.IdempotencyKeyHeader, "k2")
			retry := do(router, http.MethodPost, "/topics", laptopTopic, api.IdempotencyKeyHeader, "k2")

			Convey("Then the key should be released for a retry", func() {
				So(bad.Code, ShouldEqual, http.StatusBadRequest)
				So(retry.Code, ShouldEqual, http.StatusCreated)
			})
		})

		Convey("When the same key is sent to two different topics", func() {
			laptop := decode[model.Topic](do(router, http.MethodPost, "/topics", laptopTopic))
			phone := decode[model.Topic](do(router, http.MethodPost, "/topics", laptopTopic))
			first := do(router, http.MethodPost, "/topics/"+laptop.ID+"/subjects",
				subjectBody(laptop, "A", 8, 2), api.IdempotencyKeyHeader, "shared")
			second := do(router, http.MethodPost, "/topics/"+phone.ID+"/subjects",
				subjectBody(phone, "A", 8, 2), api.IdempotencyKeyHeader, "shared")

			Convey("Then both subjects should be added", func() {
				So(first.Code, ShouldEqual, http.StatusCreated)
				So(second.Code, ShouldEqual, http.StatusCreated)
			})
		})
	})
}

func TestIdempotencyInFlight(t *testing.T) {
	Convey("Given a keyed request that is still running", t, func() {
		started := make(chan struct{})
		release := make(chan struct{})
		var calls atomic.Int32
		h := api.IdempotencyMiddleware(dedupe.NewInMemoryDeduper())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusCreated)
		}))

		firstDone := make(chan int)
		go func() {
			req := httptest.NewRequest(http.MethodPost, "/topics", http.NoBody)
			req.Header.Set(api.IdempotencyKeyHeader, "k")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			firstDone <- w.Code
		}()
		<-started

		Convey("When a retry with the same key arrives", func() {
			retry := do(h, http.MethodPost, "/topics", "", api.IdempotencyKeyHeader, "k")

			Convey("Then it is rejected as in progress, not acknowledged", func() {
				So(retry.Code, ShouldEqual, http.StatusConflict)
				So(errorCode(retry), ShouldEqual, "request_in_progress")
			})

			Convey("And once the first request fails the retry goes through", func() {
				close(release)
				So(<-firstDone, ShouldEqual, http.StatusBadRequest)

				again := do(h, http.MethodPost, "/topics", "", api.IdempotencyKeyHeader, "k")
				So(again.Code, ShouldEqual, http.StatusCreated)
				So(int(calls.Load()), ShouldEqual, 2)
			})
		})

		Reset(func() {
			select {
			case <-release:
			default:
				close(release)
				<-firstDone
			}
		})
	})
}

func TestSubjectsAndResults(t *testing.T) {
	Convey("Given a topic with price (5) and size (1)", t, func() {
		router := newRouter()
		topic := decode[model.Topic](do(router, http.MethodPost, "/topics", laptopTopic))
		base := "/topics/" + topic.ID

		Convey("When adding A and B", func() {
			a := do(router, http.MethodPost, base+"/subjects", subjectBody(topic, "A", 8, 2))
			b := do(router, http.MethodPost, base+"/subjects", subjectBody(topic, "B", 5, 10))
			So(a.Code, ShouldEqual, http.StatusCreated)
			So(b.Code, ShouldEqual, http.StatusCreated)

			w := do(router, http.MethodGet, base+"/results", "")

			Convey("Then A should win with 42 over B with 35", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				resp := decode[api.ResultsResponse](w)
				So(resp.Results, ShouldHaveLength, 2)
				So(resp.Results[0].SubjectName, ShouldEqual, "A")
				So(resp.Results[0].WeightedScore, ShouldEqual, 42)
				So(resp.Results[0].IsWinner, ShouldBeTrue)
				So(resp.Results[0].Rank, ShouldEqual, 1)
				So(resp.Results[1].WeightedScore, ShouldEqual, 35)
				So(resp.WinnerID, ShouldEqual, decode[model.Subject](a).ID)
			})

			Convey("And removing B twice should leave A alone with no winner", func() {
				id := decode[model.Subject](b).ID
				So(do(router, http.MethodDelete, base+"/subjects/"+id, "").Code, ShouldEqual, http.StatusNoContent)
				So(do(router, http.MethodDelete, base+"/subjects/"+id, "").Code, ShouldEqual, http.StatusNoContent)

				resp := decode[api.ResultsResponse](do(router, http.MethodGet, base+"/results", ""))
				So(resp.Results, ShouldHaveLength, 1)
				So(resp.WinnerID, ShouldBeEmpty)
			})

			Convey("And updating B should keep its id", func() {
				id := decode[model.Subject](b).ID
				w := do(router, http.MethodPut, base+"/subjects/"+id, subjectBody(topic, "B2", 10, 10))
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[model.Subject](w).ID, ShouldEqual, id)
			})

			Convey("And replacing the attributes should zero every score", func() {
				w := do(router, http.MethodPut, base+"/attributes", `{"attributes":[{"name":"Price","importance":5}]}`)
				So(w.Code, ShouldEqual, http.StatusOK)

				resp := decode[api.ResultsResponse](do(router, http.MethodGet, base+"/results", ""))
				So(resp.Results[0].WeightedScore, ShouldEqual, 0)
				So(resp.Results[1].WeightedScore, ShouldEqual, 0)
				So(resp.Results[0].SubjectName, ShouldEqual, "A")
			})
		})

		Convey("When a score is missing", func() {
			body := fmt.Sprintf(`{"name":"A","scores":{%q:8}}`, topic.Attributes[0].ID)
			w := do(router, http.MethodPost, base+"/subjects", body)

			Convey("Then it should be a validation error", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "validation_error")
			})
		})

		Convey("When updating an unknown subject", func() {
			w := do(router, http.MethodPut, base+"/subjects/missing", subjectBody(topic, "X", 1, 1))

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When requesting results of an unknown topic", func() {
			w := do(router, http.MethodGet, "/topics/missing/results", "")

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestSession(t *testing.T) {
	Convey("Given a topic with one subject", t, func() {
		router := newRouter()
		topic := decode[model.Topic](do(router, http.MethodPost, "/topics", laptopTopic))
		base := "/topics/" + topic.ID
		a := decode[model.Subject](do(router, http.MethodPost, base+"/subjects", subjectBody(topic, "A", 8, 2)))

		Convey("When reading the session", func() {
			sess := decode[service.Session](do(router, http.MethodGet, base+"/session", ""))

			Convey("Then it should be on the comparison", func() {
				So(sess.State, ShouldEqual, service.StateComparison)
			})
		})

		Convey("When opening the wizard twice", func() {
			first := do(router, http.MethodPost, base+"/session/wizard", "")
			second := do(router, http.MethodPost, base+"/session/wizard", "")

			Convey("Then the second should conflict", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(decode[service.Session](first).State, ShouldEqual, service.StateAttributeWizard)
				So(second.Code, ShouldEqual, http.StatusConflict)
				So(errorCode(second), ShouldEqual, "invalid_transition")
			})

			Convey("And closing should return to the comparison", func() {
				w := do(router, http.MethodDelete, base+"/session/wizard", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[service.Session](w).State, ShouldEqual, service.StateComparison)
			})
		})

		Convey("When editing A through the subject form", func() {
			begin := do(router, http.MethodPut, base+"/session/editing/"+a.ID, "")
			So(begin.Code, ShouldEqual, http.StatusOK)
			So(decode[service.Session](begin).EditingSubjectID, ShouldEqual, a.ID)

			w := do(router, http.MethodPost, base+"/subjects", subjectBody(topic, "A2", 1, 1))

			Convey("Then the subject should be updated in place with 200", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[model.Subject](w).ID, ShouldEqual, a.ID)

				sess := decode[service.Session](do(router, http.MethodGet, base+"/session", ""))
				So(sess.EditingSubjectID, ShouldBeEmpty)
			})
		})

		Convey("When cancelling an edit", func() {
			do(router, http.MethodPut, base+"/session/editing/"+a.ID, "")
			w := do(router, http.MethodDelete, base+"/session/editing", "")

			Convey("Then the pointer should be cleared", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[service.Session](w).EditingSubjectID, ShouldBeEmpty)
			})
		})

		Convey("When editing an unknown subject", func() {
			w := do(router, http.MethodPut, base+"/session/editing/missing", "")

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
