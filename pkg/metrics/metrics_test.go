package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a dedicated registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("ranker"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should apply them", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "ranker")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 10})
			})

			Convey("And collectors should be registered under the namespace", func() {
				manager.UpdateStoreTotals(1, 2, 3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_ranker_topics_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options carry empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "ranker")
				So(manager.subsystem, ShouldEqual, "decision")
				So(manager.histogramBuckets, ShouldNotBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When updating store totals", func() {
			manager.UpdateStoreTotals(2, 5, 7)

			Convey("Then gauges reflect the values", func() {
				So(testutil.ToFloat64(manager.topicsTotal), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.attributesTotal), ShouldEqual, 5)
				So(testutil.ToFloat64(manager.subjectsTotal), ShouldEqual, 7)
			})
		})

		Convey("When recording mutations and validation errors", func() {
			manager.RecordMutation("create_topic")
			manager.RecordMutation("create_topic")
			manager.RecordValidationError("name")

			Convey("Then counters are labelled", func() {
				So(testutil.ToFloat64(manager.mutations.WithLabelValues("create_topic")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.validationErrors.WithLabelValues("name")), ShouldEqual, 1)
			})
		})

		Convey("When recording rankings", func() {
			manager.RecordRanking(0.2, true)
			manager.RecordRanking(0.1, false)

			Convey("Then only rankings with a winner bump the winner counter", func() {
				So(testutil.ToFloat64(manager.rankingsComputed), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.winnersDeclared), ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP traffic", func() {
			manager.RecordHTTPRequest("topics", "POST", "201", 1.5)
			manager.RecordErrorByEndpoint("topics", "POST", "client_error")
			manager.RecordDuplicate()

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("topics", "POST", "201")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.errorsByEndpoint.WithLabelValues("topics", "POST", "client_error")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.duplicates), ShouldEqual, 1)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When calling the package helpers", func() {
			UpdateStoreTotals(1, 1, 1)
			RecordMutation("delete_topic")
			RecordValidationError("scores")
			RecordDuplicate()
			RecordRanking(0.5, true)
			RecordHTTPRequest("results", "GET", "200", 0.3)
			RecordErrorByEndpoint("results", "GET", "not_found")

			Convey("Then the custom registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				joined := strings.Join(names, ",")
				So(joined, ShouldContainSubstring, "ranker_decision_mutations_total")
				So(joined, ShouldContainSubstring, "ranker_decision_ranking_latency_milliseconds")
			})
		})

		Convey("When registering runtime collectors twice", func() {
			So(func() {
				RegisterRuntimeCollectors()
				RegisterRuntimeCollectors()
			}, ShouldNotPanic)

			Convey("Then Go runtime metrics are exposed", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "go_goroutines" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}
