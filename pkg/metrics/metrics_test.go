package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When a manager is built with custom options", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_prefix"),
				WithFetchBuckets([]float64{0.1, 0.5, 1.0}),
				WithRunBuckets([]float64{1, 10}),
				WithMetricsEnabled(false),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(m.namespace, ShouldEqual, "test_namespace")
				So(m.subsystem, ShouldEqual, "test_subsystem")
				So(m.metricPrefix, ShouldEqual, "test_prefix")
				So(m.fetchBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(m.runBuckets, ShouldResemble, []float64{1, 10})
				So(m.enabled, ShouldBeFalse)
				So(m.customLabels["env"], ShouldEqual, "test")
			})

			Convey("And metric names should carry the prefix", func() {
				m.catalogSongs.Set(1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_test_prefix_catalog_songs" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty values are passed", func() {
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithFetchBuckets(nil),
				WithRunBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults should be kept", func() {
				So(m.namespace, ShouldEqual, "ddrsync")
				So(m.subsystem, ShouldEqual, "pipeline")
				So(m.fetchBuckets, ShouldResemble, prometheus.DefBuckets)
				So(m.runBuckets, ShouldResemble, defaultRunBuckets)
			})
		})
	})
}

func TestManagerCounters(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When catalog and score metrics are observed", func() {
			m.catalogSongs.Set(12)
			m.scoreSlotsChanged.WithLabelValues("secondary").Add(3)
			m.fetchErrors.WithLabelValues("secondary_scores").Inc()

			Convey("Then the values should be readable", func() {
				So(testutil.ToFloat64(m.catalogSongs), ShouldEqual, 12)
				So(testutil.ToFloat64(m.scoreSlotsChanged.WithLabelValues("secondary")), ShouldEqual, 3)
				So(testutil.ToFloat64(m.fetchErrors.WithLabelValues("secondary_scores")), ShouldEqual, 1)
			})
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording run metrics", func() {
			before := testutil.ToFloat64(globalManager.degradedRuns)
			So(func() {
				RecordRun("ok", 120*time.Millisecond)
				RecordRun("degraded", 80*time.Millisecond)
				RecordDegradedRun()
				RecordFailedPlayerFetch()
			}, ShouldNotPanic)

			Convey("Then the degraded counter should advance", func() {
				So(testutil.ToFloat64(globalManager.degradedRuns), ShouldEqual, before+1)
			})
		})

		Convey("When a run duration is recorded", func() {
			runSum := func() float64 {
				families, err := customRegistry.Gather()
				So(err, ShouldBeNil)
				for _, f := range families {
					if f.GetName() == "ddrsync_pipeline_run_duration_seconds" {
						return f.GetMetric()[0].GetHistogram().GetSampleSum()
					}
				}
				return 0
			}
			before := runSum()
			RecordRun("ok", 1500*time.Millisecond)

			Convey("Then it should be observed in seconds", func() {
				So(runSum()-before, ShouldAlmostEqual, 1.5, 1e-9)
			})
		})

		Convey("When recording catalog metrics", func() {
			newBefore := testutil.ToFloat64(globalManager.catalogNewSongs)
			UpdateCatalogSize(40, 31)
			RecordNewSongs(2)
			RecordNewSongs(0)
			RecordNewSongs(-1)
			RecordReconcile(3, 1)

			Convey("Then gauges should be set and non-positive adds ignored", func() {
				So(testutil.ToFloat64(globalManager.catalogSongs), ShouldEqual, 40)
				So(testutil.ToFloat64(globalManager.catalogLinkedSongs), ShouldEqual, 31)
				So(testutil.ToFloat64(globalManager.catalogNewSongs), ShouldEqual, newBefore+2)
			})
		})

		Convey("When recording score and fetch metrics", func() {
			So(func() {
				RecordScoreSlotsChanged("primary", 4)
				RecordScoreSlotsChanged("secondary", 0)
				RecordAttributionDropped(2)
				RecordSecondaryDiscarded()
				RecordSearchFuzzyFallback()
				RecordFetchLatency("primary_catalog", 15*time.Millisecond)
				RecordFetchError("secondary_catalog")
				RecordSkippedRecord("primary", "bad_song_id")
			}, ShouldNotPanic)
		})

		Convey("When recording queue and worker metrics", func() {
			UpdateQueueCapacity(64)
			UpdateQueueSize(8)
			UpdateQueueUtilization(0.125)
			UpdateWorkerActiveCount(4)
			So(func() {
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordWorkerError("worker", "panic")
			}, ShouldNotPanic)

			Convey("Then queue gauges should reflect the last update", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 8)
				So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 4)
			})
		})

		Convey("When the registry is requested", func() {
			Convey("Then it should be the custom registry", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}
