package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should be enabled with the default refresh interval", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(3*time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordEntityListing()

			Convey("Then metric names should use the namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_entity_listings_total")
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)
			})
		})

		Convey("When registering two managers on the same registry", func() {
			registry := prometheus.NewRegistry()
			_ = NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration should panic", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording lookups", func() {
			m.RecordEntityLookup("entity", true)
			m.RecordEntityLookup("entity", false)
			m.RecordEntityLookup("entity", false)
			m.RecordFieldDefaulted("mentions")

			Convey("Then outcomes should be split by label", func() {
				So(testutil.ToFloat64(m.entityLookups.WithLabelValues("entity", "found")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.entityLookups.WithLabelValues("entity", "defaulted")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.fieldDefaults.WithLabelValues("mentions")), ShouldEqual, 1)
			})
		})

		Convey("When recording uploads and document state", func() {
			m.RecordUpload("accepted")
			m.RecordUpload("rejected")
			m.RecordUploadBytes(2048)
			m.UpdateTrackedEntities(7)
			m.UpdateStorePopulated(true)
			m.UpdateDocumentAge(90 * time.Second)

			Convey("Then counters and gauges should reflect the values", func() {
				So(testutil.ToFloat64(m.uploads.WithLabelValues("accepted")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.uploads.WithLabelValues("rejected")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.trackedEntities), ShouldEqual, 7)
				So(testutil.ToFloat64(m.storePopulated), ShouldEqual, 1)
				So(testutil.ToFloat64(m.documentAgeSeconds), ShouldEqual, 90)
			})
		})

		Convey("When recording store operations", func() {
			m.RecordStoreOperation("file", "load", nil, 2*time.Millisecond)
			m.RecordStoreOperation("file", "replace", errors.New("disk full"), time.Millisecond)

			Convey("Then the outcome label should follow the error", func() {
				So(testutil.ToFloat64(m.storeOps.WithLabelValues("file", "load", "ok")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.storeOps.WithLabelValues("file", "replace", "error")), ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP traffic", func() {
			m.RecordHTTPRequest("entities", "GET", "200", 1.5)
			m.RecordHTTPError("upload_json", "POST", "client_error", "medium")

			Convey("Then request and error counters should increase", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("entities", "GET", "200")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorRateByEndpoint.WithLabelValues("upload_json", "POST", "client_error")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorRateByType.WithLabelValues("client_error", "medium")), ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsDisabled(t *testing.T) {
	Convey("Given a disabled manager", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))

		Convey("When recording", func() {
			m.RecordUpload("accepted")
			m.UpdateTrackedEntities(3)

			Convey("Then nothing should be observed", func() {
				So(testutil.ToFloat64(m.uploads.WithLabelValues("accepted")), ShouldEqual, 0)
				So(testutil.ToFloat64(m.trackedEntities), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the helpers should not panic and the registry should gather", func() {
			So(func() {
				RecordEntityLookup("trending", false)
				RecordFieldDefaulted("google_trends")
				RecordEntityListing()
				RecordUpload("accepted")
				RecordUploadBytes(10)
				UpdateTrackedEntities(1)
				UpdateStorePopulated(false)
				UpdateDocumentAge(time.Second)
				RecordStoreOperation("memory", "load", nil, time.Microsecond)
				RecordHTTPRequest("healthz", "GET", "200", 0.1)
				RecordHTTPError("entities", "GET", "server_error", "high")
				UpdateSystem(1024, 10, 0.2)
			}, ShouldNotPanic)

			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			So(Default(), ShouldNotBeNil)
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given a global manager rebuilt with options", t, func() {
		before := GetRegistry()
		m := Init(WithConstLabels(map[string]string{"env": "staging"}), WithHistogramBuckets([]float64{1, 10}))
		RecordHTTPRequest("entities", "GET", "200", 5)

		Convey("Then the helpers and registry should follow the new manager", func() {
			So(Default(), ShouldPointTo, m)
			So(GetRegistry(), ShouldNotPointTo, before)

			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var found bool
			for _, f := range families {
				if f.GetName() != "hype_api_http_request_duration_milliseconds" {
					continue
				}
				found = true
				metric := f.GetMetric()[0]
				labels := map[string]string{}
				for _, l := range metric.GetLabel() {
					labels[l.GetName()] = l.GetValue()
				}
				So(labels["env"], ShouldEqual, "staging")
				So(metric.GetHistogram().GetBucket(), ShouldHaveLength, 2)
			}
			So(found, ShouldBeTrue)
		})
	})
}
