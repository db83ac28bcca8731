package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canonize_records_total",
		Help: "Canonical records written, by vault source.",
	}, []string{"source"})

	PartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canonize_parts_total",
		Help: "Vault parts fed through the canonizer, by vault source.",
	}, []string{"source"})

	ManifestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canonize_manifest_errors_total",
		Help: "Manifests whose transform failed.",
	})
)

func Expose(port int) {
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
	}()
}
