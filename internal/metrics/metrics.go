// Package metrics exports run statistics in the Prometheus text format so a
// node_exporter textfile collector can pick them up.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dm/ecemon/internal/model"
)

const outcomeOK = "ok"

// Recorder holds the gauges and counters of one run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	fetchTotal *prometheus.CounterVec

	allocators        prometheus.Gauge
	allocatorsHealthy prometheus.Gauge
	allocatorMemory   *prometheus.GaugeVec
	allocatorStorage  prometheus.Gauge
	allocatorInstance prometheus.Gauge
	deployments       prometheus.Gauge
	deploymentHealth  *prometheus.GaugeVec
	versions          *prometheus.GaugeVec
	runDuration       prometheus.Gauge
}

// NewRecorder registers every metric on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		fetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecemon_fetch_total",
				Help: "Number of API requests by outcome",
			},
			[]string{"outcome"}, // ok, HTTPError or RequestException
		),
		allocators: f.NewGauge(prometheus.GaugeOpts{
			Name: "ecemon_allocators",
			Help: "Number of allocators reported by the control plane",
		}),
		allocatorsHealthy: f.NewGauge(prometheus.GaugeOpts{
			Name: "ecemon_allocators_healthy",
			Help: "Number of allocators reporting healthy status",
		}),
		allocatorMemory: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ecemon_allocator_memory_megabytes",
				Help: "Allocator memory capacity summed over all allocators",
			},
			[]string{"kind"}, // total or used
		),
		allocatorStorage: f.NewGauge(prometheus.GaugeOpts{
			Name: "ecemon_allocator_storage_megabytes",
			Help: "Allocator storage capacity summed over all allocators",
		}),
		allocatorInstance: f.NewGauge(prometheus.GaugeOpts{
			Name: "ecemon_allocator_instances",
			Help: "Number of instances placed on allocators",
		}),
		deployments: f.NewGauge(prometheus.GaugeOpts{
			Name: "ecemon_deployments_inspected",
			Help: "Number of deployments inspected in the last run",
		}),
		deploymentHealth: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ecemon_deployment_health",
				Help: "Number of deployments by cluster health status",
			},
			[]string{"status"},
		),
		versions: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ecemon_elasticsearch_versions",
				Help: "Number of Elasticsearch resources by version",
			},
			[]string{"version"},
		),
		runDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "ecemon_run_duration_seconds",
			Help: "Wall-clock duration of the last collection run",
		}),
	}
}

// ObserveFetch counts one fetch outcome. It matches the client's OnResult hook.
func (r *Recorder) ObserveFetch(res model.Result) {
	outcome := outcomeOK
	if res.Failed() {
		outcome = string(res.Err.Kind)
	}
	r.fetchTotal.WithLabelValues(outcome).Inc()
}

// RecordSummary sets the gauges from a computed summary.
func (r *Recorder) RecordSummary(s model.Summary) {
	a := s.Allocators
	r.allocators.Set(float64(a.Count))
	r.allocatorsHealthy.Set(float64(a.Healthy))
	r.allocatorMemory.WithLabelValues("total").Set(a.MemoryTotalMB)
	r.allocatorMemory.WithLabelValues("used").Set(a.MemoryUsedMB)
	r.allocatorStorage.Set(a.StorageTotalMB)
	r.allocatorInstance.Set(float64(a.Instances))

	d := s.Deployments
	r.deployments.Set(float64(d.Count))
	for _, status := range model.HealthStatuses {
		r.deploymentHealth.WithLabelValues(string(status)).Set(float64(d.Health[status]))
	}
	r.versions.Reset()
	for _, v := range d.Versions {
		r.versions.WithLabelValues(v.Version).Set(float64(v.Count))
	}
}

// RecordDuration sets the run duration gauge.
func (r *Recorder) RecordDuration(d time.Duration) {
	r.runDuration.Set(d.Seconds())
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
