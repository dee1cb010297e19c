package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/ecemon/internal/model"
)

func writeAndRead(t *testing.T, r *Recorder) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ecemon.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRecordSummary(t *testing.T) {
	r := NewRecorder()
	r.RecordSummary(model.Summary{
		Allocators: model.AllocatorSummary{
			Count:          3,
			Healthy:        2,
			MemoryTotalMB:  131072,
			MemoryUsedMB:   65536,
			StorageTotalMB: 1024,
			Instances:      7,
		},
		Deployments: model.DeploymentSummary{
			Count:    4,
			Health:   map[model.HealthStatus]int{model.StatusGreen: 3, model.StatusError: 1},
			Versions: []model.VersionCount{{Version: "8.11.3", Count: 2}},
		},
	})
	r.RecordDuration(1500 * time.Millisecond)

	out := writeAndRead(t, r)
	for _, want := range []string{
		"ecemon_allocators 3",
		"ecemon_allocators_healthy 2",
		`ecemon_allocator_memory_megabytes{kind="total"} 131072`,
		`ecemon_allocator_memory_megabytes{kind="used"} 65536`,
		"ecemon_allocator_storage_megabytes 1024",
		"ecemon_allocator_instances 7",
		"ecemon_deployments_inspected 4",
		`ecemon_deployment_health{status="green"} 3`,
		`ecemon_deployment_health{status="error"} 1`,
		`ecemon_deployment_health{status="unknown"} 0`,
		`ecemon_elasticsearch_versions{version="8.11.3"} 2`,
		"ecemon_run_duration_seconds 1.5",
	} {
		assert.Contains(t, out, want)
	}
}

func TestObserveFetch(t *testing.T) {
	r := NewRecorder()
	r.ObserveFetch(model.OK(map[string]any{}))
	r.ObserveFetch(model.OK(nil))
	r.ObserveFetch(model.Failed(model.KindHTTPError, 500, "boom"))
	r.ObserveFetch(model.Failed(model.KindRequestException, 0, "refused"))

	out := writeAndRead(t, r)
	assert.Contains(t, out, `ecemon_fetch_total{outcome="ok"} 2`)
	assert.Contains(t, out, `ecemon_fetch_total{outcome="HTTPError"} 1`)
	assert.Contains(t, out, `ecemon_fetch_total{outcome="RequestException"} 1`)
}

func TestGatherer(t *testing.T) {
	r := NewRecorder()
	r.RecordSummary(model.Summary{})
	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "ecemon_allocators")
	assert.Contains(t, names, "ecemon_deployment_health")
}

func TestWriteTextfileError(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "ecemon.prom"))
	assert.Error(t, err)
}
