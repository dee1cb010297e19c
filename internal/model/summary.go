package model

// HealthStatus is a bucket of the deployment health histogram.
type HealthStatus string

const (
	StatusGreen   HealthStatus = "green"
	StatusYellow  HealthStatus = "yellow"
	StatusRed     HealthStatus = "red"
	StatusError   HealthStatus = "error"
	StatusUnknown HealthStatus = "unknown"
)

// HealthStatuses lists the histogram buckets in display order.
var HealthStatuses = []HealthStatus{StatusGreen, StatusYellow, StatusRed, StatusError, StatusUnknown}

// Summary holds the statistics derived from a Report for display.
type Summary struct {
	Platform    PlatformSummary
	Zones       []string
	Allocators  AllocatorSummary
	Deployments DeploymentSummary
}

// PlatformSummary describes /api/v1/platform.
type PlatformSummary struct {
	Err     *ErrorRecord
	Version string
	Regions []RegionSummary
}

// RegionSummary describes one platform region.
type RegionSummary struct {
	ID             string
	HasRunners     bool
	HealthyRunners int64
	TotalRunners   int64
	HasProxies     bool
	ProxiesCount   int64
	ProxiesHealthy bool
}

// AllocatorSummary aggregates capacity across every allocator in every zone.
// Capacities are in MB as reported by the control plane.
type AllocatorSummary struct {
	Err            *ErrorRecord
	Count          int
	MemoryTotalMB  float64
	MemoryUsedMB   float64
	StorageTotalMB float64
	Instances      int
	Healthy        int
	Features       []string
}

// MemoryUsedRatio returns used/total memory, and false when total is zero.
func (a AllocatorSummary) MemoryUsedRatio() (float64, bool) {
	if a.MemoryTotalMB <= 0 {
		return 0, false
	}
	return a.MemoryUsedMB / a.MemoryTotalMB, true
}

// VersionCount is one bar of the Elasticsearch version histogram.
type VersionCount struct {
	Version string
	Count   int
}

// DeploymentSummary aggregates the inspected deployments.
type DeploymentSummary struct {
	Count                  int
	Health                 map[HealthStatus]int
	Versions               []VersionCount
	ElasticsearchResources int
	KibanaResources        int
	MemoryMB               float64
	StorageMB              float64
	Nodes                  int
	Rows                   []DeploymentRow
}

// DeploymentRow holds display-ready data for one deployment.
type DeploymentRow struct {
	ID   string
	Name string
	// Status is the histogram bucket; RawStatus is the status string as reported.
	Status    HealthStatus
	RawStatus string
	// HealthErr is set when the health fetch returned an error record.
	HealthErr        *ErrorRecord
	RelocatingShards int64
	Nodes            int64
	Indices          int64
	MemoryMB         float64
	Version          string
}

// DisplayName returns Name, falling back to ID.
func (r DeploymentRow) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
