package engine

import (
	"sort"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/hashicorp/go-version"

	"github.com/dm/ecemon/internal/model"
)

const (
	unknownLabel   = "Unknown"
	unknownVersion = "unknown"
)

// Summarize derives display statistics from a Report. It performs no I/O and
// treats every missing or failed field as zero or empty.
func Summarize(report *model.Report) model.Summary {
	if report == nil {
		report = model.NewReport()
	}
	return model.Summary{
		Platform:    summarizePlatform(report.PlatformInfo),
		Zones:       collectZones(report.Allocators),
		Allocators:  summarizeAllocators(report.Allocators),
		Deployments: summarizeDeployments(report.Deployments),
	}
}

func summarizePlatform(res model.Result) model.PlatformSummary {
	out := model.PlatformSummary{Err: res.Err}
	info := res.Value()
	out.Version = info.Get("version").String(unknownLabel)

	for _, r := range info.Get("regions").List() {
		region := model.RegionSummary{ID: r.Get("region_id").String(unknownLabel)}
		if runners := r.Get("runners"); runners.Keys() > 0 {
			region.HasRunners = true
			region.HealthyRunners = runners.Get("healthy_runners").Int()
			region.TotalRunners = runners.Get("total_runners").Int()
		}
		if proxies := r.Get("proxies"); proxies.Keys() > 0 {
			region.HasProxies = true
			region.ProxiesCount = proxies.Get("proxies_count").Int()
			region.ProxiesHealthy = proxies.Get("healthy").Bool()
		}
		out.Regions = append(out.Regions, region)
	}
	return out
}

func collectZones(res model.Result) []string {
	zones := treeset.NewWithStringComparator()
	for _, z := range res.Value().Get("zones").List() {
		zones.Add(z.Get("zone_id").String(unknownLabel))
	}
	return stringValues(zones)
}

// flattenAllocators returns every allocator of every zone. Responses without
// zones but with a top-level allocators list are accepted as well.
func flattenAllocators(res model.Result) []model.Value {
	body := res.Value()
	var all []model.Value
	for _, z := range body.Get("zones").List() {
		all = append(all, z.Get("allocators").List()...)
	}
	if !body.Has("zones") {
		all = append(all, body.Get("allocators").List()...)
	}
	return all
}

func summarizeAllocators(res model.Result) model.AllocatorSummary {
	out := model.AllocatorSummary{Err: res.Err}
	features := treeset.NewWithStringComparator()

	for _, a := range flattenAllocators(res) {
		out.Count++
		capacity := a.Get("capacity")
		out.MemoryTotalMB += capacity.Get("memory", "total").Float()
		out.MemoryUsedMB += capacity.Get("memory", "used").Float()
		out.StorageTotalMB += capacity.Get("storage", "total").Float()
		out.Instances += a.Get("instances").Len()
		if a.Get("status", "healthy").Bool() {
			out.Healthy++
		}
		for _, f := range a.Get("features").List() {
			if s := f.String(""); s != "" {
				features.Add(s)
			}
		}
	}
	out.Features = stringValues(features)
	return out
}

func summarizeDeployments(deployments []*model.Deployment) model.DeploymentSummary {
	out := model.DeploymentSummary{
		Count:  len(deployments),
		Health: make(map[model.HealthStatus]int, len(model.HealthStatuses)),
	}
	versions := make(map[string]int)

	for _, d := range deployments {
		if d == nil {
			continue
		}
		row := model.DeploymentRow{ID: d.ID, Name: d.Name}
		row.Status, row.RawStatus, row.HealthErr = classifyHealth(d.ClusterHealth)
		out.Health[row.Status]++

		if d.ClusterHealth != nil && !d.ClusterHealth.Failed() {
			health := d.ClusterHealth.Value()
			row.RelocatingShards = health.Get("relocating_shards").Int()
			row.Nodes = health.Get("number_of_nodes").Int()
			row.Indices = countIndices(health.Get("indices"))
		}

		resources := d.Details.Value().Get("resources")
		elasticsearch := resources.Get("elasticsearch").List()
		out.ElasticsearchResources += len(elasticsearch)
		out.KibanaResources += resources.Get("kibana").Len()

		for _, es := range elasticsearch {
			info := es.Get("info")
			v := info.Get("plan_info", "current", "plan", "elasticsearch", "version").String(unknownVersion)
			versions[v]++
			if row.Version == "" {
				row.Version = v
			}

			for _, inst := range info.Get("topology", "instances").List() {
				out.Nodes++
				memory := inst.Get("memory", "instance_capacity").Float()
				out.MemoryMB += memory
				row.MemoryMB += memory
				out.StorageMB += inst.Get("disk", "disk_space_available").Float()
			}
		}
		out.Rows = append(out.Rows, row)
	}

	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].DisplayName() < out.Rows[j].DisplayName()
	})
	out.Versions = sortVersions(versions)
	return out
}

// classifyHealth buckets a cluster health result. A missing result is unknown,
// an error record is error, and status strings are matched case-insensitively.
func classifyHealth(res *model.Result) (model.HealthStatus, string, *model.ErrorRecord) {
	if res == nil {
		return model.StatusUnknown, "", nil
	}
	if res.Failed() {
		return model.StatusError, "", res.Err
	}
	raw := res.Value().Get("status").String(string(model.StatusUnknown))
	switch s := model.HealthStatus(strings.ToLower(raw)); s {
	case model.StatusGreen, model.StatusYellow, model.StatusRed:
		return s, raw, nil
	default:
		return model.StatusUnknown, raw, nil
	}
}

// countIndices reads the optional indices field of a health response, which
// is a number or, at indices level, an object keyed by index name.
func countIndices(v model.Value) int64 {
	if v.IsObject() {
		return int64(v.Keys())
	}
	return v.Int()
}

// sortVersions orders the version histogram by ascending semantic version.
// Strings that do not parse as versions follow, alphabetically.
func sortVersions(counts map[string]int) []model.VersionCount {
	out := make([]model.VersionCount, 0, len(counts))
	parsed := make(map[string]*version.Version, len(counts))
	for v, n := range counts {
		out = append(out, model.VersionCount{Version: v, Count: n})
		if pv, err := version.NewVersion(v); err == nil {
			parsed[v] = pv
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := parsed[out[i].Version], parsed[out[j].Version]
		switch {
		case a != nil && b != nil:
			if !a.Equal(b) {
				return a.LessThan(b)
			}
			return out[i].Version < out[j].Version
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			return out[i].Version < out[j].Version
		}
	})
	return out
}

func stringValues(set *treeset.Set) []string {
	out := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, v.(string))
	}
	return out
}
