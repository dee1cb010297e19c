package tui

import (
	"cmp"
	"sort"
	"strings"

	version "github.com/hashicorp/go-version"

	"github.com/dm/ecemon/internal/model"
)

// statusRank orders health buckets from healthiest to least known.
var statusRank = func() map[model.HealthStatus]int {
	m := make(map[model.HealthStatus]int, len(model.HealthStatuses))
	for i, s := range model.HealthStatuses {
		m[s] = i
	}
	return m
}()

// sortDeploymentRows returns a sorted copy of rows.
// Column mapping:
//
//	0=Name, 1=ID, 2=Status, 3=Nodes, 4=RelocatingShards, 5=MemoryMB, 6=Version
//
// col -1 means no sort (preserve order).
// Ties are broken by display name ascending in both directions.
func sortDeploymentRows(rows []model.DeploymentRow, col int, desc bool) []model.DeploymentRow {
	out := make([]model.DeploymentRow, len(rows))
	copy(out, rows)

	if col < 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		c := compareDeployments(a, b, col)
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return cmp.Compare(lowerName(a), lowerName(b)) < 0
	})
	return out
}

// compareDeployments compares a and b on column col only.
func compareDeployments(a, b model.DeploymentRow, col int) int {
	switch col {
	case 1:
		return cmp.Compare(a.ID, b.ID)
	case 2:
		return cmp.Compare(statusRank[a.Status], statusRank[b.Status])
	case 3:
		return cmp.Compare(a.Nodes, b.Nodes)
	case 4:
		return cmp.Compare(a.RelocatingShards, b.RelocatingShards)
	case 5:
		return cmp.Compare(a.MemoryMB, b.MemoryMB)
	case 6:
		switch {
		case versionLess(a.Version, b.Version):
			return -1
		case versionLess(b.Version, a.Version):
			return 1
		default:
			return 0
		}
	default:
		return cmp.Compare(lowerName(a), lowerName(b))
	}
}

func lowerName(r model.DeploymentRow) string {
	return strings.ToLower(r.DisplayName())
}

// versionLess compares semantic versions; unparsable versions sort after
// parsable ones, alphabetically.
func versionLess(a, b string) bool {
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.LessThan(vb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// filterDeploymentRows returns rows whose name, id, or version contains
// search (case-insensitive). Returns all rows when search is empty.
func filterDeploymentRows(rows []model.DeploymentRow, search string) []model.DeploymentRow {
	if search == "" {
		return rows
	}
	lower := strings.ToLower(search)
	out := rows[:0:0]
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Name), lower) ||
			strings.Contains(strings.ToLower(r.ID), lower) ||
			strings.Contains(strings.ToLower(r.Version), lower) {
			out = append(out, r)
		}
	}
	return out
}
