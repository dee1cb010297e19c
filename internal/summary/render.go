// Package summary renders a model.Summary as the console summary block.
package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dm/ecemon/internal/format"
	"github.com/dm/ecemon/internal/model"
)

var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorCyan   = lipgloss.Color("#06b6d4")
)

var upper = cases.Upper(language.Und)

// styles are bound to the renderer of the output writer, so colour is only
// emitted when the writer is a terminal.
type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	dim     lipgloss.Style
	err     lipgloss.Style
	status  map[model.HealthStatus]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true),
		section: r.NewStyle().Bold(true).Foreground(colorCyan),
		dim:     r.NewStyle().Foreground(colorGray),
		err:     r.NewStyle().Bold(true).Foreground(colorRed),
		status: map[model.HealthStatus]lipgloss.Style{
			model.StatusGreen:   r.NewStyle().Bold(true).Foreground(colorGreen),
			model.StatusYellow:  r.NewStyle().Bold(true).Foreground(colorYellow),
			model.StatusRed:     r.NewStyle().Bold(true).Foreground(colorRed),
			model.StatusError:   r.NewStyle().Foreground(colorRed),
			model.StatusUnknown: r.NewStyle().Foreground(colorGray),
		},
	}
}

// printer writes lines to w and remembers the first write error.
type printer struct {
	w   io.Writer
	err error
	st  styles
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	p.printf("\n%s\n", p.st.section.Render("--- "+title+" ---"))
}

// Render writes the summary block for s to w.
func Render(w io.Writer, s model.Summary) error {
	p := &printer{w: w, st: newStyles(lipgloss.NewRenderer(w))}

	rule := strings.Repeat("=", 50)
	p.printf("\n%s\n%s\n%s\n", rule, p.st.title.Render("                 METRICS SUMMARY"), rule)

	renderPlatform(p, s.Platform)
	renderZones(p, s.Zones)
	renderAllocators(p, s.Allocators)
	renderDeployments(p, s.Deployments)

	p.printf("\n%s\n\n", strings.Repeat("=", 80))
	return p.err
}

func renderPlatform(p *printer, ps model.PlatformSummary) {
	p.section("Platform Info")
	p.printf("  Version: %s\n", ps.Version)
	if ps.Err != nil {
		p.printf("  %s\n", p.st.err.Render("Error details: "+ps.Err.Details))
	}
	if len(ps.Regions) == 0 {
		return
	}
	p.printf("  Regions: %d\n", len(ps.Regions))
	for _, r := range ps.Regions {
		p.printf("    - %s\n", r.ID)
		if r.HasRunners {
			p.printf("      Runners: %s healthy\n", format.Fraction(r.HealthyRunners, r.TotalRunners))
		}
		if r.HasProxies {
			health := "Unhealthy"
			if r.ProxiesHealthy {
				health = "Healthy"
			}
			p.printf("      Proxies: %d (%s)\n", r.ProxiesCount, health)
		}
	}
}

func renderZones(p *printer, zones []string) {
	p.section(fmt.Sprintf("Zones (%d found)", len(zones)))
	for _, z := range zones {
		p.printf("  - %s\n", z)
	}
}

func renderAllocators(p *printer, a model.AllocatorSummary) {
	if a.Count == 0 {
		p.section("Allocators: Could not retrieve data or no allocators found.")
		if a.Err != nil {
			p.printf("  %s\n", p.st.err.Render("Error details: "+a.Err.Details))
		}
		return
	}

	p.section(fmt.Sprintf("Allocators (%d found)", a.Count))
	p.printf("  Total Memory Capacity: %s\n", format.GB(a.MemoryTotalMB, 2))
	if ratio, ok := a.MemoryUsedRatio(); ok {
		p.printf("  Used Memory Capacity:  %s (%s used)\n", format.GB(a.MemoryUsedMB, 2), format.Ratio(ratio, ok))
	} else {
		p.printf("  Used Memory Capacity: %s\n", format.NotAvailable)
	}
	p.printf("  Total Storage: %s\n", format.GB(a.StorageTotalMB, 2))
	p.printf("  Total Instances: %d\n", a.Instances)
	p.printf("  Healthy Allocators: %s\n", format.Fraction(int64(a.Healthy), int64(a.Count)))
	p.printf("  Available Features: %s\n", strings.Join(a.Features, ", "))
}

func renderDeployments(p *printer, d model.DeploymentSummary) {
	p.section(fmt.Sprintf("Inspected Deployments (%d found)", d.Count))
	if d.Count == 0 {
		p.printf("  No deployments found or collected.\n")
		return
	}

	var dist []string
	for _, status := range model.HealthStatuses {
		if n := d.Health[status]; n > 0 {
			label := upper.String(string(status))
			dist = append(dist, p.st.status[status].Render(label)+fmt.Sprintf(": %d", n))
		}
	}
	p.printf("  Status Distribution: %s\n", strings.Join(dist, ", "))

	versions := "None found"
	if len(d.Versions) > 0 {
		parts := make([]string, 0, len(d.Versions))
		for _, v := range d.Versions {
			parts = append(parts, fmt.Sprintf("%s (%d)", v.Version, v.Count))
		}
		versions = strings.Join(parts, ", ")
	}
	p.printf("  Elasticsearch Versions: %s\n", versions)
	p.printf("  Resource Counts: %d Elasticsearch, %d Kibana\n", d.ElasticsearchResources, d.KibanaResources)
	p.printf("  Total Memory Allocated: %s\n", format.GB(d.MemoryMB, 2))
	p.printf("  Total Storage Allocated: %s\n", format.GB(d.StorageMB, 2))
	p.printf("  Total Nodes: %d\n", d.Nodes)

	p.section("Deployment Details")
	for _, row := range d.Rows {
		p.printf("  - %s: %s\n", row.DisplayName(), deploymentLine(p.st, row))
	}
}

// deploymentLine formats the status part of a per-deployment line.
func deploymentLine(st styles, row model.DeploymentRow) string {
	var b strings.Builder
	if row.HealthErr != nil {
		b.WriteString(st.err.Render(fmt.Sprintf("Could not fetch health (Error: %s)", row.HealthErr.Details)))
	} else {
		raw := row.RawStatus
		if raw == "" {
			raw = string(model.StatusUnknown)
		}
		b.WriteString("Status: ")
		b.WriteString(st.status[row.Status].Render(upper.String(raw)))
		if row.RelocatingShards > 0 {
			fmt.Fprintf(&b, " | Relocating Shards: %d", row.RelocatingShards)
		}
		if row.Nodes > 0 {
			fmt.Fprintf(&b, " | Nodes: %d", row.Nodes)
		}
		if row.Indices > 0 {
			fmt.Fprintf(&b, " | Indices: %d", row.Indices)
		}
	}
	if row.MemoryMB > 0 {
		b.WriteString(" | Memory: " + format.GB(row.MemoryMB, 1))
	}
	return b.String()
}
