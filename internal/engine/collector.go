package engine

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/dm/ecemon/internal/client"
	"github.com/dm/ecemon/internal/model"
)

// Collector walks the control plane in a fixed order and assembles a Report.
// It issues one request at a time.
type Collector struct {
	client   client.ECEClient
	filter   Filter
	progress io.Writer
	logger   *zap.Logger
}

// CollectorOptions configures a Collector. Zero values are usable: the zero
// Filter matches every deployment, a nil Progress discards progress lines and
// a nil Logger logs nothing.
type CollectorOptions struct {
	Filter   Filter
	Progress io.Writer
	Logger   *zap.Logger
}

// NewCollector returns a Collector reading from c.
func NewCollector(c client.ECEClient, opts CollectorOptions) *Collector {
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Collector{
		client:   c,
		filter:   opts.Filter,
		progress: opts.Progress,
		logger:   opts.Logger,
	}
}

// Collect fetches platform info, allocators, the deployment list and then each
// selected deployment with its cluster health and stats.
//
// Fetch failures are stored in the Report as error records and never stop the
// run. Collect returns early only when ctx is cancelled, in which case the
// partial Report is returned together with ctx.Err().
func (c *Collector) Collect(ctx context.Context) (*model.Report, error) {
	report := model.NewReport()

	c.printf("\n--- Fetching Platform and Allocator Information ---\n")
	if err := ctx.Err(); err != nil {
		return report, err
	}
	report.PlatformInfo = c.client.GetPlatform(ctx)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	report.Allocators = c.client.GetAllocators(ctx)

	c.printf("\n--- Fetching Deployment List ---\n")
	if err := ctx.Err(); err != nil {
		return report, err
	}
	stubs := c.selectDeployments(c.client.GetDeployments(ctx))
	if len(stubs) == 0 {
		c.printf("No deployments found to fetch detailed metrics for.\n")
		return report, nil
	}

	c.printf("\n--- Fetching Detailed Metrics for Deployments ---\n")
	for _, stub := range stubs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		d := model.NewDeployment(stub)
		report.Deployments = append(report.Deployments, d)
		if err := c.collectDeployment(ctx, d); err != nil {
			return report, err
		}
	}
	return report, nil
}

// selectDeployments returns the stubs of the deployment list that have an id
// and whose name passes the filter. An error record yields no stubs.
func (c *Collector) selectDeployments(list model.Result) []model.Value {
	if list.Failed() {
		return nil
	}
	all := list.Value().Get("deployments").List()
	selected := make([]model.Value, 0, len(all))
	for _, stub := range all {
		id := stub.Get("id").String("")
		if id == "" {
			c.logger.Warn("skipping deployment without id", zap.Any("stub", stub.Raw()))
			continue
		}
		name := stub.Get("name").String("")
		if !c.filter.Match(name) {
			c.logger.Debug("deployment filtered out",
				zap.String("id", id),
				zap.String("name", name),
				zap.String("filter", c.filter.Pattern()),
			)
			continue
		}
		selected = append(selected, stub)
	}
	if len(all) > 0 {
		c.logger.Info("deployments selected",
			zap.Int("listed", len(all)),
			zap.Int("selected", len(selected)),
			zap.String("filter", c.filter.Pattern()),
		)
	}
	return selected
}

func (c *Collector) collectDeployment(ctx context.Context, d *model.Deployment) error {
	c.printf("\nProcessing Deployment: '%s' (ID: %s)\n", d.DisplayName(), d.ID)

	d.Details = c.client.GetDeployment(ctx, d.ID)

	endpoint, status := locateElasticsearch(d.Details.Value())
	switch status {
	case endpointNotReady:
		c.printf("  Elasticsearch resource endpoint not found or deployment is not ready.\n")
		return nil
	case endpointNoURL:
		c.printf("  Elasticsearch service URL not found in metadata.\n")
		return nil
	}
	c.printf("  Found Elasticsearch endpoint: %s\n", endpoint)

	if err := ctx.Err(); err != nil {
		return err
	}
	health := c.client.GetClusterHealth(ctx, endpoint)
	d.ClusterHealth = &health

	if err := ctx.Err(); err != nil {
		return err
	}
	stats := c.client.GetClusterStats(ctx, endpoint)
	d.ClusterStats = &stats
	return nil
}

func (c *Collector) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.progress, format, args...)
}
