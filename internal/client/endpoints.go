package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/dm/ecemon/internal/model"
)

const (
	endpointPlatform      = "/api/v1/platform"
	endpointAllocators    = "/api/v1/platform/infrastructure/allocators"
	endpointDeployments   = "/api/v1/deployments"
	endpointClusterHealth = "/_cluster/health"
	endpointClusterStats  = "/_cluster/stats"
)

// GetPlatform fetches platform information from /api/v1/platform.
func (c *DefaultClient) GetPlatform(ctx context.Context) model.Result {
	return c.Fetch(ctx, c.config.BaseURL+endpointPlatform)
}

// GetAllocators fetches the allocator inventory, grouped by zone.
func (c *DefaultClient) GetAllocators(ctx context.Context) model.Result {
	return c.Fetch(ctx, c.config.BaseURL+endpointAllocators)
}

// GetDeployments fetches the deployment list.
func (c *DefaultClient) GetDeployments(ctx context.Context) model.Result {
	return c.Fetch(ctx, c.config.BaseURL+endpointDeployments)
}

// GetDeployment fetches one deployment including resource metadata.
func (c *DefaultClient) GetDeployment(ctx context.Context, id string) model.Result {
	return c.Fetch(ctx, DeploymentURL(c.config.BaseURL, id))
}

// GetClusterHealth fetches /_cluster/health from an Elasticsearch endpoint.
func (c *DefaultClient) GetClusterHealth(ctx context.Context, endpoint string) model.Result {
	return c.Fetch(ctx, strings.TrimRight(endpoint, "/")+endpointClusterHealth)
}

// GetClusterStats fetches /_cluster/stats from an Elasticsearch endpoint.
func (c *DefaultClient) GetClusterStats(ctx context.Context, endpoint string) model.Result {
	return c.Fetch(ctx, strings.TrimRight(endpoint, "/")+endpointClusterStats)
}

// DeploymentURL returns the details URL for deployment id with metadata enabled.
func DeploymentURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + endpointDeployments + "/" + url.PathEscape(id) + "?show_metadata=true"
}
