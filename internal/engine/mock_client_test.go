package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dm/ecemon/internal/model"
)

// MockECEClient implements client.ECEClient for testing. Calls records every
// request in order as "method:arg".
type MockECEClient struct {
	PlatformFn      func(ctx context.Context) model.Result
	AllocatorsFn    func(ctx context.Context) model.Result
	DeploymentsFn   func(ctx context.Context) model.Result
	DeploymentFn    func(ctx context.Context, id string) model.Result
	ClusterHealthFn func(ctx context.Context, endpoint string) model.Result
	ClusterStatsFn  func(ctx context.Context, endpoint string) model.Result

	Calls []string
}

func (m *MockECEClient) GetPlatform(ctx context.Context) model.Result {
	m.Calls = append(m.Calls, "platform")
	if m.PlatformFn != nil {
		return m.PlatformFn(ctx)
	}
	return model.OK(map[string]any{"version": "3.6.1"})
}

func (m *MockECEClient) GetAllocators(ctx context.Context) model.Result {
	m.Calls = append(m.Calls, "allocators")
	if m.AllocatorsFn != nil {
		return m.AllocatorsFn(ctx)
	}
	return model.OK(map[string]any{"zones": []any{}})
}

func (m *MockECEClient) GetDeployments(ctx context.Context) model.Result {
	m.Calls = append(m.Calls, "deployments")
	if m.DeploymentsFn != nil {
		return m.DeploymentsFn(ctx)
	}
	return model.OK(map[string]any{"deployments": []any{}})
}

func (m *MockECEClient) GetDeployment(ctx context.Context, id string) model.Result {
	m.Calls = append(m.Calls, "deployment:"+id)
	if m.DeploymentFn != nil {
		return m.DeploymentFn(ctx, id)
	}
	return model.OK(map[string]any{"id": id})
}

func (m *MockECEClient) GetClusterHealth(ctx context.Context, endpoint string) model.Result {
	m.Calls = append(m.Calls, "health:"+endpoint)
	if m.ClusterHealthFn != nil {
		return m.ClusterHealthFn(ctx, endpoint)
	}
	return model.OK(map[string]any{"status": "green"})
}

func (m *MockECEClient) GetClusterStats(ctx context.Context, endpoint string) model.Result {
	m.Calls = append(m.Calls, "stats:"+endpoint)
	if m.ClusterStatsFn != nil {
		return m.ClusterStatsFn(ctx, endpoint)
	}
	return model.OK(map[string]any{"indices": map[string]any{"count": json.Number("1")}})
}

func (m *MockECEClient) BaseURL() string {
	return "https://mock:12443"
}

// jsonBody decodes s the way the HTTP client does, keeping numbers as json.Number.
func jsonBody(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

// okJSON returns a successful Result decoded from s.
func okJSON(t *testing.T, s string) model.Result {
	t.Helper()
	return model.OK(jsonBody(t, s))
}

// readyDetails returns deployment details with one provisioned Elasticsearch
// resource advertising endpoint.
func readyDetails(t *testing.T, endpoint string) model.Result {
	t.Helper()
	return okJSON(t, `{"resources":{"elasticsearch":[{"info":{"cluster_id":"abc123","metadata":{"service_url":"`+endpoint+`"}}}]}}`)
}
