package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dm/ecemon/internal/model"
)

// newTestClient creates a DefaultClient pointed at the given test server URL.
func newTestClient(t *testing.T, baseURL string) *DefaultClient {
	t.Helper()
	c, err := NewDefaultClient(ClientConfig{
		BaseURL:        baseURL,
		Credentials:    APIKeyCredential{Key: "test-key"},
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func jsonHandler(t *testing.T, wantPath, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wantPath {
			t.Errorf("unexpected path %q, want %q", r.URL.Path, wantPath)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestNewDefaultClient_Validation(t *testing.T) {
	_, err := NewDefaultClient(ClientConfig{Credentials: APIKeyCredential{Key: "k"}})
	assert.Error(t, err, "missing BaseURL")

	_, err = NewDefaultClient(ClientConfig{BaseURL: "https://ece.example.com"})
	assert.Error(t, err, "missing credentials")

	c, err := NewDefaultClient(ClientConfig{
		BaseURL:     "https://ece.example.com:12443/",
		Credentials: APIKeyCredential{Key: "k"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://ece.example.com:12443", c.BaseURL())
	assert.Equal(t, 30*time.Second, c.http.Timeout)
}

func TestGetPlatform(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/v1/platform",
		`{"version":"3.6.1","regions":[{"region_id":"ece-region"}]}`))
	defer srv.Close()

	res := newTestClient(t, srv.URL).GetPlatform(context.Background())
	require.False(t, res.Failed(), "unexpected error record: %v", res.Err)
	assert.Equal(t, "3.6.1", res.Value().Get("version").String(""))
	assert.Equal(t, 1, res.Value().Get("regions").Len())
}

func TestGetAllocators(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/v1/platform/infrastructure/allocators",
		`{"zones":[{"zone_id":"zone-1","allocators":[{"allocator_id":"a1"}]}]}`))
	defer srv.Close()

	res := newTestClient(t, srv.URL).GetAllocators(context.Background())
	require.False(t, res.Failed())
	zones := res.Value().Get("zones").List()
	require.Len(t, zones, 1)
	assert.Equal(t, "a1", zones[0].Get("allocators").List()[0].Get("allocator_id").String(""))
}

func TestGetDeployments(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/v1/deployments",
		`{"deployments":[{"id":"abc","name":"prod"}]}`))
	defer srv.Close()

	res := newTestClient(t, srv.URL).GetDeployments(context.Background())
	require.False(t, res.Failed())
	assert.Equal(t, "prod", res.Value().Get("deployments").List()[0].Get("name").String(""))
}

func TestGetDeployment_ShowMetadata(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"id":"abc","healthy":true}`))
	}))
	defer srv.Close()

	res := newTestClient(t, srv.URL).GetDeployment(context.Background(), "abc")
	require.False(t, res.Failed())
	assert.Equal(t, "/api/v1/deployments/abc", gotPath)
	assert.Equal(t, "show_metadata=true", gotQuery)
	assert.True(t, res.Value().Get("healthy").Bool())
}

func TestDeploymentURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		id   string
		want string
	}{
		{"plain", "https://ece:12443", "abc123", "https://ece:12443/api/v1/deployments/abc123?show_metadata=true"},
		{"trailing slash", "https://ece:12443/", "abc", "https://ece:12443/api/v1/deployments/abc?show_metadata=true"},
		{"escaped", "https://ece:12443", "a/b c", "https://ece:12443/api/v1/deployments/a%2Fb%20c?show_metadata=true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeploymentURL(tt.base, tt.id))
		})
	}
}

func TestGetClusterHealthAndStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/_cluster/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"yellow","relocating_shards":2,"number_of_nodes":3}`))
	})
	mux.HandleFunc("/_cluster/stats", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"indices":{"count":12}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, "https://control-plane.invalid")
	health := c.GetClusterHealth(context.Background(), srv.URL+"/")
	require.False(t, health.Failed(), "unexpected error record: %v", health.Err)
	assert.Equal(t, "yellow", health.Value().Get("status").String(""))
	assert.Equal(t, int64(2), health.Value().Get("relocating_shards").Int())

	stats := c.GetClusterStats(context.Background(), srv.URL)
	require.False(t, stats.Failed())
	assert.Equal(t, int64(12), stats.Value().Get("indices", "count").Int())
}

func TestNumbersKeepPrecision(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/v1/platform", `{"big":9007199254740993,"ratio":0.5}`))
	defer srv.Close()

	res := newTestClient(t, srv.URL).GetPlatform(context.Background())
	require.False(t, res.Failed())
	body := res.Body.(map[string]any)
	assert.Equal(t, json.Number("9007199254740993"), body["big"])
	assert.Equal(t, json.Number("0.5"), body["ratio"])
}

func TestAPIKeyHeader(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	res := newTestClient(t, srv.URL).GetPlatform(context.Background())
	require.False(t, res.Failed())
	assert.Equal(t, "ApiKey test-key", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewDefaultClient(ClientConfig{
		BaseURL:     srv.URL,
		Credentials: BasicCredential{Username: "admin", Password: "secret"},
	})
	require.NoError(t, err)

	res := c.GetPlatform(context.Background())
	require.False(t, res.Failed())
	require.True(t, gotOK, "expected basic auth header")
	assert.Equal(t, "admin", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestCredentialKinds(t *testing.T) {
	assert.Equal(t, "apikey", APIKeyCredential{Key: "x"}.Kind())
	assert.Equal(t, "basic", BasicCredential{Username: "u"}.Kind())
}

func TestRunIDHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Opaque-Id")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewDefaultClient(ClientConfig{
		BaseURL:     srv.URL,
		Credentials: APIKeyCredential{Key: "k"},
		RunID:       "run-1234",
	})
	require.NoError(t, err)
	c.GetPlatform(context.Background())
	assert.Equal(t, "run-1234", got)
}

func TestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"code":"root.unauthenticated"}]}`))
	}))
	defer srv.Close()

	res := newTestClient(t, srv.URL).GetPlatform(context.Background())
	require.True(t, res.Failed())
	assert.Equal(t, model.KindHTTPError, res.Err.Kind)
	assert.Equal(t, http.StatusUnauthorized, res.Err.StatusCode)
	assert.Contains(t, res.Err.Details, "root.unauthenticated")
	assert.False(t, res.Value().Present(), "error records navigate as absent")
}

func TestRequestException_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := newTestClient(t, url).GetPlatform(context.Background())
	require.True(t, res.Failed())
	assert.Equal(t, model.KindRequestException, res.Err.Kind)
	assert.Zero(t, res.Err.StatusCode)
	assert.NotEmpty(t, res.Err.Details)
}

func TestInvalidJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"truncated", `{"broken":`},
		{"trailing data", `{"a":1} {"b":2}`},
		{"html", `<html>maintenance</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := newTestClient(t, srv.URL).GetPlatform(context.Background())
			require.True(t, res.Failed())
			assert.Equal(t, model.KindRequestException, res.Err.Kind)
			assert.True(t, strings.HasPrefix(res.Err.Details, "decode response:"), res.Err.Details)
		})
	}
}

func TestContextCancellation(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan model.Result, 1)
	go func() {
		done <- c.GetPlatform(ctx)
	}()

	<-started
	cancel()

	select {
	case res := <-done:
		require.True(t, res.Failed())
		assert.Equal(t, model.KindRequestException, res.Err.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for cancelled request to return")
	}
}

func TestTLSSkipVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"version":"3.6.1"}`))
	}))
	defer srv.Close()

	strict, err := NewDefaultClient(ClientConfig{
		BaseURL:        srv.URL,
		Credentials:    APIKeyCredential{Key: "k"},
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	res := strict.GetPlatform(context.Background())
	require.True(t, res.Failed(), "expected certificate error without InsecureSkipVerify")
	assert.Equal(t, model.KindRequestException, res.Err.Kind)

	insecure, err := NewDefaultClient(ClientConfig{
		BaseURL:            srv.URL,
		Credentials:        APIKeyCredential{Key: "k"},
		RequestTimeout:     5 * time.Second,
		InsecureSkipVerify: true,
	})
	require.NoError(t, err)
	res = insecure.GetPlatform(context.Background())
	require.False(t, res.Failed(), "unexpected error record: %v", res.Err)
	assert.Equal(t, "3.6.1", res.Value().Get("version").String(""))
}

func TestOnResultObservesEveryFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/deployments" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var failed, ok int
	c, err := NewDefaultClient(ClientConfig{
		BaseURL:     srv.URL,
		Credentials: APIKeyCredential{Key: "k"},
		OnResult: func(r model.Result) {
			if r.Failed() {
				failed++
			} else {
				ok++
			}
		},
	})
	require.NoError(t, err)

	c.GetPlatform(context.Background())
	c.GetAllocators(context.Background())
	c.GetDeployments(context.Background())
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
}

func TestFailedFetchIsLoggedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	core, logs := observer.New(zap.DebugLevel)
	c, err := NewDefaultClient(ClientConfig{
		BaseURL:     srv.URL,
		Credentials: APIKeyCredential{Key: "k"},
		Logger:      zap.New(core),
	})
	require.NoError(t, err)

	c.GetPlatform(context.Background())
	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "HTTPError", fields["kind"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status_code"])
	assert.Len(t, fields["details"], 203)
}

func TestRequestsArePaced(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewDefaultClient(ClientConfig{
		BaseURL:           srv.URL,
		Credentials:       APIKeyCredential{Key: "k"},
		RequestsPerSecond: 20,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		c.GetPlatform(context.Background())
	}
	require.Len(t, stamps, 3)
	// burst of one: the third request waits at least two intervals after the first
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[0]), 90*time.Millisecond)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate([]byte("short"), 10))
	assert.Equal(t, "abc...", truncate([]byte("abcdef"), 3))
}
