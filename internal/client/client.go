package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dm/ecemon/internal/model"
)

// ECEClient defines the calls the collector makes against the control plane
// and the Elasticsearch endpoints it discovers.
type ECEClient interface {
	GetPlatform(ctx context.Context) model.Result
	GetAllocators(ctx context.Context) model.Result
	GetDeployments(ctx context.Context) model.Result
	GetDeployment(ctx context.Context, id string) model.Result
	GetClusterHealth(ctx context.Context, endpoint string) model.Result
	GetClusterStats(ctx context.Context, endpoint string) model.Result
	BaseURL() string
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	BaseURL            string
	Credentials        Credentials
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
	// RequestsPerSecond paces outgoing requests; 0 means unpaced.
	RequestsPerSecond float64
	// RunID is sent as X-Opaque-Id on every request.
	RunID  string
	Logger *zap.Logger
	// OnResult, if set, is called with the outcome of every fetch.
	OnResult func(model.Result)
}

// DefaultClient implements ECEClient using the standard net/http package.
type DefaultClient struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
	config  ClientConfig
}

const maxResponseBytes = 32 * 1024 * 1024

// NewDefaultClient constructs a DefaultClient from the given config.
// Returns an error if BaseURL or Credentials are missing.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("credentials are required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DefaultClient{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		config:  cfg,
	}, nil
}

// BaseURL returns the configured control-plane URL without a trailing slash.
func (c *DefaultClient) BaseURL() string {
	return c.config.BaseURL
}

// Close releases idle connections held by the transport.
func (c *DefaultClient) Close() {
	c.http.CloseIdleConnections()
}

// Fetch performs an authenticated GET of url and decodes the JSON body.
// It never returns a Go error: failures come back as an error record and are
// logged once.
func (c *DefaultClient) Fetch(ctx context.Context, url string) model.Result {
	res := c.doGet(ctx, url)
	if res.Err != nil {
		c.logger.Error("request failed",
			zap.String("url", url),
			zap.String("kind", string(res.Err.Kind)),
			zap.Int("status_code", res.Err.StatusCode),
			zap.String("details", truncate([]byte(res.Err.Details), 200)),
		)
	} else {
		c.logger.Debug("request succeeded", zap.String("url", url))
	}
	if c.config.OnResult != nil {
		c.config.OnResult(res)
	}
	return res
}

func (c *DefaultClient) doGet(ctx context.Context, url string) model.Result {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.Failed(model.KindRequestException, 0, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Failed(model.KindRequestException, 0, fmt.Sprintf("create request: %v", err))
	}

	req.Header.Set("Accept", "application/json")
	if c.config.RunID != "" {
		req.Header.Set("X-Opaque-Id", c.config.RunID)
	}
	c.config.Credentials.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Failed(model.KindRequestException, 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return model.Failed(model.KindRequestException, 0, fmt.Sprintf("read body: %v", err))
	}
	if len(body) > maxResponseBytes {
		return model.Failed(model.KindRequestException, 0,
			fmt.Sprintf("response body exceeds %d MB limit", maxResponseBytes/(1024*1024)))
	}

	if resp.StatusCode >= 400 {
		return model.Failed(model.KindHTTPError, resp.StatusCode, string(body))
	}

	v, err := decode(body)
	if err != nil {
		return model.Failed(model.KindRequestException, 0, fmt.Sprintf("decode response: %v", err))
	}
	return model.OK(v)
}

// decode parses a single JSON document, keeping numbers as json.Number.
func decode(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON document")
	}
	return v, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
