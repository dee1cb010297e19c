package model

import (
	"encoding/json"
	"fmt"
)

// Report holds the raw results of one collection run.
type Report struct {
	PlatformInfo Result        `json:"platform_info"`
	Allocators   Result        `json:"allocators"`
	Deployments  []*Deployment `json:"deployments_details"`
}

// NewReport returns an empty Report whose deployment list encodes as [] rather than null.
func NewReport() *Report {
	return &Report{Deployments: []*Deployment{}}
}

// MarshalYAML mirrors the JSON layout.
func (r *Report) MarshalYAML() (any, error) {
	return map[string]any{
		"platform_info":       r.PlatformInfo,
		"allocators":          r.Allocators,
		"deployments_details": r.Deployments,
	}, nil
}

const (
	keyID      = "id"
	keyName    = "name"
	keyDetails = "details"
	keyHealth  = "elasticsearch_cluster_health"
	keyStats   = "elasticsearch_cluster_stats"
)

// Deployment is one entry of deployments_details: the stub returned by the
// deployment list, plus what was fetched for it.
type Deployment struct {
	ID   string
	Name string
	// Stub holds the list entry as returned, id and name included, and is
	// written back verbatim. ID and Name are its display view.
	Stub map[string]any

	Details Result
	// ClusterHealth and ClusterStats are nil when no Elasticsearch endpoint was located.
	ClusterHealth *Result
	ClusterStats  *Result
}

// NewDeployment builds a Deployment from a deployment-list entry.
func NewDeployment(stub Value) *Deployment {
	d := &Deployment{
		ID:   stub.Get(keyID).String(""),
		Name: stub.Get(keyName).String(""),
	}
	if obj, ok := stub.Raw().(map[string]any); ok {
		for k, v := range obj {
			if d.Stub == nil {
				d.Stub = make(map[string]any)
			}
			d.Stub[k] = v
		}
	}
	return d
}

// DisplayName returns the deployment name, falling back to its id.
func (d *Deployment) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

func (d *Deployment) fields() map[string]any {
	m := make(map[string]any, len(d.Stub)+5)
	for k, v := range d.Stub {
		m[k] = v
	}
	if _, ok := m[keyID]; !ok {
		m[keyID] = d.ID
	}
	if _, ok := m[keyName]; !ok && d.Name != "" {
		m[keyName] = d.Name
	}
	m[keyDetails] = d.Details
	if d.ClusterHealth != nil {
		m[keyHealth] = *d.ClusterHealth
	}
	if d.ClusterStats != nil {
		m[keyStats] = *d.ClusterStats
	}
	return m
}

// MarshalJSON flattens the stub fields and fetched results into one object.
func (d *Deployment) MarshalJSON() ([]byte, error) {
	return marshalJSON(d.fields())
}

// MarshalYAML flattens like MarshalJSON.
func (d *Deployment) MarshalYAML() (any, error) {
	m := d.fields()
	for k, v := range m {
		if _, ok := d.Stub[k]; !ok {
			continue
		}
		m[k] = plain(v)
	}
	return m, nil
}

// UnmarshalJSON restores a Deployment written by MarshalJSON.
func (d *Deployment) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode deployment: %w", err)
	}
	out := Deployment{}
	for k, raw := range fields {
		switch k {
		case keyDetails:
			if err := json.Unmarshal(raw, &out.Details); err != nil {
				return fmt.Errorf("decode deployment details: %w", err)
			}
		case keyHealth:
			var r Result
			if err := json.Unmarshal(raw, &r); err != nil {
				return fmt.Errorf("decode cluster health: %w", err)
			}
			out.ClusterHealth = &r
		case keyStats:
			var r Result
			if err := json.Unmarshal(raw, &r); err != nil {
				return fmt.Errorf("decode cluster stats: %w", err)
			}
			out.ClusterStats = &r
		default:
			v, err := decodeJSON(raw)
			if err != nil {
				return fmt.Errorf("decode deployment field %q: %w", k, err)
			}
			if out.Stub == nil {
				out.Stub = make(map[string]any)
			}
			out.Stub[k] = v
		}
	}
	out.ID = V(out.Stub[keyID]).String("")
	out.Name = V(out.Stub[keyName]).String("")
	*d = out
	return nil
}
