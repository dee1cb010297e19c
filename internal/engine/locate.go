package engine

import "github.com/dm/ecemon/internal/model"

// placeholderClusterID marks an Elasticsearch resource that is not provisioned yet.
const placeholderClusterID = "cluster_id"

// endpointStatus explains the outcome of locating an Elasticsearch endpoint.
type endpointStatus int

const (
	endpointFound endpointStatus = iota
	// endpointNotReady means no resource carries a usable cluster id.
	endpointNotReady
	// endpointNoURL means the resource is ready but advertises no service URL.
	endpointNoURL
)

// locateElasticsearch finds the service endpoint of the first Elasticsearch
// resource in a deployment's details that reports a cluster id.
func locateElasticsearch(details model.Value) (string, endpointStatus) {
	var resource model.Value
	for _, r := range details.Get("resources", "elasticsearch").List() {
		if r.Get("info").Has("cluster_id") {
			resource = r
			break
		}
	}
	if !resource.Present() {
		return "", endpointNotReady
	}

	info := resource.Get("info")
	id := info.Get("cluster_id").String("")
	if id == "" || id == placeholderClusterID {
		return "", endpointNotReady
	}

	if u := info.Get("metadata", "service_url").String(""); u != "" {
		return u, endpointFound
	}
	if u := info.Get("links", "https").String(""); u != "" {
		return u, endpointFound
	}
	return "", endpointNoURL
}
