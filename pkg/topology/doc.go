// Package topology retrieves scene graphs and VM documents.
//
// [Client] talks to the topology service over HTTP:
//
//	POST /api/v1/visualization/scene-graph   scene graph for a request
//	POST /api/v1/dat/generate/vm             VM architecture document
//	GET  /api/v1/status                      collector status
//	POST /api/v1/vsphere/refresh             trigger a new collection
//
// [FileSource] serves scene graphs from local JSON or YAML files for offline
// rendering and tests. Both satisfy diagram.Fetcher.
//
// Errors carry pkg/errors codes: NETWORK_ERROR and TIMEOUT for transport
// failures, NOT_FOUND when the service does not know the start object,
// UPSTREAM_ERROR for other non-2xx answers, and MALFORMED_PAYLOAD when a
// 2xx body cannot be decoded. Scene-graph fetches are never retried;
// document generation retries transient failures with backoff and is cached.
package topology
