// Package httputil holds the HTTP plumbing shared by the topology client
// and the API server.
//
//   - [Retry]: bounded retries with exponential backoff for errors wrapped in
//     [RetryableError]
//   - [WriteJSON], [WriteError]: JSON responses with a coded error envelope
//   - [DecodeJSON]: size-limited, strict request body decoding
//
// Only the detail document call retries. A scene-graph fetch that fails is
// reported once and the user reissues it.
package httputil
