// Package httputil provides the HTTP plumbing shared by the catalog client
// and the image loader.
//
// # Overview
//
//   - [NewHTTPClient] and [Fetch]: GET requests with default headers, status
//     classification and observability hooks
//   - [CacheBust]: appends a "_t=<unix ms>" token so image hosts and proxies
//     never answer with a stale object
//   - [Cache]: file-based JSON snapshots with TTL, guarded by a file lock so
//     concurrent decksmith processes can share one cache directory
//
// # Status classification
//
// [Fetch] maps responses onto sentinel errors:
//
//   - 404 wraps [ErrNotFound]
//   - 429 wraps [ErrRateLimited]
//   - other non-2xx statuses and transport failures wrap [ErrNetwork]
//
// Callers test them with errors.Is. There is no retry: a failed request is
// reported to the caller, which records it and moves on.
package httputil
