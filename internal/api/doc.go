// Package api hosts the HTTP server, middleware, and REST handlers.
// Notable routes:
//   - GET /healthz / readyz for Kubernetes health checks.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/opportunities for stored records, /v1/opportunities/discover
//     for a live fan-out and /v1/jobs/search for the fallback chain.
//   - POST /v1/aggregations to start a pass now.
//   - /v1/users/{user_id}/saved for bookmarks.
package api
