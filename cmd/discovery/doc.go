// Package main hosts the discovery service entrypoint.
//
// Architecture overview:
//   - Adapters: internal/source holds one package per provider (Adzuna, Jooble, VolunteerConnector,
//     Challenge.gov, the GitHub internship list, RemoteOK, NSF REU). Each maps its payload onto
//     opportunity.Opportunity through a shared rate-limited, retrying HTTP client. Catalog fallbacks are
//     opt-in per provider and tag what they serve.
//   - Aggregation: internal/aggregate fans a pass out over the registry with a per-source timeout,
//     upserts by (source, external id), archives a JSON snapshot and publishes a completion event.
//     Job search uses an ordered fallback chain, optionally cached in Redis.
//   - Persistence: memory or Postgres (pgx) stores; snapshots go to memory, a local directory or GCS;
//     events go to memory or Pub/Sub.
//   - HTTP API: internal/api serves queries, live discovery, job search, saved items and pass control
//     behind chi middleware with Prometheus metrics.
//
// Operational notes:
//   - Scheduling: internal/scheduler runs passes on a cron interval and once at startup when the
//     store is empty. Overlapping passes are skipped, never queued.
//   - Shutdown: SIGINT/SIGTERM drains the HTTP server, stops the scheduler and waits for a running
//     pass before services close.
//
// Quick checklist:
//   - Configure env vars with the DISCOVERY_ prefix (DISCOVERY_SERVER_PORT,
//     DISCOVERY_PROVIDERS_ADZUNA_APP_ID, DISCOVERY_STORAGE_DSN, ...) or a YAML file via --config.
//   - Run locally: go run ./cmd/discovery serve --config config.yaml
//   - One-off pass: go run ./cmd/discovery aggregate
package main
