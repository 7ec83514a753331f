// Package api serves the cell-map pipeline over HTTP.
//
// # Routes
//
//	POST /v1/layouts      config document → layout result (JSON)
//	POST /v1/layouts/svg  config document → cell map or tree (SVG)
//	GET  /healthz         build information
//	GET  /metrics         Prometheus metrics
//
// The request body is a config document in JSON, YAML or TOML, selected by
// the Content-Type header (JSON when absent). Query parameters mirror the CLI
// flags:
//
//	sites=S1,S2  seed=7  reject_duplicates=true  refresh=true
//	kind=tree  legend=true  columns=3  hide_fake=true  chains=true  title=...
//
// # Errors
//
// Failures are returned as {"code": "...", "message": "..."} with a status
// derived from the error code: INVALID_* codes map to 400, tree and
// prevalence errors to 422, NOT_FOUND to 404 and everything else to 500.
// Per-site layout failures do not fail the request; they are listed in the
// result's site_errors.
package api
