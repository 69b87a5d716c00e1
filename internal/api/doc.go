// Package api exposes serve mode's REST surface.
//
// Routes (all GET, all JSON):
//
//	/api/v1/health        — report counts and freshness summary
//	/api/v1/reports       — latest report per source
//	/api/v1/reports/{id}  — one source's latest report
//	/api/v1/alerts        — firing and recently resolved alerts
//
// BuildFeed assembles the same reports payload the WebSocket hub broadcasts,
// so HTTP pollers and socket subscribers see identical data.
//
// APIKeyMiddleware optionally guards every route with a shared-key header
// check; the key is resolved from the environment, never stored in config.
package api
