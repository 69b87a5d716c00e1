// Package fetch pulls raw (path, count) rows from an analytics backend for
// one reporting window. It is a thin I/O boundary: all trend logic lives
// downstream in the snapshot and trend packages.
//
// Three backends are supported, selected by config.Source.Type:
//
//   - json: a GET endpoint taking start/end date parameters and returning
//     {"rows": [["/path", "123"], ...]} — both fields strings on the wire.
//   - prometheus: an instant query against a Prometheus HTTP API, summing
//     increase() of a counter over the window, grouped by the path label.
//   - openmetrics: a text exposition endpoint parsed with expfmt; one row
//     per series of the configured metric family.
//
// Authentication (mTLS, API key, bearer token, basic) is handled by the
// shared authRoundTripper in fetch.go; individual fetchers receive a
// pre-configured *http.Client from New().
package fetch
