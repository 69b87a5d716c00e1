// Package store holds the latest trend report per source in memory for serve
// mode. Reports are evicted after a TTL so the API never serves stale data
// from a source whose refreshes have stopped. Nothing is persisted; the store
// dies with the process.
package store
