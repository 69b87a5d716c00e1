// Package snapshot turns the raw (path, count) rows returned by a fetch
// collaborator into a cleaned, insertion-ordered count mapping for one
// reporting window.
//
// Build parses each count string, drops rows the path filter rejects, and
// keeps the last count seen for a duplicate path. Rows with a count that does
// not parse are logged and skipped — a handful of bad rows should never sink
// a whole report. A Snapshot is immutable once built.
package snapshot
