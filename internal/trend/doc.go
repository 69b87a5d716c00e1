// Package trend is the heart of pagetrend: it compares two count snapshots,
// derives per-path deltas, ranks them, and assembles the final Report.
//
// The percent delta divides by the recent count, not the prior one, so it
// reads as "share of current traffic gained or lost". This is deliberately
// asymmetric — a page doubling from 10 to 20 shows +50%, one halving from 20
// to 10 shows -100% — and is kept that way on purpose; see Record.Pct.
//
// Only paths present in both snapshots are compared. New paths have nothing
// to compare against and vanished paths are never visited; neither is an
// error.
package trend
