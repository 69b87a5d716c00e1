package trend

import (
	"log/slog"

	"github.com/pagetrend/pagetrend/internal/snapshot"
)

// Record is the per-path outcome of comparing two snapshots.
type Record struct {
	// Path is the page path under comparison.
	Path string

	// Recent and Prior are the view counts in each window.
	Recent int
	Prior  int

	// Abs is Recent - Prior, exact integer arithmetic.
	Abs int

	// Pct is Abs / Recent: the share of current traffic gained or lost.
	// Not a classic percent-change — the denominator is the recent count.
	// When Recent is zero there is no current share to attribute, so Pct
	// is zero.
	Pct float64
}

// Compute derives one Record per path present in both snapshots, in the
// recent snapshot's insertion order.
//
// Paths only in recent (new pages) and paths only in prior (vanished pages)
// produce no record and no error. A path listed by recent but missing from
// its own count map would be an internal inconsistency; that record is
// logged and dropped rather than aborting the run.
func Compute(recent, prior *snapshot.Snapshot) []Record {
	records := make([]Record, 0, recent.Len())
	for _, path := range recent.Paths() {
		rc, ok := recent.Count(path)
		if !ok {
			slog.Error("trend: path listed but absent from recent snapshot", "path", path)
			continue
		}
		pc, ok := prior.Count(path)
		if !ok {
			continue
		}

		rec := Record{Path: path, Recent: rc, Prior: pc, Abs: rc - pc}
		if rc != 0 {
			rec.Pct = float64(rec.Abs) / float64(rc)
		}
		records = append(records, rec)
	}
	return records
}
