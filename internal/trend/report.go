package trend

import (
	"fmt"
	"time"

	"github.com/pagetrend/pagetrend/internal/fetch"
	"github.com/pagetrend/pagetrend/internal/pathfilter"
	"github.com/pagetrend/pagetrend/internal/snapshot"
)

// DefaultTopN is the ranked list size used when Options leaves TopN unset.
const DefaultTopN = 25

// filterNoteThreshold triggers an advisory note when more than this share of
// the recent window's rows were filtered out.
const filterNoteThreshold = 0.5

// Options control report assembly.
type Options struct {
	// TopN is the size of each winner/loser list. Zero means DefaultTopN.
	TopN int

	// Rules is the path noise policy applied while building snapshots.
	Rules pathfilter.Rules
}

// Report is the fully-derived trend report for one source, ready for the
// console renderer, the REST API, and the alert engine. Reports are built
// fresh per run and never mutated afterwards.
type Report struct {
	SourceID    string
	GeneratedAt time.Time

	RecentWindow fetch.Window
	PriorWindow  fetch.Window

	// RecentRows and PriorRows count the raw rows fetched per window;
	// RecentKept and PriorKept count the rows that survived parsing and the
	// path filter.
	RecentRows int
	PriorRows  int
	RecentKept int
	PriorKept  int

	// Records holds every comparable path, in recent-snapshot order.
	Records []Record

	// The four ranked views, each at most TopN long.
	TopAbsolute    []Record
	BottomAbsolute []Record
	TopPercent     []Record
	BottomPercent  []Record

	// Notes carries advisory observations about this run, such as a high
	// filter-drop ratio. Informational only.
	Notes []string
}

// BuildReport runs the full pipeline for one source: build both snapshots,
// compute deltas, rank winners and losers both ways.
func BuildReport(sourceID string, recentWin, priorWin fetch.Window,
	recentRows, priorRows []snapshot.Row, opts Options, now time.Time) *Report {

	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	recent := snapshot.Build(recentRows, opts.Rules)
	prior := snapshot.Build(priorRows, opts.Rules)
	records := Compute(recent, prior)

	r := &Report{
		SourceID:     sourceID,
		GeneratedAt:  now,
		RecentWindow: recentWin,
		PriorWindow:  priorWin,
		RecentRows:   len(recentRows),
		PriorRows:    len(priorRows),
		RecentKept:   recent.Len(),
		PriorKept:    prior.Len(),
		Records:      records,

		TopAbsolute:    TopN(records, ByAbsolute, topN),
		BottomAbsolute: BottomN(records, ByAbsolute, topN),
		TopPercent:     TopN(records, ByPercent, topN),
		BottomPercent:  BottomN(records, ByPercent, topN),
	}
	r.Notes = buildNotes(r, topN)
	return r
}

// buildNotes flags run conditions worth a second look.
func buildNotes(r *Report, topN int) []string {
	var notes []string

	if r.RecentRows > 0 {
		dropped := r.RecentRows - r.RecentKept
		if ratio := float64(dropped) / float64(r.RecentRows); ratio > filterNoteThreshold {
			notes = append(notes, fmt.Sprintf(
				"%d of %d recent rows were filtered out; check the filter rules if that seems high",
				dropped, r.RecentRows))
		}
	}
	if len(r.Records) == 0 {
		notes = append(notes, "no paths present in both windows; nothing to rank")
	} else if len(r.Records) < topN {
		notes = append(notes, fmt.Sprintf(
			"only %d comparable paths for top-%d lists; lists are shorter than requested",
			len(r.Records), topN))
	}
	return notes
}
