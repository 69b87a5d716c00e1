package snapshot

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/pagetrend/pagetrend/internal/pathfilter"
)

// Row is one raw (path, count) pair as delivered by a fetch collaborator.
// Count stays a string until Build parses it — analytics APIs report metric
// values as strings on the wire.
type Row struct {
	Path  string
	Count string
}

// Snapshot is a mapping from page path to view count for one reporting
// window. Iteration order is insertion order, so downstream ranking has a
// deterministic tie-break. Snapshots are immutable after Build.
type Snapshot struct {
	order  []string
	counts map[string]int
}

// Build constructs a Snapshot from raw rows.
//
// Per row: the count is parsed as a non-negative integer (rows that fail to
// parse are logged and skipped), then the path filter decides whether the
// path is kept at all. A duplicate path overwrites the earlier count but
// keeps its original position — last write wins, explicitly.
func Build(rows []Row, rules pathfilter.Rules) *Snapshot {
	s := &Snapshot{counts: make(map[string]int, len(rows))}
	for _, row := range rows {
		n, err := strconv.Atoi(strings.TrimSpace(row.Count))
		if err != nil {
			slog.Warn("snapshot: skipping row with non-numeric count",
				"path", row.Path, "count", row.Count)
			continue
		}
		if n < 0 {
			slog.Warn("snapshot: skipping row with negative count",
				"path", row.Path, "count", n)
			continue
		}
		if !rules.Valid(row.Path) {
			continue
		}
		s.set(row.Path, n)
	}
	return s
}

// Count returns the view count for path and whether the path is present.
func (s *Snapshot) Count(path string) (int, bool) {
	n, ok := s.counts[path]
	return n, ok
}

// Paths returns the snapshot's paths in insertion order.
// The returned slice is a copy; callers may reorder it freely.
func (s *Snapshot) Paths() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of paths in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.counts)
}

func (s *Snapshot) set(path string, n int) {
	if _, ok := s.counts[path]; !ok {
		s.order = append(s.order, path)
	}
	s.counts[path] = n
}
