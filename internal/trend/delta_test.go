package trend

import (
	"math"
	"testing"

	"github.com/pagetrend/pagetrend/internal/pathfilter"
	"github.com/pagetrend/pagetrend/internal/snapshot"
)

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// buildSnap is a shorthand for building a snapshot from (path, count) pairs
// with the default filter rules.
func buildSnap(t *testing.T, pairs ...[2]string) *snapshot.Snapshot {
	t.Helper()
	rows := make([]snapshot.Row, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, snapshot.Row{Path: p[0], Count: p[1]})
	}
	return snapshot.Build(rows, pathfilter.Default())
}

func TestCompute_ReferenceScenario(t *testing.T) {
	recent := buildSnap(t,
		[2]string{"/a-long-enough-path-1", "100"},
		[2]string{"/a-long-enough-path-2", "50"},
		[2]string{"short", "5"},
	)
	prior := buildSnap(t,
		[2]string{"/a-long-enough-path-1", "80"},
		[2]string{"/a-long-enough-path-2", "60"},
	)

	records := Compute(recent, prior)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (short path filtered before comparison)", len(records))
	}

	r1 := records[0]
	if r1.Path != "/a-long-enough-path-1" || r1.Abs != 20 {
		t.Errorf("records[0] = %+v, want path-1 with delta 20", r1)
	}
	if !almostEqual(r1.Pct, 0.20, 1e-9) {
		t.Errorf("records[0].Pct = %v, want 0.20", r1.Pct)
	}

	r2 := records[1]
	if r2.Abs != -10 {
		t.Errorf("records[1].Abs = %d, want -10", r2.Abs)
	}
	if !almostEqual(r2.Pct, -0.20, 1e-9) {
		t.Errorf("records[1].Pct = %v, want -0.20", r2.Pct)
	}
}

func TestCompute_IntersectionOnly(t *testing.T) {
	recent := buildSnap(t,
		[2]string{"/a-long-enough-path-1", "10"},
		[2]string{"/a-new-long-enough-path", "99"}, // not in prior
	)
	prior := buildSnap(t,
		[2]string{"/a-long-enough-path-1", "5"},
		[2]string{"/a-gone-long-enough-path", "42"}, // not in recent
	)

	records := Compute(recent, prior)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Path != "/a-long-enough-path-1" {
		t.Errorf("records[0].Path = %q", records[0].Path)
	}
	// Vanished paths are never reported — a known asymmetry, not a bug.
	for _, r := range records {
		if r.Path == "/a-gone-long-enough-path" {
			t.Error("vanished path must not produce a record")
		}
	}
}

func TestCompute_DeltaArithmetic(t *testing.T) {
	recent := buildSnap(t,
		[2]string{"/a-long-enough-path-1", "7"},
		[2]string{"/a-long-enough-path-2", "1000"},
		[2]string{"/a-long-enough-path-3", "10"},
	)
	prior := buildSnap(t,
		[2]string{"/a-long-enough-path-1", "7"},
		[2]string{"/a-long-enough-path-2", "1"},
		[2]string{"/a-long-enough-path-3", "20"},
	)

	for _, r := range Compute(recent, prior) {
		if r.Abs != r.Recent-r.Prior {
			t.Errorf("%s: Abs = %d, want %d", r.Path, r.Abs, r.Recent-r.Prior)
		}
		if r.Recent-r.Abs != r.Prior {
			t.Errorf("%s: Recent - Abs = %d, does not round-trip to Prior %d",
				r.Path, r.Recent-r.Abs, r.Prior)
		}
		if r.Recent != 0 && !almostEqual(r.Pct, float64(r.Abs)/float64(r.Recent), 1e-12) {
			t.Errorf("%s: Pct = %v, want Abs/Recent", r.Path, r.Pct)
		}
	}

	// The halving case: 20 → 10 loses 100% of current traffic.
	records := Compute(recent, prior)
	if got := records[2].Pct; !almostEqual(got, -1.0, 1e-9) {
		t.Errorf("halved path Pct = %v, want -1.0 (denominator is the recent count)", got)
	}
}

func TestCompute_ZeroRecentCount(t *testing.T) {
	recent := buildSnap(t, [2]string{"/a-long-enough-path-1", "0"})
	prior := buildSnap(t, [2]string{"/a-long-enough-path-1", "50"})

	records := Compute(recent, prior)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1 (zero count is valid input)", len(records))
	}
	if records[0].Abs != -50 {
		t.Errorf("Abs = %d, want -50", records[0].Abs)
	}
	// Policy: no current traffic means no current share to attribute.
	if records[0].Pct != 0 {
		t.Errorf("Pct = %v, want 0 for zero recent count", records[0].Pct)
	}
}

func TestCompute_EmptySnapshots(t *testing.T) {
	empty := buildSnap(t)
	full := buildSnap(t, [2]string{"/a-long-enough-path-1", "10"})

	if got := Compute(empty, full); len(got) != 0 {
		t.Errorf("Compute(empty, full) = %d records, want 0", len(got))
	}
	if got := Compute(full, empty); len(got) != 0 {
		t.Errorf("Compute(full, empty) = %d records, want 0", len(got))
	}
}
