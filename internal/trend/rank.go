package trend

import "sort"

// Key selects which delta a ranking sorts by.
type Key int

const (
	// ByAbsolute ranks by the raw count delta.
	ByAbsolute Key = iota

	// ByPercent ranks by the share-of-current-traffic delta.
	ByPercent
)

// Order is the sort direction of a ranking.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Rank returns records sorted by key in the given order. The sort is stable:
// records with equal keys keep their input order. The input slice is never
// modified.
func Rank(records []Record, key Key, order Order) []Record {
	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		switch {
		case key == ByPercent && order == Descending:
			return out[i].Pct > out[j].Pct
		case key == ByPercent:
			return out[i].Pct < out[j].Pct
		case order == Descending:
			return out[i].Abs > out[j].Abs
		default:
			return out[i].Abs < out[j].Abs
		}
	})
	return out
}

// TopN returns the n biggest winners by key. Fewer than n records means all
// of them come back, no padding, no error.
func TopN(records []Record, key Key, n int) []Record {
	return clampN(Rank(records, key, Descending), n)
}

// BottomN returns the n biggest losers by key.
func BottomN(records []Record, key Key, n int) []Record {
	return clampN(Rank(records, key, Ascending), n)
}

func clampN(records []Record, n int) []Record {
	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}
	return records[:n]
}
