// Package report renders a trend.Report as a human-readable console report:
// a short header, then four ranked tables — biggest losers and winners by
// absolute delta, then by share-of-current-traffic percent.
//
// This is purely an output boundary. Nothing here computes; it only formats
// what the trend package already derived.
package report
