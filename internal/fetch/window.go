package fetch

import (
	"fmt"
	"time"
)

// dateLayout is the on-the-wire date format for window boundaries.
const dateLayout = "2006-01-02"

// Window is a half-open [Start, End) reporting interval. Window boundaries
// travel to the backend as explicit values; how counts are aggregated inside
// the window is the backend's business.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastDays returns the window covering the days days ending at now.
func LastDays(days int, now time.Time) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// Previous returns the window of equal length immediately before w.
func (w Window) Previous() Window {
	d := w.End.Sub(w.Start)
	return Window{Start: w.Start.Add(-d), End: w.Start}
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// String renders the window as a date range for logs and reports.
func (w Window) String() string {
	return fmt.Sprintf("%s .. %s", w.Start.Format(dateLayout), w.End.Format(dateLayout))
}
