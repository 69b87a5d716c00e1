package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pagetrend/pagetrend/internal/trend"
)

// Render writes the full console report for r to w.
func Render(w io.Writer, r *trend.Report) {
	fmt.Fprintf(w, "Trend report: %s\n", r.SourceID)
	fmt.Fprintf(w, "  recent window  %s\n", r.RecentWindow)
	fmt.Fprintf(w, "  prior window   %s\n", r.PriorWindow)
	fmt.Fprintf(w, "  generated      %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  comparable paths: %d (recent rows kept %d/%d, prior %d/%d)\n",
		len(r.Records), r.RecentKept, r.RecentRows, r.PriorKept, r.PriorRows)

	if len(r.Records) == 0 {
		fmt.Fprintln(w, "\nNo paths present in both windows — nothing to report.")
		printNotes(w, r.Notes)
		return
	}

	renderAbsolute(w, "Biggest losers (absolute)", r.BottomAbsolute)
	renderAbsolute(w, "Biggest winners (absolute)", r.TopAbsolute)
	renderPercent(w, "Biggest losers (share of current traffic)", r.BottomPercent)
	renderPercent(w, "Biggest winners (share of current traffic)", r.TopPercent)

	printNotes(w, r.Notes)
}

// renderAbsolute prints one delta,count,path table.
func renderAbsolute(w io.Writer, title string, records []trend.Record) {
	fmt.Fprintf(w, "\n%s\n", title)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"DELTA", "RECENT", "PRIOR", "PATH"})
	for _, rec := range records {
		tbl.AppendRow(table.Row{
			fmt.Sprintf("%+d", rec.Abs), rec.Recent, rec.Prior, rec.Path,
		})
	}
	fmt.Fprintln(w, tbl.Render())
}

// renderPercent prints one growth%,newcount,oldcount,path table.
func renderPercent(w io.Writer, title string, records []trend.Record) {
	fmt.Fprintf(w, "\n%s\n", title)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"GROWTH%", "RECENT", "PRIOR", "PATH"})
	for _, rec := range records {
		tbl.AppendRow(table.Row{
			fmt.Sprintf("%+.1f%%", rec.Pct*100), rec.Recent, rec.Prior, rec.Path,
		})
	}
	fmt.Fprintln(w, tbl.Render())
}

func printNotes(w io.Writer, notes []string) {
	if len(notes) == 0 {
		return
	}
	fmt.Fprintln(w, "\nNotes:")
	for _, n := range notes {
		fmt.Fprintf(w, "  - %s\n", n)
	}
}
