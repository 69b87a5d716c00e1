package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/pagetrend/pagetrend/internal/config"
	"github.com/pagetrend/pagetrend/internal/snapshot"
)

// openMetricsFetcher scrapes a text exposition endpoint directly, for setups
// where a pre-aggregating exporter exposes per-window counts itself. The
// window boundaries travel as start/end parameters; aggregation inside the
// window is the exporter's job.
type openMetricsFetcher struct {
	src    config.Source
	client *http.Client
}

// Fetch scrapes the endpoint and returns one row per series of the
// configured metric family, taking the path from the configured label.
func (f *openMetricsFetcher) Fetch(ctx context.Context, win Window) ([]snapshot.Row, error) {
	u, err := url.Parse(f.src.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("openmetrics fetch %q: parse endpoint: %w", f.src.ID, err)
	}
	q := u.Query()
	q.Set("start", win.Start.Format(dateLayout))
	q.Set("end", win.End.Format(dateLayout))
	u.RawQuery = q.Encode()

	resp, err := get(ctx, f.client, u.String(), string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	if err != nil {
		return nil, fmt.Errorf("openmetrics fetch %q: %w", f.src.ID, err)
	}
	defer resp.Body.Close()

	mfs, err := parseFamilies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openmetrics fetch %q: %w", f.src.ID, err)
	}

	mf := mfs[f.src.Metric]
	if mf == nil {
		slog.Warn("fetch: metric family not present in scrape",
			"source", f.src.ID, "metric", f.src.Metric)
		return nil, nil
	}

	rows := make([]snapshot.Row, 0, len(mf.GetMetric()))
	for _, m := range mf.GetMetric() {
		path := labelValue(m, f.src.PathLabel)
		if path == "" {
			slog.Warn("fetch: series without path label",
				"source", f.src.ID, "label", f.src.PathLabel)
			continue
		}
		rows = append(rows, snapshot.Row{
			Path:  path,
			Count: strconv.Itoa(int(sampleValue(m))),
		})
	}
	return rows, nil
}

// parseFamilies decodes a Prometheus text exposition from r into metric
// families. A partial result with a non-fatal parse warning is still
// returned successfully.
func parseFamilies(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse exposition: %w", err)
	}
	return mfs, nil
}

// labelValue returns the value of the named label, or "" if absent.
func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// sampleValue extracts the counter, gauge, or untyped value of a series.
func sampleValue(m *dto.Metric) float64 {
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Untyped != nil:
		return m.Untyped.GetValue()
	default:
		return 0
	}
}
