package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/prometheus/common/model"

	"github.com/pagetrend/pagetrend/internal/config"
	"github.com/pagetrend/pagetrend/internal/snapshot"
)

// queryPath is the Prometheus instant-query API path appended to the
// configured server base URL.
const queryPath = "/api/v1/query"

// promFetcher reads per-path view counts from a Prometheus server that
// scrapes the site's page-view counter.
type promFetcher struct {
	src    config.Source
	client *http.Client
}

// queryResponse is the subset of the Prometheus query API envelope we need.
// The result vector is decoded by prometheus/common's model types.
type queryResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string       `json:"resultType"`
		Result     model.Vector `json:"result"`
	} `json:"data"`
	Error string `json:"error"`
}

// Fetch evaluates sum by (label) (increase(metric[window])) at the window's
// end instant, which covers exactly [Start, End). Sample values are rounded
// to whole counts; increase() extrapolation yields fractional values.
func (f *promFetcher) Fetch(ctx context.Context, win Window) ([]snapshot.Row, error) {
	expr := fmt.Sprintf("sum by (%s) (increase(%s[%s]))",
		f.src.PathLabel, f.src.Metric, model.Duration(win.Duration()).String())

	u := strings.TrimSuffix(f.src.Endpoint, "/") + queryPath
	q := url.Values{}
	q.Set("query", expr)
	q.Set("time", strconv.FormatInt(win.End.Unix(), 10))

	resp, err := get(ctx, f.client, u+"?"+q.Encode(), "application/json")
	if err != nil {
		return nil, fmt.Errorf("prometheus fetch %q: %w", f.src.ID, err)
	}
	defer resp.Body.Close()

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("prometheus fetch %q: decode body: %w", f.src.ID, err)
	}
	if payload.Status != "success" {
		return nil, fmt.Errorf("prometheus fetch %q: query failed: %s", f.src.ID, payload.Error)
	}

	label := model.LabelName(f.src.PathLabel)
	rows := make([]snapshot.Row, 0, len(payload.Data.Result))
	for _, sample := range payload.Data.Result {
		path := string(sample.Metric[label])
		if path == "" {
			slog.Warn("fetch: sample without path label",
				"source", f.src.ID, "label", f.src.PathLabel)
			continue
		}
		count := int(math.Round(float64(sample.Value)))
		rows = append(rows, snapshot.Row{Path: path, Count: strconv.Itoa(count)})
	}
	return rows, nil
}
