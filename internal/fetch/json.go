package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pagetrend/pagetrend/internal/config"
	"github.com/pagetrend/pagetrend/internal/snapshot"
)

// jsonFetcher queries a generic analytics endpoint that reports rows as
// string pairs, the way hosted analytics export APIs do.
type jsonFetcher struct {
	src    config.Source
	client *http.Client
}

// rowsPayload is the wire shape of the json source type:
//
//	{"rows": [["/some/page/path", "1234"], ...]}
type rowsPayload struct {
	Rows [][]string `json:"rows"`
}

// Fetch issues a GET with the window boundaries as start/end date parameters
// and returns one Row per well-formed wire row. Rows with fewer than two
// fields are logged and skipped.
func (f *jsonFetcher) Fetch(ctx context.Context, win Window) ([]snapshot.Row, error) {
	u, err := url.Parse(f.src.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("json fetch %q: parse endpoint: %w", f.src.ID, err)
	}
	q := u.Query()
	q.Set("start", win.Start.Format(dateLayout))
	q.Set("end", win.End.Format(dateLayout))
	u.RawQuery = q.Encode()

	resp, err := get(ctx, f.client, u.String(), "application/json")
	if err != nil {
		return nil, fmt.Errorf("json fetch %q: %w", f.src.ID, err)
	}
	defer resp.Body.Close()

	var payload rowsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("json fetch %q: decode body: %w", f.src.ID, err)
	}

	rows := make([]snapshot.Row, 0, len(payload.Rows))
	for _, r := range payload.Rows {
		if len(r) < 2 {
			slog.Warn("fetch: skipping malformed row", "source", f.src.ID, "fields", len(r))
			continue
		}
		rows = append(rows, snapshot.Row{Path: r[0], Count: r[1]})
	}
	return rows, nil
}
