package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pagetrend/pagetrend/internal/config"
)

func TestJSONFetcher_Fetch(t *testing.T) {
	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start")
		gotEnd = r.URL.Query().Get("end")
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck
		w.Write([]byte(`{"rows": [
			["/a-long-enough-path-1", "100"],
			["/a-long-enough-path-2", "50"],
			["only-one-field"],
			["/a-long-enough-path-3", "7", "extra-ignored"]
		]}`))
	}))
	defer srv.Close()

	f := &jsonFetcher{
		src:    config.Source{ID: "json-test", Type: "json", Endpoint: srv.URL},
		client: srv.Client(),
	}

	rows, err := f.Fetch(context.Background(), LastDays(7, baseTime))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotStart != "2026-08-23" || gotEnd != "2026-08-30" {
		t.Errorf("window params = %q..%q, want 2026-08-23..2026-08-30", gotStart, gotEnd)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (malformed row skipped)", len(rows))
	}
	if rows[0].Path != "/a-long-enough-path-1" || rows[0].Count != "100" {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[2].Path != "/a-long-enough-path-3" || rows[2].Count != "7" {
		t.Errorf("rows[2] = %+v", rows[2])
	}
}

func TestJSONFetcher_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	f := &jsonFetcher{
		src:    config.Source{ID: "json-test", Type: "json", Endpoint: srv.URL},
		client: srv.Client(),
	}

	if _, err := f.Fetch(context.Background(), LastDays(7, baseTime)); err == nil {
		t.Fatal("Fetch() on HTTP 403 should fail")
	}
}

func TestJSONFetcher_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>definitely not json</html>")) //nolint:errcheck
	}))
	defer srv.Close()

	f := &jsonFetcher{
		src:    config.Source{ID: "json-test", Type: "json", Endpoint: srv.URL},
		client: srv.Client(),
	}

	if _, err := f.Fetch(context.Background(), LastDays(7, baseTime)); err == nil {
		t.Fatal("Fetch() on non-JSON body should fail")
	}
}
