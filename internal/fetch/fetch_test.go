package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pagetrend/pagetrend/internal/config"
)

func TestNew_UnsupportedType(t *testing.T) {
	_, err := New(config.Source{ID: "x", Type: "carrier-pigeon"})
	if err == nil {
		t.Fatal("New() with unsupported type should fail")
	}
}

func TestNew_BuildsEachType(t *testing.T) {
	for _, typ := range []string{"json", "prometheus", "openmetrics"} {
		f, err := New(config.Source{ID: "x", Type: typ, Endpoint: "http://example.com", Metric: "m"})
		if err != nil {
			t.Errorf("New(%q) error = %v", typ, err)
		}
		if f == nil {
			t.Errorf("New(%q) returned nil fetcher", typ)
		}
	}
}

func TestAuthRoundTripper_APIKey(t *testing.T) {
	t.Setenv("FETCH_TEST_KEY", "hunter2")

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Analytics-Key")
		w.Write([]byte(`{"rows": []}`)) //nolint:errcheck
	}))
	defer srv.Close()

	src := config.Source{
		ID:       "auth-test",
		Type:     "json",
		Endpoint: srv.URL,
		Auth: config.AuthConfig{
			Mode:   "apikey",
			Header: "X-Analytics-Key",
			KeyEnv: "FETCH_TEST_KEY",
		},
	}
	f, err := New(src)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := f.Fetch(context.Background(), LastDays(7, baseTime)); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotKey != "hunter2" {
		t.Errorf("api key header = %q, want %q", gotKey, "hunter2")
	}
}

func TestAuthRoundTripper_Bearer(t *testing.T) {
	t.Setenv("FETCH_TEST_TOKEN", "tok-123")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"rows": []}`)) //nolint:errcheck
	}))
	defer srv.Close()

	src := config.Source{
		ID:       "auth-test",
		Type:     "json",
		Endpoint: srv.URL,
		Auth:     config.AuthConfig{Mode: "bearer", TokenEnv: "FETCH_TEST_TOKEN"},
	}
	f, err := New(src)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := f.Fetch(context.Background(), LastDays(7, baseTime)); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}
