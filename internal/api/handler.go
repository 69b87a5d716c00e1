package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pagetrend/pagetrend/internal/alerts"
	"github.com/pagetrend/pagetrend/internal/fetch"
	"github.com/pagetrend/pagetrend/internal/store"
	"github.com/pagetrend/pagetrend/internal/trend"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads the latest reports from the store and returns JSON responses.
type Handler struct {
	store  *store.Store
	engine *alerts.Engine
	mux    *http.ServeMux
}

// New creates a Handler wired to the given report store and alert engine,
// and registers all routes. engine may be nil when alerting is disabled.
func New(st *store.Store, engine *alerts.Engine) http.Handler {
	h := &Handler{store: st, engine: engine, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/reports", h.listReports)
	h.mux.HandleFunc("/api/v1/reports/", h.getReport) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — report counts and freshness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := HealthResponse{ReportCount: len(entries)}
	if h.engine != nil {
		resp.AlertCount = len(h.engine.Active())
	}

	var newest, oldest time.Time
	for _, e := range entries {
		if newest.IsZero() || e.UpdatedAt.After(newest) {
			newest = e.UpdatedAt
		}
		if oldest.IsZero() || e.UpdatedAt.Before(oldest) {
			oldest = e.UpdatedAt
		}
	}
	if !newest.IsZero() {
		resp.LastRefresh = newest.UTC().Format(time.RFC3339)
		resp.OldestReport = oldest.UTC().Format(time.RFC3339)
	}

	jsonResp(w, http.StatusOK, resp)
}

// listReports returns GET /api/v1/reports — the latest report per source.
func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildFeed(h.store))
}

// getReport returns GET /api/v1/reports/{id} — one source's latest report.
func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/")
	if id == "" {
		h.listReports(w, r)
		return
	}

	e, ok := h.store.Get(id)
	if !ok || time.Since(e.UpdatedAt) > h.store.TTL() {
		jsonErr(w, http.StatusNotFound, "report not found")
		return
	}

	jsonResp(w, http.StatusOK, toReportResponse(e.Report))
}

// listAlerts returns GET /api/v1/alerts — firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.engine == nil {
		jsonResp(w, http.StatusOK, []*alerts.Alert{})
		return
	}
	jsonResp(w, http.StatusOK, h.engine.Active())
}

// --- payload assembly -------------------------------------------------------

// BuildFeed assembles the reports payload served by /api/v1/reports and
// broadcast by the WebSocket hub.
func BuildFeed(st *store.Store) FeedResponse {
	entries := st.List()
	out := FeedResponse{
		Reports:     make([]ReportResponse, 0, len(entries)),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, e := range entries {
		out.Reports = append(out.Reports, toReportResponse(e.Report))
	}
	return out
}

func toReportResponse(r *trend.Report) ReportResponse {
	return ReportResponse{
		SourceID:     r.SourceID,
		GeneratedAt:  r.GeneratedAt.UTC().Format(time.RFC3339),
		RecentWindow: toWindowResponse(r.RecentWindow),
		PriorWindow:  toWindowResponse(r.PriorWindow),
		Comparable:   len(r.Records),
		TopAbsolute:  toRecordResponses(r.TopAbsolute),
		BotAbsolute:  toRecordResponses(r.BottomAbsolute),
		TopPercent:   toRecordResponses(r.TopPercent),
		BotPercent:   toRecordResponses(r.BottomPercent),
		Notes:        r.Notes,
	}
}

func toWindowResponse(w fetch.Window) WindowResponse {
	return WindowResponse{
		Start: w.Start.UTC().Format(time.RFC3339),
		End:   w.End.UTC().Format(time.RFC3339),
	}
}

func toRecordResponses(records []trend.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, RecordResponse{
			Path:          rec.Path,
			RecentCount:   rec.Recent,
			PriorCount:    rec.Prior,
			AbsoluteDelta: rec.Abs,
			PercentDelta:  rec.Pct,
		})
	}
	return out
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("api: encode response", "err", err)
	}
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
