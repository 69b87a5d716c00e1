package api

// RecordResponse is one ranked delta entry in a report payload.
type RecordResponse struct {
	Path          string  `json:"path"`
	RecentCount   int     `json:"recent_count"`
	PriorCount    int     `json:"prior_count"`
	AbsoluteDelta int     `json:"absolute_delta"`
	PercentDelta  float64 `json:"percent_delta"`
}

// WindowResponse is a reporting window in a report payload.
type WindowResponse struct {
	Start string `json:"start"` // RFC3339
	End   string `json:"end"`   // RFC3339
}

// ReportResponse is one source's report in GET /api/v1/reports or
// GET /api/v1/reports/{id}.
type ReportResponse struct {
	SourceID     string           `json:"source_id"`
	GeneratedAt  string           `json:"generated_at"` // RFC3339
	RecentWindow WindowResponse   `json:"recent_window"`
	PriorWindow  WindowResponse   `json:"prior_window"`
	Comparable   int              `json:"comparable_paths"`
	TopAbsolute  []RecordResponse `json:"top_absolute"`
	BotAbsolute  []RecordResponse `json:"bottom_absolute"`
	TopPercent   []RecordResponse `json:"top_percent"`
	BotPercent   []RecordResponse `json:"bottom_percent"`
	Notes        []string         `json:"notes,omitempty"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	ReportCount  int    `json:"report_count"`
	AlertCount   int    `json:"alert_count"`
	LastRefresh  string `json:"last_refresh,omitempty"` // RFC3339
	OldestReport string `json:"oldest_report,omitempty"`
}

// FeedResponse is the payload for GET /api/v1/reports and the envelope body
// broadcast over the WebSocket feed.
type FeedResponse struct {
	Reports     []ReportResponse `json:"reports"`
	GeneratedAt string           `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
