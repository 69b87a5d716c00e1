package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pagetrend/pagetrend/internal/config"
	"github.com/pagetrend/pagetrend/internal/trend"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert represents a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	SourceID   string     `json:"source_id"`
	Path       string     `json:"path"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	Recent     int        `json:"recent_count"`
	Prior      int        `json:"prior_count"`
	Abs        int        `json:"absolute_delta"`
	Pct        float64    `json:"percent_delta"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine evaluates alert rules against incoming trend reports and delivers
// webhook notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	rules    []config.AlertRule
	webhooks []config.WebhookConfig

	mu       sync.Mutex
	active   map[string]*Alert    // key: "ruleName:sourceID:path"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
}

// New creates an Engine from the alert configuration.
// An Engine with empty rules is valid — Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate tests all configured rules against every record in r.
// Alerts that fire are stored and webhook delivery is triggered
// asynchronously. Active alerts whose path no longer matches — or whose path
// dropped out of the report entirely — are resolved.
func (e *Engine) Evaluate(r *trend.Report) {
	if len(e.rules) == 0 {
		return
	}

	now := time.Now()
	matched := make(map[string]bool)

	for _, rule := range e.rules {
		for _, rec := range r.Records {
			fires, value := evalCondition(rule.Condition, rec)
			if !fires {
				continue
			}
			key := alertKey(rule.Name, r.SourceID, rec.Path)
			matched[key] = true
			e.fire(rule, r.SourceID, rec, value, now)
		}
	}

	e.resolveUnmatched(r.SourceID, matched, now)
}

// fire records a firing alert for key unless it is still in cooldown.
func (e *Engine) fire(rule config.AlertRule, sourceID string, rec trend.Record, value float64, now time.Time) {
	key := alertKey(rule.Name, sourceID, rec.Path)

	cooldown := rule.Cooldown.Std()
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}

	e.mu.Lock()
	if now.Sub(e.lastFire[key]) <= cooldown {
		e.mu.Unlock()
		return
	}

	sev := rule.Severity
	if sev == "" {
		sev = "warning"
	}
	a := &Alert{
		ID:       fmt.Sprintf("%s:%d", key, now.UnixNano()),
		RuleName: rule.Name,
		SourceID: sourceID,
		Path:     rec.Path,
		Severity: sev,
		Value:    value,
		Recent:   rec.Recent,
		Prior:    rec.Prior,
		Abs:      rec.Abs,
		Pct:      rec.Pct,
		Message: fmt.Sprintf("[%s] %s fired on %s %s: %s = %.2f",
			sev, rule.Name, sourceID, rec.Path, rule.Condition, value),
		FiredAt: now,
		State:   "firing",
	}
	e.active[key] = a
	e.lastFire[key] = now
	alertCopy := *a
	e.mu.Unlock()

	slog.Warn("alert fired",
		"rule", rule.Name,
		"source", sourceID,
		"path", rec.Path,
		"value", value,
		"severity", sev,
	)
	go e.deliver(&alertCopy)
}

// resolveUnmatched resolves active alerts for sourceID whose key did not
// match during the current evaluation.
func (e *Engine) resolveUnmatched(sourceID string, matched map[string]bool, now time.Time) {
	var resolved []*Alert

	e.mu.Lock()
	for key, a := range e.active {
		if a.SourceID != sourceID || matched[key] {
			continue
		}
		t := now
		a.State = "resolved"
		a.ResolvedAt = &t
		delete(e.active, key)

		e.history = append(e.history, a)
		if len(e.history) > maxHistoryLen {
			e.history = e.history[len(e.history)-maxHistoryLen:]
		}
		cp := *a
		resolved = append(resolved, &cp)
	}
	e.mu.Unlock()

	for _, a := range resolved {
		slog.Info("alert resolved",
			"rule", a.RuleName,
			"source", a.SourceID,
			"path", a.Path,
		)
		go e.deliver(a)
	}
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := time.Now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

func alertKey(rule, sourceID, path string) string {
	return rule + ":" + sourceID + ":" + path
}
