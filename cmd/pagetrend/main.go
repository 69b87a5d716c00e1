package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pagetrend/pagetrend/internal/alerts"
	"github.com/pagetrend/pagetrend/internal/api"
	"github.com/pagetrend/pagetrend/internal/config"
	"github.com/pagetrend/pagetrend/internal/fetch"
	"github.com/pagetrend/pagetrend/internal/report"
	"github.com/pagetrend/pagetrend/internal/snapshot"
	"github.com/pagetrend/pagetrend/internal/store"
	"github.com/pagetrend/pagetrend/internal/trend"
	"github.com/pagetrend/pagetrend/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	serve := flag.Bool("serve", false, "run the HTTP/WebSocket server instead of printing a one-shot report")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("pagetrend starting", "config", *configPath, "serve", *serve)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"sources", len(cfg.Sources),
		"window_days", cfg.Report.WindowDays,
		"top_n", cfg.Report.TopN,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Build fetcher instances from the initial config. A source with a bad
	// definition is skipped, not fatal.
	type source struct {
		cfg config.Source
		f   fetch.Fetcher
	}
	var sources []source
	for _, src := range cfg.Sources {
		f, err := fetch.New(src)
		if err != nil {
			slog.Error("skipping source — could not build fetcher", "source", src.ID, "err", err)
			continue
		}
		sources = append(sources, source{cfg: src, f: f})
		slog.Info("registered source", "id", src.ID, "type", src.Type, "endpoint", src.Endpoint)
	}
	if len(sources) == 0 {
		slog.Error("no usable sources configured")
		os.Exit(1)
	}

	// refresh fetches both windows for one source and derives its report.
	refresh := func(ctx context.Context, src source, opts trend.Options, windowDays int) (*trend.Report, error) {
		now := time.Now()
		recentWin := fetch.LastDays(windowDays, now)
		priorWin := recentWin.Previous()

		recentRows, priorRows, err := fetchWindows(ctx, src.f, recentWin, priorWin)
		if err != nil {
			return nil, err
		}
		return trend.BuildReport(src.cfg.ID, recentWin, priorWin, recentRows, priorRows, opts, now), nil
	}

	opts := trend.Options{
		TopN:  cfg.Report.TopN,
		Rules: cfg.Filter.Rules(),
	}

	if !*serve {
		// One-shot mode: fetch, derive, print, exit.
		failed := 0
		for _, src := range sources {
			r, err := refresh(ctx, src, opts, cfg.Report.WindowDays)
			if err != nil {
				slog.Error("refresh failed", "source", src.cfg.ID, "err", err)
				failed++
				continue
			}
			report.Render(os.Stdout, r)
		}
		if failed == len(sources) {
			os.Exit(1)
		}
		return
	}

	// Serve mode: keep reports in a TTL store and expose them over REST + WS.

	st := store.New(cfg.Serve.ReportTTL.Std())
	go st.Run(ctx)

	alertEngine := alerts.New(cfg.Alerts)

	hub := ws.New(st)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.APIKeyMiddleware(
		cfg.Serve.Auth.Mode,
		cfg.Serve.Auth.Header,
		cfg.Serve.Auth.Key(),
		api.New(st, alertEngine),
	))
	mux.Handle("/ws", hub)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Serve.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Serve.HTTPPort, "auth_mode", cfg.Serve.Auth.Mode)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	// Report and filter settings can change under a running server; the
	// refresh loop re-reads them each cycle.
	var settingsMu sync.RWMutex
	windowDays := cfg.Report.WindowDays

	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			settingsMu.Lock()
			opts = trend.Options{
				TopN:  updated.Report.TopN,
				Rules: updated.Filter.Rules(),
			}
			windowDays = updated.Report.WindowDays
			settingsMu.Unlock()
			slog.Info("config hot-reloaded",
				"window_days", updated.Report.WindowDays,
				"top_n", updated.Report.TopN,
			)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Refresh loop: run once immediately, then every RefreshInterval.
	go func() {
		refreshAll := func() {
			settingsMu.RLock()
			curOpts, curDays := opts, windowDays
			settingsMu.RUnlock()

			for _, src := range sources {
				r, err := refresh(ctx, src, curOpts, curDays)
				if err != nil {
					slog.Warn("refresh failed", "source", src.cfg.ID, "err", err)
					continue
				}
				st.Put(r)
				alertEngine.Evaluate(r)
				slog.Info("report refreshed",
					"source", src.cfg.ID,
					"comparable", len(r.Records),
				)
			}
			hub.Notify()
		}

		refreshAll()
		ticker := time.NewTicker(cfg.Serve.RefreshInterval.Std())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshAll()
			}
		}
	}()

	<-ctx.Done()
	slog.Info("pagetrend shutting down")
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	httpSrv.Shutdown(shutCtx) //nolint:errcheck
}

// fetchWindows pulls both comparison windows from the same fetcher
// concurrently.
func fetchWindows(ctx context.Context, f fetch.Fetcher, recent, prior fetch.Window) (recentRows, priorRows []snapshot.Row, err error) {
	var wg sync.WaitGroup
	var recentErr, priorErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		recentRows, recentErr = f.Fetch(ctx, recent)
	}()
	go func() {
		defer wg.Done()
		priorRows, priorErr = f.Fetch(ctx, prior)
	}()
	wg.Wait()

	if recentErr != nil {
		return nil, nil, fmt.Errorf("recent window %s: %w", recent, recentErr)
	}
	if priorErr != nil {
		return nil, nil, fmt.Errorf("prior window %s: %w", prior, priorErr)
	}
	return recentRows, priorRows, nil
}
