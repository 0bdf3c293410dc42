package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/client"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/completion"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/config"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/i18n"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/providers"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/secrets"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/telemetry/logging"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/telemetry/metrics"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/usage"
)

// app wires the core components for one CLI invocation.
type app struct {
	cfg      *config.Config
	registry *providers.Registry
	store    *secrets.Store
	tracker  *usage.Tracker
	history  *usage.History
	client   *client.Client
	guard    *client.OperationGuard
	prom     *prometheus.Registry
	metrics  *metrics.Metrics

	completionOnce  sync.Once
	completionCache *completion.Cache
	completionSvc   *completion.Service
}

// newApp loads configuration, sets up logging and the locale, and
// builds the component graph.
func newApp() (*app, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.DefaultDataDir(), "config.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	if _, err := logging.Setup(logging.Config{Level: level, Format: cfg.Logging.Format}); err != nil {
		return nil, err
	}

	if locale := i18n.Normalize(cfg.Locale); locale != "" && locale != "en" {
		localePath := filepath.Join(cfg.DataDir, "locales", locale+".yaml")
		if err := i18n.Default().LoadLocale(locale, localePath); err != nil {
			slog.Warn("failed to load locale, falling back to english",
				"locale", locale,
				"error", err,
			)
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := secrets.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	registry := providers.Default()

	prom := prometheus.NewRegistry()
	m := metrics.New(prom)

	history, err := usage.NewHistory(cfg.HistoryPath())
	if err != nil {
		slog.Warn("usage history unavailable, archiving disabled", "error", err)
		history = nil
	}

	trackerOpts := []usage.TrackerOption{
		usage.WithDebounce(cfg.Usage.Debounce),
		usage.WithTrackerMetrics(m),
	}
	if history != nil {
		trackerOpts = append(trackerOpts, usage.WithHistory(history))
	}
	tracker := usage.NewTracker(cfg.StatsPath(), registry, trackerOpts...)

	apiClient := client.New(client.Config{
		Timeout:    cfg.Client.Timeout,
		MaxRetries: cfg.Client.MaxRetries,
		BaseDelay:  cfg.Client.BaseDelay,
	}, registry, store,
		client.WithUsageRecorder(tracker),
		client.WithMetrics(m),
	)

	return &app{
		cfg:      cfg,
		registry: registry,
		store:    store,
		tracker:  tracker,
		history:  history,
		client:   apiClient,
		guard:    client.NewOperationGuard(),
		prom:     prom,
		metrics:  m,
	}, nil
}

// activeProvider resolves the provider for this invocation: the -p
// flag, then the selection file, then the configured default.
func (a *app) activeProvider() string {
	if provider != "" {
		return provider
	}
	if selected := a.store.Selected(); selected != "" {
		return selected
	}
	return a.cfg.Provider
}

// completionService lazily builds the shared completion pipeline. The
// cache is held on the app so every completion served within one
// process (repeated calls from serve, or embedders reusing the app)
// goes through the same cache.
func (a *app) completionService() *completion.Service {
	a.completionOnce.Do(func() {
		detector := &completion.Detector{MinCommentLength: a.cfg.Completion.MinCommentLength}
		a.completionCache = completion.NewCache(completion.CacheConfig{
			TTL:           a.cfg.Completion.CacheTTL,
			Capacity:      a.cfg.Completion.CacheSize,
			SweepInterval: a.cfg.Completion.SweepInterval,
		}, completion.WithCacheMetrics(a.metrics))
		a.completionSvc = completion.NewService(detector, a.completionCache, a.client)
	})
	return a.completionSvc
}

// close flushes pending usage writes and releases resources.
func (a *app) close() {
	if a.completionCache != nil {
		a.completionCache.Stop()
	}
	a.tracker.Close()
	if a.history != nil {
		a.history.Close()
	}
	a.store.Close()
}

// userMessage renders an error for terminal output, translating
// classified API failures.
func userMessage(err error) string {
	apiErr, ok := client.AsAPIError(err)
	if !ok {
		return err.Error()
	}

	name := apiErr.Provider
	switch apiErr.Kind {
	case client.KindAPIKey:
		return i18n.T("errors.api_key", name, name)
	case client.KindRateLimit:
		return i18n.T("errors.rate_limit", name)
	case client.KindServer:
		return i18n.T("errors.server", name)
	case client.KindNetwork:
		if apiErr.Timeout {
			return i18n.T("errors.timeout", name)
		}
		return i18n.T("errors.network", name)
	case client.KindParse:
		return i18n.T("errors.parse", name)
	case client.KindUnknownProvider:
		return i18n.T("errors.unknown_provider", name)
	case client.KindCancelled:
		return i18n.T("errors.cancelled")
	default:
		return apiErr.Error()
	}
}
