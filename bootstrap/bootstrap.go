// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/pagecraft/pagecraft/adapters/clock"
	"github.com/pagecraft/pagecraft/adapters/idgen"
	"github.com/pagecraft/pagecraft/adapters/memory"
	"github.com/pagecraft/pagecraft/adapters/metrics"
	"github.com/pagecraft/pagecraft/adapters/provider"
	"github.com/pagecraft/pagecraft/adapters/sqlite"
	"github.com/pagecraft/pagecraft/app"
	"github.com/pagecraft/pagecraft/config"
	"github.com/pagecraft/pagecraft/domain/limits"
	"github.com/pagecraft/pagecraft/domain/ratelimit"
	"github.com/pagecraft/pagecraft/domain/usage"
	"github.com/pagecraft/pagecraft/ports"
	"github.com/pagecraft/pagecraft/web"
)

// Version is stamped at build time.
var Version = "dev"

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	DB         *sqlite.DB

	usageSvc    *app.UsageService
	limiter     *app.RateLimiter
	generateSvc *app.GenerateService

	usageStore ports.UsageStore
	rateStore  ports.RateLimitStore

	holder  *config.Holder
	sweeper *cron.Cron
}

// New creates and initializes the application from a static configuration.
func New(cfg *config.Config) (*App, error) {
	return build(cfg, nil)
}

// NewWithHotReload creates the application with a file-watching config
// holder; edits to the config file reconfigure the running services.
func NewWithHotReload(path string) (*App, error) {
	bootLogger := newLogger(config.LoggingConfig{Level: "info", Format: "json"})

	holder, err := config.NewHolder(path, bootLogger)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a, err := build(holder.Get(), holder)
	if err != nil {
		return nil, err
	}

	holder.OnChange(func(cfg *config.Config) {
		a.applyConfig(cfg)
	})
	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watching unavailable")
	}
	holder.WatchSignals()

	return a, nil
}

func build(cfg *config.Config, holder *config.Holder) (*App, error) {
	logger := newLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("initializing pagecraft")

	a := &App{
		Logger:    logger,
		holder:    holder,
		rateStore: memory.NewRateLimitStore(),
	}

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		a.Metrics = metrics.New(registry)
		logger.Info().Msg("prometheus metrics enabled")
	}

	if err := a.initUsageStore(cfg); err != nil {
		return nil, err
	}

	clk := clock.Real{}

	a.usageSvc = app.NewUsageService(a.usageStore, clk, logger, a.Metrics, usagePolicy(cfg))
	a.limiter = app.NewRateLimiter(a.rateStore, clk, logger, a.Metrics, rateLimitPolicy(cfg))

	var prompts ports.PromptGenerator
	if cfg.Providers.GeminiAPIKey != "" {
		prompts = provider.NewGeminiPromptGenerator(cfg.Providers.GeminiAPIKey)
		logger.Info().Msg("gemini prompt provider configured")
	} else {
		logger.Info().Msg("no remote prompt provider, using local templates")
	}

	a.generateSvc = app.NewGenerateService(
		a.usageSvc,
		prompts,
		provider.NewLocalPromptGenerator(),
		provider.NewMockImageGenerator(),
		provider.NewMockBackgroundRemover(),
		idgen.UUID{},
		clk,
		logger,
		a.Metrics,
		generatePolicy(cfg),
	)

	handler := web.NewHandler(web.Deps{
		Generate: a.generateSvc,
		Usage:    a.usageSvc,
		Limiter:  a.limiter,
		Logger:   logger,
		Metrics:  a.Metrics,
		Version:  Version,
	})

	var metricsHandler http.Handler
	if registry != nil {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	a.HTTPServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Router(metricsHandler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Sweep.Enabled {
		if err := a.initSweeper(cfg); err != nil {
			return nil, err
		}
	}

	return a, nil
}

func (a *App) initUsageStore(cfg *config.Config) error {
	switch cfg.Usage.Store {
	case "sqlite":
		db, err := sqlite.Open(cfg.Usage.DSN)
		if err != nil {
			return fmt.Errorf("open usage db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return fmt.Errorf("migrate usage db: %w", err)
		}
		a.DB = db
		a.usageStore = sqlite.NewUsageStore(db)
		a.Logger.Info().Str("dsn", cfg.Usage.DSN).Msg("sqlite usage store ready")
	default:
		a.usageStore = memory.NewUsageStore()
		a.Logger.Info().Msg("in-memory usage store ready")
	}
	return nil
}

// initSweeper schedules background pruning so the stores do not accumulate
// entries for every IP and user ever seen.
func (a *App) initSweeper(cfg *config.Config) error {
	c := cron.New()

	sweep := cfg.Sweep
	_, err := c.AddFunc(sweep.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		now := time.Now()
		usagePruned, err := a.usageStore.PruneBefore(ctx, now.Add(-sweep.UsageRetention))
		if err != nil {
			a.Logger.Error().Err(err).Msg("usage sweep failed")
		}
		ratePruned, err := a.rateStore.PruneBefore(ctx, now.Add(-sweep.RateRetention))
		if err != nil {
			a.Logger.Error().Err(err).Msg("rate limit sweep failed")
		}
		a.Logger.Debug().
			Int("usage_pruned", usagePruned).
			Int("rate_pruned", ratePruned).
			Msg("store sweep complete")
	})
	if err != nil {
		return fmt.Errorf("schedule sweep %q: %w", sweep.Schedule, err)
	}

	a.sweeper = c
	a.Logger.Info().Str("schedule", sweep.Schedule).Msg("store sweeper scheduled")
	return nil
}

// applyConfig pushes a reloaded configuration into the running services.
// Server address and store selection are boot-time only.
func (a *App) applyConfig(cfg *config.Config) {
	a.usageSvc.Reconfigure(usagePolicy(cfg))
	a.limiter.Reconfigure(rateLimitPolicy(cfg))
	a.generateSvc.Reconfigure(generatePolicy(cfg))
	if a.Metrics != nil {
		a.Metrics.ConfigReloads.Inc()
	}
}

// Reload re-reads the config file and applies it. No-op without hot reload.
func (a *App) Reload() error {
	if a.holder == nil {
		return nil
	}
	if err := a.holder.Reload(); err != nil {
		if a.Metrics != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		}
		return err
	}
	return nil
}

// Run starts the server and blocks until a shutdown signal or server error.
func (a *App) Run() error {
	if a.sweeper != nil {
		a.sweeper.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.holder != nil {
		a.holder.Stop()
	}
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// usagePolicy converts config into the usage service policy.
func usagePolicy(cfg *config.Config) app.UsagePolicy {
	keys := make([]app.APIKey, 0, len(cfg.Auth.Keys))
	for _, k := range cfg.Auth.Keys {
		keys = append(keys, app.APIKey{
			UserID: k.UserID,
			Plan:   usage.ParsePlan(k.Plan),
			Hash:   []byte(k.Hash),
		})
	}

	return app.UsagePolicy{
		Limits: limits.Config{
			Caps: limits.OperationCaps{
				MaxImagesPerRequest: cfg.Limits.MaxImagesPerRequest,
				MaxBatchSize:        cfg.Limits.MaxBatchSize,
			},
			Demo:  limits.Tuple{MaxRequests: cfg.Limits.Demo.MaxRequests, MaxImages: cfg.Limits.Demo.MaxImages},
			Basic: limits.Tuple{MaxRequests: cfg.Limits.Basic.MaxRequests, MaxImages: cfg.Limits.Basic.MaxImages},
			Pro:   limits.Tuple{MaxRequests: cfg.Limits.Pro.MaxRequests, MaxImages: cfg.Limits.Pro.MaxImages},
		},
		DemoMode: cfg.Usage.DemoMode,
		Keys:     keys,
	}
}

func rateLimitPolicy(cfg *config.Config) app.RateLimitPolicy {
	return app.RateLimitPolicy{
		Enabled: cfg.RateLimit.Enabled,
		Config: ratelimit.Config{
			Limit:  cfg.RateLimit.MaxRequests,
			Window: cfg.RateLimit.Window,
		},
	}
}

func generatePolicy(cfg *config.Config) app.GeneratePolicy {
	return app.GeneratePolicy{
		Features: app.FeaturePolicy{
			PromptGeneration:  !cfg.Features.DisablePromptGeneration,
			ImageGeneration:   !cfg.Features.DisableImageGeneration,
			BackgroundRemoval: !cfg.Features.DisableBackgroundRemoval,
		},
		Retry: app.RetryPolicy{
			Retries: cfg.Retry.Retries,
			Timeout: cfg.Retry.Timeout,
		},
	}
}
