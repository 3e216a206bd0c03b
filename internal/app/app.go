// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/shiptrack/internal/browser"
	"github.com/law-makers/shiptrack/internal/config"
	"github.com/law-makers/shiptrack/internal/extract"
	"github.com/law-makers/shiptrack/internal/fleet"
	"github.com/law-makers/shiptrack/internal/imagestore"
	"github.com/law-makers/shiptrack/internal/metrics"
	"github.com/law-makers/shiptrack/internal/proxy"
	"github.com/law-makers/shiptrack/internal/ratelimit"
	"github.com/law-makers/shiptrack/internal/reconcile"
	"github.com/law-makers/shiptrack/internal/store"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config    *config.Config
	Logger    *zerolog.Logger
	Store     store.Store
	Images    imagestore.Uploader
	Browser   *browser.Launcher
	Limiter   *ratelimit.HostLimiter
	Metrics   *metrics.Metrics
	Known     *reconcile.KnownKeys
	Extractor *extract.Extractor
	Runner    *fleet.Runner
	startTime time.Time
}

// NewLogger configures the global zerolog level and returns the process
// logger. Info is treated as non-verbose; -v is needed to see info and debug.
func NewLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.ErrorLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer
	if cfg.JSONLog {
		w = os.Stderr
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// NewExtractor builds the page extractor from cfg
func NewExtractor(cfg *config.Config) (*extract.Extractor, error) {
	policy, err := extract.ParsePolicy(cfg.CoordinatePolicy)
	if err != nil {
		return nil, err
	}
	return extract.New(extract.DefaultRules(cfg.Countries...), policy), nil
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Opens the store and applies migrations
//   - Selects the image sink (object storage or a local directory)
//   - Prepares the browser launcher, proxy pool and navigation limiter
//   - Builds the reconciler and the fleet runner
//
// If any step fails, resources opened so far are released and an error is
// returned.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := NewLogger(cfg)
	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	extractor, err := NewExtractor(cfg)
	if err != nil {
		return nil, err
	}

	dsn := cfg.SQLitePath
	if cfg.StoreDriver == store.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	st, err := store.Open(ctx, store.Options{Driver: cfg.StoreDriver, DSN: dsn, Migrate: cfg.Migrate})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug().Str("driver", cfg.StoreDriver).Msg("Store opened")

	images, err := newImageSink(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	proxies := proxy.NewPool(cfg.Proxies, cfg.ProxyCooldown)
	launcher := browser.NewLauncher(browser.Options{
		ChromePath:   cfg.ChromePath,
		Headless:     cfg.Headless,
		UserAgent:    cfg.UserAgent,
		WindowWidth:  cfg.WindowWidth,
		WindowHeight: cfg.WindowHeight,
		Proxies:      proxies,
		Headers:      cfg.ExtraHeaders,
	})
	limiter := ratelimit.NewHostLimiter(cfg.NavInterval, cfg.NavBurst)
	m := metrics.New()
	known := reconcile.NewKnownKeys(cfg.KnownKeysMax, cfg.KnownKeysTTL)

	runner := fleet.New(fleet.Deps{
		Browser:    launcher,
		Extractor:  extractor,
		Reconciler: reconcile.New(st, known),
		Sink:       st,
		Images:     images,
		Limiter:    limiter,
		Recorder:   m,
		Logger:     &logger,
	}, RunnerOptions(cfg))

	a := &Application{
		Config:    cfg,
		Logger:    &logger,
		Store:     st,
		Images:    images,
		Browser:   launcher,
		Limiter:   limiter,
		Metrics:   m,
		Known:     known,
		Extractor: extractor,
		Runner:    runner,
		startTime: time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return a, nil
}

// RunnerOptions maps cfg onto fleet runner options
func RunnerOptions(cfg *config.Config) fleet.Options {
	return fleet.Options{
		URLTemplate:       cfg.URLTemplate,
		NavigationTimeout: cfg.NavigationTimeout,
		ConsentTimeout:    cfg.ConsentTimeout,
		ActionTimeout:     cfg.ActionTimeout,
		SettleDelay:       cfg.SettleDelay,
		HoverDelay:        cfg.HoverDelay,
		ConsentSelector:   cfg.ConsentSelector,
		MarkerSelector:    cfg.MarkerSelector,
		PopupSelector:     cfg.PopupSelector,
		Clip:              fleet.Clip{X: cfg.ClipX, Y: cfg.ClipY, Width: cfg.ClipWidth, Height: cfg.ClipHeight},
		Location:          cfg.Location,
		DefaultOrgID:      cfg.DefaultOrgID,
	}
}

// newImageSink prefers object storage and falls back to a local directory.
// ImageCopyDir adds a local copy of every image.
func newImageSink(cfg *config.Config) (imagestore.Uploader, error) {
	var primary imagestore.Uploader
	if cfg.SupabaseURL != "" {
		s, err := imagestore.NewSupabase(imagestore.SupabaseOptions{
			BaseURL:    cfg.SupabaseURL,
			Bucket:     cfg.ImageBucket,
			ServiceKey: cfg.StorageKey,
		})
		if err != nil {
			return nil, fmt.Errorf("configure object storage: %w", err)
		}
		primary = s
	} else {
		l, err := imagestore.NewLocal(cfg.ImageDir)
		if err != nil {
			return nil, fmt.Errorf("configure local image directory: %w", err)
		}
		log.Debug().Str("dir", cfg.ImageDir).Msg("No object storage configured, keeping images locally")
		primary = l
	}

	if cfg.ImageCopyDir == "" {
		return primary, nil
	}
	copyDir, err := imagestore.NewLocal(cfg.ImageCopyDir)
	if err != nil {
		return nil, fmt.Errorf("configure image copy directory: %w", err)
	}
	return imagestore.Mirror{Primary: primary, Copy: copyDir}, nil
}

// Close gracefully shuts down the application and all its resources.
// Errors are logged and do not prevent other shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing store")
		}
	}

	hits, misses := a.Known.Stats()
	a.Logger.Info().
		Dur("uptime", time.Since(a.startTime)).
		Uint64("known_trip_hits", hits).
		Uint64("known_trip_misses", misses).
		Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
