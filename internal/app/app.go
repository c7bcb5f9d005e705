// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/SameerVers3/Scrapply/internal/analyze"
	"github.com/SameerVers3/Scrapply/internal/auth"
	"github.com/SameerVers3/Scrapply/internal/browser"
	"github.com/SameerVers3/Scrapply/internal/config"
	"github.com/SameerVers3/Scrapply/internal/detect"
	"github.com/SameerVers3/Scrapply/internal/fetch"
	"github.com/SameerVers3/Scrapply/internal/generate"
	"github.com/SameerVers3/Scrapply/internal/job"
	"github.com/SameerVers3/Scrapply/internal/logging"
	"github.com/SameerVers3/Scrapply/internal/pipeline"
	"github.com/SameerVers3/Scrapply/internal/ratelimit"
	"github.com/rs/zerolog"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      zerolog.Logger
	RateLimiter ratelimit.Limiter
	Fetcher     *fetch.Fetcher
	Browser     *browser.Browser
	Detector    *detect.Detector
	Analyzer    *analyze.Analyzer

	// Generator is nil when no API key is configured; commands that need
	// code generation must check and fail with a login hint.
	Generator generate.Generator

	Store     *job.Store
	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// The browser is created lazily inside its session type, so no Chrome
// process starts unless a command actually needs live detection.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		JSON:    cfg.JSONLog,
		LogFile: cfg.LogFile,
	})

	limiter := ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	fetcher := fetch.New(limiter, fetch.Options{
		Timeout:      cfg.HTTPTimeout,
		UserAgent:    cfg.UserAgent,
		MaxBodyBytes: cfg.MaxPageBytes,
	}, logger)

	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = browser.FindChrome()
	}
	b := browser.New(browser.Options{
		Headless:   cfg.BrowserHeadless,
		UserAgent:  cfg.UserAgent,
		ChromePath: chromePath,
	})

	detector := detect.New(b, cfg.NavTimeout, cfg.NetworkIdleTimeout, logger)
	analyzer := analyze.New(logger)

	var generator generate.Generator
	if key := auth.LoadAPIKey(); key != "" {
		g, err := generate.NewGemini(ctx, key, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("initializing code generator: %w", err)
		}
		generator = g
	} else {
		logger.Debug().Msg("no API key configured, code generation disabled")
	}

	app := &Application{
		Config:      cfg,
		Logger:      logger,
		RateLimiter: limiter,
		Fetcher:     fetcher,
		Browser:     b,
		Detector:    detector,
		Analyzer:    analyzer,
		Generator:   generator,
		Store:       job.NewStore(),
		startTime:   time.Now(),
	}

	logger.Debug().Msg("application initialized")
	return app, nil
}

// Orchestrator builds a pipeline reporting into sink. Each command picks its
// own sink (progress bar, plain logs), so this is not cached on Application.
func (a *Application) Orchestrator(sink job.EventSink) (*pipeline.Orchestrator, error) {
	if a.Generator == nil {
		return nil, fmt.Errorf("no Gemini API key configured: run `scrapply login` or set %s", auth.EnvAPIKey)
	}
	return pipeline.New(
		a.Fetcher,
		a.Analyzer,
		a.Detector,
		a.Generator,
		pipeline.NewSandboxExecutor(a.Logger),
		a.Store,
		sink,
		a.Logger,
	), nil
}

// Close gracefully shuts down the application and all its resources.
func (a *Application) Close(ctx context.Context) error {
	if a.Browser != nil {
		a.Browser.Close()
	}
	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
