package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool
	LogFile  string

	// HTTP/Fetching
	HTTPTimeout    time.Duration
	UserAgent      string
	MaxPageBytes   int64
	RateLimitRPS   float64
	RateLimitBurst int

	// Browser
	BrowserHeadless    bool
	ChromePath         string
	NavTimeout         time.Duration
	NetworkIdleTimeout time.Duration

	// Sandbox
	SandboxTimeout        time.Duration
	DynamicSandboxTimeout time.Duration
	SandboxMemoryMB       int

	// Code generation
	GeminiModel string
}

// Load builds a Config by combining defaults, environment variables, and CLI
// flags. Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:              DefaultLogLevel,
		JSONLog:               DefaultJSONLog,
		HTTPTimeout:           DefaultHTTPTimeout,
		UserAgent:             DefaultUserAgent,
		MaxPageBytes:          DefaultMaxPageBytes,
		RateLimitRPS:          DefaultRateLimitRPS,
		RateLimitBurst:        DefaultRateLimitBurst,
		BrowserHeadless:       DefaultBrowserHeadless,
		NavTimeout:            DefaultNavTimeout,
		NetworkIdleTimeout:    DefaultNetworkIdleTimeout,
		SandboxTimeout:        DefaultSandboxTimeout,
		DynamicSandboxTimeout: DefaultDynamicSandboxTimeout,
		SandboxMemoryMB:       DefaultSandboxMemoryMB,
		GeminiModel:           DefaultGeminiModel,
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("SCRAPPLY_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("SCRAPPLY_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("SCRAPPLY_GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("SCRAPPLY_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("SCRAPPLY_SANDBOX_MEMORY_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SandboxMemoryMB = n
		}
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.HTTPTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("chrome-path"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.ChromePath = s
			}
		}
		if f := cmd.Flags().Lookup("model"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.GeminiModel = s
			}
		}
		if f := cmd.Flags().Lookup("log-file"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.LogFile = s
			}
		}
		if f := cmd.Flags().Lookup("headful"); f != nil {
			if f.Value.String() == "true" {
				cfg.BrowserHeadless = false
			}
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
		if f := cmd.Flags().Lookup("quiet"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "error"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
