package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel = "info"
	DefaultJSONLog  = false

	// A real browser user agent: many shops serve degraded markup to
	// obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	DefaultHTTPTimeout    = 10 * time.Second
	DefaultMaxPageBytes   = 2_000_000
	DefaultRateLimitRPS   = 2.0
	DefaultRateLimitBurst = 4

	DefaultBrowserHeadless    = true
	DefaultNavTimeout         = 60 * time.Second
	DefaultNetworkIdleTimeout = 10 * time.Second

	DefaultSandboxTimeout        = 30 * time.Second
	DefaultDynamicSandboxTimeout = 60 * time.Second
	DefaultSandboxMemoryMB       = 512
	MaxSandboxMemoryMB           = 4096

	DefaultGeminiModel = "gemini-2.5-flash"
)
