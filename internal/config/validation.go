package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.MaxPageBytes <= 0 {
		return fmt.Errorf("max page bytes must be > 0")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be > 0")
	}
	if c.SandboxMemoryMB <= 0 || c.SandboxMemoryMB > MaxSandboxMemoryMB {
		return fmt.Errorf("sandbox memory must be between 1 and %d MB", MaxSandboxMemoryMB)
	}
	if c.SandboxTimeout <= 0 || c.DynamicSandboxTimeout <= 0 {
		return fmt.Errorf("sandbox timeouts must be > 0")
	}
	return nil
}
