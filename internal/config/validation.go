package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/law-makers/shiptrack/internal/utils/headers"
	urlutil "github.com/law-makers/shiptrack/internal/utils/url"
)

func validate(c *Config) error {
	for name, d := range map[string]time.Duration{
		"navigation timeout": c.NavigationTimeout,
		"consent timeout":    c.ConsentTimeout,
		"action timeout":     c.ActionTimeout,
		"watch interval":     c.WatchInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	h, err := headers.Parse(c.Headers)
	if err != nil {
		return err
	}
	c.ExtraHeaders = h

	if c.SettleDelay < 0 || c.HoverDelay < 0 {
		return fmt.Errorf("settle delays must not be negative")
	}

	switch strings.ToLower(c.CoordinatePolicy) {
	case "lenient", "strict":
		c.CoordinatePolicy = strings.ToLower(c.CoordinatePolicy)
	default:
		return fmt.Errorf("unknown coordinate policy %q (want lenient or strict)", c.CoordinatePolicy)
	}

	switch c.StoreDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("postgres store requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want sqlite or postgres)", c.StoreDriver)
	}

	if err := urlutil.ValidateTemplate(c.URLTemplate, "{shipid}"); err != nil {
		return fmt.Errorf("url template: %w", err)
	}
	if c.ClipWidth <= 0 || c.ClipHeight <= 0 || c.ClipX < 0 || c.ClipY < 0 {
		return fmt.Errorf("screenshot clip must have a positive size and non-negative origin")
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive")
	}
	if c.NavBurst <= 0 {
		return fmt.Errorf("navigation burst must be > 0")
	}
	if len(c.Countries) == 0 {
		return fmt.Errorf("at least one route country code is required")
	}
	for i, code := range c.Countries {
		code = strings.ToUpper(strings.TrimSpace(code))
		if len(code) < 2 || len(code) > 3 {
			return fmt.Errorf("invalid country code %q", c.Countries[i])
		}
		c.Countries[i] = code
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	c.Location = loc

	if c.SupabaseURL != "" {
		if err := urlutil.ValidateURL(c.SupabaseURL); err != nil {
			return fmt.Errorf("SUPABASE_URL: %w", err)
		}
	}
	if c.SupabaseURL != "" && c.StorageKey == "" {
		return fmt.Errorf("SUPABASE_URL is set but no storage key was found in SUPABASE_SERVICE_ROLE_KEY or the keyring")
	}
	return nil
}
