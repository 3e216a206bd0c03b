package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/law-makers/shiptrack/internal/utils/headers"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Fleet
	ShipsFile    string
	DefaultOrgID string

	// Tracking page
	URLTemplate       string
	NavigationTimeout time.Duration
	ConsentTimeout    time.Duration
	ActionTimeout     time.Duration
	SettleDelay       time.Duration
	HoverDelay        time.Duration
	ConsentSelector   string
	MarkerSelector    string
	PopupSelector     string
	ClipX             float64
	ClipY             float64
	ClipWidth         float64
	ClipHeight        float64

	// Extraction
	CoordinatePolicy string
	Countries        []string
	TimeZone         string
	Location         *time.Location

	// Browser
	ChromePath    string
	Headless      bool
	UserAgent     string
	WindowWidth   int
	WindowHeight  int
	Proxies       []string
	ProxyCooldown time.Duration
	// Headers are extra "Key: Value" request headers sent on navigation;
	// ExtraHeaders is their parsed form.
	Headers       []string
	ExtraHeaders  map[string]string
	NavInterval   time.Duration
	NavBurst      int

	// Store
	StoreDriver  string
	DatabaseURL  string
	SQLitePath   string
	Migrate      bool
	KnownKeysMax int
	KnownKeysTTL time.Duration

	// Images
	SupabaseURL string
	StorageKey  string
	ImageBucket string
	// ImageDir is the local sink used when no object storage is configured.
	ImageDir string
	// ImageCopyDir, when set, receives a copy of every uploaded image.
	ImageCopyDir string

	// Watch mode
	WatchInterval   time.Duration
	StatusAddr      string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Defaults returns a Config with every default applied
func Defaults() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		ShipsFile:         DefaultShipsFile,
		URLTemplate:       DefaultURLTemplate,
		NavigationTimeout: DefaultNavigationTimeout,
		ConsentTimeout:    DefaultConsentTimeout,
		ActionTimeout:     DefaultActionTimeout,
		SettleDelay:       DefaultSettleDelay,
		HoverDelay:        DefaultHoverDelay,
		ConsentSelector:   DefaultConsentSelector,
		MarkerSelector:    DefaultMarkerSelector,
		PopupSelector:     DefaultPopupSelector,
		ClipX:             DefaultClipX,
		ClipY:             DefaultClipY,
		ClipWidth:         DefaultClipWidth,
		ClipHeight:        DefaultClipHeight,
		CoordinatePolicy:  DefaultCoordinatePolicy,
		Countries:         append([]string(nil), DefaultCountries...),
		TimeZone:          DefaultTimeZone,
		Headless:          DefaultBrowserHeadless,
		UserAgent:         DefaultUserAgent,
		WindowWidth:       DefaultWindowWidth,
		WindowHeight:      DefaultWindowHeight,
		ProxyCooldown:     DefaultProxyCooldown,
		NavInterval:       DefaultNavInterval,
		NavBurst:          DefaultNavBurst,
		StoreDriver:       DefaultStoreDriver,
		SQLitePath:        DefaultSQLitePath,
		Migrate:           true,
		KnownKeysMax:      DefaultKnownKeysMax,
		KnownKeysTTL:      DefaultKnownKeysTTL,
		ImageBucket:       DefaultImageBucket,
		ImageDir:          DefaultImageDir,
		WatchInterval:     DefaultWatchInterval,
		StatusAddr:        DefaultStatusAddr,
		ShutdownTimeout:   DefaultShutdownTimeout,
	}
}

// Load builds a Config from defaults, the .env file, environment variables
// and CLI flags, in increasing precedence. cmd may be nil.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	envFile := DefaultEnvFile
	if s := flagString(cmd, "env-file"); s != "" {
		envFile = s
	}
	// Existing environment variables win over the file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}

	driverSet, err := applyEnv(cfg)
	if err != nil {
		return nil, err
	}
	flagDriverSet, err := applyFlags(cfg, cmd)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL != "" && !driverSet && !flagDriverSet {
		cfg.StoreDriver = "postgres"
	}

	if cfg.SupabaseURL != "" && cfg.StorageKey == "" {
		key, err := StorageKey()
		if err != nil {
			return nil, fmt.Errorf("read storage key from keyring: %w", err)
		}
		cfg.StorageKey = key
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides cfg from the environment and reports whether the store
// driver was set explicitly.
func applyEnv(cfg *Config) (bool, error) {
	var errs []error
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	list := func(key string, dst *[]string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = splitList(v)
		}
	}

	str("SUPABASE_URL", &cfg.SupabaseURL)
	str("SUPABASE_SERVICE_ROLE_KEY", &cfg.StorageKey)
	str("USER_ORG_ID", &cfg.DefaultOrgID)
	str("DATABASE_URL", &cfg.DatabaseURL)

	str("SHIPTRACK_LOG_LEVEL", &cfg.LogLevel)
	boolean("SHIPTRACK_JSON_LOG", &cfg.JSONLog)
	str("SHIPTRACK_SHIPS_FILE", &cfg.ShipsFile)
	str("SHIPTRACK_URL_TEMPLATE", &cfg.URLTemplate)
	dur("SHIPTRACK_NAVIGATION_TIMEOUT", &cfg.NavigationTimeout)
	dur("SHIPTRACK_CONSENT_TIMEOUT", &cfg.ConsentTimeout)
	dur("SHIPTRACK_ACTION_TIMEOUT", &cfg.ActionTimeout)
	dur("SHIPTRACK_SETTLE_DELAY", &cfg.SettleDelay)
	dur("SHIPTRACK_HOVER_DELAY", &cfg.HoverDelay)
	str("SHIPTRACK_COORDINATE_POLICY", &cfg.CoordinatePolicy)
	list("SHIPTRACK_COUNTRIES", &cfg.Countries)
	str("SHIPTRACK_TIMEZONE", &cfg.TimeZone)
	str("SHIPTRACK_CHROME_PATH", &cfg.ChromePath)
	boolean("SHIPTRACK_HEADLESS", &cfg.Headless)
	str("SHIPTRACK_USER_AGENT", &cfg.UserAgent)
	list("SHIPTRACK_PROXIES", &cfg.Proxies)
	if v := strings.TrimSpace(os.Getenv("SHIPTRACK_HEADERS")); v != "" {
		cfg.Headers = headers.Lines(v)
	}
	dur("SHIPTRACK_NAV_INTERVAL", &cfg.NavInterval)
	integer("SHIPTRACK_NAV_BURST", &cfg.NavBurst)
	str("SHIPTRACK_STORE", &cfg.StoreDriver)
	str("SHIPTRACK_SQLITE_PATH", &cfg.SQLitePath)
	boolean("SHIPTRACK_MIGRATE", &cfg.Migrate)
	str("SHIPTRACK_IMAGE_BUCKET", &cfg.ImageBucket)
	str("SHIPTRACK_IMAGE_DIR", &cfg.ImageDir)
	dur("SHIPTRACK_WATCH_INTERVAL", &cfg.WatchInterval)
	str("SHIPTRACK_STATUS_ADDR", &cfg.StatusAddr)
	list("SHIPTRACK_CORS_ORIGINS", &cfg.CORSOrigins)

	return strings.TrimSpace(os.Getenv("SHIPTRACK_STORE")) != "", errors.Join(errs...)
}

// applyFlags overrides cfg from flags the user actually set
func applyFlags(cfg *Config, cmd *cobra.Command) (bool, error) {
	if cmd == nil {
		return false, nil
	}
	if flagBool(cmd, "verbose") {
		cfg.LogLevel = "debug"
	} else if flagBool(cmd, "quiet") {
		cfg.LogLevel = "error"
	}
	if flagBool(cmd, "json") {
		cfg.JSONLog = true
	}
	if s := flagString(cmd, "ships"); s != "" {
		cfg.ShipsFile = s
	}
	if s := flagString(cmd, "policy"); s != "" {
		cfg.CoordinatePolicy = s
	}
	if s := flagString(cmd, "timezone"); s != "" {
		cfg.TimeZone = s
	}
	if s := flagString(cmd, "chrome-path"); s != "" {
		cfg.ChromePath = s
	}
	if s := flagString(cmd, "user-agent"); s != "" {
		cfg.UserAgent = s
	}
	if s := flagString(cmd, "proxy"); s != "" {
		cfg.Proxies = splitList(s)
	}
	if f := cmd.Flags().Lookup("header"); f != nil && f.Changed {
		h, err := cmd.Flags().GetStringArray("header")
		if err != nil {
			return false, fmt.Errorf("--header: %w", err)
		}
		cfg.Headers = h
	}
	if s := flagString(cmd, "database-url"); s != "" {
		cfg.DatabaseURL = s
	}
	if s := flagString(cmd, "sqlite-path"); s != "" {
		cfg.SQLitePath = s
	}
	if s := flagString(cmd, "image-dir"); s != "" {
		cfg.ImageCopyDir = s
	}
	if f := cmd.Flags().Lookup("headless"); f != nil && f.Changed {
		b, err := strconv.ParseBool(f.Value.String())
		if err != nil {
			return false, fmt.Errorf("--headless: %w", err)
		}
		cfg.Headless = b
	}
	if s := flagString(cmd, "timeout"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return false, fmt.Errorf("--timeout: %w", err)
		}
		cfg.NavigationTimeout = d
	}
	driverSet := false
	if s := flagString(cmd, "store"); s != "" {
		cfg.StoreDriver = s
		driverSet = true
	}
	return driverSet, nil
}

// flagString returns the value of a flag the user set, or ""
func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return ""
	}
	return strings.TrimSpace(f.Value.String())
}

func flagBool(cmd *cobra.Command, name string) bool {
	return flagString(cmd, name) == "true"
}

// splitList splits a comma or whitespace separated list
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
