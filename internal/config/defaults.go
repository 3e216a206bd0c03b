package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultEnvFile           = ".env"
	DefaultShipsFile         = "ships.json"
	DefaultURLTemplate       = "https://www.marinetraffic.com/en/ais/home/shipid:{shipid}/zoom:10"
	DefaultNavigationTimeout = 90 * time.Second
	DefaultConsentTimeout    = 7 * time.Second
	DefaultActionTimeout     = 30 * time.Second
	DefaultSettleDelay       = 7 * time.Second
	DefaultHoverDelay        = 4 * time.Second
	DefaultConsentSelector   = `button[class*="css-1yp8yiu"] span`
	DefaultMarkerSelector    = "div.leaflet-marker-icon"
	DefaultPopupSelector     = ".leaflet-popup-content-wrapper"
	DefaultClipX             = 1150
	DefaultClipY             = 250
	DefaultClipWidth         = 750
	DefaultClipHeight        = 850
	DefaultWindowWidth       = 1920
	DefaultWindowHeight      = 1080
	DefaultCoordinatePolicy  = "lenient"
	DefaultTimeZone          = "UTC"
	DefaultBrowserHeadless   = true
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	DefaultProxyCooldown     = 5 * time.Minute
	DefaultNavInterval       = 2 * time.Second
	DefaultNavBurst          = 1
	DefaultStoreDriver       = "sqlite"
	DefaultSQLitePath        = "data/shiptrack.db"
	DefaultKnownKeysMax      = 10000
	DefaultKnownKeysTTL      = 24 * time.Hour
	DefaultImageBucket       = "ship-images"
	DefaultImageDir          = "data/images"
	DefaultWatchInterval     = 15 * time.Minute
	DefaultStatusAddr        = ":9090"
	DefaultShutdownTimeout   = 30 * time.Second
)

// DefaultCountries are the country codes tried for national routes
var DefaultCountries = []string{"VN"}
