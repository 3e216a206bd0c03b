// Package browser runs tracking pages in headless Chrome through chromedp.
// Every ship gets its own browser process so no state leaks between ships.
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/shiptrack/internal/fleet"
	"github.com/law-makers/shiptrack/internal/proxy"
	"github.com/law-makers/shiptrack/pkg/models"
)

// DefaultUserAgent is a current desktop Chrome; the tracking site serves a
// reduced page to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// Options configures launched browsers
type Options struct {
	ChromePath   string
	Headless     bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
	// Proxies, when non-empty, gives each session the next healthy proxy.
	Proxies *proxy.Pool
	// Headers are sent with every request the tab makes.
	Headers map[string]string
}

// Launcher starts one browser per ship
type Launcher struct {
	opts       Options
	chromePath string
}

// NewLauncher resolves the Chrome binary once
func NewLauncher(opts Options) *Launcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.WindowWidth <= 0 || opts.WindowHeight <= 0 {
		opts.WindowWidth, opts.WindowHeight = 1920, 1080
	}
	l := &Launcher{opts: opts, chromePath: FindChrome(opts.ChromePath)}
	log.Debug().
		Str("path", l.chromePath).
		Str("version", Version(l.chromePath)).
		Bool("headless", opts.Headless).
		Int("proxies", opts.Proxies.Len()).
		Msg("Browser launcher ready")
	return l
}

func (l *Launcher) allocatorOptions(proxyServer string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("force-color-profile", "srgb"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.WindowSize(l.opts.WindowWidth, l.opts.WindowHeight),
		chromedp.UserAgent(l.opts.UserAgent),
	}
	if l.chromePath != "" {
		opts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(l.chromePath)}, opts...)
	}
	if l.opts.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(proxyServer))
	}
	return opts
}

// Open launches a browser and returns its first tab as a fleet.Page. The
// browser outlives ctx; it is released only by Close.
func (l *Launcher) Open(ctx context.Context, ship models.ShipConfig) (fleet.Page, error) {
	proxyServer := l.opts.Proxies.Next()
	logger := zerolog.Ctx(ctx)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions(proxyServer)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		logger.Debug().Msgf(format, args...)
	}))

	s := &Session{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		proxyServer: proxyServer,
		proxies:     l.opts.Proxies,
		headers:     l.opts.Headers,
	}

	// The first Run starts the browser and binds it to browserCtx, so it
	// must not run under a derived deadline. ctx can still abort it.
	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err != nil {
		s.release()
		l.opts.Proxies.MarkFailed(proxyServer)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("launch chrome for %s: %v: %w", ship.Name, err, ctx.Err())
		}
		return nil, fmt.Errorf("launch chrome for %s: %w", ship.Name, err)
	}

	ev := logger.Debug().Str("chrome", l.chromePath)
	if proxyServer != "" {
		ev = ev.Str("proxy", proxyServer)
	}
	ev.Msg("Browser session started")
	return s, nil
}
