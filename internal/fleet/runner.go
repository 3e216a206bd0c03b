// Package fleet drives one browser session per configured ship, strictly one
// ship at a time, and feeds the extracted snapshot to the reconciler and sinks.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/shiptrack/internal/extract"
	"github.com/law-makers/shiptrack/internal/imagestore"
	"github.com/law-makers/shiptrack/internal/reconcile"
	"github.com/law-makers/shiptrack/internal/runctx"
	"github.com/law-makers/shiptrack/internal/snapshot"
	"github.com/law-makers/shiptrack/pkg/models"
)

// ShipIDPlaceholder is replaced by the ship's site id in the URL template
const ShipIDPlaceholder = "{shipid}"

// Options are the per-ship timing and page settings
type Options struct {
	URLTemplate       string
	NavigationTimeout time.Duration
	ConsentTimeout    time.Duration
	ActionTimeout     time.Duration
	SettleDelay       time.Duration
	HoverDelay        time.Duration
	ConsentSelector   string
	MarkerSelector    string
	PopupSelector     string
	Clip              Clip
	Location          *time.Location
	DefaultOrgID      string
}

// Deps are the collaborators of a Runner. Images, Limiter, Recorder and
// Logger are optional.
type Deps struct {
	Browser    Browser
	Extractor  *extract.Extractor
	Reconciler *reconcile.Reconciler
	Sink       Sink
	Images     ImageStore
	Limiter    Limiter
	Recorder   Recorder
	Logger     *zerolog.Logger
}

// Runner is the fleet coordinator
type Runner struct {
	deps  Deps
	opts  Options
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Runner
func New(deps Deps, opts Options) *Runner {
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = &log.Logger
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Runner{
		deps:  deps,
		opts:  opts,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// TrackingURL builds the page URL for ship
func (r *Runner) TrackingURL(ship models.ShipConfig) string {
	return TrackingURL(r.opts.URLTemplate, ship)
}

// TrackingURL fills the site id into template
func TrackingURL(template string, ship models.ShipConfig) string {
	return strings.ReplaceAll(template, ShipIDPlaceholder, ship.SiteID)
}

// Run processes ships sequentially. A ship's failure is recorded in its
// Result and never stops the loop; only context cancellation does.
// onResult, when set, is called after each ship.
func (r *Runner) Run(ctx context.Context, ships []models.ShipConfig, onResult func(Result)) Summary {
	ctx = runctx.WithRun(ctx)
	rc := runctx.FromContext(ctx)
	logger := r.deps.Logger.With().Str("run_id", rc.RunID).Logger()
	ctx = logger.WithContext(ctx)

	summary := Summary{RunID: rc.RunID, Started: rc.StartTime}
	logger.Info().Int("ships", len(ships)).Msg("Fleet run started")

	for _, ship := range ships {
		if err := ctx.Err(); err != nil {
			logger.Warn().Err(err).Int("remaining", len(ships)-len(summary.Results)).Msg("Fleet run cancelled")
			break
		}
		res := r.RunShip(ctx, ship)
		summary.Results = append(summary.Results, res)
		if onResult != nil {
			onResult(res)
		}
	}

	summary.Duration = r.now().Sub(summary.Started)
	done, failed := summary.Counts()
	logger.Info().
		Int("done", done).
		Int("failed", failed).
		Int("trips_inserted", summary.TripsInserted()).
		Dur("duration", summary.Duration).
		Msg("Fleet run finished")
	return summary
}

// RunShip drives one ship through the state machine. The page session is
// closed on every path once it has been opened.
func (r *Runner) RunShip(ctx context.Context, ship models.ShipConfig) (res Result) {
	logger := r.loggerFrom(ctx).With().Str("ship", ship.Name).Str("vessel_id", ship.VesselID).Logger()
	ctx = logger.WithContext(ctx)

	res = Result{Ship: ship, URL: r.TrackingURL(ship), Started: r.now()}
	defer func() {
		res.Duration = r.now().Sub(res.Started)
		failedIn := ""
		if res.Failed() {
			failedIn = string(res.FailedIn)
		}
		r.deps.Recorder.ShipProcessed(string(res.Phase), failedIn, res.Duration.Seconds())
	}()

	r.enter(ctx, &res, PhaseLaunching)
	page, err := r.deps.Browser.Open(ctx, ship)
	if err != nil {
		r.fail(ctx, &res, NewPhaseError(ErrCodeLaunch, PhaseLaunching, "open browser session", err).WithRetry())
		res.Phase = PhaseFailed
		r.enter(ctx, &res, PhaseFailed)
		return res
	}

	defer r.close(ctx, page, &res)

	if err := r.drive(ctx, page, &res); err != nil {
		r.fail(ctx, &res, err)
	}
	return res
}

func (r *Runner) drive(ctx context.Context, page Page, res *Result) error {
	ship := res.Ship
	logger := zerolog.Ctx(ctx)

	r.enter(ctx, res, PhaseNavigating)
	if r.deps.Limiter != nil {
		if err := r.deps.Limiter.Wait(ctx, res.URL); err != nil {
			return NewPhaseError(ErrCodeNavigation, PhaseNavigating, "wait for rate limiter", err)
		}
	}
	navCtx, cancel := withTimeout(ctx, r.opts.NavigationTimeout)
	err := page.Navigate(navCtx, res.URL)
	cancel()
	if err != nil {
		code := ErrCodeNavigation
		if errors.Is(err, context.DeadlineExceeded) {
			code = ErrCodeTimeout
		}
		return NewPhaseError(code, PhaseNavigating, "navigate", err).
			WithRetry().
			WithDetail("url", res.URL).
			WithDetail("timeout", r.opts.NavigationTimeout.String())
	}

	r.enter(ctx, res, PhaseWaitingCookieConsent)
	if r.opts.ConsentSelector != "" {
		consentCtx, cancel := withTimeout(ctx, r.opts.ConsentTimeout)
		clicked, err := page.Click(consentCtx, r.opts.ConsentSelector)
		cancel()
		switch {
		case err != nil:
			logger.Debug().Err(err).Msg("Cookie consent click failed, continuing")
		case clicked:
			logger.Debug().Msg("Cookie consent accepted")
		default:
			logger.Debug().Msg("No cookie consent prompt")
		}
	}

	r.enter(ctx, res, PhaseSettling)
	if err := r.sleep(ctx, r.opts.SettleDelay); err != nil {
		return NewPhaseError(ErrCodeNavigation, PhaseSettling, "settle", err)
	}
	if r.opts.MarkerSelector != "" {
		hoverCtx, cancel := withTimeout(ctx, r.opts.ActionTimeout)
		hovered, err := page.Hover(hoverCtx, r.opts.MarkerSelector)
		cancel()
		if err != nil {
			logger.Debug().Err(err).Msg("Marker hover failed, continuing")
		} else if hovered {
			if err := r.sleep(ctx, r.opts.HoverDelay); err != nil {
				return NewPhaseError(ErrCodeNavigation, PhaseSettling, "settle after hover", err)
			}
		}
	}

	r.enter(ctx, res, PhaseExtracting)
	textCtx, cancel := withTimeout(ctx, r.opts.ActionTimeout)
	text, err := page.Text(textCtx)
	cancel()
	if err != nil {
		return NewPhaseError(ErrCodeExtraction, PhaseExtracting, "read page text", err).WithRetry()
	}
	fields, err := r.deps.Extractor.Extract(text)
	if err != nil {
		return NewPhaseError(ErrCodeExtraction, PhaseExtracting, "extract vessel fields", err).
			WithRetry().
			WithDetail("policy", string(r.deps.Extractor.Policy())).
			WithDetail("text_length", len(text))
	}
	snap := snapshot.Build(fields, r.now(), r.opts.Location)
	res.Snapshot = &snap
	logEvent := logger.Debug().Str("route", snap.RouteText()).Float64("speed", snap.SpeedKnots).Float64("heading", snap.HeadingDegrees)
	if snap.Position != nil {
		logEvent = logEvent.Float64("lat", snap.Position.Lat()).Float64("lon", snap.Position.Lon())
	}
	logEvent.Msg("Snapshot extracted")

	r.enter(ctx, res, PhaseReconciling)
	decision, decideErr := r.deps.Reconciler.Decide(ctx, ship.VesselID, snap)
	res.Decision = decision
	if decideErr != nil {
		r.warn(ctx, res, NewPhaseError(ErrCodeStore, PhaseReconciling, "trip lookup", decideErr).WithRetry())
	}

	r.enter(ctx, res, PhasePersisting)
	if decideErr == nil && decision.Action == reconcile.ActionInsert {
		trip := r.tripRecord(ship, snap, decision.Key)
		if err := r.deps.Sink.InsertTrip(ctx, trip); err != nil {
			r.warn(ctx, res, NewPhaseError(ErrCodeStore, PhasePersisting, "insert trip", err).WithDetail("route", trip.Route))
		} else {
			r.deps.Reconciler.Inserted(decision.Key)
			r.deps.Recorder.TripInserted()
			res.TripInserted = true
			logger.Info().Str("route", trip.Route).Time("departure", trip.DepartureTime).Msg("New trip recorded")
		}
	}

	imageURL := r.captureImage(ctx, page, res)
	state := models.ShipState{
		VesselID:  ship.VesselID,
		Name:      ship.Name,
		Latitude:  snap.Latitude(),
		Longitude: snap.Longitude(),
		Speed:     snap.SpeedKnots,
		Heading:   snap.HeadingDegrees,
		ImageURL:  imageURL,
		Status:    models.ShipStatusActive,
		UpdatedAt: r.now().UTC(),
	}
	if err := r.deps.Sink.UpsertShip(ctx, state); err != nil {
		return NewPhaseError(ErrCodeStore, PhasePersisting, "upsert ship state", err)
	}
	if imageURL != nil {
		res.ImageURL = *imageURL
	}
	return nil
}

// captureImage screenshots the map and uploads it. Failures are warnings;
// the ship state is then written without an image reference.
func (r *Runner) captureImage(ctx context.Context, page Page, res *Result) *string {
	if r.deps.Images == nil {
		return nil
	}

	shotCtx, cancel := withTimeout(ctx, r.opts.ActionTimeout)
	png, err := page.Screenshot(shotCtx, r.opts.PopupSelector, r.opts.Clip)
	cancel()
	if err != nil {
		r.warn(ctx, res, NewPhaseError(ErrCodeScreenshot, PhasePersisting, "capture map screenshot", err))
		return nil
	}

	key := imagestore.KeyFor(res.Ship.Name)
	url, err := r.deps.Images.Upload(ctx, key, png)
	if err != nil {
		r.warn(ctx, res, NewPhaseError(ErrCodeUpload, PhasePersisting, "upload map image", err).WithDetail("key", key))
		return nil
	}
	return &url
}

func (r *Runner) tripRecord(ship models.ShipConfig, snap models.VesselSnapshot, key models.TripKey) models.TripRecord {
	org := ship.OrganizationID
	if org == "" {
		org = r.opts.DefaultOrgID
	}
	user := ship.UserID
	if user == "" {
		user = org
	}
	return models.TripRecord{
		UserID:           user,
		OrganizationID:   org,
		VesselID:         ship.VesselID,
		VesselName:       ship.Name,
		Name:             key.Route,
		Route:            key.Route,
		DepartureTime:    key.DepartureTime,
		EstimatedArrival: snap.EstimatedArrival,
		CreatedAt:        r.now().UTC(),
	}
}

func (r *Runner) close(ctx context.Context, page Page, res *Result) {
	r.enter(ctx, res, PhaseClosing)
	if err := page.Close(); err != nil {
		r.warn(ctx, res, NewPhaseError(ErrCodeCleanup, PhaseClosing, "close browser session", err))
	}
	if res.Err != nil {
		res.Phase = PhaseFailed
	} else {
		res.Phase = PhaseDone
	}
	r.enter(ctx, res, res.Phase)
}

func (r *Runner) enter(ctx context.Context, res *Result, p Phase) {
	res.Trail = append(res.Trail, p)
	if !p.Terminal() && p != PhaseClosing {
		res.FailedIn = p
	}
	zerolog.Ctx(ctx).Debug().Str("phase", string(p)).Msg("Phase")
}

func (r *Runner) fail(ctx context.Context, res *Result, err error) {
	var pe *PhaseError
	if !errors.As(err, &pe) {
		pe = NewPhaseError(ErrCodeNavigation, res.FailedIn, "unexpected failure", err)
	}
	pe.Ship = res.Ship.Name
	res.Err = pe
	zerolog.Ctx(ctx).Error().
		Err(pe.Underlying).
		Str("code", string(pe.Code)).
		Str("phase", string(pe.Phase)).
		Bool("retry", pe.Retry).
		Msg(pe.Message)
}

func (r *Runner) warn(ctx context.Context, res *Result, pe *PhaseError) {
	pe.Ship = res.Ship.Name
	res.Warnings = append(res.Warnings, pe)
	r.deps.Recorder.Warning(string(pe.Code))
	zerolog.Ctx(ctx).Warn().
		Err(pe.Underlying).
		Str("code", string(pe.Code)).
		Str("phase", string(pe.Phase)).
		Msg(pe.Message)
}

func (r *Runner) loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return r.deps.Logger
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("interrupted after waiting less than %s: %w", d, ctx.Err())
	}
}
