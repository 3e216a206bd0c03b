package fleet

import (
	"context"

	"github.com/law-makers/shiptrack/pkg/models"
)

// Clip is a page region in CSS pixels
type Clip struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Browser opens one isolated page session per ship
type Browser interface {
	Open(ctx context.Context, ship models.ShipConfig) (Page, error)
}

// Page is a live tracking page. Every method honors the context deadline.
type Page interface {
	// Navigate loads url and waits for the page load.
	Navigate(ctx context.Context, url string) error
	// Click waits for selector to become visible and clicks it. A selector
	// that never appears before the deadline reports false without error.
	Click(ctx context.Context, selector string) (bool, error)
	// Hover moves the mouse to the center of the first element matching
	// selector, reporting false when there is none.
	Hover(ctx context.Context, selector string) (bool, error)
	// Text returns the rendered text of the page body.
	Text(ctx context.Context) (string, error)
	// Screenshot captures a PNG framed on frameSelector when present,
	// falling back to clip.
	Screenshot(ctx context.Context, frameSelector string, clip Clip) ([]byte, error)
	// Close releases the session. It must be safe to call once on every path.
	Close() error
}

// Sink persists trips and ship states
type Sink interface {
	InsertTrip(ctx context.Context, trip models.TripRecord) error
	UpsertShip(ctx context.Context, state models.ShipState) error
}

// ImageStore uploads a captured image and returns its public URL
type ImageStore interface {
	Upload(ctx context.Context, key string, png []byte) (string, error)
}

// Limiter paces navigations to the tracking site
type Limiter interface {
	Wait(ctx context.Context, url string) error
}

// Recorder receives run metrics
type Recorder interface {
	ShipProcessed(outcome string, phase string, seconds float64)
	TripInserted()
	Warning(code string)
}

type nopRecorder struct{}

func (nopRecorder) ShipProcessed(string, string, float64) {}
func (nopRecorder) TripInserted()                         {}
func (nopRecorder) Warning(string)                        {}
