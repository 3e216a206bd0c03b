package fleet

import (
	"time"

	"github.com/law-makers/shiptrack/internal/reconcile"
	"github.com/law-makers/shiptrack/pkg/models"
)

// Result is the outcome of one ship in one run
type Result struct {
	Ship models.ShipConfig
	URL  string
	// Phase is PhaseDone or PhaseFailed once RunShip returns.
	Phase Phase
	// FailedIn is the last working phase entered; where the ship failed
	// when Phase is PhaseFailed.
	FailedIn Phase
	// Trail lists every phase entered, in order.
	Trail        []Phase
	Err          error
	Warnings     []error
	Snapshot     *models.VesselSnapshot
	Decision     reconcile.Decision
	TripInserted bool
	ImageURL     string
	Started      time.Time
	Duration     time.Duration
}

// Failed reports whether the ship ended in PhaseFailed
func (r Result) Failed() bool {
	return r.Phase == PhaseFailed
}

// Summary is the outcome of one fleet run
type Summary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Results  []Result
}

// Counts returns the number of ships done and failed
func (s Summary) Counts() (done, failed int) {
	for _, r := range s.Results {
		if r.Failed() {
			failed++
		} else {
			done++
		}
	}
	return done, failed
}

// TripsInserted returns how many new trips the run recorded
func (s Summary) TripsInserted() int {
	n := 0
	for _, r := range s.Results {
		if r.TripInserted {
			n++
		}
	}
	return n
}
