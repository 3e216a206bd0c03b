package fleet

// Phase is a state of the per-ship state machine
type Phase string

const (
	PhaseLaunching            Phase = "launching"
	PhaseNavigating           Phase = "navigating"
	PhaseWaitingCookieConsent Phase = "waiting_cookie_consent"
	PhaseSettling             Phase = "settling"
	PhaseExtracting           Phase = "extracting"
	PhaseReconciling          Phase = "reconciling"
	PhasePersisting           Phase = "persisting"
	PhaseClosing              Phase = "closing"

	PhaseDone   Phase = "done"
	PhaseFailed Phase = "failed"
)

// Terminal reports whether p ends the state machine
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}
