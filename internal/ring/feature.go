package ring

import "math"

// Tunables (compile-time constants), spec §6.
const (
	restBandG       = 0.50
	impactBandG     = 1.25
	tapExtremeG     = 3.0
	scrollRadPerSec = 5.0
	scrollFloorRad  = 0.4
	scrollCancelRad = math.Pi / 4
	sessionGapMS    = 2000
	intentInitialMS = 2000
	intentExtraMS   = 500
)

// Window is the per-sample output of the feature extractor (spec §3
// SessionWindow).
type Window struct {
	RawNetG            float64
	RawScrollPos        float64
	FilteredScrollPos   float64
	FilteredScrollDiff  float64
	FilteredNetG        float64
	IsTap               bool
	IsScrollUp          bool
	IsScrollDown        bool
	InRestBand          bool
}

// Extractor holds the running history a new sample is classified against:
// the two-slot filtered_net_g coalescing history, the previous filtered
// scroll position, and the within-session sample counter (spec §3 History,
// §9 "session identity").
type Extractor struct {
	sampleNumber          int
	prevFilteredScrollPos float64
	netGHistory           twoSlot
	sessionID             int
}

// NewExtractor returns an extractor ready for a fresh session.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// SessionID identifies the current interaction; it increments every time
// BeginSample reports a session reset.
func (e *Extractor) SessionID() int { return e.sessionID }

// BeginSample advances session bookkeeping for an incoming sample given the
// elapsed monotonic-clock gap since the previous sample. A gap over 2000ms,
// or firstEver being set (the controller sets it for the first sample after
// startup or after a Disconnect), starts a new session: history is cleared
// and the sample counter restarts at zero.
func (e *Extractor) BeginSample(gapMS int64, firstEver bool) {
	if firstEver || gapMS > sessionGapMS {
		e.sampleNumber = 0
		e.prevFilteredScrollPos = 0
		e.netGHistory.reset()
		e.sessionID++
	}
}

// Extract classifies one sample and updates the extractor's running history.
// verifying selects the always-rest classification used in VerifyWakeup and
// VerifySelect (spec §4.3 "Verification classification"); otherwise the
// three-band UserInput discriminator applies.
func (e *Extractor) Extract(sample Sample, verifying bool) Window {
	x, y, z := float64(sample.RawX), float64(sample.RawY), float64(sample.RawZ)
	rawNetG := math.Abs(math.Sqrt(x*x+y*y+z*z)/countsPerG - 1)
	rawScrollPos := math.Atan2(y, x)

	var w Window
	w.RawNetG = rawNetG
	w.RawScrollPos = rawScrollPos

	switch {
	case verifying:
		w.FilteredScrollPos = rawScrollPos
		w.FilteredScrollDiff = e.diffFromPrevious(rawScrollPos)
		w.FilteredNetG = 0
	case e.sampleNumber < 2:
		w.FilteredScrollPos = rawScrollPos
		w.FilteredScrollDiff = e.diffFromPrevious(rawScrollPos)
		w.FilteredNetG = math.Max(0, restBandG)
		w.InRestBand = true
	case rawNetG < restBandG:
		w.FilteredScrollPos = rawScrollPos
		w.FilteredScrollDiff = e.diffFromPrevious(rawScrollPos)
		w.FilteredNetG = 0
		w.InRestBand = true
	case rawNetG > impactBandG:
		w.FilteredScrollPos = e.prevFilteredScrollPos
		w.FilteredScrollDiff = 0
		w.FilteredNetG = rawNetG
	default: // ambiguous band: held silently, no event
		w.FilteredScrollPos = e.prevFilteredScrollPos
		w.FilteredScrollDiff = 0
		w.FilteredNetG = 0
	}

	if !verifying && e.sampleNumber >= 2 {
		w.IsTap = e.isTap(w.FilteredNetG)
		if !w.IsTap {
			threshold := ScrollThreshold(sample.DeltaMS)
			w.IsScrollUp = w.FilteredScrollDiff > threshold
			w.IsScrollDown = w.FilteredScrollDiff < -threshold
		}
	}

	e.netGHistory.push(w.FilteredNetG)
	e.prevFilteredScrollPos = w.FilteredScrollPos
	e.sampleNumber++

	return w
}

// diffFromPrevious applies spec §4.3: the delta is 0 on the first sample of
// a session, otherwise the wrap-aware delta against the previous filtered
// scroll position.
func (e *Extractor) diffFromPrevious(scrollPos float64) float64 {
	if e.sampleNumber == 0 {
		return 0
	}
	return wrapDelta(scrollPos, e.prevFilteredScrollPos)
}

// isTap evaluates spec §4.3's tap predicate against the history *before*
// the current sample is pushed into it: a single-sample spike bracketed by
// rest, or an extreme isolated force.
func (e *Extractor) isTap(currentFilteredNetG float64) bool {
	hist0 := e.netGHistory.oldest()
	hist1 := e.netGHistory.newest()
	return hist1 > tapExtremeG || (hist0 == 0 && hist1 > impactBandG && currentFilteredNetG == 0)
}

// ScrollThreshold is the angular-rate threshold used both by the UserInput
// scroll predicate and by the verification state's scroll-up detection
// (spec §4.3, §4.4): max(5.0 rad/s * dt, 0.4 rad).
func ScrollThreshold(deltaMS int64) float64 {
	return math.Max(scrollRadPerSec*float64(deltaMS)/1000.0, scrollFloorRad)
}

// wrapDelta computes the wrap-aware angular delta Δ(c, p) for two angles in
// [-π, π], returning a value in [-π, π] that preserves the sign of motion
// (spec §4.3). An exact half turn gives π when c ≤ 0 ≤ p and -π when
// p ≤ 0 ≤ c.
func wrapDelta(c, p float64) float64 {
	switch {
	case c > 0 && p > 0, c < 0 && p < 0:
		return c - p
	case c <= 0 && p >= 0:
		if p-c < math.Pi {
			return c - p
		}
		return 2*math.Pi + (c - p)
	default: // c >= 0 && p <= 0
		if c-p < math.Pi {
			return c - p
		}
		return (c - p) - 2*math.Pi
	}
}
