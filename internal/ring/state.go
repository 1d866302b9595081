package ring

import "math"

// wantsWave reports whether wave-gesture detection should be enabled for s
// (spec §3 invariant: enabled iff state is Idle).
func wantsWave(s ControllerState) bool { return s == Idle }

// wantsPolling reports whether raw-data polling should be active for s.
func wantsPolling(s ControllerState) bool {
	return s == UserInput || s == VerifyWakeup || s == VerifySelect
}

// wantsAccumulation reports whether absolute-position accumulation is
// active for s.
func wantsAccumulation(s ControllerState) bool {
	return s == VerifyWakeup || s == VerifySelect
}

// verifyOutcome names the control event and destination states for one of
// the two structurally identical verification episodes (VerifyWakeup,
// VerifySelect): they share every rule in spec §4.4 except which event
// confirms them and which state they return to.
type verifyOutcome struct {
	confirmEvent ControlEvent
	confirmTo    ControllerState
	cancelTo     ControllerState
	timeoutTo    ControllerState
}

func (c *Controller) wakeupOutcome() verifyOutcome {
	return verifyOutcome{
		confirmEvent: ConfirmWakeupIntent,
		confirmTo:    UserInput,
		cancelTo:     Idle,
		timeoutTo:    Idle,
	}
}

// selectOutcome implements design note (a): a confirmed selection returns
// to Idle by default. Set Controller.VerifySelectToUserInput to keep the
// alternative host policy of returning to UserInput instead.
func (c *Controller) selectOutcome() verifyOutcome {
	confirmTo := Idle
	if c.VerifySelectToUserInput {
		confirmTo = UserInput
	}
	return verifyOutcome{
		confirmEvent: ConfirmSelectionIntent,
		confirmTo:    confirmTo,
		cancelTo:     UserInput,
		timeoutTo:    UserInput,
	}
}

var verifyThresholds = [3]struct {
	rad   float64
	event ControlEvent
}{
	{math.Pi / 2, VerifyIntent25},
	{math.Pi, VerifyIntent50},
	{3 * math.Pi / 2, VerifyIntent75},
}

// stepVerification runs one sample through the shared VerifyWakeup /
// VerifySelect rule set (spec §4.4): accumulate absolute position, check
// confirm, then progress thresholds, then cancel, then timeout. At most one
// of Confirm*/Cancel*/Timeout fires per sample (testable property 6).
func (c *Controller) stepVerification(w Window, sample Sample, outcome verifyOutcome) {
	c.absPos += w.FilteredScrollDiff

	threshold := ScrollThreshold(sample.DeltaMS)
	scrollUp := w.FilteredNetG == 0 && w.FilteredScrollDiff > threshold

	if scrollUp && c.absPos >= c.verifyStartPos+2*math.Pi {
		c.controlSink().OnControlEvent(outcome.confirmEvent)
		c.enterState(outcome.confirmTo)
		return
	}

	if scrollUp {
		c.checkVerifyProgress()
	}

	if c.absPos < c.verifyStartPos-scrollCancelRad {
		c.controlSink().OnControlEvent(CancelIntent)
		c.enterState(outcome.cancelTo)
		return
	}

	if c.clock()-c.verifyStartTime > intentInitialMS {
		c.controlSink().OnControlEvent(Timeout)
		c.enterState(outcome.timeoutTo)
		return
	}
}

// checkVerifyProgress emits VerifyIntent25/50/75 the first time the
// rotation crosses each quarter-turn threshold, extending the deadline by
// 500ms on each crossing (spec §4.4).
func (c *Controller) checkVerifyProgress() {
	progress := c.absPos - c.verifyStartPos
	for i, t := range verifyThresholds {
		if !c.verifyCrossed[i] && progress >= t.rad {
			c.verifyCrossed[i] = true
			c.controlSink().OnControlEvent(t.event)
			c.verifyStartTime += intentExtraMS
		}
	}
}

// stepUserInput runs one sample through the UserInput rule set (spec §4.4):
// a tap starts a selection verification episode, otherwise a scroll
// predicate may fire. Mutually exclusive per testable property 3.
func (c *Controller) stepUserInput(w Window) {
	if w.InRestBand {
		c.absPos = w.RawScrollPos
	}

	switch {
	case w.IsTap:
		c.controlSink().OnControlEvent(ProvisionalSelectionIntent)
		c.verifyStartPos = c.absPos
		c.verifyStartTime = c.clock()
		c.verifyCrossed = [3]bool{}
		c.enterState(VerifySelect)
	case w.IsScrollUp:
		c.controlSink().OnControlEvent(ScrollUp)
	case w.IsScrollDown:
		c.controlSink().OnControlEvent(ScrollDown)
	}
}
