package ring

import "context"

// Controller is the top-level orchestrator: it owns a Link, routes inbound
// notifications through the frame router, sample decoder, and feature
// extractor, drives the wakeup/select state machine, and issues outbound
// commands. One goroutine (readLoop) ever touches controller state, so no
// internal locking is needed; callers may call Connect/Disconnect from any
// goroutine.
type Controller struct {
	// VerifySelectToUserInput selects the alternative host policy from
	// design note (a): a confirmed selection returns to UserInput instead
	// of Idle. Read on every sample processed in VerifySelect; set before
	// Connect.
	VerifySelectToUserInput bool

	link     Link
	extractor *Extractor
	issuer   *commandIssuer
	logger   Logger

	stateSinkImpl   StateSink
	controlSinkImpl ControlSink
	rawSinkImpl     RawSink

	clockFn func() int64

	state ControllerState

	sampleSeen    bool
	lastReceivedAt int64

	absPos         float64
	verifyStartPos float64
	verifyStartTime int64
	verifyCrossed  [3]bool

	done chan struct{}
}

// NewController wires a Link to a fresh state machine. logger may be nil,
// in which case log output is discarded.
func NewController(link Link, logger Logger) *Controller {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Controller{
		link:      link,
		extractor: NewExtractor(),
		issuer:    newCommandIssuer(link, logger),
		logger:    logger,
		clockFn:   nowMonotonicMS,
		state:     Disconnected,
		done:      make(chan struct{}),
	}
}

// SetStateSink installs the observer for state transitions.
func (c *Controller) SetStateSink(s StateSink) { c.stateSinkImpl = s }

// SetControlSink installs the observer for gesture/control events.
func (c *Controller) SetControlSink(s ControlSink) { c.controlSinkImpl = s }

// SetRawSink installs the optional diagnostic sample observer.
func (c *Controller) SetRawSink(s RawSink) { c.rawSinkImpl = s }

// State reports the controller's current state.
func (c *Controller) State() ControllerState { return c.state }

// Wait blocks until the read loop started by Connect has exited, which
// happens once Notifications() closes following Disconnect or a transport
// drop.
func (c *Controller) Wait() { <-c.done }

// AbsolutePosition reports the controller's current accumulated/tracked
// scroll position, exposed mainly for tests.
func (c *Controller) AbsolutePosition() float64 { return c.absPos }

// SessionID identifies the current interaction (spec §9 "session identity"),
// exposed so sinks like the telemetry log can tag records without reaching
// into the extractor directly.
func (c *Controller) SessionID() int { return c.extractor.SessionID() }

func (c *Controller) stateSink() StateSink {
	if c.stateSinkImpl == nil {
		return StateSinkFunc(func(ControllerState, ControllerState) {})
	}
	return c.stateSinkImpl
}

func (c *Controller) controlSink() ControlSink {
	if c.controlSinkImpl == nil {
		return ControlSinkFunc(func(ControlEvent) {})
	}
	return c.controlSinkImpl
}

func (c *Controller) clock() int64 { return c.clockFn() }

// Connect connects the link, walks Disconnected -> Scanning -> Connecting ->
// Connected -> Idle, and starts the notification read loop in a new
// goroutine. Returns once the link reports connected; the read loop runs
// until Notifications() closes or Disconnect is called.
func (c *Controller) Connect(ctx context.Context) error {
	c.transition(Scanning)
	c.transition(Connecting)

	if err := c.link.Connect(ctx); err != nil {
		c.transition(Disconnected)
		return err
	}

	c.transition(Connected)
	c.enterState(Idle)

	go c.readLoop()
	return nil
}

// Disconnect tears down the link and moves to Disconnected from any state.
func (c *Controller) Disconnect() error {
	c.issuer.pollOutstanding = false
	err := c.link.Disconnect()
	c.transition(Disconnected)
	c.sampleSeen = false
	return err
}

// transition is a bare state-change notification with no wave/poll side
// effects, used for the Connect bootstrap sequence where no command is
// ever sent (spec §4.4: Scanning/Connecting/Connected carry no I/O).
func (c *Controller) transition(to ControllerState) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	c.stateSink().OnStateChange(from, to)
}

// enterState moves into a new state, toggling wave detection and raw
// polling whenever the new state's requirement differs from the old one's
// (spec §3 invariants), then notifies the state sink last (spec §4.4
// ordering rule: control event before state change, already satisfied by
// callers emitting their event before calling enterState).
func (c *Controller) enterState(to ControllerState) {
	from := c.state
	if from == to {
		return
	}

	switch {
	case wantsWave(to) && !wantsWave(from):
		c.issuer.send(OpEnableWave)
		c.issuer.send(OpWaitingForWave)
	case !wantsWave(to) && wantsWave(from):
		c.issuer.send(OpDisableWave)
	}

	// Entering a polling state primes the one-outstanding-request cycle
	// (spec §4.5): without this, the first "get all raw data" request would
	// never be sent, since the only other call site (handleAccelFrame) only
	// fires once an accel frame has already arrived.
	if wantsPolling(to) && !wantsPolling(from) {
		c.issuer.enqueuePoll()
	}

	if !wantsPolling(to) && wantsPolling(from) {
		c.issuer.pollOutstanding = false
	}

	c.state = to
	c.stateSink().OnStateChange(from, to)
}

func (c *Controller) readLoop() {
	for data := range c.link.Notifications() {
		c.handleNotification(data)
	}
	if c.state != Disconnected {
		c.transition(Disconnected)
	}
	close(c.done)
}

func (c *Controller) handleNotification(data [16]byte) {
	switch routeFrame(data[:]) {
	case frameAccel:
		c.handleAccelFrame(data[:])
	case frameWaveDetected:
		c.handleWaveDetected()
	default:
		c.logger.Debug("dropped unrecognized frame", "len", len(data), "opcode", data[:2])
	}
}

// handleWaveDetected starts a VerifyWakeup episode. Ignored outside Idle:
// the peripheral should only emit this notification while wave detection
// is enabled, but a stray late notification must not restart verification
// from another state (spec §4.4, §7).
func (c *Controller) handleWaveDetected() {
	if c.state != Idle {
		c.logger.Debug("wave detected outside idle, ignoring", "state", c.state)
		return
	}
	c.verifyStartPos = c.absPos
	c.verifyStartTime = c.clock()
	c.verifyCrossed = [3]bool{}
	c.enterState(VerifyWakeup)
}

func (c *Controller) handleAccelFrame(data []byte) {
	x, y, z := decodeAccel(data)
	now := c.clock()

	first := !c.sampleSeen
	var gap int64
	if !first {
		gap = now - c.lastReceivedAt
	}
	c.extractor.BeginSample(gap, first)

	deltaMS := gap
	if first {
		deltaMS = 0
	}
	sample := Sample{RawX: x, RawY: y, RawZ: z, ReceivedAt: now, DeltaMS: deltaMS}

	c.lastReceivedAt = now
	c.sampleSeen = true

	verifying := c.state == VerifyWakeup || c.state == VerifySelect
	w := c.extractor.Extract(sample, verifying)

	if c.rawSinkImpl != nil {
		c.rawSinkImpl.OnRawSample(RawSample{
			RawX: x, RawY: y, RawZ: z,
			RawScrollPos:       w.RawScrollPos,
			FilteredScrollPos:  w.FilteredScrollPos,
			FilteredScrollDiff: w.FilteredScrollDiff,
			RawNetG:            w.RawNetG,
			FilteredNetG:       w.FilteredNetG,
			IsTap:              w.IsTap,
			DeltaMS:            deltaMS,
		})
	}

	polling := wantsPolling(c.state)
	if polling {
		c.issuer.pollResponseReceived()
	}

	switch c.state {
	case VerifyWakeup:
		c.stepVerification(w, sample, c.wakeupOutcome())
	case VerifySelect:
		c.stepVerification(w, sample, c.selectOutcome())
	case UserInput:
		c.stepUserInput(w)
	}

	if wantsPolling(c.state) {
		c.issuer.enqueuePoll()
	}
}
