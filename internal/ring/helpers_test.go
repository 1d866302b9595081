package ring

// recorder captures every state change and control event a Controller
// emits, in the order emitted, for assertions about the spec §4.4 ordering
// guarantee (control event before state change) and event sequencing.
type recorder struct {
	states []stateChange
	events []ControlEvent
}

type stateChange struct {
	from, to ControllerState
}

func (r *recorder) OnStateChange(from, to ControllerState) {
	r.states = append(r.states, stateChange{from, to})
}

func (r *recorder) OnControlEvent(event ControlEvent) {
	r.events = append(r.events, event)
}

func (r *recorder) lastEvent() ControlEvent {
	return r.events[len(r.events)-1]
}

// fakeClock lets tests control the monotonic clock a Controller reads
// without sleeping.
type fakeClock struct {
	ms int64
}

func (f *fakeClock) now() int64    { return f.ms }
func (f *fakeClock) advance(d int64) { f.ms += d }

func newTestController() (*Controller, *recorder, *fakeClock) {
	link := newRecordingLink()
	c := NewController(link, nopLogger{})
	rec := &recorder{}
	c.SetStateSink(rec)
	c.SetControlSink(rec)
	clk := &fakeClock{}
	c.clockFn = clk.now
	return c, rec, clk
}
