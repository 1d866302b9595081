// Package ring implements the gesture recognition and control state machine
// for the BlueX RF03 / STK8321 smart ring: frame routing, sample decoding,
// feature extraction, and the six-state wakeup/select controller.
package ring

// ControllerState is one of the controller's observable states.
type ControllerState int

const (
	Disconnected ControllerState = iota
	Scanning
	Connecting
	Connected
	Idle
	VerifyWakeup
	UserInput
	VerifySelect
)

func (s ControllerState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Scanning:
		return "Scanning"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Idle:
		return "Idle"
	case VerifyWakeup:
		return "VerifyWakeup"
	case UserInput:
		return "UserInput"
	case VerifySelect:
		return "VerifySelect"
	default:
		return "Unknown"
	}
}

// ControlEvent is one of the discrete gesture events the controller emits.
type ControlEvent int

const (
	ScrollUp ControlEvent = iota
	ScrollDown
	ProvisionalWakeupIntent
	ProvisionalSelectionIntent
	VerifyIntent25
	VerifyIntent50
	VerifyIntent75
	ConfirmWakeupIntent
	ConfirmSelectionIntent
	CancelIntent
	Timeout
)

func (e ControlEvent) String() string {
	switch e {
	case ScrollUp:
		return "ScrollUp"
	case ScrollDown:
		return "ScrollDown"
	case ProvisionalWakeupIntent:
		return "ProvisionalWakeupIntent"
	case ProvisionalSelectionIntent:
		return "ProvisionalSelectionIntent"
	case VerifyIntent25:
		return "VerifyIntent25"
	case VerifyIntent50:
		return "VerifyIntent50"
	case VerifyIntent75:
		return "VerifyIntent75"
	case ConfirmWakeupIntent:
		return "ConfirmWakeupIntent"
	case ConfirmSelectionIntent:
		return "ConfirmSelectionIntent"
	case CancelIntent:
		return "CancelIntent"
	case Timeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// RawSample carries diagnostic values for one processed accelerometer
// sample, delivered to an optional RawSink. Field names match spec §4.6.
type RawSample struct {
	RawX, RawY, RawZ      int32
	RawScrollPos          float64
	FilteredScrollPos     float64
	FilteredScrollDiff    float64
	RawNetG               float64
	FilteredNetG          float64
	IsTap                 bool
	DeltaMS               int64
}

// StateSink receives state-change notifications. Called after ControlSink
// for the sample that triggered the transition (spec §4.4 ordering rule).
type StateSink interface {
	OnStateChange(from, to ControllerState)
}

// ControlSink receives gesture/control events.
type ControlSink interface {
	OnControlEvent(event ControlEvent)
}

// RawSink receives a diagnostic record for every processed sample. Optional;
// the core never blocks waiting on it.
type RawSink interface {
	OnRawSample(sample RawSample)
}

// StateSinkFunc adapts a function to a StateSink.
type StateSinkFunc func(from, to ControllerState)

func (f StateSinkFunc) OnStateChange(from, to ControllerState) { f(from, to) }

// ControlSinkFunc adapts a function to a ControlSink.
type ControlSinkFunc func(event ControlEvent)

func (f ControlSinkFunc) OnControlEvent(event ControlEvent) { f(event) }

// RawSinkFunc adapts a function to a RawSink.
type RawSinkFunc func(sample RawSample)

func (f RawSinkFunc) OnRawSample(sample RawSample) { f(sample) }
