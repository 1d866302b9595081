// Package gpiofeedback pulses a GPIO line (an LED or vibration motor driver)
// whenever a gesture confirms, the same PTT-keying job the teacher's ptt.go
// does for a radio transmitter, retargeted at confirming a selection instead
// of keying a transmitter.
package gpiofeedback

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"ringwolf/internal/ring"
)

// pulseDuration is how long the line is held active for a confirmation
// pulse; briefPulseDuration is the shorter pulse used for a cancelled or
// timed-out episode.
const (
	pulseDuration      = 150 * time.Millisecond
	briefPulseDuration = 50 * time.Millisecond
)

// gpioLine is the subset of *gpiocdev.Line the feedback sink drives. Tests
// substitute a mock in place of real hardware, the same pattern the
// teacher's ptt_test.go uses for gpiod_line.
type gpioLine interface {
	SetValue(value int) error
	Close() error
}

// Feedback pulses a GPIO line on ConfirmWakeupIntent and ConfirmSelectionIntent.
type Feedback struct {
	line   gpioLine
	sleep  func(time.Duration)
	active bool
}

// Open requests chip/line as an output, initially inactive.
func Open(chip string, line int) (*Feedback, error) {
	l, err := gpiocdev.RequestLine(chip, line, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("ringwolf"))
	if err != nil {
		return nil, fmt.Errorf("gpiofeedback: requesting %s:%d: %w", chip, line, err)
	}
	return &Feedback{line: l, sleep: time.Sleep}, nil
}

// Close releases the GPIO line.
func (f *Feedback) Close() error {
	if f.line == nil {
		return nil
	}
	return f.line.Close()
}

// ControlSink adapts Feedback to ring.ControlSink: a confirmed wakeup or
// selection pulses the line for pulseDuration; a cancelled or timed-out
// episode gets a briefer pulse so the wearer can tell the two apart; every
// other event is ignored.
func (f *Feedback) ControlSink() ring.ControlSink {
	return ring.ControlSinkFunc(func(event ring.ControlEvent) {
		switch event {
		case ring.ConfirmWakeupIntent, ring.ConfirmSelectionIntent:
			f.pulse(pulseDuration)
		case ring.CancelIntent, ring.Timeout:
			f.pulse(briefPulseDuration)
		}
	})
}

func (f *Feedback) pulse(d time.Duration) {
	_ = f.line.SetValue(1)
	f.active = true
	f.sleep(d)
	_ = f.line.SetValue(0)
	f.active = false
}
