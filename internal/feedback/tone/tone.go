// Package tone plays a short confirmation beep through the default audio
// device. The teacher's gen_tone.go synthesizes AFSK sine tones sample by
// sample into a modem's audio stream; this package keeps that sine-by-sample
// synthesis idea but drives github.com/gordonklaus/portaudio directly
// instead of a modem output buffer, since ringwolf has no AFSK modem.
package tone

import (
	"math"
	"time"

	"github.com/gordonklaus/portaudio"

	"ringwolf/internal/ring"
)

const sampleRate = 44100

const pulseDuration = 120 * time.Millisecond

var pulseSamples = int(pulseDuration.Seconds() * sampleRate)

// Player owns one open portaudio output stream and synthesizes a sine-wave
// pulse on demand. remaining/phase are touched only from the portaudio
// callback goroutine and from Beep, which portaudio serializes against it.
type Player struct {
	stream *portaudio.Stream
	freqHz float64

	remaining int
	phase     int
}

// Open initializes portaudio and opens a mono output stream whose beeps are
// a sine tone at freqHz.
func Open(freqHz float64) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	p := &Player{freqHz: freqHz}
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, 0, p.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	p.stream = stream
	if err := stream.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

// Close stops the stream and releases portaudio.
func (p *Player) Close() error {
	if p.stream == nil {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		return err
	}
	if err := p.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}

// Beep starts one confirmation tone. Safe to call again before the previous
// tone finishes; it simply restarts the countdown.
func (p *Player) Beep() {
	p.remaining = pulseSamples
}

func (p *Player) callback(out []float32) {
	for i := range out {
		if p.remaining <= 0 {
			out[i] = 0
			continue
		}
		out[i] = float32(0.25 * math.Sin(2*math.Pi*p.freqHz*float64(p.phase)/sampleRate))
		p.phase++
		p.remaining--
	}
}

// ControlSink adapts Player to ring.ControlSink: a confirmed wakeup or
// selection, a cancelled episode, or a timeout all trigger a beep, so the
// wearer always gets audible closure on an episode's end.
func (p *Player) ControlSink() ring.ControlSink {
	return ring.ControlSinkFunc(func(event ring.ControlEvent) {
		switch event {
		case ring.ConfirmWakeupIntent, ring.ConfirmSelectionIntent, ring.CancelIntent, ring.Timeout:
			p.Beep()
		}
	})
}
