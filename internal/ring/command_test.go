package ring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type recordingLink struct {
	written    []([16]byte)
	writeErr   error
	connectErr error
	notifyCh   chan [16]byte
}

func newRecordingLink() *recordingLink {
	return &recordingLink{notifyCh: make(chan [16]byte, 16)}
}

func (l *recordingLink) Connect(ctx context.Context) error { return l.connectErr }
func (l *recordingLink) Disconnect() error              { close(l.notifyCh); return nil }
func (l *recordingLink) Write(cmd [16]byte) error {
	l.written = append(l.written, cmd)
	return l.writeErr
}
func (l *recordingLink) Notifications() <-chan [16]byte { return l.notifyCh }

func TestBuildCommandChecksum(t *testing.T) {
	cmd := buildCommand(OpEnableWave)
	require.Equal(t, byte(0x02), cmd[0])
	require.Equal(t, byte(0x04), cmd[1])

	var sum byte
	for i := 0; i < 15; i++ {
		sum += cmd[i]
	}
	assert.Equal(t, sum, cmd[15])
}

// TestBuildCommandChecksumProperty checks the checksum invariant across
// every recognized opcode, rather than pinning it to one example, the same
// way TestWrapDeltaStaysInRange treats wrap-delta as a property over its
// whole input space instead of a handful of cases.
func TestBuildCommandChecksumProperty(t *testing.T) {
	ops := []Opcode{OpEnableWave, OpDisableWave, OpWaitingForWave, OpRequestRawData}
	rapid.Check(t, func(t *rapid.T) {
		op := ops[rapid.IntRange(0, len(ops)-1).Draw(t, "op")]
		cmd := buildCommand(op)

		var sum byte
		for i := 0; i < 15; i++ {
			sum += cmd[i]
		}
		assert.Equal(t, sum, cmd[15])
	})
}

func TestCommandIssuerPollBackpressure(t *testing.T) {
	link := newRecordingLink()
	issuer := newCommandIssuer(link, nopLogger{})

	issuer.enqueuePoll()
	issuer.enqueuePoll()
	issuer.enqueuePoll()
	assert.Len(t, link.written, 1, "a second poll must not be sent while one is outstanding")

	issuer.pollResponseReceived()
	issuer.enqueuePoll()
	assert.Len(t, link.written, 2)
}

func TestCommandIssuerSendNeverPanicsOnWriteError(t *testing.T) {
	link := newRecordingLink()
	link.writeErr = errors.New("write failed")
	issuer := newCommandIssuer(link, nopLogger{})

	assert.NotPanics(t, func() { issuer.send(OpEnableWave) })
}
