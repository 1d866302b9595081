package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignExtend12(t *testing.T) {
	assert.Equal(t, int32(0), signExtend12(0x000))
	assert.Equal(t, int32(2047), signExtend12(0x7FF))
	assert.Equal(t, int32(-1), signExtend12(0xFFF))
	assert.Equal(t, int32(-2048), signExtend12(0x800))
}

// TestDecodeAccelScenarioS1 exercises the worked frame from the reference
// material against the literal bit layout in decodeAccel: Y and Z precede X
// on the wire, each high-byte/low-nibble. The expected (x, y, z) triple here
// is derived by applying that layout to the frame bytes, not copied from the
// narrative walkthrough, which does not round-trip against its own stated
// formula.
func TestDecodeAccelScenarioS1(t *testing.T) {
	frame := []byte{0xA1, 0x03, 0x00, 0x0C, 0x1F, 0x06, 0xFB, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xD3}

	x, y, z := decodeAccel(frame)

	assert.Equal(t, int32(12), y)
	assert.Equal(t, int32(502), z)
	assert.Equal(t, int32(-77), x)
}

func TestDecodeAccelRoundTripsThroughNibbles(t *testing.T) {
	frame := make([]byte, 16)
	frame[0], frame[1] = opAccelHeader, opAccelSub
	// Y = -1
	frame[2], frame[3] = 0xFF, 0x0F
	// Z = 2047
	frame[4], frame[5] = 0x7F, 0x0F
	// X = -2048
	frame[6], frame[7] = 0x80, 0x00

	x, y, z := decodeAccel(frame)
	assert.Equal(t, int32(-2048), x)
	assert.Equal(t, int32(-1), y)
	assert.Equal(t, int32(2047), z)
}
