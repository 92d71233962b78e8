package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTranspose(t *testing.T) {
	s := New()
	assert.True(t, s.SetTranspose(0, 12))
	assert.Equal(t, int32(12), s.GetTranspose(0))

	assert.False(t, s.SetTranspose(16, 12))
	assert.False(t, s.SetTranspose(0, 61))
	assert.False(t, s.SetTranspose(0, -61))
}

func TestSetMasterChan(t *testing.T) {
	s := New()
	assert.True(t, s.SetMasterChan(9))
	ch, ok := s.GetMasterChan()
	assert.True(t, ok)
	assert.Equal(t, uint8(9), ch)

	assert.False(t, s.SetMasterChan(16))
}

func TestSetTuningFreqBounds(t *testing.T) {
	s := New()
	assert.False(t, s.TuningActive())

	assert.True(t, s.SetTuningFreq(440))
	assert.True(t, s.TuningActive())

	assert.False(t, s.SetTuningFreq(400))
	assert.False(t, s.SetTuningFreq(500))
}

func TestTunePitchBendRoundTrip(t *testing.T) {
	s := New()
	assert.True(t, s.SetTuningFreq(440))

	// At exactly 440Hz the offset is 0, so tuning is a no-op around
	// the centered value.
	assert.Equal(t, uint16(8192), s.TunePitchBend(8192))
}

func TestTunePitchBendClamps(t *testing.T) {
	s := New()
	assert.True(t, s.SetTuningFreq(452))
	assert.LessOrEqual(t, s.TunePitchBend(16383), uint16(16383))
	assert.GreaterOrEqual(t, s.TunePitchBend(0), uint16(0))
}

func TestTunePitchBendNoopWhenInactive(t *testing.T) {
	s := New()
	assert.Equal(t, uint16(1234), s.TunePitchBend(1234))
}

func TestLastPitchBendAndControllerValueCaching(t *testing.T) {
	s := New()
	s.SetLastPitchBend(3, 4000)
	assert.Equal(t, uint16(4000), s.GetLastPitchBend(3))

	s.RecordControllerValue(2, 7, 100)
	assert.Equal(t, uint8(100), s.GetLastControllerValue(2, 7))
	assert.Equal(t, uint8(0), s.GetLastControllerValue(2, 8))
}
