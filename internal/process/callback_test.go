package process

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schollz/zynmidirouter/internal/encoder"
	"github.com/schollz/zynmidirouter/internal/filter"
	"github.com/schollz/zynmidirouter/internal/ring"
	"github.com/schollz/zynmidirouter/internal/types"
)

func newCallback() (*Callback, *ring.Bytes, *ring.GUI) {
	st := filter.New()
	out := &ring.Bytes{}
	gui := &ring.GUI{}
	return &Callback{State: st, Out: out, GUI: gui, Encoders: encoder.NewRegistry()}, out, gui
}

func TestProcessPassesThroughByDefault(t *testing.T) {
	cb, _, _ := newCallback()
	err := cb.Process(64, [][]byte{{0x90, 60, 100}})
	assert.NoError(t, err)

	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, []byte{0x90, 60, 100}, msgs[0].Bytes)
}

func TestProcessDropsIgnoredEvent(t *testing.T) {
	cb, _, _ := newCallback()
	cb.State.SetIgnore(types.Event{Class: types.NoteOn, Channel: 0, Datum: 60})

	assert.NoError(t, cb.Process(64, [][]byte{{0x90, 60, 100}}))
	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 0)
}

func TestProcessSubstitutesEvent(t *testing.T) {
	cb, _, _ := newCallback()
	cb.State.SetMap(
		types.Event{Class: types.NoteOn, Channel: 0, Datum: 60},
		types.Event{Class: types.NoteOn, Channel: 5, Datum: 72},
	)

	assert.NoError(t, cb.Process(64, [][]byte{{0x90, 60, 100}}))
	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, []byte{0x95, 72, 100}, msgs[0].Bytes)
}

func TestProcessSkipsSysEx(t *testing.T) {
	cb, _, _ := newCallback()
	assert.NoError(t, cb.Process(64, [][]byte{{0xF0, 1, 2, 3, 0xF7}}))
	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 0)
}

func TestProcessTransposeBoundaryDropsOutOfRange(t *testing.T) {
	cb, _, _ := newCallback()
	cb.State.SetTranspose(0, 60)

	assert.NoError(t, cb.Process(64, [][]byte{{0x90, 100, 100}}))
	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 0)
}

func TestProcessTransposeWithinRangeShifts(t *testing.T) {
	cb, _, _ := newCallback()
	cb.State.SetTranspose(0, 12)

	assert.NoError(t, cb.Process(64, [][]byte{{0x90, 60, 100}}))
	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, byte(72), msgs[0].Bytes[1])
}

func TestProcessTooManyEventsFaults(t *testing.T) {
	cb, _, _ := newCallback()
	events := make([][]byte, 5)
	for i := range events {
		events[i] = []byte{0x90, 60, 100}
	}
	err := cb.Process(4, events)
	assert.ErrorIs(t, err, ErrTooManyEvents)
	assert.Equal(t, uint64(1), cb.Faults())
}

func TestProcessGUICapturesControlChange(t *testing.T) {
	cb, _, gui := newCallback()
	assert.NoError(t, cb.Process(64, [][]byte{{0xB0, 7, 100}}))
	assert.Equal(t, ring.Pack(0xB0, 7, 100), gui.Read())
}

func TestProcessTuningRewritesPitchBend(t *testing.T) {
	cb, _, _ := newCallback()
	cb.State.SetTuningFreq(452)

	assert.NoError(t, cb.Process(64, [][]byte{{0xE0, 0x00, 0x40}}))
	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, byte(0xE0), msgs[0].Bytes[0])
}

func TestProcessForwardsTimeCodeQFUnchanged(t *testing.T) {
	cb, _, _ := newCallback()
	assert.NoError(t, cb.Process(64, [][]byte{{0xF1, 0x05}}))

	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, []byte{0xF1, 0x05}, msgs[0].Bytes)
}

func TestProcessForwardsActiveSensingUnchanged(t *testing.T) {
	cb, _, _ := newCallback()
	assert.NoError(t, cb.Process(64, [][]byte{{0xFE}}))

	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, []byte{0xFE}, msgs[0].Bytes)
}

func TestProcessForwardsSongSelectUnchanged(t *testing.T) {
	cb, _, _ := newCallback()
	assert.NoError(t, cb.Process(64, [][]byte{{0xF3, 0x07}}))

	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, []byte{0xF3, 0x07}, msgs[0].Bytes)
}

func TestDrainHandlesProgramChangeTwoByteFraming(t *testing.T) {
	cb, out, _ := newCallback()
	assert.True(t, out.Write([]byte{0xC3, 5, 0}))

	msgs, err := cb.Drain(64)
	assert.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, []byte{0xC3, 5}, msgs[0].Bytes)
}

func TestDrainOverflowFaults(t *testing.T) {
	cb, out, _ := newCallback()
	for i := 0; i < 3; i++ {
		assert.True(t, out.Write([]byte{0x90, byte(i), 1}))
	}
	msgs, err := cb.Drain(1)
	assert.ErrorIs(t, err, ErrTooManyEvents)
	assert.Len(t, msgs, 2)
}
