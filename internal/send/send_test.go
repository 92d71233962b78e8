package send

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schollz/zynmidirouter/internal/filter"
	"github.com/schollz/zynmidirouter/internal/ring"
)

func drainAll(t *testing.T, r *ring.Bytes, n int) []byte {
	t.Helper()
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		b, ok := r.ReadByte()
		assert.True(t, ok)
		out = append(out, b)
	}
	return out
}

func TestNoteOnWiresThreeBytes(t *testing.T) {
	var r ring.Bytes
	assert.True(t, NoteOn(&r, 2, 60, 100))
	assert.Equal(t, []byte{0x92, 60, 100}, drainAll(t, &r, 3))
}

func TestNoteOffWiresThreeBytes(t *testing.T) {
	var r ring.Bytes
	assert.True(t, NoteOff(&r, 0, 40, 0))
	assert.Equal(t, []byte{0x80, 40, 0}, drainAll(t, &r, 3))
}

func TestCCMasksDataBytes(t *testing.T) {
	var r ring.Bytes
	assert.True(t, CC(&r, 1, 200, 200))
	got := drainAll(t, &r, 3)
	assert.Equal(t, byte(0xB1), got[0])
	assert.Equal(t, byte(200&0x7F), got[1])
	assert.Equal(t, byte(200&0x7F), got[2])
}

func TestPitchBendEncodesLSBThenMSB(t *testing.T) {
	var r ring.Bytes
	assert.True(t, PitchBend(&r, 5, 0x1FFF))
	got := drainAll(t, &r, 3)
	assert.Equal(t, byte(0xE5), got[0])
	assert.Equal(t, byte(0x7F), got[1])
	assert.Equal(t, byte(0x3F), got[2])
}

func TestMasterCCFailsWhenUnset(t *testing.T) {
	var r ring.Bytes
	st := filter.New()
	assert.False(t, MasterCC(&r, st, 7, 64))
}

func TestMasterCCRoutesToMasterChannel(t *testing.T) {
	var r ring.Bytes
	st := filter.New()
	st.SetMasterChan(4)
	assert.True(t, MasterCC(&r, st, 7, 64))
	got := drainAll(t, &r, 3)
	assert.Equal(t, byte(0xB4), got[0])
}
