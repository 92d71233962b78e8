package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGUIWriteReadOrder(t *testing.T) {
	var g GUI
	assert.True(t, g.Write(Pack(0x90, 60, 100)))
	assert.True(t, g.Write(Pack(0x80, 60, 0)))

	assert.Equal(t, Pack(0x90, 60, 100), g.Read())
	assert.Equal(t, Pack(0x80, 60, 0), g.Read())
	assert.Equal(t, uint32(0), g.Read())
}

func TestGUIDropsWhenFull(t *testing.T) {
	var g GUI
	for i := 0; i < GUISlots; i++ {
		assert.True(t, g.Write(Pack(0x90, byte(i), 1)))
	}
	assert.False(t, g.Write(Pack(0x90, 99, 1)))

	first := g.Read()
	assert.Equal(t, Pack(0x90, 0, 1), first)
}

func TestGUIZeroIsEmptySentinel(t *testing.T) {
	var g GUI
	assert.Equal(t, uint32(0), g.Read())
}
