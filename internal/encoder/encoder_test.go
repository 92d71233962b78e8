package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryOnCCUpdatesBoundEncoder(t *testing.T) {
	r := NewRegistry()
	enc := &State{}
	r.Bind(enc, 2, 74)

	r.OnCC(2, 74, 100)
	assert.Equal(t, uint8(100), enc.Value())
	assert.Equal(t, uint32(100*TicksPerDetent), enc.Subvalue())
}

func TestRegistryOnCCIgnoresUnboundChannel(t *testing.T) {
	r := NewRegistry()
	enc := &State{}
	r.Bind(enc, 2, 74)

	r.OnCC(3, 74, 100)
	assert.Equal(t, uint8(0), enc.Value())
}

func TestRegistryOnCCSkipsDisabledEncoder(t *testing.T) {
	r := NewRegistry()
	enc := &State{}
	r.Bind(enc, 2, 74)
	enc.Disable()

	r.OnCC(2, 74, 100)
	assert.Equal(t, uint8(0), enc.Value())
}
