package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schollz/zynmidirouter/internal/types"
)

func TestNewStateIsIdentity(t *testing.T) {
	s := New()
	cell, ok := s.GetMap(types.Event{Class: types.NoteOn, Channel: 3, Datum: 60})
	assert.True(t, ok)
	assert.Equal(t, types.ArrowPassThrough, cell.Kind)
	assert.Equal(t, uint8(3), cell.Channel)
	assert.Equal(t, uint8(60), cell.Datum)
}

func TestNewStateDefaults(t *testing.T) {
	s := New()
	_, ok := s.GetMasterChan()
	assert.False(t, ok)
	assert.False(t, s.TuningActive())
	assert.Equal(t, int32(0), s.GetTranspose(0))
	assert.Equal(t, uint16(8192), s.GetLastPitchBend(0))
}

func TestSetMapThenGetMap(t *testing.T) {
	s := New()
	from := types.Event{Class: types.NoteOn, Channel: 0, Datum: 10}
	to := types.Event{Class: types.NoteOn, Channel: 1, Datum: 20}
	assert.True(t, s.SetMap(from, to))

	cell, ok := s.GetMap(from)
	assert.True(t, ok)
	assert.Equal(t, types.ArrowSubstitute, cell.Kind)
	assert.Equal(t, uint8(1), cell.Channel)
	assert.Equal(t, uint8(20), cell.Datum)
}

func TestSetMapRejectsInvalidCoords(t *testing.T) {
	s := New()
	from := types.Event{Class: types.NoteOn, Channel: 16, Datum: 10}
	to := types.Event{Class: types.NoteOn, Channel: 1, Datum: 20}
	assert.False(t, s.SetMap(from, to))
}

func TestSetIgnoreDrops(t *testing.T) {
	s := New()
	from := types.Event{Class: types.ControlChange, Channel: 0, Datum: 7}
	assert.True(t, s.SetIgnore(from))

	cell, ok := s.GetMap(from)
	assert.True(t, ok)
	assert.Equal(t, types.ArrowDrop, cell.Kind)
}

func TestDelMapRestoresIdentity(t *testing.T) {
	s := New()
	from := types.Event{Class: types.NoteOn, Channel: 2, Datum: 5}
	s.SetMap(from, types.Event{Class: types.NoteOn, Channel: 3, Datum: 6})
	assert.True(t, s.DelMap(from))

	cell, _ := s.GetMap(from)
	assert.Equal(t, types.ArrowPassThrough, cell.Kind)
	assert.Equal(t, uint8(2), cell.Channel)
	assert.Equal(t, uint8(5), cell.Datum)
}

func TestResetAllRestoresIdentityEverywhere(t *testing.T) {
	s := New()
	s.SetCCIgnore(0, 1)
	s.SetMap(types.Event{Class: types.NoteOn, Channel: 0, Datum: 0}, types.Event{Class: types.NoteOn, Channel: 1, Datum: 1})
	s.ResetAll()

	cell, _ := s.GetCCMap(0, 1)
	assert.Equal(t, types.ArrowPassThrough, cell.Kind)
	cell2, _ := s.GetMap(types.Event{Class: types.NoteOn, Channel: 0, Datum: 0})
	assert.Equal(t, types.ArrowPassThrough, cell2.Kind)
}
