// Package filter owns the router's mutable configuration: the
// event-remap table, per-channel transpose and tuning state, and the
// algebra that mutates them. Everything here is read without locks by
// the real-time process callback (package process) and written only
// from the control thread, per the concurrency contract in the
// design: a single cell update is one atomic store; the CC-swap
// algebra's multi-cell updates are serialized by a mutex that the
// callback never takes.
package filter

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/schollz/zynmidirouter/internal/types"
)

// unsetChan and unsetTuning are the sentinel values for "no master
// channel" and "no tuning offset configured", mirroring the source
// library's -1 convention for these two scalar fields (everything
// else in this port replaces sentinel overloading with tagged types,
// but a channel and a 14-bit value have no natural tag to spare, so
// the -1 convention survives here).
const (
	unsetChan    int32 = -1
	unsetTuning  int32 = -1
	centeredBend uint32 = 8192
)

// State is the engine's owned configuration value. Bring-up
// constructs one State and shares a stable pointer to it with both the
// control thread and the real-time callback; there is no other global
// mutable state, per the design notes.
type State struct {
	table [types.NumClassBuckets][types.NumChannels][types.NumData]atomic.Uint32

	transpose [types.NumChannels]atomic.Int32

	tuningPitchBend atomic.Int32

	masterChan atomic.Int32

	lastPitchBend [types.NumChannels]atomic.Uint32

	lastCtrlVal [types.NumChannels][types.NumData]atomic.Uint32

	// swapMu serializes the CC-swap algebra's multi-cell writers
	// (SetCCSwap, DelCCSwap) against each other. It is never acquired
	// by the real-time callback or by single-cell writers, which rely
	// on each cell's own atomic store for publication safety.
	swapMu sync.Mutex
}

// New builds a State with every cell at its identity (PassThrough
// self-loop), transpose at 0, tuning and master channel unset, last
// pitch-bend centered at 8192, and last-controller-value at 0 — the
// at-rest state spec.md's data model describes.
func New() *State {
	s := &State{}
	s.resetAllLocked()
	for ch := 0; ch < types.NumChannels; ch++ {
		s.lastPitchBend[ch].Store(centeredBend)
	}
	s.tuningPitchBend.Store(unsetTuning)
	s.masterChan.Store(unsetChan)
	return s
}

func encodeCell(c types.Cell) uint32 {
	return uint32(c.Kind)<<24 | uint32(c.Class)<<16 | uint32(c.Channel)<<8 | uint32(c.Datum)
}

func decodeCell(v uint32) types.Cell {
	return types.Cell{
		Kind:    types.ArrowKind(v >> 24),
		Class:   types.Class(v >> 16),
		Channel: uint8(v >> 8),
		Datum:   uint8(v),
	}
}

// cellAt returns the cell stored at (bucket, channel, datum) without
// validation; callers must have already validated coordinates.
func (s *State) cellAt(bucket, channel, datum uint8) types.Cell {
	return decodeCell(s.table[bucket][channel][datum].Load())
}

// setCellAt stores cell at (bucket, channel, datum). A single
// atomic.Uint32 store is the entire publication — this is the "a
// single cell update is one assignment" guarantee the concurrency
// model requires.
func (s *State) setCellAt(bucket, channel, datum uint8, cell types.Cell) {
	s.table[bucket][channel][datum].Store(encodeCell(cell))
}

func (s *State) resetAllLocked() {
	for bucket := 0; bucket < types.NumClassBuckets; bucket++ {
		for ch := 0; ch < types.NumChannels; ch++ {
			for d := 0; d < types.NumData; d++ {
				s.table[bucket][ch][d].Store(encodeCell(types.Identity(uint8(ch), uint8(d))))
			}
		}
	}
}

func validCoords(class types.Class, channel, datum uint8) error {
	if !class.IsChannelVoice() {
		return fmt.Errorf("filter: class %s is not a channel-voice class", class)
	}
	if channel > 15 {
		return fmt.Errorf("filter: channel %d out of range [0,15]", channel)
	}
	if datum > 127 {
		return fmt.Errorf("filter: datum %d out of range [0,127]", datum)
	}
	return nil
}

func logRejected(op string, err error) {
	log.Printf("[filter] %s rejected: %v", op, err)
}
