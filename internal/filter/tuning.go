package filter

import (
	"fmt"
	"math"
)

// SetTranspose stores off (semitones) for channel, rejecting channel
// > 15 or off outside [-60,60].
func (s *State) SetTranspose(channel uint8, off int32) bool {
	if channel > 15 {
		logRejected("set_transpose", fmt.Errorf("channel %d out of range [0,15]", channel))
		return false
	}
	if off < -60 || off > 60 {
		logRejected("set_transpose", fmt.Errorf("offset %d out of range [-60,60]", off))
		return false
	}
	s.transpose[channel].Store(off)
	return true
}

// GetTranspose returns the stored transpose offset for channel.
func (s *State) GetTranspose(channel uint8) int32 {
	if channel > 15 {
		return 0
	}
	return s.transpose[channel].Load()
}

// SetMasterChan stores c as the master channel, rejecting c > 15.
func (s *State) SetMasterChan(c uint8) bool {
	if c > 15 {
		logRejected("set_master_chan", fmt.Errorf("channel %d out of range [0,15]", c))
		return false
	}
	s.masterChan.Store(int32(c))
	return true
}

// GetMasterChan returns the configured master channel, or ok=false
// when unset.
func (s *State) GetMasterChan() (channel uint8, ok bool) {
	v := s.masterChan.Load()
	if v == unsetChan {
		return 0, false
	}
	return uint8(v), true
}

// minTuningHz and maxTuningHz are 440 * 2^(±1/24), i.e. |offset| <=
// 0.25 for offset = 6*log2(F/440). They are narrower than the
// |offset| < 1 condition alone, which would allow 440 * 2^(±1/6)
// (about 392.00..493.88 Hz).
const (
	minTuningHz = 427.47
	maxTuningHz = 452.89
)

// SetTuningFreq computes the pitch-bend fine-tuning offset for target
// frequency hz (offset = 6*log2(hz/440)) and stores
// round(8192*(1+offset)) & 0x3FFF, accepting only frequencies within
// [minTuningHz, maxTuningHz] (which also keeps |offset| < 1).
func (s *State) SetTuningFreq(hz float64) bool {
	if hz < minTuningHz || hz > maxTuningHz {
		logRejected("set_tuning_freq", fmt.Errorf("%.4f Hz outside accepted range", hz))
		return false
	}
	offset := 6 * math.Log2(hz/440)
	if offset <= -1 || offset >= 1 {
		logRejected("set_tuning_freq", fmt.Errorf("|offset|=%.4f not < 1", math.Abs(offset)))
		return false
	}
	value := uint32(math.Round(8192*(1+offset))) & 0x3FFF
	s.tuningPitchBend.Store(int32(value))
	return true
}

// GetTuningPitchBend returns the stored 14-bit tuning pitch-bend
// value, or -1 if tuning has not been configured.
func (s *State) GetTuningPitchBend() int32 {
	return s.tuningPitchBend.Load()
}

// TuningActive reports whether a tuning offset is currently
// configured.
func (s *State) TuningActive() bool {
	return s.tuningPitchBend.Load() != unsetTuning
}

// TunePitchBend returns clamp(tuning_offset + pb - 8192, 0, 16383).
// Callers must check TuningActive first; calling this while tuning is
// unset returns pb unchanged.
func (s *State) TunePitchBend(pb uint16) uint16 {
	offset := s.tuningPitchBend.Load()
	if offset == unsetTuning {
		return pb
	}
	tuned := offset + int32(pb) - int32(centeredBend)
	if tuned < 0 {
		tuned = 0
	}
	if tuned > 16383 {
		tuned = 16383
	}
	return uint16(tuned)
}

// GetLastPitchBend returns the most recently received pitch-bend
// value cached for channel (centered at 8192 until a PitchBend event
// is observed).
func (s *State) GetLastPitchBend(channel uint8) uint16 {
	if channel > 15 {
		return uint16(centeredBend)
	}
	return uint16(s.lastPitchBend[channel].Load())
}

// SetLastPitchBend caches the most recently received pitch-bend value
// for channel. Called by the process callback, never by the control
// thread.
func (s *State) SetLastPitchBend(channel uint8, pb uint16) {
	if channel > 15 {
		return
	}
	s.lastPitchBend[channel].Store(uint32(pb))
}

// RecordControllerValue caches the 7-bit value most recently observed
// for (channel, controller). Maintained per spec.md's data model
// ("intended for master-channel scaling") even though the scaling
// itself is out of scope — see the Design Notes' second open
// question.
func (s *State) RecordControllerValue(channel, controller, value uint8) {
	if channel > 15 || controller > 127 {
		return
	}
	s.lastCtrlVal[channel][controller].Store(uint32(value))
}

// GetLastControllerValue returns the cached value for (channel,
// controller).
func (s *State) GetLastControllerValue(channel, controller uint8) uint8 {
	if channel > 15 || controller > 127 {
		return 0
	}
	return uint8(s.lastCtrlVal[channel][controller].Load())
}
