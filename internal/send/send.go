// Package send packs MIDI messages into a wire-format byte buffer and
// hands them to the outbound ring. Every helper here may be called
// either from control-thread configuration code or from the process
// callback's rewrite path (§5). The ring assumes a single producer and
// does not check it, and these helpers carry no locking of their own,
// so writers on different threads must not use the same ring at once.
package send

import (
	"log"

	"github.com/schollz/zynmidirouter/internal/filter"
	"github.com/schollz/zynmidirouter/internal/ring"
	"github.com/schollz/zynmidirouter/internal/types"
)

func write(r *ring.Bytes, msg []byte) bool {
	if r.Write(msg) {
		return true
	}
	log.Printf("[send] outbound ring full, dropping %d-byte message", len(msg))
	return false
}

// NoteOff sends a 3-byte Note Off.
func NoteOff(r *ring.Bytes, channel, note, velocity uint8) bool {
	return write(r, []byte{types.NoteOff.StatusByte(channel), note & 0x7F, velocity & 0x7F})
}

// NoteOn sends a 3-byte Note On.
func NoteOn(r *ring.Bytes, channel, note, velocity uint8) bool {
	return write(r, []byte{types.NoteOn.StatusByte(channel), note & 0x7F, velocity & 0x7F})
}

// CC sends a 3-byte Control Change.
func CC(r *ring.Bytes, channel, controller, value uint8) bool {
	return write(r, []byte{types.ControlChange.StatusByte(channel), controller & 0x7F, value & 0x7F})
}

// ProgramChange sends a Program Change. The wire message is logically
// two bytes ([status, program]) but this writes a padded third zero
// byte into the ring, matching the source library's
// zynmidi_send_program_change exactly — the output phase's own sizing
// rule still reads only the first two bytes of a PC message back out,
// so the trailing zero is inert, not a framing bug that needs fixing
// here (see DESIGN.md).
func ProgramChange(r *ring.Bytes, channel, program uint8) bool {
	return write(r, []byte{types.ProgramChange.StatusByte(channel), program & 0x7F, 0})
}

// PitchBend sends a 3-byte Pitch Bend carrying the 14-bit value value
// (0..16383), LSB first then MSB, both masked to 7 bits.
func PitchBend(r *ring.Bytes, channel uint8, value uint16) bool {
	return write(r, []byte{
		types.PitchBend.StatusByte(channel),
		byte(value & 0x7F),
		byte((value >> 7) & 0x7F),
	})
}

// MasterCC routes a Control Change to the configured master channel
// rather than the caller's, succeeding only if a master channel is
// set: returns false when unset, otherwise forwards the result of the
// underlying CC send. This is the documented resolution of spec.md's
// first Design Notes open question.
func MasterCC(r *ring.Bytes, st *filter.State, controller, value uint8) bool {
	master, ok := st.GetMasterChan()
	if !ok {
		return false
	}
	return CC(r, master, controller, value)
}
