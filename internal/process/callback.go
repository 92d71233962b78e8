// Package process implements the router's real-time heart: the
// per-audio-period callback that drains the input port, rewrites
// events against the filter state, and drains the outbound ring back
// toward the output port. Both phases are ported 1:1 from
// jack_process in the library this module is based on, adapted to
// take a pre-sliced list of discrete input messages rather than an
// indexed, non-consuming accessor — the source's own input loop never
// increments its index on a SysEx skip or an Drop match, which (against
// an indexed accessor) would refetch the same event forever; ranging
// over a materialized slice sidesteps that without needing any special
// casing, so nothing here needs to replicate it.
package process

import (
	"errors"
	"log"

	"github.com/schollz/zynmidirouter/internal/encoder"
	"github.com/schollz/zynmidirouter/internal/filter"
	"github.com/schollz/zynmidirouter/internal/ring"
	"github.com/schollz/zynmidirouter/internal/send"
	"github.com/schollz/zynmidirouter/internal/types"
)

// ErrTooManyEvents is returned when a period's event count exceeds the
// frame count the audio server delivered — port saturation, per §4.5
// and §7.
var ErrTooManyEvents = errors.New("process: too many events for this period")

// Callback holds everything one process invocation needs: the filter
// state it reads without locks, the outbound byte ring it writes
// rewritten events into, the GUI ring it captures selected events
// into, and the (optional) encoder registry it notifies on surviving
// CCs.
type Callback struct {
	State    *filter.State
	Out      *ring.Bytes
	GUI      *ring.GUI
	Encoders *encoder.Registry

	faults uint64
}

// Faults returns the number of callback invocations that returned a
// non-zero status since construction — for diagnostics only, never
// consulted by the callback itself.
func (c *Callback) Faults() uint64 { return c.faults }

// Process runs the input phase for one period: frames is the audio
// server's period size (N), events is the period's discrete input
// messages in arrival order. It returns ErrTooManyEvents if the
// period produced more events than the port can have delivered,
// mirroring the source's own "i>nframes" overflow check.
func (c *Callback) Process(frames int, events [][]byte) error {
	if len(events) > frames {
		c.faults++
		log.Printf("[process] input overflow: %d events for %d frames", len(events), frames)
		return ErrTooManyEvents
	}

	for _, raw := range events {
		if len(raw) == 0 || raw[0] == byte(types.SysEx) {
			continue
		}

		if raw[0] >= 0xF0 {
			// System common/real-time messages (TimeCodeQF, SongSelect,
			// the clock/timing family, etc.) are never looked up in the
			// remap table — bucket 7 is reserved and never addressed by
			// a real message — and pass through unchanged, same as the
			// source's own bucket-7 identity cell. Clock/timing codes
			// get no special handling here beyond this forward, per the
			// Non-goal: the router doesn't interpret them, it just
			// carries them.
			if !c.Out.Write(raw) {
				log.Printf("[process] outbound ring full, dropping forwarded system message")
			}
			continue
		}

		eventType := types.Class(raw[0] >> 4)
		eventChan := raw[0] & 0x0F

		var buf [3]byte
		buf[0] = raw[0]
		size := len(raw)
		if size > 3 {
			size = 3
		}
		if size >= 2 {
			buf[1] = raw[1] & 0x7F
		}
		if size >= 3 {
			buf[2] = raw[2] & 0x7F
		}

		var eventNum, eventVal uint8
		if size == 3 {
			if eventType == types.PitchBend {
				eventNum = 0
			} else {
				eventNum = buf[1]
			}
			eventVal = buf[2]
		} else {
			eventNum = 0
			eventVal = buf[1]
		}

		// GUI pre-capture: original class/channel/bytes, before any
		// remap rewrite.
		if eventType == types.ControlChange {
			c.GUI.Write(ring.Pack(buf[0], buf[1], buf[2]))
		}

		cell, _ := c.State.GetMap(types.Event{Class: eventType, Channel: eventChan, Datum: eventNum})
		if cell.Kind == types.ArrowDrop {
			continue
		}

		if cell.Kind == types.ArrowSubstitute || cell.Kind == types.ArrowSwap {
			if cell.Kind == types.ArrowSubstitute {
				eventType = cell.Class
			}
			eventChan = cell.Channel
			buf[0] = eventType.StatusByte(eventChan)
			switch eventType {
			case types.ProgramChange, types.ChannelPressure:
				eventNum = 0
				buf[1] = eventVal
				size = 2
			case types.PitchBend:
				eventNum = 0
				buf[1] = 0
				buf[2] = eventVal
				size = 3
			default:
				eventNum = cell.Datum
				buf[1] = eventNum
				buf[2] = eventVal
				size = 3
			}
		}

		switch {
		case eventType == types.ControlChange:
			if c.Encoders != nil {
				c.Encoders.OnCC(eventChan, eventNum, eventVal)
			}
			// Supplemented feature: maintain the last-controller-value
			// table the source library updates in its (disabled)
			// master-channel scaling block, without performing the
			// scale itself — see the Design Notes' second open
			// question.
			c.State.RecordControllerValue(eventChan, eventNum, eventVal)
		case eventType == types.NoteOff || eventType == types.NoteOn:
			if off := c.State.GetTranspose(eventChan); off != 0 {
				note := int32(buf[1]) + off
				if note < 0 || note > 0x7F {
					continue
				}
				buf[1] = uint8(note)
			}
		}

		if c.State.TuningActive() {
			switch eventType {
			case types.NoteOn:
				pb := c.State.GetLastPitchBend(eventChan)
				tuned := c.State.TunePitchBend(pb)
				send.PitchBend(c.Out, eventChan, tuned)
			case types.PitchBend:
				pb := uint16(buf[2])<<7 | uint16(buf[1])
				c.State.SetLastPitchBend(eventChan, pb)
				tuned := c.State.TunePitchBend(pb)
				buf[1] = byte(tuned & 0x7F)
				buf[2] = byte((tuned >> 7) & 0x7F)
			}
		}

		// GUI post-capture: final class/bytes, after remap/transpose/tuning.
		if eventType == types.NoteOff || eventType == types.NoteOn || eventType == types.ProgramChange {
			c.GUI.Write(ring.Pack(buf[0], buf[1], buf[2]))
		}

		if !c.Out.Write(buf[:size]) {
			log.Printf("[process] outbound ring full, dropping rewritten event")
		}
	}
	return nil
}

// OutMessage is one drained outbound wire message, ready to be copied
// into the audio server's output port buffer.
type OutMessage struct {
	Bytes []byte
}

// messageSize determines an outbound message's length from its status
// byte exactly per §4.5's output phase table. Forwarded system-common
// and real-time messages reach here the same as remapped
// channel-voice ones, since Process now writes them unchanged instead
// of dropping them. For TimeCodeQF and SongSelect this compares the
// full status byte, not the status nibble: the source library's own
// sizing switch compares the nibble against those two classes'
// full-byte enum values, a comparison that can never succeed (a nibble
// never exceeds 0xF, and both constants do) — see DESIGN.md for the
// corrected comparison this implements.
func messageSize(status byte) int {
	if status >= 0xF4 {
		return 1
	}
	if status == byte(types.TimeCodeQF) || status == byte(types.SongSelect) {
		return 2
	}
	class := types.Class(status >> 4)
	if class == types.ProgramChange || class == types.ChannelPressure {
		return 2
	}
	return 3
}

// Drain empties the outbound ring into a slice of discrete wire
// messages, to be copied into the audio server's output port by the
// caller. frames bounds the period's output capacity the same way it
// bounds input in Process; ErrTooManyEvents is returned (and the
// ring left drained, the messages past the first frames+1 discarded)
// if more messages were queued than the port can carry in one period.
func (c *Callback) Drain(frames int) ([]OutMessage, error) {
	var out []OutMessage
	for {
		status, ok := c.Out.ReadByte()
		if !ok {
			break
		}
		size := messageSize(status)
		msg := make([]byte, size)
		msg[0] = status
		for i := 1; i < size; i++ {
			b, ok := c.Out.ReadByte()
			if !ok {
				// Ring ran out mid-message: nothing legitimate writes
				// a partial message (ring.Bytes.Write is all-or-nothing),
				// so this can only happen if size was computed from a
				// stray byte; stop Draining rather than emit garbage.
				log.Printf("[process] outbound ring ended mid-message")
				return out, nil
			}
			msg[i] = b
		}
		out = append(out, OutMessage{Bytes: msg})
		if len(out) > frames {
			c.faults++
			log.Printf("[process] output overflow: more than %d events this period", frames)
			for {
				if _, ok := c.Out.ReadByte(); !ok {
					break
				}
			}
			return out, ErrTooManyEvents
		}
	}
	return out, nil
}
