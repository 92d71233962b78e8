// Package encoder models the one piece of the GPIO rotary-encoder
// subsystem spec.md keeps in scope: the shared-state coupling where
// the real-time callback writes an encoder's value fields whenever an
// inbound CC matches that encoder's (channel, controller) binding.
// The rest of the GPIO subsystem — debouncing, switch handling, pin
// drivers — is an external collaborator this module never touches.
package encoder

import "sync/atomic"

// TicksPerDetent scales a 7-bit CC value into the encoder's finer
// "subvalue" resolution. The originating GPIO driver is out of scope
// here, so this is a reasonable constant rather than one read from
// that driver's own headers.
const TicksPerDetent = 4

// State is one rotary encoder's shared-state fields, written by the
// process callback and read by the (external, out-of-scope) GPIO
// polling thread. Torn reads on these 7-bit-derived values are
// acceptable per §5, so plain atomics are enough — no mutex, since
// the polling thread must never block the callback.
type State struct {
	Channel    uint8
	Controller uint8
	enabled    atomic.Bool
	value      atomic.Uint32
	subvalue   atomic.Uint32
}

// Enable marks the encoder eligible to receive CC updates.
func (s *State) Enable() { s.enabled.Store(true) }

// Disable stops the encoder from receiving CC updates.
func (s *State) Disable() { s.enabled.Store(false) }

// Value returns the last CC value written to this encoder.
func (s *State) Value() uint8 { return uint8(s.value.Load()) }

// Subvalue returns the last fine-resolution value written to this
// encoder.
func (s *State) Subvalue() uint32 { return s.subvalue.Load() }

// Registry is the narrow "on-cc" callback interface the design notes
// call for in place of the process callback reaching into an external
// array directly: the callback holds a Registry and calls OnCC once
// per surviving inbound CC; Registry does the scanning and the
// matching encoders' writes.
type Registry struct {
	encoders []*State
}

// NewRegistry builds an empty registry; encoders register themselves
// with Bind.
func NewRegistry() *Registry {
	return &Registry{}
}

// Bind registers enc to receive CC updates for (channel, controller).
func (r *Registry) Bind(enc *State, channel, controller uint8) {
	enc.Channel = channel
	enc.Controller = controller
	enc.Enable()
	r.encoders = append(r.encoders, enc)
}

// OnCC is called by the process callback for every inbound CC that
// survives filtering. It writes value and value*TicksPerDetent into
// every enabled encoder bound to (channel, controller); this is the
// only write the callback makes to non-ring external state.
func (r *Registry) OnCC(channel, controller, value uint8) {
	for _, enc := range r.encoders {
		if !enc.enabled.Load() {
			continue
		}
		if enc.Channel != channel || enc.Controller != controller {
			continue
		}
		enc.value.Store(uint32(value))
		enc.subvalue.Store(uint32(value) * TicksPerDetent)
	}
}
