// Package midiemulate provides a software MIDI transport standing in
// for the real audio-server connection, for development and testing
// without JACK hardware. It resolves a named input port and opens a
// virtual output port via gomidi/midi v2's rtmididrv driver — the same
// library and port-matching idiom the teacher's internal/midiconnector
// uses — and drives package process's Callback on a fixed tick instead
// of a real audio period.
package midiemulate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/schollz/zynmidirouter/internal/process"
)

// TickPeriod stands in for the audio server's period duration; each
// tick, Transport drains whatever raw input accumulated since the
// last tick and calls cb.Process/cb.Drain on it, exactly as one JACK
// process callback invocation would.
const TickPeriod = 5 * time.Millisecond

// simulatedFrames is the frame count passed to Process/Drain each
// tick, standing in for the real nframes JACK would report.
const simulatedFrames = 4096

// Transport owns the virtual ports and the goroutine that ticks the
// callback.
type Transport struct {
	drv *rtmididrv.Driver
	in  drivers.In
	out drivers.Out

	cb *process.Callback

	mu      sync.Mutex
	pending [][]byte

	cancel context.CancelFunc
}

// findPort resolves name against names the same way the teacher's
// midiconnector.filterName does: truncate to the first three words,
// then try exact, prefix, and substring matches in that order,
// case-insensitively.
func findPort(name string, names []string) (int, error) {
	words := strings.Fields(name)
	if len(words) > 3 {
		words = words[:3]
	}
	truncated := strings.Join(words, " ")

	for i, n := range names {
		if strings.EqualFold(n, truncated) {
			return i, nil
		}
	}
	for i, n := range names {
		if strings.HasPrefix(strings.ToLower(n), strings.ToLower(truncated)) {
			return i, nil
		}
	}
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), strings.ToLower(truncated)) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("midiemulate: no port matching %q", truncated)
}

// Open resolves inName against the system's existing MIDI input ports
// and creates a virtual output port named outName, wiring the
// transport to drive cb. There is no standing input hardware to
// rediscover every run in an emulate-mode/CI setting, so the input
// side is matched by name rather than created virtual: the caller is
// expected to point inName at a loopback or test harness port that
// already exists.
func Open(inName, outName string, cb *process.Callback) (*Transport, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midiemulate: failed to open rtmidi driver: %w", err)
	}

	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("midiemulate: failed to list input ports: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	idx, err := findPort(inName, names)
	if err != nil {
		drv.Close()
		return nil, err
	}

	out, err := drv.OpenVirtualOut(outName)
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("midiemulate: failed to open virtual output %q: %w", outName, err)
	}

	return &Transport{drv: drv, in: ins[idx], out: out, cb: cb}, nil
}

// Start opens the ports and begins ticking the callback. Call Stop to
// shut down cleanly.
func (t *Transport) Start(ctx context.Context) error {
	if err := t.in.Open(); err != nil {
		return fmt.Errorf("midiemulate: failed to open input: %w", err)
	}
	if err := t.out.Open(); err != nil {
		return fmt.Errorf("midiemulate: failed to open output: %w", err)
	}

	stop, err := t.in.Listen(t.onMessage, drivers.ListenConfig{})
	if err != nil {
		return fmt.Errorf("midiemulate: failed to listen on input: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	go func() {
		ticker := time.NewTicker(TickPeriod)
		defer ticker.Stop()
		defer stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				t.tick()
			}
		}
	}()
	return nil
}

// Stop cancels the tick loop and closes both ports and the driver.
func (t *Transport) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.in.Close()
	t.out.Close()
	t.drv.Close()
}

// onMessage is gomidi/midi v2's listen callback: it only buffers the
// raw bytes for the next tick, never touching filter state directly —
// the callback.Process call on the tick goroutine is the only writer
// of rewritten/outbound state, mirroring the real-time thread's sole
// ownership of the process callback.
func (t *Transport) onMessage(msg []byte, _ int32) {
	buf := append([]byte(nil), msg...)
	t.mu.Lock()
	t.pending = append(t.pending, buf)
	t.mu.Unlock()
}

func (t *Transport) tick() {
	t.mu.Lock()
	events := t.pending
	t.pending = nil
	t.mu.Unlock()

	if err := t.cb.Process(simulatedFrames, events); err != nil {
		log.Printf("[midiemulate] process error: %v", err)
	}
	msgs, err := t.cb.Drain(simulatedFrames)
	if err != nil {
		log.Printf("[midiemulate] drain error: %v", err)
	}
	for _, m := range msgs {
		if sendErr := t.out.Send(m.Bytes); sendErr != nil {
			log.Printf("[midiemulate] send error: %v", sendErr)
		}
	}
}
