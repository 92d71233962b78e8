// Package audioclient brings up and tears down the audio-server
// client and its two MIDI ports, and trampolines the server's
// process callback into package process's Callback. Ported from the
// go-jack usage in gosfzplayer's JackClient (NewJackClient,
// processCallback, Start/Stop/Close), generalized from one audio-out
// port + one MIDI-in port to the router's two MIDI ports (input,
// output), and from its ad-hoc voice renderer to the router's
// input-phase/output-phase split.
package audioclient

import (
	"fmt"
	"log"

	jack "github.com/xthexder/go-jack"
	"golang.org/x/sys/unix"

	"github.com/schollz/zynmidirouter/internal/process"
)

// DefaultClientName is the client name used at bring-up unless
// overridden, matching the appliance's historical default.
const DefaultClientName = "Zyncoder"

// Client owns the audio-server connection and its two MIDI ports. It
// has no state of its own beyond that connection — the filter state,
// rings, and process logic all live in *process.Callback, which
// Client merely drives once per period.
type Client struct {
	name     string
	jack     *jack.Client
	input    *jack.Port
	output   *jack.Port
	callback *process.Callback
}

// New opens a JACK client named name, registers its "input" (MIDI
// sink) and "output" (MIDI source) ports, and wires its process
// callback to cb. No partial bring-up survives a failure: any
// already-registered port or opened client is torn down before
// returning an error.
func New(name string, cb *process.Callback) (*Client, error) {
	if name == "" {
		name = DefaultClientName
	}

	jc, err := jack.ClientOpen(name, jack.NoStartServer)
	if err != nil {
		return nil, fmt.Errorf("audioclient: failed to open client %q: %w", name, err)
	}

	c := &Client{name: name, jack: jc, callback: cb}

	c.input, err = jc.PortRegister("input", jack.DEFAULT_MIDI_TYPE, jack.PortIsInput, 0)
	if err != nil {
		jc.Close()
		return nil, fmt.Errorf("audioclient: failed to register input port: %w", err)
	}

	c.output, err = jc.PortRegister("output", jack.DEFAULT_MIDI_TYPE, jack.PortIsOutput, 0)
	if err != nil {
		jc.Close()
		return nil, fmt.Errorf("audioclient: failed to register output port: %w", err)
	}

	jc.SetProcessCallback(c.process)

	if err := unix.Mlock(cb.Out.Backing()); err != nil {
		log.Printf("audioclient: mlock outbound ring failed (continuing without it): %v", err)
	}

	return c, nil
}

// Start activates the client, after which the process callback may
// run at any time.
func (c *Client) Start() error {
	if err := c.jack.Activate(); err != nil {
		return fmt.Errorf("audioclient: activate failed: %w", err)
	}
	return nil
}

// Stop deactivates the client, then closes the connection. Call once,
// at shutdown.
func (c *Client) Stop() error {
	if err := c.jack.Deactivate(); err != nil {
		log.Printf("audioclient: deactivate returned error: %v", err)
	}
	if err := c.jack.Close(); err != nil {
		return fmt.Errorf("audioclient: close failed: %w", err)
	}
	return nil
}

// process is the trampoline JACK invokes once per period. Each call
// allocates a slice for the period's input events, and Callback.Drain
// allocates the returned messages; apart from the log.Printf
// diagnostics Callback may emit, it takes no lock and does not block.
func (c *Client) process(nframes uint32) int {
	inBuf := c.input.GetBuffer(nframes)
	count := jack.MidiGetEventCount(inBuf)
	events := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		ev, err := jack.MidiEventGet(inBuf, i)
		if err != nil {
			continue
		}
		events = append(events, ev.Buffer)
	}

	if err := c.callback.Process(int(nframes), events); err != nil {
		return -1
	}

	outBuf := c.output.GetBuffer(nframes)
	jack.MidiClearBuffer(outBuf)

	msgs, err := c.callback.Drain(int(nframes))
	for i, m := range msgs {
		jack.MidiEventWrite(outBuf, uint32(i), m.Bytes, uint32(len(m.Bytes)))
	}
	if err != nil {
		return -1
	}
	return 0
}
