// Package config loads the router's startup configuration: client
// name, master channel, tuning frequency, per-channel transpose, and
// the initial remap table entries. Unlike the teacher's
// internal/storage, there is no autosave and no debounced writer —
// the filter state this config seeds changes constantly at a real-time
// rate that has nothing to do with the on-disk file, so the file is
// read once at startup and never written back to.
package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/zynmidirouter/internal/filter"
	"github.com/schollz/zynmidirouter/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MapEntry seeds one remap table cell.
type MapEntry struct {
	Class   string `json:"class"`
	Channel uint8  `json:"channel"`
	Datum   uint8  `json:"datum"`
	Kind    string `json:"kind"`
	ToClass string `json:"to_class,omitempty"`
	ToChan  uint8  `json:"to_channel,omitempty"`
	ToDatum uint8  `json:"to_datum,omitempty"`
}

// CCSwapEntry seeds one CC-swap pair.
type CCSwapEntry struct {
	Channel1 uint8 `json:"channel1"`
	CC1      uint8 `json:"cc1"`
	Channel2 uint8 `json:"channel2"`
	CC2      uint8 `json:"cc2"`
}

// Config is the on-disk shape the router loads at startup.
type Config struct {
	ClientName   string        `json:"client_name"`
	Emulate      bool          `json:"emulate"`
	MasterChan   int           `json:"master_channel"`
	TuningHz     float64       `json:"tuning_hz"`
	Transpose    [16]int32     `json:"transpose"`
	MapEntries   []MapEntry    `json:"map_entries"`
	CCSwaps      []CCSwapEntry `json:"cc_swaps"`
}

// Default returns a Config with the router's baseline settings: no
// master channel, no tuning offset, no transpose, an empty map.
func Default() Config {
	return Config{
		ClientName: "Zyncoder",
		MasterChan: -1,
	}
}

// Load reads and parses path into a Config. A missing file is not an
// error: it returns Default() unchanged, since the router is expected
// to run with no config at all during development.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func classFromName(name string) (types.Class, error) {
	switch name {
	case "note_off":
		return types.NoteOff, nil
	case "note_on":
		return types.NoteOn, nil
	case "key_pressure":
		return types.KeyPressure, nil
	case "control_change":
		return types.ControlChange, nil
	case "program_change":
		return types.ProgramChange, nil
	case "channel_pressure":
		return types.ChannelPressure, nil
	case "pitch_bend":
		return types.PitchBend, nil
	default:
		return 0, fmt.Errorf("config: unknown class %q", name)
	}
}

// Apply seeds st with the config's master channel, tuning, transpose,
// map entries, and CC swaps, in that order. Map entries and swaps
// share the same table and swaps are applied last: a swap overwrites
// what the map entries left on its cells, except that a swap whose
// first endpoint, or the arrow leading into its second endpoint,
// already carries a CC substitution is rejected by SetCCSwap, and
// Apply returns that error.
func Apply(cfg Config, st *filter.State) error {
	if cfg.MasterChan >= 0 {
		if !st.SetMasterChan(uint8(cfg.MasterChan)) {
			return fmt.Errorf("config: master channel %d out of range", cfg.MasterChan)
		}
	}
	if cfg.TuningHz != 0 {
		if !st.SetTuningFreq(cfg.TuningHz) {
			return fmt.Errorf("config: tuning frequency %.2f out of bounds", cfg.TuningHz)
		}
	}
	for ch, offset := range cfg.Transpose {
		if offset != 0 && !st.SetTranspose(uint8(ch), offset) {
			return fmt.Errorf("config: transpose %d for channel %d out of range", offset, ch)
		}
	}

	for _, e := range cfg.MapEntries {
		class, err := classFromName(e.Class)
		if err != nil {
			return err
		}
		from := types.Event{Class: class, Channel: e.Channel, Datum: e.Datum}
		switch e.Kind {
		case "drop":
			if !st.SetIgnore(from) {
				return fmt.Errorf("config: map entry %+v rejected", e)
			}
		case "substitute", "swap":
			toClass, err := classFromName(e.ToClass)
			if err != nil {
				return err
			}
			to := types.Event{Class: toClass, Channel: e.ToChan, Datum: e.ToDatum}
			if !st.SetMap(from, to) {
				return fmt.Errorf("config: map entry %+v rejected", e)
			}
			if e.Kind == "swap" {
				if !st.SetMap(to, from) {
					return fmt.Errorf("config: map entry %+v rejected (return leg)", e)
				}
			}
		default:
			return fmt.Errorf("config: unknown map entry kind %q", e.Kind)
		}
	}

	for _, s := range cfg.CCSwaps {
		if err := st.SetCCSwap(s.Channel1, s.CC1, s.Channel2, s.CC2); err != nil {
			return fmt.Errorf("config: cc swap %+v: %w", s, err)
		}
	}

	return nil
}
