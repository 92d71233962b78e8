package filter

import (
	"errors"
	"fmt"

	"github.com/schollz/zynmidirouter/internal/types"
)

// ErrPathTooLong is returned by the CC-swap algebra when following
// arrows around the CC plane fails to close within MaxSwapHops —
// Rule B's enforcement point.
var ErrPathTooLong = errors.New("filter: cc chain did not close within max hops")

// ErrAlreadySubstituted is returned by SetCCSwap when either endpoint
// already carries a concrete CC substitution; the caller must remove
// it first (§4.1).
var ErrAlreadySubstituted = errors.New("filter: endpoint already has a cc substitution")

// SetMap overwrites the cell at from with the triple to. Both
// endpoints are validated; an invalid from or to rejects the call and
// leaves the table unchanged.
func (s *State) SetMap(from, to types.Event) bool {
	if err := validCoords(from.Class, from.Channel, from.Datum); err != nil {
		logRejected("set_map", err)
		return false
	}
	if err := validCoords(to.Class, to.Channel, to.Datum); err != nil {
		logRejected("set_map", err)
		return false
	}
	s.setCellAt(from.Class.Bucket(), from.Channel, from.Datum, types.Cell{
		Kind: types.ArrowSubstitute, Class: to.Class, Channel: to.Channel, Datum: to.Datum,
	})
	return true
}

// SetIgnore writes a Drop arrow into the cell at from.
func (s *State) SetIgnore(from types.Event) bool {
	if err := validCoords(from.Class, from.Channel, from.Datum); err != nil {
		logRejected("set_ignore", err)
		return false
	}
	s.setCellAt(from.Class.Bucket(), from.Channel, from.Datum, types.Cell{
		Kind: types.ArrowDrop, Channel: from.Channel, Datum: from.Datum,
	})
	return true
}

// GetMap returns a value copy of the cell at from. ok is false when
// from's coordinates are invalid — a value-returning lookup on a copy
// rather than the source's pointer-or-nil convention, per the design
// notes.
func (s *State) GetMap(from types.Event) (cell types.Cell, ok bool) {
	if err := validCoords(from.Class, from.Channel, from.Datum); err != nil {
		logRejected("get_map", err)
		return types.Cell{}, false
	}
	return s.cellAt(from.Class.Bucket(), from.Channel, from.Datum), true
}

// DelMap resets the cell at from to its PassThrough identity.
func (s *State) DelMap(from types.Event) bool {
	if err := validCoords(from.Class, from.Channel, from.Datum); err != nil {
		logRejected("del_map", err)
		return false
	}
	s.setCellAt(from.Class.Bucket(), from.Channel, from.Datum, types.Identity(from.Channel, from.Datum))
	return true
}

// ResetAll resets every cell in the table to identity.
func (s *State) ResetAll() {
	s.resetAllLocked()
}

// --- CC convenience layer: both endpoints fixed to ControlChange ---

func ccEvent(channel, datum uint8) types.Event {
	return types.Event{Class: types.ControlChange, Channel: channel, Datum: datum}
}

func (s *State) SetCCMap(fromChan, fromDatum, toChan, toDatum uint8) bool {
	return s.SetMap(ccEvent(fromChan, fromDatum), ccEvent(toChan, toDatum))
}

func (s *State) SetCCIgnore(channel, datum uint8) bool {
	return s.SetIgnore(ccEvent(channel, datum))
}

func (s *State) GetCCMap(channel, datum uint8) (types.Cell, bool) {
	return s.GetMap(ccEvent(channel, datum))
}

func (s *State) DelCCMap(channel, datum uint8) bool {
	return s.DelMap(ccEvent(channel, datum))
}

// ResetCCMap resets only the CC bucket to identity.
func (s *State) ResetCCMap() {
	for ch := 0; ch < types.NumChannels; ch++ {
		for d := 0; d < types.NumData; d++ {
			s.setCellAt(types.CCBucket, uint8(ch), uint8(d), types.Identity(uint8(ch), uint8(d)))
		}
	}
}

// followTo walks the CC plane forward from (chan0, num0) until the
// arrow it is standing on points back to (chan0, num0). It returns the
// coordinates of that arrow's source (its "predecessor") and the
// arrow itself — the last arrow on the path, the one pointing back to
// the origin — exactly as stored. Ported from get_mf_arrow_to in the
// library this module is based on, without that function's running
// "type": the classes of the arrows passed on the way are not tracked,
// so the returned arrow's Kind and Class are those of the last arrow
// alone.
func (s *State) followTo(chan0, num0 uint8) (predChan, predDatum uint8, arrow types.Cell, err error) {
	chanPos, datumPos := chan0, num0
	for hop := 0; hop < types.MaxSwapHops; hop++ {
		cell := s.cellAt(types.CCBucket, chanPos, datumPos)
		if cell.Channel == chan0 && cell.Datum == num0 {
			return chanPos, datumPos, cell, nil
		}
		chanPos, datumPos = cell.Channel, cell.Datum
	}
	return 0, 0, types.Cell{}, ErrPathTooLong
}

// SetCCSwap installs a mutual route between (c1,n1) and (c2,n2):
// events on c1/n1 are substituted to c2/n2, and a partner arrow is
// installed so c2/n2 routes back, preserving Rule A (every CC-plane
// node has exactly one outgoing and one incoming arrow). Rejects if
// either endpoint already carries a CC substitution.
func (s *State) SetCCSwap(c1, n1, c2, n2 uint8) error {
	s.swapMu.Lock()
	defer s.swapMu.Unlock()

	if err := validCoords(types.ControlChange, c1, n1); err != nil {
		return err
	}
	if err := validCoords(types.ControlChange, c2, n2); err != nil {
		return err
	}

	outFromOrigin := s.cellAt(types.CCBucket, c1, n1)
	predChan, predDatum, inToDest, err := s.followTo(c2, n2)
	if err != nil {
		return fmt.Errorf("set_cc_swap: %w", err)
	}
	if outFromOrigin.IsCCSubstitution() || inToDest.IsCCSubstitution() {
		return ErrAlreadySubstituted
	}

	// O -> D, a concrete CC substitution.
	s.setCellAt(types.CCBucket, c1, n1, types.Cell{
		Kind: types.ArrowSubstitute, Class: types.ControlChange, Channel: c2, Datum: n2,
	})

	// Partner arrow at D's predecessor, completing the mutual route.
	if predChan == outFromOrigin.Channel && predDatum == outFromOrigin.Datum {
		s.setCellAt(types.CCBucket, predChan, predDatum, types.Identity(predChan, predDatum))
	} else {
		s.setCellAt(types.CCBucket, predChan, predDatum, types.Cell{
			Kind: types.ArrowSwap, Channel: outFromOrigin.Channel, Datum: outFromOrigin.Datum,
		})
	}
	return nil
}

// DelCCSwap removes (chan,num) from whatever CC-plane cycle it
// participates in, repairing Rule A on its neighbors. Grounded
// directly on del_midi_filter_cc_swap in the original source: the
// two "otherwise" branches there are keyed on separate conditions (the
// predecessor arrow B, and the successor-of-successor arrow C) and
// write to different cells than a literal reading of this behavior's
// prose description would suggest — see DESIGN.md for the specific
// discrepancy this implementation resolves in the source's favor.
func (s *State) DelCCSwap(channel, datum uint8) error {
	s.swapMu.Lock()
	defer s.swapMu.Unlock()

	if err := validCoords(types.ControlChange, channel, datum); err != nil {
		return err
	}

	a := s.cellAt(types.CCBucket, channel, datum) // outgoing from (channel,datum) -> Y
	predChan, predDatum, b, err := s.followTo(channel, datum) // incoming arrow, stored at predChan/predDatum
	if err != nil {
		return fmt.Errorf("del_cc_swap: %w", err)
	}
	c := s.cellAt(types.CCBucket, a.Channel, a.Datum) // outgoing from Y -> Z

	if b.Kind != types.ArrowSwap && c.Kind != types.ArrowSwap {
		s.setCellAt(types.CCBucket, channel, datum, types.Cell{
			Kind: types.ArrowSwap, Channel: a.Channel, Datum: a.Datum,
		})
		return nil
	}

	if b.Kind == types.ArrowSwap {
		s.setCellAt(types.CCBucket, channel, datum, types.Identity(channel, datum))
	} else {
		s.setCellAt(types.CCBucket, channel, datum, types.Cell{
			Kind: types.ArrowSwap, Channel: c.Channel, Datum: c.Datum,
		})
	}

	if c.Kind == types.ArrowSwap {
		s.setCellAt(types.CCBucket, a.Channel, a.Datum, types.Identity(a.Channel, a.Datum))
	} else {
		s.setCellAt(types.CCBucket, predChan, predDatum, types.Cell{
			Kind: types.ArrowSwap, Channel: a.Channel, Datum: a.Datum,
		})
	}
	return nil
}

// GetCCSwapSource returns the (channel, datum) whose outgoing arrow
// points at (channel,datum) — the source node of the arrow pointing
// at the given node. Unlike the source library's get_midi_filter_cc_swap,
// which returns only the predecessor's datum (silently dropping its
// channel), this returns the full source node — an enrichment spec.md
// calls for explicitly ("Returns the source node of the arrow pointing
// at (ch,n)").
func (s *State) GetCCSwapSource(channel, datum uint8) (srcChan, srcDatum uint8, err error) {
	if err := validCoords(types.ControlChange, channel, datum); err != nil {
		return 0, 0, err
	}
	predChan, predDatum, _, err := s.followTo(channel, datum)
	if err != nil {
		return 0, 0, fmt.Errorf("get_cc_swap: %w", err)
	}
	return predChan, predDatum, nil
}
