package tetra

/*------------------------------------------------------------------
 *
 * Purpose:	TDMA timing: which timeslot, frame, multiframe and
 *		hyperframe a burst belongs to.
 *
 * Description:	One timeslot is one burst.  4 timeslots make a TDMA frame,
 *		18 frames a multiframe (frame 18 is the control frame),
 *		60 multiframes a hyperframe.
 *
 *		All numbers here start at zero.  The air interface counts
 *		timeslots, frames and multiframes from one.
 *
 *		While locked, a burst's coordinate is worked out from how
 *		many frame periods of bits separate it from the burst that
 *		confirmed lock.  Until a SYNC PDU has been decoded that is
 *		relative numbering: the first confirmed burst is slot zero.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
)

const (
	SymbolsPerSlot           = 255
	BitsPerSlot              = SymbolsPerSlot * 2
	SlotsPerFrame            = 4
	FramesPerMultiframe      = 18
	MultiframesPerHyperframe = 60
	Hyperframes              = 1 << 16

	SlotsPerMultiframe = SlotsPerFrame * FramesPerMultiframe
	SlotsPerHyperframe = SlotsPerMultiframe * MultiframesPerHyperframe
	slotsPerCycle      = int64(SlotsPerHyperframe) * Hyperframes
)

type TdmaTime struct {
	Timeslot   int
	Frame      int
	Multiframe int
	Hyperframe int
}

// TdmaTimeFromSlots converts an absolute slot count; it wraps with the hyperframe counter.
func TdmaTimeFromSlots(slots int64) TdmaTime {
	slots %= slotsPerCycle
	if slots < 0 {
		slots += slotsPerCycle
	}

	return TdmaTime{
		Timeslot:   int(slots % SlotsPerFrame),
		Frame:      int(slots / SlotsPerFrame % FramesPerMultiframe),
		Multiframe: int(slots / SlotsPerMultiframe % MultiframesPerHyperframe),
		Hyperframe: int(slots / SlotsPerHyperframe),
	}
}

func (t TdmaTime) Slots() int64 {
	return ((int64(t.Hyperframe)*MultiframesPerHyperframe+int64(t.Multiframe))*FramesPerMultiframe+int64(t.Frame))*SlotsPerFrame + int64(t.Timeslot)
}

func (t TdmaTime) Add(slots int64) TdmaTime {
	return TdmaTimeFromSlots(t.Slots() + slots)
}

func (t TdmaTime) IsControlFrame() bool {
	return t.Frame == FramesPerMultiframe-1
}

// String uses air-interface numbering, TN/FN/MN/HN.
func (t TdmaTime) String() string {
	return fmt.Sprintf("%d/%02d/%02d/%05d", t.Timeslot+1, t.Frame+1, t.Multiframe+1, t.Hyperframe)
}

/*
 * Timing holds the mapping from absolute bit position to TdmaTime for one
 * receive session.  It carries no meaning unless locked.
 */

type Timing struct {
	period   int64 /* Bits per timeslot. */
	origin   int64 /* Bit position of the burst that confirmed lock. */
	offset   int64 /* Slot count assigned to origin. */
	handoffs uint64
	locked   bool
	aligned  bool
}

func NewTiming(period int) Timing {
	return Timing{period: int64(period)}
}

// Reset starts relative numbering at the burst beginning at origin.
func (t *Timing) Reset(origin int64) {
	t.origin = origin
	t.offset = 0
	t.handoffs = 0
	t.locked = true
	t.aligned = false
}

func (t *Timing) Invalidate() {
	t.origin = 0
	t.offset = 0
	t.handoffs = 0
	t.locked = false
	t.aligned = false
}

func (t *Timing) Locked() bool { return t.locked }

// Aligned reports whether absolute numbering has been learned from the cell since lock.
func (t *Timing) Aligned() bool { return t.aligned }

// Handoffs is the number of bursts confirmed since lock.
func (t *Timing) Handoffs() uint64 { return t.handoffs }

func (t *Timing) Confirmed() { t.handoffs++ }

func (t *Timing) slotsAt(start int64) int64 {
	var delta = start - t.origin
	var n = delta / t.period
	if delta < 0 && delta%t.period != 0 {
		n--
	}

	return t.offset + n
}

// CoordinateFor the burst starting at bit position start.
func (t *Timing) CoordinateFor(start int64) TdmaTime {
	if !t.locked {
		return TdmaTime{}
	}

	return TdmaTimeFromSlots(t.slotsAt(start))
}

// AlignFrame adopts the timeslot, frame and multiframe numbers the cell
// broadcast for the burst at start, keeping the hyperframe we had.
func (t *Timing) AlignFrame(start int64, tn, fn, mn int) {
	if !t.locked {
		return
	}

	var now = t.CoordinateFor(start)
	var want = TdmaTime{Timeslot: tn, Frame: fn, Multiframe: mn, Hyperframe: now.Hyperframe}
	t.offset += want.Slots() - now.Slots()
	t.aligned = true
}

// AlignHyperframe adopts the hyperframe number the cell broadcast for the burst at start.
func (t *Timing) AlignHyperframe(start int64, hn int) {
	if !t.locked {
		return
	}

	var now = t.CoordinateFor(start)
	var want = now
	want.Hyperframe = hn % Hyperframes
	t.offset += want.Slots() - now.Slots()
}
