package tetra

/********************************************************************************
 *
 * Purpose:	Bit ingest buffer.
 *		A sliding window over the bits coming out of the demodulator,
 *		one bit per byte, addressed by absolute position in the stream.
 *
 * Description:	The window never reorders bits.  New bits go on the end,
 *		consumed bits come off the front, and the absolute position of
 *		the first resident bit (base) only ever moves forward.
 *
 *		Overflow is routine: appending more than fits drops the oldest
 *		bits, the same as a receiver that fell behind.
 *
 *******************************************************************************/

import (
	"fmt"
)

type BitWindow struct {
	bits     []byte /* Resident bits, oldest first.  len(bits) is the count. */
	base     int64  /* Absolute position of bits[0]. */
	capacity int
}

// NewBitWindow panics on a capacity below 1.  Sessions get theirs from a
// validated Config.
func NewBitWindow(capacity int) *BitWindow {
	if capacity < 1 {
		panic(fmt.Sprintf("assert(capacity >= 1), got %d", capacity))
	}

	return &BitWindow{
		bits:     make([]byte, 0, capacity),
		capacity: capacity,
	}
}

// Base is the absolute position of the oldest resident bit.
func (w *BitWindow) Base() int64 { return w.base }

// End is one past the absolute position of the newest resident bit.
func (w *BitWindow) End() int64 { return w.base + int64(len(w.bits)) }

func (w *BitWindow) Len() int { return len(w.bits) }

func (w *BitWindow) Capacity() int { return w.capacity }

func (w *BitWindow) Free() int { return w.capacity - len(w.bits) }

func (w *BitWindow) Contains(abs int64) bool {
	return abs >= w.base && abs < w.End()
}

/***********************************************************************************
 *
 * Name:	Append
 *
 * Purpose:	Add newly arrived bits to the end of the window.
 *
 * Inputs:	in	- Any number of bits, including none.
 *
 * Description:	If the result would not fit, the oldest bits are discarded
 *		first so the window never holds more than its capacity.
 *		A chunk larger than the whole capacity leaves only its tail.
 *
 ***********************************************************************************/

func (w *BitWindow) Append(in []byte) {
	if len(in) == 0 {
		return
	}

	if len(in) >= w.capacity {
		var drop = len(in) - w.capacity
		w.base = w.End() + int64(drop)
		w.bits = append(w.bits[:0], in[drop:]...)

		return
	}

	var overflow = len(w.bits) + len(in) - w.capacity
	if overflow > 0 {
		w.DiscardBefore(w.base + int64(overflow))
	}

	w.bits = append(w.bits, in...)
}

/***********************************************************************************
 *
 * Name:	Slice
 *
 * Purpose:	Copy out n bits starting at absolute position start.
 *
 * Returns:	A fresh copy, so the caller may keep it after the window moves on.
 *		ErrOutOfWindow if any requested bit was already discarded or
 *		has not arrived yet.
 *
 ***********************************************************************************/

func (w *BitWindow) Slice(start int64, n int) ([]byte, error) {
	if n < 0 || start < w.base || start+int64(n) > w.End() {
		return nil, fmt.Errorf("%w: want [%d, %d), have [%d, %d)", ErrOutOfWindow, start, start+int64(n), w.base, w.End())
	}

	var from = int(start - w.base)
	var out = make([]byte, n)
	copy(out, w.bits[from:from+n])

	return out, nil
}

// distance counts the positions where the resident bits at start differ from
// pattern, without copying.
func (w *BitWindow) distance(start int64, pattern []byte) (int, error) {
	if start < w.base || start+int64(len(pattern)) > w.End() {
		return 0, fmt.Errorf("%w: want [%d, %d), have [%d, %d)", ErrOutOfWindow, start, start+int64(len(pattern)), w.base, w.End())
	}

	var from = int(start - w.base)

	return hammingDistance(w.bits[from:from+len(pattern)], pattern), nil
}

/***********************************************************************************
 *
 * Name:	DiscardBefore
 *
 * Purpose:	Drop every bit before absolute position abs.
 *
 * Description:	Discarding before a position that is already gone is a no-op,
 *		so base never decreases.  Discarding past the newest bit only
 *		empties the window: bits that have not arrived yet keep their
 *		positions.
 *
 ***********************************************************************************/

func (w *BitWindow) DiscardBefore(abs int64) {
	if abs <= w.base {
		return
	}

	if abs >= w.End() {
		w.base = w.End()
		w.bits = w.bits[:0]

		return
	}

	var n = int(abs - w.base)
	var kept = copy(w.bits, w.bits[n:])
	w.bits = w.bits[:kept]
	w.base = abs
}
