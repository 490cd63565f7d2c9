package tetra

/********************************************************************************
 *
 * Purpose:	Find burst boundaries in a stream of bits and keep track of
 *		how sure we are about them.
 *
 * Description:	Three states:
 *
 *		Unlocked	Slide along the stream one bit at a time looking
 *				for an acquisition training sequence.  A match means
 *				the next burst should start one frame period later.
 *
 *		KnowFrameStart	Check for a training sequence exactly where the
 *				next burst should start.  Found: locked, and that
 *				burst is the first confirmed one.  Not found: the
 *				first match was a fluke, back to searching.
 *
 *		Locked		Check every expected burst start.  A failed check
 *				uses up one unit of the miss budget and the position
 *				still advances, so isolated bit errors do not cost
 *				us lock.  The failure after the budget runs out does.
 *
 *		Step takes at most one of these decisions each time it is
 *		called and says so when it needs more bits to take the next.
 *
 *******************************************************************************/

import (
	"fmt"
)

type SyncState int

const (
	Unlocked SyncState = iota
	KnowFrameStart
	Locked
)

func (s SyncState) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case KnowFrameStart:
		return "know-frame-start"
	case Locked:
		return "locked"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type trainingSeq struct {
	name    string
	burst   BurstType
	offset  int64
	bits    []byte
	acquire bool
}

func (t *trainingSeq) span() int64 { return t.offset + int64(len(t.bits)) }

// syncStep describes the decision taken by one Step.
type syncStep struct {
	from, to SyncState

	// The burst at start passed its check and can be handed off.
	confirmed bool

	// The burst at start failed its check but lock was kept.
	missed bool

	start    int64
	burst    BurstType
	distance int
}

func (st syncStep) changed() bool { return st.from != st.to }

type BurstSyncer struct {
	period    int64
	threshold int
	budget    int

	acquire     []*trainingSeq
	all         []*trainingSeq
	acquireSpan int64 /* Bits after a candidate start needed to test it. */
	checkSpan   int64 /* Bits after an expected start needed to check it. */

	state      SyncState
	expected   int64 /* Next expected burst start, -1 when unlocked. */
	missesLeft int
	searchFrom int64 /* Next candidate start to test while unlocked. */
}

func NewBurstSync(cfg Config) (*BurstSyncer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var bs = &BurstSyncer{
		period:    int64(cfg.FrameBits),
		threshold: cfg.AcquireThreshold,
		budget:    cfg.MissBudget,
		expected:  -1,
	}

	for _, ts := range cfg.Training {
		var bits, err = ts.Bits()
		if err != nil {
			return nil, err
		}

		var t = &trainingSeq{name: ts.Name, burst: ts.Burst, offset: int64(ts.Offset), bits: bits, acquire: ts.Acquire}

		bs.all = append(bs.all, t)
		bs.checkSpan = max(bs.checkSpan, t.span())

		if t.acquire {
			bs.acquire = append(bs.acquire, t)
			bs.acquireSpan = max(bs.acquireSpan, t.span())
		}
	}

	return bs, nil
}

func (bs *BurstSyncer) State() SyncState { return bs.state }

// Expected is the next expected burst start, -1 when unlocked.
func (bs *BurstSyncer) Expected() int64 { return bs.expected }

// lowestNeeded is the oldest bit position a later Step may read.
func (bs *BurstSyncer) lowestNeeded() int64 {
	switch bs.state {
	case KnowFrameStart:
		// If the check fails, searching resumes just after the provisional match.
		return bs.expected - bs.period + 1
	case Locked:
		return bs.expected
	default:
		return bs.searchFrom
	}
}

/***********************************************************************************
 *
 * Name:	Step
 *
 * Purpose:	Take the next synchronisation decision the resident bits allow.
 *
 * Inputs:	w	- Bit window.  Not modified.
 *
 * Returns:	The decision, and false if more bits are needed before any
 *		decision can be taken.
 *		An error only if bits the state machine relies on have been
 *		discarded from the window, which is a sequencing bug.
 *
 ***********************************************************************************/

func (bs *BurstSyncer) Step(w *BitWindow) (syncStep, bool, error) {
	switch bs.state {
	case Unlocked:
		return bs.search(w)
	case KnowFrameStart, Locked:
		return bs.check(w)
	default:
		return syncStep{}, false, fmt.Errorf("burst sync in unknown state %d", bs.state)
	}
}

func (bs *BurstSyncer) search(w *BitWindow) (syncStep, bool, error) {
	// Bits before the window are gone; nothing to be done about them.
	var start = max(bs.searchFrom, w.Base())

	for ; start+bs.acquireSpan <= w.End(); start++ {
		for _, t := range bs.acquire {
			var d, err = w.distance(start+t.offset, t.bits)
			if err != nil {
				return syncStep{}, false, err
			}

			if d > bs.threshold {
				continue
			}

			bs.state = KnowFrameStart
			bs.expected = start + bs.period
			bs.searchFrom = start + 1

			return syncStep{from: Unlocked, to: KnowFrameStart, start: start, burst: t.burst, distance: d}, true, nil
		}
	}

	bs.searchFrom = start

	return syncStep{}, false, nil
}

func (bs *BurstSyncer) check(w *BitWindow) (syncStep, bool, error) {
	var start = bs.expected
	if start+bs.checkSpan > w.End() {
		return syncStep{}, false, nil
	}

	var best *trainingSeq
	var bestDistance = 0
	for _, t := range bs.all {
		var d, err = w.distance(start+t.offset, t.bits)
		if err != nil {
			return syncStep{}, false, fmt.Errorf("checking burst at %d: %w", start, err)
		}

		if best == nil || d < bestDistance {
			best = t
			bestDistance = d
		}
	}

	var step = syncStep{from: bs.state, to: bs.state, start: start, burst: best.burst, distance: bestDistance}

	if bestDistance <= bs.threshold {
		bs.state = Locked
		bs.expected = start + bs.period
		bs.missesLeft = bs.budget
		step.to = Locked
		step.confirmed = true

		return step, true, nil
	}

	step.burst = BurstUnknown

	if bs.state == Locked && bs.missesLeft > 0 {
		bs.missesLeft--
		bs.expected = start + bs.period
		step.missed = true

		return step, true, nil
	}

	if bs.state == KnowFrameStart {
		bs.searchFrom = start - bs.period + 1
	} else {
		bs.searchFrom = start
	}

	bs.state = Unlocked
	bs.expected = -1
	bs.missesLeft = 0
	step.to = Unlocked

	return step, true, nil
}
