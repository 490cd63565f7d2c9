package tetra

/********************************************************************************
 *
 * Purpose:	One receive session: bits in, synchronised bursts decoded,
 *		events out.
 *
 * Description:	A session owns its bit window, burst synchroniser, TDMA
 *		timing and receiver state.  Nothing is shared between
 *		sessions, so several carriers can be followed on separate
 *		goroutines.  A single session is not safe for concurrent use:
 *		exactly one goroutine may call Feed at a time.  Run is there
 *		for front ends that produce bits on a goroutine of their own.
 *
 *		Feed never blocks and never waits for more input.  Silence
 *		just means nothing happens.
 *
 *******************************************************************************/

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// confirmed is a burst that passed its check but may not have fully arrived yet.
type confirmed struct {
	start    int64
	burst    BurstType
	distance int
	time     TdmaTime
	aligned  bool
	handoff  uint64
}

type Session struct {
	cfg      Config
	window   *BitWindow
	sync     *BurstSyncer
	timing   Timing
	mac      *Dispatcher
	consumer Consumer
	logger   *log.Logger
	stats    Stats

	pending []confirmed
	closed  bool
}

type Option func(*Session)

func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

/***********************************************************************************
 *
 * Name:	NewSession
 *
 * Purpose:	Set up a receive session, initially unlocked.
 *
 * Inputs:	cfg		- Validated here.
 *
 *		codec		- Logical-channel decoder.  NullCodec if nil.
 *
 *		consumer	- Receives events.  May be nil to discard them.
 *
 ***********************************************************************************/

func NewSession(cfg Config, codec Codec, consumer Consumer, opts ...Option) (*Session, error) {
	var bs, err = NewBurstSync(cfg)
	if err != nil {
		return nil, err
	}

	if codec == nil {
		codec = NullCodec{}
	}

	if consumer == nil {
		consumer = ConsumerFuncs{}
	}

	var s = &Session{
		cfg:      cfg,
		window:   NewBitWindow(cfg.BufferBits),
		sync:     bs,
		timing:   NewTiming(cfg.FrameBits),
		consumer: consumer,
		logger:   log.Default().WithPrefix("tetra"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.mac = newDispatcher(cfg, codec, consumer, &s.timing, &s.stats, s.logger)

	return s, nil
}

/***********************************************************************************
 *
 * Name:	Feed
 *
 * Purpose:	Process newly demodulated bits.
 *
 * Inputs:	bits	- One bit per byte, 0 or 1.  Any length including none.
 *
 * Returns:	ErrInvalidSession for a nil or closed session.
 *		ErrOutOfWindow if the session lost track of its own bits,
 *		which is a bug rather than a property of the input.
 *
 * Description:	Bits are appended in pieces small enough that nothing still
 *		needed is pushed out of the window.  After each piece the
 *		synchroniser runs until it needs more bits, and every
 *		confirmed burst that has completely arrived is dispatched.
 *
 ***********************************************************************************/

func (s *Session) Feed(bits []byte) error {
	if s == nil || s.closed {
		return ErrInvalidSession
	}

	for len(bits) > 0 {
		s.trim()

		var n = min(len(bits), s.window.Free())
		if n == 0 {
			// Cannot happen with a validated config; let the window slide.
			n = len(bits)
		}

		s.window.Append(bits[:n])
		s.stats.BitsIn += int64(n)
		bits = bits[n:]

		if err := s.process(); err != nil {
			return err
		}
	}

	return nil
}

func (s *Session) process() error {
	for {
		if err := s.dispatchReady(); err != nil {
			return err
		}

		var step, ok, err = s.sync.Step(s.window)
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}

		s.apply(step)
	}
}

func (s *Session) apply(step syncStep) {
	if step.changed() {
		switch {
		case step.to == KnowFrameStart:
			s.stats.Acquisitions++
			s.logger.Debug("training sequence found", "bit", step.start, "burst", step.burst, "distance", step.distance)
		case step.to == Locked:
			s.stats.Confirmations++
			s.timing.Reset(step.start)
			s.logger.Info("receiver synchronized", "bit", step.start, "burst", step.burst, "distance", step.distance)
		case step.from == KnowFrameStart:
			s.stats.FalseStarts++
			s.timing.Invalidate()
			s.logger.Debug("expected burst not found", "bit", step.start, "distance", step.distance)
		default:
			s.stats.SyncLosses++
			s.timing.Invalidate()
			s.logger.Info("receiver lost synchro", "bit", step.start, "distance", step.distance)
		}

		s.consumer.SyncChanged(step.from, step.to)
	}

	if step.missed {
		s.stats.MissedBursts++
		s.logger.Debug("burst check failed, keeping lock", "bit", step.start, "distance", step.distance)
	}

	if step.confirmed {
		s.timing.Confirmed()
		s.pending = append(s.pending, confirmed{
			start:    step.start,
			burst:    step.burst,
			distance: step.distance,
			time:     s.timing.CoordinateFor(step.start),
			aligned:  s.timing.Aligned(),
			handoff:  s.timing.Handoffs(),
		})
	}
}

// dispatchReady hands off every pending burst that has fully arrived, oldest first.
func (s *Session) dispatchReady() error {
	for len(s.pending) > 0 {
		var c = s.pending[0]
		if c.start+int64(s.cfg.FrameBits) > s.window.End() {
			return nil
		}

		var bits, err = s.window.Slice(c.start, s.cfg.FrameBits)
		if err != nil {
			return fmt.Errorf("dispatching burst at %d: %w", c.start, err)
		}

		s.pending = s.pending[1:]

		s.mac.Dispatch(Frame{
			Start:    c.start,
			Bits:     bits,
			Burst:    c.burst,
			Distance: c.distance,
			Time:     c.time,
			Aligned:  c.aligned,
			Handoff:  c.handoff,
			Channels: CandidateChannels(c.burst, c.time),
		})

		s.window.DiscardBefore(min(c.start+int64(s.cfg.FrameBits), s.lowestNeeded()))
	}

	return nil
}

func (s *Session) lowestNeeded() int64 {
	var low = s.sync.lowestNeeded()
	for _, c := range s.pending {
		low = min(low, c.start)
	}

	return low
}

// trim drops bits nothing will read again.
func (s *Session) trim() {
	s.window.DiscardBefore(s.lowestNeeded())
}

// Run feeds chunks from in until it is closed or ctx is done.
func (s *Session) Run(ctx context.Context, in <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case bits, ok := <-in:
			if !ok {
				return nil
			}

			if err := s.Feed(bits); err != nil {
				return err
			}
		}
	}
}

// Close ends the session.  Later calls to Feed fail with ErrInvalidSession.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return ErrInvalidSession
	}

	s.closed = true
	s.pending = nil

	return nil
}

func (s *Session) State() SyncState { return s.sync.State() }

// ExpectedFrameStart is the bit position where the next burst should start, -1 when unlocked.
func (s *Session) ExpectedFrameStart() int64 { return s.sync.Expected() }

// Time of the next expected burst.  Meaningless unless locked.
func (s *Session) Time() TdmaTime {
	if s.sync.State() != Locked {
		return TdmaTime{}
	}

	return s.timing.CoordinateFor(s.sync.Expected())
}

func (s *Session) Receiver() ReceiverState { return s.mac.State() }

func (s *Session) Stats() Stats { return s.stats }

func (s *Session) Config() Config { return s.cfg }
