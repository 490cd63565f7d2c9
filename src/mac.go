package tetra

/*------------------------------------------------------------------
 *
 * Purpose:	Hand confirmed bursts to the logical-channel codec and
 *		fold what comes back into the receiver state.
 *
 * Description:	Receiver state outlives a single burst:
 *
 *		last system information	replaced, never merged, by each SYSINFO
 *		cell identity		replaced by each SYNC
 *		voice channels		usage marker -> SSI, see voice.go
 *
 *		The burst context (AACH usage marker, addressed SSI) is
 *		scratch for the burst being dispatched and is cleared first.
 *
 *		Codec failures are expected on a real channel.  They are
 *		counted and logged, nothing more.
 *
 *------------------------------------------------------------------*/

import (
	"github.com/charmbracelet/log"
)

type BurstContext struct {
	Usage uint32
	SSI   uint32
}

// ReceiverState is a copy of what the dispatcher holds between bursts.
type ReceiverState struct {
	LastSysInfo   *SysInfo
	Cell          *CellData
	VoiceChannels map[uint32]VoiceChannel
	Burst         BurstContext
}

type Dispatcher struct {
	codec    Codec
	consumer Consumer
	timing   *Timing
	stats    *Stats
	logger   *log.Logger
	period   int64

	lastSysInfo *SysInfo
	cell        *CellData
	voice       *VoiceChannels
	burst       BurstContext
}

func newDispatcher(cfg Config, codec Codec, consumer Consumer, timing *Timing, stats *Stats, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		codec:    codec,
		consumer: consumer,
		timing:   timing,
		stats:    stats,
		logger:   logger,
		period:   int64(cfg.FrameBits),
		voice:    NewVoiceChannels(cfg.VoiceChannelTimeout),
	}
}

func (d *Dispatcher) State() ReceiverState {
	var rs = ReceiverState{
		VoiceChannels: d.voice.snapshot(),
		Burst:         d.burst,
	}

	if d.lastSysInfo != nil {
		var si = *d.lastSysInfo
		rs.LastSysInfo = &si
	}

	if d.cell != nil {
		var cd = *d.cell
		rs.Cell = &cd
	}

	return rs
}

/*------------------------------------------------------------------
 *
 * Function:	Dispatch
 *
 * Purpose:	Decode one confirmed burst and act on the results.
 *
 * Inputs:	f	- The burst, its bits already cut from the window.
 *
 * Description:	Each system information, cell data or traffic result
 *		produces exactly one event.  Usage markers, channel
 *		allocations and releases only change state.
 *
 *------------------------------------------------------------------*/

func (d *Dispatcher) Dispatch(f Frame) {
	d.burst = BurstContext{}
	d.stats.Frames++

	// Slot clock for voice channel activity.
	var now = f.Start / d.period

	if n := d.voice.Expire(now); n > 0 {
		d.stats.ExpiredChannels += n
		d.logger.Debug("voice channels expired", "count", n, "active", d.voice.Len())
	}

	var results, err = d.codec.Decode(f)
	if err != nil {
		d.stats.DecodeErrors++
		d.logger.Debug("decode failed", "bit", f.Start, "burst", f.Burst, "time", f.Time, "handoff", f.Handoff, "err", err)

		return
	}

	for _, r := range results {
		d.fold(f, r, now)
	}
}

func (d *Dispatcher) fold(f Frame, r Result, now int64) {
	switch r := r.(type) {
	case *AccessAssign:
		d.burst.Usage = r.Usage

	case *ChannelAssign:
		d.voice.Assign(r.Usage, r.SSI, r.Timeslot, now)
		d.burst.SSI = r.SSI
		if d.burst.Usage == 0 {
			d.burst.Usage = r.Usage
		}

	case *ChannelRelease:
		if d.voice.Release(r.Usage) {
			d.logger.Debug("voice channel released", "usage", r.Usage, "active", d.voice.Len())
		}

	case *SysInfo:
		d.sysInfo(f, r)

	case *CellData:
		d.cellData(f, r)

	case *Traffic:
		d.traffic(f, r, now)

	case *Unrecognized:
		d.stats.Unrecognized++

	case nil:

	default:
		d.stats.Unrecognized++
		d.logger.Debug("unexpected codec result", "type", r)
	}
}

// timeOf gives the burst's coordinate after any alignment it carried.
// Lock may already be gone by the time a confirmed burst completes.
func (d *Dispatcher) timeOf(f Frame) TdmaTime {
	if !d.timing.Locked() {
		return f.Time
	}

	return d.timing.CoordinateFor(f.Start)
}

func (d *Dispatcher) sysInfo(f Frame, r *SysInfo) {
	var si = *r
	d.lastSysInfo = &si
	d.stats.SysInfos++

	if si.HyperframeValid {
		d.timing.AlignHyperframe(f.Start, int(si.Hyperframe))
	}

	var ev = SysInfoEvent{
		ServiceDetails:  si.ServiceDetails,
		HyperframeValid: si.HyperframeValid,
		Hyperframe:      si.Hyperframe,
		CCKID:           si.CCKID,
		LocationArea:    si.LocationArea,
		Time:            d.timeOf(f),
	}

	var dl, dlErr = DownlinkHz(si.Band, si.MainCarrier, si.Offset)
	if dlErr != nil {
		d.logger.Warn("sysinfo with unusable carrier", "band", si.Band, "carrier", si.MainCarrier, "err", dlErr)
	} else {
		ev.DownlinkHz = dl

		var ul, ulErr = UplinkHz(si.Band, si.MainCarrier, si.Offset, si.DuplexSpacing, si.ReverseOperation)
		if ulErr != nil {
			d.logger.Warn("sysinfo with unusable duplex spacing", "band", si.Band, "duplex", si.DuplexSpacing, "err", ulErr)
		} else {
			ev.UplinkHz = ul
		}
	}

	d.consumer.SystemInfo(ev)
}

func (d *Dispatcher) cellData(f Frame, r *CellData) {
	var cd = *r
	d.cell = &cd
	d.stats.CellDatas++

	if cd.TimeValid {
		d.timing.AlignFrame(f.Start, cd.Timeslot, cd.Frame, cd.Multiframe)
	}

	d.consumer.CellData(CellDataEvent{
		MCC:        cd.MCC,
		MNC:        cd.MNC,
		ColourCode: cd.ColourCode,
		Time:       d.timeOf(f),
	})
}

func (d *Dispatcher) traffic(f Frame, r *Traffic, now int64) {
	d.stats.TrafficFrames++

	var usage = r.Usage
	if usage == 0 {
		usage = d.burst.Usage
	}

	var t = d.timeOf(f)

	var ssi = d.burst.SSI
	if usage != 0 {
		var ch = d.voice.Touch(usage, t.Timeslot, now)
		if ch.SSI != 0 {
			ssi = ch.SSI
		}
	}

	d.consumer.Traffic(TrafficEvent{
		Bits:     r.Bits,
		Timeslot: t.Timeslot,
		Usage:    usage,
		SSI:      ssi,
		Time:     t,
	})
}
