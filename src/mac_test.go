package tetra

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type macFixture struct {
	d      *Dispatcher
	timing Timing
	stats  Stats
	rec    recorder
}

// newMacFixture sets up a locked dispatcher whose codec returns whatever
// results maps the frame number to.
func newMacFixture(t *testing.T, results map[int64][]Result) *macFixture {
	t.Helper()

	var f = &macFixture{timing: NewTiming(BitsPerSlot)}
	f.timing.Reset(0)

	var codec = CodecFunc(func(fr Frame) ([]Result, error) {
		var r, ok = results[fr.Start/BitsPerSlot]
		if !ok {
			return nil, ErrCRC
		}

		return r, nil
	})

	f.d = newDispatcher(DefaultConfig(), codec, &f.rec, &f.timing, &f.stats, log.New(io.Discard))

	return f
}

func (f *macFixture) dispatch(slot int64) {
	var start = slot * BitsPerSlot
	f.d.Dispatch(Frame{
		Start: start,
		Bits:  make([]byte, BitsPerSlot),
		Burst: BurstNormal1,
		Time:  f.timing.CoordinateFor(start),
	})
}

func TestDispatchSysInfo(t *testing.T) {
	var f = newMacFixture(t, map[int64][]Result{
		0: {&SysInfo{Band: 4, MainCarrier: 1234, DuplexSpacing: 0, HyperframeValid: true, Hyperframe: 77, ServiceDetails: ServAirEncryption}},
		1: {&SysInfo{Band: 4, MainCarrier: 1000, DuplexSpacing: 7, ServiceDetails: ServVoice}},
	})

	f.dispatch(0)
	require.Len(t, f.rec.sysinfos, 1)

	var ev = f.rec.sysinfos[0]
	assert.Equal(t, int64(430_850_000), ev.DownlinkHz)
	assert.Equal(t, int64(420_850_000), ev.UplinkHz)
	assert.True(t, ev.ServiceDetails.Has(ServAirEncryption))
	assert.Equal(t, 77, ev.Time.Hyperframe, "hyperframe number applied to this burst")

	// Replaced, not merged; an unusable duplex spacing still gives an event.
	f.dispatch(1)
	require.Len(t, f.rec.sysinfos, 2)
	assert.Equal(t, int64(0), f.rec.sysinfos[1].UplinkHz)
	assert.NotZero(t, f.rec.sysinfos[1].DownlinkHz)

	var rs = f.d.State()
	require.NotNil(t, rs.LastSysInfo)
	assert.Equal(t, uint16(1000), rs.LastSysInfo.MainCarrier)
	assert.False(t, rs.LastSysInfo.HyperframeValid)
	assert.Equal(t, ServVoice, rs.LastSysInfo.ServiceDetails, "second service details only, never merged")
	assert.Equal(t, 2, f.stats.SysInfos)
}

func TestDispatchCellDataAligns(t *testing.T) {
	var f = newMacFixture(t, map[int64][]Result{
		3: {&CellData{MCC: 262, MNC: 1, ColourCode: 5, TimeValid: true, Timeslot: 1, Frame: 17, Multiframe: 9}},
	})

	f.dispatch(3)
	require.Len(t, f.rec.cells, 1)

	var ev = f.rec.cells[0]
	assert.Equal(t, uint16(262), ev.MCC)
	assert.Equal(t, TdmaTime{Timeslot: 1, Frame: 17, Multiframe: 9}, ev.Time)
	assert.True(t, f.timing.Aligned())
	assert.Equal(t, TdmaTime{Timeslot: 2, Frame: 17, Multiframe: 9}, f.timing.CoordinateFor(4*BitsPerSlot))

	var rs = f.d.State()
	require.NotNil(t, rs.Cell)
	assert.Equal(t, uint8(5), rs.Cell.ColourCode)

	// The snapshot is a copy.
	rs.Cell.MCC = 1
	assert.Equal(t, uint16(262), f.d.State().Cell.MCC)
}

func TestDispatchDecodeErrorIsSwallowed(t *testing.T) {
	var f = newMacFixture(t, nil)

	f.dispatch(0)
	f.dispatch(1)

	assert.Equal(t, 2, f.stats.Frames)
	assert.Equal(t, 2, f.stats.DecodeErrors)
	assert.Empty(t, f.rec.order)
}

func TestDispatchTrafficAttribution(t *testing.T) {
	var f = newMacFixture(t, map[int64][]Result{
		0: {&AccessAssign{Usage: 9}, &ChannelAssign{Usage: 12, SSI: 4711, Timeslot: 1}},
		1: {&AccessAssign{Usage: 12}, &Traffic{Bits: []byte{1, 0, 1}}},
		2: {&Traffic{Bits: []byte{1}, Usage: 13}},
		3: {&ChannelRelease{Usage: 12}},
		4: {&AccessAssign{Usage: 12}, &Traffic{Bits: []byte{0}}},
	})

	f.dispatch(0)
	var rs = f.d.State()
	assert.Equal(t, BurstContext{Usage: 9, SSI: 4711}, rs.Burst)
	assert.Contains(t, rs.VoiceChannels, uint32(12))

	f.dispatch(1)
	require.Len(t, f.rec.traffic, 1)
	assert.Equal(t, uint32(12), f.rec.traffic[0].Usage)
	assert.Equal(t, uint32(4711), f.rec.traffic[0].SSI)
	assert.Equal(t, 1, f.rec.traffic[0].Timeslot)
	assert.Equal(t, []byte{1, 0, 1}, f.rec.traffic[0].Bits)

	// Burst context does not leak into the next burst.
	f.dispatch(2)
	require.Len(t, f.rec.traffic, 2)
	assert.Equal(t, uint32(13), f.rec.traffic[1].Usage)
	assert.Equal(t, uint32(0), f.rec.traffic[1].SSI)

	f.dispatch(3)
	f.dispatch(4)
	require.Len(t, f.rec.traffic, 3)
	assert.Equal(t, uint32(0), f.rec.traffic[2].SSI, "released")

	assert.Equal(t, 3, f.stats.TrafficFrames)
}

func TestDispatchTrafficUsesAlignedTime(t *testing.T) {
	var f = newMacFixture(t, map[int64][]Result{
		3: {
			&CellData{MCC: 262, TimeValid: true, Timeslot: 1, Frame: 17, Multiframe: 9},
			&ChannelAssign{Usage: 7, SSI: 99, Timeslot: 1},
			&Traffic{Bits: []byte{1, 1}, Usage: 7},
		},
	})

	f.dispatch(3)
	require.Len(t, f.rec.traffic, 1)

	var ev = f.rec.traffic[0]
	assert.Equal(t, TdmaTime{Timeslot: 1, Frame: 17, Multiframe: 9}, ev.Time)
	assert.Equal(t, 1, ev.Timeslot)
	assert.Equal(t, f.rec.cells[0].Time, ev.Time)
}

func TestDispatchExpiresIdleChannels(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.VoiceChannelTimeout = 2

	var f = newMacFixture(t, map[int64][]Result{
		0: {&ChannelAssign{Usage: 12, SSI: 1}},
		1: {},
		5: {},
	})
	f.d = newDispatcher(cfg, f.d.codec, &f.rec, &f.timing, &f.stats, log.New(io.Discard))

	f.dispatch(0)
	f.dispatch(1)
	assert.Len(t, f.d.State().VoiceChannels, 1)

	f.dispatch(5)
	assert.Empty(t, f.d.State().VoiceChannels)
	assert.Equal(t, 1, f.stats.ExpiredChannels)
}

func TestDispatchMalformedIsSwallowed(t *testing.T) {
	var f = newMacFixture(t, nil)
	f.d.codec = CodecFunc(func(Frame) ([]Result, error) {
		return []Result{&SysInfo{Band: 4}}, fmt.Errorf("%w: short MAC-RESOURCE", ErrMalformed)
	})

	f.dispatch(0)
	assert.Equal(t, 1, f.stats.DecodeErrors)
	assert.Empty(t, f.rec.sysinfos, "partial results of a failed decode are dropped")
	assert.Nil(t, f.d.State().LastSysInfo)
}

func TestDispatchUnrecognized(t *testing.T) {
	var f = newMacFixture(t, map[int64][]Result{
		0: {&Unrecognized{Channel: LChanSCHF, Reason: "reserved pdu"}, nil},
	})

	f.dispatch(0)
	assert.Equal(t, 1, f.stats.Unrecognized)
	assert.Empty(t, f.rec.order)
}

func TestNullCodec(t *testing.T) {
	var results, err = NullCodec{}.Decode(Frame{Channels: []LogicalChannel{LChanAACH, LChanBSCH, LChanSCHHD}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	var u, ok = results[0].(*Unrecognized)
	require.True(t, ok)
	assert.Equal(t, LChanBSCH, u.Channel)
}
