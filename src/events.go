package tetra

import (
	"strings"
)

// Consumer receives everything a session reports.  Calls are made
// synchronously from Feed, on the caller's goroutine, in stream order.
type Consumer interface {
	SyncChanged(from, to SyncState)
	SystemInfo(ev SysInfoEvent)
	CellData(ev CellDataEvent)
	Traffic(ev TrafficEvent)
}

type SysInfoEvent struct {
	DownlinkHz     int64 // Zero when the band or duplex spacing is reserved.
	UplinkHz       int64
	ServiceDetails ServiceDetails

	HyperframeValid bool
	Hyperframe      uint16
	CCKID           uint16
	LocationArea    uint16

	Time TdmaTime
}

type CellDataEvent struct {
	MCC        uint16
	MNC        uint16
	ColourCode uint8
	Time       TdmaTime
}

type TrafficEvent struct {
	Bits     []byte
	Timeslot int
	Usage    uint32
	SSI      uint32 // Zero when no assignment for the usage marker has been seen.
	Time     TdmaTime
}

// ConsumerFuncs adapts plain functions.  Nil fields are skipped.
type ConsumerFuncs struct {
	OnSyncChanged func(from, to SyncState)
	OnSystemInfo  func(ev SysInfoEvent)
	OnCellData    func(ev CellDataEvent)
	OnTraffic     func(ev TrafficEvent)
}

func (c ConsumerFuncs) SyncChanged(from, to SyncState) {
	if c.OnSyncChanged != nil {
		c.OnSyncChanged(from, to)
	}
}

func (c ConsumerFuncs) SystemInfo(ev SysInfoEvent) {
	if c.OnSystemInfo != nil {
		c.OnSystemInfo(ev)
	}
}

func (c ConsumerFuncs) CellData(ev CellDataEvent) {
	if c.OnCellData != nil {
		c.OnCellData(ev)
	}
}

func (c ConsumerFuncs) Traffic(ev TrafficEvent) {
	if c.OnTraffic != nil {
		c.OnTraffic(ev)
	}
}

// Consumers delivers each event to every member in order.
type Consumers []Consumer

func (cs Consumers) SyncChanged(from, to SyncState) {
	for _, c := range cs {
		c.SyncChanged(from, to)
	}
}

func (cs Consumers) SystemInfo(ev SysInfoEvent) {
	for _, c := range cs {
		c.SystemInfo(ev)
	}
}

func (cs Consumers) CellData(ev CellDataEvent) {
	for _, c := range cs {
		c.CellData(ev)
	}
}

func (cs Consumers) Traffic(ev TrafficEvent) {
	for _, c := range cs {
		c.Traffic(ev)
	}
}

/*
 * BS service details, D-MLE-SYSINFO, 18.5.2.
 */

type ServiceDetails uint16

const (
	ServAdvancedLink ServiceDetails = 1 << iota
	ServAirEncryption
	ServSNDCP
	_
	ServCircuitData
	ServVoice
	ServSystemWide
	ServMigration
	ServMinimumMode
	ServPriorityCell
	ServDeregistrationRequired
	ServRegistrationRequired
)

var serviceDetailNames = []struct {
	flag ServiceDetails
	name string
}{
	{ServRegistrationRequired, "reg"},
	{ServDeregistrationRequired, "dereg"},
	{ServPriorityCell, "prio"},
	{ServMinimumMode, "min-mode"},
	{ServMigration, "migration"},
	{ServSystemWide, "sys-wide"},
	{ServVoice, "voice"},
	{ServCircuitData, "csd"},
	{ServSNDCP, "sndcp"},
	{ServAirEncryption, "air-encr"},
	{ServAdvancedLink, "adv-link"},
}

func (sd ServiceDetails) Has(flag ServiceDetails) bool {
	return sd&flag != 0
}

func (sd ServiceDetails) String() string {
	var names []string
	for _, n := range serviceDetailNames {
		if sd.Has(n.flag) {
			names = append(names, n.name)
		}
	}

	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, ",")
}
