package tetra

/*------------------------------------------------------------------
 *
 * Purpose:	Keep track of voice channels currently in use on the cell.
 *
 * Description:	A traffic usage marker is allocated to a call in a
 *		MAC-RESOURCE channel allocation.  We remember which SSI it
 *		went to so traffic bursts carrying only the usage marker in
 *		their AACH can be attributed.
 *
 *		Entries go away when the codec reports the release, or when
 *		nothing has been heard on them for a while.  "A while" is
 *		counted in timeslots of received bits, not wall clock time,
 *		so a stalled input never expires anything.
 *
 *------------------------------------------------------------------*/

import (
	"slices"
)

type VoiceChannel struct {
	Usage    uint32
	SSI      uint32
	Timeslot int

	FirstSeen int64 // Slot clock when assigned.
	LastSeen  int64 // Slot clock of the last assignment or traffic burst.
	Bursts    int   // Traffic bursts seen.
}

type VoiceChannels struct {
	channels map[uint32]*VoiceChannel
	timeout  int64 /* Slots of inactivity before expiry, 0 for never. */
}

func NewVoiceChannels(timeout int) *VoiceChannels {
	return &VoiceChannels{
		channels: make(map[uint32]*VoiceChannel),
		timeout:  int64(timeout),
	}
}

// Assign records an allocation.  A new SSI for a known usage marker replaces the old one.
func (vc *VoiceChannels) Assign(usage, ssi uint32, timeslot int, now int64) *VoiceChannel {
	var ch, ok = vc.channels[usage]
	if !ok || ch.SSI != ssi {
		ch = &VoiceChannel{Usage: usage, SSI: ssi, Timeslot: timeslot, FirstSeen: now}
		vc.channels[usage] = ch
	}

	ch.Timeslot = timeslot
	ch.LastSeen = now

	return ch
}

// Touch notes traffic on a usage marker, creating an entry with unknown SSI if needed.
func (vc *VoiceChannels) Touch(usage uint32, timeslot int, now int64) *VoiceChannel {
	var ch, ok = vc.channels[usage]
	if !ok {
		ch = &VoiceChannel{Usage: usage, Timeslot: timeslot, FirstSeen: now}
		vc.channels[usage] = ch
	}

	ch.LastSeen = now
	ch.Bursts++

	return ch
}

func (vc *VoiceChannels) Release(usage uint32) bool {
	var _, ok = vc.channels[usage]
	delete(vc.channels, usage)

	return ok
}

func (vc *VoiceChannels) Get(usage uint32) (VoiceChannel, bool) {
	var ch, ok = vc.channels[usage]
	if !ok {
		return VoiceChannel{}, false
	}

	return *ch, true
}

// Expire drops channels idle for longer than the timeout and returns how many went.
func (vc *VoiceChannels) Expire(now int64) int {
	if vc.timeout <= 0 {
		return 0
	}

	var n = 0
	for usage, ch := range vc.channels {
		if now-ch.LastSeen > vc.timeout {
			delete(vc.channels, usage)
			n++
		}
	}

	return n
}

func (vc *VoiceChannels) Len() int { return len(vc.channels) }

// Keys returns the usage markers in ascending order.
func (vc *VoiceChannels) Keys() []uint32 {
	var keys = make([]uint32, 0, len(vc.channels))
	for usage := range vc.channels {
		keys = append(keys, usage)
	}

	slices.Sort(keys)

	return keys
}

func (vc *VoiceChannels) snapshot() map[uint32]VoiceChannel {
	var out = make(map[uint32]VoiceChannel, len(vc.channels))
	for usage, ch := range vc.channels {
		out[usage] = *ch
	}

	return out
}
