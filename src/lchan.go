package tetra

// Logical channels, EN 300 392-2 chapter 9.3 and 22.2.
// QAM channels are not covered.

type LogicalChannel int

const (
	LChanUnknown LogicalChannel = iota
	LChanSCHF
	LChanSCHHD
	LChanSCHHU
	LChanSTCH
	LChanSCHP8F
	LChanSCHP8HD
	LChanSCHP8HU
	LChanAACH
	LChanTCH
	LChanBSCH
	LChanBNCH
)

var lchanNames = [...]string{
	LChanUnknown: "UNKNOWN",
	LChanSCHF:    "SCH/F",
	LChanSCHHD:   "SCH/HD",
	LChanSCHHU:   "SCH/HU",
	LChanSTCH:    "STCH",
	LChanSCHP8F:  "SCH-P8/F",
	LChanSCHP8HD: "SCH-P8/HD",
	LChanSCHP8HU: "SCH-P8/HU",
	LChanAACH:    "AACH",
	LChanTCH:     "TCH",
	LChanBSCH:    "BSCH",
	LChanBNCH:    "BNCH",
}

func (lc LogicalChannel) String() string {
	if lc < 0 || int(lc) >= len(lchanNames) {
		return lchanNames[LChanUnknown]
	}

	return lchanNames[lc]
}

/*------------------------------------------------------------------
 *
 * Function:	CandidateChannels
 *
 * Purpose:	List the logical channels a downlink burst may carry,
 *		given its type and TDMA position.
 *
 * Description:	Every continuous downlink burst has an AACH in its
 *		broadcast block.  Beyond that:
 *
 *		sync burst	BSCH in block 1; block 2 is BNCH on frame 18
 *				when (MN + TN) mod 4 == 1 (9.5.2), SCH/HD otherwise.
 *		normal 1	one full slot block, SCH/F or TCH.  No traffic on frame 18.
 *		normal 2	two half slot blocks, SCH/HD, STCH or BNCH.
 *
 *		The final choice needs the AACH usage and the MAC header,
 *		which is the codec's business.  Without lock the time is
 *		relative and the frame 18 rules may be wrong.
 *
 *------------------------------------------------------------------*/

func CandidateChannels(burst BurstType, t TdmaTime) []LogicalChannel {
	switch burst {
	case BurstSync:
		if t.IsControlFrame() && (t.Multiframe+1+t.Timeslot+1)%4 == 1 {
			return []LogicalChannel{LChanAACH, LChanBSCH, LChanBNCH}
		}

		return []LogicalChannel{LChanAACH, LChanBSCH, LChanSCHHD}
	case BurstNormal1:
		if t.IsControlFrame() {
			return []LogicalChannel{LChanAACH, LChanSCHF}
		}

		return []LogicalChannel{LChanAACH, LChanSCHF, LChanTCH}
	case BurstNormal2:
		if t.IsControlFrame() {
			return []LogicalChannel{LChanAACH, LChanSCHHD, LChanBNCH}
		}

		return []LogicalChannel{LChanAACH, LChanSCHHD, LChanSTCH, LChanBNCH}
	default:
		return []LogicalChannel{LChanUnknown}
	}
}
