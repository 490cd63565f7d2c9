package tetra

/*------------------------------------------------------------------
 *
 * Purpose:	Boundary to the logical-channel codec.
 *
 * Description:	The codec takes one synchronised burst and returns what
 *		it found in it: deinterleaving, descrambling, FEC, CRC and
 *		MAC/MLE PDU parsing all happen on the far side.  This
 *		package only acts on the typed results.
 *
 *		A burst may yield several results, for example an AACH
 *		usage marker and the traffic block it applies to.  Results
 *		are folded in the order returned.
 *
 *------------------------------------------------------------------*/

// Frame is one confirmed burst handed to the codec.
type Frame struct {
	Start    int64  // Absolute bit position of the first bit.
	Bits     []byte // One bit per byte, BitsPerSlot of them.
	Burst    BurstType
	Distance int // Training sequence Hamming distance that confirmed it.
	Time     TdmaTime
	Aligned  bool   // Time is the cell's numbering rather than relative to lock.
	Handoff  uint64 // 1 for the burst that confirmed lock, counting up while locked.
	Channels []LogicalChannel
}

type Codec interface {
	// Decode returns the results found in f.  An error means nothing
	// usable came out of the burst; it never affects synchronisation.
	Decode(f Frame) ([]Result, error)
}

type CodecFunc func(f Frame) ([]Result, error)

func (fn CodecFunc) Decode(f Frame) ([]Result, error) { return fn(f) }

// Result is one of *SysInfo, *CellData, *Traffic, *AccessAssign,
// *ChannelAssign, *ChannelRelease or *Unrecognized.
type Result interface {
	isResult()
}

// SysInfo carries the fields of SYSINFO (BNCH) this receiver uses.
type SysInfo struct {
	MainCarrier      uint16
	Band             uint8
	Offset           uint8
	DuplexSpacing    uint8
	ReverseOperation bool

	// Either a hyperframe number or a cipher key identifier is broadcast.
	HyperframeValid bool
	Hyperframe      uint16
	CCKID           uint16

	LocationArea   uint16
	ServiceDetails ServiceDetails
}

// CellData carries D-MLE-SYNC and the MAC part of SYNC (BSCH).
type CellData struct {
	MCC        uint16
	MNC        uint16
	ColourCode uint8

	// Position of the burst that carried this PDU, zero based.
	TimeValid  bool
	Timeslot   int
	Frame      int
	Multiframe int
}

type Traffic struct {
	Bits  []byte
	Usage uint32 // Zero means the usage marker from this burst's AACH applies.
}

// AccessAssign is the downlink usage marker from the AACH.
type AccessAssign struct {
	Usage uint32
}

// ChannelAssign is a MAC-RESOURCE channel allocation of a traffic usage marker to an SSI.
type ChannelAssign struct {
	Usage    uint32
	SSI      uint32
	Timeslot int
}

type ChannelRelease struct {
	Usage uint32
}

type Unrecognized struct {
	Channel LogicalChannel
	Reason  string
}

func (*SysInfo) isResult()        {}
func (*CellData) isResult()       {}
func (*Traffic) isResult()        {}
func (*AccessAssign) isResult()   {}
func (*ChannelAssign) isResult()  {}
func (*ChannelRelease) isResult() {}
func (*Unrecognized) isResult()   {}

// NullCodec decodes nothing.  It reports each burst as unrecognized with
// the first channel it could be, so lock can be watched without a MAC layer.
type NullCodec struct{}

func (NullCodec) Decode(f Frame) ([]Result, error) {
	var lc = LChanUnknown
	for _, c := range f.Channels {
		if c != LChanAACH {
			lc = c
			break
		}
	}

	return []Result{&Unrecognized{Channel: lc, Reason: "no codec"}}, nil
}
