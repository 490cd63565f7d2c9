package tetra

// Stats counts what a session has seen.  Decode errors end up here and in
// the debug log rather than being returned.
type Stats struct {
	BitsIn int64

	Acquisitions  int // Unlocked -> KnowFrameStart
	Confirmations int // KnowFrameStart -> Locked
	FalseStarts   int // KnowFrameStart -> Unlocked
	SyncLosses    int // Locked -> Unlocked
	MissedBursts  int // Failed checks tolerated while locked.

	Frames          int // Bursts handed to the codec.
	DecodeErrors    int
	Unrecognized    int
	SysInfos        int
	CellDatas       int
	TrafficFrames   int
	ExpiredChannels int
}
