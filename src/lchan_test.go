package tetra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateChannels(t *testing.T) {
	var fn18 = FramesPerMultiframe - 1

	var tests = []struct {
		name  string
		burst BurstType
		time  TdmaTime
		want  []LogicalChannel
	}{
		// (MN+TN) mod 4 == 1 counting from one: MN 1 TN 4.
		{"sync bnch", BurstSync, TdmaTime{Timeslot: 3, Frame: fn18, Multiframe: 0}, []LogicalChannel{LChanAACH, LChanBSCH, LChanBNCH}},
		{"sync fn18 other slot", BurstSync, TdmaTime{Timeslot: 0, Frame: fn18, Multiframe: 0}, []LogicalChannel{LChanAACH, LChanBSCH, LChanSCHHD}},
		{"sync other frame", BurstSync, TdmaTime{Timeslot: 3, Frame: 3}, []LogicalChannel{LChanAACH, LChanBSCH, LChanSCHHD}},
		{"normal1", BurstNormal1, TdmaTime{Frame: 2}, []LogicalChannel{LChanAACH, LChanSCHF, LChanTCH}},
		{"normal1 fn18", BurstNormal1, TdmaTime{Frame: fn18}, []LogicalChannel{LChanAACH, LChanSCHF}},
		{"normal2", BurstNormal2, TdmaTime{}, []LogicalChannel{LChanAACH, LChanSCHHD, LChanSTCH, LChanBNCH}},
		{"normal2 fn18", BurstNormal2, TdmaTime{Frame: fn18}, []LogicalChannel{LChanAACH, LChanSCHHD, LChanBNCH}},
		{"unknown", BurstUnknown, TdmaTime{}, []LogicalChannel{LChanUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateChannels(tt.burst, tt.time))
		})
	}
}

func TestLogicalChannelString(t *testing.T) {
	assert.Equal(t, "SCH/HD", LChanSCHHD.String())
	assert.Equal(t, "BNCH", LChanBNCH.String())
	assert.Equal(t, "UNKNOWN", LogicalChannel(99).String())
}
