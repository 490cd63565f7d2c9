package tetra

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustBits(t *testing.T, pattern string) []byte {
	t.Helper()

	var bits, err = parsePattern(pattern)
	require.NoError(t, err)

	return bits
}

// burst returns one slot of zeros with the training sequence for bt in place.
func burst(t *testing.T, bt BurstType) []byte {
	t.Helper()

	var b = make([]byte, BitsPerSlot)

	switch bt {
	case BurstSync:
		copy(b[syncTrainingOffset:], mustBits(t, syncTrainingSeq))
	case BurstNormal1:
		copy(b[normalTrainingOffset:], mustBits(t, normalTrainingSeq1))
	case BurstNormal2:
		copy(b[normalTrainingOffset:], mustBits(t, normalTrainingSeq2))
	}

	return b
}

// stream concatenates bursts of the given types.
func stream(t *testing.T, types ...BurstType) []byte {
	t.Helper()

	var out []byte
	for _, bt := range types {
		out = append(out, burst(t, bt)...)
	}

	return out
}

func repeat(bt BurstType, n int) []BurstType {
	var out = make([]BurstType, n)
	for i := range out {
		out[i] = bt
	}

	return out
}

// recorder keeps every event in order.
type recorder struct {
	syncs    [][2]SyncState
	sysinfos []SysInfoEvent
	cells    []CellDataEvent
	traffic  []TrafficEvent
	order    []string
}

func (r *recorder) SyncChanged(from, to SyncState) {
	r.syncs = append(r.syncs, [2]SyncState{from, to})
	r.order = append(r.order, "sync:"+to.String())
}

func (r *recorder) SystemInfo(ev SysInfoEvent) {
	r.sysinfos = append(r.sysinfos, ev)
	r.order = append(r.order, "sysinfo")
}

func (r *recorder) CellData(ev CellDataEvent) {
	r.cells = append(r.cells, ev)
	r.order = append(r.order, "cell")
}

func (r *recorder) Traffic(ev TrafficEvent) {
	r.traffic = append(r.traffic, ev)
	r.order = append(r.order, "traffic")
}
