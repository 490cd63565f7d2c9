package tetra

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Soft bit values expected by an ACELP speech decoder.
const (
	softOne  int16 = -127
	softZero int16 = 127
)

// TrafficRecorder appends each traffic block to <dir>/traffic_<usage>.sb as
// little endian int16 soft bits, one file per usage marker.  Files are
// opened and closed for every block, so they can be picked up while a
// call is still going.
type TrafficRecorder struct {
	dir    string
	logger *log.Logger

	blocks int
}

func NewTrafficRecorder(dir string, logger *log.Logger) (*TrafficRecorder, error) {
	var stat, err = os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("traffic directory: %w", err)
	}

	if !stat.IsDir() {
		return nil, fmt.Errorf("traffic directory %q is not a directory", dir)
	}

	if logger == nil {
		logger = log.Default()
	}

	return &TrafficRecorder{dir: dir, logger: logger}, nil
}

func (tr *TrafficRecorder) FileName(usage uint32) string {
	return filepath.Join(tr.dir, fmt.Sprintf("traffic_%d.sb", usage))
}

// SoftBits converts hard bits to decoder input.
func SoftBits(bits []byte) []int16 {
	var block = make([]int16, len(bits))
	for i, b := range bits {
		if b != 0 {
			block[i] = softOne
		} else {
			block[i] = softZero
		}
	}

	return block
}

func (tr *TrafficRecorder) Traffic(ev TrafficEvent) {
	var fname = tr.FileName(ev.Usage)

	var f, err = os.OpenFile(fname, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644) //nolint:gosec
	if err != nil {
		tr.logger.Error("can't open traffic file", "file", fname, "err", err)
		return
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, SoftBits(ev.Bits)); err != nil {
		tr.logger.Error("traffic write error", "file", fname, "err", err)
		return
	}

	tr.blocks++
}

// Blocks is the number of traffic blocks written so far.
func (tr *TrafficRecorder) Blocks() int { return tr.blocks }

func (tr *TrafficRecorder) SyncChanged(from, to SyncState) {}

func (tr *TrafficRecorder) SystemInfo(ev SysInfoEvent) {}

func (tr *TrafficRecorder) CellData(ev CellDataEvent) {}
