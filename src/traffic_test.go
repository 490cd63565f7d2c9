package tetra

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftBits(t *testing.T) {
	assert.Equal(t, []int16{-127, 127, -127}, SoftBits([]byte{1, 0, 1}))
	assert.Empty(t, SoftBits(nil))
}

func TestTrafficRecorder(t *testing.T) {
	var dir = t.TempDir()

	var tr, err = NewTrafficRecorder(dir, quietLogger())
	require.NoError(t, err)

	tr.Traffic(TrafficEvent{Usage: 12, Bits: []byte{1, 0}})
	tr.Traffic(TrafficEvent{Usage: 12, Bits: []byte{0}})
	tr.Traffic(TrafficEvent{Usage: 13, Bits: []byte{1}})
	assert.Equal(t, 3, tr.Blocks())

	var data, readErr = os.ReadFile(filepath.Join(dir, "traffic_12.sb"))
	require.NoError(t, readErr)
	require.Len(t, data, 6)

	var soft = make([]int16, 3)
	for i := range soft {
		soft[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}

	assert.Equal(t, []int16{-127, 127, 127}, soft)
	assert.FileExists(t, tr.FileName(13))
}

func TestTrafficRecorderNeedsDirectory(t *testing.T) {
	var _, err = NewTrafficRecorder(filepath.Join(t.TempDir(), "missing"), quietLogger())
	require.Error(t, err)
}
