package tetra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBitWindowAppendAndSlice(t *testing.T) {
	var w = NewBitWindow(8)

	w.Append([]byte{1, 0, 1})
	w.Append(nil)
	assert.Equal(t, int64(0), w.Base())
	assert.Equal(t, int64(3), w.End())
	assert.Equal(t, 5, w.Free())

	var got, err = w.Slice(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1}, got)

	// The copy is independent of the window.
	got[0] = 1
	var again, _ = w.Slice(1, 1)
	assert.Equal(t, []byte{0}, again)

	_, err = w.Slice(2, 2)
	require.ErrorIs(t, err, ErrOutOfWindow)
}

func TestBitWindowOverflowDropsOldest(t *testing.T) {
	var w = NewBitWindow(4)

	w.Append([]byte{1, 1, 1})
	w.Append([]byte{0, 0})

	assert.Equal(t, int64(1), w.Base())
	assert.Equal(t, int64(5), w.End())

	var got, err = w.Slice(1, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1, 0, 0}, got)

	_, err = w.Slice(0, 1)
	require.ErrorIs(t, err, ErrOutOfWindow)

	// Larger than the whole capacity: only the tail survives.
	w.Append([]byte{1, 0, 1, 0, 1, 1})
	assert.Equal(t, int64(7), w.Base())
	assert.Equal(t, int64(11), w.End())
	got, err = w.Slice(7, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 1, 1}, got)
}

func TestBitWindowDiscardBefore(t *testing.T) {
	var w = NewBitWindow(16)
	w.Append([]byte{0, 1, 2, 3, 4, 5})

	w.DiscardBefore(2)
	assert.Equal(t, int64(2), w.Base())
	assert.True(t, w.Contains(2))
	assert.False(t, w.Contains(1))

	w.DiscardBefore(1)
	assert.Equal(t, int64(2), w.Base(), "base never moves back")

	w.DiscardBefore(100)
	assert.Equal(t, int64(6), w.Base(), "bits not yet arrived keep their positions")
	assert.Equal(t, 0, w.Len())

	w.Append([]byte{1})
	assert.True(t, w.Contains(6))
}

func TestBitWindowDistance(t *testing.T) {
	var w = NewBitWindow(16)
	w.Append([]byte{1, 1, 0, 0, 1})

	var d, err = w.distance(1, []byte{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, d)

	_, err = w.distance(3, []byte{1, 1, 1})
	require.ErrorIs(t, err, ErrOutOfWindow)
}

// Whatever is appended or discarded, the window holds exactly the most recent
// bits that were not discarded, never more than its capacity, in order.
func TestBitWindowInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var capacity = rapid.IntRange(1, 64).Draw(t, "capacity")
		var w = NewBitWindow(capacity)

		var all []byte
		var discarded int64

		var ops = rapid.IntRange(1, 50).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			if rapid.Bool().Draw(t, "append") {
				var chunk = rapid.SliceOfN(rapid.ByteRange(0, 1), 0, 2*capacity).Draw(t, "chunk")
				w.Append(chunk)
				all = append(all, chunk...)
			} else {
				var abs = rapid.Int64Range(0, int64(len(all))+4).Draw(t, "abs")
				w.DiscardBefore(abs)
				discarded = max(discarded, min(abs, int64(len(all))))
			}

			if w.Len() > capacity {
				t.Fatalf("holding %d bits with capacity %d", w.Len(), capacity)
			}

			if w.End() != int64(len(all)) {
				t.Fatalf("end %d after %d bits", w.End(), len(all))
			}

			var wantBase = max(discarded, int64(len(all)-capacity))
			if w.Base() != wantBase {
				t.Fatalf("base %d, want %d", w.Base(), wantBase)
			}

			var got, err = w.Slice(w.Base(), w.Len())
			if err != nil {
				t.Fatal(err)
			}

			for i, b := range got {
				if b != all[w.Base()+int64(i)] {
					t.Fatalf("bit %d is %d, want %d", w.Base()+int64(i), b, all[w.Base()+int64(i)])
				}
			}
		}
	})
}

func TestBitWindowRejectsZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { NewBitWindow(0) })
	assert.Panics(t, func() { NewBitWindow(-5) })
	assert.NotPanics(t, func() { NewBitWindow(1) })
}

func TestBitWindowDiscardIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var w = NewBitWindow(32)
		w.Append(rapid.SliceOfN(rapid.ByteRange(0, 1), 0, 32).Draw(t, "bits"))

		var abs = rapid.Int64Range(-4, 40).Draw(t, "abs")
		w.DiscardBefore(abs)
		var base, end = w.Base(), w.End()

		w.DiscardBefore(abs)
		if w.Base() != base || w.End() != end {
			t.Fatalf("second discard moved the window: [%d,%d) -> [%d,%d)", base, end, w.Base(), w.End())
		}
	})
}
