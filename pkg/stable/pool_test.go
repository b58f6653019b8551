package stable_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/wattrec/pkg/model"
	"github.com/m-mizutani/wattrec/pkg/stable"
)

func TestPoolInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")

	pool, err := stable.Open(path)
	gt.NoError(t, err)
	id := pool.ID()
	gt.NoError(t, pool.Close())

	// The instance UUID survives reopening
	reopened, err := stable.Open(path)
	gt.NoError(t, err)
	gt.Equal(t, reopened.ID(), id)
	gt.NoError(t, reopened.Close())
}

func TestOpenRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	gt.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0x42}, stable.PageSize), 0644))

	_, err := stable.Open(path)
	gt.Error(t, err)
}

func TestSegmentReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")
	pool, err := stable.Open(path)
	gt.NoError(t, err)
	defer pool.Close()

	seg := pool.Segment(stable.SegmentRecords)
	gt.Equal(t, seg.Len(), uint64(0))

	// Spanning a page boundary
	data := bytes.Repeat([]byte{0xAB, 0xCD}, 3000)
	gt.NoError(t, seg.WriteAt(data, 100))
	gt.Equal(t, seg.Len(), uint64(100+len(data)))

	got := make([]byte, len(data))
	gt.NoError(t, seg.ReadAt(got, 100))
	gt.True(t, bytes.Equal(got, data))

	// Reading past the end is an error
	gt.Error(t, seg.ReadAt(make([]byte, 1), seg.Len()))
}

func TestSegmentIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")
	pool, err := stable.Open(path)
	gt.NoError(t, err)
	defer pool.Close()

	a := pool.Segment(stable.SegmentCounter)
	b := pool.Segment(stable.SegmentCounter)
	gt.True(t, a == b)
}

func TestSegmentsDoNotInterfere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")
	pool, err := stable.Open(path)
	gt.NoError(t, err)
	defer pool.Close()

	counter := pool.Segment(stable.SegmentCounter)
	records := pool.Segment(stable.SegmentRecords)

	// Interleave writes so page allocations alternate between segments
	gt.NoError(t, counter.WriteAt([]byte("counter-0"), 0))
	gt.NoError(t, records.WriteAt(bytes.Repeat([]byte{0x01}, stable.PageSize+10), 0))
	gt.NoError(t, counter.WriteAt(bytes.Repeat([]byte{0x02}, stable.PageSize), 100))

	got := make([]byte, 9)
	gt.NoError(t, counter.ReadAt(got, 0))
	gt.Equal(t, string(got), "counter-0")

	rec := make([]byte, stable.PageSize+10)
	gt.NoError(t, records.ReadAt(rec, 0))
	gt.True(t, bytes.Equal(rec, bytes.Repeat([]byte{0x01}, stable.PageSize+10)))
}

func TestSegmentPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")

	pool, err := stable.Open(path)
	gt.NoError(t, err)
	seg := pool.Segment(stable.SegmentRecords)
	payload := bytes.Repeat([]byte{0xEE}, 5000)
	gt.NoError(t, seg.WriteAt(payload, 0))
	gt.NoError(t, pool.Sync())
	gt.NoError(t, pool.Close())

	reopened, err := stable.Open(path)
	gt.NoError(t, err)
	defer reopened.Close()

	seg = reopened.Segment(stable.SegmentRecords)
	gt.Equal(t, seg.Len(), uint64(len(payload)))

	got := make([]byte, len(payload))
	gt.NoError(t, seg.ReadAt(got, 0))
	gt.True(t, bytes.Equal(got, payload))
}

func TestSegmentTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")
	pool, err := stable.Open(path)
	gt.NoError(t, err)
	defer pool.Close()

	seg := pool.Segment(stable.SegmentRecords)
	_, err = seg.Append([]byte("abcdef"))
	gt.NoError(t, err)
	gt.Error(t, seg.Truncate(100))
	gt.NoError(t, seg.Truncate(0))
	gt.Equal(t, seg.Len(), uint64(0))

	off, err := seg.Append([]byte("xyz"))
	gt.NoError(t, err)
	gt.Equal(t, off, uint64(0))
}

func TestPoolFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")
	pool, err := stable.Open(path, stable.WithCapacity(1))
	gt.NoError(t, err)
	defer pool.Close()

	seg := pool.Segment(stable.SegmentRecords)
	gt.NoError(t, seg.WriteAt(bytes.Repeat([]byte{0x01}, stable.PageSize), 0))

	err = seg.WriteAt([]byte{0x02}, stable.PageSize)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrMemoryFull))

	// The failed write does not extend the segment
	gt.Equal(t, seg.Len(), uint64(stable.PageSize))
}

func TestDataWriteFailureIsMemoryFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")
	pool, err := stable.Open(path)
	gt.NoError(t, err)

	seg := pool.Segment(stable.SegmentRecords)
	gt.NoError(t, seg.WriteAt(bytes.Repeat([]byte{0x01}, 16), 0))

	// Rewriting an already-claimed page needs no allocation and no header
	// update, so a failing medium is hit on the data write itself. That
	// failure must still carry the capacity error class.
	gt.NoError(t, pool.Close())
	err = seg.WriteAt([]byte{0x02}, 0)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrMemoryFull))
}
