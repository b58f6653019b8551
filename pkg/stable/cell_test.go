package stable_test

import (
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/wattrec/pkg/stable"
)

func TestCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")
	pool, err := stable.Open(path)
	gt.NoError(t, err)
	defer pool.Close()

	cell, err := stable.NewCell(pool.Segment(stable.SegmentCounter))
	gt.NoError(t, err)

	v, err := cell.Get()
	gt.NoError(t, err)
	gt.Equal(t, v, uint64(0))

	gt.NoError(t, cell.Set(42))
	v, err = cell.Get()
	gt.NoError(t, err)
	gt.Equal(t, v, uint64(42))
}

func TestCounterMonotonic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")
	pool, err := stable.Open(path)
	gt.NoError(t, err)

	counter, err := stable.NewCounter(pool.Segment(stable.SegmentCounter))
	gt.NoError(t, err)

	for want := uint64(0); want < 5; want++ {
		got, err := counter.Next()
		gt.NoError(t, err)
		gt.Equal(t, got, want)
	}
	gt.NoError(t, pool.Close())

	// The counter resumes past all previously issued values
	reopened, err := stable.Open(path)
	gt.NoError(t, err)
	defer reopened.Close()

	counter, err = stable.NewCounter(reopened.Segment(stable.SegmentCounter))
	gt.NoError(t, err)

	got, err := counter.Next()
	gt.NoError(t, err)
	gt.Equal(t, got, uint64(5))
}
