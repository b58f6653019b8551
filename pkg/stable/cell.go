package stable

import (
	"encoding/binary"

	"github.com/m-mizutani/goerr/v2"
)

// Cell is a single durable uint64 value at the start of a segment,
// zero-initialized on first use.
type Cell struct {
	seg *MemorySegment
}

// NewCell returns a cell backed by seg, writing the zero value if the
// segment has never been written.
func NewCell(seg *MemorySegment) (*Cell, error) {
	c := &Cell{seg: seg}
	if seg.Len() < 8 {
		if err := c.Set(0); err != nil {
			return nil, goerr.Wrap(err, "failed to initialize cell")
		}
	}
	return c, nil
}

// Get reads the current value.
func (c *Cell) Get() (uint64, error) {
	var buf [8]byte
	if err := c.seg.ReadAt(buf[:], 0); err != nil {
		return 0, goerr.Wrap(err, "failed to read cell")
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// Set durably stores v.
func (c *Cell) Set(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if err := c.seg.WriteAt(buf[:], 0); err != nil {
		return err
	}
	return c.seg.Sync()
}

// Counter issues unique, strictly increasing identifiers that survive
// process restarts.
type Counter struct {
	cell *Cell
}

// NewCounter returns a counter backed by seg, starting at 0 on a fresh
// segment and resuming from the stored value otherwise.
func NewCounter(seg *MemorySegment) (*Counter, error) {
	cell, err := NewCell(seg)
	if err != nil {
		return nil, err
	}
	return &Counter{cell: cell}, nil
}

// Next persists the successor value and returns the current one. A value
// returned once is never returned again, even across restarts.
func (c *Counter) Next() (uint64, error) {
	v, err := c.cell.Get()
	if err != nil {
		return 0, err
	}
	if err := c.cell.Set(v + 1); err != nil {
		return 0, err
	}
	return v, nil
}
