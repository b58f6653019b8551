package stable

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/model"
)

// MemorySegment is a logically contiguous, growable byte range inside the
// pool. Physical pages may be scattered through the file; the segment maps
// logical offsets onto them in allocation order.
type MemorySegment struct {
	pool  *Pool
	tag   SegmentTag
	pages []uint32
}

// Tag returns the segment's tag.
func (s *MemorySegment) Tag() SegmentTag {
	return s.tag
}

// Len returns the logical length of the segment in bytes.
func (s *MemorySegment) Len() uint64 {
	return s.pool.segmentLen(s.tag)
}

func (s *MemorySegment) physOff(logical uint64) int64 {
	page := s.pages[logical/PageSize]
	return int64(page+1)*PageSize + int64(logical%PageSize)
}

// ReadAt fills p from the segment starting at logical offset off. Reading
// beyond the segment length is an error.
func (s *MemorySegment) ReadAt(p []byte, off uint64) error {
	if off+uint64(len(p)) > s.Len() {
		return goerr.New("segment read out of range",
			goerr.V("tag", s.tag), goerr.V("offset", off),
			goerr.V("size", len(p)), goerr.V("length", s.Len()))
	}

	for len(p) > 0 {
		n := PageSize - int(off%PageSize)
		if n > len(p) {
			n = len(p)
		}
		if _, err := s.pool.f.ReadAt(p[:n], s.physOff(off)); err != nil {
			return goerr.Wrap(err, "failed to read segment page",
				goerr.V("tag", s.tag), goerr.V("offset", off))
		}
		p = p[n:]
		off += uint64(n)
	}
	return nil
}

// WriteAt writes p at logical offset off, claiming pages from the pool as
// needed and extending the segment length when the write ends past it.
// Failure to claim a page surfaces the MemoryFull error class and leaves
// the segment length unchanged.
func (s *MemorySegment) WriteAt(p []byte, off uint64) error {
	end := off + uint64(len(p))
	if err := s.grow(end); err != nil {
		return err
	}

	data := p
	cur := off
	for len(data) > 0 {
		n := PageSize - int(cur%PageSize)
		if n > len(data) {
			n = len(data)
		}
		if _, err := s.pool.f.WriteAt(data[:n], s.physOff(cur)); err != nil {
			return goerr.Wrap(model.ErrMemoryFull, "failed to write segment page",
				goerr.V("tag", s.tag), goerr.V("offset", cur),
				goerr.V("cause", err.Error()))
		}
		data = data[n:]
		cur += uint64(n)
	}

	if end > s.Len() {
		if err := s.pool.setSegmentLen(s.tag, end); err != nil {
			return err
		}
	}
	return nil
}

// Append writes p at the current end of the segment and returns the logical
// offset the data was written at.
func (s *MemorySegment) Append(p []byte) (uint64, error) {
	off := s.Len()
	if err := s.WriteAt(p, off); err != nil {
		return 0, err
	}
	return off, nil
}

// Truncate shrinks the logical length to n. Pages stay claimed; the space
// is reused by subsequent writes.
func (s *MemorySegment) Truncate(n uint64) error {
	if n > s.Len() {
		return goerr.New("cannot truncate segment beyond its length",
			goerr.V("tag", s.tag), goerr.V("length", s.Len()), goerr.V("to", n))
	}
	return s.pool.setSegmentLen(s.tag, n)
}

// Sync flushes pending writes of the whole pool to the medium.
func (s *MemorySegment) Sync() error {
	return s.pool.Sync()
}

// grow ensures the segment owns enough pages to address [0, end).
func (s *MemorySegment) grow(end uint64) error {
	need := int((end + PageSize - 1) / PageSize)
	for len(s.pages) < need {
		page, err := s.pool.allocPage(s.tag)
		if err != nil {
			return err
		}
		s.pages = append(s.pages, page)
	}
	return nil
}
