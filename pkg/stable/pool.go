package stable

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/model"
)

// PageSize is the allocation unit of the pool file.
const PageSize = 4096

// SegmentTag identifies a durable segment within the pool. The tag set is
// fixed at compile time.
type SegmentTag uint8

const (
	// SegmentCounter holds the record ID counter cell.
	SegmentCounter SegmentTag = 0

	// SegmentRecords holds the ordered ID to record map.
	SegmentRecords SegmentTag = 1
)

// Header page layout (page 0):
//
//	| magic u32 | version u16 | reserved u16 | pool uuid (16) | pages u32 |
//	| 0       3 | 4         5 | 6          7 | 8           23 | 24     27 |
//
// followed by one u64 logical length per segment tag at headerLensOff, and
// the page ownership table at pageTableOff: one byte per data page, holding
// the owning tag or freePage.
const (
	poolMagic   = uint32(0x57415452) // "WATR"
	poolVersion = uint16(1)

	headerMagicOff   = 0
	headerVersionOff = 4
	headerUUIDOff    = 8
	headerPagesOff   = 24
	headerLensOff    = 32
	maxSegments      = 8
	pageTableOff     = headerLensOff + maxSegments*8

	freePage = byte(0xFF)
)

// defaultCapacity is the number of data pages whose ownership fits in the
// header page.
const defaultCapacity = PageSize - pageTableOff

// Pool partitions one durable file into independently growable segments so
// the ID counter and the record map can persist without interfering. The
// header page keeps the ownership table; data pages are never freed, so a
// segment's pages in index order are also in allocation order.
type Pool struct {
	f        *os.File
	id       uuid.UUID
	header   []byte
	capacity int
	segments map[SegmentTag]*MemorySegment
}

// Option is a functional option for Open
type Option func(*Pool)

// WithCapacity limits the number of allocatable data pages. Mainly for
// exercising the pool-full path in tests.
func WithCapacity(pages int) Option {
	return func(p *Pool) {
		if pages > 0 && pages < defaultCapacity {
			p.capacity = pages
		}
	}
}

// Open opens or creates the pool file at path. A fresh file gets a new
// header page with a generated pool UUID; an existing file is validated
// against the expected magic and layout version.
func Open(path string, opts ...Option) (*Pool, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open pool file", goerr.V("path", path))
	}

	pool := &Pool{
		f:        f,
		header:   make([]byte, PageSize),
		capacity: defaultCapacity,
		segments: make(map[SegmentTag]*MemorySegment),
	}
	for _, opt := range opts {
		opt(pool)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, goerr.Wrap(err, "failed to stat pool file", goerr.V("path", path))
	}

	if st.Size() == 0 {
		if err := pool.initHeader(); err != nil {
			_ = f.Close()
			return nil, err
		}
		return pool, nil
	}

	if err := pool.loadHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return pool, nil
}

func (p *Pool) initHeader() error {
	binary.BigEndian.PutUint32(p.header[headerMagicOff:], poolMagic)
	binary.BigEndian.PutUint16(p.header[headerVersionOff:], poolVersion)

	p.id = uuid.New()
	copy(p.header[headerUUIDOff:headerUUIDOff+16], p.id[:])

	for i := pageTableOff; i < PageSize; i++ {
		p.header[i] = freePage
	}

	if err := p.writeHeader(); err != nil {
		return err
	}
	return p.Sync()
}

func (p *Pool) loadHeader() error {
	if _, err := io.ReadFull(io.NewSectionReader(p.f, 0, PageSize), p.header); err != nil {
		return goerr.Wrap(err, "failed to read pool header")
	}

	if magic := binary.BigEndian.Uint32(p.header[headerMagicOff:]); magic != poolMagic {
		return goerr.New("not a pool file", goerr.V("magic", magic))
	}
	if v := binary.BigEndian.Uint16(p.header[headerVersionOff:]); v != poolVersion {
		return goerr.New("unsupported pool layout version", goerr.V("version", v))
	}

	id, err := uuid.FromBytes(p.header[headerUUIDOff : headerUUIDOff+16])
	if err != nil {
		return goerr.Wrap(err, "failed to parse pool uuid")
	}
	p.id = id
	return nil
}

func (p *Pool) writeHeader() error {
	if _, err := p.f.WriteAt(p.header, 0); err != nil {
		return goerr.Wrap(model.ErrMemoryFull, "failed to write pool header",
			goerr.V("cause", err.Error()))
	}
	return nil
}

// ID returns the pool instance UUID written at creation time.
func (p *Pool) ID() uuid.UUID {
	return p.id
}

// Segment returns the segment for the tag. Repeated calls with the same tag
// return the same handle; the segment itself is created lazily and owns no
// pages until first written.
func (p *Pool) Segment(tag SegmentTag) *MemorySegment {
	if seg, ok := p.segments[tag]; ok {
		return seg
	}

	seg := &MemorySegment{pool: p, tag: tag}
	for i := 0; i < p.allocatedPages(); i++ {
		if p.header[pageTableOff+i] == byte(tag) {
			seg.pages = append(seg.pages, uint32(i))
		}
	}
	p.segments[tag] = seg
	return seg
}

func (p *Pool) allocatedPages() int {
	return int(binary.BigEndian.Uint32(p.header[headerPagesOff:]))
}

// allocPage claims the next unused data page for tag and returns its index.
func (p *Pool) allocPage(tag SegmentTag) (uint32, error) {
	n := p.allocatedPages()
	if n >= p.capacity {
		return 0, goerr.Wrap(model.ErrMemoryFull, "pool page table is exhausted",
			goerr.V("pages", n), goerr.V("capacity", p.capacity))
	}

	p.header[pageTableOff+n] = byte(tag)
	binary.BigEndian.PutUint32(p.header[headerPagesOff:], uint32(n+1))
	if err := p.writeHeader(); err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func (p *Pool) segmentLen(tag SegmentTag) uint64 {
	return binary.BigEndian.Uint64(p.header[headerLensOff+int(tag)*8:])
}

func (p *Pool) setSegmentLen(tag SegmentTag, n uint64) error {
	binary.BigEndian.PutUint64(p.header[headerLensOff+int(tag)*8:], n)
	return p.writeHeader()
}

// Sync flushes all durable writes to the medium.
func (p *Pool) Sync() error {
	if err := p.f.Sync(); err != nil {
		return goerr.Wrap(model.ErrMemoryFull, "failed to sync pool file",
			goerr.V("cause", err.Error()))
	}
	return nil
}

// Close closes the underlying file. Segments obtained from the pool must
// not be used afterwards.
func (p *Pool) Close() error {
	if err := p.f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close pool file")
	}
	return nil
}
