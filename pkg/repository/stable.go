package repository

import (
	"context"
	"encoding/binary"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/codec"
	"github.com/m-mizutani/wattrec/pkg/model"
	"github.com/m-mizutani/wattrec/pkg/stable"
	"github.com/m-mizutani/wattrec/pkg/utils/logging"
)

// Entry layout inside the records segment:
//
//	| op u8 | id u64 | size u16 | payload |
//
// op is opPut or opDel; a tombstone carries no payload. The segment is an
// append-only log; the live view is the in-memory index rebuilt by Scan on
// open.
const (
	opPut = byte(1)
	opDel = byte(2)

	entryHeaderSize = 1 + 8 + 2
)

type entryRef struct {
	off  uint64
	size int
}

// stableStore implements Repository on one pool segment with the bounded
// record codec.
type stableStore struct {
	seg   *stable.MemorySegment
	index map[model.RecordID]entryRef
	ids   []model.RecordID // ascending
}

// New opens the record store on the pool's records segment, rebuilding the
// live index from the persisted entry log.
func New(pool *stable.Pool) (Repository, error) {
	s := &stableStore{
		seg:   pool.Segment(stable.SegmentRecords),
		index: make(map[model.RecordID]entryRef),
	}
	if err := s.scan(); err != nil {
		return nil, err
	}
	return s, nil
}

// scan replays the entry log and rebuilds the index.
func (s *stableStore) scan() error {
	var (
		off    uint64
		header [entryHeaderSize]byte
	)
	for off < s.seg.Len() {
		if err := s.seg.ReadAt(header[:], off); err != nil {
			return goerr.Wrap(err, "failed to read entry header", goerr.V("offset", off))
		}

		op := header[0]
		id := model.RecordID(binary.BigEndian.Uint64(header[1:9]))
		size := int(binary.BigEndian.Uint16(header[9:11]))

		switch op {
		case opPut:
			s.setRef(id, entryRef{off: off + entryHeaderSize, size: size})
		case opDel:
			s.dropRef(id)
		default:
			return goerr.New("corrupt entry log", goerr.V("offset", off), goerr.V("op", op))
		}
		off += entryHeaderSize + uint64(size)
	}
	return nil
}

func (s *stableStore) setRef(id model.RecordID, ref entryRef) {
	if _, ok := s.index[id]; !ok {
		i, _ := slices.BinarySearch(s.ids, id)
		s.ids = slices.Insert(s.ids, i, id)
	}
	s.index[id] = ref
}

func (s *stableStore) dropRef(id model.RecordID) {
	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	i, _ := slices.BinarySearch(s.ids, id)
	s.ids = slices.Delete(s.ids, i, i+1)
}

// appendEntry writes one log entry and flushes it to the medium.
func (s *stableStore) appendEntry(op byte, id model.RecordID, payload []byte) (uint64, error) {
	buf := make([]byte, 0, entryHeaderSize+len(payload))
	buf = append(buf, op)
	buf = binary.BigEndian.AppendUint64(buf, uint64(id))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(payload)))
	buf = append(buf, payload...)

	off, err := s.seg.Append(buf)
	if err != nil {
		return 0, err
	}
	if err := s.seg.Sync(); err != nil {
		return 0, err
	}
	return off, nil
}

func (s *stableStore) Insert(ctx context.Context, rec *model.EnergyUsage) error {
	data, err := codec.Encode(rec)
	if err != nil {
		return err
	}

	off, err := s.appendEntry(opPut, rec.ID, data)
	if err != nil {
		return err
	}

	s.setRef(rec.ID, entryRef{off: off + entryHeaderSize, size: len(data)})
	return nil
}

func (s *stableStore) readRecord(ref entryRef) (*model.EnergyUsage, error) {
	buf := make([]byte, ref.size)
	if err := s.seg.ReadAt(buf, ref.off); err != nil {
		return nil, goerr.Wrap(err, "failed to read record payload")
	}
	return codec.Decode(buf)
}

func (s *stableStore) Get(ctx context.Context, id model.RecordID) (*model.EnergyUsage, error) {
	ref, ok := s.index[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "no record for id", goerr.V("id", id))
	}
	return s.readRecord(ref)
}

func (s *stableStore) Remove(ctx context.Context, id model.RecordID) (*model.EnergyUsage, error) {
	ref, ok := s.index[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "no record for id", goerr.V("id", id))
	}

	rec, err := s.readRecord(ref)
	if err != nil {
		return nil, err
	}

	if _, err := s.appendEntry(opDel, id, nil); err != nil {
		return nil, err
	}
	s.dropRef(id)
	return rec, nil
}

func (s *stableStore) List(ctx context.Context) ([]*model.EnergyUsage, error) {
	recs := make([]*model.EnergyUsage, 0, len(s.ids))
	for _, id := range s.ids {
		rec, err := s.readRecord(s.index[id])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read record", goerr.V("id", id))
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *stableStore) Compact(ctx context.Context) error {
	before := s.seg.Len()

	type liveEntry struct {
		id      model.RecordID
		payload []byte
	}
	live := make([]liveEntry, 0, len(s.ids))
	for _, id := range s.ids {
		ref := s.index[id]
		buf := make([]byte, ref.size)
		if err := s.seg.ReadAt(buf, ref.off); err != nil {
			return goerr.Wrap(err, "failed to read record payload", goerr.V("id", id))
		}
		live = append(live, liveEntry{id: id, payload: buf})
	}

	if err := s.seg.Truncate(0); err != nil {
		return err
	}
	for _, e := range live {
		off, err := s.appendEntry(opPut, e.id, e.payload)
		if err != nil {
			return err
		}
		s.index[e.id] = entryRef{off: off + entryHeaderSize, size: len(e.payload)}
	}

	logging.From(ctx).Debug("compacted record segment",
		"records", len(live), "before_bytes", before, "after_bytes", s.seg.Len())
	return nil
}
