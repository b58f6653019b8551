// Package codec implements the size-bounded binary representation of an
// energy usage record. The layout is hand-specified so the 1024-byte
// ceiling is an explicit contract of the encode path:
//
//	| id u64 | usage bits u64 | timestamp u64 | devLen u16 | device type |
//	| recFlag u8 | recLen u16 | recommendation |
//
// recFlag marks presence of the optional recommendation; recLen and the
// text are present only when the flag is set. All integers are big-endian.
package codec

import (
	"encoding/binary"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/model"
)

// MaxEncodedSize is the hard ceiling on the encoded size of one record.
const MaxEncodedSize = 1024

const fixedSize = 8 + 8 + 8 + 2 + 1 // id, usage, timestamp, devLen, recFlag

const (
	recAbsent  = byte(0)
	recPresent = byte(1)
)

// Encode serializes rec. A record whose encoded form would exceed
// MaxEncodedSize is rejected as invalid input before any byte is produced.
func Encode(rec *model.EnergyUsage) ([]byte, error) {
	size := fixedSize + len(rec.DeviceType)
	if rec.Recommendation.Valid {
		size += 2 + len(rec.Recommendation.Text)
	}
	if size > MaxEncodedSize {
		return nil, goerr.Wrap(model.ErrInvalidInput, "encoded record exceeds size limit",
			goerr.V("id", rec.ID), goerr.V("size", size), goerr.V("limit", MaxEncodedSize))
	}

	buf := make([]byte, 0, size)
	buf = binary.BigEndian.AppendUint64(buf, uint64(rec.ID))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(rec.UsageKWh))
	buf = binary.BigEndian.AppendUint64(buf, rec.Timestamp)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(rec.DeviceType)))
	buf = append(buf, rec.DeviceType...)
	if rec.Recommendation.Valid {
		buf = append(buf, recPresent)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(rec.Recommendation.Text)))
		buf = append(buf, rec.Recommendation.Text...)
	} else {
		buf = append(buf, recAbsent)
	}
	return buf, nil
}

// Decode deserializes data produced by Encode, reproducing every field
// exactly.
func Decode(data []byte) (*model.EnergyUsage, error) {
	if len(data) > MaxEncodedSize {
		return nil, goerr.New("encoded record exceeds size limit", goerr.V("size", len(data)))
	}
	if len(data) < 8+8+8+2 {
		return nil, goerr.New("encoded record is truncated", goerr.V("size", len(data)))
	}

	rec := &model.EnergyUsage{
		ID:        model.RecordID(binary.BigEndian.Uint64(data[0:8])),
		UsageKWh:  math.Float64frombits(binary.BigEndian.Uint64(data[8:16])),
		Timestamp: binary.BigEndian.Uint64(data[16:24]),
	}

	devLen := int(binary.BigEndian.Uint16(data[24:26]))
	rest := data[26:]
	if len(rest) < devLen+1 {
		return nil, goerr.New("encoded record is truncated",
			goerr.V("device_len", devLen), goerr.V("remaining", len(rest)))
	}
	rec.DeviceType = string(rest[:devLen])
	rest = rest[devLen:]

	switch rest[0] {
	case recAbsent:
		if len(rest) != 1 {
			return nil, goerr.New("trailing bytes after record", goerr.V("trailing", len(rest)-1))
		}
	case recPresent:
		if len(rest) < 3 {
			return nil, goerr.New("encoded record is truncated")
		}
		recLen := int(binary.BigEndian.Uint16(rest[1:3]))
		if len(rest) != 3+recLen {
			return nil, goerr.New("recommendation length mismatch",
				goerr.V("rec_len", recLen), goerr.V("remaining", len(rest)-3))
		}
		rec.Recommendation = model.Recommendation{Text: string(rest[3:]), Valid: true}
	default:
		return nil, goerr.New("invalid recommendation flag", goerr.V("flag", rest[0]))
	}

	return rec, nil
}
