// Package journal implements the audit trail: a compact binary record per
// admitted request, drained from a second SPSC ring by a dedicated
// journaler goroutine and persisted to a journal.Store. Correctness of the
// order book never depends on the journal (spec.md §4.G) — it exists so an
// external auditor can reconstruct admission order, not so a crashed
// process can recover.
//
// The on-disk record layout is specified verbatim by spec.md §6 and must
// not drift: {u64 sequence, u64 ns_timestamp, u8 kind, payload}, all
// little-endian, payload shape keyed by kind. Grounded on wal/record.go's
// EncodeRecord/DecodeRecord (length handling) and wal/crc.go's CRC32
// per-record checksum, which this keeps for the same reason: spec.md's
// wire format reserves no room for a wider hash per record, so the
// per-record integrity check stays CRC32 even though the segment-level
// index (index.go) is promoted to xxhash.
package journal

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
)

// Kind tags which payload variant a Record carries.
type Kind uint8

const (
	KindAdd Kind = iota
	KindCancel
	KindModify
)

// CancelReason distinguishes a user-requested cancel from one the engine
// issued itself to terminate a FillAndKill order's unmatched residue.
// Supplemented from original_source/AdvancedOrderTypes.h — spec.md §6
// reserves a u8 reason field on the Cancel payload but never says what
// populates it (see SPEC_FULL.md §9).
type CancelReason uint8

const (
	CancelRequested CancelReason = iota
	CancelFillAndKillResidue
)

// AddPayload mirrors spec.md §6: {u64 id, u8 side, u8 discipline,
// i64 price, u64 qty}.
type AddPayload struct {
	ID         uint64
	Side       uint8
	Discipline uint8
	Price      int64
	Qty        uint64
}

// CancelPayload mirrors spec.md §6: {u64 id, u8 reason}.
type CancelPayload struct {
	ID     uint64
	Reason CancelReason
}

// ModifyPayload mirrors spec.md §6: {u64 id, i64 price, u64 qty}.
type ModifyPayload struct {
	ID    uint64
	Price int64
	Qty   uint64
}

// Record is one admitted-request entry, ready for encoding.
type Record struct {
	Sequence  uint64
	NanosTS   int64
	Kind      Kind
	Add       AddPayload
	Cancel    CancelPayload
	Modify    ModifyPayload
}

// Encode serializes r per spec.md §6's layout, followed by a trailing
// CRC32 of everything before it — the same append-the-checksum shape as
// wal/record.go's EncodeRecord.
func Encode(r *Record) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(32)
	_ = binary.Write(buf, binary.LittleEndian, r.Sequence)
	_ = binary.Write(buf, binary.LittleEndian, uint64(r.NanosTS))
	_ = binary.Write(buf, binary.LittleEndian, uint8(r.Kind))

	switch r.Kind {
	case KindAdd:
		_ = binary.Write(buf, binary.LittleEndian, r.Add.ID)
		_ = binary.Write(buf, binary.LittleEndian, r.Add.Side)
		_ = binary.Write(buf, binary.LittleEndian, r.Add.Discipline)
		_ = binary.Write(buf, binary.LittleEndian, r.Add.Price)
		_ = binary.Write(buf, binary.LittleEndian, r.Add.Qty)
	case KindCancel:
		_ = binary.Write(buf, binary.LittleEndian, r.Cancel.ID)
		_ = binary.Write(buf, binary.LittleEndian, uint8(r.Cancel.Reason))
	case KindModify:
		_ = binary.Write(buf, binary.LittleEndian, r.Modify.ID)
		_ = binary.Write(buf, binary.LittleEndian, r.Modify.Price)
		_ = binary.Write(buf, binary.LittleEndian, r.Modify.Qty)
	}

	sum := crc32.ChecksumIEEE(buf.Bytes())
	_ = binary.Write(buf, binary.LittleEndian, sum)
	return buf.Bytes()
}

// ErrCorrupt is returned by Decode when the trailing CRC32 does not match.
var ErrCorrupt = errCorrupt{}

type errCorrupt struct{}

func (errCorrupt) Error() string { return "journal: corrupt record (checksum mismatch)" }

// Decode reads one record from r. It returns io.EOF (unwrapped) once the
// stream is exhausted between records.
func Decode(r io.Reader) (*Record, error) {
	header := make([]byte, 8+8+1)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	rec := &Record{
		Sequence: binary.LittleEndian.Uint64(header[0:8]),
		NanosTS:  int64(binary.LittleEndian.Uint64(header[8:16])),
		Kind:     Kind(header[16]),
	}

	var payload []byte
	switch rec.Kind {
	case KindAdd:
		payload = make([]byte, 8+1+1+8+8)
	case KindCancel:
		payload = make([]byte, 8+1)
	case KindModify:
		payload = make([]byte, 8+8+8)
	default:
		return nil, ErrCorrupt
	}
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return nil, err
	}
	want := binary.LittleEndian.Uint32(crcBuf[:])
	got := crc32.ChecksumIEEE(append(append([]byte{}, header...), payload...))
	if want != got {
		return nil, ErrCorrupt
	}

	switch rec.Kind {
	case KindAdd:
		rec.Add = AddPayload{
			ID:         binary.LittleEndian.Uint64(payload[0:8]),
			Side:       payload[8],
			Discipline: payload[9],
			Price:      int64(binary.LittleEndian.Uint64(payload[10:18])),
			Qty:        binary.LittleEndian.Uint64(payload[18:26]),
		}
	case KindCancel:
		rec.Cancel = CancelPayload{
			ID:     binary.LittleEndian.Uint64(payload[0:8]),
			Reason: CancelReason(payload[8]),
		}
	case KindModify:
		rec.Modify = ModifyPayload{
			ID:    binary.LittleEndian.Uint64(payload[0:8]),
			Price: int64(binary.LittleEndian.Uint64(payload[8:16])),
			Qty:   binary.LittleEndian.Uint64(payload[16:24]),
		}
	}
	return rec, nil
}

// decodeValue is Decode for an already-in-memory buffer, used by stores
// (PebbleStore) whose values are never a streaming io.Reader.
func decodeValue(b []byte) (*Record, error) {
	return Decode(bytes.NewReader(b))
}
