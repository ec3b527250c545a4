package journal

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
)

// PebbleStore persists journal records as key/value pairs in an LSM tree
// rather than a flat file. It fits the journal's access pattern exactly:
// sequence numbers are strictly increasing and gapless (spec.md §8), so a
// big-endian-encoded sequence key makes an ordinary sorted KV store answer
// "give me every record since seq N" with a plain range scan, no
// segment/index bookkeeping needed at all. Grounded on
// infra/wal/exit/wal.go's ExitWAL: same pebble.Open with DisableWAL:false
// for durability, same db.Set(key, val, pebble.Sync) per write, same
// IterOptions range-scan shape.
type PebbleStore struct {
	db *pebble.DB
	// seq is set by Journal via SetNextSequence before each Append so the
	// key can be derived; Append itself only sees opaque encoded bytes.
	seq uint64
}

// OpenPebbleStore opens (or creates) a Pebble-backed journal at dir.
func OpenPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{DisableWAL: false})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

// SetNextSequence tells the store which sequence number the next Append
// call belongs to. Journal calls this immediately before Append for every
// record, since the Store interface's Append signature is shared with
// FileStore and can't carry a sequence number of its own.
func (p *PebbleStore) SetNextSequence(seq uint64) { p.seq = seq }

// Append stores one already-encoded record under a big-endian sequence
// key, guaranteeing lexicographic key order matches sequence order.
func (p *PebbleStore) Append(encoded []byte) error {
	return p.db.Set(pebbleKey(p.seq), encoded, pebble.Sync)
}

// Sync is a no-op: every Append already used pebble.Sync, matching
// ExitWAL's per-write durability rather than batching syncs.
func (p *PebbleStore) Sync() error { return nil }

// Close closes the underlying database.
func (p *PebbleStore) Close() error { return p.db.Close() }

// ScanFrom iterates every record with sequence >= from, in order, calling
// fn with the decoded record. Used for audit replay rather than crash
// recovery — the core's correctness never depends on this (spec.md §4.G).
func (p *PebbleStore) ScanFrom(from uint64, fn func(*Record) error) error {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: pebbleKey(from),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeValue(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

func pebbleKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
