package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// IndexEntry describes one rotated-out segment file. This is distinct from
// the per-record CRC32 in record.go: the CRC32 lets a reader detect a
// corrupt individual record; the index checksum lets an auditor verify an
// entire segment file wasn't truncated or altered after rotation, without
// decoding every record in it. Grounded on wal/wal_index.go's segment
// bookkeeping, with xxhash promoted from the teacher's indirect dependency
// in place of whatever weaker hash it used, since a whole-segment digest is
// exactly the kind of bulk checksum xxhash is built for.
type IndexEntry struct {
	Segment     string `json:"segment"`
	FirstSeq    uint64 `json:"first_seq"`
	LastSeq     uint64 `json:"last_seq"`
	Compressed  bool   `json:"compressed"`
	XXHash64    uint64 `json:"xxhash64"`
	ByteLength  int64  `json:"byte_length"`
}

// Index is an append-only JSON-lines ledger of rotated segments, kept
// alongside the live segment in the same journal directory.
type Index struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenIndex opens (creating if necessary) the index file at path.
func OpenIndex(path string) (*Index, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Index{path: path, f: f}, nil
}

// Append records one rotated segment's metadata and fsyncs the index file.
func (idx *Index) Append(e IndexEntry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	if _, err := idx.f.Write(line); err != nil {
		return err
	}
	return idx.f.Sync()
}

// Close closes the underlying index file.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.f.Close()
}

// ChecksumSegment computes the xxhash64 digest of a segment's bytes, used
// both when writing a new IndexEntry and when an auditor later wants to
// revalidate a segment already on disk.
func ChecksumSegment(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// ReadIndex loads every entry from an index file, in append order.
func ReadIndex(path string) ([]IndexEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []IndexEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var e IndexEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
