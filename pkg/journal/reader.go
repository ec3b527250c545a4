package journal

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/DataDog/zstd"
)

// Reader replays a FileStore-backed journal directory for audit purposes:
// every rotated, compressed segment named in the index, in order, followed
// by whatever is in the still-live segment. Grounded on wal/wal.go's
// ReplayFrom, generalized to walk compressed segments plus a live tail
// instead of a single flat file.
type Reader struct {
	dir string
}

// NewReader opens dir for replay. It does not hold any file open; each
// Replay call reads fresh from disk.
func NewReader(dir string) *Reader { return &Reader{dir: dir} }

// Replay decodes every record in the journal directory, in sequence
// order, calling fn for each. It stops and returns fn's error if fn
// returns one, or ErrCorrupt if a record fails its checksum.
func (r *Reader) Replay(fn func(*Record) error) error {
	entries, err := ReadIndex(filepath.Join(r.dir, "index.jsonl"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	for _, e := range entries {
		if err := r.replaySegment(e, fn); err != nil {
			return err
		}
	}

	live := filepath.Join(r.dir, liveSegmentName)
	f, err := os.Open(live)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	return replayStream(f, fn)
}

func (r *Reader) replaySegment(e IndexEntry, fn func(*Record) error) error {
	path := filepath.Join(r.dir, e.Segment)
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if ChecksumSegment(raw) != e.XXHash64 {
		return ErrCorrupt
	}
	if e.Compressed {
		raw, err = zstd.Decompress(nil, raw)
		if err != nil {
			return err
		}
	}
	return replayStream(bytes.NewReader(raw), fn)
}

func replayStream(r io.Reader, fn func(*Record) error) error {
	for {
		rec, err := Decode(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
