package journal

// Store is the persistence backend for the audit trail. Append must
// preserve call order: the journaler goroutine is the single writer, so a
// Store implementation never needs internal ordering guarantees of its
// own, only durability of what it's given. Grounded on the teacher's
// wal.WAL interface (wal/wal.go), narrowed to the two operations
// SPEC_FULL.md's journaler actually needs — replay is a separate, offline
// concern handled by the *Reader in reader.go.
type Store interface {
	// Append persists one already-encoded record. Implementations may
	// buffer internally but must make the record durable no later than
	// the next Sync call.
	Append(encoded []byte) error

	// Sync forces any buffered records to stable storage.
	Sync() error

	// Close releases underlying resources. Safe to call once.
	Close() error
}
