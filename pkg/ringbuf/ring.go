// Package ringbuf implements the bounded wait-free SPSC ring used for both
// the inbound request queue (producer -> matcher) and the audit journal
// queue (matcher -> journaler). Grounded on the teacher's rbq.retireRing
// and memory.RetireRing (cache-line-padded head/tail, power-of-two mask),
// generalized here with a type parameter so one implementation serves both
// rings instead of two hand-copied structs.
package ringbuf

import "sync/atomic"

// cacheLinePad is sized so head and tail never share a cache line with
// each other or with buf's slice header, avoiding false sharing between
// the producer and consumer — the same trick as
// ejyy-femto_go/ringbuffer.go's _pad1/_pad2/_pad3 fields.
type cacheLinePad [56]byte

// Ring is a bounded single-producer/single-consumer queue of capacity C,
// C a power of two. Push publishes with release semantics (atomic store of
// head after writing the slot); Pop observes with acquire semantics
// (atomic load of head before reading the slot). Neither side blocks: Push
// fails when full, Pop fails when empty.
type Ring[T any] struct {
	_     cacheLinePad
	head  uint64
	_pad1 cacheLinePad
	tail  uint64
	_pad2 cacheLinePad

	buf  []T
	mask uint64
}

// New allocates a ring of the given power-of-two capacity. It panics if
// capacity is not a power of two — a misconfigured ring is a startup bug,
// not a runtime condition to recover from.
func New[T any](capacity uint64) *Ring[T] {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("ringbuf: capacity must be a power of two")
	}
	return &Ring[T]{buf: make([]T, capacity), mask: capacity - 1}
}

// Push appends v to the ring. Returns false if the ring is full — the
// producer decides whether that means spin-yield (strict mode) or drop
// with a shed counter (shed mode); the ring itself has no opinion.
func (r *Ring[T]) Push(v T) bool {
	h := r.head
	t := atomic.LoadUint64(&r.tail)
	if h-t == uint64(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = v
	atomic.StoreUint64(&r.head, h+1)
	return true
}

// Pop removes and returns the oldest element. ok is false if the ring is
// empty, in which case the zero value of T is returned.
func (r *Ring[T]) Pop() (v T, ok bool) {
	t := r.tail
	h := atomic.LoadUint64(&r.head)
	if t == h {
		return v, false
	}
	v = r.buf[t&r.mask]
	var zero T
	r.buf[t&r.mask] = zero
	atomic.StoreUint64(&r.tail, t+1)
	return v, true
}

// Len returns the number of elements currently queued. It is a snapshot:
// by the time the caller observes it, the true length may have changed.
func (r *Ring[T]) Len() int {
	h := atomic.LoadUint64(&r.head)
	t := atomic.LoadUint64(&r.tail)
	return int(h - t)
}

// Capacity returns the ring's fixed capacity.
func (r *Ring[T]) Capacity() int { return len(r.buf) }
