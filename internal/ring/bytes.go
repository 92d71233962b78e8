// Package ring provides the two lock-free single-producer/single-consumer
// queues the router depends on: a byte-granular ring for outbound MIDI
// messages and a fixed 32-slot word ring for GUI capture. Both follow
// the same cursor-pair shape as an LMAX Disruptor ring buffer (monotonic
// atomic cursors, modulo indexing) cut down to true SPSC semantics and
// non-power-of-two capacity, since the wire format this ring carries is
// fixed at 3072 bytes rather than whatever is convenient for a mask.
package ring

import "sync/atomic"

// BytesCapacity is the outbound MIDI ring's fixed size.
const BytesCapacity = 3072

// Bytes is a lock-free SPSC byte ring. A single producer calls Write;
// a single consumer calls ReadByte. Both are safe to call concurrently
// with each other (never with another call on the same side).
type Bytes struct {
	buf [BytesCapacity]byte

	// writeCursor and readCursor are monotonic counts of bytes ever
	// written/read, not indices — indexing wraps via modulo at use.
	// Publication order (the producer stores writeCursor last, after
	// the bytes are in buf) gives the consumer a happens-before
	// guarantee on buf's contents.
	writeCursor atomic.Uint64
	_           [56]byte // pad to its own cache line
	readCursor  atomic.Uint64
	_           [56]byte
}

// Len returns the number of unread bytes currently queued.
func (b *Bytes) Len() int {
	return int(b.writeCursor.Load() - b.readCursor.Load())
}

// Free returns the number of bytes that can still be written without
// overtaking the reader.
func (b *Bytes) Free() int {
	return BytesCapacity - b.Len()
}

// Write attempts to append msg atomically: either every byte is
// written and true is returned, or (on insufficient free space) no
// byte is written and false is returned. There is no partial write
// under any circumstance.
func (b *Bytes) Write(msg []byte) bool {
	if len(msg) == 0 {
		return true
	}
	if len(msg) > b.Free() {
		return false
	}
	w := b.writeCursor.Load()
	for i, c := range msg {
		b.buf[(int(w)+i)%BytesCapacity] = c
	}
	b.writeCursor.Store(w + uint64(len(msg)))
	return true
}

// Backing returns the ring's fixed backing array as a slice, for
// mlock'ing at bring-up (§6: "Outbound ring of 3072 bytes, mlock'd
// after creation"). It must not be retained or written to by callers.
func (b *Bytes) Backing() []byte {
	return b.buf[:]
}

// ReadByte pops the next unread byte. ok is false when the ring is
// empty.
func (b *Bytes) ReadByte() (value byte, ok bool) {
	r := b.readCursor.Load()
	w := b.writeCursor.Load()
	if r == w {
		return 0, false
	}
	value = b.buf[int(r)%BytesCapacity]
	b.readCursor.Store(r + 1)
	return value, true
}
