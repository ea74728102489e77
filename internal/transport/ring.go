package transport

import "sync"

// Ring is a bounded byte queue between the serial read loop (producer)
// and the decode drain loop (consumer). It mirrors the interrupt-driven
// receive buffer the sensor is normally paired with on microcontrollers:
// the producer never blocks, and bytes that do not fit are dropped and
// counted rather than stalling the port.
//
// Ring is safe for one producer and one consumer goroutine.
type Ring struct {
	mu      sync.Mutex
	buf     []byte
	read    int
	write   int
	dropped uint64

	// notify wakes the consumer after a write; capacity 1 so the
	// producer never blocks on it.
	notify chan struct{}
}

// NewRing creates a ring buffer holding up to capacity bytes.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		// One slot is sacrificed to distinguish full from empty.
		buf:    make([]byte, capacity+1),
		notify: make(chan struct{}, 1),
	}
}

// Write appends data to the ring, returning the number of bytes stored.
// Bytes that do not fit are dropped and counted. Write never blocks.
func (r *Ring) Write(data []byte) int {
	r.mu.Lock()
	written := 0
	for _, b := range data {
		next := (r.write + 1) % len(r.buf)
		if next == r.read {
			r.dropped += uint64(len(data) - written)
			break
		}
		r.buf[r.write] = b
		r.write = next
		written++
	}
	r.mu.Unlock()

	if written > 0 {
		select {
		case r.notify <- struct{}{}:
		default:
		}
	}
	return written
}

// Read drains up to len(p) bytes into p, returning the number copied.
// Read never blocks; it returns 0 when the ring is empty.
func (r *Ring) Read(p []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for n < len(p) && r.read != r.write {
		p[n] = r.buf[r.read]
		r.read = (r.read + 1) % len(r.buf)
		n++
	}
	return n
}

// Len returns the number of buffered bytes.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.write >= r.read {
		return r.write - r.read
	}
	return len(r.buf) - r.read + r.write
}

// Dropped returns the number of bytes discarded because the ring was
// full.
func (r *Ring) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Wait returns a channel that receives after new bytes were written.
// The consumer selects on it alongside its shutdown signal.
func (r *Ring) Wait() <-chan struct{} {
	return r.notify
}

// Reset discards all buffered bytes and the drop counter.
func (r *Ring) Reset() {
	r.mu.Lock()
	r.read = 0
	r.write = 0
	r.dropped = 0
	r.mu.Unlock()
}
