package transport

import (
	"bytes"
	"sync"
	"testing"
)

func TestRingWriteRead(t *testing.T) {
	r := NewRing(16)

	if n := r.Write([]byte{1, 2, 3, 4}); n != 4 {
		t.Fatalf("Write() = %d, want 4", n)
	}
	if got := r.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}

	p := make([]byte, 8)
	if n := r.Read(p); n != 4 {
		t.Fatalf("Read() = %d, want 4", n)
	}
	if !bytes.Equal(p[:4], []byte{1, 2, 3, 4}) {
		t.Errorf("Read() = % x, want 01 02 03 04", p[:4])
	}
	if n := r.Read(p); n != 0 {
		t.Errorf("Read() on empty ring = %d, want 0", n)
	}
}

func TestRingWraparound(t *testing.T) {
	r := NewRing(4)
	p := make([]byte, 4)

	// Cycle enough data through to wrap the indices several times.
	for i := 0; i < 10; i++ {
		in := []byte{byte(i), byte(i + 1), byte(i + 2)}
		if n := r.Write(in); n != 3 {
			t.Fatalf("cycle %d: Write() = %d, want 3", i, n)
		}
		if n := r.Read(p); n != 3 || !bytes.Equal(p[:3], in) {
			t.Fatalf("cycle %d: Read() = %d bytes % x, want % x", i, n, p[:n], in)
		}
	}
}

func TestRingOverflowDropsAndCounts(t *testing.T) {
	r := NewRing(4)

	if n := r.Write([]byte{1, 2, 3, 4, 5, 6}); n != 4 {
		t.Fatalf("Write() = %d, want 4 (capacity)", n)
	}
	if got := r.Dropped(); got != 2 {
		t.Errorf("Dropped() = %d, want 2", got)
	}

	// Earlier bytes survive; the overflow dropped the newest ones.
	p := make([]byte, 8)
	n := r.Read(p)
	if !bytes.Equal(p[:n], []byte{1, 2, 3, 4}) {
		t.Errorf("Read() = % x, want 01 02 03 04", p[:n])
	}
}

func TestRingNotify(t *testing.T) {
	r := NewRing(8)

	select {
	case <-r.Wait():
		t.Fatal("Wait() fired before any write")
	default:
	}

	r.Write([]byte{1})
	select {
	case <-r.Wait():
	default:
		t.Fatal("Wait() did not fire after a write")
	}
}

func TestRingReset(t *testing.T) {
	r := NewRing(8)
	r.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9})
	r.Reset()

	if r.Len() != 0 {
		t.Errorf("Len() = %d after Reset, want 0", r.Len())
	}
	if r.Dropped() != 0 {
		t.Errorf("Dropped() = %d after Reset, want 0", r.Dropped())
	}
}

func TestRingProducerConsumer(t *testing.T) {
	r := NewRing(64)
	const total = 4096

	done := make(chan struct{})
	var got []byte

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p := make([]byte, 32)
		for len(got) < total {
			n := r.Read(p)
			if n == 0 {
				select {
				case <-r.Wait():
				case <-done:
					return
				}
				continue
			}
			got = append(got, p[:n]...)
		}
	}()

	seq := 0
	for seq < total {
		// Respect capacity so nothing is dropped and order is checkable.
		room := 64 - r.Len()
		if room == 0 {
			continue
		}
		chunk := make([]byte, 0, room)
		for i := 0; i < room && seq < total; i++ {
			chunk = append(chunk, byte(seq))
			seq++
		}
		r.Write(chunk)
	}

	wg.Wait()
	close(done)

	if len(got) != total {
		t.Fatalf("consumed %d bytes, want %d", len(got), total)
	}
	for i, b := range got {
		if b != byte(i) {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x (order violated)", i, b, byte(i))
		}
	}
}
