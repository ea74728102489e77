package protocol

import "encoding/binary"

// FrameSink receives successfully decoded frames from a StreamDecoder.
// raw is the complete frame (header through footer) and aliases the
// decoder's internal buffer: it is only valid for the duration of the
// call and must be copied if retained. The sink runs synchronously on
// the caller's stack and must not block. Returning false tells the
// decoder to stop emitting further frames within the same feed call,
// for example when pushing into a bounded queue that just filled up.
type FrameSink func(raw []byte, frame Frame) bool

// StreamDecoder assembles command frames from an arbitrarily chunked,
// possibly noisy byte stream. It keeps a fixed-capacity accumulation
// buffer and a small amount of state between calls: no allocation
// happens on the feed path and no call ever blocks.
//
// The zero value is ready to use. A decoder belongs to exactly one
// logical byte stream and is not safe for concurrent use; if bytes are
// produced by a background reader, hand them off through a queue and
// drive Feed from a single consumer.
//
// Frames are emitted in the order their closing footer appears in the
// input. Every error return is recoverable: the decoder resynchronizes
// internally and remains usable for the next byte.
type StreamDecoder struct {
	buf      [MaxRxFrameSize]byte
	fill     int
	expected int // total frame size once the length field is seen, 0 before
	synced   bool
}

// feedState carries the sink and per-call outcome through one feed.
type feedState struct {
	sink    FrameSink
	stopped bool
	err     error
}

func (st *feedState) fail(err error) {
	if st.err == nil {
		st.err = err
	}
}

// Reset discards any partially accumulated frame and returns the decoder
// to its initial header-scanning state.
func (d *StreamDecoder) Reset() {
	d.fill = 0
	d.expected = 0
	d.synced = false
}

// Pending returns the number of buffered bytes not yet consumed by a
// decoded frame.
func (d *StreamDecoder) Pending() int {
	return d.fill
}

// Synced reports whether the buffer currently starts with a verified
// header.
func (d *StreamDecoder) Synced() bool {
	return d.synced
}

// Feed consumes exactly one byte. If the byte completes one or more
// valid frames, sink is invoked for each of them before Feed returns.
//
// Error returns classify what happened to the stream, not to the
// session: ErrBufferTooSmall (declared frame exceeds the protocol
// maximum), ErrInvalidFooter (assembled frame had a corrupt footer) and
// ErrInvalidFrame (validator rejected an assembled frame) all leave the
// decoder resynchronized and ready for the next byte. ErrInvalidArguments
// is returned for a nil sink.
func (d *StreamDecoder) Feed(b byte, sink FrameSink) error {
	if sink == nil {
		return ErrInvalidArguments
	}
	st := feedState{sink: sink}
	d.feedByte(b, &st)
	return st.err
}

// FeedBytes consumes a contiguous chunk, emitting zero or more frames to
// sink along the way. It returns the number of bytes consumed together
// with the first stream error encountered, if any; decoding a chunk in
// one call yields the same frames as feeding the bytes individually.
//
// The sink's return value is honored after every emission: once it
// returns false, FeedBytes stops without consuming the remaining bytes
// so the caller can resume later.
func (d *StreamDecoder) FeedBytes(p []byte, sink FrameSink) (int, error) {
	if sink == nil {
		return 0, ErrInvalidArguments
	}
	st := feedState{sink: sink}
	for i, b := range p {
		d.feedByte(b, &st)
		if st.stopped {
			return i + 1, st.err
		}
	}
	return len(p), st.err
}

func (d *StreamDecoder) feedByte(b byte, st *feedState) {
	// Make room before accepting the byte. The decoder keeps its buffer
	// from filling while scanning for a header, so a full buffer only
	// happens when a maximum-size frame is pending emission; processing
	// drains it. If resync cannot make room either, the byte is dropped.
	if d.fill >= len(d.buf) {
		d.process(st)
		if d.fill >= len(d.buf) {
			if !d.resync() {
				d.Reset()
			}
			if d.fill >= len(d.buf) {
				st.fail(ErrBufferTooSmall)
				return
			}
		}
	}

	d.buf[d.fill] = b
	d.fill++
	d.process(st)
}

// process makes all possible progress on the buffered bytes: it locks
// onto a header, derives the expected total size from the length field,
// and emits every complete frame, resynchronizing past corruption as it
// goes. It stops when more input is needed or the sink asked to stop.
func (d *StreamDecoder) process(st *feedState) {
	for !st.stopped {
		if !d.synced && !d.seekHeader() {
			return
		}

		if d.expected == 0 {
			if d.fill < HeaderSize+LengthSize {
				return
			}
			dataLen := binary.LittleEndian.Uint16(d.buf[HeaderSize:])
			total := HeaderSize + LengthSize + int(dataLen) + FooterSize
			if total > len(d.buf) {
				// Corrupt or hostile length field. Hunt for a later
				// header inside the buffered bytes instead of discarding
				// them all.
				st.fail(ErrBufferTooSmall)
				if !d.resync() {
					d.Reset()
				}
				continue
			}
			d.expected = total
		}

		if d.fill < d.expected {
			return
		}

		// Frame is complete. Check the footer before handing the buffer
		// to the validator so trailing corruption resynchronizes cheaply.
		if [FooterSize]byte(d.buf[d.expected-FooterSize:d.expected]) != FrameFooter {
			st.fail(ErrInvalidFooter)
			if !d.resync() {
				d.Reset()
			}
			continue
		}

		frame, err := ValidateFrame(d.buf[:d.expected])
		if err != nil {
			st.fail(ErrInvalidFrame)
			if !d.resync() {
				d.Reset()
			}
			continue
		}

		if !st.sink(d.buf[:d.expected], frame) {
			st.stopped = true
		}

		// Keep any bytes past the emitted frame; they may already begin
		// the next one.
		tail := d.fill - d.expected
		copy(d.buf[:], d.buf[d.expected:d.fill])
		d.fill = tail
		d.synced = false
		d.expected = 0
	}
}

// seekHeader scans the unsynced buffer for the first complete header.
// On a match the header and everything after it move to the front and
// the decoder enters the synced state. Otherwise at most HeaderSize-1
// trailing bytes survive, enough to match a header split across calls,
// so scanning garbage never grows the buffer.
func (d *StreamDecoder) seekHeader() bool {
	for j := 0; j+HeaderSize <= d.fill; j++ {
		if [HeaderSize]byte(d.buf[j:j+HeaderSize]) == FrameHeader {
			copy(d.buf[:], d.buf[j:d.fill])
			d.fill -= j
			d.synced = true
			d.expected = 0
			return true
		}
	}

	keep := HeaderSize - 1
	if d.fill < keep {
		keep = d.fill
	}
	if keep < d.fill {
		copy(d.buf[:], d.buf[d.fill-keep:d.fill])
	}
	d.fill = keep
	return false
}

// resync recovers after corruption detected mid-accumulation. It scans
// the buffered bytes backward for the most recent complete header,
// skipping the corrupt frame's own header at the front; if one is found
// it and everything after it shift to the front and the decoder re-enters
// the synced state. Otherwise only the last HeaderSize-1 bytes survive (a
// header may straddle the corrupted region) and the decoder returns to
// scanning. Either way the retained state shrinks, so adversarial input
// cannot stall the decoder.
func (d *StreamDecoder) resync() bool {
	for i := d.fill - HeaderSize; i >= 0; i-- {
		if i == 0 && d.synced {
			// The verified header of the frame just declared corrupt;
			// re-adopting it would loop on the same bytes.
			break
		}
		if [HeaderSize]byte(d.buf[i:i+HeaderSize]) == FrameHeader {
			copy(d.buf[:], d.buf[i:d.fill])
			d.fill -= i
			d.synced = true
			d.expected = 0
			return true
		}
	}

	keep := HeaderSize - 1
	if d.fill < keep {
		keep = d.fill
	}
	if keep > 0 && keep < d.fill {
		copy(d.buf[:], d.buf[d.fill-keep:d.fill])
	}
	d.fill = keep
	d.synced = false
	d.expected = 0
	return false
}
