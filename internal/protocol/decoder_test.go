package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// collector is a FrameSink that records every emission.
type collector struct {
	frames []Frame
	raws   [][]byte
	stop   bool // return false after the next emission
}

func (c *collector) sink(raw []byte, frame Frame) bool {
	c.raws = append(c.raws, append([]byte(nil), raw...))
	c.frames = append(c.frames, frame)
	return !c.stop
}

func feedAll(t *testing.T, d *StreamDecoder, c *collector, p []byte) []error {
	t.Helper()
	var errs []error
	for _, b := range p {
		if err := d.Feed(b, c.sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func TestStreamDecoderSingleFrameByteAtATime(t *testing.T) {
	var d StreamDecoder
	var c collector

	for i, b := range openConfigResponse {
		if err := d.Feed(b, c.sink); err != nil {
			t.Fatalf("Feed(byte %d) error = %v", i, err)
		}
		if i < len(openConfigResponse)-1 && len(c.frames) != 0 {
			t.Fatalf("frame emitted after %d of %d bytes", i+1, len(openConfigResponse))
		}
	}

	if len(c.frames) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(c.frames))
	}
	f := c.frames[0]
	if f.CmdEcho != 0xFF {
		t.Errorf("CmdEcho = 0x%02x, want 0xff", f.CmdEcho)
	}
	if f.Status != 0 {
		t.Errorf("Status = 0x%04x, want 0", f.Status)
	}
	if len(c.raws[0]) != 18 {
		t.Errorf("raw frame size = %d, want 18", len(c.raws[0]))
	}
	if !bytes.Equal(c.raws[0], openConfigResponse) {
		t.Errorf("raw frame = % x, want the fed bytes", c.raws[0])
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d after emission, want 0", d.Pending())
	}
}

func TestStreamDecoderEverySplitPoint(t *testing.T) {
	frame := openConfigResponse

	for k := 1; k < len(frame); k++ {
		var d StreamDecoder
		var c collector

		if _, err := d.FeedBytes(frame[:k], c.sink); err != nil {
			t.Fatalf("split %d: first chunk error = %v", k, err)
		}
		if len(c.frames) != 0 {
			t.Fatalf("split %d: frame emitted from incomplete prefix", k)
		}
		if _, err := d.FeedBytes(frame[k:], c.sink); err != nil {
			t.Fatalf("split %d: second chunk error = %v", k, err)
		}

		if len(c.frames) != 1 {
			t.Fatalf("split %d: decoded %d frames, want 1", k, len(c.frames))
		}
		if c.frames[0].CmdEcho != 0xFF || c.frames[0].Status != 0 {
			t.Errorf("split %d: decoded %v, want cmd 0xff status 0", k, c.frames[0])
		}
	}
}

func TestStreamDecoderNoisePrefix(t *testing.T) {
	noise := []byte{0x00, 0x13, 0x37, 0xFD, 0xFC, 0x55, 0xAA, 0xFF, 0x04, 0x03, 0x02, 0x01}

	var d StreamDecoder
	var c collector
	if errs := feedAll(t, &d, &c, noise); errs != nil {
		t.Fatalf("noise produced errors: %v", errs)
	}
	if len(c.frames) != 0 {
		t.Fatal("noise triggered a decode")
	}

	if errs := feedAll(t, &d, &c, openConfigResponse); errs != nil {
		t.Fatalf("frame after noise produced errors: %v", errs)
	}
	if len(c.frames) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(c.frames))
	}
	if !bytes.Equal(c.raws[0], openConfigResponse) {
		t.Errorf("raw frame = % x, want the clean frame only", c.raws[0])
	}
}

func TestStreamDecoderHeaderSplitAcrossCalls(t *testing.T) {
	// Garbage ending in a partial header, then the rest of the frame in a
	// second chunk. The decoder must keep the trailing header bytes.
	first := append([]byte{0x42, 0x42}, openConfigResponse[:2]...) // .. FD FC
	second := openConfigResponse[2:]

	var d StreamDecoder
	var c collector
	if _, err := d.FeedBytes(first, c.sink); err != nil {
		t.Fatalf("first chunk error = %v", err)
	}
	if _, err := d.FeedBytes(second, c.sink); err != nil {
		t.Fatalf("second chunk error = %v", err)
	}
	if len(c.frames) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(c.frames))
	}
}

func TestStreamDecoderCorruptFooterThenRecovery(t *testing.T) {
	bad := append([]byte(nil), openConfigResponse...)
	bad[len(bad)-1] = 0xEE

	var d StreamDecoder
	var c collector
	errs := feedAll(t, &d, &c, bad)

	if len(c.frames) != 0 {
		t.Fatal("corrupt frame reached the sink")
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidFooter) {
		t.Fatalf("errors = %v, want one ErrInvalidFooter", errs)
	}

	// The session must survive: the next valid frame decodes normally.
	if errs := feedAll(t, &d, &c, openConfigResponse); errs != nil {
		t.Fatalf("frame after corruption produced errors: %v", errs)
	}
	if len(c.frames) != 1 {
		t.Fatalf("decoded %d frames after recovery, want 1", len(c.frames))
	}
	if !bytes.Equal(c.raws[0], openConfigResponse) {
		t.Errorf("recovered frame = % x, want the clean frame", c.raws[0])
	}
}

func TestStreamDecoderOversizedLengthThenRecovery(t *testing.T) {
	// Header followed by a length field declaring a 200 byte frame.
	hostile := append(append([]byte(nil), FrameHeader[:]...), 0xC8, 0x00)

	var d StreamDecoder
	var c collector
	errs := feedAll(t, &d, &c, hostile)

	if len(errs) != 1 || !errors.Is(errs[0], ErrBufferTooSmall) {
		t.Fatalf("errors = %v, want one ErrBufferTooSmall", errs)
	}
	if len(c.frames) != 0 {
		t.Fatal("oversized declaration reached the sink")
	}

	if errs := feedAll(t, &d, &c, openConfigResponse); errs != nil {
		t.Fatalf("frame after oversized length produced errors: %v", errs)
	}
	if len(c.frames) != 1 {
		t.Fatalf("decoded %d frames after recovery, want 1", len(c.frames))
	}
}

func TestStreamDecoderRejectedFrameThenRecovery(t *testing.T) {
	// Structurally complete frame whose declared length is zero: the
	// footer lands where the validator expects it, but the frame itself
	// is below the protocol minimum.
	degenerate := buildTestFrame(nil)

	var d StreamDecoder
	var c collector
	errs := feedAll(t, &d, &c, degenerate)

	if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidFrame) {
		t.Fatalf("errors = %v, want one ErrInvalidFrame", errs)
	}
	if len(c.frames) != 0 {
		t.Fatal("rejected frame reached the sink")
	}

	if errs := feedAll(t, &d, &c, openConfigResponse); errs != nil {
		t.Fatalf("frame after rejection produced errors: %v", errs)
	}
	if len(c.frames) != 1 {
		t.Fatalf("decoded %d frames after recovery, want 1", len(c.frames))
	}
}

func TestStreamDecoderBackToBackFrames(t *testing.T) {
	second := buildTestFrame([]byte{0xFE, 0x01, 0x00, 0x00})
	stream := append(append([]byte(nil), openConfigResponse...), second...)

	var d StreamDecoder
	var c collector
	n, err := d.FeedBytes(stream, c.sink)
	if err != nil {
		t.Fatalf("FeedBytes() error = %v", err)
	}
	if n != len(stream) {
		t.Fatalf("consumed %d of %d bytes", n, len(stream))
	}

	if len(c.frames) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(c.frames))
	}
	// Emission order follows footer order in the input.
	if c.frames[0].CmdEcho != 0xFF || c.frames[1].CmdEcho != 0xFE {
		t.Errorf("decoded order = 0x%02x, 0x%02x; want 0xff, 0xfe",
			c.frames[0].CmdEcho, c.frames[1].CmdEcho)
	}
}

func TestStreamDecoderSinkEarlyStop(t *testing.T) {
	second := buildTestFrame([]byte{0xFE, 0x01, 0x00, 0x00})
	stream := append(append([]byte(nil), openConfigResponse...), second...)

	var d StreamDecoder
	c := collector{stop: true}
	n, err := d.FeedBytes(stream, c.sink)
	if err != nil {
		t.Fatalf("FeedBytes() error = %v", err)
	}
	if len(c.frames) != 1 {
		t.Fatalf("decoded %d frames before stop, want 1", len(c.frames))
	}
	if n != len(openConfigResponse) {
		t.Fatalf("consumed %d bytes, want %d (stop right after the first frame)",
			n, len(openConfigResponse))
	}

	// The caller resumes with the unconsumed remainder.
	resumed := collector{}
	if _, err := d.FeedBytes(stream[n:], resumed.sink); err != nil {
		t.Fatalf("resumed FeedBytes() error = %v", err)
	}
	if len(resumed.frames) != 1 || resumed.frames[0].CmdEcho != 0xFE {
		t.Fatalf("resumed decode = %v, want one 0xfe frame", resumed.frames)
	}
}

func TestStreamDecoderNilSink(t *testing.T) {
	var d StreamDecoder
	if err := d.Feed(0xFD, nil); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("Feed(nil sink) error = %v, want ErrInvalidArguments", err)
	}
	if _, err := d.FeedBytes(openConfigResponse, nil); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("FeedBytes(nil sink) error = %v, want ErrInvalidArguments", err)
	}
}

func TestStreamDecoderReset(t *testing.T) {
	var d StreamDecoder
	var c collector

	// Half a frame, then a reset: those bytes must not contribute.
	if _, err := d.FeedBytes(openConfigResponse[:9], c.sink); err != nil {
		t.Fatalf("FeedBytes() error = %v", err)
	}
	if !d.Synced() {
		t.Fatal("decoder not synced after header")
	}
	d.Reset()
	if d.Pending() != 0 || d.Synced() {
		t.Fatal("Reset() left state behind")
	}

	if errs := feedAll(t, &d, &c, openConfigResponse); errs != nil {
		t.Fatalf("frame after reset produced errors: %v", errs)
	}
	if len(c.frames) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(c.frames))
	}
}

func TestStreamDecoderBoundedScanBuffer(t *testing.T) {
	var d StreamDecoder
	var c collector

	// A long run of non-header bytes must not accumulate.
	for i := 0; i < 4*MaxRxFrameSize; i++ {
		if err := d.Feed(0x5A, c.sink); err != nil {
			t.Fatalf("Feed(noise byte %d) error = %v", i, err)
		}
	}
	if d.Pending() >= HeaderSize {
		t.Fatalf("Pending() = %d while scanning noise, want < %d", d.Pending(), HeaderSize)
	}
	if len(c.frames) != 0 {
		t.Fatal("noise triggered a decode")
	}
}

func BenchmarkStreamDecoderFeed(b *testing.B) {
	var d StreamDecoder
	sink := func([]byte, Frame) bool { return true }
	for i := 0; i < b.N; i++ {
		d.FeedBytes(openConfigResponse, sink)
	}
}
