package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Wire format constants for the HLK-LD2420 command protocol.
// All multi-byte fields on the wire are little-endian, per the official
// protocol documentation at https://hlktech.net/index.php?id=1291.
const (
	// HeaderSize is the size of the fixed frame header.
	HeaderSize = 4
	// FooterSize is the size of the fixed frame footer.
	FooterSize = 4
	// LengthSize is the size of the intra-frame length field.
	LengthSize = 2

	// MinRxFrameSize is the smallest valid frame in the receive direction
	// (header + length + cmd echo + status + footer).
	MinRxFrameSize = 14
	// MaxRxFrameSize is the largest valid frame in the receive direction.
	MaxRxFrameSize = 154

	// MinTxFrameSize is the smallest valid frame in the transmit direction.
	MinTxFrameSize = 12
	// MaxTxFrameSize is the largest valid frame in the transmit direction.
	MaxTxFrameSize = 222

	// BaudRate is the UART baud rate required by the sensor.
	BaudRate = 115200
)

// FrameHeader marks the start of every command frame.
var FrameHeader = [HeaderSize]byte{0xFD, 0xFC, 0xFB, 0xFA}

// FrameFooter marks the end of every command frame.
var FrameFooter = [FooterSize]byte{0x04, 0x03, 0x02, 0x01}

// Error values returned by frame validation and stream decoding. All of
// them describe one buffer or one fed byte; none of them invalidate the
// decoder session.
var (
	// ErrInvalidArguments indicates a malformed call (nil sink, oversized
	// command parameters). This is a programming error, not stream noise.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrInvalidHeader indicates the buffer does not start with FrameHeader.
	ErrInvalidHeader = errors.New("invalid frame header")
	// ErrInvalidFooter indicates the buffer does not end with FrameFooter.
	ErrInvalidFooter = errors.New("invalid frame footer")
	// ErrInvalidFrameSize indicates the intra-frame length field is zero or
	// too small to hold the command echo and status words.
	ErrInvalidFrameSize = errors.New("invalid intra-frame length")
	// ErrInvalidBufferSize indicates the buffer size disagrees with the
	// declared intra-frame length or the protocol size limits.
	ErrInvalidBufferSize = errors.New("invalid buffer size")
	// ErrBufferTooSmall indicates a declared frame would exceed the decoder
	// buffer or the protocol maximum.
	ErrBufferTooSmall = errors.New("frame exceeds buffer capacity")
	// ErrInvalidFrame indicates a size-correct, footer-correct buffer was
	// rejected by the validator.
	ErrInvalidFrame = errors.New("invalid frame")
)

// Frame holds the decoded metadata of one complete command frame.
type Frame struct {
	// DataLen is the declared intra-frame data length in bytes (the bytes
	// between the length field and the footer).
	DataLen uint16

	// CmdEcho is the echoed command word, truncated to its low byte. The
	// LD2420 sets an extra marker bit in the high byte of the 16-bit echo
	// (0x01FF for command 0xFF), so only the low 8 bits identify the
	// command. This truncation is sensor-specific behavior, not a general
	// rule for 16-bit echo fields.
	CmdEcho byte

	// Status is the 16-bit status word; zero means success.
	Status uint16

	// Payload views the optional bytes after the status word. It aliases
	// the validated buffer and is only valid as long as that buffer is.
	Payload []byte
}

// String returns a debug representation of the frame metadata.
func (f Frame) String() string {
	return fmt.Sprintf("Frame{len=%d, cmd=0x%02x, status=0x%04x, payload=%d bytes}",
		f.DataLen, f.CmdEcho, f.Status, len(f.Payload))
}

// Ok reports whether the sensor accepted the echoed command.
func (f Frame) Ok() bool {
	return f.Status == 0
}

// ValidateFrame decides whether buf is one well-formed command frame and
// extracts its metadata. It is a pure function of buf with no retry
// logic: any failure is a definitive fact about this buffer.
//
// A buffer is a valid frame iff it starts with FrameHeader, the declared
// intra-frame length plus framing overhead equals the buffer size, and it
// ends with FrameFooter. Nothing is assumed about payload contents.
func ValidateFrame(buf []byte) (Frame, error) {
	if len(buf) < MinRxFrameSize || len(buf) > MaxRxFrameSize {
		return Frame{}, fmt.Errorf("%w: %d bytes (must be %d..%d)",
			ErrInvalidBufferSize, len(buf), MinRxFrameSize, MaxRxFrameSize)
	}

	dataLen := binary.LittleEndian.Uint16(buf[HeaderSize:])
	if dataLen == 0 {
		return Frame{}, fmt.Errorf("%w: declared length is zero", ErrInvalidFrameSize)
	}

	expected := HeaderSize + LengthSize + int(dataLen) + FooterSize
	if expected != len(buf) {
		return Frame{}, fmt.Errorf("%w: declared %d bytes total, buffer has %d",
			ErrInvalidBufferSize, expected, len(buf))
	}

	if [HeaderSize]byte(buf[:HeaderSize]) != FrameHeader {
		return Frame{}, ErrInvalidHeader
	}
	if [FooterSize]byte(buf[len(buf)-FooterSize:]) != FrameFooter {
		return Frame{}, ErrInvalidFooter
	}

	// Intra-frame data must hold at least the cmd echo and status words.
	if dataLen < 4 {
		return Frame{}, fmt.Errorf("%w: declared length %d leaves no room for cmd echo and status",
			ErrInvalidFrameSize, dataLen)
	}

	f := Frame{
		DataLen: dataLen,
		CmdEcho: buf[HeaderSize+LengthSize], // low byte only, see Frame.CmdEcho
		Status:  binary.LittleEndian.Uint16(buf[HeaderSize+LengthSize+2:]),
	}
	if dataLen > 4 {
		f.Payload = buf[HeaderSize+LengthSize+4 : len(buf)-FooterSize]
	}
	return f, nil
}
