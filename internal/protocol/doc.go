// Package protocol implements the HLK-LD2420 binary command protocol.
//
// This package handles validation, incremental decoding, and construction
// of the framed binary messages the LD2420 24GHz radar sensor exchanges
// over its UART (115200 8N1).
//
// # Frame Layout
//
// Every command frame, in both directions, has this structure:
//   - Header: 4 fixed bytes, 0xFD 0xFC 0xFB 0xFA
//   - Intra-frame length: 2 bytes, little-endian; counts the bytes
//     between the length field and the footer
//   - Intra-frame data: command echo (2 bytes LE), status (2 bytes LE),
//     then optional payload
//   - Footer: 4 fixed bytes, 0x04 0x03 0x02 0x01
//
// Receive-direction frames are between 14 and 154 bytes total;
// transmit-direction frames between 12 and 222 bytes.
//
// # One-Shot Validation
//
// ValidateFrame decides whether a complete contiguous buffer is a
// well-formed frame and extracts its metadata:
//
//	frame, err := protocol.ValidateFrame(buf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("cmd=0x%02x status=0x%04x\n", frame.CmdEcho, frame.Status)
//
// # Streaming Decoding
//
// Serial transports split frames arbitrarily and may carry noise between
// them. StreamDecoder consumes such a stream incrementally: it locks onto
// headers, accumulates each frame using the embedded length field,
// validates the footer, and emits decoded frames to a sink callback,
// resynchronizing past corruption as it goes:
//
//	var dec protocol.StreamDecoder
//	sink := func(raw []byte, frame protocol.Frame) bool {
//	    fmt.Println(frame)
//	    return true
//	}
//	for {
//	    n, _ := port.Read(chunk)
//	    dec.FeedBytes(chunk[:n], sink)
//	}
//
// The decoder uses a single fixed-capacity buffer, never blocks, and
// recovers from any corruption without being reconstructed. One decoder
// serves exactly one byte stream and must be driven from one goroutine.
//
// # Command Construction
//
// BuildCommand and the Build* helpers serialize transmit-direction
// frames:
//
//	port.Write(protocol.BuildOpenConfigMode())
//	port.Write(protocol.BuildReadVersion())
//	port.Write(protocol.BuildCloseConfigMode())
//
// Configuration parameter IDs are exported as constants, but their value
// semantics are firmware-specific and left to the caller.
//
// # Command Echo Quirk
//
// The sensor echoes the 16-bit command word with an extra marker bit set
// in the high byte (command 0xFF is echoed as 0x01FF). Frame.CmdEcho
// therefore keeps only the low 8 bits. This is LD2420-specific behavior,
// not a general property of the framing.
//
// # Error Handling
//
// Validation errors are sentinel values comparable with errors.Is. They
// fall into two classes: malformed calls (ErrInvalidArguments) and
// definitive facts about one buffer or stream position (everything
// else). Stream errors never poison a StreamDecoder session.
package protocol
