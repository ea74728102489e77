//go:build ignore

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/muurk/ld2420/internal/protocol"
)

// Decode-capture replays a captured UART byte stream through the frame
// decoder and prints every frame it finds. Useful for checking captures
// taken with a logic analyzer or 'cat port > file'.
//
// The input is either raw binary or a hex dump (whitespace and newlines
// are ignored); the format is sniffed from the file contents.

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: decode-capture <capture-file>")
		fmt.Println("Example: decode-capture captures/hallway-20260830.bin")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	stream := data
	if decoded, ok := tryHexDump(data); ok {
		stream = decoded
		fmt.Printf("Input looks like a hex dump (%d bytes decoded)\n", len(decoded))
	}

	fmt.Printf("=== LD2420 Capture Decoder ===\n")
	fmt.Printf("File: %s\n", os.Args[1])
	fmt.Printf("Stream: %d bytes\n\n", len(stream))

	var (
		dec      protocol.StreamDecoder
		frames   int
		failures int
	)

	sink := func(raw []byte, frame protocol.Frame) bool {
		frames++
		fmt.Printf("#%-4d %s\n", frames, frame.String())
		return true
	}

	offset := 0
	for offset < len(stream) {
		n, err := dec.FeedBytes(stream[offset:], sink)
		if err != nil {
			failures++
			fmt.Printf("      stream error near offset %d: %v\n", offset+n, err)
		}
		offset += n
	}

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Frames decoded: %d\n", frames)
	fmt.Printf("Stream errors:  %d\n", failures)
	fmt.Printf("Trailing bytes: %d\n", dec.Pending())
}

// tryHexDump decodes the input as whitespace-separated hex if every
// character fits that shape.
func tryHexDump(data []byte) ([]byte, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			return r
		case r == ' ', r == '\t', r == '\n', r == '\r':
			return -1
		default:
			return 'x'
		}
	}, string(data))

	if strings.ContainsRune(cleaned, 'x') || len(cleaned) == 0 || len(cleaned)%2 != 0 {
		return nil, false
	}

	decoded, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, false
	}
	return decoded, true
}
