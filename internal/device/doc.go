// Package device manages sessions with an LD2420 sensor.
//
// A Client owns one serial port and one frame decoder. A background
// reader pulls bytes off the port into a ring buffer, a drain
// goroutine feeds them to the decoder, and decoded frames come out on
// the Frames channel in stream order. Stream corruption is logged and
// counted but never ends the session.
//
// Commands go through Send (fire and forget) or Do, which waits for
// the frame whose command echo matches. The sensor echoes some
// commands with a modified high byte, so matching uses the low byte
// only.
//
// # Usage Example
//
//	client, err := device.Dial("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
//	defer cancel()
//
//	if _, err := client.OpenConfigMode(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	firmware, err := client.ReadVersion(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_, _ = client.CloseConfigMode(ctx)
package device
