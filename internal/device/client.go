package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/ld2420/internal/logging"
	"github.com/muurk/ld2420/internal/protocol"
	"github.com/muurk/ld2420/internal/transport"
)

var (
	// ErrClientClosed is returned by operations on a closed client.
	ErrClientClosed = errors.New("client is closed")
)

const (
	defaultFrameBuffer = 32
	defaultRingSize    = 4096
	readChunkSize      = 256
)

// FrameEvent is one decoded frame together with its raw bytes and
// the time it was decoded.
type FrameEvent struct {
	Port     string
	Frame    protocol.Frame
	Raw      []byte
	Received time.Time
}

// Stats holds cumulative counters for one client session.
type Stats struct {
	BytesRead     uint64
	BytesDropped  uint64
	FramesDecoded uint64
	DecodeErrors  uint64
}

// Option configures a Client.
type Option func(*Client)

// WithBaudRate overrides the default baud rate used by Dial.
func WithBaudRate(baud int) Option {
	return func(c *Client) {
		c.baud = baud
	}
}

// WithFrameBuffer sets the capacity of the decoded frame channel.
func WithFrameBuffer(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.frameBuffer = n
		}
	}
}

// Client manages one serial session with a sensor: it owns the port,
// reassembles frames from the byte stream and delivers them on a
// channel. A Client runs exactly one decoder, so frames are delivered
// in stream order.
type Client struct {
	port        string
	baud        int
	frameBuffer int

	rw     io.ReadWriteCloser
	ring   *transport.Ring
	dec    protocol.StreamDecoder
	frames chan FrameEvent

	writeMu sync.Mutex
	wg      sync.WaitGroup
	done    chan struct{}
	closed  atomic.Bool

	bytesRead     atomic.Uint64
	framesDecoded atomic.Uint64
	decodeErrors  atomic.Uint64
}

// Dial opens the named serial port and starts a client session on it.
func Dial(portName string, opts ...Option) (*Client, error) {
	c := newClient(portName, opts...)

	rw, err := transport.OpenPort(portName, c.baud)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", portName, err)
	}
	c.rw = rw
	c.start()
	return c, nil
}

// NewClient starts a client session over an existing stream. The
// client takes ownership of rw and closes it on Close.
func NewClient(rw io.ReadWriteCloser, opts ...Option) *Client {
	c := newClient("stream", opts...)
	c.rw = rw
	c.start()
	return c
}

func newClient(portName string, opts ...Option) *Client {
	c := &Client{
		port:        portName,
		baud:        protocol.BaudRate,
		frameBuffer: defaultFrameBuffer,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ring = transport.NewRing(defaultRingSize)
	c.frames = make(chan FrameEvent, c.frameBuffer)
	return c
}

func (c *Client) start() {
	c.wg.Add(2)
	go c.readLoop()
	go c.drainLoop()

	logging.Debug("Client session started",
		zap.String("port", c.port),
		zap.Int("baud", c.baud),
	)
}

// Port returns the port name this client was opened on.
func (c *Client) Port() string {
	return c.port
}

// Frames returns the channel of decoded frames. The channel is closed
// by Close.
func (c *Client) Frames() <-chan FrameEvent {
	return c.frames
}

// Stats returns a snapshot of the session counters.
func (c *Client) Stats() Stats {
	return Stats{
		BytesRead:     c.bytesRead.Load(),
		BytesDropped:  c.ring.Dropped(),
		FramesDecoded: c.framesDecoded.Load(),
		DecodeErrors:  c.decodeErrors.Load(),
	}
}

// Send builds a command frame and writes it to the port. It does not
// wait for a response.
func (c *Client) Send(ctx context.Context, cmd protocol.Command, params []byte) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	buf, err := protocol.BuildCommand(cmd, params)
	if err != nil {
		return err
	}

	logging.LogRawBytes("TX "+cmd.String(), buf)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.rw.Write(buf); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd, err)
	}
	return nil
}

// Do sends a command and waits for the frame acknowledging it. The
// response is matched on the low byte of the command word, because
// the sensor echoes some commands with a modified high byte. Frames
// for other commands that arrive while waiting are discarded, so Do
// should not run concurrently with a reader of Frames.
func (c *Client) Do(ctx context.Context, cmd protocol.Command, params []byte) (FrameEvent, error) {
	if err := c.Send(ctx, cmd, params); err != nil {
		return FrameEvent{}, err
	}

	want := cmd.Echo()
	for {
		select {
		case ev, ok := <-c.frames:
			if !ok {
				return FrameEvent{}, ErrClientClosed
			}
			if ev.Frame.CmdEcho == want {
				return ev, nil
			}
			logging.Debug("Skipping unrelated frame while waiting for ack",
				zap.String("port", c.port),
				zap.String("want", fmt.Sprintf("0x%02x", want)),
				zap.String("got", fmt.Sprintf("0x%02x", ev.Frame.CmdEcho)),
			)
		case <-ctx.Done():
			return FrameEvent{}, fmt.Errorf("waiting for %s ack: %w", cmd, ctx.Err())
		}
	}
}

// OpenConfigMode puts the sensor into configuration mode and returns
// the acknowledgement frame.
func (c *Client) OpenConfigMode(ctx context.Context) (FrameEvent, error) {
	ev, err := c.Do(ctx, protocol.CmdOpenConfigMode, protocol.OpenConfigModeParams())
	if err != nil {
		return ev, err
	}
	if !ev.Frame.Ok() {
		return ev, fmt.Errorf("open config mode rejected: status 0x%04x", ev.Frame.Status)
	}
	return ev, nil
}

// CloseConfigMode returns the sensor to normal reporting mode.
func (c *Client) CloseConfigMode(ctx context.Context) (FrameEvent, error) {
	ev, err := c.Do(ctx, protocol.CmdCloseConfigMode, nil)
	if err != nil {
		return ev, err
	}
	if !ev.Frame.Ok() {
		return ev, fmt.Errorf("close config mode rejected: status 0x%04x", ev.Frame.Status)
	}
	return ev, nil
}

// ReadVersion asks the sensor for its firmware version string. The
// sensor only answers while in configuration mode.
func (c *Client) ReadVersion(ctx context.Context) (string, error) {
	ev, err := c.Do(ctx, protocol.CmdReadVersion, nil)
	if err != nil {
		return "", err
	}
	if !ev.Frame.Ok() {
		return "", fmt.Errorf("read version rejected: status 0x%04x", ev.Frame.Status)
	}
	return protocol.ParseVersionPayload(ev.Frame.Payload), nil
}

// Reboot asks the sensor to restart. The sensor does not acknowledge
// before it drops the link, so Reboot only sends.
func (c *Client) Reboot(ctx context.Context) error {
	return c.Send(ctx, protocol.CmdReboot, nil)
}

// Close shuts the session down and closes the underlying port. It is
// safe to call more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)
	err := c.rw.Close()
	c.wg.Wait()
	close(c.frames)

	logging.Debug("Client session closed",
		zap.String("port", c.port),
		zap.Uint64("frames", c.framesDecoded.Load()),
		zap.Uint64("errors", c.decodeErrors.Load()),
	)
	return err
}

// readLoop pulls bytes off the port into the ring buffer. It is the
// only reader of the port.
func (c *Client) readLoop() {
	defer c.wg.Done()

	buf := make([]byte, readChunkSize)
	for {
		n, err := c.rw.Read(buf)
		if n > 0 {
			c.bytesRead.Add(uint64(n))
			c.ring.Write(buf[:n])
		}
		if err != nil {
			if !c.closed.Load() && !errors.Is(err, io.EOF) {
				logging.Warn("Port read failed",
					zap.String("port", c.port),
					zap.Error(err),
				)
			}
			return
		}
		select {
		case <-c.done:
			return
		default:
		}
	}
}

// drainLoop feeds ring bytes to the decoder and delivers decoded
// frames. Decode errors are counted and logged but never end the
// session. When the frames channel fills, the sink stops the decoder
// early and the loop parks on the undelivered frame, so backpressure
// lands in the ring, where overflow is counted instead of frames
// being silently dropped.
func (c *Client) drainLoop() {
	defer c.wg.Done()

	var pending *FrameEvent

	sink := func(raw []byte, frame protocol.Frame) bool {
		ev := FrameEvent{
			Port:     c.port,
			Frame:    frame,
			Raw:      append([]byte(nil), raw...),
			Received: time.Now(),
		}

		c.framesDecoded.Add(1)
		logging.LogFrame(c.port, frame.CmdEcho, frame.Status, raw)

		select {
		case c.frames <- ev:
			return true
		default:
			pending = &ev
			return false
		}
	}

	buf := make([]byte, readChunkSize)
	for {
		n := c.ring.Read(buf)
		if n == 0 {
			select {
			case <-c.ring.Wait():
				continue
			case <-c.done:
				return
			}
		}

		data := buf[:n]
		for len(data) > 0 {
			consumed, err := c.dec.FeedBytes(data, sink)
			if err != nil {
				c.decodeErrors.Add(1)
				logging.LogStreamError(c.port, err)
			}
			data = data[consumed:]

			if pending != nil {
				select {
				case c.frames <- *pending:
					pending = nil
				case <-c.done:
					return
				}
			}
		}
	}
}
