// Package monitor republishes decoded sensor frames over WebSocket.
//
// The monitor server lets several tools watch one sensor without
// contending for the serial port: the process that owns the port
// pushes every decoded frame through Broadcast, and subscribers
// connect to ws://<addr>/frames and receive them as JSON events.
//
// # Event Format
//
// Each frame is one JSON object:
//
//	{
//	  "timestamp": "2026-08-30T10:15:04.123Z",
//	  "port": "/dev/ttyUSB0",
//	  "cmd": "0xff",
//	  "status": 0,
//	  "payload_length": 4,
//	  "payload_hex": "02002000",
//	  "raw_hex": "fdfcfbfa0800ff0100000200200004030201"
//	}
//
// # Backpressure
//
// Each subscriber gets a bounded send queue. Broadcast never blocks:
// a subscriber whose queue is full is disconnected so one slow peer
// cannot stall frame decoding or the other subscribers.
//
// # Usage Example
//
//	srv := monitor.New(&monitor.Config{Addr: "127.0.0.1:8480"})
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range client.Frames() {
//	    srv.Broadcast(ev)
//	}
package monitor
