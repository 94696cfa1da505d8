package consts

import "time"

// Wire protocol limits
const (
	// MaxCommandLength is the maximum accepted length of an activation
	// command, in characters. Longer commands are silently ignored.
	MaxCommandLength = 8192

	// MaxFrameLength is the largest payload a single framed string may
	// carry. The length prefix is a uint16, so this is the hard ceiling.
	MaxFrameLength = 65535
)

// Timeouts for socket operations
const (
	// ProbeReadTimeout bounds reads made while probing a candidate port
	// for a sibling instance.
	ProbeReadTimeout = 300 * time.Millisecond

	// ProbeDialTimeout bounds the connect attempt to a candidate port.
	ProbeDialTimeout = 300 * time.Millisecond

	// ServeTimeout bounds all I/O on a connection accepted by the
	// listener service.
	ServeTimeout = 800 * time.Millisecond

	// ShutdownGrace is how long the launcher waits before forcing exit
	// once a shutdown signal has been received.
	ShutdownGrace = 1 * time.Second
)
