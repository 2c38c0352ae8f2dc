package udp

import "errors"

// Sentinel errors for UDP line protocol delivery.
var (
	// ErrInvalidAddress indicates a remote or local address that cannot be parsed.
	ErrInvalidAddress = errors.New("udp: invalid address")

	// ErrSendFailed indicates the local socket could not be bound or the
	// datagram could not be handed to the network stack.
	ErrSendFailed = errors.New("udp: send failed")

	// ErrPayloadTooLarge indicates a payload that does not fit one datagram.
	ErrPayloadTooLarge = errors.New("udp: payload exceeds datagram size")

	// ErrClosed indicates use of a closed Socket.
	ErrClosed = errors.New("udp: socket closed")
)
