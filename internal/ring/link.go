package ring

import "context"

// Link is the transport collaborator the core consumes (spec §6). Scanning,
// pairing, and reconnection policy live outside the core; the core only
// needs to move bytes and know when the link drops.
type Link interface {
	// Connect blocks until the GATT service is discovered and notifications
	// are subscribed, or returns an error.
	Connect(ctx context.Context) error

	// Disconnect tears down subscriptions and releases the connection.
	// Safe to call from any state, including when not connected.
	Disconnect() error

	// Write sends a 16-byte command to the write characteristic.
	Write(command [16]byte) error

	// Notifications returns the channel of 16-byte notification payloads.
	// Closed when the link disconnects.
	Notifications() <-chan [16]byte
}
