package sensor

import "context"

// Advertisement is a sensor seen while scanning.
type Advertisement struct {
	UUID uint64
	Name string
	RSSI int
}

// DeviceInfo is read once after connecting.
type DeviceInfo struct {
	UUID     uint64
	Name     string
	Firmware string
	Battery  int
}

// Frame is one notification from a connected sensor. PPG carries the
// raw photoplethysmography samples for the window; Battery is carried
// on every frame so the level never goes stale.
type Frame struct {
	Battery int
	PPG     []int32
}

// Conn is an open link to a sensor.
type Conn interface {
	// Info reads the device characteristics (battery, firmware, uuid).
	Info(ctx context.Context) (DeviceInfo, error)

	// Frames returns the notification stream. The channel closes when
	// the link drops or Close is called.
	Frames() <-chan Frame

	Close() error
}

// Transport abstracts the radio. The shipped implementation is the
// simulated sensor in the sim subpackage; a real BLE binding would slot
// in behind the same two calls.
type Transport interface {
	// Scan streams advertisements until ctx is cancelled.
	Scan(ctx context.Context) (<-chan Advertisement, error)

	// Connect opens a link to the advertised sensor.
	Connect(ctx context.Context, adv Advertisement) (Conn, error)
}
