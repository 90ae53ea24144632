// Package treadmill drives the Bluetooth connection to a treadmill:
// scanning, connecting, decoding data notifications, and writing
// control commands. The hardware sits behind the Adapter and Peripheral
// interfaces so the rest of the system never touches a BLE stack.
package treadmill

import (
	"context"
	"errors"
)

// ErrNotConnected is returned by control operations before a successful
// Connect.
var ErrNotConnected = errors.New("treadmill: not connected")

// ErrNotFound is returned when no scanned peripheral matches the
// configured device name.
var ErrNotFound = errors.New("treadmill: device not found")

// Peripheral is one discovered Bluetooth device.
type Peripheral interface {
	// Name is the advertised local name.
	Name() string
	Connect(ctx context.Context) error
	// Notifications subscribes to the treadmill data characteristic.
	// The channel closes when the peripheral disconnects.
	Notifications(ctx context.Context) (<-chan []byte, error)
	// WriteControl writes an encoded command to the control point.
	WriteControl(ctx context.Context, payload []byte) error
	Disconnect() error
}

// Adapter is the local Bluetooth radio.
type Adapter interface {
	StartScan(ctx context.Context) error
	StopScan() error
	// Peripherals lists devices discovered so far.
	Peripherals(ctx context.Context) ([]Peripheral, error)
}
