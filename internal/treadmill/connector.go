package treadmill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/claude/stride/internal/ftms"
	"github.com/claude/stride/internal/store"
)

// Connector owns the treadmill connection lifecycle and mirrors its
// status into the store (off → scanning → connected, back to off on
// failure or disconnect).
type Connector struct {
	adapter    Adapter
	store      *store.Store
	log        *slog.Logger
	device     string
	scanWindow time.Duration

	mu         sync.Mutex
	peripheral Peripheral
	last       *ftms.Data
}

// NewConnector creates a connector that looks for a peripheral whose
// advertised name contains device.
func NewConnector(adapter Adapter, st *store.Store, device string, scanWindow time.Duration, log *slog.Logger) *Connector {
	return &Connector{
		adapter:    adapter,
		store:      st,
		log:        log,
		device:     device,
		scanWindow: scanWindow,
	}
}

// Connect scans for the configured treadmill, connects, subscribes to
// its data notifications, and requests control. Status transitions are
// dispatched into the store as they happen, so the UI tracks progress
// live.
func (c *Connector) Connect(ctx context.Context) error {
	return c.ConnectTo(ctx, c.device)
}

// ConnectTo is Connect with an explicit device name, matched as a
// substring of the advertised name. An empty name falls back to the
// configured one.
func (c *Connector) ConnectTo(ctx context.Context, device string) error {
	if device == "" {
		device = c.device
	}

	// Replace any existing connection. Detaching it under the lock
	// first keeps its read loop from clearing the state of the
	// connection we are about to make.
	c.mu.Lock()
	old := c.peripheral
	c.peripheral = nil
	c.last = nil
	c.mu.Unlock()
	if old != nil {
		if err := old.Disconnect(); err != nil {
			c.log.Warn("disconnecting previous peripheral", "name", old.Name(), "error", err)
		}
	}

	c.store.Dispatch(store.SetBluetooth{Status: store.StatusScanning})

	if err := c.adapter.StartScan(ctx); err != nil {
		c.store.Dispatch(store.SetBluetooth{Status: store.StatusOff})
		return fmt.Errorf("starting scan: %w", err)
	}
	defer func() {
		if err := c.adapter.StopScan(); err != nil {
			c.log.Warn("stopping scan", "error", err)
		}
	}()

	select {
	case <-time.After(c.scanWindow):
	case <-ctx.Done():
		c.store.Dispatch(store.SetBluetooth{Status: store.StatusOff})
		return ctx.Err()
	}

	p, err := c.find(ctx, device)
	if err != nil {
		c.store.Dispatch(store.SetBluetooth{Status: store.StatusOff})
		return err
	}

	if err := p.Connect(ctx); err != nil {
		c.store.Dispatch(store.SetBluetooth{Status: store.StatusOff})
		return fmt.Errorf("connecting to %s: %w", p.Name(), err)
	}

	notifications, err := p.Notifications(ctx)
	if err != nil {
		_ = p.Disconnect()
		c.store.Dispatch(store.SetBluetooth{Status: store.StatusOff})
		return fmt.Errorf("subscribing to treadmill data: %w", err)
	}

	c.mu.Lock()
	c.peripheral = p
	c.mu.Unlock()
	c.store.Dispatch(store.SetBluetooth{Status: store.StatusConnected})
	c.log.Info("treadmill connected", "name", p.Name())

	go c.readLoop(p, notifications)

	if err := p.WriteControl(ctx, ftms.RequestControl{}.Encode()); err != nil {
		return fmt.Errorf("requesting control: %w", err)
	}
	return nil
}

func (c *Connector) find(ctx context.Context, device string) (Peripheral, error) {
	peripherals, err := c.adapter.Peripherals(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing peripherals: %w", err)
	}
	for _, p := range peripherals {
		if strings.Contains(p.Name(), device) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no peripheral matching %q among %d discovered", ErrNotFound, device, len(peripherals))
}

// readLoop decodes notifications from one peripheral until its channel
// closes. It only touches connector state while p is still the current
// peripheral: a loop left over from a replaced connection must not
// clobber its successor.
func (c *Connector) readLoop(p Peripheral, notifications <-chan []byte) {
	for payload := range notifications {
		data, err := ftms.DecodeData(payload)
		if err != nil {
			c.log.Warn("dropping undecodable treadmill frame", "len", len(payload), "error", err)
			continue
		}
		c.mu.Lock()
		if c.peripheral == p {
			c.last = data
		}
		c.mu.Unlock()
	}

	// Channel closed: the peripheral went away.
	c.mu.Lock()
	current := c.peripheral == p
	if current {
		c.peripheral = nil
		c.last = nil
	}
	c.mu.Unlock()
	if !current {
		return
	}
	c.store.Dispatch(store.SetBluetooth{Status: store.StatusOff})
	c.log.Info("treadmill disconnected")
}

// LastData returns the most recent decoded data notification, or nil
// before the first frame arrives.
func (c *Connector) LastData() *ftms.Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Connector) write(ctx context.Context, cmd ftms.Command) error {
	c.mu.Lock()
	p := c.peripheral
	c.mu.Unlock()
	if p == nil {
		return ErrNotConnected
	}
	return p.WriteControl(ctx, cmd.Encode())
}

// Start starts or resumes the belt.
func (c *Connector) Start(ctx context.Context) error {
	return c.write(ctx, ftms.StartOrResume{})
}

// Stop stops the belt.
func (c *Connector) Stop(ctx context.Context) error {
	return c.write(ctx, ftms.StopOrPause{})
}

// SetSpeed sets the target belt speed in 0.01 km/h units.
func (c *Connector) SetSpeed(ctx context.Context, speed uint16) error {
	return c.write(ctx, ftms.SetTargetSpeed{Speed: speed})
}

// SetInclination sets the target incline in 0.1% units.
func (c *Connector) SetInclination(ctx context.Context, incline int16) error {
	return c.write(ctx, ftms.SetTargetInclination{Inclination: incline})
}

// Disconnect tears down the connection. Safe to call when not connected.
func (c *Connector) Disconnect() error {
	c.mu.Lock()
	p := c.peripheral
	c.mu.Unlock()
	if p == nil {
		return nil
	}
	return p.Disconnect()
}
