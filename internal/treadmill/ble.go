package treadmill

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tinygo.org/x/bluetooth"
)

// BLEAdapter is the real-hardware Adapter backed by the platform
// Bluetooth stack. Scan results are accumulated until StopScan.
type BLEAdapter struct {
	adapter *bluetooth.Adapter
	log     *slog.Logger

	mu    sync.Mutex
	found map[string]bluetooth.ScanResult
}

// NewBLEAdapter enables the default platform adapter.
func NewBLEAdapter(log *slog.Logger) (*BLEAdapter, error) {
	a := bluetooth.DefaultAdapter
	if err := a.Enable(); err != nil {
		return nil, fmt.Errorf("enabling bluetooth adapter: %w", err)
	}
	return &BLEAdapter{
		adapter: a,
		log:     log,
		found:   make(map[string]bluetooth.ScanResult),
	}, nil
}

// StartScan begins discovery. Scan blocks until StopScan, so it runs on
// its own goroutine; results are keyed by address so a device that
// advertises repeatedly is recorded once.
func (a *BLEAdapter) StartScan(ctx context.Context) error {
	a.mu.Lock()
	a.found = make(map[string]bluetooth.ScanResult)
	a.mu.Unlock()

	go func() {
		err := a.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			if result.LocalName() == "" {
				return
			}
			a.mu.Lock()
			a.found[result.Address.String()] = result
			a.mu.Unlock()
		})
		if err != nil {
			a.log.Error("bluetooth scan failed", "error", err)
		}
	}()
	return nil
}

func (a *BLEAdapter) StopScan() error {
	return a.adapter.StopScan()
}

func (a *BLEAdapter) Peripherals(_ context.Context) ([]Peripheral, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	peripherals := make([]Peripheral, 0, len(a.found))
	for _, result := range a.found {
		peripherals = append(peripherals, &blePeripheral{adapter: a.adapter, result: result})
	}
	return peripherals, nil
}

// blePeripheral wraps one scan result. Connect resolves the fitness
// machine service and its treadmill data and control point
// characteristics.
type blePeripheral struct {
	adapter *bluetooth.Adapter
	result  bluetooth.ScanResult

	device   bluetooth.Device
	dataChar bluetooth.DeviceCharacteristic
	ctrlChar bluetooth.DeviceCharacteristic

	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

func (p *blePeripheral) Name() string {
	return p.result.LocalName()
}

func (p *blePeripheral) Connect(_ context.Context) error {
	device, err := p.adapter.Connect(p.result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", p.result.LocalName(), err)
	}
	p.device = device

	services, err := device.DiscoverServices([]bluetooth.UUID{bluetooth.ServiceUUIDFitnessMachine})
	if err != nil {
		return fmt.Errorf("discovering fitness machine service: %w", err)
	}
	if len(services) == 0 {
		return fmt.Errorf("%s has no fitness machine service", p.result.LocalName())
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{
		bluetooth.CharacteristicUUIDTreadmillData,
		bluetooth.CharacteristicUUIDFitnessMachineControlPoint,
	})
	if err != nil {
		return fmt.Errorf("discovering characteristics: %w", err)
	}
	for _, c := range chars {
		switch c.UUID() {
		case bluetooth.CharacteristicUUIDTreadmillData:
			p.dataChar = c
		case bluetooth.CharacteristicUUIDFitnessMachineControlPoint:
			p.ctrlChar = c
		}
	}
	return nil
}

// Notifications subscribes to the treadmill data characteristic. The
// channel stays open until Disconnect regardless of the caller's
// context; a slow consumer drops frames rather than stalling the stack.
func (p *blePeripheral) Notifications(_ context.Context) (<-chan []byte, error) {
	p.mu.Lock()
	p.ch = make(chan []byte, 16)
	p.closed = false
	p.mu.Unlock()

	err := p.dataChar.EnableNotifications(func(buf []byte) {
		// The stack reuses its buffer across callbacks.
		frame := make([]byte, len(buf))
		copy(frame, buf)

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return
		}
		select {
		case p.ch <- frame:
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("enabling treadmill data notifications: %w", err)
	}
	return p.ch, nil
}

func (p *blePeripheral) WriteControl(_ context.Context, payload []byte) error {
	if _, err := p.ctrlChar.WriteWithoutResponse(payload); err != nil {
		return fmt.Errorf("writing control point: %w", err)
	}
	return nil
}

func (p *blePeripheral) Disconnect() error {
	p.mu.Lock()
	if p.ch != nil && !p.closed {
		p.closed = true
		close(p.ch)
	}
	p.mu.Unlock()
	return p.device.Disconnect()
}
