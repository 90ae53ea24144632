package treadmill

import (
	"context"
	"sync"
	"time"
)

// Simulator is an Adapter backed by a single fake treadmill that emits
// synthetic FTMS frames. It stands in for hardware in development
// (serve --simulate) and in tests.
type Simulator struct {
	peripheral *simPeripheral
}

// NewSimulator creates a simulator advertising the given device name
// and emitting one data frame per interval once connected.
func NewSimulator(name string, interval time.Duration) *Simulator {
	return &Simulator{
		peripheral: &simPeripheral{
			name:     name,
			interval: interval,
			speed:    800, // 8.00 km/h
		},
	}
}

func (s *Simulator) StartScan(context.Context) error { return nil }
func (s *Simulator) StopScan() error                 { return nil }

func (s *Simulator) Peripherals(context.Context) ([]Peripheral, error) {
	return []Peripheral{s.peripheral}, nil
}

// Writes returns every control payload written so far, oldest first.
func (s *Simulator) Writes() [][]byte {
	return s.peripheral.controlWrites()
}

type simPeripheral struct {
	name     string
	interval time.Duration
	speed    uint16

	mu        sync.Mutex
	connected bool
	writes    [][]byte
	stop      chan struct{}
}

func (p *simPeripheral) Name() string { return p.name }

func (p *simPeripheral) Connect(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true
	return nil
}

func (p *simPeripheral) Notifications(ctx context.Context) (<-chan []byte, error) {
	p.mu.Lock()
	stop := make(chan struct{})
	p.stop = stop
	p.mu.Unlock()

	ch := make(chan []byte)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		var elapsed uint16
		var distance uint32
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				speed := p.currentSpeed()
				elapsed++
				distance += uint32(speed) / 100
				select {
				case ch <- p.frame(speed, elapsed, distance):
				case <-stop:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func (p *simPeripheral) currentSpeed() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// frame builds a data notification with speed, total distance, heart
// rate and elapsed time populated.
func (p *simPeripheral) frame(speed, elapsed uint16, distance uint32) []byte {
	hr := uint8(120 + elapsed%20)
	return []byte{
		0x04, 0x05, // flags: total distance; heart rate + elapsed time
		byte(speed), byte(speed >> 8),
		byte(distance), byte(distance >> 8), byte(distance >> 16),
		hr,
		byte(elapsed), byte(elapsed >> 8),
	}
}

func (p *simPeripheral) WriteControl(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return ErrNotConnected
	}
	p.writes = append(p.writes, append([]byte(nil), payload...))

	// Track target speed so emitted frames follow control writes.
	if len(payload) == 3 && payload[0] == 0x02 {
		p.speed = uint16(payload[1]) | uint16(payload[2])<<8
	}
	return nil
}

func (p *simPeripheral) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	return nil
}

func (p *simPeripheral) controlWrites() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.writes))
	copy(out, p.writes)
	return out
}
