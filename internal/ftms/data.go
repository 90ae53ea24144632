// Package ftms encodes and decodes the Bluetooth Fitness Machine
// Service payloads a treadmill exchanges over GATT: the Treadmill Data
// characteristic (0x2ACD) and the Control Point characteristic (0x2AD9).
package ftms

import (
	"encoding/binary"
	"errors"
)

// DataCharacteristic and ControlCharacteristic are the 16-bit GATT
// characteristic UUIDs in the Bluetooth base range.
const (
	DataCharacteristic    = 0x2ACD
	ControlCharacteristic = 0x2AD9
)

// ErrNotEnoughData is returned when a notification payload is shorter
// than its flag bits promise.
var ErrNotEnoughData = errors.New("ftms: not enough data")

// flags is the two-byte field bitmap at the head of every treadmill
// data notification.
type flags struct {
	moreData              bool
	averageSpeed          bool
	totalDistance         bool
	inclinationAndRamp    bool
	elevationGain         bool
	instantaneousPace     bool
	averagePace           bool
	energy                bool
	heartRate             bool
	metabolicEquivalent   bool
	elapsedTime           bool
	remainingTime         bool
	forceOnBeltAndPower   bool
}

func parseFlags(b0, b1 byte) flags {
	return flags{
		moreData:            b0&0x01 != 0,
		averageSpeed:        b0&0x02 != 0,
		totalDistance:       b0&0x04 != 0,
		inclinationAndRamp:  b0&0x08 != 0,
		elevationGain:       b0&0x10 != 0,
		instantaneousPace:   b0&0x20 != 0,
		averagePace:         b0&0x40 != 0,
		energy:              b0&0x80 != 0,
		heartRate:           b1&0x01 != 0,
		metabolicEquivalent: b1&0x02 != 0,
		elapsedTime:         b1&0x04 != 0,
		remainingTime:       b1&0x08 != 0,
		forceOnBeltAndPower: b1&0x10 != 0,
	}
}

// Data is one decoded treadmill data notification. Speed is always
// present (0.01 km/h units); every other field is flag-gated.
type Data struct {
	Speed               uint16  `json:"speed"`
	AverageSpeed        *uint16 `json:"average_speed,omitempty"`
	TotalDistance       *uint32 `json:"total_distance,omitempty"`
	Inclination         *int16  `json:"inclination,omitempty"`
	RampAngle           *int16  `json:"ramp_angle,omitempty"`
	PositiveElevation   *uint16 `json:"positive_elevation,omitempty"`
	NegativeElevation   *uint16 `json:"negative_elevation,omitempty"`
	InstantaneousPace   *uint16 `json:"instantaneous_pace,omitempty"`
	AveragePace         *uint16 `json:"average_pace,omitempty"`
	TotalEnergy         *uint16 `json:"total_energy,omitempty"`
	EnergyPerHour       *uint16 `json:"energy_per_hour,omitempty"`
	EnergyPerMinute     *uint8  `json:"energy_per_minute,omitempty"`
	HeartRate           *uint8  `json:"heart_rate,omitempty"`
	MetabolicEquivalent *uint8  `json:"metabolic_equivalent,omitempty"`
	ElapsedTime         *uint16 `json:"elapsed_time,omitempty"`
	RemainingTime       *uint16 `json:"remaining_time,omitempty"`
	ForceOnBelt         *int16  `json:"force_on_belt,omitempty"`
	PowerOutput         *int16  `json:"power_output,omitempty"`
}

// reader walks the payload cursor and remembers the first short read.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	if len(r.data) < r.pos+1 {
		r.err = ErrNotEnoughData
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u16() uint16 {
	if r.err != nil {
		return 0
	}
	if len(r.data) < r.pos+2 {
		r.err = ErrNotEnoughData
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) i16() int16 {
	return int16(r.u16())
}

// u24 is a 24-bit little-endian unsigned value, used by total distance.
func (r *reader) u24() uint32 {
	if r.err != nil {
		return 0
	}
	if len(r.data) < r.pos+3 {
		r.err = ErrNotEnoughData
		return 0
	}
	v := uint32(r.data[r.pos]) | uint32(r.data[r.pos+1])<<8 | uint32(r.data[r.pos+2])<<16
	r.pos += 3
	return v
}

func ptr[T any](v T) *T { return &v }

// DecodeData parses a treadmill data notification. The field order is
// fixed by the characteristic definition; which fields are present is
// governed by the leading flag bytes.
func DecodeData(payload []byte) (*Data, error) {
	if len(payload) < 4 {
		return nil, ErrNotEnoughData
	}

	f := parseFlags(payload[0], payload[1])
	r := &reader{data: payload, pos: 2}
	d := &Data{Speed: r.u16()}

	if f.averageSpeed {
		d.AverageSpeed = ptr(r.u16())
	}
	if f.totalDistance {
		d.TotalDistance = ptr(r.u24())
	}
	if f.inclinationAndRamp {
		d.Inclination = ptr(r.i16())
		d.RampAngle = ptr(r.i16())
	}
	if f.elevationGain {
		d.PositiveElevation = ptr(r.u16())
		d.NegativeElevation = ptr(r.u16())
	}
	if f.instantaneousPace {
		d.InstantaneousPace = ptr(r.u16())
	}
	if f.averagePace {
		d.AveragePace = ptr(r.u16())
	}
	if f.energy {
		d.TotalEnergy = ptr(r.u16())
		d.EnergyPerHour = ptr(r.u16())
		d.EnergyPerMinute = ptr(r.u8())
	}
	if f.heartRate {
		d.HeartRate = ptr(r.u8())
	}
	if f.metabolicEquivalent {
		d.MetabolicEquivalent = ptr(r.u8())
	}
	if f.elapsedTime {
		d.ElapsedTime = ptr(r.u16())
	}
	if f.remainingTime {
		d.RemainingTime = ptr(r.u16())
	}
	if f.forceOnBeltAndPower {
		d.ForceOnBelt = ptr(r.i16())
		d.PowerOutput = ptr(r.i16())
	}

	if r.err != nil {
		return nil, r.err
	}
	return d, nil
}
