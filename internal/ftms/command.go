package ftms

// Control point opcodes.
const (
	opRequestControl       = 0x00
	opReset                = 0x01
	opSetTargetSpeed       = 0x02
	opSetTargetInclination = 0x03
	opStartOrResume        = 0x07
	opStopOrPause          = 0x08
	opSetTargetedDistance  = 0x0C
	opSetTargetedTime      = 0x0D
)

// Command is a treadmill control point write. Encode produces the
// opcode plus little-endian parameter bytes.
type Command interface {
	Encode() []byte
}

// RequestControl asks the machine to grant control to this client.
type RequestControl struct{}

// Reset returns the machine to its default state.
type Reset struct{}

// SetTargetSpeed sets belt speed in 0.01 km/h units.
type SetTargetSpeed struct {
	Speed uint16
}

// SetTargetInclination sets incline in 0.1 percent units.
type SetTargetInclination struct {
	Inclination int16
}

// StartOrResume starts the belt or resumes a paused session.
type StartOrResume struct{}

// StopOrPause stops the belt.
type StopOrPause struct{}

// SetTargetedDistance sets a distance target in meters. The wire field
// is 24 bits; the top byte of Distance is discarded.
type SetTargetedDistance struct {
	Distance uint32
}

// SetTargetedTrainingTime sets a session length target in seconds.
type SetTargetedTrainingTime struct {
	Seconds uint16
}

func (RequestControl) Encode() []byte { return []byte{opRequestControl} }
func (Reset) Encode() []byte          { return []byte{opReset} }

func (c SetTargetSpeed) Encode() []byte {
	return []byte{opSetTargetSpeed, byte(c.Speed), byte(c.Speed >> 8)}
}

func (c SetTargetInclination) Encode() []byte {
	v := uint16(c.Inclination)
	return []byte{opSetTargetInclination, byte(v), byte(v >> 8)}
}

func (StartOrResume) Encode() []byte { return []byte{opStartOrResume} }
func (StopOrPause) Encode() []byte   { return []byte{opStopOrPause} }

func (c SetTargetedDistance) Encode() []byte {
	return []byte{opSetTargetedDistance, byte(c.Distance), byte(c.Distance >> 8), byte(c.Distance >> 16)}
}

func (c SetTargetedTrainingTime) Encode() []byte {
	return []byte{opSetTargetedTime, byte(c.Seconds), byte(c.Seconds >> 8)}
}
