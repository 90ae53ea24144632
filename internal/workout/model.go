// Package workout loads and parses the workout catalog: JSON files
// describing interval sessions as nested run/repeat steps, flattened
// into a belt-ready step sequence with pace and duration resolved.
package workout

// Pace is a raw pace value as written in a workout file, e.g.
// {"unit": "min/mi", "value": "8:00"}.
type Pace struct {
	Unit  string `json:"unit"`
	Value string `json:"value"`
}

// Pace units accepted in workout files.
const (
	UnitMPH      = "mph"
	UnitKPH      = "kph"
	UnitMinPerMi = "min/mi"
	UnitMinPerKm = "min/km"
)

// FileStep is one raw step from a workout file. The "type" field tags
// the variant: "repeat" uses Times and Steps, "run" uses the rest.
type FileStep struct {
	Type string `json:"type"`

	Times int        `json:"times,omitempty"`
	Steps []FileStep `json:"steps,omitempty"`

	Name     string `json:"name,omitempty"`
	Duration string `json:"duration,omitempty"`
	Pace     Pace   `json:"pace,omitempty"`
	Angle    int16  `json:"angle,omitempty"`
}

// File is a raw workout file as stored on disk.
type File struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Steps       []FileStep `json:"steps"`
}

// Step is a flattened, executable workout step. Duration is seconds,
// Pace is km/h at 0.01 precision, Angle is incline in 0.1% units.
type Step struct {
	Name     string `json:"name"`
	Duration uint16 `json:"duration"`
	Distance uint16 `json:"distance"`
	Pace     uint16 `json:"pace"`
	Angle    int16  `json:"angle"`
}

// Workout is a parsed workout with repeats expanded and totals summed.
type Workout struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    uint16 `json:"duration"`
	Distance    uint16 `json:"distance"`
	Steps       []Step `json:"steps"`
}
