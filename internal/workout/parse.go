package workout

import (
	"fmt"
	"strconv"
	"strings"
)

const kmPerMile = 1.60934

// ParsePace converts a raw pace to km/h at 0.01 precision. Time-based
// units use "m:ss" values; speed-based units use a decimal number.
func ParsePace(p Pace) (uint16, error) {
	switch p.Unit {
	case UnitMinPerMi:
		sec, err := parseClock(p.Value)
		if err != nil {
			return 0, fmt.Errorf("pace %q: %w", p.Value, err)
		}
		if sec == 0 {
			return 0, fmt.Errorf("pace %q: zero duration", p.Value)
		}
		kmh := 1 / float64(sec) * 3600 * kmPerMile
		return uint16(kmh * 100), nil
	case UnitMinPerKm:
		sec, err := parseClock(p.Value)
		if err != nil {
			return 0, fmt.Errorf("pace %q: %w", p.Value, err)
		}
		if sec == 0 {
			return 0, fmt.Errorf("pace %q: zero duration", p.Value)
		}
		kmh := 3600 / float64(sec)
		return uint16(kmh * 100), nil
	case UnitMPH:
		mph, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("pace %q: %w", p.Value, err)
		}
		return uint16(mph * kmPerMile * 100), nil
	case UnitKPH:
		kph, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("pace %q: %w", p.Value, err)
		}
		return uint16(kph * 100), nil
	default:
		return 0, fmt.Errorf("unknown pace unit %q", p.Unit)
	}
}

// parseClock parses "m:ss" (or a bare minute count) into seconds.
func parseClock(s string) (uint16, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		return 0, fmt.Errorf("malformed clock value %q", s)
	}
	minutes, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("malformed clock value %q", s)
	}
	var seconds uint64
	if len(parts) == 2 {
		seconds, err = strconv.ParseUint(parts[1], 10, 16)
		if err != nil || seconds >= 60 {
			return 0, fmt.Errorf("malformed clock value %q", s)
		}
	}
	return uint16(minutes*60 + seconds), nil
}

// flattenStep expands one raw step into executable steps. Repeats are
// expanded eagerly: the body is parsed once and appended `times` over.
func flattenStep(raw FileStep) ([]Step, error) {
	switch raw.Type {
	case "repeat":
		if raw.Times <= 0 {
			return nil, fmt.Errorf("repeat step: times must be positive, got %d", raw.Times)
		}
		var body []Step
		for _, inner := range raw.Steps {
			steps, err := flattenStep(inner)
			if err != nil {
				return nil, err
			}
			body = append(body, steps...)
		}
		result := make([]Step, 0, len(body)*raw.Times)
		for range raw.Times {
			result = append(result, body...)
		}
		return result, nil
	case "run":
		pace, err := ParsePace(raw.Pace)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", raw.Name, err)
		}
		duration, err := parseClock(raw.Duration)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", raw.Name, err)
		}
		distance := uint16(float32(pace) * float32(duration) / 1000)
		return []Step{{
			Name:     raw.Name,
			Duration: duration,
			Distance: distance,
			Pace:     pace,
			Angle:    raw.Angle,
		}}, nil
	default:
		return nil, fmt.Errorf("unknown step type %q", raw.Type)
	}
}

// Parse expands a raw workout file into its executable form with
// per-workout duration and distance totals.
func Parse(f File) (*Workout, error) {
	var steps []Step
	for _, raw := range f.Steps {
		flat, err := flattenStep(raw)
		if err != nil {
			return nil, fmt.Errorf("workout %q: %w", f.Name, err)
		}
		steps = append(steps, flat...)
	}

	var duration, distance uint16
	for _, s := range steps {
		duration += s.Duration
		distance += s.Distance
	}

	return &Workout{
		Name:        f.Name,
		Description: f.Description,
		Duration:    duration,
		Distance:    distance,
		Steps:       steps,
	}, nil
}
