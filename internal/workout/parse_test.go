package workout

import (
	"strings"
	"testing"
)

// TestParsePaceMinPerMi verifies the min/mi conversion to km/h at 0.01
// precision: an 8:00 mile is 12.07 km/h.
func TestParsePaceMinPerMi(t *testing.T) {
	got, err := ParsePace(Pace{Unit: UnitMinPerMi, Value: "8:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1207 {
		t.Errorf("pace = %d, want 1207", got)
	}
}

// TestParsePaceOtherUnits verifies min/km, mph and kph conversions.
func TestParsePaceOtherUnits(t *testing.T) {
	cases := []struct {
		pace Pace
		want uint16
	}{
		{Pace{Unit: UnitMinPerKm, Value: "5:00"}, 1200},
		{Pace{Unit: UnitMPH, Value: "6.0"}, 965},
		{Pace{Unit: UnitKPH, Value: "10.5"}, 1050},
	}
	for _, tc := range cases {
		got, err := ParsePace(tc.pace)
		if err != nil {
			t.Errorf("%s %s: unexpected error: %v", tc.pace.Unit, tc.pace.Value, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s %s: pace = %d, want %d", tc.pace.Unit, tc.pace.Value, got, tc.want)
		}
	}
}

// TestParsePaceInvalid verifies bad units and malformed values error out
// instead of silently producing a zero pace.
func TestParsePaceInvalid(t *testing.T) {
	cases := []Pace{
		{Unit: "furlongs/fortnight", Value: "1"},
		{Unit: UnitMinPerMi, Value: "fast"},
		{Unit: UnitMinPerMi, Value: "8:75"},
		{Unit: UnitMPH, Value: "quick"},
		{Unit: UnitMinPerKm, Value: "0:00"},
	}
	for _, p := range cases {
		if _, err := ParsePace(p); err == nil {
			t.Errorf("ParsePace(%v): expected error", p)
		}
	}
}

// TestParseClock verifies "m:ss" parsing including bare minutes.
func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want uint16
	}{
		{"3:00", 180},
		{"0:45", 45},
		{"12:30", 750},
		{"2", 120},
	}
	for _, tc := range cases {
		got, err := parseClock(tc.in)
		if err != nil {
			t.Errorf("parseClock(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	if _, err := parseClock("1:2:3"); err == nil {
		t.Error("parseClock(1:2:3): expected error")
	}
}

// TestParseFlattensRepeats verifies repeat expansion and the summed
// totals: a 6x400-style session becomes a flat alternating sequence.
func TestParseFlattensRepeats(t *testing.T) {
	f := File{
		Name:        "6x400",
		Description: "Track intervals",
		Steps: []FileStep{
			{
				Type:  "repeat",
				Times: 6,
				Steps: []FileStep{
					{Type: "run", Name: "Interval", Duration: "1:30", Pace: Pace{Unit: UnitMinPerMi, Value: "6:00"}, Angle: 0},
					{Type: "run", Name: "Recovery", Duration: "2:00", Pace: Pace{Unit: UnitMinPerMi, Value: "10:00"}, Angle: 0},
				},
			},
		},
	}

	w, err := Parse(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Steps) != 12 {
		t.Fatalf("steps = %d, want 12", len(w.Steps))
	}
	if w.Steps[0].Name != "Interval" || w.Steps[1].Name != "Recovery" || w.Steps[2].Name != "Interval" {
		t.Errorf("step order wrong: %s, %s, %s", w.Steps[0].Name, w.Steps[1].Name, w.Steps[2].Name)
	}
	if w.Duration != 6*(90+120) {
		t.Errorf("duration = %d, want %d", w.Duration, 6*(90+120))
	}

	var dist uint16
	for _, s := range w.Steps {
		dist += s.Distance
	}
	if w.Distance != dist {
		t.Errorf("distance total = %d, want sum of steps %d", w.Distance, dist)
	}
}

// TestParseNestedRepeats verifies repeats inside repeats multiply out.
func TestParseNestedRepeats(t *testing.T) {
	f := File{
		Name: "ladder",
		Steps: []FileStep{
			{
				Type:  "repeat",
				Times: 2,
				Steps: []FileStep{
					{
						Type:  "repeat",
						Times: 3,
						Steps: []FileStep{
							{Type: "run", Name: "rep", Duration: "1:00", Pace: Pace{Unit: UnitKPH, Value: "12"}},
						},
					},
				},
			},
		},
	}
	w, err := Parse(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Steps) != 6 {
		t.Errorf("steps = %d, want 6", len(w.Steps))
	}
}

// TestParseRejectsUnknownStepType verifies the tagged union is closed.
func TestParseRejectsUnknownStepType(t *testing.T) {
	f := File{Name: "bad", Steps: []FileStep{{Type: "swim"}}}
	_, err := Parse(f)
	if err == nil || !strings.Contains(err.Error(), "unknown step type") {
		t.Errorf("error = %v, want unknown step type", err)
	}
}

// TestParseRejectsNonPositiveRepeat verifies a zero/negative repeat
// count is a file error, not an empty expansion.
func TestParseRejectsNonPositiveRepeat(t *testing.T) {
	f := File{Name: "bad", Steps: []FileStep{{Type: "repeat", Times: 0}}}
	if _, err := Parse(f); err == nil {
		t.Error("expected error for times=0")
	}
}
