package workout

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const tempoJSON = `{
	"name": "Tempo 20",
	"description": "Steady tempo run",
	"steps": [
		{"type": "run", "name": "Tempo", "duration": "20:00", "pace": {"unit": "min/mi", "value": "7:30"}, "angle": 0}
	]
}`

const intervalsJSON = `{
	"name": "10x3min",
	"description": "Three minute repeats",
	"steps": [
		{"type": "repeat", "times": 10, "steps": [
			{"type": "run", "name": "On", "duration": "3:00", "pace": {"unit": "min/mi", "value": "6:30"}, "angle": 10},
			{"type": "run", "name": "Off", "duration": "1:00", "pace": {"unit": "min/mi", "value": "10:00"}, "angle": 0}
		]}
	]
}`

func writeCatalog(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// TestCatalogLoad verifies files load sorted by file name and parse into
// workouts with their repeats expanded.
func TestCatalogLoad(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"tempo.json":     tempoJSON,
		"intervals.json": intervalsJSON,
		"notes.txt":      "ignored",
	})
	c := NewCatalog(dir, testLogger())
	if err := c.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := c.Names(); !reflect.DeepEqual(got, []string{"intervals.json", "tempo.json"}) {
		t.Errorf("names = %v, want [intervals.json tempo.json]", got)
	}

	ws := c.Workouts()
	if len(ws) != 2 {
		t.Fatalf("workouts = %d, want 2", len(ws))
	}
}

// TestCatalogLoadRejectsBrokenFile verifies a malformed file fails the
// load rather than producing a partial catalog.
func TestCatalogLoadRejectsBrokenFile(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"ok.json":     tempoJSON,
		"broken.json": `{"name": "x", "steps": [{"type": "swim"}]}`,
	})
	c := NewCatalog(dir, testLogger())
	if err := c.Load(); err == nil {
		t.Fatal("expected error for broken workout file")
	}
}

// TestCatalogGet verifies exact lookup and the closest-match suggestion
// on a miss.
func TestCatalogGet(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"tempo.json":     tempoJSON,
		"intervals.json": intervalsJSON,
	})
	c := NewCatalog(dir, testLogger())
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}

	w, err := c.Get("10x3min")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Steps) != 20 {
		t.Errorf("steps = %d, want 20", len(w.Steps))
	}

	_, err = c.Get("10x3mins")
	if err == nil || !strings.Contains(err.Error(), `"10x3min"`) {
		t.Errorf("error = %v, want closest-match suggestion 10x3min", err)
	}
}

// TestCatalogGetEmpty verifies the empty-catalog miss has no suggestion.
func TestCatalogGetEmpty(t *testing.T) {
	c := NewCatalog(t.TempDir(), testLogger())
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get("anything"); err == nil {
		t.Error("expected error on empty catalog")
	}
}
