package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8090
workouts:
  dir: "/var/lib/stride/workouts"
treadmill:
  device: "HORIZON_7.0AT"
  scan_window: 3s
history:
  dir: "/var/lib/stride/data"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all
// fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("server.port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Workouts.Dir != "/var/lib/stride/workouts" {
		t.Errorf("workouts.dir = %q", cfg.Workouts.Dir)
	}
	if cfg.Treadmill.Device != "HORIZON_7.0AT" {
		t.Errorf("treadmill.device = %q", cfg.Treadmill.Device)
	}
	if cfg.Treadmill.ScanWindow != Duration(3*time.Second) {
		t.Errorf("treadmill.scan_window = %v, want 3s", cfg.Treadmill.ScanWindow)
	}
}

// TestEnvOverride verifies that STRIDE_ env vars take precedence over
// YAML values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("STRIDE_SERVER_PORT", "9999")
	t.Setenv("STRIDE_TREADMILL_DEVICE", "OTHER_MILL")
	t.Setenv("STRIDE_TREADMILL_SIMULATE", "true")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Treadmill.Device != "OTHER_MILL" {
		t.Errorf("treadmill.device = %q, want OTHER_MILL", cfg.Treadmill.Device)
	}
	if !cfg.Treadmill.Simulate {
		t.Error("treadmill.simulate = false, want true")
	}
	// Unchanged fields should keep YAML values
	if cfg.Workouts.Dir != "/var/lib/stride/workouts" {
		t.Errorf("workouts.dir = %q", cfg.Workouts.Dir)
	}
}

// TestDefaults verifies optional fields fall back to sensible values.
func TestDefaults(t *testing.T) {
	yaml := `
server:
  port: 8090
workouts:
  dir: "workouts"
treadmill:
  simulate: true
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Treadmill.ScanWindow != Duration(2*time.Second) {
		t.Errorf("treadmill.scan_window = %v, want 2s", cfg.Treadmill.ScanWindow)
	}
	if cfg.History.Dir != "data" {
		t.Errorf("history.dir = %q, want data", cfg.History.Dir)
	}
}

// TestValidationMissingWorkoutsDir verifies missing required fields
// produce a clear error.
func TestValidationMissingWorkoutsDir(t *testing.T) {
	yaml := `
server:
  port: 8090
treadmill:
  simulate: true
`
	if _, err := Load(writeTemp(t, yaml)); err == nil {
		t.Fatal("expected validation error for missing workouts.dir")
	}
}

// TestValidationDeviceRequiredWithoutSimulate verifies the device name
// is mandatory when real hardware is in play.
func TestValidationDeviceRequiredWithoutSimulate(t *testing.T) {
	yaml := `
server:
  port: 8090
workouts:
  dir: "workouts"
`
	if _, err := Load(writeTemp(t, yaml)); err == nil {
		t.Fatal("expected validation error for missing treadmill.device")
	}
}

// TestLoadMissingFile verifies a clear error for a nonexistent path.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
