package workout

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// Catalog holds the workout files from one directory. Load replaces the
// whole catalog; readers get consistent snapshots.
type Catalog struct {
	dir string
	log *slog.Logger

	mu       sync.RWMutex
	names    []string
	workouts []Workout
}

// NewCatalog creates a catalog over dir. Call Load before first use.
func NewCatalog(dir string, log *slog.Logger) *Catalog {
	return &Catalog{dir: dir, log: log}
}

// Load reads every .json file in the catalog directory. ReadDir returns
// entries sorted by file name, which is the display order. A file that
// fails to parse fails the whole load; a catalog with a broken file is
// a configuration error, not a partial state.
func (c *Catalog) Load() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading workouts directory: %w", err)
	}

	var names []string
	var workouts []Workout
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			return fmt.Errorf("reading workout file %s: %w", e.Name(), err)
		}
		var f File
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("parsing workout file %s: %w", e.Name(), err)
		}
		w, err := Parse(f)
		if err != nil {
			return fmt.Errorf("workout file %s: %w", e.Name(), err)
		}
		names = append(names, e.Name())
		workouts = append(workouts, *w)
	}

	c.mu.Lock()
	c.names = names
	c.workouts = workouts
	c.mu.Unlock()

	c.log.Info("workout catalog loaded", "dir", c.dir, "count", len(workouts))
	return nil
}

// Names returns the catalog file names in display order. This is the
// read_workouts payload.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.names...)
}

// Workouts returns the parsed workouts.
func (c *Catalog) Workouts() []Workout {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Workout(nil), c.workouts...)
}

// Get looks up a workout by its name (the name inside the file, not the
// file name). On a miss the error suggests the closest catalog entry by
// edit distance, which keeps fat-fingered tool and CLI calls debuggable.
func (c *Catalog) Get(name string) (*Workout, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	best := ""
	bestDist := -1
	for i := range c.workouts {
		w := &c.workouts[i]
		if w.Name == name {
			out := *w
			return &out, nil
		}
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(w.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = w.Name, d
		}
	}

	if best != "" {
		return nil, fmt.Errorf("unknown workout %q (closest match: %q)", name, best)
	}
	return nil, fmt.Errorf("unknown workout %q (catalog is empty)", name)
}
