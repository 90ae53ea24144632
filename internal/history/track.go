package history

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/claude/stride/internal/store"
)

// Track watches the store's active workout and records session starts
// and ends as they happen. Returns a cancel function that stops
// tracking; an open session at cancel time stays open.
func Track(st *store.Store, db *DB, log *slog.Logger) func() {
	// Store listeners run on the dispatching goroutine, and dispatches
	// can come from concurrent requests.
	var mu sync.Mutex
	var open uuid.UUID

	return store.Watch(st, func(s *store.State) string {
		if s.Active == nil {
			return ""
		}
		return s.Active.Name
	}, func(name string) {
		mu.Lock()
		defer mu.Unlock()
		ctx := context.Background()

		if open != uuid.Nil {
			if err := db.RecordEnd(ctx, open); err != nil {
				log.Error("recording session end", "error", err)
			}
			open = uuid.Nil
		}
		if name == "" {
			return
		}

		id, err := db.RecordStart(ctx, name)
		if err != nil {
			log.Error("recording session start", "workout", name, "error", err)
			return
		}
		open = id
	})
}
