package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Handler services one named command. Args arrive as raw JSON (nil when
// the caller passed none); the returned value is marshaled to JSON.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Registry is the privileged side of the invoke surface: a table of
// named commands. It implements Invoker, so a Client can run
// in-process against it directly.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	log      *slog.Logger
}

// NewRegistry creates an empty command registry.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		log:      log,
	}
}

// Register adds a command handler. Registering the same name twice
// replaces the previous handler.
func (r *Registry) Register(command string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[command] = h
}

// Commands returns the registered command names, sorted.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrUnknownCommand is returned by Invoke for unregistered names.
type ErrUnknownCommand struct {
	Command string
}

func (e ErrUnknownCommand) Error() string {
	return fmt.Sprintf("unknown command %q", e.Command)
}

// Invoke runs the named command and normalizes its result to JSON.
// Handler panics are recovered into errors; nothing a handler does can
// crash the caller.
func (r *Registry) Invoke(ctx context.Context, command string, args any) (json.RawMessage, error) {
	r.mu.RLock()
	h, ok := r.handlers[command]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownCommand{Command: command}
	}

	var raw json.RawMessage
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("encoding %s args: %w", command, err)
		}
		raw = b
	}

	res := Call(ctx, func(ctx context.Context, a json.RawMessage) (any, error) {
		return h(ctx, a)
	}, raw)
	out, err := res.Value()
	if err != nil {
		r.log.Error("command failed", "command", command, "error", err)
		return nil, fmt.Errorf("%s: %w", command, err)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding %s response: %w", command, err)
	}
	return b, nil
}
