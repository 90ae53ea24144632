// Package store holds the application state for a workout session and
// notifies subscribers when it changes. State is replaced wholesale on
// every accepted action, so pointer identity is a reliable change signal.
package store

import "sync"

// Status is the Bluetooth connection state, tracked independently of the
// workout session.
type Status int

const (
	StatusOff Status = iota
	StatusScanning
	StatusConnected
)

// String returns the status name used in logs and API responses.
func (s Status) String() string {
	switch s {
	case StatusScanning:
		return "scanning"
	case StatusConnected:
		return "connected"
	default:
		return "off"
	}
}

// Workout is a selectable catalog entry. Its name is its identity.
type Workout struct {
	Name string `json:"name"`
}

// State is the single source of truth. It is immutable once published:
// the reducer either returns its input unchanged or a fresh State with
// the affected fields replaced, never a mutation of the old one.
type State struct {
	Workouts  []Workout
	Active    *Workout
	Bluetooth Status

	// listeners is bookkeeping, not semantic state: the reducer mutates
	// it in place and returns the same State pointer, so subscription
	// changes never trigger notification.
	listeners map[int]func()
}

// Action is the closed set of state transitions. Constructing an
// unknown action is a compile-time impossibility for callers.
type Action interface {
	isAction()
}

// StartWorkout sets the active session to the given workout.
type StartWorkout struct {
	Workout Workout
}

// EndWorkout clears the active session.
type EndWorkout struct{}

// SetWorkouts replaces the catalog, preserving the given display order.
type SetWorkouts struct {
	Workouts []Workout
}

// SetBluetooth records the hardware connection status.
type SetBluetooth struct {
	Status Status
}

type addListener struct {
	id int
	fn func()
}

type removeListener struct {
	id int
}

func (StartWorkout) isAction()   {}
func (EndWorkout) isAction()     {}
func (SetWorkouts) isAction()    {}
func (SetBluetooth) isAction()   {}
func (addListener) isAction()    {}
func (removeListener) isAction() {}

// reduce maps (state, action) to the next state. It returns the same
// pointer when the action changes nothing semantically, which Dispatch
// uses to suppress notification.
func reduce(s *State, a Action) *State {
	switch a := a.(type) {
	case StartWorkout:
		w := a.Workout
		next := *s
		next.Active = &w
		return &next
	case EndWorkout:
		if s.Active == nil {
			return s
		}
		next := *s
		next.Active = nil
		return &next
	case SetWorkouts:
		next := *s
		next.Workouts = a.Workouts
		return &next
	case SetBluetooth:
		if s.Bluetooth == a.Status {
			return s
		}
		next := *s
		next.Bluetooth = a.Status
		return &next
	case addListener:
		s.listeners[a.id] = a.fn
		return s
	case removeListener:
		delete(s.listeners, a.id)
		return s
	}
	return s
}

// Store owns the current State and its transition and notification
// logic. Construct one per process (or per test) with New; there is no
// package-level instance.
type Store struct {
	mu     sync.Mutex
	state  *State
	nextID int
}

// New creates a store seeded with the given workout catalog, no active
// session, and Bluetooth off.
func New(workouts []Workout) *Store {
	return &Store{
		state: &State{
			Workouts:  workouts,
			Bluetooth: StatusOff,
			listeners: make(map[int]func()),
		},
	}
}

// State returns the current state. The returned value must be treated
// as read-only; transitions go through Dispatch.
func (s *Store) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies an action. If the reducer returns a new state, every
// registered listener is invoked synchronously, no arguments, in
// unspecified order. Listeners run outside the store lock, so a
// listener may itself dispatch, subscribe, or unsubscribe.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	next := reduce(s.state, a)
	if next == s.state {
		s.mu.Unlock()
		return
	}
	s.state = next

	// Snapshot before notifying so listener add/remove during the
	// notify pass cannot corrupt iteration.
	fns := make([]func(), 0, len(next.listeners))
	for _, fn := range next.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribe registers a listener and returns its cancel function.
// Registering fires no notification (listener bookkeeping keeps the
// state pointer unchanged), and calling cancel more than once is a
// harmless no-op.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	s.Dispatch(addListener{id: id, fn: fn})
	return func() {
		s.Dispatch(removeListener{id: id})
	}
}

// Select reads a derived slice of the current state. The selector must
// be pure: no side effects, no captured mutable context.
func Select[T any](s *Store, sel func(*State) T) T {
	return sel(s.State())
}

// Watch subscribes to the store and invokes onChange with the selected
// value whenever it differs from the previously selected one. The
// initial value is captured at registration and does not fire onChange.
// Returns a cancel function.
func Watch[T comparable](s *Store, sel func(*State) T, onChange func(T)) func() {
	// Listeners run on whichever goroutine dispatched, so the previous
	// value needs its own guard.
	var mu sync.Mutex
	last := Select(s, sel)
	return s.Subscribe(func() {
		cur := Select(s, sel)
		mu.Lock()
		changed := cur != last
		if changed {
			last = cur
		}
		mu.Unlock()
		if changed {
			onChange(cur)
		}
	})
}
