package store

import "testing"

// TestChangeNotification verifies that starting a workout notifies a
// registered listener exactly once and the active workout becomes readable.
func TestChangeNotification(t *testing.T) {
	s := New(nil)
	calls := 0
	s.Subscribe(func() { calls++ })

	s.Dispatch(StartWorkout{Workout: Workout{Name: "6x400"}})

	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}
	active := Select(s, func(st *State) *Workout { return st.Active })
	if active == nil || active.Name != "6x400" {
		t.Errorf("active = %v, want 6x400", active)
	}
}

// TestNoOpSuppression verifies that ending a workout when none is active
// does not notify anyone: the reducer returns the same state reference.
func TestNoOpSuppression(t *testing.T) {
	s := New(nil)
	calls := 0
	s.Subscribe(func() { calls++ })

	s.Dispatch(EndWorkout{})

	if calls != 0 {
		t.Errorf("listener calls = %d, want 0", calls)
	}
}

// TestReducerIdentityLaw verifies the reference-identity contract for
// no-op actions, which Dispatch relies on for change detection.
func TestReducerIdentityLaw(t *testing.T) {
	st := &State{listeners: make(map[int]func())}
	if got := reduce(st, EndWorkout{}); got != st {
		t.Error("EndWorkout on empty active returned a new state")
	}
	if got := reduce(st, SetBluetooth{Status: StatusOff}); got != st {
		t.Error("SetBluetooth to current status returned a new state")
	}
	if got := reduce(st, StartWorkout{Workout: Workout{Name: "w"}}); got == st {
		t.Error("StartWorkout returned the same state")
	}
}

// TestReducerDoesNotMutateInput verifies the previous state object keeps
// its semantic fields after a transition.
func TestReducerDoesNotMutateInput(t *testing.T) {
	st := &State{listeners: make(map[int]func())}
	next := reduce(st, StartWorkout{Workout: Workout{Name: "w"}})
	if st.Active != nil {
		t.Error("input state was mutated")
	}
	if next.Active == nil || next.Active.Name != "w" {
		t.Errorf("next.Active = %v, want w", next.Active)
	}
}

// TestSubscribeDoesNotNotify verifies that registering a listener fires
// no notification, including to the listener being added.
func TestSubscribeDoesNotNotify(t *testing.T) {
	s := New(nil)
	calls := 0
	s.Subscribe(func() { calls++ })
	s.Subscribe(func() {})
	if calls != 0 {
		t.Errorf("listener calls = %d, want 0", calls)
	}
}

// TestUnsubscribeStopsNotification verifies a cancelled listener is not
// invoked, and that cancelling twice is a harmless no-op.
func TestUnsubscribeStopsNotification(t *testing.T) {
	s := New(nil)
	calls := 0
	cancel := s.Subscribe(func() { calls++ })
	cancel()
	cancel()

	s.Dispatch(StartWorkout{Workout: Workout{Name: "w"}})

	if calls != 0 {
		t.Errorf("listener calls = %d, want 0", calls)
	}
	if n := len(s.State().listeners); n != 0 {
		t.Errorf("listener set size = %d, want 0", n)
	}
}

// TestEndToEndScenario walks the full session flow: seeded catalog,
// start, end, with exactly one notification per accepted transition.
func TestEndToEndScenario(t *testing.T) {
	s := New([]Workout{{Name: "6x400"}, {Name: "10x3min"}})
	calls := 0
	s.Subscribe(func() { calls++ })

	s.Dispatch(StartWorkout{Workout: Workout{Name: "10x3min"}})
	if a := s.State().Active; a == nil || a.Name != "10x3min" {
		t.Fatalf("active = %v, want 10x3min", a)
	}

	s.Dispatch(EndWorkout{})
	if a := s.State().Active; a != nil {
		t.Fatalf("active = %v, want nil", a)
	}

	if calls != 2 {
		t.Errorf("total notifications = %d, want 2", calls)
	}
}

// TestReentrantUnsubscribe verifies a listener may unsubscribe itself
// during notification without corrupting the notify pass: the snapshot
// taken before iteration keeps every listener that was registered at
// dispatch time.
func TestReentrantUnsubscribe(t *testing.T) {
	s := New(nil)
	firstCalls, secondCalls := 0, 0
	var cancel func()
	cancel = s.Subscribe(func() {
		firstCalls++
		cancel()
	})
	s.Subscribe(func() { secondCalls++ })

	s.Dispatch(StartWorkout{Workout: Workout{Name: "a"}})
	s.Dispatch(StartWorkout{Workout: Workout{Name: "b"}})

	if firstCalls != 1 {
		t.Errorf("self-removing listener calls = %d, want 1", firstCalls)
	}
	if secondCalls != 2 {
		t.Errorf("surviving listener calls = %d, want 2", secondCalls)
	}
}

// TestReentrantDispatch verifies a listener may dispatch from inside a
// notification without deadlocking (the store lock is not held while
// listeners run).
func TestReentrantDispatch(t *testing.T) {
	s := New(nil)
	s.Subscribe(func() {
		if s.State().Bluetooth == StatusOff {
			s.Dispatch(SetBluetooth{Status: StatusScanning})
		}
	})

	s.Dispatch(StartWorkout{Workout: Workout{Name: "w"}})

	if got := s.State().Bluetooth; got != StatusScanning {
		t.Errorf("bluetooth = %v, want scanning", got)
	}
}

// TestWatchFiresOnDerivedChangeOnly verifies the selector watch: it must
// fire when the derived value changes and stay silent when a state
// transition leaves the derived value untouched.
func TestWatchFiresOnDerivedChangeOnly(t *testing.T) {
	s := New(nil)
	var seen []string
	Watch(s, func(st *State) string {
		if st.Active == nil {
			return ""
		}
		return st.Active.Name
	}, func(name string) { seen = append(seen, name) })

	s.Dispatch(SetBluetooth{Status: StatusScanning}) // active name unchanged
	s.Dispatch(StartWorkout{Workout: Workout{Name: "6x400"}})
	s.Dispatch(SetBluetooth{Status: StatusConnected}) // still unchanged
	s.Dispatch(EndWorkout{})

	want := []string{"6x400", ""}
	if len(seen) != len(want) {
		t.Fatalf("onChange fired %d times (%v), want %d", len(seen), seen, len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("onChange[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}

// TestWatchCancel verifies a cancelled watch stops observing.
func TestWatchCancel(t *testing.T) {
	s := New(nil)
	fired := 0
	cancel := Watch(s, func(st *State) Status { return st.Bluetooth }, func(Status) { fired++ })
	cancel()

	s.Dispatch(SetBluetooth{Status: StatusConnected})

	if fired != 0 {
		t.Errorf("onChange fired %d times after cancel, want 0", fired)
	}
}

// TestStartWorkoutOutsideCatalog confirms the catalog is display-only:
// starting a workout that is not listed is permitted.
func TestStartWorkoutOutsideCatalog(t *testing.T) {
	s := New([]Workout{{Name: "listed"}})
	s.Dispatch(StartWorkout{Workout: Workout{Name: "unlisted"}})
	if a := s.State().Active; a == nil || a.Name != "unlisted" {
		t.Errorf("active = %v, want unlisted", a)
	}
}
