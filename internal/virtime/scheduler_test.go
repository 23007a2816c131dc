package virtime

import "testing"

func TestRunOrdersByTimeThenSequence(t *testing.T) {
	s := NewScheduler()
	var order []string

	s.Schedule(10, func() { order = append(order, "b@10") })
	s.Schedule(5, func() { order = append(order, "a@5") })
	s.Schedule(10, func() { order = append(order, "c@10-second") })
	s.Schedule(0, func() { order = append(order, "z@0") })

	s.Run(100)

	want := []string{"z@0", "a@5", "b@10", "c@10-second"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("at %d: got %q want %q (full: %v)", i, order[i], want[i], order)
		}
	}
}

func TestRunStopsAtUntil(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.Schedule(5, func() { fired++ })
	s.Schedule(15, func() { fired++ })
	s.Run(10)
	if fired != 1 {
		t.Fatalf("expected exactly 1 event to fire before until=10, got %d", fired)
	}
	if s.Now() != 5 {
		t.Fatalf("now should sit at the last dispatched event's time, got %v", s.Now())
	}
}

func TestRunNeverDispatchesAtOrAfterUntil(t *testing.T) {
	s := NewScheduler()
	fired := false
	s.Schedule(10, func() { fired = true })
	s.Run(10) // until is exclusive: time >= until must not fire
	if fired {
		t.Fatal("event scheduled exactly at until must not fire")
	}
}

func TestScheduleNegativeDelayPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on negative delay")
		}
	}()
	NewScheduler().Schedule(-1, func() {})
}

func TestCancelSkipsEvent(t *testing.T) {
	s := NewScheduler()
	fired := false
	ev := s.Schedule(5, func() { fired = true })
	ev.Cancel()
	s.Schedule(6, func() {})
	s.Run(100)
	if fired {
		t.Fatal("cancelled event must not fire")
	}
}

func TestOnStepHookRunsAfterEachEvent(t *testing.T) {
	s := NewScheduler()
	steps := 0
	s.OnStep(func() { steps++ })
	s.Schedule(1, func() {})
	s.Schedule(2, func() {})
	s.Schedule(3, func() {})
	s.Run(100)
	if steps != 3 {
		t.Fatalf("expected 3 OnStep invocations, got %d", steps)
	}
}
