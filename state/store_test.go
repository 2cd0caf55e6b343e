package state

import (
	"sync"
	"testing"
)

func TestGetReturnsInitialValue(t *testing.T) {
	s := NewStore(42)
	if s.Get() != 42 {
		t.Errorf("expected 42, got %d", s.Get())
	}
}

func TestSetUpdatesAndNotifies(t *testing.T) {
	s := NewStore(0)
	var seen []int
	s.Subscribe(func(v int) { seen = append(seen, v) })

	s.Set(1)
	s.Set(2)
	s.Set(3)

	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Errorf("seen = %v, want [1 2 3]", seen)
	}
	if s.Get() != 3 {
		t.Errorf("Get = %d, want 3", s.Get())
	}
}

func TestEqualWritesStillNotify(t *testing.T) {
	// No equality dedup: every write is a notification pass.
	s := NewStore(7)
	runs := 0
	s.Subscribe(func(int) { runs++ })

	s.Set(7)
	s.Set(7)

	if runs != 2 {
		t.Errorf("expected 2 notifications, got %d", runs)
	}
}

func TestUpdateUsesPreviousValue(t *testing.T) {
	s := NewStore(10)
	s.Update(func(prev int) int { return prev + 5 })
	if s.Get() != 15 {
		t.Errorf("expected 15, got %d", s.Get())
	}
}

func TestNotificationOrderFollowsSubscriptionOrder(t *testing.T) {
	s := NewStore(0)
	var order []string
	s.Subscribe(func(int) { order = append(order, "first") })
	s.Subscribe(func(int) { order = append(order, "second") })
	s.Subscribe(func(int) { order = append(order, "third") })

	s.Set(1)

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("order = %v", order)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	s := NewStore(0)
	aRuns, bRuns := 0, 0
	unsubA := s.Subscribe(func(int) { aRuns++ })
	s.Subscribe(func(int) { bRuns++ })

	unsubA()
	unsubA() // second call must not touch other subscribers

	s.Set(1)

	if aRuns != 0 {
		t.Errorf("unsubscribed listener ran %d times", aRuns)
	}
	if bRuns != 1 {
		t.Errorf("remaining listener ran %d times, want 1", bRuns)
	}
}

func TestSubscribeDuringNotificationSkipsCurrentPass(t *testing.T) {
	s := NewStore(0)
	lateRuns := 0
	s.Subscribe(func(int) {
		s.Subscribe(func(int) { lateRuns++ })
	})

	s.Set(1)
	if lateRuns != 0 {
		t.Errorf("listener added mid-pass ran %d times in that pass", lateRuns)
	}

	s.Set(2)
	if lateRuns != 1 {
		t.Errorf("listener added mid-pass ran %d times in next pass, want 1", lateRuns)
	}
}

func TestUnsubscribeDuringNotificationSkipsLaterListener(t *testing.T) {
	s := NewStore(0)
	runs := 0
	var unsubB func()
	s.Subscribe(func(int) { unsubB() })
	unsubB = s.Subscribe(func(int) { runs++ })

	s.Set(1)

	if runs != 0 {
		t.Errorf("listener unsubscribed mid-pass still ran %d times", runs)
	}
}

func TestListenerSeesValueAtNotificationTime(t *testing.T) {
	s := NewStore("")
	var got string
	s.Subscribe(func(v string) { got = v })
	s.Set("hello")
	if got != "hello" {
		t.Errorf("listener saw %q", got)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	s := NewStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(prev int) int { return prev + 1 })
		}()
	}
	wg.Wait()
	if s.Get() != 50 {
		t.Errorf("expected 50 after concurrent updates, got %d", s.Get())
	}
}

func TestWorksWithStructValues(t *testing.T) {
	type point struct{ X, Y int }
	s := NewStore(point{X: 1})
	s.Update(func(p point) point {
		p.Y = 2
		return p
	})
	v := s.Get()
	if v.X != 1 || v.Y != 2 {
		t.Errorf("got %+v", v)
	}
}
