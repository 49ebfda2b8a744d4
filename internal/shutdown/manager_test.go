package shutdown

import (
	"testing"
)

func TestExecuteRunsInReverseOrder(t *testing.T) {
	m := New()
	defer m.Stop()

	var order []string
	m.Register("first", func() { order = append(order, "first") })
	m.Register("second", func() { order = append(order, "second") })
	m.Register("third", func() { order = append(order, "third") })

	m.Execute()

	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestExecuteIsAtMostOnce(t *testing.T) {
	m := New()
	defer m.Stop()

	calls := 0
	m.Register("only", func() { calls++ })

	m.Execute()
	m.Execute()
	m.Execute()

	if calls != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls)
	}
}

func TestExecuteRecoversPanickingCallback(t *testing.T) {
	m := New()
	defer m.Stop()

	ranAfter := false
	m.Register("after", func() { ranAfter = true })
	m.Register("panics", func() { panic("boom") })

	m.Execute()

	if !ranAfter {
		t.Fatal("expected callback registered before the panicking one to still run")
	}
}

func TestRegisterAfterExecuteDoesNotRun(t *testing.T) {
	m := New()
	defer m.Stop()

	m.Execute()

	called := false
	m.Register("late", func() { called = true })
	m.Execute()

	if called {
		t.Fatal("callback registered after Execute should never run")
	}
}
