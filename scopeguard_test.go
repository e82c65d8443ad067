package tasks_test

import (
	"testing"

	"github.com/loopkit/tasks"
)

func TestScopeGuardRunsOnExecute(t *testing.T) {
	ran := 0
	g := tasks.MakeScopeGuard(func() { ran++ })
	g.Execute()
	g.Execute()
	if ran != 1 {
		t.Fatalf("got %d runs, want exactly 1", ran)
	}
	if g.IsBound() {
		t.Fatalf("guard should report unbound after running")
	}
}

func TestScopeGuardForgetSuppressesExecution(t *testing.T) {
	ran := false
	g := tasks.MakeScopeGuard(func() { ran = true })
	g.Forget()
	g.Execute()
	if ran {
		t.Fatalf("forgotten guard should never run")
	}
}

func TestScopeGuardClosedByDeferOnPanic(t *testing.T) {
	ran := false
	func() {
		defer func() { recover() }()
		g := tasks.MakeScopeGuard(func() { ran = true })
		defer g.Close()
		panic("boom")
	}()
	if !ran {
		t.Fatalf("expected the guard to run while unwinding a panic")
	}
}
