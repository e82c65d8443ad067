package tasks_test

import (
	"testing"

	"github.com/loopkit/tasks"
)

func TestManagerUpdateResumesInInsertionOrder(t *testing.T) {
	m := tasks.NewTaskManager()
	var order []string

	a := tasks.New(func(ctl *tasks.Control) (struct{}, error) {
		order = append(order, "a")
		ctl.Yield()
		order = append(order, "a2")
		return struct{}{}, nil
	})
	b := tasks.New(func(ctl *tasks.Control) (struct{}, error) {
		order = append(order, "b")
		ctl.Yield()
		order = append(order, "b2")
		return struct{}{}, nil
	})

	tasks.Run(m, &a)
	tasks.Run(m, &b)

	m.Update()
	m.Update()

	want := []string{"a", "b", "a2", "b2"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestManagerUpdateDropsFinishedTasksWithoutDisturbingOrder(t *testing.T) {
	m := tasks.NewTaskManager()
	var order []string

	fast := tasks.New(func(ctl *tasks.Control) (struct{}, error) {
		order = append(order, "fast")
		return struct{}{}, nil
	})
	slow := tasks.New(func(ctl *tasks.Control) (struct{}, error) {
		order = append(order, "slow-1")
		ctl.Yield()
		order = append(order, "slow-2")
		return struct{}{}, nil
	})

	tasks.Run(m, &fast)
	tasks.Run(m, &slow)

	m.Update()
	m.Update()

	want := []string{"fast", "slow-1", "slow-2"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestRunManagedKeepsTaskAliveWithoutCallerHandle(t *testing.T) {
	m := tasks.NewTaskManager()
	cleaned := false

	task := tasks.New(func(ctl *tasks.Control) (struct{}, error) {
		defer func() { cleaned = true }()
		ctl.Yield()
		return struct{}{}, nil
	})
	weak := tasks.RunManaged(m, &task)

	m.Update()
	if cleaned {
		t.Fatalf("should not be cleaned up yet")
	}
	m.Update()
	if !cleaned {
		t.Fatalf("expected the managed task to run to completion")
	}
	if !weak.IsDone() {
		t.Fatalf("caller's weak view should observe completion")
	}
}

func TestKillAllStopsEveryTrackedTask(t *testing.T) {
	m := tasks.NewTaskManager()
	cleanedA, cleanedB := false, false

	a := tasks.New(func(ctl *tasks.Control) (struct{}, error) {
		defer func() { cleanedA = true }()
		ctl.Yield()
		return struct{}{}, nil
	})
	b := tasks.New(func(ctl *tasks.Control) (struct{}, error) {
		defer func() { cleanedB = true }()
		ctl.Yield()
		return struct{}{}, nil
	})
	tasks.Run(m, &a)
	tasks.Run(m, &b)
	m.Update()

	m.KillAll()
	if !cleanedA || !cleanedB {
		t.Fatalf("expected both tasks to be killed")
	}
}

func TestStopAllCompletesOnceEveryTrackedTaskFinishes(t *testing.T) {
	m := tasks.NewTaskManager()
	stopSeen := false

	cooperative := tasks.New(func(ctl *tasks.Control) (struct{}, error) {
		ctl.AwaitUntil(ctl.IsStopRequested)
		stopSeen = true
		return struct{}{}, nil
	})
	tasks.Run(m, &cooperative)
	m.Update()

	fence := m.StopAll()
	if fence.Resume() != tasks.StatusSuspended {
		t.Fatalf("fence should not complete before Update drives the stopped task")
	}
	m.Update()
	if fence.Resume() != tasks.StatusDone {
		t.Fatalf("fence should complete once the tracked task finishes")
	}
	if !stopSeen {
		t.Fatalf("expected the cooperative task to observe the stop request")
	}
}
