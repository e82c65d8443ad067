// Package tasks implements a cooperative, single-threaded coroutine
// runtime for interactive applications: suspendable, composable,
// reference-counted tasks driven by a host loop one tick at a time.
//
// A task is created with New, which takes a coroutine body and returns a
// strong, resumable Task[T] handle:
//
//	t := tasks.New(func(ctl *tasks.Control) (int, error) {
//		ctl.AwaitUntil(func() bool { return someCondition() })
//		return 42, nil
//	})
//
// The body runs on its own goroutine, parked on a channel handoff between
// calls to Resume; it suspends wherever it awaits something not yet ready
// and resumes from that exact point on the next Resume that finds it so.
// Only one resumable handle exists per task at a time; converting a
// handle to a less capable variant consumes it rather than duplicating
// it: Weaken passes resumability on to the new weak handle, Handle gives
// it up.
//
// Most programs hand tasks to a TaskManager rather than resuming them
// directly, and build larger tasks out of the composite helpers
// (WaitForAny, WaitForAll, Select, CancelIf, Timeout, WaitSeconds, and so
// on) and, for explicit state machines, TaskFSM.
package tasks
