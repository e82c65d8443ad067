package tasks

// Control is handed to every coroutine body; it is the only way a body can
// suspend itself or interact with the task machinery around it. A Control
// is only ever valid for calls made from the goroutine running its own
// body — calling it from any other goroutine is a misuse of the runtime.
type Control struct {
	it *internalTask
}

// StopContext returns a read-only view of this task's stop flag.
func (c *Control) StopContext() StopContext {
	return StopContext{it: c.it}
}

// IsStopRequested is shorthand for StopContext().IsStopRequested().
func (c *Control) IsStopRequested() bool {
	return c.it.stopRequested
}

// SetDebugName stores debug metadata on the enclosing task. dataFn, if
// non-nil, is invoked lazily whenever a debug stack is formatted. A no-op
// when EnableTaskDebug is false.
func (c *Control) SetDebugName(name string, dataFn func() string) {
	if !EnableTaskDebug {
		return
	}
	c.it.debugName = name
	c.it.debugDataFn = dataFn
}

// Yield suspends unconditionally for exactly one resume cycle (the "suspend
// always" awaiter).
func (c *Control) Yield() {
	c.it.frame.block()
}

// AwaitUntil installs pred as this task's ready predicate and suspends
// until it first returns true. If pred is already true, it returns without
// suspending.
func (c *Control) AwaitUntil(pred func() bool) {
	if pred() {
		return
	}
	c.it.readyFn = pred
	c.it.frame.block()
}

// AwaitWhile is AwaitUntil with the predicate negated.
func (c *Control) AwaitWhile(pred func() bool) {
	c.AwaitUntil(func() bool { return !pred() })
}

// AwaitFuture suspends until f is ready, then returns its value (or its
// error, if it failed).
func AwaitFuture[T any](c *Control, f *Future[T]) (T, error) {
	c.AwaitUntil(f.ready)
	return f.value, f.err
}

// Await resumes target at once (after passing on this task's stop request,
// if any); if that does not finish it, target is adopted as this task's
// sub-task and the resume chain flows through it on every subsequent resume
// until it completes, which is what lets a stop-request fan out through
// composition (section 4.3's "sub-task adoption" path). If target is
// already done, or finishes in that first resume, no suspension occurs.
// Only valid for a resumable target — this await drives target's
// resumption itself. Awaiting a nil handle panics with a
// *TaskInvariantError, as does AwaitHandle.
func Await[T any](c *Control, target *Task[T]) (T, error) {
	target.checkUsable()
	target.consumed = true
	return awaitAdopt[T](c, target.it)
}

// AwaitHandle awaits a non-resumable strong handle. Unlike Await, it never
// calls target.Resume() and never adopts target as a sub-task: it only
// installs a target.IsDone ready predicate, because a non-resumable handle
// exists precisely so something else (typically the target's owning
// TaskManager entry) is the one driving it. Calling Resume on it here as
// well would drive the same InternalTask from a second, untracked path.
func AwaitHandle[T any](c *Control, target TaskHandle[T]) (T, error) {
	return awaitPoll[T](c, target.it)
}

// AwaitWeak is Await for a weak resumable handle (always unit return).
func AwaitWeak(c *Control, target *WeakTask) error {
	target.checkUsable()
	target.consumed = true
	_, err := awaitAdopt[struct{}](c, target.it)
	return err
}

// AwaitWeakHandle is AwaitHandle for a weak non-resumable handle.
func AwaitWeakHandle(c *Control, target WeakTaskHandle) error {
	_, err := awaitPoll[struct{}](c, target.it)
	return err
}

func awaitAdopt[T any](c *Control, target *internalTask) (T, error) {
	if target == nil {
		panic(&TaskInvariantError{Message: "await on an invalid task handle"})
	}
	if !target.done {
		if c.it.stopRequested {
			target.requestStop()
		}
		target.resume()
	}
	if !target.done {
		c.it.subTask = target
		c.it.frame.block()
		c.it.subTask = nil
	}
	return extractValue[T](target)
}

func awaitPoll[T any](c *Control, target *internalTask) (T, error) {
	if target == nil {
		panic(&TaskInvariantError{Message: "await on an invalid task handle"})
	}
	if !target.done {
		c.it.readyFn = func() bool { return target.done }
		c.it.frame.block()
	}
	return extractValue[T](target)
}

// AddStopTask registers target as a stop fan-out recipient of the enclosing
// task.
func AddStopTask(c *Control, target stopTargeter) {
	c.it.addStopTarget(target.internalTask())
}

// RemoveStopTask deregisters target from the enclosing task's stop
// fan-out list.
func RemoveStopTask(c *Control, target stopTargeter) {
	c.it.removeStopTarget(target.internalTask())
}

// stopTargeter is implemented by every handle variant, letting
// AddStopTask/RemoveStopTask accept any of them uniformly.
type stopTargeter interface {
	internalTask() *internalTask
}

func extractValue[T any](it *internalTask) (T, error) {
	var zero T
	if it.exception != nil {
		return zero, it.exception
	}
	if v, ok := it.retVal.(T); ok {
		return v, nil
	}
	return zero, nil
}
