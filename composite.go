package tasks

// Cancelable wraps the outcome of CancelIf/CancelIfStopRequested/StopIf:
// Completed is true when the wrapped task finished on its own: Value then
// holds its return value. Completed is false when the wrapper canceled it
// first, in which case Value is the zero value.
type Cancelable[T any] struct {
	Value     T
	Completed bool
}

// CancelIf wraps t in a supervisor task that kills it the first time pred
// returns true, short-circuiting whatever t was doing.
func CancelIf[T any](t *Task[T], pred func() bool) Task[Cancelable[T]] {
	t.checkUsable()
	t.consumed = true
	it := t.it
	return New(func(ctl *Control) (Cancelable[T], error) {
		return driveCancelable[T](ctl, it, pred)
	})
}

// CancelIfStopRequested is CancelIf gated on the wrapper's own stop flag,
// rather than an arbitrary predicate.
func CancelIfStopRequested[T any](t *Task[T]) Task[Cancelable[T]] {
	t.checkUsable()
	t.consumed = true
	it := t.it
	return New(func(ctl *Control) (Cancelable[T], error) {
		return driveCancelable[T](ctl, it, ctl.IsStopRequested)
	})
}

// StopTimeout configures the hard-cancel fallback for StopIf.
type StopTimeout struct {
	Seconds float64
	TimeFn  func() TaskTime
}

// StopIf requests t to stop the first time pred returns true; if timeout is
// non-nil and t has not finished by the time it elapses, t is killed
// outright.
func StopIf[T any](t *Task[T], pred func() bool, timeout *StopTimeout) Task[Cancelable[T]] {
	t.checkUsable()
	t.consumed = true
	it := t.it
	return New(func(ctl *Control) (Cancelable[T], error) {
		return driveStoppable[T](ctl, it, pred, timeout)
	})
}

func driveCancelable[T any](ctl *Control, target *internalTask, pred func() bool) (Cancelable[T], error) {
	for {
		if target.done {
			v, err := extractValue[T](target)
			return Cancelable[T]{Value: v, Completed: true}, err
		}
		if pred() {
			target.kill()
			var zero T
			return Cancelable[T]{Value: zero}, nil
		}
		target.resume()
		if target.done {
			v, err := extractValue[T](target)
			return Cancelable[T]{Value: v, Completed: true}, err
		}
		ctl.Yield()
	}
}

func driveStoppable[T any](ctl *Control, target *internalTask, pred func() bool, timeout *StopTimeout) (Cancelable[T], error) {
	stopped := false
	var deadline float64
	var tf func() TaskTime
	for {
		if target.done {
			v, err := extractValue[T](target)
			return Cancelable[T]{Value: v, Completed: true}, err
		}
		if !stopped && pred() {
			target.requestStop()
			stopped = true
			if timeout != nil {
				tf = requireTime(timeout.TimeFn)
				deadline = tf() + timeout.Seconds
			}
		}
		if stopped && timeout != nil && tf() >= deadline {
			target.kill()
			var zero T
			return Cancelable[T]{Value: zero}, nil
		}
		target.resume()
		if target.done {
			v, err := extractValue[T](target)
			return Cancelable[T]{Value: v, Completed: true}, err
		}
		ctl.Yield()
	}
}

// WaitForAny returns as soon as any entry completes, yielding its value.
// The losing entries are not proactively killed (see DESIGN.md's Open
// Questions): they remain registered as stop-targets of the returned task,
// so a stop request on it fans out to every entry, but simply winning the
// race does not. Killing the returned task does not kill the entries.
func WaitForAny[T any](entries []*Task[T]) Task[T] {
	its := consumeEntries(entries)
	return New(func(ctl *Control) (T, error) {
		adoptAsStopTargets(ctl, its)
		for {
			for _, it := range its {
				if !it.done {
					it.resume()
				}
				if it.done {
					return extractValue[T](it)
				}
			}
			ctl.Yield()
		}
	})
}

// WaitForAll returns once every entry has completed, in the update where
// the last one finishes.
func WaitForAll[T any](entries []*Task[T]) Task[[]T] {
	its := consumeEntries(entries)
	return New(func(ctl *Control) ([]T, error) {
		adoptAsStopTargets(ctl, its)
		for {
			allDone := true
			for _, it := range its {
				if !it.done {
					it.resume()
				}
				if !it.done {
					allDone = false
				}
			}
			if allDone {
				results := make([]T, len(its))
				var firstErr error
				for i, it := range its {
					v, err := extractValue[T](it)
					results[i] = v
					if err != nil && firstErr == nil {
						firstErr = err
					}
				}
				return results, firstErr
			}
			ctl.Yield()
		}
	})
}

// SelectEntry pairs a task with the value Select should return if it wins.
type SelectEntry[T any, V any] struct {
	Task  *Task[T]
	Value V
}

// Select behaves like WaitForAny but returns the caller-supplied Value
// associated with whichever entry wins, rather than the entry's own return
// value.
func Select[T any, V any](entries []SelectEntry[T, V]) Task[V] {
	its := make([]*internalTask, len(entries))
	for i, e := range entries {
		e.Task.checkUsable()
		e.Task.consumed = true
		its[i] = e.Task.it
	}
	return New(func(ctl *Control) (V, error) {
		for _, it := range its {
			ctl.it.addStopTarget(it)
		}
		for {
			for i, it := range its {
				if !it.done {
					it.resume()
				}
				if it.done {
					_, err := extractValue[T](it)
					return entries[i].Value, err
				}
			}
			ctl.Yield()
		}
	})
}

// consumeEntries marks every entry's handle consumed (so the caller can no
// longer resume it directly) and returns its underlying internalTask
// pointers, done eagerly at call time rather than lazily when the returned
// task first runs.
func consumeEntries[T any](entries []*Task[T]) []*internalTask {
	its := make([]*internalTask, len(entries))
	for i, e := range entries {
		e.checkUsable()
		e.consumed = true
		its[i] = e.it
	}
	return its
}

func adoptAsStopTargets(ctl *Control, its []*internalTask) {
	for _, it := range its {
		ctl.it.addStopTarget(it)
	}
}

// WaitSeconds suspends until timeFn() has advanced by at least seconds
// past the moment WaitSeconds started running, returning the overshoot
// (how far past the deadline the check actually landed).
func WaitSeconds(timeFn func() TaskTime, seconds float64) Task[float64] {
	return New(func(ctl *Control) (float64, error) {
		tf := requireTime(timeFn)
		start := tf()
		var overshoot float64
		ctl.AwaitUntil(func() bool {
			overshoot = tf() - start - seconds
			return overshoot >= 0
		})
		return overshoot, nil
	})
}

// Timeout kills t outright if it has not completed within seconds of the
// moment Timeout is called, per the supplied time stream.
func Timeout[T any](t *Task[T], timeFn func() TaskTime, seconds float64) Task[Cancelable[T]] {
	tf := requireTime(timeFn)
	start := tf()
	return CancelIf(t, func() bool {
		return tf()-start >= seconds
	})
}

// DelayCall awaits WaitSeconds(seconds) and then invokes fn.
func DelayCall(timeFn func() TaskTime, seconds float64, fn func()) Task[struct{}] {
	return New(func(ctl *Control) (struct{}, error) {
		tf := requireTime(timeFn)
		start := tf()
		ctl.AwaitUntil(func() bool { return tf()-start >= seconds })
		fn()
		return struct{}{}, nil
	})
}

// WaitUntil suspends until pred first returns true.
func WaitUntil(pred func() bool) Task[struct{}] {
	return New(func(ctl *Control) (struct{}, error) {
		ctl.AwaitUntil(pred)
		return struct{}{}, nil
	})
}

// WaitWhile suspends while pred returns true.
func WaitWhile(pred func() bool) Task[struct{}] {
	return WaitUntil(func() bool { return !pred() })
}

// WaitForever never completes on its own; only a kill (for example from a
// CancelIf wrapper, or a StopIf wrapper's timeout) ends it. A stop request
// alone does not.
func WaitForever() Task[struct{}] {
	return WaitUntil(func() bool { return false })
}
