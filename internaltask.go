package tasks

import "github.com/google/uuid"

// ResumeStatus is the result of stepping a task once.
type ResumeStatus int

const (
	// StatusSuspended reports that the task yielded control without
	// completing; a gating condition (sub-task or ready predicate) has
	// been recorded.
	StatusSuspended ResumeStatus = iota
	// StatusDone reports that the task's coroutine frame has run to
	// completion (or been killed) and will never run again.
	StatusDone
)

type taskState int32

const (
	stateIdle taskState = iota
	stateResuming
	stateDestroyed
)

type retValState int32

const (
	retUnset retValState = iota
	retSet
	retTaken
	retOrphaned
)

// internalTask is the type-erased, reference-counted heart of a task. Every
// handle variant (Task[T], WeakTask, TaskHandle[T], WeakTaskHandle) is a
// thin capability-tagged view over a shared *internalTask.
type internalTask struct {
	frame *coroFrame

	state taskState
	done  bool

	readyFn func() bool
	subTask *internalTask

	stopRequested bool
	stopTargets   []*internalTask

	retValState retValState
	retVal      any
	exception   error

	strongCount int

	debugName   string
	debugDataFn func() string
}

// newInternalTask wraps a coroutine body into a fresh internalTask. The
// body's return value is boxed as `any`; typed handles unbox it on take.
func newInternalTask[T any](body func(ctl *Control) (T, error)) *internalTask {
	it := &internalTask{}
	ctl := &Control{it: it}
	it.frame = newCoroFrame(func() (any, error) {
		return body(ctl)
	})
	if EnableTaskDebug {
		it.debugName = uuid.NewString()
	}
	return it
}

// resume implements section 4.1's resume algorithm.
func (it *internalTask) resume() ResumeStatus {
	if it.state == stateDestroyed || it.done {
		return StatusDone
	}
	if it.state == stateResuming {
		panic(&TaskInvariantError{Message: "resume called on a task that is already resuming"})
	}
	it.state = stateResuming

	if it.subTask != nil {
		if it.stopRequested {
			it.subTask.requestStop()
		}
		if it.subTask.resume() == StatusSuspended {
			it.state = stateIdle
			return StatusSuspended
		}
		it.subTask = nil
	}

	if it.readyFn == nil || it.readyFn() {
		it.readyFn = nil
		it.step()
	}

	it.state = stateIdle
	if it.done {
		return StatusDone
	}
	return StatusSuspended
}

// step drives the underlying coroutine frame forward exactly one stride.
func (it *internalTask) step() {
	ev := it.frame.Step()
	if ev.suspended {
		return
	}
	it.done = true
	switch {
	case ev.panicErr != nil:
		it.exception = ev.panicErr
		it.retValState = retOrphaned
	case ev.err != nil:
		it.exception = ev.err
		it.retValState = retOrphaned
	default:
		it.retVal = ev.value
		it.retValState = retSet
	}
}

// kill synchronously destroys the coroutine frame. Idempotent; fatal if
// called while this task is mid-resume (invariant 6).
func (it *internalTask) kill() {
	if it.state == stateDestroyed {
		return
	}
	if it.state == stateResuming {
		panic(&TaskInvariantError{Message: "kill called on a task that is currently resuming"})
	}
	if it.subTask != nil {
		it.subTask.kill()
		it.subTask = nil
	}
	it.frame.Kill()
	it.readyFn = nil
	it.state = stateDestroyed
	it.done = true
	if it.retValState == retUnset {
		it.retValState = retOrphaned
	}
}

func (it *internalTask) requestStop() {
	if it.stopRequested {
		return
	}
	it.stopRequested = true
	targets := it.stopTargets
	it.stopTargets = nil
	for _, t := range targets {
		t.requestStop()
	}
}

func (it *internalTask) addStopTarget(other *internalTask) {
	if other == nil {
		return
	}
	if it.stopRequested {
		other.requestStop()
		return
	}
	it.stopTargets = append(it.stopTargets, other)
}

func (it *internalTask) removeStopTarget(other *internalTask) {
	for i, t := range it.stopTargets {
		if t == other {
			last := len(it.stopTargets) - 1
			it.stopTargets[i] = it.stopTargets[last]
			it.stopTargets = it.stopTargets[:last]
			return
		}
	}
}

func (it *internalTask) addStrongRef() {
	it.strongCount++
}

func (it *internalTask) removeStrongRef() {
	it.strongCount--
	if it.strongCount <= 0 {
		it.kill()
	}
}

func (it *internalTask) takeReturnValue() (any, bool) {
	if it.retValState != retSet {
		return nil, false
	}
	it.retValState = retTaken
	v := it.retVal
	it.retVal = nil
	return v, true
}

func (it *internalTask) rethrowIfAny() {
	if it.exception != nil {
		panic(it.exception)
	}
}

// debugStack builds the raw backtick-encoded stack string for this task
// and its sub_task chain, unformatted. Only the public entry points
// (Task.GetDebugStack, TaskHandle.GetDebugStack, TaskManager.GetDebugString)
// run this through a DebugFormatter, and only once, at the top.
func (it *internalTask) debugStack() string {
	if !EnableTaskDebug {
		return ""
	}
	raw := it.debugName
	if it.debugDataFn != nil {
		raw += ": " + it.debugDataFn()
	}
	if it.subTask != nil {
		raw += "\n`" + it.subTask.debugStack()
	}
	return raw
}
