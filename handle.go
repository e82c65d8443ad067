package tasks

// noCopy, embedded by value in the resumable handle types, makes `go vet`'s
// copylocks check flag accidental copies — the same trick sync.WaitGroup
// uses. Go has no move semantics, so this plus the runtime "consumed" check
// on every resuming or converting method is the closest emulation of the single-resumer
// invariant (section 9's design note).
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Task is a strong, resumable handle: the owner of a logical strong
// reference and (until converted or closed) the task's unique resumable
// handle. Do not copy a Task value; pass it by pointer or convert it.
type Task[T any] struct {
	_        noCopy
	it       *internalTask
	consumed bool
}

// New creates a task from a coroutine body. The returned handle owns the
// task's initial strong reference and is its unique resumable handle.
func New[T any](body func(ctl *Control) (T, error)) Task[T] {
	it := newInternalTask(body)
	it.strongCount = 1
	return Task[T]{it: it}
}

func (t *Task[T]) checkUsable() {
	if t.consumed {
		panic(&TaskInvariantError{Message: "resumable handle used after being consumed"})
	}
}

func (t *Task[T]) internalTask() *internalTask { return t.it }

func (t *Task[T]) IsValid() bool { return t.it != nil }
func (t *Task[T]) IsDone() bool  { return t.it == nil || t.it.done }

func (t *Task[T]) IsStopRequested() bool { return t.it != nil && t.it.stopRequested }
func (t *Task[T]) RequestStop()          { if t.it != nil { t.it.requestStop() } }

// Resume steps the task once.
func (t *Task[T]) Resume() ResumeStatus {
	t.checkUsable()
	if t.it == nil {
		return StatusDone
	}
	return t.it.resume()
}

// Close drops this resumable handle without converting it, killing the
// task (invariant 3): nothing else can ever resume it again.
func (t *Task[T]) Close() {
	if t.it == nil || t.consumed {
		return
	}
	t.consumed = true
	t.it.kill()
	t.it.removeStrongRef()
}

// Weaken converts this handle to a weak resumable handle. Resumability is
// preserved (transferred), so the task is not killed by this call alone;
// dropping the sole strong reference anywhere else may still kill it.
func (t *Task[T]) Weaken() WeakTask {
	t.checkUsable()
	t.consumed = true
	return WeakTask{it: t.it}
}

// Handle converts this resumable handle to a non-resumable strong handle.
// Resumability is given up: whatever already holds (or will hold) a weak
// resumable reference elsewhere becomes the task's sole way to progress.
func (t *Task[T]) Handle() TaskHandle[T] {
	t.checkUsable()
	t.consumed = true
	return TaskHandle[T]{it: t.it}
}

// TakeReturnValue returns the task's return value exactly once.
func (t *Task[T]) TakeReturnValue() (T, bool) {
	return takeTyped[T](t.it)
}

// RethrowUnhandledException panics with the task's stored coroutine-body
// error, if any.
func (t *Task[T]) RethrowUnhandledException() {
	if t.it != nil {
		t.it.rethrowIfAny()
	}
}

func (t *Task[T]) GetDebugName() string { return debugName(t.it) }
func (t *Task[T]) GetDebugStack(f DebugFormatter) string {
	if t.it == nil {
		return ""
	}
	if f == nil {
		f = DefaultDebugFormatter{}
	}
	return f.Format(t.it.debugStack())
}

// WeakTask is a weak, resumable handle. Always unit return, per section 3.
type WeakTask struct {
	_        noCopy
	it       *internalTask
	consumed bool
}

func (t *WeakTask) checkUsable() {
	if t.consumed {
		panic(&TaskInvariantError{Message: "resumable handle used after being consumed"})
	}
}

func (t *WeakTask) internalTask() *internalTask { return t.it }

func (t *WeakTask) IsValid() bool {
	return t.it != nil && t.it.state != stateDestroyed
}
func (t *WeakTask) IsDone() bool { return t.it == nil || t.it.done }

func (t *WeakTask) IsStopRequested() bool { return t.it != nil && t.it.stopRequested }
func (t *WeakTask) RequestStop()          { if t.it != nil { t.it.requestStop() } }

// Resume steps the task once, returning Done if the task no longer exists.
func (t *WeakTask) Resume() ResumeStatus {
	t.checkUsable()
	if t.it == nil || t.it.state == stateDestroyed {
		return StatusDone
	}
	return t.it.resume()
}

// Close drops the sole resumable handle without converting it, killing the
// task.
func (t *WeakTask) Close() {
	if t.it == nil || t.consumed {
		return
	}
	t.consumed = true
	if t.it.state != stateDestroyed {
		t.it.kill()
	}
}

// Handle converts this handle to a non-resumable weak handle.
func (t *WeakTask) Handle() WeakTaskHandle {
	t.checkUsable()
	t.consumed = true
	return WeakTaskHandle{it: t.it}
}

func (t *WeakTask) GetDebugName() string { return debugName(t.it) }

// TaskHandle is a strong, non-resumable handle. Copyable: every copy is an
// alias over the same strong reference, so exactly one of them (typically
// whichever created it) should call Close.
type TaskHandle[T any] struct {
	it *internalTask
}

func (h TaskHandle[T]) internalTask() *internalTask { return h.it }

func (h TaskHandle[T]) IsValid() bool            { return h.it != nil }
func (h TaskHandle[T]) IsDone() bool             { return h.it == nil || h.it.done }
func (h TaskHandle[T]) IsStopRequested() bool    { return h.it != nil && h.it.stopRequested }
func (h TaskHandle[T]) RequestStop()             { if h.it != nil { h.it.requestStop() } }

// Kill synchronously destroys the task's coroutine frame.
func (h TaskHandle[T]) Kill() {
	if h.it != nil {
		h.it.kill()
	}
}

// Close releases this handle's strong reference, killing the task if it
// was the last one.
func (h TaskHandle[T]) Close() {
	if h.it != nil {
		h.it.removeStrongRef()
	}
}

// Clone registers an additional strong reference and returns a handle for
// it; each Clone must eventually be balanced by its own Close.
func (h TaskHandle[T]) Clone() TaskHandle[T] {
	if h.it != nil {
		h.it.addStrongRef()
	}
	return h
}

func (h TaskHandle[T]) TakeReturnValue() (T, bool) {
	return takeTyped[T](h.it)
}

func (h TaskHandle[T]) RethrowUnhandledException() {
	if h.it != nil {
		h.it.rethrowIfAny()
	}
}

func (h TaskHandle[T]) GetDebugName() string { return debugName(h.it) }
func (h TaskHandle[T]) GetDebugStack(f DebugFormatter) string {
	if h.it == nil {
		return ""
	}
	if f == nil {
		f = DefaultDebugFormatter{}
	}
	return f.Format(h.it.debugStack())
}

// Weaken converts to a weak non-resumable handle.
func (h TaskHandle[T]) Weaken() WeakTaskHandle {
	return WeakTaskHandle{it: h.it}
}

// WeakTaskHandle is a weak, non-resumable handle: observation and kill
// only.
type WeakTaskHandle struct {
	it *internalTask
}

func (h WeakTaskHandle) internalTask() *internalTask { return h.it }

func (h WeakTaskHandle) IsValid() bool {
	return h.it != nil && h.it.state != stateDestroyed
}
func (h WeakTaskHandle) IsDone() bool          { return h.it == nil || h.it.done }
func (h WeakTaskHandle) IsStopRequested() bool { return h.it != nil && h.it.stopRequested }
func (h WeakTaskHandle) RequestStop()          { if h.it != nil { h.it.requestStop() } }

func (h WeakTaskHandle) Kill() {
	if h.it != nil {
		h.it.kill()
	}
}

func (h WeakTaskHandle) GetDebugName() string { return debugName(h.it) }

func takeTyped[T any](it *internalTask) (T, bool) {
	var zero T
	if it == nil {
		return zero, false
	}
	v, ok := it.takeReturnValue()
	if !ok {
		return zero, false
	}
	tv, ok2 := v.(T)
	if !ok2 {
		return zero, false
	}
	return tv, true
}

func debugName(it *internalTask) string {
	if it == nil || !EnableTaskDebug {
		return ""
	}
	return it.debugName
}
