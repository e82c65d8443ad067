package tasks

import "strings"

// TaskManager owns an ordered list of root tasks and drives them forward
// one Update at a time, preserving insertion order across updates (section
// 4.5). Rewritten from the teacher lineage's old executor.go shape
// (Autorun/mutex-guarded queue/Spawn), retargeted from its path-keyed
// *Task struct onto weak/strong internalTask references.
type TaskManager struct {
	tasks      []WeakTask
	strongRefs []TaskHandle[struct{}]
}

// NewTaskManager returns an empty manager.
func NewTaskManager() *TaskManager {
	return &TaskManager{}
}

// Run takes ownership of t, returning a strong non-resumable observer
// handle to the caller while the manager retains a weak resumable
// reference it will drive via Update. If the returned handle is the last
// strong reference and it is dropped, the task is killed on (or before)
// the next Update.
func Run[T any](m *TaskManager, t *Task[T]) TaskHandle[T] {
	handle := TaskHandle[T]{it: t.it}
	weak := t.Weaken()
	m.tasks = append(m.tasks, weak)
	return handle
}

// RunManaged is Run, except the manager also keeps its own strong
// non-resumable reference, so the task lives until it completes or is
// killed explicitly — the caller's handle does not control its lifetime.
func RunManaged[T any](m *TaskManager, t *Task[T]) WeakTaskHandle {
	handle := TaskHandle[T]{it: t.it}
	weak := t.Weaken()
	m.tasks = append(m.tasks, weak)
	m.strongRefs = append(m.strongRefs, TaskHandle[struct{}]{it: handle.it})
	return handle.Weaken()
}

// RunWeak inserts a pre-existing weak resumable reference, for example one
// obtained from a prior Task.Weaken() call made outside this manager.
func RunWeak(m *TaskManager, w *WeakTask) {
	m.tasks = append(m.tasks, *w)
}

// KillAll drops every tracked reference. Weak references then observe
// their tasks as dead; dropping the retained strong references kills any
// task that has no other owner.
func (m *TaskManager) KillAll() {
	for _, t := range m.tasks {
		if t.it != nil {
			t.it.kill()
		}
	}
	m.tasks = nil
	for _, h := range m.strongRefs {
		h.Close()
	}
	m.strongRefs = nil
}

// StopAll issues a stop request on every live tracked task and returns a
// fence task that completes once they have all finished. The fence does
// not itself drive their resumption — that remains Update's job.
func (m *TaskManager) StopAll() Task[struct{}] {
	targets := make([]*internalTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.it != nil && t.it.state != stateDestroyed {
			t.it.requestStop()
			targets = append(targets, t.it)
		}
	}
	return New(func(ctl *Control) (struct{}, error) {
		for {
			allDone := true
			for _, it := range targets {
				if !it.done {
					allDone = false
					break
				}
			}
			if allDone {
				return struct{}{}, nil
			}
			ctl.Yield()
		}
	})
}

// Update resumes every live tracked task exactly once, in insertion order,
// removing those that finish while preserving the relative order of
// survivors, then prunes any retained strong references whose tasks are
// done.
func (m *TaskManager) Update() {
	survivors := m.tasks[:0]
	for _, t := range m.tasks {
		t := t
		if t.it == nil || t.it.state == stateDestroyed {
			continue
		}
		if t.Resume() == StatusDone {
			continue
		}
		survivors = append(survivors, t)
	}
	m.tasks = survivors

	live := m.strongRefs[:0]
	for _, h := range m.strongRefs {
		if h.it != nil && h.it.done {
			h.Close()
			continue
		}
		live = append(live, h)
	}
	m.strongRefs = live
}

// GetDebugString joins the debug stacks of every non-done tracked task
// with newlines.
func (m *TaskManager) GetDebugString(f DebugFormatter) string {
	if f == nil {
		f = DefaultDebugFormatter{}
	}
	var b strings.Builder
	first := true
	for _, t := range m.tasks {
		if t.it == nil || t.it.done {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		first = false
		b.WriteString(f.Format(t.it.debugStack()))
	}
	return b.String()
}
