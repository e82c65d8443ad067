package tasks

// StopContext is a read-only view over a task's stop flag, handed to
// coroutine bodies so they can observe a cooperative stop request without
// gaining any capability to resume, kill, or otherwise mutate the task.
type StopContext struct {
	it *internalTask
}

// IsStopRequested reports whether the owning task has had a stop requested.
func (s StopContext) IsStopRequested() bool {
	return s.it != nil && s.it.stopRequested
}
