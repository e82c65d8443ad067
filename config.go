package tasks

// Configuration switches. The original library exposes these as compile-time
// macros; Go has no preprocessor, so they become package-level values that
// callers may override during process startup (before any task runs).

// EnableTaskDebug turns on debug-name tracking and callstack formatting.
// When false, SetDebugName is a no-op and GetDebugStack returns an empty
// string.
var EnableTaskDebug = true

// TaskTime is the scalar type used by every time-sensitive awaiter. The
// original distinguishes 32- and 64-bit variants at compile time; Go has no
// equivalent macro-driven type selection worth emulating for a single
// scalar, so this is always a float64 (see DESIGN.md).
type TaskTime = float64

// GlobalTimeFunc, when set, backs every time-sensitive awaiter that omits an
// explicit time-stream function. It is nil by default: a project with more
// than one time stream (game time, real time, audio time, ...) should pass
// the relevant function explicitly rather than relying on this variable.
var GlobalTimeFunc func() TaskTime

func requireTime(fn func() TaskTime) func() TaskTime {
	if fn != nil {
		return fn
	}
	if GlobalTimeFunc == nil {
		panic(&TaskInvariantError{Message: "time-sensitive awaiter used without an explicit time function and GlobalTimeFunc is unset"})
	}
	return GlobalTimeFunc
}
