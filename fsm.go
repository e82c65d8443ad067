package tasks

import "fmt"

const invalidStateID = -1

type linkKind int

const (
	linkNormal linkKind = iota
	linkOnComplete
)

type fsmLink struct {
	target        int
	kind          linkKind
	unconditional bool
	predicate     func() (any, bool)
}

type fsmState struct {
	name    string
	factory func(payload any) Task[struct{}]
	links   []fsmLink
	isExit  bool
}

// TaskFSM drives a sequence of states, each a task-factory, transitioning
// between them according to ordered link predicates evaluated once per
// tick (section 4.6). Grounded on TaskFSM.h / Private/TaskFSMPrivate.h.
type TaskFSM struct {
	states     []fsmState
	entryLinks []fsmLink
}

// NewTaskFSM returns an empty state machine.
func NewTaskFSM() *TaskFSM {
	return &TaskFSM{}
}

// StateHandle identifies a state and the payload type its factory expects
// (struct{} for zero-argument states).
type StateHandle[P any] struct {
	fsm *TaskFSM
	id  int
}

// State registers a state whose factory is invoked with a payload of type
// P whenever a link into it fires.
func State[P any](fsm *TaskFSM, name string, factory func(P) Task[struct{}]) StateHandle[P] {
	id := len(fsm.states)
	fsm.states = append(fsm.states, fsmState{
		name: name,
		factory: func(payload any) Task[struct{}] {
			p, _ := payload.(P)
			return factory(p)
		},
	})
	return StateHandle[P]{fsm: fsm, id: id}
}

// ZeroState registers a zero-argument state.
func ZeroState(fsm *TaskFSM, name string, factory func() Task[struct{}]) StateHandle[struct{}] {
	return State[struct{}](fsm, name, func(struct{}) Task[struct{}] { return factory() })
}

// ExitState registers a state that, once entered, terminates Run and
// returns this state's id.
func ExitState(fsm *TaskFSM, name string) StateHandle[struct{}] {
	id := len(fsm.states)
	fsm.states = append(fsm.states, fsmState{name: name, isExit: true})
	return StateHandle[struct{}]{fsm: fsm, id: id}
}

// ID returns the state's numeric id, as returned by a completed Run.
func (h StateHandle[P]) ID() int { return h.id }

func addLink(fsm *TaskFSM, from, to int, kind linkKind, unconditional bool, pred func() (any, bool)) {
	st := &fsm.states[from]
	if kind == linkOnComplete {
		for _, l := range st.links {
			if l.kind == linkOnComplete && l.unconditional {
				panic(&TaskInvariantError{Message: fmt.Sprintf("state %q: OnComplete link added after an unconditional OnComplete link is unreachable", st.name)})
			}
		}
	}
	st.links = append(st.links, fsmLink{target: to, kind: kind, unconditional: unconditional, predicate: pred})
	if kind == linkOnComplete && unconditional {
		count := 0
		for _, l := range st.links {
			if l.kind == linkOnComplete && l.unconditional {
				count++
			}
		}
		if count > 1 {
			panic(&TaskInvariantError{Message: fmt.Sprintf("state %q: at most one unconditional OnComplete link is allowed", st.name)})
		}
	}
}

// LinkAlways adds an unconditional normal link.
func LinkAlways[P, Q any](from StateHandle[P], to StateHandle[Q], payload Q) {
	addLink(from.fsm, from.id, to.id, linkNormal, true, func() (any, bool) { return payload, true })
}

// LinkIf adds a normal link gated on a boolean predicate, with a fixed
// payload for when it fires.
func LinkIf[P, Q any](from StateHandle[P], to StateHandle[Q], pred func() bool, payload Q) {
	addLink(from.fsm, from.id, to.id, linkNormal, false, func() (any, bool) {
		if pred() {
			return payload, true
		}
		return nil, false
	})
}

// LinkWhen adds a normal link whose predicate synthesizes the payload
// itself (an optional-payload predicate).
func LinkWhen[P, Q any](from StateHandle[P], to StateHandle[Q], pred func() (Q, bool)) {
	addLink(from.fsm, from.id, to.id, linkNormal, false, func() (any, bool) {
		q, ok := pred()
		return q, ok
	})
}

// OnCompleteAlways adds an unconditional OnComplete link: it fires as soon
// as the current state's task is done.
func OnCompleteAlways[P, Q any](from StateHandle[P], to StateHandle[Q], payload Q) {
	addLink(from.fsm, from.id, to.id, linkOnComplete, true, func() (any, bool) { return payload, true })
}

// OnCompleteIf adds an OnComplete link gated on both the current task
// being done and a boolean predicate.
func OnCompleteIf[P, Q any](from StateHandle[P], to StateHandle[Q], pred func() bool, payload Q) {
	addLink(from.fsm, from.id, to.id, linkOnComplete, false, func() (any, bool) {
		if pred() {
			return payload, true
		}
		return nil, false
	})
}

// OnCompleteWhen adds an OnComplete link whose predicate synthesizes the
// payload itself.
func OnCompleteWhen[P, Q any](from StateHandle[P], to StateHandle[Q], pred func() (Q, bool)) {
	addLink(from.fsm, from.id, to.id, linkOnComplete, false, func() (any, bool) {
		return pred()
	})
}

// EntryLinkAlways adds an unconditional link evaluated only while no state
// is yet active.
func EntryLinkAlways[Q any](fsm *TaskFSM, to StateHandle[Q], payload Q) {
	fsm.entryLinks = append(fsm.entryLinks, fsmLink{target: to.id, kind: linkNormal, unconditional: true, predicate: func() (any, bool) { return payload, true }})
}

// EntryLinkWhen adds a payload-synthesizing link evaluated only while no
// state is yet active.
func EntryLinkWhen[Q any](fsm *TaskFSM, to StateHandle[Q], pred func() (Q, bool)) {
	fsm.entryLinks = append(fsm.entryLinks, fsmLink{target: to.id, kind: linkNormal, predicate: func() (any, bool) { return pred() }})
}

// TransitionEvent describes a state change as it happens.
type TransitionEvent struct {
	NewStateID   int
	NewStateName string
}

// Run drives the FSM to completion, returning the exit state's id.
// onTransition, if non-nil, is invoked whenever any link fires (including
// into an exit state); debugTransition, if non-nil, is invoked only for
// transitions into a non-exit state, after onTransition.
func (f *TaskFSM) Run(onTransition func(TransitionEvent), debugTransition func(TransitionEvent)) Task[int] {
	return New(func(ctl *Control) (int, error) {
		currentID := invalidStateID
		var currentTask *internalTask

		for {
			var links []fsmLink
			if currentID == invalidStateID {
				links = f.entryLinks
			} else {
				links = f.states[currentID].links
			}

			for _, link := range links {
				if link.kind == linkOnComplete && (currentTask == nil || !currentTask.done) {
					continue
				}
				payload, ok := link.predicate()
				if !ok {
					continue
				}
				if link.target < 0 || link.target >= len(f.states) {
					panic(&TaskInvariantError{Message: "TaskFSM link targets an invalid state id"})
				}
				target := &f.states[link.target]
				ev := TransitionEvent{NewStateID: link.target, NewStateName: target.name}
				if onTransition != nil {
					onTransition(ev)
				}
				if target.isExit {
					if currentTask != nil {
						currentTask.kill()
					}
					return link.target, nil
				}
				if debugTransition != nil {
					debugTransition(ev)
				}
				if currentTask != nil {
					ctl.it.removeStopTarget(currentTask)
					currentTask.kill()
				}
				newTask := target.factory(payload)
				currentTask = newTask.it
				ctl.it.addStopTarget(currentTask)
				currentID = link.target
				break
			}

			if currentTask != nil {
				currentTask.resume()
			}
			ctl.Yield()
		}
	})
}
