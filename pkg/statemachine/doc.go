// Package statemachine implements small finite state machines driven by a
// transition table.
//
// States and events are anything with a Name. StringState and StringEvent
// cover the common case. A transition may carry guards. A guard vetoes the
// transition by returning an error, and that error travels back to the caller
// as the Reason of ErrTransitionRejected.
//
// Machines are cheap to build, so a caller that keeps state outside the
// machine can create one per decision:
//
//	sm := statemachine.MustNew(current, statemachine.WithTransitions(table))
//	if err := sm.Fire(ctx, event, data); err != nil {
//	    return statemachine.RejectionReason(err)
//	}
//	next := sm.Current()
//
// # Error Handling
//
// Fire reports an undefined transition with *ErrNoTransitionAvailable and a
// guard veto with *ErrTransitionRejected. Use IsNoTransitionAvailableError,
// IsTransitionRejectedError and RejectionReason to tell them apart.
//
// # Concurrency
//
// SimpleStateMachine guards its state and transition table with a RWMutex.
package statemachine
