package statemachine

import (
	"context"
	"sync"
)

// SimpleStateMachine is an in-memory state machine safe for concurrent use.
// Transitions are indexed [fromState][event].
type SimpleStateMachine struct {
	currentState State
	transitions  map[string]map[string][]Transition
	mu           sync.RWMutex
}

func newSimpleStateMachine(initialState State) *SimpleStateMachine {
	return &SimpleStateMachine{
		currentState: initialState,
		transitions:  make(map[string]map[string][]Transition),
	}
}

func (sm *SimpleStateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

func (sm *SimpleStateMachine) AddTransition(from, to State, event Event, guards ...Guard) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	byEvent, ok := sm.transitions[from.Name()]
	if !ok {
		byEvent = make(map[string][]Transition)
		sm.transitions[from.Name()] = byEvent
	}

	// several transitions per from/event allow guard-based branching
	byEvent[event.Name()] = append(byEvent[event.Name()], Transition{
		From:   from,
		To:     to,
		Event:  event,
		Guards: guards,
	})
	return nil
}

func (sm *SimpleStateMachine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	t, err := sm.match(ctx, event, data)
	if err != nil {
		return err
	}
	sm.currentState = t.To
	return nil
}

func (sm *SimpleStateMachine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	_, err := sm.match(ctx, event, data)
	return err == nil
}

// match returns the first transition whose guards all pass. Callers hold the lock.
func (sm *SimpleStateMachine) match(ctx context.Context, event Event, data any) (Transition, error) {
	stateName := sm.currentState.Name()
	eventName := event.Name()

	candidates := sm.transitions[stateName][eventName]
	if len(candidates) == 0 {
		return Transition{}, NewErrNoTransitionAvailable(stateName, eventName)
	}

	var reason error
	for _, t := range candidates {
		if err := runGuards(ctx, t, sm.currentState, event, data); err != nil {
			if reason == nil {
				reason = err
			}
			continue
		}
		return t, nil
	}
	return Transition{}, NewErrTransitionRejected(stateName, eventName, reason)
}

func runGuards(ctx context.Context, t Transition, from State, event Event, data any) error {
	for _, guard := range t.Guards {
		if guard == nil {
			continue
		}
		if err := guard(ctx, from, event, data); err != nil {
			return err
		}
	}
	return nil
}
