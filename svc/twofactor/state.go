package twofactor

import (
	"context"

	"github.com/dmitrymomot/mfakit/pkg/statemachine"
)

// State is the enrollment state of a credential.
type State string

const (
	StateNotConfigured       State = "not_configured"
	StatePendingVerification State = "pending_verification"
	StateEnabled             State = "enabled"
)

func (s State) Name() string {
	return string(s)
}

func (s State) String() string {
	return string(s)
}

// Event is a lifecycle operation applied to a credential.
type Event string

const (
	EventSetup   Event = "setup"
	EventEnable  Event = "enable"
	EventReset   Event = "reset"
	EventDisable Event = "disable"
)

func (e Event) Name() string {
	return string(e)
}

// lifecycle returns the transition table. Disabling from StateNotConfigured is
// listed only so that policy runs first; requireConfigured always vetoes it.
func lifecycle(policy statemachine.Guard) []statemachine.TransitionDef {
	disable := []statemachine.Guard{policy, requireConfigured}
	return []statemachine.TransitionDef{
		{From: StateNotConfigured, To: StatePendingVerification, Event: EventSetup},
		{From: StateNotConfigured, To: StateEnabled, Event: EventEnable},
		{From: StateNotConfigured, To: StatePendingVerification, Event: EventReset},
		{From: StateNotConfigured, To: StateNotConfigured, Event: EventDisable, Guards: disable},

		{From: StatePendingVerification, To: StatePendingVerification, Event: EventSetup},
		{From: StatePendingVerification, To: StateEnabled, Event: EventEnable},
		{From: StatePendingVerification, To: StatePendingVerification, Event: EventReset},
		{From: StatePendingVerification, To: StateNotConfigured, Event: EventDisable, Guards: disable},

		{From: StateEnabled, To: StateEnabled, Event: EventSetup},
		{From: StateEnabled, To: StateEnabled, Event: EventEnable},
		{From: StateEnabled, To: StatePendingVerification, Event: EventReset},
		{From: StateEnabled, To: StateNotConfigured, Event: EventDisable, Guards: disable},
	}
}

var defaultLifecycle = lifecycle(nil)

func requireConfigured(_ context.Context, from statemachine.State, _ statemachine.Event, _ any) error {
	if from == StateNotConfigured {
		return ErrNotConfigured
	}
	return nil
}

// Next returns the state reached by applying event in state from, ignoring
// account policy. Vetoed transitions return the veto reason, such as
// ErrNotConfigured for disabling a credential that does not exist.
func Next(from State, event Event) (State, error) {
	return fire(context.Background(), defaultLifecycle, from, event, nil)
}

func fire(ctx context.Context, table []statemachine.TransitionDef, from State, event Event, data any) (State, error) {
	sm, err := statemachine.New(from, statemachine.WithTransitions(table))
	if err != nil {
		return from, err
	}
	if err := sm.Fire(ctx, event, data); err != nil {
		return from, statemachine.RejectionReason(err)
	}
	return sm.Current().(State), nil
}
