package client

import (
	"fmt"
	"sync"
)

// State is the connection state of a client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAwaitingRegistration
	StateRegistered
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAwaitingRegistration:
		return "awaiting_registration"
	case StateRegistered:
		return "registered"
	case StateReconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event drives a transition.
type Event int

const (
	EventDial       Event = iota // start dialing the relay
	EventOpened                  // relay acknowledged the socket
	EventRegistered              // relay acknowledged registration
	EventSuperseded              // another connection took over our device id
	EventClosed                  // socket failed or was closed
	EventBackoff                 // wait before dialing again
	EventStop                    // shut down for good
)

func (e Event) String() string {
	switch e {
	case EventDial:
		return "dial"
	case EventOpened:
		return "opened"
	case EventRegistered:
		return "registered"
	case EventSuperseded:
		return "superseded"
	case EventClosed:
		return "closed"
	case EventBackoff:
		return "backoff"
	case EventStop:
		return "stop"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// transitions is the complete table; anything missing is invalid.
// EventStop is accepted from every state.
var transitions = map[State]map[Event]State{
	StateDisconnected: {
		EventDial:    StateConnecting,
		EventBackoff: StateReconnecting,
	},
	StateReconnecting: {
		EventDial: StateConnecting,
	},
	StateConnecting: {
		EventOpened: StateAwaitingRegistration,
		EventClosed: StateDisconnected,
	},
	StateAwaitingRegistration: {
		EventRegistered: StateRegistered,
		EventClosed:     StateDisconnected,
	},
	StateRegistered: {
		EventSuperseded: StateAwaitingRegistration,
		EventClosed:     StateDisconnected,
	},
}

// Next returns the state reached from s on e.
func Next(s State, e Event) (State, error) {
	if e == EventStop {
		return StateDisconnected, nil
	}
	if to, ok := transitions[s][e]; ok {
		return to, nil
	}
	return s, fmt.Errorf("invalid transition: %s on %s", s, e)
}

// FSM holds a State and applies the transition table. It is safe for
// concurrent use.
type FSM struct {
	mu       sync.Mutex
	state    State
	onChange func(from, to State)
}

// NewFSM starts in StateDisconnected. onChange, if set, runs after every
// transition that changes the state, outside the FSM's lock.
func NewFSM(onChange func(from, to State)) *FSM {
	return &FSM{state: StateDisconnected, onChange: onChange}
}

// State returns the current state.
func (f *FSM) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fire applies e. Invalid transitions leave the state unchanged.
func (f *FSM) Fire(e Event) (State, error) {
	f.mu.Lock()
	from := f.state
	to, err := Next(from, e)
	if err != nil {
		f.mu.Unlock()
		return from, err
	}
	f.state = to
	f.mu.Unlock()

	if to != from && f.onChange != nil {
		f.onChange(from, to)
	}
	return to, nil
}
