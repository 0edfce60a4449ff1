package jsonl

import "strconv"

// State is the lifecycle of a Receiver or a Sender. Closed, Errored and
// Cancelled are terminal and mutually exclusive.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateClosed
	StateErrored
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	case StateCancelled:
		return "cancelled"
	default:
		return strconv.FormatInt(int64(s), 10)
	}
}

func (s State) Terminal() bool { return s >= StateClosed }

// transition moves *s to the target state unless *s is already terminal
func transition(s *State, to State) bool {
	if s.Terminal() {
		return false
	}
	*s = to
	return true
}
