package flow

// State is the progress of a single run. Runs only move forward and stop at
// the first error.
type State int

const (
	StateIdle State = iota
	StateFunded
	StateAddressDerived
	StateSubmitted
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFunded:
		return "funded"
	case StateAddressDerived:
		return "address_derived"
	case StateSubmitted:
		return "submitted"
	case StateConfirmed:
		return "confirmed"
	}
	return "unknown"
}
