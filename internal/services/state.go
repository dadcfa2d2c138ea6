package services

// State is a stage of an upload run.
type State int

const (
	StateIdle State = iota
	StateParsing
	StateValidating
	StateTunnelOpening
	StateInserting
	StateReporting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StateValidating:
		return "validating"
	case StateTunnelOpening:
		return "tunnel-opening"
	case StateInserting:
		return "inserting"
	case StateReporting:
		return "reporting"
	default:
		return "unknown"
	}
}
