// Package outcome provides the tri-state result reported by metric
// extraction and response fusion.
package outcome

import "fmt"

// State distinguishes "nothing to report" from "value computed" and "failed".
type State int

const (
	// Absent - No value applies (input too short, nothing detected, no duration).
	Absent State = iota
	// Present - A value was computed.
	Present
	// Failed - Processing failed and a fallback value was substituted.
	Failed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Absent:
		return "ABSENT"
	case Present:
		return "PRESENT"
	case Failed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsPresent returns true if a value was computed.
func (s State) IsPresent() bool {
	return s == Present
}

// Label returns the lowercase form used for metric labels and API payloads.
func (s State) Label() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
