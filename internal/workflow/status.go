package workflow

import "strings"

// Status represents the decision lifecycle status of a workflow record.
type Status int

const (
	// StatusUnspecified represents an invalid or corrupted status.
	StatusUnspecified Status = iota
	// StatusPending indicates the record awaits the target's decision.
	StatusPending
	// StatusAccepted indicates the target accepted the record.
	StatusAccepted
	// StatusDeclined indicates the target declined the record.
	StatusDeclined
)

// Decision is an accept/decline verdict by the record's target.
type Decision int

const (
	// DecisionUnspecified represents an invalid decision.
	DecisionUnspecified Decision = iota
	// DecisionAccept transitions a pending record to accepted.
	DecisionAccept
	// DecisionDecline transitions a pending record to declined.
	DecisionDecline
)

// StatusLabel returns the string label for a status.
func StatusLabel(status Status) string {
	switch status {
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusDeclined:
		return "declined"
	default:
		return "unspecified"
	}
}

// StatusFromLabel converts a status label to a Status value.
// Unrecognized labels map to StatusUnspecified; callers must treat that as
// data corruption, never coerce it to a valid status.
func StatusFromLabel(label string) Status {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "pending":
		return StatusPending
	case "accepted":
		return StatusAccepted
	case "declined":
		return StatusDeclined
	default:
		return StatusUnspecified
	}
}

// DecisionLabel returns the string label for a decision.
func DecisionLabel(decision Decision) string {
	switch decision {
	case DecisionAccept:
		return "accept"
	case DecisionDecline:
		return "decline"
	default:
		return "unspecified"
	}
}

// DecisionFromLabel converts a decision label to a Decision value.
func DecisionFromLabel(label string) Decision {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "accept":
		return DecisionAccept
	case "decline":
		return DecisionDecline
	default:
		return DecisionUnspecified
	}
}
