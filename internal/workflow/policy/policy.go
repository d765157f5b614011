// Package policy provides authorization decisions for workflow operations.
//
// Rules are table-driven over a closed operation set so adding a role or an
// operation is a localized change rather than a sweep of string comparisons.
package policy

import (
	"github.com/harborworks/marinedesk/internal/identity"
	"github.com/harborworks/marinedesk/internal/workflow"
)

// Operation is the closed set of workflow operations subject to authorization.
type Operation int

const (
	// OpCreate creates a new record.
	OpCreate Operation = iota + 1
	// OpRead reads a single record.
	OpRead
	// OpList lists records with caller filters.
	OpList
	// OpUpdate edits a record's payload and references.
	OpUpdate
	// OpDecide accepts or declines a pending record.
	OpDecide
	// OpAssign attaches assignment data to an accepted record.
	OpAssign
	// OpDelete removes a record.
	OpDelete
)

// party names the record party an operation is reserved to.
type party int

const (
	partyInitiator party = iota + 1
	partyTarget
	partyEither
)

// rules maps each operation to the record party allowed to perform it.
// Admin bypasses these ownership rules; referential validity is checked
// separately by the engine and binds admin too.
var rules = map[Operation]party{
	OpCreate: partyInitiator,
	OpRead:   partyEither,
	OpList:   partyEither,
	OpUpdate: partyInitiator,
	OpDecide: partyTarget,
	OpAssign: partyInitiator,
	OpDelete: partyInitiator,
}

// CanCreate reports whether the actor may create a record of the family.
func CanCreate(actor identity.Identity, cfg workflow.Config) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == cfg.InitiatorRole
}

// Can reports whether the actor may perform the operation on the record.
// OpCreate has no record; use CanCreate instead.
func Can(actor identity.Identity, op Operation, record workflow.Record) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.ID == "" {
		return false
	}

	allowed, ok := rules[op]
	if !ok || op == OpCreate {
		return false
	}
	switch allowed {
	case partyInitiator:
		return actor.ID == record.InitiatorID
	case partyTarget:
		return actor.ID == record.TargetID
	case partyEither:
		return actor.ID == record.InitiatorID || actor.ID == record.TargetID
	default:
		return false
	}
}

// Scope is the query-level visibility restriction for list operations.
type Scope struct {
	// All is true only for admin callers.
	All bool
	// PartyID restricts results to records where the caller is initiator or
	// target. Caller-supplied filters never relax this restriction.
	PartyID string
}

// ListScope returns the visibility scope for the actor.
func ListScope(actor identity.Identity) Scope {
	if actor.IsAdmin() {
		return Scope{All: true}
	}
	return Scope{PartyID: actor.ID}
}
