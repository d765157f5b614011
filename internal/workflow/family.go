// Package workflow implements the shared booking/request lifecycle shared by
// service requests, surveyor bookings and cargo-manager bookings. One generic
// record type and state machine is parameterized by a family configuration
// instead of three parallel copies.
package workflow

import (
	"strings"

	"github.com/harborworks/marinedesk/internal/identity"
)

// Family identifies one workflow entity family.
type Family int

const (
	// FamilyUnspecified represents an invalid family.
	FamilyUnspecified Family = iota
	// FamilyServiceRequest is raised by a vessel owner toward ship management.
	FamilyServiceRequest
	// FamilySurveyorBooking is raised by ship management toward a surveyor.
	FamilySurveyorBooking
	// FamilyCargoBooking is raised by ship management toward a cargo manager.
	FamilyCargoBooking
)

// Config describes the fixed rules of one entity family.
type Config struct {
	Family        Family
	InitiatorRole identity.Role
	TargetRole    identity.Role
	// RequiresVessel marks families whose records must reference a directory
	// vessel. Families without it may carry a free-text vessel name instead.
	RequiresVessel bool
	// TargetMustBeActive marks families whose target must be an active
	// professional at creation time. Deactivation after creation does not
	// retroactively block decide or assign.
	TargetMustBeActive bool
}

var configs = map[Family]Config{
	FamilyServiceRequest: {
		Family:         FamilyServiceRequest,
		InitiatorRole:  identity.RoleOwner,
		TargetRole:     identity.RoleShipManagement,
		RequiresVessel: true,
	},
	FamilySurveyorBooking: {
		Family:             FamilySurveyorBooking,
		InitiatorRole:      identity.RoleShipManagement,
		TargetRole:         identity.RoleSurveyor,
		TargetMustBeActive: true,
	},
	FamilyCargoBooking: {
		Family:             FamilyCargoBooking,
		InitiatorRole:      identity.RoleShipManagement,
		TargetRole:         identity.RoleCargoManager,
		TargetMustBeActive: true,
	},
}

// ConfigFor returns the configuration for a family.
// The second return value reports whether the family is known.
func ConfigFor(family Family) (Config, bool) {
	cfg, ok := configs[family]
	return cfg, ok
}

// FamilyLabel returns the string label for a family.
func FamilyLabel(family Family) string {
	switch family {
	case FamilyServiceRequest:
		return "service_request"
	case FamilySurveyorBooking:
		return "surveyor_booking"
	case FamilyCargoBooking:
		return "cargo_booking"
	default:
		return "unspecified"
	}
}

// FamilyFromLabel converts a family label to a Family value.
func FamilyFromLabel(label string) Family {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "service_request":
		return FamilyServiceRequest
	case "surveyor_booking":
		return FamilySurveyorBooking
	case "cargo_booking":
		return FamilyCargoBooking
	default:
		return FamilyUnspecified
	}
}
