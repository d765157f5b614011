// Package identity defines the authenticated caller descriptor shared by all
// marinedesk operations. Authentication itself happens at the API boundary;
// the engine only ever sees an already-verified Identity.
package identity

import "strings"

// Role is the closed set of caller roles recognized by marinedesk.
type Role int

const (
	// RoleUnspecified represents an invalid or unknown role.
	RoleUnspecified Role = iota
	// RoleAdmin bypasses ownership scoping but not referential validity.
	RoleAdmin
	// RoleShipManagement brokers services between owners and professionals.
	RoleShipManagement
	// RoleOwner owns vessels and requests services for them.
	RoleOwner
	// RoleSurveyor performs vessel surveys on behalf of ship management.
	RoleSurveyor
	// RoleCargoManager manages cargo operations on behalf of ship management.
	RoleCargoManager
	// RoleUser is a plain account with no workflow privileges.
	RoleUser
)

// Identity describes an authenticated caller.
type Identity struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IsProfessional reports whether the role is targetable by bookings.
func (r Role) IsProfessional() bool {
	return r == RoleSurveyor || r == RoleCargoManager
}

// Label returns the string label for a role.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleShipManagement:
		return "ship_management"
	case RoleOwner:
		return "owner"
	case RoleSurveyor:
		return "surveyor"
	case RoleCargoManager:
		return "cargo_manager"
	case RoleUser:
		return "user"
	default:
		return "unspecified"
	}
}

// RoleFromLabel converts a role label to a Role value.
func RoleFromLabel(label string) Role {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "admin":
		return RoleAdmin
	case "ship_management":
		return RoleShipManagement
	case "owner":
		return RoleOwner
	case "surveyor":
		return RoleSurveyor
	case "cargo_manager":
		return RoleCargoManager
	case "user":
		return RoleUser
	default:
		return RoleUnspecified
	}
}
