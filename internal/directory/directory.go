// Package directory provides read-only Vessel and User lookups used to
// validate workflow record references.
package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/harborworks/marinedesk/internal/identity"
)

// ErrNotFound indicates a requested directory record is missing.
var ErrNotFound = errors.New("directory record not found")

// UserStatus represents the activation state of a directory user.
type UserStatus int

const (
	// UserStatusUnspecified represents an invalid user status.
	UserStatusUnspecified UserStatus = iota
	// UserStatusActive indicates the user may be targeted by new bookings.
	UserStatusActive
	// UserStatusInactive indicates the user is deactivated.
	UserStatusInactive
)

// Vessel is a registered vessel record. The workflow engine reads vessels to
// validate references and derive ownership; it never mutates them.
type Vessel struct {
	ID               string
	Name             string
	OwnerID          string
	ShipManagementID string
	VesselType       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// User is a directory account record.
type User struct {
	ID          string
	DisplayName string
	Role        identity.Role
	Status      UserStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the user may be targeted by a new booking.
func (u User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Directory is the read-only lookup contract consumed by the workflow engine.
type Directory interface {
	GetVessel(ctx context.Context, id string) (Vessel, error)
	GetUser(ctx context.Context, id string) (User, error)
}

// UserStatusLabel returns the string label for a user status.
func UserStatusLabel(status UserStatus) string {
	switch status {
	case UserStatusActive:
		return "active"
	case UserStatusInactive:
		return "inactive"
	default:
		return "unspecified"
	}
}

// UserStatusFromLabel converts a status label to a UserStatus value.
func UserStatusFromLabel(label string) UserStatus {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "active":
		return UserStatusActive
	case "inactive":
		return UserStatusInactive
	default:
		return UserStatusUnspecified
	}
}
