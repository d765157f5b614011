package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harborworks/marinedesk/internal/directory"
	"github.com/harborworks/marinedesk/internal/identity"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "directory.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestPutGetUserRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.August, 12, 9, 30, 0, 0, time.UTC)
	input := directory.User{
		ID:          "surveyor-1",
		DisplayName: "Ada Marine Surveys",
		Role:        identity.RoleSurveyor,
		Status:      directory.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.PutUser(context.Background(), input); err != nil {
		t.Fatalf("put user: %v", err)
	}

	got, err := store.GetUser(context.Background(), "surveyor-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Role != identity.RoleSurveyor {
		t.Fatalf("role = %v, want %v", got.Role, identity.RoleSurveyor)
	}
	if !got.IsActive() {
		t.Fatal("expected active user")
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}
}

func TestPutUserUpsertsStatus(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	user := directory.User{
		ID:          "cargo-1",
		DisplayName: "Harbor Cargo Co",
		Role:        identity.RoleCargoManager,
		Status:      directory.UserStatusActive,
	}
	if err := store.PutUser(context.Background(), user); err != nil {
		t.Fatalf("put user: %v", err)
	}
	user.Status = directory.UserStatusInactive
	if err := store.PutUser(context.Background(), user); err != nil {
		t.Fatalf("update user: %v", err)
	}

	got, err := store.GetUser(context.Background(), "cargo-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.IsActive() {
		t.Fatal("expected deactivated user")
	}
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetUser(context.Background(), "missing")
	if !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, directory.ErrNotFound)
	}
}

func TestPutGetVesselRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.August, 12, 10, 0, 0, 0, time.UTC)
	input := directory.Vessel{
		ID:               "vessel-1",
		Name:             "MV Aurora",
		OwnerID:          "owner-1",
		ShipManagementID: "mgmt-1",
		VesselType:       "bulk_carrier",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := store.PutVessel(context.Background(), input); err != nil {
		t.Fatalf("put vessel: %v", err)
	}

	got, err := store.GetVessel(context.Background(), "vessel-1")
	if err != nil {
		t.Fatalf("get vessel: %v", err)
	}
	if got.OwnerID != "owner-1" {
		t.Fatalf("owner_id = %q, want %q", got.OwnerID, "owner-1")
	}
	if got.VesselType != "bulk_carrier" {
		t.Fatalf("vessel_type = %q, want %q", got.VesselType, "bulk_carrier")
	}
}

func TestGetVesselNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetVessel(context.Background(), "missing")
	if !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, directory.ErrNotFound)
	}
}

func TestListVesselsByOwner(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for _, id := range []string{"vessel-a", "vessel-b"} {
		if err := store.PutVessel(context.Background(), directory.Vessel{
			ID:      id,
			Name:    "Vessel " + id,
			OwnerID: "owner-7",
		}); err != nil {
			t.Fatalf("put vessel %s: %v", id, err)
		}
	}
	if err := store.PutVessel(context.Background(), directory.Vessel{
		ID:      "vessel-c",
		Name:    "Other",
		OwnerID: "owner-8",
	}); err != nil {
		t.Fatalf("put vessel: %v", err)
	}

	vessels, err := store.ListVesselsByOwner(context.Background(), "owner-7")
	if err != nil {
		t.Fatalf("list vessels: %v", err)
	}
	if len(vessels) != 2 {
		t.Fatalf("vessels len = %d, want 2", len(vessels))
	}
	if vessels[0].ID != "vessel-a" || vessels[1].ID != "vessel-b" {
		t.Fatalf("unexpected order: %q, %q", vessels[0].ID, vessels[1].ID)
	}
}
