package identity

import "testing"

func TestRoleLabelRoundTrip(t *testing.T) {
	t.Parallel()

	roles := []Role{
		RoleAdmin,
		RoleShipManagement,
		RoleOwner,
		RoleSurveyor,
		RoleCargoManager,
		RoleUser,
	}
	for _, role := range roles {
		if got := RoleFromLabel(role.Label()); got != role {
			t.Fatalf("round trip for %v = %v", role, got)
		}
	}
}

func TestRoleFromLabelNormalizes(t *testing.T) {
	t.Parallel()

	if got := RoleFromLabel("  Ship_Management "); got != RoleShipManagement {
		t.Fatalf("role = %v, want %v", got, RoleShipManagement)
	}
	if got := RoleFromLabel("captain"); got != RoleUnspecified {
		t.Fatalf("role = %v, want %v", got, RoleUnspecified)
	}
	if got := RoleFromLabel(""); got != RoleUnspecified {
		t.Fatalf("role = %v, want %v", got, RoleUnspecified)
	}
}

func TestIsProfessional(t *testing.T) {
	t.Parallel()

	if !RoleSurveyor.IsProfessional() || !RoleCargoManager.IsProfessional() {
		t.Fatal("surveyor and cargo_manager are professionals")
	}
	if RoleOwner.IsProfessional() || RoleShipManagement.IsProfessional() || RoleAdmin.IsProfessional() {
		t.Fatal("non-professional role reported as professional")
	}
}

func TestIsAdmin(t *testing.T) {
	t.Parallel()

	if !(Identity{ID: "a", Role: RoleAdmin}).IsAdmin() {
		t.Fatal("admin identity not recognized")
	}
	if (Identity{ID: "b", Role: RoleOwner}).IsAdmin() {
		t.Fatal("owner identity reported as admin")
	}
}
