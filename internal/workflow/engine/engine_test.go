package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/harborworks/marinedesk/internal/directory"
	apperrors "github.com/harborworks/marinedesk/internal/errors"
	"github.com/harborworks/marinedesk/internal/identity"
	"github.com/harborworks/marinedesk/internal/workflow"
	"github.com/harborworks/marinedesk/internal/workflow/storage"
)

type fakeDirectory struct {
	vessels map[string]directory.Vessel
	users   map[string]directory.User
	failing bool
}

func (f *fakeDirectory) GetVessel(_ context.Context, id string) (directory.Vessel, error) {
	if f.failing {
		return directory.Vessel{}, fmt.Errorf("directory unreachable")
	}
	vessel, ok := f.vessels[id]
	if !ok {
		return directory.Vessel{}, directory.ErrNotFound
	}
	return vessel, nil
}

func (f *fakeDirectory) GetUser(_ context.Context, id string) (directory.User, error) {
	if f.failing {
		return directory.User{}, fmt.Errorf("directory unreachable")
	}
	user, ok := f.users[id]
	if !ok {
		return directory.User{}, directory.ErrNotFound
	}
	return user, nil
}

type fakeStore struct {
	records map[string]workflow.Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]workflow.Record)}
}

func storeKey(family workflow.Family, id string) string {
	return workflow.FamilyLabel(family) + "/" + id
}

func (f *fakeStore) CreateRecord(_ context.Context, record workflow.Record) error {
	key := storeKey(record.Family, record.ID)
	if _, exists := f.records[key]; exists {
		return storage.ErrAlreadyExists
	}
	f.records[key] = record
	return nil
}

func (f *fakeStore) GetRecord(_ context.Context, family workflow.Family, id string) (workflow.Record, error) {
	record, ok := f.records[storeKey(family, id)]
	if !ok {
		return workflow.Record{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) UpdateRecord(_ context.Context, record workflow.Record) error {
	key := storeKey(record.Family, record.ID)
	if _, ok := f.records[key]; !ok {
		return storage.ErrNotFound
	}
	f.records[key] = record
	return nil
}

func (f *fakeStore) DeleteRecord(_ context.Context, family workflow.Family, id string) error {
	key := storeKey(family, id)
	if _, ok := f.records[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.records, key)
	return nil
}

func (f *fakeStore) ListRecords(_ context.Context, filter storage.ListFilter) (storage.RecordPage, error) {
	var page storage.RecordPage
	for _, record := range f.records {
		if record.Family != filter.Family {
			continue
		}
		if filter.ScopePartyID != "" &&
			record.InitiatorID != filter.ScopePartyID && record.TargetID != filter.ScopePartyID {
			continue
		}
		if filter.Status != workflow.StatusUnspecified && record.Status != filter.Status {
			continue
		}
		if filter.CounterpartID != "" &&
			record.InitiatorID != filter.CounterpartID && record.TargetID != filter.CounterpartID {
			continue
		}
		if filter.VesselID != "" && record.VesselID != filter.VesselID {
			continue
		}
		page.Records = append(page.Records, record)
	}
	return page, nil
}

var (
	ownerO    = identity.Identity{ID: "owner-o", Role: identity.RoleOwner}
	companyC  = identity.Identity{ID: "mgmt-c", Role: identity.RoleShipManagement}
	surveyorS = identity.Identity{ID: "surveyor-s", Role: identity.RoleSurveyor}
	cargoG    = identity.Identity{ID: "cargo-g", Role: identity.RoleCargoManager}
	adminA    = identity.Identity{ID: "admin-a", Role: identity.RoleAdmin}
)

func seededDirectory() *fakeDirectory {
	return &fakeDirectory{
		vessels: map[string]directory.Vessel{
			"vessel-v": {
				ID:         "vessel-v",
				Name:       "MV Aurora",
				OwnerID:    ownerO.ID,
				VesselType: "bulk_carrier",
			},
		},
		users: map[string]directory.User{
			companyC.ID:  {ID: companyC.ID, Role: identity.RoleShipManagement, Status: directory.UserStatusActive},
			surveyorS.ID: {ID: surveyorS.ID, Role: identity.RoleSurveyor, Status: directory.UserStatusActive},
			cargoG.ID:    {ID: cargoG.ID, Role: identity.RoleCargoManager, Status: directory.UserStatusActive},
			"surveyor-inactive": {
				ID: "surveyor-inactive", Role: identity.RoleSurveyor, Status: directory.UserStatusInactive,
			},
			"surveyor-s2": {ID: "surveyor-s2", Role: identity.RoleSurveyor, Status: directory.UserStatusActive},
		},
	}
}

func newTestEngine(t *testing.T, family workflow.Family, dir *fakeDirectory) (*Engine, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	clock := time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC)
	counter := 0
	eng, err := NewWithClock(family, store, dir,
		func() time.Time { return clock },
		func() (string, error) {
			counter++
			return fmt.Sprintf("record-%d", counter), nil
		},
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng, store
}

// Scenario A: owner O creates a service request for their vessel targeting
// ship-management company C.
func TestCreateServiceRequestDerivesOwnerFromVessel(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	record, err := eng.Create(context.Background(), ownerO, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "Dry dock survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.Status != workflow.StatusPending {
		t.Fatalf("status = %v, want %v", record.Status, workflow.StatusPending)
	}
	if record.OwnerID != ownerO.ID {
		t.Fatalf("owner = %q, want %q", record.OwnerID, ownerO.ID)
	}
	if record.InitiatorID != ownerO.ID || record.TargetID != companyC.ID {
		t.Fatalf("parties = %q/%q", record.InitiatorID, record.TargetID)
	}
	// Ship type is denormalized from the vessel record.
	if record.Payload.ShipType != "bulk_carrier" {
		t.Fatalf("ship_type = %q", record.Payload.ShipType)
	}

	// Round-trip through Get returns the validated references.
	got, err := eng.Get(context.Background(), ownerO, record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != workflow.StatusPending || got.OwnerID != ownerO.ID {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestCreateDeniedForWrongInitiatorRole(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	_, err := eng.Create(context.Background(), companyC, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "x"},
	})
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

func TestCreateDeniedWhenCallerDoesNotOwnVessel(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	otherOwner := identity.Identity{ID: "owner-x", Role: identity.RoleOwner}
	_, err := eng.Create(context.Background(), otherOwner, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "x"},
	})
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

func TestCreateAdminStillNeedsValidReferences(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	_, err := eng.Create(context.Background(), adminA, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-missing",
		Payload:  workflow.Payload{Title: "x"},
	})
	if !apperrors.IsCode(err, apperrors.CodeInvalidReference) {
		t.Fatalf("error = %v, want invalid reference", err)
	}
}

func TestCreateRejectsTargetWithWrongRole(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	_, err := eng.Create(context.Background(), ownerO, CreateInput{
		TargetID: surveyorS.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "x"},
	})
	if !apperrors.IsCode(err, apperrors.CodeInvalidRole) {
		t.Fatalf("error = %v, want invalid role", err)
	}
}

// Scenario C: booking an inactive surveyor fails and creates nothing.
func TestCreateBookingRejectsInactiveProfessional(t *testing.T) {
	t.Parallel()

	eng, store := newTestEngine(t, workflow.FamilySurveyorBooking, seededDirectory())
	_, err := eng.Create(context.Background(), companyC, CreateInput{
		TargetID:   "surveyor-inactive",
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "On-hire survey"},
	})
	if !apperrors.IsCode(err, apperrors.CodeInactiveTarget) {
		t.Fatalf("error = %v, want inactive target", err)
	}
	if len(store.records) != 0 {
		t.Fatalf("records created = %d, want 0", len(store.records))
	}
}

func TestCreateBookingWithFreeTextVessel(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilySurveyorBooking, seededDirectory())
	record, err := eng.Create(context.Background(), companyC, CreateInput{
		TargetID:   surveyorS.ID,
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "On-hire survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.VesselID != "" || record.VesselName != "MV Meridian" {
		t.Fatalf("vessel ref = %q/%q", record.VesselID, record.VesselName)
	}
}

func TestCreateWrapsDirectoryFailure(t *testing.T) {
	t.Parallel()

	dir := seededDirectory()
	dir.failing = true
	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, dir)
	_, err := eng.Create(context.Background(), ownerO, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "x"},
	})
	if !apperrors.IsCode(err, apperrors.CodeUnavailable) {
		t.Fatalf("error = %v, want unavailable", err)
	}
}

// Transition law: accept once, then any second decide is AlreadyDecided and
// state is unchanged.
func TestDecideTransitionLaw(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	record, err := eng.Create(context.Background(), ownerO, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "Dry dock survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	accepted, err := eng.Decide(context.Background(), companyC, record.ID, workflow.DecisionAccept, "confirmed")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if accepted.Status != workflow.StatusAccepted || accepted.DecidedBy != companyC.ID {
		t.Fatalf("decided = %+v", accepted)
	}

	for _, second := range []workflow.Decision{workflow.DecisionAccept, workflow.DecisionDecline} {
		if _, err := eng.Decide(context.Background(), companyC, record.ID, second, ""); !apperrors.IsCode(err, apperrors.CodeAlreadyDecided) {
			t.Fatalf("second decide error = %v, want already decided", err)
		}
	}
	got, err := eng.Get(context.Background(), companyC, record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != workflow.StatusAccepted {
		t.Fatalf("status changed to %v", got.Status)
	}
}

// Scenario B: a surveyor who is not the booking's target may not decide it.
func TestDecideDeniedForNonTarget(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilySurveyorBooking, seededDirectory())
	record, err := eng.Create(context.Background(), companyC, CreateInput{
		TargetID:   "surveyor-s2",
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "On-hire survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = eng.Decide(context.Background(), surveyorS, record.ID, workflow.DecisionAccept, "")
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

// A professional deactivated after creation may still decide; activity is
// checked at creation only.
func TestDecideAllowedAfterTargetDeactivation(t *testing.T) {
	t.Parallel()

	dir := seededDirectory()
	eng, _ := newTestEngine(t, workflow.FamilySurveyorBooking, dir)
	record, err := eng.Create(context.Background(), companyC, CreateInput{
		TargetID:   surveyorS.ID,
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "On-hire survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deactivated := dir.users[surveyorS.ID]
	deactivated.Status = directory.UserStatusInactive
	dir.users[surveyorS.ID] = deactivated

	if _, err := eng.Decide(context.Background(), surveyorS, record.ID, workflow.DecisionAccept, ""); err != nil {
		t.Fatalf("decide after deactivation: %v", err)
	}
}

// Scenario D: assign after decline is NotAccepted.
func TestAssignAfterDeclineRejected(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyCargoBooking, seededDirectory())
	record, err := eng.Create(context.Background(), companyC, CreateInput{
		TargetID:   cargoG.ID,
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "Cargo handling"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := eng.Decide(context.Background(), cargoG, record.ID, workflow.DecisionDecline, "fully booked"); err != nil {
		t.Fatalf("decline: %v", err)
	}

	_, err = eng.Assign(context.Background(), companyC, record.ID, workflow.Assignment{Notes: "crew standing by"})
	if !apperrors.IsCode(err, apperrors.CodeNotAccepted) {
		t.Fatalf("error = %v, want not accepted", err)
	}
}

func TestAssignOverwritesPriorAssignment(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilySurveyorBooking, seededDirectory())
	record, err := eng.Create(context.Background(), companyC, CreateInput{
		TargetID:   surveyorS.ID,
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "On-hire survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := eng.Decide(context.Background(), surveyorS, record.ID, workflow.DecisionAccept, ""); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := eng.Assign(context.Background(), companyC, record.ID, workflow.Assignment{
		PhotoURLs: []string{"https://cdn.example/hull.jpg"},
	}); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	assigned, err := eng.Assign(context.Background(), companyC, record.ID, workflow.Assignment{
		Notes: "rescheduled to Friday",
	})
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if len(assigned.Assignment.PhotoURLs) != 0 || assigned.Assignment.Notes != "rescheduled to Friday" {
		t.Fatalf("assignment = %+v", assigned.Assignment)
	}
}

func TestAssignDeniedForTarget(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilySurveyorBooking, seededDirectory())
	record, err := eng.Create(context.Background(), companyC, CreateInput{
		TargetID:   surveyorS.ID,
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "On-hire survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := eng.Decide(context.Background(), surveyorS, record.ID, workflow.DecisionAccept, ""); err != nil {
		t.Fatalf("accept: %v", err)
	}
	_, err = eng.Assign(context.Background(), surveyorS, record.ID, workflow.Assignment{Notes: "x"})
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

// Scenario E: editing an accepted record resets it to pending and clears the
// decision so the company must re-decide.
func TestUpdateResetsAcceptedRecord(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	record, err := eng.Create(context.Background(), ownerO, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "Dry dock survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := eng.Decide(context.Background(), companyC, record.ID, workflow.DecisionAccept, "ok"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	updated, err := eng.Update(context.Background(), ownerO, record.ID, UpdateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "Dry dock survey (extended scope)"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != workflow.StatusPending {
		t.Fatalf("status = %v, want %v", updated.Status, workflow.StatusPending)
	}
	if updated.DecidedBy != "" || !updated.DecidedAt.IsZero() || updated.DecisionNote != "" {
		t.Fatal("decision fields not cleared by edit")
	}

	// The company can re-decide the re-opened record.
	if _, err := eng.Decide(context.Background(), companyC, record.ID, workflow.DecisionDecline, "rescoped"); err != nil {
		t.Fatalf("re-decide: %v", err)
	}
}

func TestUpdateDeniedForTarget(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	record, err := eng.Create(context.Background(), ownerO, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "Dry dock survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = eng.Update(context.Background(), companyC, record.ID, UpdateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "hijacked"},
	})
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

func TestUpdateRevalidatesChangedTarget(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilySurveyorBooking, seededDirectory())
	record, err := eng.Create(context.Background(), companyC, CreateInput{
		TargetID:   surveyorS.ID,
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "On-hire survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = eng.Update(context.Background(), companyC, record.ID, UpdateInput{
		TargetID:   "surveyor-inactive",
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "On-hire survey"},
	})
	if !apperrors.IsCode(err, apperrors.CodeInactiveTarget) {
		t.Fatalf("error = %v, want inactive target", err)
	}

	_, err = eng.Update(context.Background(), companyC, record.ID, UpdateInput{
		TargetID:   "nobody",
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "On-hire survey"},
	})
	if !apperrors.IsCode(err, apperrors.CodeInvalidReference) {
		t.Fatalf("error = %v, want invalid reference", err)
	}
}

func TestDeleteAllowedFromAnyStatus(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	record, err := eng.Create(context.Background(), ownerO, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "Dry dock survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := eng.Decide(context.Background(), companyC, record.ID, workflow.DecisionAccept, ""); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := eng.Delete(context.Background(), ownerO, record.ID); err != nil {
		t.Fatalf("delete decided record: %v", err)
	}
	_, err = eng.Get(context.Background(), ownerO, record.ID)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestDeleteDeniedForTarget(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	record, err := eng.Create(context.Background(), ownerO, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "Dry dock survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := eng.Delete(context.Background(), companyC, record.ID); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

func TestGetDeniedForOutsider(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	record, err := eng.Create(context.Background(), ownerO, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "Dry dock survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	outsider := identity.Identity{ID: "owner-x", Role: identity.RoleOwner}
	if _, err := eng.Get(context.Background(), outsider, record.ID); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

// Scenario F: admin lists everything; a ship-management caller only sees
// records where they are a party.
func TestListScoping(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilySurveyorBooking, seededDirectory())
	if _, err := eng.Create(context.Background(), companyC, CreateInput{
		TargetID:   surveyorS.ID,
		VesselName: "MV Meridian",
		Payload:    workflow.Payload{Title: "Booking one"},
	}); err != nil {
		t.Fatalf("create one: %v", err)
	}
	otherCompany := identity.Identity{ID: "mgmt-x", Role: identity.RoleShipManagement}
	if _, err := eng.Create(context.Background(), otherCompany, CreateInput{
		TargetID:   "surveyor-s2",
		VesselName: "MV Horizon",
		Payload:    workflow.Payload{Title: "Booking two"},
	}); err != nil {
		t.Fatalf("create two: %v", err)
	}

	adminPage, err := eng.List(context.Background(), adminA, ListInput{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(adminPage.Records) != 2 {
		t.Fatalf("admin sees %d records, want 2", len(adminPage.Records))
	}

	companyPage, err := eng.List(context.Background(), companyC, ListInput{})
	if err != nil {
		t.Fatalf("company list: %v", err)
	}
	if len(companyPage.Records) != 1 || companyPage.Records[0].InitiatorID != companyC.ID {
		t.Fatalf("company page = %+v", companyPage.Records)
	}

	// A supplied counterpart filter cannot widen the scope.
	widened, err := eng.List(context.Background(), companyC, ListInput{CounterpartID: otherCompany.ID})
	if err != nil {
		t.Fatalf("widened list: %v", err)
	}
	if len(widened.Records) != 0 {
		t.Fatalf("widened page = %+v", widened.Records)
	}
}

func TestListRequiresIdentity(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, workflow.FamilyServiceRequest, seededDirectory())
	_, err := eng.List(context.Background(), identity.Identity{}, ListInput{})
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

func TestNewRejectsUnknownFamily(t *testing.T) {
	t.Parallel()

	_, err := New(workflow.FamilyUnspecified, newFakeStore(), seededDirectory())
	if err == nil {
		t.Fatal("expected unknown family error")
	}
}

func TestLoadRecordSurfacesCorruption(t *testing.T) {
	t.Parallel()

	dir := seededDirectory()
	eng, store := newTestEngine(t, workflow.FamilyServiceRequest, dir)
	record, err := eng.Create(context.Background(), ownerO, CreateInput{
		TargetID: companyC.ID,
		VesselID: "vessel-v",
		Payload:  workflow.Payload{Title: "Dry dock survey"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	corrupt := store.records[storeKey(workflow.FamilyServiceRequest, record.ID)]
	corrupt.Status = workflow.Status(42)
	store.records[storeKey(workflow.FamilyServiceRequest, record.ID)] = corrupt

	_, err = eng.Get(context.Background(), ownerO, record.ID)
	if !apperrors.IsCode(err, apperrors.CodeStatusCorrupt) {
		t.Fatalf("error = %v, want status corrupt", err)
	}
	if !errors.Is(err, apperrors.New(apperrors.CodeStatusCorrupt, "")) {
		t.Fatal("corrupt status should match by code")
	}
}
