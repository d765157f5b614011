// Package engine orchestrates workflow operations: authorization first,
// reference validation second, state transition third, persistence last.
// One engine instance serves one entity family.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harborworks/marinedesk/internal/directory"
	apperrors "github.com/harborworks/marinedesk/internal/errors"
	"github.com/harborworks/marinedesk/internal/identity"
	"github.com/harborworks/marinedesk/internal/platform/id"
	"github.com/harborworks/marinedesk/internal/workflow"
	"github.com/harborworks/marinedesk/internal/workflow/policy"
	"github.com/harborworks/marinedesk/internal/workflow/storage"
)

// Engine executes workflow operations for one entity family.
type Engine struct {
	cfg   workflow.Config
	store storage.RecordStore
	dir   directory.Directory
	now   func() time.Time
	newID func() (string, error)
}

// New creates an engine for the given family.
func New(family workflow.Family, store storage.RecordStore, dir directory.Directory) (*Engine, error) {
	return NewWithClock(family, store, dir, nil, nil)
}

// NewWithClock creates an engine with an injected clock and id generator.
func NewWithClock(family workflow.Family, store storage.RecordStore, dir directory.Directory, now func() time.Time, idGenerator func() (string, error)) (*Engine, error) {
	cfg, ok := workflow.ConfigFor(family)
	if !ok {
		return nil, fmt.Errorf("unknown workflow family %d", family)
	}
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if dir == nil {
		return nil, fmt.Errorf("directory is required")
	}
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	return &Engine{
		cfg:   cfg,
		store: store,
		dir:   dir,
		now:   now,
		newID: idGenerator,
	}, nil
}

// Family returns the entity family this engine serves.
func (e *Engine) Family() workflow.Family {
	return e.cfg.Family
}

// CreateInput describes a record creation request.
type CreateInput struct {
	TargetID   string
	VesselID   string
	VesselName string
	Payload    workflow.Payload
}

// Create validates references and creates a pending record.
func (e *Engine) Create(ctx context.Context, actor identity.Identity, input CreateInput) (workflow.Record, error) {
	if !policy.CanCreate(actor, e.cfg) {
		return workflow.Record{}, apperrors.New(apperrors.CodeForbidden, "caller may not create records of this family")
	}

	resolved := workflow.CreateRecordInput{
		InitiatorID: actor.ID,
		TargetID:    input.TargetID,
		VesselID:    input.VesselID,
		VesselName:  input.VesselName,
		Payload:     input.Payload,
	}

	if vesselID := strings.TrimSpace(input.VesselID); vesselID != "" || e.cfg.RequiresVessel {
		vessel, err := e.resolveVessel(ctx, vesselID)
		if err != nil {
			return workflow.Record{}, err
		}
		// Ownership is derived from the vessel record, never trusted from
		// caller input.
		resolved.OwnerID = vessel.OwnerID
		if e.cfg.RequiresVessel && !actor.IsAdmin() && actor.ID != vessel.OwnerID {
			return workflow.Record{}, apperrors.New(apperrors.CodeForbidden, "caller does not own the referenced vessel")
		}
		// Best-effort denormalization; a vessel without a type never blocks
		// creation.
		if resolved.Payload.ShipType == "" {
			resolved.Payload.ShipType = vessel.VesselType
		}
	}

	if err := e.validateTarget(ctx, input.TargetID); err != nil {
		return workflow.Record{}, err
	}

	record, err := workflow.NewRecord(e.cfg, resolved, e.now, e.newID)
	if err != nil {
		return workflow.Record{}, err
	}
	if err := e.store.CreateRecord(ctx, record); err != nil {
		return workflow.Record{}, wrapStoreError(err)
	}
	return record, nil
}

// Get returns one record visible to the actor.
func (e *Engine) Get(ctx context.Context, actor identity.Identity, recordID string) (workflow.Record, error) {
	record, err := e.loadRecord(ctx, recordID)
	if err != nil {
		return workflow.Record{}, err
	}
	if !policy.Can(actor, policy.OpRead, record) {
		return workflow.Record{}, apperrors.New(apperrors.CodeForbidden, "caller may not read this record")
	}
	return record, nil
}

// ListInput describes caller-supplied list refinements.
type ListInput struct {
	Status        workflow.Status
	CounterpartID string
	VesselID      string
	PageSize      int
	PageToken     string
}

// List returns records visible to the actor, folded with caller filters.
// Caller filters narrow the identity scope; they never relax it.
func (e *Engine) List(ctx context.Context, actor identity.Identity, input ListInput) (storage.RecordPage, error) {
	if actor.ID == "" && !actor.IsAdmin() {
		return storage.RecordPage{}, apperrors.New(apperrors.CodeForbidden, "caller identity is required")
	}
	scope := policy.ListScope(actor)
	page, err := e.store.ListRecords(ctx, storage.ListFilter{
		Family:        e.cfg.Family,
		ScopePartyID:  scope.PartyID,
		Status:        input.Status,
		CounterpartID: input.CounterpartID,
		VesselID:      input.VesselID,
		PageSize:      input.PageSize,
		PageToken:     input.PageToken,
	})
	if err != nil {
		return storage.RecordPage{}, wrapStoreError(err)
	}
	return page, nil
}

// UpdateInput describes an initiator edit of an existing record.
type UpdateInput struct {
	TargetID   string
	VesselID   string
	VesselName string
	Payload    workflow.Payload
}

// Update overwrites the record's payload and references. Any edit of a
// decided record resets it to pending so the counterpart must re-review.
func (e *Engine) Update(ctx context.Context, actor identity.Identity, recordID string, input UpdateInput) (workflow.Record, error) {
	record, err := e.loadRecord(ctx, recordID)
	if err != nil {
		return workflow.Record{}, err
	}
	if !policy.Can(actor, policy.OpUpdate, record) {
		return workflow.Record{}, apperrors.New(apperrors.CodeForbidden, "only the initiator may update this record")
	}

	edit := workflow.EditRecordInput{
		TargetID:   input.TargetID,
		VesselID:   input.VesselID,
		VesselName: input.VesselName,
		Payload:    input.Payload,
	}

	// A changed counterpart or vessel reference is re-validated exactly like
	// a fresh one.
	if newTarget := strings.TrimSpace(input.TargetID); newTarget != "" && newTarget != record.TargetID {
		if err := e.validateTarget(ctx, newTarget); err != nil {
			return workflow.Record{}, err
		}
	}
	if newVessel := strings.TrimSpace(input.VesselID); newVessel != "" && newVessel != record.VesselID {
		vessel, err := e.resolveVessel(ctx, newVessel)
		if err != nil {
			return workflow.Record{}, err
		}
		if e.cfg.RequiresVessel && !actor.IsAdmin() && actor.ID != vessel.OwnerID {
			return workflow.Record{}, apperrors.New(apperrors.CodeForbidden, "caller does not own the referenced vessel")
		}
		record.OwnerID = vessel.OwnerID
		if edit.Payload.ShipType == "" {
			edit.Payload.ShipType = vessel.VesselType
		}
	}

	updated, err := workflow.ApplyEdit(e.cfg, record, edit, e.now)
	if err != nil {
		return workflow.Record{}, err
	}
	if err := e.store.UpdateRecord(ctx, updated); err != nil {
		return workflow.Record{}, wrapStoreError(err)
	}
	return updated, nil
}

// Decide applies the target's accept/decline verdict to a pending record.
// The target's activity status is deliberately not re-checked here: a
// professional deactivated after booking creation may still decide.
func (e *Engine) Decide(ctx context.Context, actor identity.Identity, recordID string, decision workflow.Decision, note string) (workflow.Record, error) {
	record, err := e.loadRecord(ctx, recordID)
	if err != nil {
		return workflow.Record{}, err
	}
	if !policy.Can(actor, policy.OpDecide, record) {
		return workflow.Record{}, apperrors.New(apperrors.CodeForbidden, "only the target may decide this record")
	}

	decided, err := workflow.Decide(record, decision, actor.ID, note, e.now)
	if err != nil {
		return workflow.Record{}, err
	}
	if err := e.store.UpdateRecord(ctx, decided); err != nil {
		return workflow.Record{}, wrapStoreError(err)
	}
	return decided, nil
}

// Assign attaches assignment data to an accepted record. Re-assignment
// overwrites the prior payload; last write wins.
func (e *Engine) Assign(ctx context.Context, actor identity.Identity, recordID string, assignment workflow.Assignment) (workflow.Record, error) {
	record, err := e.loadRecord(ctx, recordID)
	if err != nil {
		return workflow.Record{}, err
	}
	if !policy.Can(actor, policy.OpAssign, record) {
		return workflow.Record{}, apperrors.New(apperrors.CodeForbidden, "only the initiator may assign this record")
	}

	assigned, err := workflow.Assign(record, assignment, e.now)
	if err != nil {
		return workflow.Record{}, err
	}
	if err := e.store.UpdateRecord(ctx, assigned); err != nil {
		return workflow.Record{}, wrapStoreError(err)
	}
	return assigned, nil
}

// Delete removes a record from any status. The business process treats
// deletion as a retraction, not a closing of a decided workflow.
func (e *Engine) Delete(ctx context.Context, actor identity.Identity, recordID string) error {
	record, err := e.loadRecord(ctx, recordID)
	if err != nil {
		return err
	}
	if !policy.Can(actor, policy.OpDelete, record) {
		return apperrors.New(apperrors.CodeForbidden, "only the initiator may delete this record")
	}
	if err := e.store.DeleteRecord(ctx, e.cfg.Family, record.ID); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

func (e *Engine) loadRecord(ctx context.Context, recordID string) (workflow.Record, error) {
	record, err := e.store.GetRecord(ctx, e.cfg.Family, recordID)
	if err != nil {
		return workflow.Record{}, wrapStoreError(err)
	}
	if err := workflow.CheckInvariants(record); err != nil {
		return workflow.Record{}, err
	}
	return record, nil
}

func (e *Engine) resolveVessel(ctx context.Context, vesselID string) (directory.Vessel, error) {
	if vesselID == "" {
		return directory.Vessel{}, workflow.ErrEmptyVesselRef
	}
	vessel, err := e.dir.GetVessel(ctx, vesselID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return directory.Vessel{}, apperrors.WithMetadata(
				apperrors.CodeInvalidReference,
				"referenced vessel does not exist",
				map[string]string{"VesselID": vesselID},
			)
		}
		return directory.Vessel{}, apperrors.Wrap(apperrors.CodeUnavailable, "vessel lookup failed", err)
	}
	return vessel, nil
}

func (e *Engine) validateTarget(ctx context.Context, targetID string) error {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return workflow.ErrEmptyTargetID
	}
	target, err := e.dir.GetUser(ctx, targetID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return apperrors.WithMetadata(
				apperrors.CodeInvalidReference,
				"referenced target does not exist",
				map[string]string{"TargetID": targetID},
			)
		}
		return apperrors.Wrap(apperrors.CodeUnavailable, "target lookup failed", err)
	}
	if target.Role != e.cfg.TargetRole {
		return apperrors.WithMetadata(
			apperrors.CodeInvalidRole,
			"target does not hold the expected role",
			map[string]string{"TargetID": targetID, "Role": target.Role.Label()},
		)
	}
	if e.cfg.TargetMustBeActive && !target.IsActive() {
		return apperrors.WithMetadata(
			apperrors.CodeInactiveTarget,
			"target professional is not active",
			map[string]string{"TargetID": targetID},
		)
	}
	return nil
}

func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "record not found")
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.CodeUnavailable, "record store failure", err)
}
