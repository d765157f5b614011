package workflow

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/harborworks/marinedesk/internal/errors"
	"github.com/harborworks/marinedesk/internal/platform/id"
)

var (
	// ErrEmptyTitle indicates a missing payload title.
	ErrEmptyTitle = apperrors.New(apperrors.CodeWorkflowEmptyTitle, "title is required")
	// ErrEmptyTargetID indicates a missing target reference.
	ErrEmptyTargetID = apperrors.New(apperrors.CodeWorkflowEmptyTargetID, "target id is required")
	// ErrEmptyVesselRef indicates a record without a vessel reference.
	ErrEmptyVesselRef = apperrors.New(apperrors.CodeWorkflowEmptyVesselRef, "vessel reference is required")
	// ErrAlreadyDecided indicates a decide call on a non-pending record.
	ErrAlreadyDecided = apperrors.New(apperrors.CodeAlreadyDecided, "record is already decided")
	// ErrNotAccepted indicates an assign call on a non-accepted record.
	ErrNotAccepted = apperrors.New(apperrors.CodeNotAccepted, "record is not accepted")
	// ErrInvalidDecision indicates an unrecognized decision verdict.
	ErrInvalidDecision = apperrors.New(apperrors.CodeWorkflowInvalidDecision, "decision must be accept or decline")
	// ErrEmptyAssignment indicates an assignment with no content.
	ErrEmptyAssignment = apperrors.New(apperrors.CodeWorkflowEmptyAssignment, "assignment payload is required")
)

// Payload holds the descriptive fields of a workflow record. Editing any of
// them on a decided record forces the counterpart to re-review.
type Payload struct {
	Title       string
	Details     string
	ServiceType string
	Location    string
	// ShipType is denormalized from the referenced vessel when available.
	ShipType string
}

// Assignment is supplementary data attached by the initiator after acceptance.
type Assignment struct {
	Location     string
	Notes        string
	PhotoURLs    []string
	DocumentURLs []string
	AssignedAt   time.Time
}

func (a Assignment) isEmpty() bool {
	return strings.TrimSpace(a.Location) == "" &&
		strings.TrimSpace(a.Notes) == "" &&
		len(a.PhotoURLs) == 0 &&
		len(a.DocumentURLs) == 0
}

// Record is one workflow record of any family.
type Record struct {
	ID     string
	Family Family

	// InitiatorID created the record and may edit, assign and delete it.
	InitiatorID string
	// TargetID is the identity whose accept/decline decision the record awaits.
	TargetID string
	// VesselID references a directory vessel; may be empty for bookings.
	VesselID string
	// VesselName is a free-text vessel reference for bookings whose vessel is
	// not yet in the directory.
	VesselName string
	// OwnerID is derived from the vessel record, never from caller input.
	OwnerID string

	Status  Status
	Payload Payload

	DecidedBy    string
	DecidedAt    time.Time
	DecisionNote string

	// Assignment is present only while the record is accepted.
	Assignment *Assignment

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRecordInput describes the validated metadata needed to create a record.
// Reference resolution (vessel ownership, target role and activity) happens in
// the engine before this constructor runs.
type CreateRecordInput struct {
	InitiatorID string
	TargetID    string
	VesselID    string
	VesselName  string
	OwnerID     string
	Payload     Payload
}

// NewRecord creates a pending record with a generated ID and timestamps.
func NewRecord(cfg Config, input CreateRecordInput, now func() time.Time, idGenerator func() (string, error)) (Record, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateRecordInput(cfg, input)
	if err != nil {
		return Record{}, err
	}

	recordID, err := idGenerator()
	if err != nil {
		return Record{}, fmt.Errorf("generate record id: %w", err)
	}

	createdAt := now().UTC()
	return Record{
		ID:          recordID,
		Family:      cfg.Family,
		InitiatorID: normalized.InitiatorID,
		TargetID:    normalized.TargetID,
		VesselID:    normalized.VesselID,
		VesselName:  normalized.VesselName,
		OwnerID:     normalized.OwnerID,
		Status:      StatusPending,
		Payload:     normalized.Payload,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// NormalizeCreateRecordInput trims and validates record creation metadata.
func NormalizeCreateRecordInput(cfg Config, input CreateRecordInput) (CreateRecordInput, error) {
	input.InitiatorID = strings.TrimSpace(input.InitiatorID)
	input.TargetID = strings.TrimSpace(input.TargetID)
	input.VesselID = strings.TrimSpace(input.VesselID)
	input.VesselName = strings.TrimSpace(input.VesselName)
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	input.Payload = normalizePayload(input.Payload)

	if input.TargetID == "" {
		return CreateRecordInput{}, ErrEmptyTargetID
	}
	if input.Payload.Title == "" {
		return CreateRecordInput{}, ErrEmptyTitle
	}
	if cfg.RequiresVessel && input.VesselID == "" {
		return CreateRecordInput{}, ErrEmptyVesselRef
	}
	if !cfg.RequiresVessel && input.VesselID == "" && input.VesselName == "" {
		return CreateRecordInput{}, ErrEmptyVesselRef
	}
	return input, nil
}

func normalizePayload(payload Payload) Payload {
	payload.Title = strings.TrimSpace(payload.Title)
	payload.Details = strings.TrimSpace(payload.Details)
	payload.ServiceType = strings.TrimSpace(payload.ServiceType)
	payload.Location = strings.TrimSpace(payload.Location)
	payload.ShipType = strings.TrimSpace(payload.ShipType)
	return payload
}

// Decide applies an accept/decline verdict to a pending record.
// Deciding a non-pending record is rejected rather than silently ignored.
func Decide(record Record, decision Decision, decidedBy string, note string, now func() time.Time) (Record, error) {
	if decision != DecisionAccept && decision != DecisionDecline {
		return Record{}, ErrInvalidDecision
	}
	if record.Status != StatusPending {
		return Record{}, ErrAlreadyDecided
	}
	if now == nil {
		now = time.Now
	}

	if decision == DecisionAccept {
		record.Status = StatusAccepted
	} else {
		record.Status = StatusDeclined
	}
	decidedAt := now().UTC()
	record.DecidedBy = strings.TrimSpace(decidedBy)
	record.DecidedAt = decidedAt
	record.DecisionNote = strings.TrimSpace(note)
	record.UpdatedAt = decidedAt
	return record, nil
}

// Assign attaches assignment data to an accepted record. Re-assignment
// overwrites the prior payload wholesale; last write wins.
func Assign(record Record, assignment Assignment, now func() time.Time) (Record, error) {
	if record.Status != StatusAccepted {
		return Record{}, ErrNotAccepted
	}
	if assignment.isEmpty() {
		return Record{}, ErrEmptyAssignment
	}
	if now == nil {
		now = time.Now
	}

	assignedAt := now().UTC()
	assignment.Location = strings.TrimSpace(assignment.Location)
	assignment.Notes = strings.TrimSpace(assignment.Notes)
	assignment.AssignedAt = assignedAt
	record.Assignment = &assignment
	record.UpdatedAt = assignedAt
	return record, nil
}

// EditRecordInput describes an initiator edit of an existing record.
type EditRecordInput struct {
	TargetID   string
	VesselID   string
	VesselName string
	Payload    Payload
}

// ApplyEdit overwrites the record's payload and references, resetting any
// prior decision so the counterpart must re-review. A pending record stays
// pending; an accepted or declined record drops its decision fields and any
// assignment unconditionally.
func ApplyEdit(cfg Config, record Record, input EditRecordInput, now func() time.Time) (Record, error) {
	if now == nil {
		now = time.Now
	}

	normalized, err := NormalizeCreateRecordInput(cfg, CreateRecordInput{
		InitiatorID: record.InitiatorID,
		TargetID:    input.TargetID,
		VesselID:    input.VesselID,
		VesselName:  input.VesselName,
		OwnerID:     record.OwnerID,
		Payload:     input.Payload,
	})
	if err != nil {
		return Record{}, err
	}

	record.TargetID = normalized.TargetID
	record.VesselID = normalized.VesselID
	record.VesselName = normalized.VesselName
	record.Payload = normalized.Payload
	record.Status = StatusPending
	record.DecidedBy = ""
	record.DecidedAt = time.Time{}
	record.DecisionNote = ""
	record.Assignment = nil
	record.UpdatedAt = now().UTC()
	return record, nil
}

// CheckInvariants verifies the decision-axis invariants of a record. A
// violation means persisted data is corrupt.
func CheckInvariants(record Record) error {
	switch record.Status {
	case StatusPending:
		if record.DecidedBy != "" || !record.DecidedAt.IsZero() || record.DecisionNote != "" {
			return apperrors.New(apperrors.CodeStatusCorrupt, "pending record carries decision fields")
		}
		if record.Assignment != nil {
			return apperrors.New(apperrors.CodeStatusCorrupt, "pending record carries an assignment")
		}
	case StatusAccepted, StatusDeclined:
		if record.DecidedBy == "" || record.DecidedAt.IsZero() {
			return apperrors.New(apperrors.CodeStatusCorrupt, "decided record is missing decision fields")
		}
		if record.Status == StatusDeclined && record.Assignment != nil {
			return apperrors.New(apperrors.CodeStatusCorrupt, "declined record carries an assignment")
		}
	default:
		return apperrors.WithMetadata(
			apperrors.CodeStatusCorrupt,
			"record status is not recognized",
			map[string]string{"RecordID": record.ID},
		)
	}
	return nil
}
