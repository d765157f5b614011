// Package storage defines persistence contracts for workflow records.
package storage

import (
	"context"
	"errors"

	"github.com/harborworks/marinedesk/internal/workflow"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a record with the same ID already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// ListFilter narrows a record listing. ScopePartyID is the non-negotiable
// visibility restriction derived from the caller identity; the remaining
// fields are caller-supplied refinements that can only narrow further.
type ListFilter struct {
	Family workflow.Family
	// ScopePartyID restricts results to records where the party is initiator
	// or target. Empty means unrestricted (admin callers only).
	ScopePartyID string

	Status        workflow.Status
	CounterpartID string
	VesselID      string

	PageSize  int
	PageToken string
}

// RecordPage is one page of workflow records.
type RecordPage struct {
	Records       []workflow.Record
	NextPageToken string
}

// RecordStore persists workflow records for every family.
type RecordStore interface {
	CreateRecord(ctx context.Context, record workflow.Record) error
	GetRecord(ctx context.Context, family workflow.Family, id string) (workflow.Record, error)
	UpdateRecord(ctx context.Context, record workflow.Record) error
	DeleteRecord(ctx context.Context, family workflow.Family, id string) error
	ListRecords(ctx context.Context, filter ListFilter) (RecordPage, error)
}
