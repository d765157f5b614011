// Package sqlite provides a SQLite-backed workflow record store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/harborworks/marinedesk/internal/errors"
	"github.com/harborworks/marinedesk/internal/platform/storage/sqlitemigrate"
	"github.com/harborworks/marinedesk/internal/workflow"
	"github.com/harborworks/marinedesk/internal/workflow/storage"
	"github.com/harborworks/marinedesk/internal/workflow/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists workflow records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// assignmentRow is the persisted JSON shape of an assignment.
type assignmentRow struct {
	Location     string   `json:"location,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	PhotoURLs    []string `json:"photo_urls,omitempty"`
	DocumentURLs []string `json:"document_urls,omitempty"`
	AssignedAt   int64    `json:"assigned_at"`
}

// Open opens a SQLite workflow store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateRecord inserts one workflow record.
func (s *Store) CreateRecord(ctx context.Context, record workflow.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("record id is required")
	}
	if record.Family == workflow.FamilyUnspecified {
		return fmt.Errorf("record family is required")
	}

	assignmentJSON, err := marshalAssignment(record.Assignment)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO workflow_records (
		   id, family, initiator_id, target_id,
		   vessel_id, vessel_name, owner_id,
		   status, title, details, service_type, location, ship_type,
		   decided_by, decided_at, decision_note, assignment_json,
		   created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		workflow.FamilyLabel(record.Family),
		record.InitiatorID,
		record.TargetID,
		record.VesselID,
		record.VesselName,
		record.OwnerID,
		workflow.StatusLabel(record.Status),
		record.Payload.Title,
		record.Payload.Details,
		record.Payload.ServiceType,
		record.Payload.Location,
		record.Payload.ShipType,
		record.DecidedBy,
		toMillis(record.DecidedAt),
		record.DecisionNote,
		assignmentJSON,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create workflow record: %w", err)
	}
	return nil
}

// GetRecord returns one record by family and ID.
func (s *Store) GetRecord(ctx context.Context, family workflow.Family, id string) (workflow.Record, error) {
	if err := ctx.Err(); err != nil {
		return workflow.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return workflow.Record{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return workflow.Record{}, fmt.Errorf("record id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		selectColumns+` FROM workflow_records WHERE family = ? AND id = ?`,
		workflow.FamilyLabel(family),
		id,
	)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return workflow.Record{}, storage.ErrNotFound
		}
		return workflow.Record{}, err
	}
	return record, nil
}

// UpdateRecord replaces the stored state of one record.
func (s *Store) UpdateRecord(ctx context.Context, record workflow.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("record id is required")
	}

	assignmentJSON, err := marshalAssignment(record.Assignment)
	if err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE workflow_records SET
		   initiator_id = ?, target_id = ?,
		   vessel_id = ?, vessel_name = ?, owner_id = ?,
		   status = ?, title = ?, details = ?, service_type = ?, location = ?, ship_type = ?,
		   decided_by = ?, decided_at = ?, decision_note = ?, assignment_json = ?,
		   updated_at = ?
		 WHERE family = ? AND id = ?`,
		record.InitiatorID,
		record.TargetID,
		record.VesselID,
		record.VesselName,
		record.OwnerID,
		workflow.StatusLabel(record.Status),
		record.Payload.Title,
		record.Payload.Details,
		record.Payload.ServiceType,
		record.Payload.Location,
		record.Payload.ShipType,
		record.DecidedBy,
		toMillis(record.DecidedAt),
		record.DecisionNote,
		assignmentJSON,
		toMillis(record.UpdatedAt),
		workflow.FamilyLabel(record.Family),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update workflow record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update workflow record: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteRecord removes one record. Deletion is a hard delete from any status.
func (s *Store) DeleteRecord(ctx context.Context, family workflow.Family, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("record id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM workflow_records WHERE family = ? AND id = ?`,
		workflow.FamilyLabel(family),
		id,
	)
	if err != nil {
		return fmt.Errorf("delete workflow record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workflow record: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListRecords returns one page of records matching the filter.
func (s *Store) ListRecords(ctx context.Context, filter storage.ListFilter) (storage.RecordPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.RecordPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RecordPage{}, fmt.Errorf("storage is not configured")
	}
	if filter.Family == workflow.FamilyUnspecified {
		return storage.RecordPage{}, fmt.Errorf("family is required")
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	where := []string{"family = ?"}
	args := []any{workflow.FamilyLabel(filter.Family)}

	if scope := strings.TrimSpace(filter.ScopePartyID); scope != "" {
		where = append(where, "(initiator_id = ? OR target_id = ?)")
		args = append(args, scope, scope)
	}
	if filter.Status != workflow.StatusUnspecified {
		where = append(where, "status = ?")
		args = append(args, workflow.StatusLabel(filter.Status))
	}
	if counterpart := strings.TrimSpace(filter.CounterpartID); counterpart != "" {
		where = append(where, "(initiator_id = ? OR target_id = ?)")
		args = append(args, counterpart, counterpart)
	}
	if vesselID := strings.TrimSpace(filter.VesselID); vesselID != "" {
		where = append(where, "vessel_id = ?")
		args = append(args, vesselID)
	}
	if token := strings.TrimSpace(filter.PageToken); token != "" {
		where = append(where, "id > ?")
		args = append(args, token)
	}
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		selectColumns+` FROM workflow_records
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY id ASC
		 LIMIT ?`,
		args...,
	)
	if err != nil {
		return storage.RecordPage{}, fmt.Errorf("list workflow records: %w", err)
	}
	defer rows.Close()

	page := storage.RecordPage{
		Records: make([]workflow.Record, 0, pageSize),
	}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return storage.RecordPage{}, err
		}
		page.Records = append(page.Records, record)
	}
	if err := rows.Err(); err != nil {
		return storage.RecordPage{}, fmt.Errorf("list workflow records: %w", err)
	}
	if len(page.Records) > pageSize {
		page.NextPageToken = page.Records[pageSize-1].ID
		page.Records = page.Records[:pageSize]
	}
	return page, nil
}

const selectColumns = `SELECT id, family, initiator_id, target_id,
        vessel_id, vessel_name, owner_id,
        status, title, details, service_type, location, ship_type,
        decided_by, decided_at, decision_note, assignment_json,
        created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (workflow.Record, error) {
	var record workflow.Record
	var family string
	var status string
	var decidedAt int64
	var assignmentJSON string
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&record.ID,
		&family,
		&record.InitiatorID,
		&record.TargetID,
		&record.VesselID,
		&record.VesselName,
		&record.OwnerID,
		&status,
		&record.Payload.Title,
		&record.Payload.Details,
		&record.Payload.ServiceType,
		&record.Payload.Location,
		&record.Payload.ShipType,
		&record.DecidedBy,
		&decidedAt,
		&record.DecisionNote,
		&assignmentJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return workflow.Record{}, err
		}
		return workflow.Record{}, fmt.Errorf("scan workflow record: %w", err)
	}

	record.Family = workflow.FamilyFromLabel(family)
	record.Status = workflow.StatusFromLabel(status)
	if record.Status == workflow.StatusUnspecified {
		// An out-of-enum status means the stored data is corrupt. Refusing it
		// beats coercing it to pending and masking the corruption.
		return workflow.Record{}, apperrors.WithMetadata(
			apperrors.CodeStatusCorrupt,
			"persisted record status is not recognized",
			map[string]string{"RecordID": record.ID, "Status": status},
		)
	}
	record.DecidedAt = fromMillis(decidedAt)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)

	assignment, err := unmarshalAssignment(assignmentJSON)
	if err != nil {
		return workflow.Record{}, err
	}
	record.Assignment = assignment
	return record, nil
}

func marshalAssignment(assignment *workflow.Assignment) (string, error) {
	if assignment == nil {
		return "", nil
	}
	raw, err := json.Marshal(assignmentRow{
		Location:     assignment.Location,
		Notes:        assignment.Notes,
		PhotoURLs:    assignment.PhotoURLs,
		DocumentURLs: assignment.DocumentURLs,
		AssignedAt:   toMillis(assignment.AssignedAt),
	})
	if err != nil {
		return "", fmt.Errorf("marshal assignment: %w", err)
	}
	return string(raw), nil
}

func unmarshalAssignment(value string) (*workflow.Assignment, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var row assignmentRow
	if err := json.Unmarshal([]byte(value), &row); err != nil {
		return nil, fmt.Errorf("unmarshal assignment: %w", err)
	}
	return &workflow.Assignment{
		Location:     row.Location,
		Notes:        row.Notes,
		PhotoURLs:    row.PhotoURLs,
		DocumentURLs: row.DocumentURLs,
		AssignedAt:   fromMillis(row.AssignedAt),
	}, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "workflow_records")
}

var _ storage.RecordStore = (*Store)(nil)
