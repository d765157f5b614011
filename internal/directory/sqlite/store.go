// Package sqlite provides a SQLite-backed directory store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harborworks/marinedesk/internal/directory"
	"github.com/harborworks/marinedesk/internal/directory/sqlite/migrations"
	"github.com/harborworks/marinedesk/internal/identity"
	"github.com/harborworks/marinedesk/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store persists directory users and vessels in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite directory store and applies embedded migrations.
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

// PutUser inserts or replaces one user record.
func (s *Store) PutUser(ctx context.Context, user directory.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID := strings.TrimSpace(user.ID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if user.Role == identity.RoleUnspecified {
		return fmt.Errorf("user role is required")
	}
	createdAt := user.CreatedAt.UTC()
	updatedAt := user.UpdatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	status := user.Status
	if status == directory.UserStatusUnspecified {
		status = directory.UserStatusActive
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (id, display_name, role, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   display_name = excluded.display_name,
		   role = excluded.role,
		   status = excluded.status,
		   updated_at = excluded.updated_at`,
		userID,
		strings.TrimSpace(user.DisplayName),
		user.Role.Label(),
		directory.UserStatusLabel(status),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUser returns one user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (directory.User, error) {
	if err := ctx.Err(); err != nil {
		return directory.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return directory.User{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return directory.User{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, display_name, role, status, created_at, updated_at
		   FROM users
		  WHERE id = ?`,
		id,
	)

	var user directory.User
	var role string
	var status string
	var createdAt int64
	var updatedAt int64
	err := row.Scan(&user.ID, &user.DisplayName, &role, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return directory.User{}, directory.ErrNotFound
		}
		return directory.User{}, fmt.Errorf("get user: %w", err)
	}

	user.Role = identity.RoleFromLabel(role)
	user.Status = directory.UserStatusFromLabel(status)
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}

// PutVessel inserts or replaces one vessel record.
func (s *Store) PutVessel(ctx context.Context, vessel directory.Vessel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	vesselID := strings.TrimSpace(vessel.ID)
	if vesselID == "" {
		return fmt.Errorf("vessel id is required")
	}
	ownerID := strings.TrimSpace(vessel.OwnerID)
	if ownerID == "" {
		return fmt.Errorf("vessel owner id is required")
	}
	createdAt := vessel.CreatedAt.UTC()
	updatedAt := vessel.UpdatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO vessels (id, name, owner_id, ship_management_id, vessel_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   owner_id = excluded.owner_id,
		   ship_management_id = excluded.ship_management_id,
		   vessel_type = excluded.vessel_type,
		   updated_at = excluded.updated_at`,
		vesselID,
		strings.TrimSpace(vessel.Name),
		ownerID,
		strings.TrimSpace(vessel.ShipManagementID),
		strings.TrimSpace(vessel.VesselType),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put vessel: %w", err)
	}
	return nil
}

// GetVessel returns one vessel by ID.
func (s *Store) GetVessel(ctx context.Context, id string) (directory.Vessel, error) {
	if err := ctx.Err(); err != nil {
		return directory.Vessel{}, err
	}
	if s == nil || s.sqlDB == nil {
		return directory.Vessel{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return directory.Vessel{}, fmt.Errorf("vessel id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, owner_id, ship_management_id, vessel_type, created_at, updated_at
		   FROM vessels
		  WHERE id = ?`,
		id,
	)

	var vessel directory.Vessel
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&vessel.ID,
		&vessel.Name,
		&vessel.OwnerID,
		&vessel.ShipManagementID,
		&vessel.VesselType,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return directory.Vessel{}, directory.ErrNotFound
		}
		return directory.Vessel{}, fmt.Errorf("get vessel: %w", err)
	}

	vessel.CreatedAt = fromMillis(createdAt)
	vessel.UpdatedAt = fromMillis(updatedAt)
	return vessel, nil
}

// ListVesselsByOwner returns every vessel owned by the given identity.
func (s *Store) ListVesselsByOwner(ctx context.Context, ownerID string) ([]directory.Vessel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, owner_id, ship_management_id, vessel_type, created_at, updated_at
		   FROM vessels
		  WHERE owner_id = ?
		  ORDER BY id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list vessels: %w", err)
	}
	defer rows.Close()

	var vessels []directory.Vessel
	for rows.Next() {
		var vessel directory.Vessel
		var createdAt int64
		var updatedAt int64
		if err := rows.Scan(
			&vessel.ID,
			&vessel.Name,
			&vessel.OwnerID,
			&vessel.ShipManagementID,
			&vessel.VesselType,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("list vessels: %w", err)
		}
		vessel.CreatedAt = fromMillis(createdAt)
		vessel.UpdatedAt = fromMillis(updatedAt)
		vessels = append(vessels, vessel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vessels: %w", err)
	}
	return vessels, nil
}

var _ directory.Directory = (*Store)(nil)
