// Package main seeds the directory database with users and vessels for
// local development.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harborworks/marinedesk/internal/directory"
	directorysqlite "github.com/harborworks/marinedesk/internal/directory/sqlite"
	"github.com/harborworks/marinedesk/internal/identity"
	"github.com/harborworks/marinedesk/internal/platform/config"
)

type seedEnv struct {
	DirectoryDBPath string `env:"MARINEDESK_DIRECTORY_DB_PATH"`
}

func main() {
	log.SetPrefix("marinedesk-seed: ")
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)

	var env seedEnv
	_ = config.ParseEnv(&env)
	if strings.TrimSpace(env.DirectoryDBPath) == "" {
		env.DirectoryDBPath = filepath.Join("data", "directory.db")
	}

	dbPath := flag.String("db", env.DirectoryDBPath, "directory database path")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		config.Exitf("create db dir: %v", err)
	}
	store, err := directorysqlite.Open(*dbPath)
	if err != nil {
		config.Exitf("open directory store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close directory store: %v", err)
		}
	}()

	ctx := context.Background()
	now := time.Now().UTC()

	users := []directory.User{
		{ID: "owner-aurora", DisplayName: "Aurora Shipping Ltd", Role: identity.RoleOwner, Status: directory.UserStatusActive},
		{ID: "mgmt-meridian", DisplayName: "Meridian Ship Management", Role: identity.RoleShipManagement, Status: directory.UserStatusActive},
		{ID: "surveyor-chen", DisplayName: "Chen Marine Surveys", Role: identity.RoleSurveyor, Status: directory.UserStatusActive},
		{ID: "surveyor-okafor", DisplayName: "Okafor Inspection Services", Role: identity.RoleSurveyor, Status: directory.UserStatusInactive},
		{ID: "cargo-baltic", DisplayName: "Baltic Cargo Partners", Role: identity.RoleCargoManager, Status: directory.UserStatusActive},
		{ID: "admin-ops", DisplayName: "Operations Admin", Role: identity.RoleAdmin, Status: directory.UserStatusActive},
	}
	for _, user := range users {
		user.CreatedAt = now
		user.UpdatedAt = now
		if err := store.PutUser(ctx, user); err != nil {
			config.Exitf("seed user %s: %v", user.ID, err)
		}
	}

	vessels := []directory.Vessel{
		{ID: "vessel-aurora", Name: "MV Aurora", OwnerID: "owner-aurora", ShipManagementID: "mgmt-meridian", VesselType: "bulk_carrier"},
		{ID: "vessel-horizon", Name: "MV Horizon", OwnerID: "owner-aurora", ShipManagementID: "mgmt-meridian", VesselType: "container_ship"},
	}
	for _, vessel := range vessels {
		vessel.CreatedAt = now
		vessel.UpdatedAt = now
		if err := store.PutVessel(ctx, vessel); err != nil {
			config.Exitf("seed vessel %s: %v", vessel.ID, err)
		}
	}

	log.Printf("seeded %d users and %d vessels into %s", len(users), len(vessels), *dbPath)
}
