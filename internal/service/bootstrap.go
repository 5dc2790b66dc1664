package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/eco-stations/internal/config"
	"github.com/iliyamo/eco-stations/internal/database"
	"github.com/iliyamo/eco-stations/internal/model"
	"github.com/iliyamo/eco-stations/internal/repository"
)

// AdminStore is the part of the user repository the startup routine uses.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, username, email, password string, role model.Role, cost int) (uint64, error)
}

// Bootstrapper brings the schema up to date and makes sure an
// administrator account exists.  Running it again is harmless.
type Bootstrapper struct {
	DB      *sql.DB
	Users   AdminStore
	Config  config.Config
	Log     logrus.FieldLogger
	Migrate func(ctx context.Context, db *sql.DB) error
}

// NewBootstrapper wires the embedded goose migrations.
func NewBootstrapper(db *sql.DB, users AdminStore, cfg config.Config, log logrus.FieldLogger) *Bootstrapper {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bootstrapper{
		DB:      db,
		Users:   users,
		Config:  cfg,
		Log:     log.WithField("component", "bootstrap"),
		Migrate: database.Migrate,
	}
}

// Run applies pending migrations and then seeds the administrator.  The
// seed is skipped when migrations fail.
func (b *Bootstrapper) Run(ctx context.Context) error {
	if err := b.Migrate(ctx, b.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	b.Log.Info("schema is up to date")
	return b.SeedAdmin(ctx)
}

// SeedAdmin creates the configured administrator unless a user with its
// email already exists.
func (b *Bootstrapper) SeedAdmin(ctx context.Context) error {
	cfg := b.Config
	log := b.Log.WithField("email", cfg.AdminEmail)

	_, err := b.Users.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		log.Debug("administrator already present")
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("look up administrator: %w", err)
	}

	id, err := b.Users.Create(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("create administrator: %w", err)
	}
	log.WithField("user_id", id).Info("administrator account created")
	if cfg.UsesDefaultAdminPassword() {
		log.Warn("administrator uses the default password; set ADMIN_PASSWORD")
	}
	return nil
}
