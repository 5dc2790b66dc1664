package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eco-stations/internal/config"
	"github.com/iliyamo/eco-stations/internal/model"
	"github.com/iliyamo/eco-stations/internal/repository"
)

type fakeAdmins struct {
	existing  map[string]model.User
	lookupErr error
	created   []model.User
	password  string
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (model.User, error) {
	if f.lookupErr != nil {
		return model.User{}, f.lookupErr
	}
	if u, ok := f.existing[email]; ok {
		return u, nil
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeAdmins) Create(_ context.Context, username, email, password string, role model.Role, _ int) (uint64, error) {
	u := model.User{ID: uint64(len(f.created) + 1), Username: username, Email: email, Role: role}
	f.created = append(f.created, u)
	f.password = password
	if f.existing == nil {
		f.existing = map[string]model.User{}
	}
	f.existing[email] = u
	return u.ID, nil
}

func testBootstrapper(users AdminStore, migrate func(context.Context, *sql.DB) error) (*Bootstrapper, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	cfg := config.Config{
		AdminEmail:    config.DefaultAdminEmail,
		AdminUsername: config.DefaultAdminUsername,
		AdminPassword: config.DefaultAdminPassword,
		BcryptCost:    4,
	}
	b := NewBootstrapper(nil, users, cfg, log)
	b.Migrate = migrate
	return b, hook
}

func noMigrate(context.Context, *sql.DB) error { return nil }

func TestBootstrapSeedsAdminOnce(t *testing.T) {
	users := &fakeAdmins{}
	b, hook := testBootstrapper(users, noMigrate)

	require.NoError(t, b.Run(context.Background()))
	require.NoError(t, b.Run(context.Background()))

	require.Len(t, users.created, 1)
	assert.Equal(t, "superadmin", users.created[0].Username)
	assert.Equal(t, model.RoleAdmin, users.created[0].Role)
	assert.Equal(t, "admin123", users.password)

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "default password should be flagged")
}

func TestBootstrapSkipsSeedWhenMigrationFails(t *testing.T) {
	users := &fakeAdmins{}
	b, _ := testBootstrapper(users, func(context.Context, *sql.DB) error { return errors.New("no database") })

	err := b.Run(context.Background())
	assert.ErrorContains(t, err, "no database")
	assert.Empty(t, users.created)
}

func TestSeedAdminLookupError(t *testing.T) {
	users := &fakeAdmins{lookupErr: errors.New("timeout")}
	b, _ := testBootstrapper(users, noMigrate)

	assert.ErrorContains(t, b.SeedAdmin(context.Background()), "timeout")
	assert.Empty(t, users.created)
}
