package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/eventhub-auth/internal/config"
	"github.com/jrsteele09/eventhub-auth/users"
	"github.com/stretchr/testify/require"
)

type storeSettings struct {
	driver, dsn string
}

func (s storeSettings) GetDBDriver() string { return s.driver }
func (s storeSettings) GetDBDSN() string    { return s.dsn }

func TestOpenUserRepoMemory(t *testing.T) {
	repo, closeStore, err := openUserRepo(context.Background(), storeSettings{driver: config.DriverMemory})
	require.NoError(t, err)
	defer closeStore()

	require.NoError(t, repo.Create(context.Background(), &users.User{Email: "a@x.io", Role: users.RoleUser}))
}

func TestOpenUserRepoSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "auth.db")
	repo, closeStore, err := openUserRepo(context.Background(), storeSettings{driver: config.DriverSQLite, dsn: dsn})
	require.NoError(t, err)
	defer closeStore()

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &users.User{Email: "a@x.io", PasswordHash: "h", Role: users.RoleAdmin}))
	u, err := repo.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	require.Equal(t, users.RoleAdmin, u.Role)
}

func TestOpenUserRepoUnknownDriver(t *testing.T) {
	_, _, err := openUserRepo(context.Background(), storeSettings{driver: "mysql"})
	require.Error(t, err)
}

func TestOpenUserRepoPingFailure(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "missing", "auth.db")
	_, _, err := openUserRepo(context.Background(), storeSettings{driver: config.DriverSQLite, dsn: dsn})
	require.ErrorContains(t, err, "db.Ping sqlite3")
}
