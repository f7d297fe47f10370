package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jrsteele09/eventhub-auth/internal/config"
	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/jrsteele09/eventhub-auth/users"
	fakeuserrepo "github.com/jrsteele09/eventhub-auth/users/repofake"
	"github.com/jrsteele09/eventhub-auth/users/sqlrepo"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// openUserRepo builds the credential store selected by DB_DRIVER. The
// returned func releases it.
func openUserRepo(ctx context.Context, c config.StoreConfig) (users.UserRepo, func(), error) {
	driver := c.GetDBDriver()
	if driver == config.DriverMemory {
		log.Warn().Msg("Using the in-memory credential store, identities are lost on restart")
		return fakeuserrepo.NewFakeUserRepo(), func() {}, nil
	}

	dialect, err := sqlrepo.DialectForDriver(driver)
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open(driver, c.GetDBDSN())
	if err != nil {
		return nil, nil, apperrors.Wrapf(err, "sql.Open %s", driver)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, apperrors.Wrapf(err, "db.Ping %s", driver)
	}

	repo := sqlrepo.New(db, dialect)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info().Str("driver", driver).Msg("Credential store ready")
	return repo, func() { db.Close() }, nil
}
