package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrsteele09/eventhub-auth/internal/ids"
	"github.com/jrsteele09/eventhub-auth/users"
	"github.com/mattn/go-sqlite3"
	pkgerrors "github.com/pkg/errors"
)

// Dialect selects placeholder style, schema and constraint error detection.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

// DialectForDriver maps a database/sql driver name onto a Dialect.
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return DialectPostgres, nil
	case "sqlite3":
		return DialectSQLite, nil
	}
	return 0, pkgerrors.Errorf("unsupported driver %q", driver)
}

const userColumns = "user_id, email, password, name, surname, role, created_at, updated_at"

var schema = map[Dialect]string{
	DialectPostgres: `CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		surname TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	DialectSQLite: `CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		surname TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

var _ users.UserRepo = (*SQLUserRepo)(nil)

// SQLUserRepo stores identities in a relational database through database/sql.
type SQLUserRepo struct {
	db      *sql.DB
	dialect Dialect
	nowFunc func() time.Time
}

type Option func(*SQLUserRepo)

// WithNowFunc overrides the clock used for created_at and updated_at.
func WithNowFunc(f func() time.Time) Option {
	return func(r *SQLUserRepo) {
		r.nowFunc = f
	}
}

func New(db *sql.DB, dialect Dialect, options ...Option) *SQLUserRepo {
	r := &SQLUserRepo{db: db, dialect: dialect}
	for _, o := range options {
		o(r)
	}
	if r.nowFunc == nil {
		r.nowFunc = time.Now
	}
	return r
}

// EnsureSchema creates the users table when it does not exist yet.
func (r *SQLUserRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema[r.dialect]); err != nil {
		return pkgerrors.Wrap(err, "[SQLUserRepo.EnsureSchema] create users table")
	}
	return nil
}

func (r *SQLUserRepo) Create(ctx context.Context, user *users.User) error {
	now := r.nowFunc().UTC().Truncate(time.Microsecond)
	if user.ID == "" {
		user.ID = ids.NewAt(now)
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		r.rebind("INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
		user.ID, user.Email, user.PasswordHash, user.Name, user.Surname, string(user.Role), now, now,
	)
	if err != nil {
		if r.isUniqueViolation(err) {
			return users.ErrEmailExists
		}
		return pkgerrors.Wrap(err, "[SQLUserRepo.Create] insert user")
	}
	return nil
}

func (r *SQLUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

func (r *SQLUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE user_id = ?", id)
}

func (r *SQLUserRepo) UpdateRole(ctx context.Context, id string, role users.RoleType) (*users.User, error) {
	if !role.IsValid() {
		return nil, users.ErrInvalidRole
	}
	if err := r.update(ctx, "UPDATE users SET role = ?, updated_at = ? WHERE user_id = ?", string(role), id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *SQLUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, "UPDATE users SET password = ?, updated_at = ? WHERE user_id = ?", passwordHash, id)
}

func (r *SQLUserRepo) List(ctx context.Context) ([]*users.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at ASC, user_id ASC")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[SQLUserRepo.List] query users")
	}
	defer rows.Close()

	list := make([]*users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "[SQLUserRepo.List] iterate users")
	}
	return list, nil
}

// update runs a single-row mutation. The value and id arguments are passed in
// that order with updated_at between them.
func (r *SQLUserRepo) update(ctx context.Context, query, value, id string) error {
	res, err := r.db.ExecContext(ctx, r.rebind(query), value, r.nowFunc().UTC().Truncate(time.Microsecond), id)
	if err != nil {
		return pkgerrors.Wrap(err, "[SQLUserRepo] update user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return pkgerrors.Wrap(err, "[SQLUserRepo] rows affected")
	}
	if n == 0 {
		return users.ErrUserNotFound
	}
	return nil
}

func (r *SQLUserRepo) getUser(ctx context.Context, query string, arg string) (*users.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.rebind(query), arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, pkgerrors.Wrap(err, "[SQLUserRepo] get user")
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*users.User, error) {
	var u users.User
	var role string
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Surname, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = users.RoleType(role)
	return &u, nil
}

// rebind rewrites ? placeholders into $n for Postgres.
func (r *SQLUserRepo) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *SQLUserRepo) isUniqueViolation(err error) bool {
	switch r.dialect {
	case DialectPostgres:
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505"
	case DialectSQLite:
		var sqliteErr sqlite3.Error
		return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
