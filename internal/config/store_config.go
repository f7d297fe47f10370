package config

const (
	dbDriverVar = "DB_DRIVER"
	dbDSNVar    = "DB_DSN"
)

// Supported credential store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

type StoreConfig interface {
	GetDBDriver() string
	GetDBDSN() string
}

type Store struct {
	src *source
}

var _ StoreConfig = Store{}

func (s Store) GetDBDriver() string {
	return s.src.get(dbDriverVar, DriverMemory)
}

func (s Store) GetDBDSN() string {
	return s.src.get(dbDSNVar, "")
}
