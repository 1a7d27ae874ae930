package storage

import (
	"strings"

	"github.com/julianstephens/dailycode/internal/migration"
	"github.com/julianstephens/dailycode/migrations"
)

// MemoryLocation selects the in-memory store.
const MemoryLocation = "memory"

// New picks a backend from the store location: a postgres:// URL, a path
// ending in .json, "memory", or otherwise a SQLite database path.
func New(location string) Provider {
	switch {
	case IsPostgres(location):
		return NewPostgresStore(location)
	case location == MemoryLocation:
		return NewMemoryStore()
	case strings.HasSuffix(strings.ToLower(location), ".json"):
		return NewJSONStore(location)
	default:
		return NewSQLiteStore(location)
	}
}

// SchemaRunner returns a migration runner bound to p's database, or nil for
// stores without a schema. The store must be open.
func SchemaRunner(p Provider) *migration.Runner {
	switch s := p.(type) {
	case *SQLiteStore:
		if s.db == nil {
			return nil
		}
		return migration.NewRunner(s.db, migrations.SQLite())
	case *PostgresStore:
		if s.db == nil {
			return nil
		}
		return migration.NewPostgresRunner(s.db, migrations.Postgres())
	default:
		return nil
	}
}
