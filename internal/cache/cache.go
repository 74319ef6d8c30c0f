// Package cache stores emitted target text keyed by a content hash of the
// source, enabled rewrite families, and target, so repeated builds of an
// unchanged file skip parsing, rewriting, sequencing, and emission entirely.
package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/mod/semver"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// schemaVersion is bumped whenever the on-disk row shape changes; a
// mismatched stored version drops and recreates the table rather than
// attempting a migration.
const schemaVersion = "v1.0.0"

// Cache wraps a *sql.DB holding one table of (digest, target, output) rows
// plus a table recording the schema version.
type Cache struct {
	db     *sql.DB
	driver string
}

// driverFor maps a DSN's scheme to the database/sql driver name
// registered by that driver's blank import, defaulting to the pure-Go
// sqlite driver when the DSN carries no scheme at all (a bare file path).
func driverFor(dsn string) (driver, open string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://")
	case strings.HasPrefix(dsn, "sqlserver://"):
		return "sqlserver", dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://")
	default:
		return "sqlite", dsn
	}
}

// Open connects to the compile cache at dsn, creating its table (or
// recreating it, if the stored schema version differs from
// schemaVersion) as needed.
func Open(dsn string) (*Cache, error) {
	driver, open := driverFor(dsn)

	db, err := sql.Open(driver, open)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", driver, err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	c := &Cache{db: db, driver: driver}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) ensureSchema() error {
	var stored string
	err := c.db.QueryRow(`SELECT value FROM telepathy_cache_meta WHERE key = 'schema_version'`).Scan(&stored)
	switch {
	case err == nil && semver.Compare(normalize(stored), normalize(schemaVersion)) == 0:
		return nil
	case err == nil:
		if _, dropErr := c.db.Exec(`DROP TABLE IF EXISTS telepathy_cache_entries`); dropErr != nil {
			return fmt.Errorf("cache: drop stale table: %w", dropErr)
		}
	}

	if _, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS telepathy_cache_meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("cache: create meta table: %w", err)
	}
	if _, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS telepathy_cache_entries (
		digest TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		output TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`); err != nil {
		return fmt.Errorf("cache: create entries table: %w", err)
	}

	_, err = c.db.Exec(`INSERT INTO telepathy_cache_meta (key, value) VALUES ('schema_version', ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, schemaVersion)
	if err != nil {
		// sqlite/postgres support the upsert above; mysql/mssql fall back
		// to a delete-then-insert since their upsert syntax differs.
		if _, delErr := c.db.Exec(`DELETE FROM telepathy_cache_meta WHERE key = 'schema_version'`); delErr == nil {
			_, err = c.db.Exec(`INSERT INTO telepathy_cache_meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
		}
	}
	if err != nil {
		return fmt.Errorf("cache: record schema version: %w", err)
	}
	return nil
}

func normalize(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// Key hashes the inputs that fully determine a compilation's output.
func Key(source string, families string, target string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(families))
	h.Write([]byte{0})
	h.Write([]byte(target))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Lookup returns the cached output for digest, if present.
func (c *Cache) Lookup(digest string) (string, bool, error) {
	var output string
	err := c.db.QueryRow(`SELECT output FROM telepathy_cache_entries WHERE digest = ?`, digest).Scan(&output)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: lookup: %w", err)
	}
	return output, true, nil
}

// Store records output under digest for target, overwriting any prior
// entry for the same digest.
func (c *Cache) Store(digest, target, output string) error {
	_, err := c.db.Exec(`DELETE FROM telepathy_cache_entries WHERE digest = ?`, digest)
	if err != nil {
		return fmt.Errorf("cache: evict prior entry: %w", err)
	}
	_, err = c.db.Exec(`INSERT INTO telepathy_cache_entries (digest, target, output, created_at) VALUES (?, ?, ?, ?)`,
		digest, target, output, time.Now())
	if err != nil {
		return fmt.Errorf("cache: store: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.db.Close()
}
