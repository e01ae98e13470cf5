package durable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// record is the single kv table backing the SQLite medium.
type record struct {
	bun.BaseModel `bun:"table:cache_records,alias:cr"`

	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SQLiteMedium persists cache records in an embedded SQLite database. It is
// the default durable tier for desktop and kiosk deployments, where the cache
// must survive an application restart without a server round-trip.
type SQLiteMedium struct {
	db       *bun.DB
	maxBytes int64
}

// NewSQLite opens (and creates, if needed) the database at path. maxBytes
// bounds the total payload size the medium will accept; zero disables the
// budget check.
func NewSQLite(path string, maxBytes int64) (*SQLiteMedium, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("durable: open sqlite: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*record)(nil)).IfNotExists().Exec(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("durable: create table: %w", err)
	}

	return &SQLiteMedium{db: db, maxBytes: maxBytes}, nil
}

// Get returns the stored bytes for key, or ErrNotFound.
func (m *SQLiteMedium) Get(ctx context.Context, key string) ([]byte, error) {
	row := new(record)
	err := m.db.NewSelect().Model(row).Where("cr.key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

// Set upserts value under key, enforcing the byte budget when one is set.
func (m *SQLiteMedium) Set(ctx context.Context, key string, value []byte) error {
	if m.maxBytes > 0 {
		var used int64
		err := m.db.NewSelect().
			Model((*record)(nil)).
			ColumnExpr("COALESCE(SUM(LENGTH(value)), 0)").
			Where("cr.key != ?", key).
			Scan(ctx, &used)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > m.maxBytes {
			return fmt.Errorf("%w: %d bytes stored, %d requested, budget %d",
				ErrQuotaExceeded, used, len(value), m.maxBytes)
		}
	}

	row := &record{Key: key, Value: value, UpdatedAt: time.Now()}
	_, err := m.db.NewInsert().
		Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Delete removes key. Missing keys are a no-op.
func (m *SQLiteMedium) Delete(ctx context.Context, key string) error {
	_, err := m.db.NewDelete().Model((*record)(nil)).Where("cr.key = ?", key).Exec(ctx)
	return err
}

// Keys enumerates all keys starting with prefix.
func (m *SQLiteMedium) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := m.db.NewSelect().
		Model((*record)(nil)).
		Column("key").
		Where("cr.key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("key ASC").
		Scan(ctx, &keys)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Clear removes every key starting with prefix.
func (m *SQLiteMedium) Clear(ctx context.Context, prefix string) error {
	_, err := m.db.NewDelete().
		Model((*record)(nil)).
		Where("cr.key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Exec(ctx)
	return err
}

// Close closes the underlying database.
func (m *SQLiteMedium) Close() error {
	return m.db.Close()
}

// escapeLike escapes LIKE metacharacters so prefixes match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

var _ Medium = (*SQLiteMedium)(nil)
