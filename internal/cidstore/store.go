// Package cidstore implements Component B: a durable cid→bytes mapping
// over an embedded SQL database, with insert-or-ignore dedup and
// hash-verified writes.
package cidstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cideldill/cideldill/internal/codec"
	"github.com/cideldill/cideldill/internal/telemetry"
)

// Config configures the CID store's backing database.
//
// Only an embedded, single-file SQLite database is supported: the system
// is explicitly non-distributed (spec Non-goals), so there is no
// component in this repo that could exercise a networked database driver
// the way the teacher's control plane exercises Postgres for HA — see
// DESIGN.md for the justification behind dropping that dependency.
type Config struct {
	// Path is the SQLite database file. Empty is replaced by a default
	// on-disk path (see ApplyDefaults); the in-memory store is opened
	// through OpenMemory instead.
	Path string
}

// ApplyDefaults fills in a default on-disk path under $HOME/.cideldill
// when Path is empty.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.Path = filepath.Join(home, ".cideldill", "cid_store.db")
	}
}

// Store is a durable, content-addressed mapping from CID to bytes backed
// by GORM over SQLite. All mutations and reads serialize through GORM's
// own connection pool; the store itself adds no extra mutex because
// SQLite's WAL mode already serializes writers and the single table has
// no cross-row invariants to protect beyond the primary key.
type Store struct {
	db *gorm.DB
}

// New opens (creating if necessary) the CID store database and runs
// auto-migration. A nil config or an empty Path uses the on-disk default
// path from ApplyDefaults; use OpenMemory for an in-memory store.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	config.ApplyDefaults()
	return Open(config.Path)
}

// OpenMemory opens an ephemeral, process-local CID store with no backing
// file, for the server's start --memory-store flag.
func OpenMemory() (*Store, error) {
	return open("file::memory:?cache=shared&_pragma=busy_timeout(5000)")
}

// Open opens the CID store at path, creating the parent directory and
// the database file if necessary.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cidstore: create database directory: %w", err)
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	return open(dsn)
}

func open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cidstore: connect: %w", err)
	}

	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("cidstore: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// StoreOne verifies that data hashes to cid, then inserts the row if it
// is not already present. Repeating the call with the same arguments has
// no additional effect and never errors (idempotent dedup).
func (s *Store) StoreOne(ctx context.Context, cid codec.CID, data []byte) error {
	ctx, span := telemetry.StartCIDStoreSpan(ctx, telemetry.SpanCIDStorePut, string(cid))
	defer span.End()

	if !codec.Verify(data, cid) {
		return ErrCIDMismatch
	}

	entry := Entry{
		CID:       string(cid),
		Data:      data,
		SizeBytes: int64(len(data)),
		CreatedAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	if err != nil && !isUniqueConstraintError(err) {
		return fmt.Errorf("cidstore: store: %w", err)
	}
	return nil
}

// StoreMany verifies and inserts a batch atomically: either every item
// verifies and is stored, or none are.
func (s *Store) StoreMany(ctx context.Context, items map[codec.CID][]byte) error {
	for cid, data := range items {
		if !codec.Verify(data, cid) {
			return fmt.Errorf("%w: %s", ErrCIDMismatch, cid)
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for cid, data := range items {
			entry := Entry{CID: string(cid), Data: data, SizeBytes: int64(len(data)), CreatedAt: now}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil && !isUniqueConstraintError(err) {
				return fmt.Errorf("cidstore: store_many: %w", err)
			}
		}
		return nil
	})
}

// Get returns the bytes stored under cid, or ErrCIDNotFound.
func (s *Store) Get(ctx context.Context, cid codec.CID) ([]byte, error) {
	ctx, span := telemetry.StartCIDStoreSpan(ctx, telemetry.SpanCIDStoreGet, string(cid))
	defer span.End()

	var entry Entry
	err := s.db.WithContext(ctx).Where("cid = ?", string(cid)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCIDNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cidstore: get: %w", err)
	}
	return entry.Data, nil
}

// GetMany returns every cid in cids that is present, keyed by CID.
// Missing CIDs are simply absent from the result; callers needing to know
// which were missing should call Missing.
func (s *Store) GetMany(ctx context.Context, cids []codec.CID) (map[codec.CID][]byte, error) {
	ids := make([]string, len(cids))
	for i, c := range cids {
		ids[i] = string(c)
	}

	var entries []Entry
	if err := s.db.WithContext(ctx).Where("cid IN ?", ids).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("cidstore: get_many: %w", err)
	}

	out := make(map[codec.CID][]byte, len(entries))
	for _, e := range entries {
		out[codec.CID(e.CID)] = e.Data
	}
	return out, nil
}

// Exists reports whether cid is present.
func (s *Store) Exists(ctx context.Context, cid codec.CID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Entry{}).Where("cid = ?", string(cid)).Count(&count).Error; err != nil {
		return false, fmt.Errorf("cidstore: exists: %w", err)
	}
	return count > 0, nil
}

// Missing returns the subset of cids not present in the store, preserving
// input order.
func (s *Store) Missing(ctx context.Context, cids []codec.CID) ([]codec.CID, error) {
	if len(cids) == 0 {
		return nil, nil
	}
	present, err := s.GetMany(ctx, cids)
	if err != nil {
		return nil, err
	}

	var missing []codec.CID
	for _, c := range cids {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing, nil
}

// Stats reports the row count and total stored byte size.
type Stats struct {
	Count          int64 `json:"count"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

// Stats computes aggregate statistics over the whole store.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.WithContext(ctx).Model(&Entry{}).Select("count(*) as count, coalesce(sum(size_bytes), 0) as total_size_bytes").Row()
	if err := row.Scan(&stats.Count, &stats.TotalSizeBytes); err != nil {
		return Stats{}, fmt.Errorf("cidstore: stats: %w", err)
	}
	return stats, nil
}

// ListEntries returns every CID currently stored, without their data.
func (s *Store) ListEntries(ctx context.Context) ([]codec.CID, error) {
	var cids []string
	if err := s.db.WithContext(ctx).Model(&Entry{}).Order("created_at").Pluck("cid", &cids).Error; err != nil {
		return nil, fmt.Errorf("cidstore: list_entries: %w", err)
	}
	out := make([]codec.CID, len(cids))
	for i, c := range cids {
		out[i] = codec.CID(c)
	}
	return out, nil
}

// Healthcheck pings the underlying database connection.
func (s *Store) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("cidstore: healthcheck: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
