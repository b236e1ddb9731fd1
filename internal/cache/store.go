// Package cache stores generated text keyed by the prompt that produced it, so
// repeated runs over the same traffic skip the model.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/utils"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store is a SQLite-backed key/value cache. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// Open opens or creates the cache database at path.
func Open(path string, logger logging.Logger) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	path, err := utils.ExpandHome(path)
	if err != nil {
		return nil, fmt.Errorf("cache path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Store{
		db:     db,
		path:   path,
		logger: logging.OrNop(logger).With(logging.Field{Key: "component", Value: "cache"}),
	}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Key hashes parts into a cache key. Parts are length-prefixed so that
// ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached value for key. ok is false on a miss.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT response FROM llm_cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, namespace, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO llm_cache (key, namespace, response, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET response = excluded.response, created_at = excluded.created_at`,
		key, namespace, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Len returns the number of entries in namespace, or in total when namespace is empty.
func (s *Store) Len(ctx context.Context, namespace string) (int, error) {
	var n int
	var err error
	if namespace == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM llm_cache`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM llm_cache WHERE namespace = ?`, namespace).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("cache len: %w", err)
	}
	return n, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	return s.db.Close()
}
