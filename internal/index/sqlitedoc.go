package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/murmur-app/murmur/internal/model"
)

const docKey = "voice-memo-index"

// SqliteDoc stores the metadata document in an embedded SQLite key-value
// table, giving the whole-document write real transactional durability.
type SqliteDoc struct {
	db *sql.DB
}

// NewSqliteDoc opens (or creates) the database at path and ensures the
// document table exists.
func NewSqliteDoc(path string) (*SqliteDoc, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping index db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS Documents (Key TEXT PRIMARY KEY, Value BLOB NOT NULL)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &SqliteDoc{db: db}, nil
}

func (s *SqliteDoc) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT Value FROM Documents WHERE Key = ?`, docKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load index document: %w", err)
	}
	return data, nil
}

func (s *SqliteDoc) Store(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO Documents (Key, Value) VALUES (?, ?) ON CONFLICT(Key) DO UPDATE SET Value = excluded.Value`,
		docKey, data)
	if err != nil {
		return fmt.Errorf("store index document: %w", err)
	}
	return nil
}

func (s *SqliteDoc) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqliteDoc) Close() error { return s.db.Close() }
