package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS designs (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	kind TEXT NOT NULL,
	record TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_designs_kind ON designs(kind);
`

// SQLiteStore は SQLite のテーブルに Design を JSON で追記する Store です。
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore は path のデータベースを開き、テーブルが無ければ作成します。
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc.org/sqlite は同一ファイルへの並行書き込みでロックエラーになるため1接続に絞るのだ
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close はデータベースを閉じます。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append は Design を末尾に追記します。同じ ID の再追記はエラーです。
func (s *SQLiteStore) Append(ctx context.Context, d domain.Design) error {
	if d.ID == "" {
		return fmt.Errorf("%w: design id is empty", domain.ErrInvalidRequest)
	}
	record, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("history: encode %s: %w", d.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO designs (id, kind, record, created_at) VALUES (?, ?, ?, ?)`,
		d.ID, string(d.Kind), string(record), d.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("history: append %s: %w", d.ID, err)
	}
	return nil
}

// LoadAll は全件を追記順に返します。
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]domain.Design, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM designs ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	defer rows.Close()

	var designs []domain.Design
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		var d domain.Design
		if err := json.Unmarshal([]byte(record), &d); err != nil {
			return nil, fmt.Errorf("history: decode: %w", err)
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

// Get は ID で1件取得します。見つからなければ ErrNotFound を返します。
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Design, error) {
	var record string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM designs WHERE id = ?`, id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Design{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return domain.Design{}, fmt.Errorf("history: get %s: %w", id, err)
	}

	var d domain.Design
	if err := json.Unmarshal([]byte(record), &d); err != nil {
		return domain.Design{}, fmt.Errorf("history: decode %s: %w", id, err)
	}
	return d, nil
}
