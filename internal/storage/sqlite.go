package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/codegraph-qa/codegraph/pkg/types"
)

// SQLiteStore implements the SymbolStore interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// Open creates or opens a symbol store at the given path and applies
// pending migrations.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceSymbols atomically replaces the stored symbol set. The whole
// write happens in one transaction: readers of the file either see the
// previous complete set or the new one.
func (s *SQLiteStore) ReplaceSymbols(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM symbols"); err != nil {
		return fmt.Errorf("clear symbols: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO symbols (
			internal_id, symbol_id, name, file_path, kind, content,
			doc_summary, dependencies, embedding, dimension,
			weight_structural, weight_complexity, weight_type_bias
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		sym := rec.Symbol
		deps, err := json.Marshal(sym.Dependencies)
		if err != nil {
			return fmt.Errorf("marshal dependencies for %s: %w", sym.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			rec.Internal, sym.ID, sym.Name, sym.FilePath, string(sym.Kind),
			sym.Content, sym.DocSummary, string(deps),
			SerializeVector(sym.Embedding), len(sym.Embedding),
			sym.Weights.Structural, sym.Weights.Complexity, sym.Weights.TypeBias,
		)
		if err != nil {
			return fmt.Errorf("insert symbol %s: %w", sym.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, MetaSymbolCount, fmt.Sprintf("%d", len(records))); err != nil {
		return fmt.Errorf("update symbol count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// LoadSymbols returns all stored symbols ordered by internal id.
func (s *SQLiteStore) LoadSymbols(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT internal_id, symbol_id, name, file_path, kind, content,
		       doc_summary, dependencies, embedding,
		       weight_structural, weight_complexity, weight_type_bias
		FROM symbols
		ORDER BY internal_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var (
			rec      Record
			sym      types.Symbol
			kind     string
			depsJSON sql.NullString
			blob     []byte
		)
		err := rows.Scan(
			&rec.Internal, &sym.ID, &sym.Name, &sym.FilePath, &kind,
			&sym.Content, &sym.DocSummary, &depsJSON, &blob,
			&sym.Weights.Structural, &sym.Weights.Complexity, &sym.Weights.TypeBias,
		)
		if err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}

		sym.Kind = types.SymbolKind(kind)
		if depsJSON.Valid && depsJSON.String != "" {
			if err := json.Unmarshal([]byte(depsJSON.String), &sym.Dependencies); err != nil {
				return nil, fmt.Errorf("unmarshal dependencies for %s: %w", sym.ID, err)
			}
		}
		sym.Embedding = DeserializeVector(blob)

		rec.Symbol = &sym
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// SetMeta stores an index metadata entry.
func (s *SQLiteStore) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// GetMeta reads an index metadata entry.
func (s *SQLiteStore) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: meta key %s", ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, nil
}
